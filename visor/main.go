package main

import (
	"flag"
	"log"
	"os"
	"runtime"

	"github.com/mhus/nimbus-world-sub010/shared/config"
	"github.com/mhus/nimbus-world-sub010/visor/internal/app"
)

func main() {
	// Raylib/OpenGL exige rodar na thread principal do SO.
	runtime.LockOSThread()

	serverURL := flag.String("server", "", "URL do servidor de mundo (padrão: ws://localhost:8080/ws)")
	worldName := flag.String("world", "", "Nome do mundo a visualizar")
	assetRoot := flag.String("assets", "", "Diretório raiz de assets (atlas, texturas, modelos)")
	fullscreen := flag.Bool("fullscreen", false, "Iniciar em tela cheia")
	debug := flag.Bool("debug", false, "Mostrar informações de debug")
	width := flag.Int("width", 0, "Largura da janela")
	height := flag.Int("height", 0, "Altura da janela")
	flag.Parse()

	// Log em arquivo para diagnóstico pós-sessão
	f, err := os.OpenFile("debug_visor.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err == nil {
		log.SetOutput(f)
		log.Println("--- INICIANDO NIMBUS VISOR ---")
	}

	log.SetFlags(log.Ltime | log.Lshortfile)

	cfg := config.Load()

	// Flags de linha de comando sobrescrevem o config salvo
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *worldName != "" {
		cfg.WorldName = *worldName
	}
	if *assetRoot != "" {
		cfg.AssetRoot = *assetRoot
	}
	if *fullscreen {
		cfg.Fullscreen = true
	}
	if *debug {
		cfg.ShowDebugInfo = true
	}
	if *width > 0 {
		cfg.WindowWidth = int32(*width)
	}
	if *height > 0 {
		cfg.WindowHeight = int32(*height)
	}

	application := app.New(cfg)
	application.Run()
}
