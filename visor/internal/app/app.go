package app

import (
	"log"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mhus/nimbus-world-sub010/shared/config"
	"github.com/mhus/nimbus-world-sub010/shared/mapdata"
	"github.com/mhus/nimbus-world-sub010/shared/util"
	"github.com/mhus/nimbus-world-sub010/visor/internal/camera"
	"github.com/mhus/nimbus-world-sub010/visor/internal/client"
	"github.com/mhus/nimbus-world-sub010/visor/internal/meshing"
	"github.com/mhus/nimbus-world-sub010/visor/internal/render"
)

// AppState representa os estados possíveis da aplicação.
type AppState int

const (
	StateLoading AppState = iota // Conectando e sincronizando
	StateViewing                 // Visualizando o mundo
	StatePaused                  // Pausado
)

// App é a aplicação principal do visor.
type App struct {
	Config *config.Config
	State  AppState

	Cam *camera.Controller

	frameCount int

	// Bloco selecionado pelo usuário (inspeção)
	SelectedCoord *util.BlockCoord

	// Dados do mundo e comunicação
	netClient   *client.NetworkClient
	mapStore    *mapdata.MapDataStore
	mesher      *meshing.ChunkMesher
	resultStore *meshing.ResultStore
	renderer    *render.Renderer

	// Chunks marcados para remesh pela rede, drenados no loop principal.
	dirty *util.UniqueQueue[util.ChunkCoord, struct{}]

	// Estado da tela de carregamento
	Loading       bool
	LoadingStatus string

	lastAutoSaveTime float64
}

// New cria uma nova instância da aplicação.
func New(cfg *config.Config) *App {
	return &App{
		Config:        cfg,
		State:         StateLoading,
		Loading:       true,
		LoadingStatus: "Conectando ao servidor...",
		dirty:         util.NewUniqueQueue[util.ChunkCoord, struct{}](),
	}
}

// Run inicia o loop principal da aplicação.
func (a *App) Run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro fatal recuperado: %v", r)
			panic(r)
		}
	}()

	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(a.Config.WindowWidth, a.Config.WindowHeight, a.Config.WindowTitle)
	rl.SetTraceLogLevel(rl.LogWarning)

	if a.Config.Fullscreen {
		rl.ToggleFullscreen()
	}

	rl.SetTargetFPS(a.Config.TargetFPS)
	rl.SetExitKey(0)

	a.Cam = camera.New(a.Config.CameraSpeed, a.Config.CameraSensitivity,
		a.Config.ZoomSpeed, a.Config.FOV)

	log.Printf("[Visor] Janela inicializada: %dx%d", a.Config.WindowWidth, a.Config.WindowHeight)

	a.mapStore = mapdata.NewMapDataStore(nil)

	// Tipos locais servem de base; o servidor complementa via sync.
	typesPath := a.Config.AssetRoot + "/block_types.json"
	if err := a.mapStore.Registry.LoadFile(typesPath); err != nil {
		log.Printf("[App] Sem registro local de tipos (%v); aguardando servidor.", err)
	} else {
		log.Printf("[App] %d tipos de bloco carregados de %s", a.mapStore.Registry.Len(), typesPath)
	}

	if err := a.mapStore.OpenInitialize(a.Config.WorldName); err != nil {
		log.Printf("[Visor] AVISO: cache local indisponível: %v", err)
	}
	a.resultStore = meshing.NewResultStore(a.mapStore)

	workers := a.Config.MesherThreads
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 2 {
		workers = 2
	}

	log.Printf("[App] Iniciando Mesher com %d workers (CPU Cores: %d)", workers, runtime.NumCPU())
	a.renderer = render.NewRenderer(a.Config.AssetRoot)
	a.mesher = meshing.NewChunkMesher(workers, a.resultStore)

	a.State = StateViewing

	go a.connectServer()

	for !rl.WindowShouldClose() {
		a.update()
		a.draw()
	}

	a.shutdown()
	rl.CloseWindow()
}

// update atualiza a lógica a cada frame.
func (a *App) update() {
	a.frameCount++

	switch a.State {
	case StateViewing:
		a.renderer.ProcessPurge()
		a.renderer.Assets.ProcessPending()
		if a.frameCount%120 == 0 {
			a.purgeDistantChunks()
		}
		a.handleAutoSave()
		a.updateCamera()
		a.updateInput()
		a.processDirtyChunks()
		a.processMesherResults()
	case StatePaused:
		a.updateInput()
	}
}

// processMesherResults consome a fila de resultados e sobe para a GPU.
// O tempo por frame é limitado para não causar stutter.
func (a *App) processMesherResults() {
	timeBudget := 0.004
	if a.Loading {
		timeBudget = 0.100
	}

	startTime := rl.GetTime()

	for {
		if rl.GetTime()-startTime > timeBudget {
			return
		}

		select {
		case res := <-a.mesher.Results():
			if len(res.MaterialGeometries) > 0 || len(res.Instances) > 0 || len(res.Surfaces) > 0 {
				log.Printf("[Renderer] Upload de geometria: %s (%d materiais, %d instâncias, %d superfícies)",
					res.Coord, len(res.MaterialGeometries), len(res.Instances), len(res.Surfaces))
			}
			a.renderer.UploadResult(res)

			if a.Loading {
				a.Loading = false
				a.LoadingStatus = "Mundo sincronizado!"
			}
		default:
			return
		}
	}
}

// purgeDistantChunks descarta modelos de GPU fora do raio de visão.
func (a *App) purgeDistantChunks() {
	center := util.ChunkOf(util.WorldToBlockCoord(a.Cam.CurrentLookAt))
	a.renderer.Purge(center, a.Config.ViewRadius+2)
}

// handleAutoSave persiste o cache local periodicamente.
func (a *App) handleAutoSave() {
	currentTime := rl.GetTime()
	if currentTime-a.lastAutoSaveTime < 60.0 {
		return
	}
	a.lastAutoSaveTime = currentTime

	go func() {
		if err := a.mapStore.Save(a.Config.WorldName); err != nil {
			log.Printf("[App] Erro no auto-save: %v", err)
		}
	}()
}

// shutdown realiza a limpeza de recursos.
func (a *App) shutdown() {
	log.Println("[App] Finalizando aplicação...")

	if a.netClient != nil {
		a.netClient.Close()
	}
	a.mesher.Stop()

	if err := a.mapStore.Save(a.Config.WorldName); err != nil {
		log.Printf("[App] Erro ao salvar cache local: %v", err)
	}

	a.renderer.Unload()

	if err := a.Config.Save(); err != nil {
		log.Printf("[Visor] Erro ao salvar configurações: %v", err)
	}
}
