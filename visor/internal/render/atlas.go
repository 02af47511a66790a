package render

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mhus/nimbus-world-sub010/shared/blockdef"
	"github.com/mhus/nimbus-world-sub010/visor/internal/meshing"
)

// atlasIndex é o formato do JSON que descreve o empacotamento do atlas.
type atlasIndex struct {
	Image   string                `json:"image"`
	Width   float32               `json:"width"`
	Height  float32               `json:"height"`
	Sprites map[string][4]float32 `json:"sprites"` // x, y, largura, altura em pixels
}

// Atlas resolve caminhos de textura para retângulos UV dentro da
// textura compartilhada. Thread-safe: os workers de meshing consultam
// enquanto a thread principal desenha.
type Atlas struct {
	mu      sync.RWMutex
	index   atlasIndex
	texture rl.Texture2D
	loaded  bool
}

// LoadAtlas lê o índice JSON e, com janela aberta, a imagem do atlas.
func LoadAtlas(indexPath string) (*Atlas, error) {
	raw, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler índice do atlas %s: %w", indexPath, err)
	}

	a := &Atlas{}
	if err := json.Unmarshal(raw, &a.index); err != nil {
		return nil, fmt.Errorf("falha ao parsear índice do atlas %s: %w", indexPath, err)
	}
	if a.index.Width <= 0 || a.index.Height <= 0 {
		return nil, fmt.Errorf("índice do atlas %s sem dimensões", indexPath)
	}

	if rl.IsWindowReady() && a.index.Image != "" {
		a.texture = rl.LoadTexture(a.index.Image)
		rl.SetTextureFilter(a.texture, rl.FilterPoint)
		a.loaded = a.texture.ID != 0
	}
	return a, nil
}

// Texture devolve a textura do atlas e se ela foi carregada.
func (a *Atlas) Texture() (rl.Texture2D, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.texture, a.loaded
}

// Resolve implementa o resolvedor de UV do meshing. Um sub-retângulo na
// definição da textura é composto dentro do sprite do atlas.
func (a *Atlas) Resolve(tex *blockdef.TextureDef) (meshing.UVRect, bool) {
	if tex == nil || tex.Path == "" {
		return meshing.UVRect{}, false
	}

	a.mu.RLock()
	sprite, ok := a.index.Sprites[tex.Path]
	a.mu.RUnlock()
	if !ok {
		return meshing.UVRect{}, false
	}

	rect := meshing.UVRect{
		U0: sprite[0] / a.index.Width,
		V0: sprite[1] / a.index.Height,
		U1: (sprite[0] + sprite[2]) / a.index.Width,
		V1: (sprite[1] + sprite[3]) / a.index.Height,
	}

	if tex.UV != nil {
		du, dv := rect.U1-rect.U0, rect.V1-rect.V0
		rect = meshing.UVRect{
			U0: rect.U0 + tex.UV[0]*du,
			V0: rect.V0 + tex.UV[1]*dv,
			U1: rect.U0 + tex.UV[2]*du,
			V1: rect.V0 + tex.UV[3]*dv,
		}
	}
	return rect, true
}

// Register insere um sprite no índice em tempo de execução (usado por
// testes e pelo empacotador incremental).
func (a *Atlas) Register(path string, rect [4]float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.index.Sprites == nil {
		a.index.Sprites = make(map[string][4]float32)
	}
	a.index.Sprites[path] = rect
}

// NewAtlas cria um atlas vazio com as dimensões dadas, para ser
// preenchido via Register.
func NewAtlas(width, height float32) *Atlas {
	return &Atlas{index: atlasIndex{
		Width:   width,
		Height:  height,
		Sprites: make(map[string][4]float32),
	}}
}

// Unload descarrega a textura do atlas.
func (a *Atlas) Unload() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loaded {
		rl.UnloadTexture(a.texture)
		a.loaded = false
	}
}
