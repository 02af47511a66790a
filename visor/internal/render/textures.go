package render

import (
	"fmt"
	"os"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// TextureCache carrega e compartilha texturas fora do atlas (água,
// sprites, efeitos com textura própria). Uma textura por caminho.
type TextureCache struct {
	mu       sync.Mutex
	root     string
	textures map[string]rl.Texture2D
}

func NewTextureCache(root string) *TextureCache {
	return &TextureCache{
		root:     root,
		textures: make(map[string]rl.Texture2D),
	}
}

// Get devolve a textura do caminho, carregando na primeira vez. O modo
// de amostragem vem da chave de material ("point" ou "linear").
func (c *TextureCache) Get(path, sampling string) (rl.Texture2D, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tex, ok := c.textures[path]; ok {
		return tex, nil
	}

	full := c.root + "/" + path
	if _, err := os.Stat(full); err != nil {
		return rl.Texture2D{}, fmt.Errorf("textura %s indisponível: %w", path, err)
	}
	if !rl.IsWindowReady() {
		return rl.Texture2D{}, fmt.Errorf("textura %s: contexto gráfico indisponível", path)
	}

	tex := rl.LoadTexture(full)
	if tex.ID == 0 {
		return rl.Texture2D{}, fmt.Errorf("falha ao carregar textura %s", path)
	}
	if sampling == "linear" {
		rl.SetTextureFilter(tex, rl.FilterBilinear)
	} else {
		rl.SetTextureFilter(tex, rl.FilterPoint)
	}

	c.textures[path] = tex
	return tex, nil
}

// Unload descarrega todas as texturas do cache.
func (c *TextureCache) Unload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tex := range c.textures {
		rl.UnloadTexture(tex)
	}
	c.textures = make(map[string]rl.Texture2D)
}
