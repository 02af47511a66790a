package render

import (
	"fmt"
	"os"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mhus/nimbus-world-sub010/visor/internal/meshing"
)

// ModelAsset é o template compartilhado de um modelo externo. A carga
// para a GPU acontece na thread principal; os workers de meshing só
// validam o caminho e registram a referência.
type ModelAsset struct {
	Path   string
	Model  rl.Model
	Loaded bool

	catalog *AssetCatalog
}

// Dispose devolve a referência ao catálogo. O descarregamento real é
// adiado para a thread principal.
func (a *ModelAsset) Dispose() {
	if a.catalog != nil {
		a.catalog.release(a.Path)
	}
}

type assetEntry struct {
	asset *ModelAsset
	refs  int
}

// AssetCatalog implementa o carregador de modelos externos. Load pode
// ser chamado de qualquer goroutine; ProcessPending roda por frame na
// thread principal e materializa as cargas e descargas pendentes.
type AssetCatalog struct {
	mu      sync.Mutex
	root    string
	entries map[string]*assetEntry
	pending []string
	toFree  []rl.Model
}

func NewAssetCatalog(root string) *AssetCatalog {
	return &AssetCatalog{
		root:    root,
		entries: make(map[string]*assetEntry),
	}
}

// Load registra o interesse em um modelo. Um caminho inexistente falha
// na hora, com contexto, para o bloco degradar em vez de travar depois.
func (c *AssetCatalog) Load(path string) (meshing.Disposable, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[path]; ok {
		e.refs++
		return e.asset, nil
	}

	full := c.root + "/" + path
	if _, err := os.Stat(full); err != nil {
		return nil, fmt.Errorf("modelo %s indisponível: %w", path, err)
	}

	asset := &ModelAsset{Path: path, catalog: c}
	c.entries[path] = &assetEntry{asset: asset, refs: 1}
	c.pending = append(c.pending, path)
	return asset, nil
}

func (c *AssetCatalog) release(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[path]
	if !ok {
		return
	}
	e.refs--
	if e.refs > 0 {
		return
	}
	delete(c.entries, path)
	if e.asset.Loaded {
		c.toFree = append(c.toFree, e.asset.Model)
	}
}

// ProcessPending executa cargas e descargas adiadas. Precisa rodar na
// thread do contexto gráfico.
func (c *AssetCatalog) ProcessPending() {
	if !rl.IsWindowReady() {
		return
	}

	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	toFree := c.toFree
	c.toFree = nil
	c.mu.Unlock()

	for _, model := range toFree {
		rl.UnloadModel(model)
	}

	for _, path := range pending {
		c.mu.Lock()
		e, ok := c.entries[path]
		c.mu.Unlock()
		if !ok {
			// Referência morreu antes da carga acontecer.
			continue
		}
		model := rl.LoadModel(c.root + "/" + path)
		c.mu.Lock()
		e.asset.Model = model
		e.asset.Loaded = true
		c.mu.Unlock()
	}
}

// Get devolve o modelo carregado de um caminho, se já estiver na GPU.
func (c *AssetCatalog) Get(path string) (rl.Model, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[path]; ok && e.asset.Loaded {
		return e.asset.Model, true
	}
	return rl.Model{}, false
}

// Unload descarrega tudo, inclusive entradas ainda referenciadas.
func (c *AssetCatalog) Unload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.asset.Loaded {
			rl.UnloadModel(e.asset.Model)
		}
	}
	c.entries = make(map[string]*assetEntry)
	c.pending = nil
	for _, m := range c.toFree {
		rl.UnloadModel(m)
	}
	c.toFree = nil
}
