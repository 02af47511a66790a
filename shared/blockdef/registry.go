package blockdef

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// typeEntry é o formato de uma entrada em block_types.json.
type typeEntry struct {
	ID int32 `json:"id"`
	Modifier
}

// typeConfig é o root de block_types.json.
type typeConfig struct {
	BlockTypes []typeEntry `json:"blockTypes"`
}

// Registry mapeia IDs de tipo de bloco para seus modificadores.
// Os modificadores são compartilhados por todas as instâncias do tipo,
// por isso nunca devem ser mutados depois de registrados.
type Registry struct {
	mu     sync.RWMutex
	byID   map[int32]*Modifier
	byName map[string]int32
}

// NewRegistry cria um registro vazio.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[int32]*Modifier),
		byName: make(map[string]int32),
	}
}

// LoadFile carrega (ou complementa) o registro a partir de um JSON.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("falha ao ler %s: %w", path, err)
	}
	var conf typeConfig
	if err := json.Unmarshal(data, &conf); err != nil {
		return fmt.Errorf("falha ao parsear %s: %w", path, err)
	}
	for i := range conf.BlockTypes {
		entry := conf.BlockTypes[i]
		mod := entry.Modifier
		r.Register(entry.ID, &mod)
	}
	return nil
}

// Register adiciona ou substitui o modificador de um tipo.
func (r *Registry) Register(id int32, mod *Modifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id] = mod
	if mod != nil && mod.Name != "" {
		r.byName[mod.Name] = id
	}
}

// Get retorna o modificador do tipo, ou nil se desconhecido.
func (r *Registry) Get(id int32) *Modifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// IDByName retorna o ID de um tipo pelo nome.
func (r *Registry) IDByName(name string) (int32, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	return id, ok
}

// Len retorna a quantidade de tipos registrados.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
