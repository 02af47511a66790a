package mapdata

import (
	"sync"

	"gorm.io/gorm"

	"github.com/mhus/nimbus-world-sub010/shared/blockdef"
	"github.com/mhus/nimbus-world-sub010/shared/util"
)

// MapDataStore é o repositório em memória dos chunks carregados.
// O acesso é protegido por Mu; o meshing lê snapshots e nunca escreve.
type MapDataStore struct {
	Mu     sync.RWMutex
	Chunks map[util.ChunkCoord]*Chunk

	// Registry resolve o modificador de cada tipo de bloco.
	Registry *blockdef.Registry

	// DB é a conexão SQLite para persistência (opcional).
	DB *gorm.DB
}

// NewMapDataStore cria um repositório vazio com o registro informado.
func NewMapDataStore(registry *blockdef.Registry) *MapDataStore {
	if registry == nil {
		registry = blockdef.NewRegistry()
	}
	return &MapDataStore{
		Chunks:   make(map[util.ChunkCoord]*Chunk),
		Registry: registry,
	}
}

// GetChunk retorna o chunk carregado, ou nil.
func (s *MapDataStore) GetChunk(coord util.ChunkCoord) *Chunk {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	return s.Chunks[coord]
}

// PutChunk registra (ou substitui) um chunk carregado.
func (s *MapDataStore) PutChunk(chunk *Chunk) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.Chunks[chunk.Coord] = chunk
}

// SetChunkBlocks substitui os blocos de um chunk, criando-o se preciso.
// Retorna o chunk atualizado.
func (s *MapDataStore) SetChunkBlocks(coord util.ChunkCoord, blocks []*Block) *Chunk {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	chunk, ok := s.Chunks[coord]
	if !ok {
		chunk = NewChunk(coord)
		s.Chunks[coord] = chunk
	}
	chunk.SetBlocks(blocks)
	return chunk
}

// RemoveChunk descarrega um chunk da memória.
func (s *MapDataStore) RemoveChunk(coord util.ChunkCoord) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	delete(s.Chunks, coord)
}

// Modifier resolve o modificador de um bloco via registro de tipos.
func (s *MapDataStore) Modifier(b *Block) *blockdef.Modifier {
	if s.Registry == nil || b == nil {
		return nil
	}
	return s.Registry.Get(b.Type)
}

// LoadedCoords retorna as coordenadas dos chunks em memória.
func (s *MapDataStore) LoadedCoords() []util.ChunkCoord {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	coords := make([]util.ChunkCoord, 0, len(s.Chunks))
	for c := range s.Chunks {
		coords = append(coords, c)
	}
	return coords
}
