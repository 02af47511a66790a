package mapdata

import (
	"github.com/mhus/nimbus-world-sub010/shared/util"
)

// Chunk agrupa os blocos de uma partição 16x16 do mundo.
// MTime versiona o conteúdo: qualquer alteração nos blocos incrementa o
// valor, e resultados de meshing são válidos apenas para o MTime em que
// foram gerados.
type Chunk struct {
	Coord  util.ChunkCoord
	Blocks []*Block
	MTime  int64

	// IsDirty marca chunks pendentes de persistência.
	IsDirty bool
}

// NewChunk cria um chunk vazio.
func NewChunk(coord util.ChunkCoord) *Chunk {
	return &Chunk{Coord: coord}
}

// SetBlocks substitui o conteúdo do chunk e avança a versão.
func (c *Chunk) SetBlocks(blocks []*Block) {
	c.Blocks = blocks
	c.MTime++
	c.IsDirty = true
}
