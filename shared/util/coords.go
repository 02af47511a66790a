package util

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Vector3 é um alias para rl.Vector3 para conveniência
type Vector3 = rl.Vector3

// BlockCoord representa a posição inteira de um bloco no mundo.
// X = leste/oeste, Y = altura, Z = norte/sul. O bloco ocupa o cubo
// [X,X+1] x [Y,Y+1] x [Z,Z+1] no espaço 3D.
type BlockCoord struct {
	X, Y, Z int32
}

// NewBlockCoord cria uma nova coordenada de bloco.
func NewBlockCoord(x, y, z int32) BlockCoord {
	return BlockCoord{X: x, Y: y, Z: z}
}

// Add soma duas coordenadas.
func (c BlockCoord) Add(other BlockCoord) BlockCoord {
	return BlockCoord{
		X: c.X + other.X,
		Y: c.Y + other.Y,
		Z: c.Z + other.Z,
	}
}

// Sub subtrai duas coordenadas.
func (c BlockCoord) Sub(other BlockCoord) BlockCoord {
	return BlockCoord{
		X: c.X - other.X,
		Y: c.Y - other.Y,
		Z: c.Z - other.Z,
	}
}

// Equals verifica igualdade entre coordenadas.
func (c BlockCoord) Equals(other BlockCoord) bool {
	return c.X == other.X && c.Y == other.Y && c.Z == other.Z
}

// String retorna a representação em string da coordenada.
func (c BlockCoord) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z)
}

// ChunkSize é o tamanho horizontal de um chunk (16x16 colunas, altura livre).
const ChunkSize = 16

// ChunkCoord identifica um chunk no plano X/Z.
type ChunkCoord struct {
	X, Z int32
}

// String retorna a representação em string da coordenada de chunk.
func (c ChunkCoord) String() string {
	return fmt.Sprintf("[%d, %d]", c.X, c.Z)
}

// Origin retorna a coordenada de bloco do canto do chunk (Y=0).
func (c ChunkCoord) Origin() BlockCoord {
	return BlockCoord{X: c.X * ChunkSize, Y: 0, Z: c.Z * ChunkSize}
}

// ChunkOf retorna o chunk que contém a coordenada de bloco.
func ChunkOf(c BlockCoord) ChunkCoord {
	return ChunkCoord{
		X: int32(math.Floor(float64(c.X) / float64(ChunkSize))),
		Z: int32(math.Floor(float64(c.Z) / float64(ChunkSize))),
	}
}

// ToWorldPos converte a coordenada de bloco para o canto mínimo no espaço 3D.
func (c BlockCoord) ToWorldPos() rl.Vector3 {
	return rl.Vector3{
		X: float32(c.X),
		Y: float32(c.Y),
		Z: float32(c.Z),
	}
}

// ToWorldCenter converte para o centro do bloco no espaço 3D.
func (c BlockCoord) ToWorldCenter() rl.Vector3 {
	pos := c.ToWorldPos()
	pos.X += 0.5
	pos.Y += 0.5
	pos.Z += 0.5
	return pos
}

// WorldToBlockCoord retorna o bloco que contém a posição 3D.
func WorldToBlockCoord(pos rl.Vector3) BlockCoord {
	return BlockCoord{
		X: int32(math.Floor(float64(pos.X))),
		Y: int32(math.Floor(float64(pos.Y))),
		Z: int32(math.Floor(float64(pos.Z))),
	}
}
