package mapdata

import (
	"github.com/mhus/nimbus-world-sub010/shared/util"
)

// Block descreve uma instância de bloco dentro de um chunk.
// É um dado de entrada do meshing: o core nunca muta um Block.
type Block struct {
	Position util.BlockCoord

	// Type referencia o modificador no registro de tipos.
	Type int32

	// Rotação em graus: RotY (yaw) aplicado antes de RotX (pitch).
	RotX float32
	RotY float32

	// Offsets são deltas aditivos por canto, consumidos de 3 em 3
	// (dx,dy,dz). O comprimento esperado depende da forma; posições
	// ausentes valem zero.
	Offsets []float32

	// Scale não-uniforme por eixo. Zero significa "sem override" (1.0).
	Scale [3]float32

	// Faces é a máscara de visibilidade de 6 bits (blockdef.Face.Bit).
	Faces uint8

	// Level é um multiplicador numérico opcional (alavanca de vento,
	// altura de superfícies). Zero significa "sem nível" (1.0).
	Level float32
}

// EffectiveScale devolve a escala com defaults aplicados.
func (b *Block) EffectiveScale() [3]float32 {
	s := b.Scale
	for i := range s {
		if s[i] == 0 {
			s[i] = 1
		}
	}
	return s
}

// EffectiveLevel devolve o multiplicador de nível (1.0 quando ausente).
func (b *Block) EffectiveLevel() float32 {
	if b.Level == 0 {
		return 1
	}
	return b.Level
}

// CornerOffset retorna o delta do canto i (zero quando fora da lista).
func (b *Block) CornerOffset(i int) [3]float32 {
	base := i * 3
	var out [3]float32
	for a := 0; a < 3; a++ {
		if base+a < len(b.Offsets) {
			out[a] = b.Offsets[base+a]
		}
	}
	return out
}
