package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mhus/nimbus-world-sub010/shared/blockdef"
	"github.com/mhus/nimbus-world-sub010/shared/mapdata"
)

// AxisMask indica quais eixos um canto pode mutar via offsets.
// Formas com eixos presos por plano de face (24 pontos, casca interna)
// restringem os deltas aos eixos do plano; o eixo da normal fica fixo.
type AxisMask uint8

const (
	AxisX AxisMask = 1 << iota
	AxisY
	AxisZ
	AxisAll = AxisX | AxisY | AxisZ
)

// ApplyCornerOffsets soma os deltas do bloco aos cantos, respeitando a
// máscara de eixos mutáveis de cada canto. masks com comprimento menor
// que corners libera todos os eixos para os cantos restantes.
func ApplyCornerOffsets(corners []mgl32.Vec3, blk *mapdata.Block, masks []AxisMask) {
	for i := range corners {
		off := blk.CornerOffset(i)
		mask := AxisAll
		if i < len(masks) {
			mask = masks[i]
		}
		if mask&AxisX != 0 {
			corners[i][0] += off[0]
		}
		if mask&AxisY != 0 {
			corners[i][1] += off[1]
		}
		if mask&AxisZ != 0 {
			corners[i][2] += off[2]
		}
	}
}

// ScaleRotateCorners escala e depois rotaciona os cantos ao redor do
// centro. A ordem é fixa: offset -> escala -> rotação (yaw em Y, depois
// pitch em X). Os cantos já estão em coordenadas de mundo, então não há
// passo de translação separado.
func ScaleRotateCorners(corners []mgl32.Vec3, scale [3]float32, rotXDeg, rotYDeg float32, center mgl32.Vec3) {
	scaled := scale[0] != 1 || scale[1] != 1 || scale[2] != 1
	rotated := rotXDeg != 0 || rotYDeg != 0
	if !scaled && !rotated {
		return
	}

	var rot mgl32.Mat3
	if rotated {
		yaw := mgl32.Rotate3DY(mgl32.DegToRad(rotYDeg))
		pitch := mgl32.Rotate3DX(mgl32.DegToRad(rotXDeg))
		rot = pitch.Mul3(yaw)
	}

	for i := range corners {
		p := corners[i].Sub(center)
		if scaled {
			p = mgl32.Vec3{p.X() * scale[0], p.Y() * scale[1], p.Z() * scale[2]}
		}
		if rotated {
			p = rot.Mul3x1(p)
		}
		corners[i] = p.Add(center)
	}
}

// TransformBlockCorners roda o pipeline completo de um bloco: offsets
// (com máscaras por canto), escala e rotação ao redor do centro do bloco.
// Overrides de escala/rotação do modificador têm precedência sobre os
// campos do bloco.
func TransformBlockCorners(corners []mgl32.Vec3, blk *mapdata.Block, vis *blockdef.Visibility, masks []AxisMask) {
	ApplyCornerOffsets(corners, blk, masks)
	ScaleRotateCornersForBlock(corners, blk, vis, blockCenter(blk))
}

// ScaleRotateCornersForBlock aplica escala e rotação do bloco (com os
// overrides do modificador) sem o passo de offsets por canto. Formas de
// revolução interpretam os offsets de outro jeito e chamam isto direto.
func ScaleRotateCornersForBlock(corners []mgl32.Vec3, blk *mapdata.Block, vis *blockdef.Visibility, center mgl32.Vec3) {
	scale := blk.EffectiveScale()
	rotX, rotY := blk.RotX, blk.RotY
	if vis != nil {
		if vis.Scale != nil {
			scale = *vis.Scale
		}
		if vis.RotX != nil {
			rotX = *vis.RotX
		}
		if vis.RotY != nil {
			rotY = *vis.RotY
		}
	}
	ScaleRotateCorners(corners, scale, rotX, rotY, center)
}

func blockCenter(blk *mapdata.Block) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(blk.Position.X) + 0.5,
		float32(blk.Position.Y) + 0.5,
		float32(blk.Position.Z) + 0.5,
	}
}
