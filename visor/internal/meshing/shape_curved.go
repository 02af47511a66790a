package meshing

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mhus/nimbus-world-sub010/shared/blockdef"
	"github.com/mhus/nimbus-world-sub010/shared/mapdata"
)

// curvedSegments é o número de fatias da revolução.
const curvedSegments = 12

// curvedGenerator emite um sólido de revolução com raios independentes
// em cima e embaixo. Aqui os offsets do bloco não são deltas por canto:
// offset 0 ajusta o raio inferior, offset 1 o superior e os offsets 2 a
// 4 deslocam o centro do anel superior, permitindo troncos tortos e
// colunas cônicas.
type curvedGenerator struct{}

func (curvedGenerator) Exclusive() bool { return false }

func blockOffset(blk *mapdata.Block, i int) float32 {
	if i < len(blk.Offsets) {
		return blk.Offsets[i]
	}
	return 0
}

func (curvedGenerator) Generate(ctx *Context, blk *mapdata.Block, mod *blockdef.Modifier) error {
	if !hasGeometry(mod) {
		return nil
	}
	vis := mod.Visibility

	bottomR := 0.5 + blockOffset(blk, 0)
	topR := 0.5 + blockOffset(blk, 1)
	if bottomR <= 0 && topR <= 0 {
		return nil
	}
	if bottomR < 0 {
		bottomR = 0
	}
	if topR < 0 {
		topR = 0
	}

	center := blockCenter(blk)
	bottomC := mgl32.Vec3{center.X(), float32(blk.Position.Y), center.Z()}
	topC := mgl32.Vec3{
		center.X() + blockOffset(blk, 2),
		float32(blk.Position.Y) + 1 + blockOffset(blk, 3),
		center.Z() + blockOffset(blk, 4),
	}

	// Anéis completos mais os dois centros, transformados juntos para a
	// rotação e a escala agirem sobre o sólido inteiro.
	ring := curvedSegments + 1
	corners := make([]mgl32.Vec3, 0, 2*ring+2)
	for i := 0; i <= curvedSegments; i++ {
		a := 2 * math.Pi * float64(i) / curvedSegments
		sin, cos := float32(math.Sin(a)), float32(math.Cos(a))
		corners = append(corners, bottomC.Add(mgl32.Vec3{bottomR * cos, 0, bottomR * sin}))
	}
	for i := 0; i <= curvedSegments; i++ {
		a := 2 * math.Pi * float64(i) / curvedSegments
		sin, cos := float32(math.Sin(a)), float32(math.Cos(a))
		corners = append(corners, topC.Add(mgl32.Vec3{topR * cos, 0, topR * sin}))
	}
	corners = append(corners, bottomC, topC)
	ScaleRotateCornersForBlock(corners, blk, vis, center)

	bot := corners[:ring]
	top := corners[ring : 2*ring]
	bc := corners[2*ring]
	tc := corners[2*ring+1]

	mask := vis.FaceMask(blk.Faces)

	lateral := blockdef.FaceLeft.Bit() | blockdef.FaceRight.Bit() |
		blockdef.FaceFront.Bit() | blockdef.FaceBack.Bit()
	sideTex := vis.TextureForFace(blockdef.FaceFront)
	if sideTex != nil && mask&lateral != 0 {
		buf := ctx.Buffer(vis, sideTex)
		for i := 0; i < curvedSegments; i++ {
			ctx.Emitter.AddFace(buf,
				bot[i+1], bot[i], top[i], top[i+1],
				sideTex, mod, blk, false, nil)
		}
	}

	if blockdef.FaceTop.Visible(mask) && topR > 0 {
		if tex := vis.TextureForFace(blockdef.FaceTop); tex != nil {
			buf := ctx.Buffer(vis, tex)
			for i := 0; i < curvedSegments; i++ {
				ctx.Emitter.AddTriangle(buf, tc, top[i+1], top[i], tex, mod, blk, false, nil)
			}
		}
	}
	if blockdef.FaceBottom.Visible(mask) && bottomR > 0 {
		if tex := vis.TextureForFace(blockdef.FaceBottom); tex != nil {
			buf := ctx.Buffer(vis, tex)
			for i := 0; i < curvedSegments; i++ {
				ctx.Emitter.AddTriangle(buf, bc, bot[i], bot[i+1], tex, mod, blk, false, nil)
			}
		}
	}
	return nil
}
