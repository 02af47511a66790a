package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mhus/nimbus-world-sub010/shared/blockdef"
	"github.com/mhus/nimbus-world-sub010/shared/mapdata"
	"github.com/mhus/nimbus-world-sub010/shared/util"
)

// crossGenerator emite as duas placas diagonais clássicas de vegetação.
// Cada placa é dupla-face: o mesmo quad entra duas vezes, a segunda com
// enrolamento invertido, para aparecer de ambos os lados mesmo com
// culling ligado.
type crossGenerator struct{}

func (crossGenerator) Exclusive() bool { return false }

// As diagonais usam os cantos do cubo: 0-2 e 1-3 no anel inferior.
var crossQuads = [2][4]int{
	{0, 2, 6, 4},
	{1, 3, 7, 5},
}

func (crossGenerator) Generate(ctx *Context, blk *mapdata.Block, mod *blockdef.Modifier) error {
	if !hasGeometry(mod) {
		return nil
	}
	vis := mod.Visibility

	corners := cubeCorners(blk)
	TransformBlockCorners(corners, blk, vis, nil)

	tex := vis.TextureForFace(blockdef.FaceFront)
	if tex == nil {
		return nil
	}
	buf := ctx.Buffer(vis, tex)
	for _, q := range crossQuads {
		ctx.Emitter.AddFace(buf,
			corners[q[0]], corners[q[1]], corners[q[2]], corners[q[3]],
			tex, mod, blk, false, nil)
		ctx.Emitter.AddFace(buf,
			corners[q[0]], corners[q[1]], corners[q[2]], corners[q[3]],
			tex, mod, blk, true, nil)
	}
	return nil
}

// foliageGenerator emite um aglomerado de placas que se cruzam em
// ângulos pseudo-aleatórios derivados da coordenada do bloco. O mesmo
// bloco sempre produz as mesmas placas, então o chunk remontado fica
// idêntico.
type foliageGenerator struct{}

func (foliageGenerator) Exclusive() bool { return false }

const foliagePlanes = 3

func (foliageGenerator) Generate(ctx *Context, blk *mapdata.Block, mod *blockdef.Modifier) error {
	if !hasGeometry(mod) {
		return nil
	}
	vis := mod.Visibility

	tex := vis.TextureForFace(blockdef.FaceFront)
	if tex == nil {
		return nil
	}
	buf := ctx.Buffer(vis, tex)

	h := util.Hash3(blk.Position.X, blk.Position.Y, blk.Position.Z)
	baseYaw := float32(h % 360)
	tilt := float32(h%23) - 11

	center := blockCenter(blk)
	for i := 0; i < foliagePlanes; i++ {
		yaw := baseYaw + float32(i)*(180.0/foliagePlanes)

		// Placa vertical centrada no bloco, um pouco mais larga que a
		// célula para as copas se entrelaçarem.
		const half = 0.65
		corners := []mgl32.Vec3{
			center.Add(mgl32.Vec3{-half, -0.5, 0}),
			center.Add(mgl32.Vec3{half, -0.5, 0}),
			center.Add(mgl32.Vec3{half, 0.5, 0}),
			center.Add(mgl32.Vec3{-half, 0.5, 0}),
		}
		ScaleRotateCorners(corners, blk.EffectiveScale(), tilt, yaw, center)

		ctx.Emitter.AddFace(buf,
			corners[0], corners[1], corners[2], corners[3],
			tex, mod, blk, false, nil)
		ctx.Emitter.AddFace(buf,
			corners[0], corners[1], corners[2], corners[3],
			tex, mod, blk, true, nil)
	}
	return nil
}
