package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mhus/nimbus-world-sub010/shared/blockdef"
	"github.com/mhus/nimbus-world-sub010/shared/mapdata"
)

// hasGeometry verifica o mínimo para emitir algo: modificador com
// visibilidade e ao menos uma textura. Faltando qualquer parte o bloco
// é pulado em silêncio (não é erro).
func hasGeometry(mod *blockdef.Modifier) bool {
	return mod != nil && mod.Visibility != nil && len(mod.Visibility.Textures) > 0
}

// cubeGenerator emite a caixa clássica de oito cantos compartilhados.
type cubeGenerator struct{}

func (cubeGenerator) Exclusive() bool { return false }

func (cubeGenerator) Generate(ctx *Context, blk *mapdata.Block, mod *blockdef.Modifier) error {
	if !hasGeometry(mod) {
		return nil
	}
	vis := mod.Visibility
	corners := cubeCorners(blk)
	TransformBlockCorners(corners, blk, vis, nil)
	emitBoxFaces(ctx, corners, blk, mod, vis.FaceMask(blk.Faces))
	return nil
}

// pointsGenerator emite uma caixa com 24 cantos independentes, quatro
// por face, permitindo que faces deslizem umas sobre as outras. Os
// offsets de canto só podem mutar os eixos do plano da face; o eixo da
// normal fica preso para a face continuar plana.
type pointsGenerator struct{}

func (pointsGenerator) Exclusive() bool { return false }

// pointsAxisMask dá os eixos mutáveis dos quatro cantos de cada face.
var pointsAxisMask = [blockdef.FaceCount]AxisMask{
	blockdef.FaceTop:    AxisX | AxisZ,
	blockdef.FaceBottom: AxisX | AxisZ,
	blockdef.FaceLeft:   AxisY | AxisZ,
	blockdef.FaceRight:  AxisY | AxisZ,
	blockdef.FaceFront:  AxisX | AxisY,
	blockdef.FaceBack:   AxisX | AxisY,
}

func (pointsGenerator) Generate(ctx *Context, blk *mapdata.Block, mod *blockdef.Modifier) error {
	if !hasGeometry(mod) {
		return nil
	}
	vis := mod.Visibility

	base := mgl32.Vec3{
		float32(blk.Position.X),
		float32(blk.Position.Y),
		float32(blk.Position.Z),
	}
	corners := make([]mgl32.Vec3, 0, 24)
	masks := make([]AxisMask, 0, 24)
	for f := blockdef.Face(0); f < blockdef.FaceCount; f++ {
		for _, ci := range cubeFaceCorners[f] {
			corners = append(corners, base.Add(cubeCornerOffsets[ci]))
			masks = append(masks, pointsAxisMask[f])
		}
	}
	TransformBlockCorners(corners, blk, vis, masks)

	mask := vis.FaceMask(blk.Faces)
	for f := blockdef.Face(0); f < blockdef.FaceCount; f++ {
		if !f.Visible(mask) {
			continue
		}
		tex := vis.TextureForFace(f)
		if tex == nil {
			continue
		}
		buf := ctx.Buffer(vis, tex)
		i := int(f) * 4
		ctx.Emitter.AddFace(buf,
			corners[i], corners[i+1], corners[i+2], corners[i+3],
			tex, mod, blk, false, nil)
	}
	return nil
}

// stepsGenerator emite um degrau de dois níveis: meia caixa inferior
// ocupando a pegada inteira e meia caixa superior sobre a metade de
// trás. Dezesseis cantos no total, oito por meia caixa, todos com os
// três eixos livres para offsets.
type stepsGenerator struct{}

func (stepsGenerator) Exclusive() bool { return false }

var stepLowerOffsets = [8]mgl32.Vec3{
	{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1},
	{0, 0.5, 0}, {1, 0.5, 0}, {1, 0.5, 1}, {0, 0.5, 1},
}

var stepUpperOffsets = [8]mgl32.Vec3{
	{0, 0.5, 0.5}, {1, 0.5, 0.5}, {1, 0.5, 1}, {0, 0.5, 1},
	{0, 1, 0.5}, {1, 1, 0.5}, {1, 1, 1}, {0, 1, 1},
}

func (stepsGenerator) Generate(ctx *Context, blk *mapdata.Block, mod *blockdef.Modifier) error {
	if !hasGeometry(mod) {
		return nil
	}
	vis := mod.Visibility

	base := mgl32.Vec3{
		float32(blk.Position.X),
		float32(blk.Position.Y),
		float32(blk.Position.Z),
	}
	corners := make([]mgl32.Vec3, 16)
	for i, off := range stepLowerOffsets {
		corners[i] = base.Add(off)
	}
	for i, off := range stepUpperOffsets {
		corners[8+i] = base.Add(off)
	}
	TransformBlockCorners(corners, blk, vis, nil)

	mask := vis.FaceMask(blk.Faces)
	emitBoxFaces(ctx, corners[:8], blk, mod, mask)
	// O fundo da meia caixa superior encosta no topo da inferior e
	// nunca aparece.
	upperMask := mask &^ blockdef.FaceBottom.Bit()
	emitBoxFaces(ctx, corners[8:], blk, mod, upperMask)
	return nil
}
