package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mhus/nimbus-world-sub010/shared/blockdef"
	"github.com/mhus/nimbus-world-sub010/shared/mapdata"
)

// hollowWall é a espessura da parede da casca interna.
const hollowWall = 0.125

// hollowGenerator emite uma caixa oca: casca externa de 8 cantos, casca
// interna de 24 cantos (4 por face, recuados pela espessura da parede,
// enrolamento invertido) e até 24 faces de preenchimento cobrindo o
// corte da parede onde uma face externa está oculta.
//
// Os offsets da casca interna são desacoplados dos da externa: cada
// canto interno tem seu próprio delta, restrito aos eixos do plano.
type hollowGenerator struct{}

func (hollowGenerator) Exclusive() bool { return false }

// hollowInnerBase são os 8 cantos do cubo recuados pela espessura da
// parede em todos os eixos; as faces internas são lidas daqui com a
// mesma tabela de índices das externas.
var hollowInnerBase = [8]mgl32.Vec3{
	{hollowWall, hollowWall, hollowWall},
	{1 - hollowWall, hollowWall, hollowWall},
	{1 - hollowWall, hollowWall, 1 - hollowWall},
	{hollowWall, hollowWall, 1 - hollowWall},
	{hollowWall, 1 - hollowWall, hollowWall},
	{1 - hollowWall, 1 - hollowWall, hollowWall},
	{1 - hollowWall, 1 - hollowWall, 1 - hollowWall},
	{hollowWall, 1 - hollowWall, 1 - hollowWall},
}

// faceEdgeNeighbor[f][j] é a face vizinha através da aresta j da face f
// (aresta entre os cantos j e j+1 na ordem da tabela de faces).
var faceEdgeNeighbor [blockdef.FaceCount][4]blockdef.Face

func init() {
	for f := blockdef.Face(0); f < blockdef.FaceCount; f++ {
		for j := 0; j < 4; j++ {
			a := cubeFaceCorners[f][j]
			b := cubeFaceCorners[f][(j+1)%4]
			for g := blockdef.Face(0); g < blockdef.FaceCount; g++ {
				if g == f {
					continue
				}
				if faceHasCorner(g, a) && faceHasCorner(g, b) {
					faceEdgeNeighbor[f][j] = g
					break
				}
			}
		}
	}
}

func faceHasCorner(f blockdef.Face, corner int) bool {
	for _, c := range cubeFaceCorners[f] {
		if c == corner {
			return true
		}
	}
	return false
}

// faceCornerSlot localiza a posição de um canto do cubo dentro da
// tabela de uma face. Retorna -1 se o canto não pertencer à face.
func faceCornerSlot(f blockdef.Face, corner int) int {
	for j, c := range cubeFaceCorners[f] {
		if c == corner {
			return j
		}
	}
	return -1
}

// hollowInnerIdx calcula o índice do canto j da face interna f dentro
// do arranjo de 32 cantos (8 externos seguidos de 24 internos).
func hollowInnerIdx(f blockdef.Face, j int) int {
	return 8 + int(f)*4 + j
}

func (hollowGenerator) Generate(ctx *Context, blk *mapdata.Block, mod *blockdef.Modifier) error {
	if !hasGeometry(mod) {
		return nil
	}
	vis := mod.Visibility

	base := mgl32.Vec3{
		float32(blk.Position.X),
		float32(blk.Position.Y),
		float32(blk.Position.Z),
	}
	corners := make([]mgl32.Vec3, 0, 32)
	masks := make([]AxisMask, 0, 32)
	for _, off := range cubeCornerOffsets {
		corners = append(corners, base.Add(off))
		masks = append(masks, AxisAll)
	}
	for f := blockdef.Face(0); f < blockdef.FaceCount; f++ {
		for _, ci := range cubeFaceCorners[f] {
			corners = append(corners, base.Add(hollowInnerBase[ci]))
			masks = append(masks, pointsAxisMask[f])
		}
	}
	TransformBlockCorners(corners, blk, vis, masks)

	mask := vis.FaceMask(blk.Faces)

	// Faces externas e internas das paredes presentes.
	for f := blockdef.Face(0); f < blockdef.FaceCount; f++ {
		if !f.Visible(mask) {
			continue
		}
		if tex := vis.TextureForFace(f); tex != nil {
			buf := ctx.Buffer(vis, tex)
			idx := cubeFaceCorners[f]
			ctx.Emitter.AddFace(buf,
				corners[idx[0]], corners[idx[1]], corners[idx[2]], corners[idx[3]],
				tex, mod, blk, false, nil)
		}
		if tex := vis.TextureForInside(f); tex != nil {
			buf := ctx.Buffer(vis, tex)
			i := hollowInnerIdx(f, 0)
			ctx.Emitter.AddFace(buf,
				corners[i], corners[i+1], corners[i+2], corners[i+3],
				tex, mod, blk, true, nil)
		}
	}

	// Faces de preenchimento: uma por aresta de cada abertura, ligando a
	// borda externa ao canto interno da parede vizinha. Emitida somente
	// quando a face externa está oculta e a parede do outro lado da
	// aresta existe.
	for f := blockdef.Face(0); f < blockdef.FaceCount; f++ {
		if f.Visible(mask) {
			continue
		}
		for j := 0; j < 4; j++ {
			g := faceEdgeNeighbor[f][j]
			if !g.Visible(mask) {
				continue
			}
			a := cubeFaceCorners[f][j]
			b := cubeFaceCorners[f][(j+1)%4]
			ia := hollowInnerIdx(g, faceCornerSlot(g, a))
			ib := hollowInnerIdx(g, faceCornerSlot(g, b))
			tex := vis.TextureForGap(g)
			if tex == nil {
				continue
			}
			buf := ctx.Buffer(vis, tex)
			ctx.Emitter.AddFace(buf,
				corners[a], corners[b], corners[ib], corners[ia],
				tex, mod, blk, false, nil)
		}
	}
	return nil
}
