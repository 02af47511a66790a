package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mhus/nimbus-world-sub010/shared/blockdef"
	"github.com/mhus/nimbus-world-sub010/shared/mapdata"
	"github.com/mhus/nimbus-world-sub010/shared/util"
)

// Context carrega tudo que um gerador de forma precisa: o emissor de
// faces, o acesso aos buffers por chave de material e os colaboradores
// de recursos do chunk em montagem.
type Context struct {
	Emitter  *FaceEmitter
	Coord    util.ChunkCoord
	Tracker  *ResourceTracker
	Assets   AssetLoader
	Surfaces SurfaceFactory

	// getBuffer devolve o buffer do material, criando se necessário.
	getBuffer func(key string) *MeshBuffer

	// addInstance acumula instâncias de modelos e sprites no resultado.
	addInstance func(inst ModelInstance)

	// addSurface registra superfícies compartilhadas no resultado.
	addSurface func(def SurfaceDef)
}

// Buffer resolve o buffer de geometria da combinação visibilidade e
// textura, criando um novo para chaves ainda não vistas.
func (ctx *Context) Buffer(vis *blockdef.Visibility, tex *blockdef.TextureDef) *MeshBuffer {
	return ctx.getBuffer(MaterialKey(vis, tex))
}

// AddInstance anexa uma instância exclusiva (modelo ou sprite) ao
// resultado do chunk.
func (ctx *Context) AddInstance(inst ModelInstance) {
	ctx.addInstance(inst)
}

// AddSurface anexa a declaração de uma superfície compartilhada ao
// resultado do chunk.
func (ctx *Context) AddSurface(def SurfaceDef) {
	ctx.addSurface(def)
}

// Generator produz a geometria de uma forma de bloco.
type Generator interface {
	// Generate emite as faces do bloco nos buffers do contexto.
	Generate(ctx *Context, blk *mapdata.Block, mod *blockdef.Modifier) error
	// Exclusive indica formas que não entram nos lotes por material
	// (modelos, sprites e superfícies compartilhadas).
	Exclusive() bool
}

// generators mapeia nome de forma para gerador. Nomes desconhecidos
// caem no cubo.
var generators = map[string]Generator{
	"":         cubeGenerator{},
	"cube":     cubeGenerator{},
	"cross":    crossGenerator{},
	"points":   pointsGenerator{},
	"hash":     pointsGenerator{},
	"steps":    stepsGenerator{},
	"hollow":   hollowGenerator{},
	"curved":   curvedGenerator{},
	"cylinder": curvedGenerator{},
	"foliage":  foliageGenerator{},
	"model":    modelGenerator{},
	"sprite":   spriteGenerator{},
	"surface":  surfaceGenerator{},
}

// GeneratorFor seleciona o gerador pela forma declarada na visibilidade.
func GeneratorFor(shape string) Generator {
	if g, ok := generators[shape]; ok {
		return g
	}
	return cubeGenerator{}
}

// Cantos do cubo unitário na ordem canônica: anel inferior 0..3 no
// sentido anti-horário visto de cima, anel superior 4..7 na mesma ordem.
//
//	  7-------6
//	 /|      /|
//	4-------5 |
//	| 3-----|-2
//	|/      |/
//	0-------1
var cubeCornerOffsets = [8]mgl32.Vec3{
	{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1},
	{0, 1, 0}, {1, 1, 0}, {1, 1, 1}, {0, 1, 1},
}

// cubeFaceCorners lista, por face, os quatro índices de canto em ordem
// anti-horária vista de fora do bloco.
var cubeFaceCorners = [blockdef.FaceCount][4]int{
	blockdef.FaceTop:    {7, 6, 5, 4},
	blockdef.FaceBottom: {0, 1, 2, 3},
	blockdef.FaceLeft:   {0, 3, 7, 4},
	blockdef.FaceRight:  {2, 1, 5, 6},
	blockdef.FaceFront:  {1, 0, 4, 5},
	blockdef.FaceBack:   {3, 2, 6, 7},
}

// cubeCorners monta os oito cantos do bloco em coordenadas de mundo.
func cubeCorners(blk *mapdata.Block) []mgl32.Vec3 {
	base := mgl32.Vec3{
		float32(blk.Position.X),
		float32(blk.Position.Y),
		float32(blk.Position.Z),
	}
	corners := make([]mgl32.Vec3, 8)
	for i, off := range cubeCornerOffsets {
		corners[i] = base.Add(off)
	}
	return corners
}

// emitBoxFaces emite as faces visíveis de uma caixa de oito cantos
// usando a cadeia de fallback de slots de textura. Cascas internas não
// passam por aqui; a forma oca emite as faces invertidas por conta
// própria, com a indexação de cantos dela.
func emitBoxFaces(ctx *Context, corners []mgl32.Vec3, blk *mapdata.Block, mod *blockdef.Modifier, mask uint8) {
	vis := mod.Visibility
	for f := blockdef.Face(0); f < blockdef.FaceCount; f++ {
		if !f.Visible(mask) {
			continue
		}
		tex := vis.TextureForFace(f)
		if tex == nil {
			continue
		}
		buf := ctx.Buffer(vis, tex)
		idx := cubeFaceCorners[f]
		ctx.Emitter.AddFace(buf,
			corners[idx[0]], corners[idx[1]], corners[idx[2]], corners[idx[3]],
			tex, mod, blk, false, nil)
	}
}
