package meshing

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mhus/nimbus-world-sub010/shared/blockdef"
	"github.com/mhus/nimbus-world-sub010/shared/mapdata"
)

// maxBufferVertices é o teto de vértices endereçáveis pelos índices de
// 16 bits de um buffer.
const maxBufferVertices = 1 << 16

// MeshBuffer acumula a geometria de uma chave de material durante uma
// passada de montagem. Um buffer só pode receber appends de uma única
// goroutine por vez: o cursor de vértices não é seguro para escrita
// concorrente.
type MeshBuffer struct {
	Geometry   GeometryData
	cursor     int
	overflowed bool
}

// Reset zera os slices preservando a capacidade alocada.
func (b *MeshBuffer) Reset() {
	b.Geometry.Vertices = b.Geometry.Vertices[:0]
	b.Geometry.Normals = b.Geometry.Normals[:0]
	b.Geometry.UVs = b.Geometry.UVs[:0]
	b.Geometry.Colors = b.Geometry.Colors[:0]
	b.Geometry.Wind = b.Geometry.Wind[:0]
	b.Geometry.Indices = b.Geometry.Indices[:0]
	b.cursor = 0
	b.overflowed = false
}

// Cursor retorna o próximo índice de vértice do buffer.
func (b *MeshBuffer) Cursor() int {
	return b.cursor
}

// room verifica se mais n vértices cabem nos índices de 16 bits. Um
// buffer cheio descarta as faces seguintes com um único aviso; estourar
// o cursor corromperia os índices de toda a malha.
func (b *MeshBuffer) room(n int) bool {
	if b.cursor+n <= maxBufferVertices {
		return true
	}
	if !b.overflowed {
		b.overflowed = true
		log.Printf("[Mesher] Buffer de material atingiu %d vértices, faces extras descartadas", maxBufferVertices)
	}
	return false
}

func (b *MeshBuffer) addVertex(v mgl32.Vec3, n mgl32.Vec3, uv [2]float32, c [4]uint8, wind [4]float32) {
	b.Geometry.Vertices = append(b.Geometry.Vertices, v.X(), v.Y(), v.Z())
	b.Geometry.Normals = append(b.Geometry.Normals, n.X(), n.Y(), n.Z())
	b.Geometry.UVs = append(b.Geometry.UVs, uv[0], uv[1])
	b.Geometry.Colors = append(b.Geometry.Colors, c[0], c[1], c[2], c[3])
	b.Geometry.Wind = append(b.Geometry.Wind, wind[0], wind[1], wind[2], wind[3])
	b.cursor++
}

// whiteColor é a cor padrão de vértice (branco opaco).
var whiteColor = [4]uint8{255, 255, 255, 255}

// faceNormal calcula a normal unitária de um quad já transformado.
func faceNormal(c0, c1, c2 mgl32.Vec3) mgl32.Vec3 {
	n := c1.Sub(c0).Cross(c2.Sub(c0))
	if n.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return n.Normalize()
}

// FaceEmitter emite quads em buffers de geometria, resolvendo UVs via o
// resolvedor de atlas. Um resolvedor ausente degrada para o retângulo 0..1.
type FaceEmitter struct {
	Atlas AtlasResolver
}

// resolveUV devolve o retângulo UV final de uma textura.
func (e *FaceEmitter) resolveUV(tex *blockdef.TextureDef) UVRect {
	if tex == nil {
		return FullUVRect
	}
	if e != nil && e.Atlas != nil {
		if rect, ok := e.Atlas.Resolve(tex); ok {
			return rect
		}
	}
	if tex.UV != nil {
		return UVRect{U0: tex.UV[0], V0: tex.UV[1], U1: tex.UV[2], V1: tex.UV[3]}
	}
	return FullUVRect
}

// quadUV é o mapeamento canônico dos 4 cantos de um quad no retângulo.
var quadUV = [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// AddFace adiciona um quad (4 vértices, 6 índices) ao buffer.
//
// A orientação V é invertida para faces verticais (normal com Y zero),
// compensando a origem de textura contra o Y do mundo. Com reverse o
// segundo e terceiro índice de cada triângulo trocam de lugar, virando a
// face para culling; a decisão vem de tabelas fixas por forma, nunca é
// calculada dinamicamente.
//
// Cores: tint explícito do chamador > tint da textura > branco opaco.
// Atributos de vento vêm do modificador; os valores de alavanca são
// multiplicados pelo nível do bloco.
func (e *FaceEmitter) AddFace(buf *MeshBuffer, c0, c1, c2, c3 mgl32.Vec3,
	tex *blockdef.TextureDef, mod *blockdef.Modifier, blk *mapdata.Block,
	reverse bool, tint *[4]uint8) {

	if !buf.room(4) {
		return
	}

	normal := faceNormal(c0, c1, c2)
	if reverse {
		normal = normal.Mul(-1)
	}
	rect := e.resolveUV(tex)
	vertical := normal.Y() > -epsilon && normal.Y() < epsilon

	color := whiteColor
	if tex != nil && tex.Color != nil {
		color = *tex.Color
	}
	if tint != nil {
		color = *tint
	}

	var wind [4]float32
	if mod != nil && mod.Wind != nil {
		level := blockLevel(blk)
		wind = [4]float32{
			mod.Wind.Leafiness,
			mod.Wind.Stability,
			mod.Wind.LeverUp * level,
			mod.Wind.LeverDown * level,
		}
	}

	base := uint16(buf.cursor)
	corners := [4]mgl32.Vec3{c0, c1, c2, c3}
	for i, corner := range corners {
		u := rect.U0 + quadUV[i][0]*(rect.U1-rect.U0)
		fv := quadUV[i][1]
		if vertical {
			fv = 1 - fv
		}
		v := rect.V0 + fv*(rect.V1-rect.V0)
		buf.addVertex(corner, normal, [2]float32{u, v}, color, wind)
	}

	if reverse {
		buf.Geometry.Indices = append(buf.Geometry.Indices,
			base, base+2, base+1,
			base, base+3, base+2,
		)
	} else {
		buf.Geometry.Indices = append(buf.Geometry.Indices,
			base, base+1, base+2,
			base, base+2, base+3,
		)
	}
}

// AddTriangle adiciona uma face triangular (3 vértices, 3 índices).
// Usado pelas tampas das formas de revolução.
func (e *FaceEmitter) AddTriangle(buf *MeshBuffer, c0, c1, c2 mgl32.Vec3,
	tex *blockdef.TextureDef, mod *blockdef.Modifier, blk *mapdata.Block,
	reverse bool, tint *[4]uint8) {

	if !buf.room(3) {
		return
	}

	normal := faceNormal(c0, c1, c2)
	if reverse {
		normal = normal.Mul(-1)
	}
	rect := e.resolveUV(tex)
	vertical := normal.Y() > -epsilon && normal.Y() < epsilon

	color := whiteColor
	if tex != nil && tex.Color != nil {
		color = *tex.Color
	}
	if tint != nil {
		color = *tint
	}

	var wind [4]float32
	if mod != nil && mod.Wind != nil {
		level := blockLevel(blk)
		wind = [4]float32{
			mod.Wind.Leafiness,
			mod.Wind.Stability,
			mod.Wind.LeverUp * level,
			mod.Wind.LeverDown * level,
		}
	}

	base := uint16(buf.cursor)
	triUV := [3][2]float32{{0, 0}, {1, 0}, {0.5, 1}}
	for i, corner := range [3]mgl32.Vec3{c0, c1, c2} {
		u := rect.U0 + triUV[i][0]*(rect.U1-rect.U0)
		fv := triUV[i][1]
		if vertical {
			fv = 1 - fv
		}
		v := rect.V0 + fv*(rect.V1-rect.V0)
		buf.addVertex(corner, normal, [2]float32{u, v}, color, wind)
	}

	if reverse {
		buf.Geometry.Indices = append(buf.Geometry.Indices, base, base+2, base+1)
	} else {
		buf.Geometry.Indices = append(buf.Geometry.Indices, base, base+1, base+2)
	}
}

const epsilon = 1e-5

func blockLevel(blk *mapdata.Block) float32 {
	if blk == nil {
		return 1
	}
	return blk.EffectiveLevel()
}
