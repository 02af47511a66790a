package meshing

import (
	"sync"

	"github.com/mhus/nimbus-world-sub010/shared/blockdef"
	"github.com/mhus/nimbus-world-sub010/shared/mapdata"
	"github.com/mhus/nimbus-world-sub010/shared/util"
)

// GeometryData contém os buffers de vértices para uma malha.
// Indices referencia apenas vértices já presentes: o cursor de vértices
// de um buffer só cresce dentro de uma passada.
type GeometryData struct {
	Vertices []float32 // xyz por vértice
	Normals  []float32 // xyz por vértice
	UVs      []float32 // uv por vértice
	Colors   []uint8   // rgba por vértice
	Wind     []float32 // leafiness, stability, leverUp, leverDown por vértice
	Indices  []uint16
}

// VertexCount retorna o número de vértices emitidos.
func (g GeometryData) VertexCount() int {
	return len(g.Vertices) / 3
}

// Clone cria uma cópia profunda dos dados para evitar corrupção de memória
// quando o buffer de origem volta para o pool.
func (g GeometryData) Clone() GeometryData {
	clone := GeometryData{}
	if len(g.Vertices) > 0 {
		clone.Vertices = make([]float32, len(g.Vertices))
		copy(clone.Vertices, g.Vertices)
	}
	if len(g.Normals) > 0 {
		clone.Normals = make([]float32, len(g.Normals))
		copy(clone.Normals, g.Normals)
	}
	if len(g.UVs) > 0 {
		clone.UVs = make([]float32, len(g.UVs))
		copy(clone.UVs, g.UVs)
	}
	if len(g.Colors) > 0 {
		clone.Colors = make([]uint8, len(g.Colors))
		copy(clone.Colors, g.Colors)
	}
	if len(g.Wind) > 0 {
		clone.Wind = make([]float32, len(g.Wind))
		copy(clone.Wind, g.Wind)
	}
	if len(g.Indices) > 0 {
		clone.Indices = make([]uint16, len(g.Indices))
		copy(clone.Indices, g.Indices)
	}
	return clone
}

// HasWind informa se algum vértice carrega atributo de vento não nulo.
func (g GeometryData) HasWind() bool {
	for _, w := range g.Wind {
		if w != 0 {
			return true
		}
	}
	return false
}

// UVRect é o retângulo UV resolvido de uma textura dentro do atlas.
type UVRect struct {
	U0, V0, U1, V1 float32
}

// FullUVRect é o fallback quando a textura não resolve no atlas.
var FullUVRect = UVRect{U0: 0, V0: 0, U1: 1, V1: 1}

// AtlasResolver resolve uma definição de textura para seu retângulo no
// atlas compartilhado. Retorna false quando a textura ainda não está
// empacotada; o emissor degrada para o retângulo 0..1 sem falhar.
type AtlasResolver interface {
	Resolve(tex *blockdef.TextureDef) (UVRect, bool)
}

// Disposable é o contrato de liberação de um recurso rastreado.
// Dispose nunca lança e pode ser chamado mais de uma vez.
type Disposable interface {
	Dispose()
}

// DisposeFunc adapta uma função para o contrato Disposable.
type DisposeFunc func()

func (f DisposeFunc) Dispose() { f() }

// MeshHandle identifica uma malha criada pela fábrica externa.
type MeshHandle interface {
	Disposable
}

// MaterialHandle identifica um material criado pelo provedor externo.
type MaterialHandle interface {
	Key() string
}

// MeshFactory cria malhas a partir da geometria acumulada.
type MeshFactory interface {
	Create(geo GeometryData) (MeshHandle, error)
}

// MaterialProvider devolve o material canônico de uma chave, com cache.
type MaterialProvider interface {
	GetOrCreate(key string) (MaterialHandle, error)
}

// AssetLoader carrega um modelo externo pelo caminho. Falhas são fatais
// apenas para o bloco que dependia do asset.
type AssetLoader interface {
	Load(path string) (Disposable, error)
}

// SurfaceFactory cria a superfície animada compartilhada de um
// chunk+elevação (água, lava). Uma por nome, deduplicada pelo tracker.
type SurfaceFactory interface {
	Create(chunk util.ChunkCoord, y int32, materialKey string) (Disposable, error)
}

// ModelInstance posiciona um recurso exclusivo (modelo externo, billboard)
// dentro do chunk. O renderer materializa as instâncias por lote.
type ModelInstance struct {
	ModelPath string
	Billboard bool
	Position  [3]float32
	Scale     float32
	Rotation  float32 // graus, eixo Y
	Color     [4]uint8
}

// Request representa um pedido de montagem de malha para um chunk.
type Request struct {
	Coord util.ChunkCoord
	Data  *mapdata.MapDataStore
	MTime int64

	// Colaboradores da passada. Tracker recebe cada recurso exclusivo
	// no momento da criação, para que um abort não vaze handles.
	Tracker  *ResourceTracker
	Atlas    AtlasResolver
	Assets   AssetLoader
	Surfaces SurfaceFactory
}

// SurfaceDef declara uma superfície compartilhada do chunk em uma
// elevação. O chunk vem do próprio Result; quem consome o resultado
// recria a superfície pela fábrica e assume a referência.
type SurfaceDef struct {
	Y   int32
	Key string
}

// Result contém a geometria gerada para um chunk, agrupada por chave
// canônica de material. Cada buffer não-vazio vira exatamente uma malha.
// Instances e Surfaces descrevem os recursos exclusivos de forma
// declarativa, então um resultado vindo do cache reconstrói tudo.
type Result struct {
	Coord              util.ChunkCoord
	MTime              int64
	MaterialGeometries map[string]GeometryData
	Instances          []ModelInstance
	Surfaces           []SurfaceDef

	// Tracker segura as referências adquiridas durante a montagem
	// (modelos, superfícies). Quem sobe o resultado readquire em nome
	// do chunk e então libera este tracker. Resultados clonados ou
	// vindos do cache não carregam tracker.
	Tracker *ResourceTracker
}

// Mesher é a interface para geradores de malha de chunk.
type Mesher interface {
	Enqueue(req Request) bool
	Results() <-chan Result
	Stop()
}

// Pool global para reciclar MeshBuffers e evitar alocação excessiva.
var meshBufferPool = sync.Pool{
	New: func() interface{} {
		return &MeshBuffer{
			Geometry: GeometryData{
				Vertices: make([]float32, 0, 4096),
				Normals:  make([]float32, 0, 4096),
				UVs:      make([]float32, 0, 4096),
				Colors:   make([]uint8, 0, 4096),
				Wind:     make([]float32, 0, 4096),
				Indices:  make([]uint16, 0, 4096),
			},
		}
	},
}

// GetMeshBuffer aloca ou recicla um buffer vazio para meshing.
func GetMeshBuffer() *MeshBuffer {
	buf := meshBufferPool.Get().(*MeshBuffer)
	buf.Reset()
	return buf
}

// PutMeshBuffer devolve a memória do buffer para o pool.
func PutMeshBuffer(b *MeshBuffer) {
	if b == nil {
		return
	}
	b.Reset()
	meshBufferPool.Put(b)
}
