package render

import (
	"fmt"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mhus/nimbus-world-sub010/shared/util"
	"github.com/mhus/nimbus-world-sub010/visor/internal/meshing"
)

// Surface é a lâmina animada compartilhada de um chunk+elevação. Não há
// recurso de GPU próprio: o renderer desenha um plano procedural com o
// material da chave.
type Surface struct {
	Chunk util.ChunkCoord
	Y     int32
	Key   string
}

// Center devolve o centro da lâmina em coordenadas de mundo, no topo da
// camada de blocos.
func (s *Surface) Center() rl.Vector3 {
	origin := s.Chunk.Origin()
	half := float32(util.ChunkSize) / 2
	return rl.Vector3{
		X: float32(origin.X) + half,
		Y: float32(s.Y) + 0.9,
		Z: float32(origin.Z) + half,
	}
}

type surfaceEntry struct {
	surface *Surface
	refs    int
}

// surfaceRef é uma referência contada a uma entrada do registro. Cada
// Create devolve a sua; a entrada some quando a última referência morre.
type surfaceRef struct {
	registry *SurfaceRegistry
	name     string
	once     sync.Once
}

func (h *surfaceRef) Dispose() {
	h.once.Do(func() {
		h.registry.release(h.name)
	})
}

// SurfaceRegistry implementa a fábrica de superfícies do meshing. O
// dedupe é por chunk+elevação+chave, com contagem de referências: a
// montagem e o modelo do chunk podem segurar referências à mesma lâmina
// em momentos diferentes sem duplicar o desenho. Criação e descarte
// podem vir de qualquer goroutine; o desenho lê um snapshot sob lock.
type SurfaceRegistry struct {
	mu      sync.Mutex
	entries map[string]*surfaceEntry
}

func NewSurfaceRegistry() *SurfaceRegistry {
	return &SurfaceRegistry{entries: make(map[string]*surfaceEntry)}
}

func surfaceName(chunk util.ChunkCoord, y int32, key string) string {
	return fmt.Sprintf("%s|%d|%s", chunk, y, key)
}

func (r *SurfaceRegistry) Create(chunk util.ChunkCoord, y int32, materialKey string) (meshing.Disposable, error) {
	name := surfaceName(chunk, y, materialKey)
	r.mu.Lock()
	e, ok := r.entries[name]
	if !ok {
		e = &surfaceEntry{surface: &Surface{Chunk: chunk, Y: y, Key: materialKey}}
		r.entries[name] = e
	}
	e.refs++
	r.mu.Unlock()
	return &surfaceRef{registry: r, name: name}, nil
}

func (r *SurfaceRegistry) release(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(r.entries, name)
	}
}

// Snapshot copia as superfícies vivas para o passe de desenho.
func (r *SurfaceRegistry) Snapshot() []*Surface {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Surface, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.surface)
	}
	return out
}

// Len retorna o número de superfícies registradas.
func (r *SurfaceRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
