package meshing

import (
	"errors"
	"testing"
	"time"

	"github.com/mhus/nimbus-world-sub010/shared/blockdef"
	"github.com/mhus/nimbus-world-sub010/shared/mapdata"
	"github.com/mhus/nimbus-world-sub010/shared/util"
)

func newTestStore() *mapdata.MapDataStore {
	registry := blockdef.NewRegistry()
	registry.Register(1, &blockdef.Modifier{
		Name: "pedra",
		Visibility: &blockdef.Visibility{
			Shape: "cube",
			Textures: map[string]*blockdef.TextureDef{
				blockdef.SlotAll: {Path: "blocks/pedra.png"},
			},
		},
	})
	registry.Register(2, &blockdef.Modifier{
		Name: "mato",
		Visibility: &blockdef.Visibility{
			Shape:        "cross",
			Transparency: "cutout",
			Textures: map[string]*blockdef.TextureDef{
				blockdef.SlotAll: {Path: "blocks/mato.png"},
			},
		},
	})
	return mapdata.NewMapDataStore(registry)
}

func fillChunk(store *mapdata.MapDataStore, coord util.ChunkCoord, blocks []*mapdata.Block) *mapdata.Chunk {
	return store.SetChunkBlocks(coord, blocks)
}

func TestGenerateGroupsByMaterial(t *testing.T) {
	store := newTestStore()
	coord := util.ChunkCoord{X: 0, Z: 0}
	origin := coord.Origin()
	chunk := fillChunk(store, coord, []*mapdata.Block{
		{Position: origin, Type: 1, Faces: blockdef.FaceMaskAll},
		{Position: origin.Add(util.NewBlockCoord(1, 0, 0)), Type: 1, Faces: blockdef.FaceMaskAll},
		{Position: origin.Add(util.NewBlockCoord(2, 0, 0)), Type: 2, Faces: blockdef.FaceMaskAll},
	})

	m := NewChunkMesher(0, nil)
	res := m.Generate(Request{Coord: coord, Data: store, MTime: chunk.MTime})

	// Pedra (opaque) e mato (cutout) têm chaves distintas.
	if len(res.MaterialGeometries) != 2 {
		t.Fatalf("material groups = %d, want 2", len(res.MaterialGeometries))
	}
	total := 0
	for _, geo := range res.MaterialGeometries {
		total += geo.VertexCount()
	}
	// Dois cubos (24 cada) e uma cruz (16).
	if total != 64 {
		t.Errorf("total verts = %d, want 64", total)
	}
	if res.MTime != chunk.MTime {
		t.Errorf("result MTime = %d, want %d", res.MTime, chunk.MTime)
	}
}

func TestGenerateSkipsUnknownType(t *testing.T) {
	store := newTestStore()
	coord := util.ChunkCoord{X: 1, Z: 1}
	origin := coord.Origin()
	fillChunk(store, coord, []*mapdata.Block{
		{Position: origin, Type: 99, Faces: blockdef.FaceMaskAll},
		{Position: origin.Add(util.NewBlockCoord(1, 0, 0)), Type: 1, Faces: blockdef.FaceMaskAll},
	})

	m := NewChunkMesher(0, nil)
	res := m.Generate(Request{Coord: coord, Data: store})

	total := 0
	for _, geo := range res.MaterialGeometries {
		total += geo.VertexCount()
	}
	if total != 24 {
		t.Errorf("total verts = %d, want 24 (unknown type skipped, not fatal)", total)
	}
}

func TestGenerateEmptyChunk(t *testing.T) {
	store := newTestStore()
	m := NewChunkMesher(0, nil)

	res := m.Generate(Request{Coord: util.ChunkCoord{X: 7, Z: 7}, Data: store})
	if len(res.MaterialGeometries) != 0 || len(res.Instances) != 0 {
		t.Error("missing chunk must produce an empty result")
	}
}

type failingAssets struct{}

func (failingAssets) Load(path string) (Disposable, error) {
	return nil, errors.New("arquivo não encontrado")
}

func TestGenerateDegradesOnAssetFailure(t *testing.T) {
	registry := blockdef.NewRegistry()
	registry.Register(3, &blockdef.Modifier{
		Name: "estatua",
		Visibility: &blockdef.Visibility{
			Shape: "model",
			Textures: map[string]*blockdef.TextureDef{
				blockdef.SlotAll: {Path: "models/quebrado.glb"},
			},
		},
	})
	registry.Register(1, &blockdef.Modifier{
		Name: "pedra",
		Visibility: &blockdef.Visibility{
			Shape: "cube",
			Textures: map[string]*blockdef.TextureDef{
				blockdef.SlotAll: {Path: "blocks/pedra.png"},
			},
		},
	})
	store := mapdata.NewMapDataStore(registry)

	coord := util.ChunkCoord{X: 0, Z: 0}
	origin := coord.Origin()
	fillChunk(store, coord, []*mapdata.Block{
		{Position: origin, Type: 3, Faces: blockdef.FaceMaskAll},
		{Position: origin.Add(util.NewBlockCoord(1, 0, 0)), Type: 1, Faces: blockdef.FaceMaskAll},
	})

	m := NewChunkMesher(0, nil)
	res := m.Generate(Request{Coord: coord, Data: store, Assets: failingAssets{}, Tracker: NewResourceTracker()})

	// O modelo degrada sozinho; o cubo do lado continua no lote.
	if len(res.Instances) != 0 {
		t.Errorf("instances = %d, want 0 after asset failure", len(res.Instances))
	}
	total := 0
	for _, geo := range res.MaterialGeometries {
		total += geo.VertexCount()
	}
	if total != 24 {
		t.Errorf("total verts = %d, want 24", total)
	}
}

type recordingSurfaces struct {
	handles []*countingHandle
}

func (s *recordingSurfaces) Create(chunk util.ChunkCoord, y int32, key string) (Disposable, error) {
	h := &countingHandle{}
	s.handles = append(s.handles, h)
	return h, nil
}

// Cada passada adquire a própria referência de superfície e a entrega
// no tracker do resultado; quem consome libera depois de readquirir.
// Sem isso, remesh de um chunk de água duplicaria a lâmina para sempre.
func TestGenerateSurfaceLifecycle(t *testing.T) {
	registry := blockdef.NewRegistry()
	registry.Register(4, &blockdef.Modifier{
		Name: "agua",
		Visibility: &blockdef.Visibility{
			Shape:        "surface",
			Transparency: "blend",
			Textures: map[string]*blockdef.TextureDef{
				blockdef.SlotAll: {Path: "blocks/agua.png", Effect: "water"},
			},
		},
	})
	store := mapdata.NewMapDataStore(registry)

	coord := util.ChunkCoord{X: 0, Z: 0}
	origin := coord.Origin()
	chunk := fillChunk(store, coord, []*mapdata.Block{
		{Position: origin.Add(util.NewBlockCoord(0, 12, 0)), Type: 4, Faces: blockdef.FaceMaskAll},
		{Position: origin.Add(util.NewBlockCoord(1, 12, 0)), Type: 4, Faces: blockdef.FaceMaskAll},
	})

	surfaces := &recordingSurfaces{}
	m := NewChunkMesher(0, nil)

	var last Result
	for pass := 0; pass < 2; pass++ {
		res := m.Generate(Request{
			Coord:    coord,
			Data:     store,
			MTime:    chunk.MTime,
			Tracker:  NewResourceTracker(),
			Surfaces: surfaces,
		})
		if res.Tracker == nil {
			t.Fatal("result must carry the assembly tracker")
		}
		if len(res.Surfaces) != 1 {
			t.Fatalf("pass %d declared %d surfaces, want 1", pass, len(res.Surfaces))
		}
		last = res
		res.Tracker.Dispose()
	}

	if len(surfaces.handles) != 2 {
		t.Fatalf("surfaces created = %d, want 2 (one per pass)", len(surfaces.handles))
	}
	for i, h := range surfaces.handles {
		if h.disposed != 1 {
			t.Errorf("surface %d disposed %d times, want 1", i, h.disposed)
		}
	}

	// O cache guarda a declaração, não o tracker: um resultado servido
	// do cache ainda sabe quais superfícies recriar.
	rs := NewResultStore(nil)
	rs.Store(last)
	cached, ok := rs.Get(coord, chunk.MTime)
	if !ok {
		t.Fatal("cache miss for matching MTime")
	}
	if cached.Tracker != nil {
		t.Error("cached result must not carry a tracker")
	}
	if len(cached.Surfaces) != 1 {
		t.Errorf("cached surfaces = %d, want 1", len(cached.Surfaces))
	}
}

// Um pedido que estoura não pode matar o worker nem deixar o chunk
// preso no pendente; os recursos já adquiridos pela passada são soltos.
func TestWorkerSurvivesPanic(t *testing.T) {
	store := newTestStore()
	coord := util.ChunkCoord{X: 9, Z: 9}
	origin := coord.Origin()
	fillChunk(store, coord, []*mapdata.Block{
		{Position: origin, Type: 1, Faces: blockdef.FaceMaskAll},
	})

	m := NewChunkMesher(1, nil)
	defer m.Stop()

	h := &countingHandle{}
	tr := NewResourceTracker()
	tr.Add(h)

	// Sem store de dados a montagem estoura dentro do worker.
	if !m.Enqueue(Request{Coord: coord, Tracker: tr}) {
		t.Fatal("first enqueue must be accepted")
	}

	// A recuperação precisa limpar o pendente para o chunk voltar à fila.
	accepted := false
	for i := 0; i < 200; i++ {
		if m.Enqueue(Request{Coord: coord, Data: store}) {
			accepted = true
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !accepted {
		t.Fatal("chunk stayed pending after a worker panic")
	}

	select {
	case res := <-m.Results():
		if res.Coord != coord {
			t.Errorf("result coord = %s, want %s", res.Coord, coord)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive the panic")
	}

	if h.disposed != 1 {
		t.Errorf("aborted request handle disposed %d times, want 1", h.disposed)
	}
}

func TestEnqueueDeduplicates(t *testing.T) {
	store := newTestStore()
	m := NewChunkMesher(0, nil)
	req := Request{Coord: util.ChunkCoord{X: 3, Z: 4}, Data: store}

	if !m.Enqueue(req) {
		t.Fatal("first enqueue must be accepted")
	}
	if m.Enqueue(req) {
		t.Error("second enqueue of a pending chunk must be rejected")
	}
	if !m.Enqueue(Request{Coord: util.ChunkCoord{X: 5, Z: 5}, Data: store}) {
		t.Error("a different chunk must still be accepted")
	}
}

func TestGenerateUsesResultCache(t *testing.T) {
	store := newTestStore()
	coord := util.ChunkCoord{X: 2, Z: 2}
	origin := coord.Origin()
	chunk := fillChunk(store, coord, []*mapdata.Block{
		{Position: origin, Type: 1, Faces: blockdef.FaceMaskAll},
	})

	rs := NewResultStore(nil)
	m := NewChunkMesher(0, rs)
	res := m.Generate(Request{Coord: coord, Data: store, MTime: chunk.MTime})
	rs.Store(res)

	cached, ok := rs.Get(coord, chunk.MTime)
	if !ok {
		t.Fatal("cache miss for matching MTime")
	}
	if len(cached.MaterialGeometries) != len(res.MaterialGeometries) {
		t.Error("cached result differs from the generated one")
	}

	if _, ok := rs.Get(coord, chunk.MTime+1); ok {
		t.Error("cache must reject a stale MTime")
	}
}

func BenchmarkGenerateFullChunk(b *testing.B) {
	store := newTestStore()
	coord := util.ChunkCoord{X: 0, Z: 0}
	origin := coord.Origin()

	var blocks []*mapdata.Block
	for x := int32(0); x < util.ChunkSize; x++ {
		for z := int32(0); z < util.ChunkSize; z++ {
			for y := int32(0); y < 4; y++ {
				blocks = append(blocks, &mapdata.Block{
					Position: origin.Add(util.NewBlockCoord(x, y, z)),
					Type:     1,
					Faces:    blockdef.FaceMaskAll,
				})
			}
		}
	}
	fillChunk(store, coord, blocks)

	m := NewChunkMesher(0, nil)
	req := Request{Coord: coord, Data: store}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Generate(req)
	}
}
