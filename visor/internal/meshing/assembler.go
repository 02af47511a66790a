package meshing

import (
	"log"
	"sync"

	"github.com/mhus/nimbus-world-sub010/shared/util"
)

// ChunkMesher implementa o montador de malhas de chunk com um pool de
// workers. Pedidos repetidos do mesmo chunk são deduplicados enquanto a
// montagem anterior não termina.
type ChunkMesher struct {
	requests    chan Request
	results     chan Result
	stop        chan struct{}
	ResultStore *ResultStore
	pending     map[util.ChunkCoord]bool
	pendingMu   sync.Mutex
}

// NewChunkMesher cria e inicia um novo montador.
func NewChunkMesher(workers int, resultStore *ResultStore) *ChunkMesher {
	m := &ChunkMesher{
		requests:    make(chan Request, 2000),
		results:     make(chan Result, 2000),
		stop:        make(chan struct{}),
		ResultStore: resultStore,
		pending:     make(map[util.ChunkCoord]bool),
	}

	for i := 0; i < workers; i++ {
		go m.worker()
	}

	return m
}

func (m *ChunkMesher) Enqueue(req Request) bool {
	m.pendingMu.Lock()
	if m.pending[req.Coord] {
		m.pendingMu.Unlock()
		return false
	}
	m.pending[req.Coord] = true
	m.pendingMu.Unlock()

	select {
	case m.requests <- req:
		return true
	default:
		// Fila cheia; remove do pendente para tentar depois.
		m.pendingMu.Lock()
		delete(m.pending, req.Coord)
		m.pendingMu.Unlock()
		return false
	}
}

func (m *ChunkMesher) Results() <-chan Result {
	return m.results
}

func (m *ChunkMesher) Stop() {
	close(m.stop)
}

func (m *ChunkMesher) worker() {
	for {
		select {
		case req := <-m.requests:
			m.process(req)
		case <-m.stop:
			return
		}
	}
}

// process monta um pedido com recuperação de pânico por pedido: o
// worker sobrevive, o chunk sai do pendente para poder re-enfileirar e
// os recursos já adquiridos na passada são liberados.
func (m *ChunkMesher) process(req Request) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro no Mesher Worker (chunk %s): %v", req.Coord, r)
			m.pendingMu.Lock()
			delete(m.pending, req.Coord)
			m.pendingMu.Unlock()
			if req.Tracker != nil {
				req.Tracker.Dispose()
			}
		}
	}()

	// Cache primeiro: um resultado com o mesmo MTime ainda vale. O
	// tracker do pedido não adquiriu nada e morre aqui.
	if m.ResultStore != nil {
		if cached, ok := m.ResultStore.Get(req.Coord, req.MTime); ok {
			if req.Tracker != nil {
				req.Tracker.Dispose()
			}
			m.finish(req.Coord, cached)
			return
		}
	}

	res := m.Generate(req)

	if m.ResultStore != nil {
		m.ResultStore.Store(res)
	}
	m.finish(req.Coord, res)
}

func (m *ChunkMesher) finish(coord util.ChunkCoord, res Result) {
	m.pendingMu.Lock()
	delete(m.pending, coord)
	m.pendingMu.Unlock()
	m.results <- res
}

// Generate transforma os blocos de um chunk em geometria agrupada por
// chave de material. Blocos com dados de renderização incompletos são
// pulados com log em vez de abortar a passada.
func (m *ChunkMesher) Generate(req Request) Result {
	res := Result{
		Coord:              req.Coord,
		MTime:              req.MTime,
		MaterialGeometries: make(map[string]GeometryData),
	}

	tracker := req.Tracker
	if tracker == nil {
		tracker = NewResourceTracker()
	}
	res.Tracker = tracker

	chunk := req.Data.GetChunk(req.Coord)
	if chunk == nil {
		return res
	}

	// Buffers temporários por chave de material.
	buffers := make(map[string]*MeshBuffer)
	getBuffer := func(key string) *MeshBuffer {
		if buf, ok := buffers[key]; ok {
			return buf
		}
		buf := GetMeshBuffer()
		buffers[key] = buf
		return buf
	}

	ctx := &Context{
		Emitter:   &FaceEmitter{Atlas: req.Atlas},
		Coord:     req.Coord,
		Tracker:   tracker,
		Assets:    req.Assets,
		Surfaces:  req.Surfaces,
		getBuffer: getBuffer,
		addInstance: func(inst ModelInstance) {
			res.Instances = append(res.Instances, inst)
		},
		addSurface: func(def SurfaceDef) {
			res.Surfaces = append(res.Surfaces, def)
		},
	}

	for _, blk := range chunk.Blocks {
		mod := req.Data.Modifier(blk)
		if mod == nil {
			log.Printf("[Mesher] Bloco %s com tipo desconhecido %d, pulado", blk.Position, blk.Type)
			continue
		}
		if !hasGeometry(mod) {
			continue
		}
		gen := GeneratorFor(mod.Visibility.Shape)
		if err := gen.Generate(ctx, blk, mod); err != nil {
			// Asset indisponível degrada só a contribuição deste bloco.
			log.Printf("[Mesher] Bloco %s: %v", blk.Position, err)
		}
	}

	for key, buf := range buffers {
		if len(buf.Geometry.Vertices) > 0 {
			res.MaterialGeometries[key] = buf.Geometry.Clone()
		}
		PutMeshBuffer(buf)
	}

	return res
}
