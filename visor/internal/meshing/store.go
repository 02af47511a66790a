package meshing

import (
	"bytes"
	"encoding/gob"
	"log"
	"sync"

	"github.com/mhus/nimbus-world-sub010/shared/mapdata"
	"github.com/mhus/nimbus-world-sub010/shared/util"
)

// ResultStore armazena os resultados de meshing na RAM para evitar
// re-processamento. Com um banco configurado, os resultados também são
// persistidos e sobrevivem a reinícios.
type ResultStore struct {
	mu      sync.RWMutex
	results map[util.ChunkCoord]Result

	// Data opcional para write-through no cache em disco.
	Data *mapdata.MapDataStore
}

// NewResultStore cria um novo repositório de resultados.
func NewResultStore(data *mapdata.MapDataStore) *ResultStore {
	return &ResultStore{
		results: make(map[util.ChunkCoord]Result),
		Data:    data,
	}
}

// Get retorna um resultado se ele existir e for compatível com o MTime.
func (s *ResultStore) Get(coord util.ChunkCoord, mtime int64) (Result, bool) {
	s.mu.RLock()
	res, ok := s.results[coord]
	s.mu.RUnlock()
	if ok && res.MTime == mtime {
		// Clone para que modificações externas não afetem o cache.
		return res.Clone(), true
	}

	if s.Data != nil {
		if raw, ok := s.Data.LoadMeshCache(coord, mtime); ok {
			var disk resultDisk
			if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&disk); err != nil {
				log.Printf("[MeshCache] Falha ao decodificar cache de %s: %v", coord, err)
				return Result{}, false
			}
			cached := disk.result()
			s.mu.Lock()
			s.results[coord] = cached.Clone()
			s.mu.Unlock()
			return cached, true
		}
	}
	return Result{}, false
}

// Store salva um resultado no repositório.
func (s *ResultStore) Store(res Result) {
	s.mu.Lock()
	// Clone para garantir que o cache seja imutável.
	s.results[res.Coord] = res.Clone()
	s.mu.Unlock()

	if s.Data != nil {
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(diskForm(res)); err != nil {
			log.Printf("[MeshCache] Falha ao codificar cache de %s: %v", res.Coord, err)
			return
		}
		if err := s.Data.SaveMeshCache(res.Coord, res.MTime, buf.Bytes()); err != nil {
			log.Printf("[MeshCache] Falha ao persistir cache de %s: %v", res.Coord, err)
		}
	}
}

// Invalidate descarta o resultado de um chunk (descarregado ou editado).
func (s *ResultStore) Invalidate(coord util.ChunkCoord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, coord)
}

// Clear limpa todo o cache de resultados.
func (s *ResultStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = make(map[util.ChunkCoord]Result)
}

// Len retorna quantos resultados estão em RAM.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Clone realiza uma cópia profunda de um Result. O tracker não é
// clonável: as referências adquiridas pertencem à passada original, e o
// clone do cache viaja só com os dados declarativos.
func (r Result) Clone() Result {
	newRes := Result{
		Coord:              r.Coord,
		MTime:              r.MTime,
		MaterialGeometries: make(map[string]GeometryData, len(r.MaterialGeometries)),
		Instances:          make([]ModelInstance, len(r.Instances)),
		Surfaces:           make([]SurfaceDef, len(r.Surfaces)),
	}
	for k, v := range r.MaterialGeometries {
		newRes.MaterialGeometries[k] = v.Clone()
	}
	copy(newRes.Instances, r.Instances)
	copy(newRes.Surfaces, r.Surfaces)
	return newRes
}

// resultDisk é a forma persistida de um Result: só os campos de dados,
// sem o tracker (referências vivas não sobrevivem a reinícios).
type resultDisk struct {
	Coord              util.ChunkCoord
	MTime              int64
	MaterialGeometries map[string]GeometryData
	Instances          []ModelInstance
	Surfaces           []SurfaceDef
}

func diskForm(r Result) resultDisk {
	return resultDisk{
		Coord:              r.Coord,
		MTime:              r.MTime,
		MaterialGeometries: r.MaterialGeometries,
		Instances:          r.Instances,
		Surfaces:           r.Surfaces,
	}
}

func (d resultDisk) result() Result {
	return Result{
		Coord:              d.Coord,
		MTime:              d.MTime,
		MaterialGeometries: d.MaterialGeometries,
		Instances:          d.Instances,
		Surfaces:           d.Surfaces,
	}
}
