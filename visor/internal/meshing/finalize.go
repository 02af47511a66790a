package meshing

import (
	"log"
	"sort"
)

// FinalizedMesh liga a malha subida para a GPU ao material da sua chave.
type FinalizedMesh struct {
	Key      string
	Mesh     MeshHandle
	Material MaterialHandle
}

// FinalizeResult materializa um resultado de meshing: cria uma malha
// por buffer não-vazio, pede ao provedor o material da chave e registra
// cada handle no tracker no ato da criação. Deve rodar na thread que
// detém o contexto gráfico.
//
// Falha em uma chave é logada e a finalização continua; os handles já
// criados permanecem no tracker e serão liberados com o chunk.
func FinalizeResult(res Result, factory MeshFactory, materials MaterialProvider, tracker *ResourceTracker) []FinalizedMesh {
	if len(res.MaterialGeometries) == 0 {
		return nil
	}

	// Ordem estável de chaves para a subida ser determinística.
	keys := make([]string, 0, len(res.MaterialGeometries))
	for k := range res.MaterialGeometries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]FinalizedMesh, 0, len(keys))
	for _, key := range keys {
		geo := res.MaterialGeometries[key]
		if geo.VertexCount() == 0 {
			continue
		}

		mesh, err := factory.Create(geo)
		if err != nil {
			log.Printf("[Finalize] Chunk %s: falha ao criar malha da chave %q: %v", res.Coord, key, err)
			continue
		}
		tracker.Add(mesh)

		mat, err := materials.GetOrCreate(key)
		if err != nil {
			log.Printf("[Finalize] Chunk %s: falha no material da chave %q: %v", res.Coord, key, err)
			continue
		}

		out = append(out, FinalizedMesh{Key: key, Mesh: mesh, Material: mat})
	}
	return out
}
