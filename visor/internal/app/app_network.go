package app

import (
	"log"

	"github.com/mhus/nimbus-world-sub010/shared/util"
	"github.com/mhus/nimbus-world-sub010/visor/internal/client"
	"github.com/mhus/nimbus-world-sub010/visor/internal/meshing"
)

// connectServer abre a conexão com o servidor de mundo e instala os
// callbacks que alimentam o mesher.
func (a *App) connectServer() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro em connectServer: %v", r)
		}
	}()

	a.netClient = client.NewNetworkClient(a.Config.ServerURL, a.Config.WorldName, a.mapStore)

	a.netClient.OnBlockTypes = func(count int) {
		// Tipos novos podem mudar a aparência de chunks já carregados.
		a.remeshLoaded()
	}

	a.netClient.OnChunk = func(coord util.ChunkCoord) {
		a.dirty.Enqueue(coord, struct{}{})
	}

	if err := a.netClient.Connect(); err != nil {
		log.Printf("[Server] Erro ao conectar: %v", err)
		a.LoadingStatus = "Erro ao conectar ao servidor. Verifique se ele está rodando."
		// Sem servidor o visor ainda mostra o que houver no cache local.
		a.loadFromCache()
		return
	}

	log.Println("[Network] Conectado ao servidor de mundo!")
	a.LoadingStatus = "Sincronizando com o mundo..."
}

// processDirtyChunks drena a fila de chunks sujos para o mesher. Se a
// fila de pedidos do mesher encher, o chunk volta para a fila suja e a
// drenagem para até o próximo frame.
func (a *App) processDirtyChunks() {
	const perFrame = 64
	for i := 0; i < perFrame; i++ {
		coord, _, ok := a.dirty.Dequeue()
		if !ok {
			return
		}
		if !a.enqueueChunk(coord) {
			a.dirty.Enqueue(coord, struct{}{})
			return
		}
	}
}

// enqueueChunk agenda o meshing de um chunk. Chunks removidos do store
// sobem um resultado vazio, o que libera o modelo antigo na GPU.
func (a *App) enqueueChunk(coord util.ChunkCoord) bool {
	if a.mesher == nil {
		return true
	}

	chunk := a.mapStore.GetChunk(coord)
	if chunk == nil {
		a.resultStore.Invalidate(coord)
	}

	req := meshing.Request{
		Coord:    coord,
		Data:     a.mapStore,
		Tracker:  meshing.NewResourceTracker(),
		Assets:   a.renderer.Assets,
		Surfaces: a.renderer.Surfaces,
	}
	if chunk != nil {
		req.MTime = chunk.MTime
	}
	if a.renderer.Atlas != nil {
		req.Atlas = a.renderer.Atlas
	}

	return a.mesher.Enqueue(req)
}

// remeshLoaded marca todos os chunks em memória para remesh.
func (a *App) remeshLoaded() {
	for _, coord := range a.mapStore.LoadedCoords() {
		a.dirty.Enqueue(coord, struct{}{})
	}
}

// loadFromCache popula o store a partir do SQLite local (modo offline).
func (a *App) loadFromCache() {
	if err := a.mapStore.Load(a.Config.WorldName); err != nil {
		log.Printf("[App] Cache local vazio ou ilegível: %v", err)
		return
	}

	coords := a.mapStore.LoadedCoords()
	log.Printf("[App] %d chunks carregados do cache local", len(coords))
	for _, coord := range coords {
		a.dirty.Enqueue(coord, struct{}{})
	}
	if len(coords) > 0 {
		a.Loading = false
	}
}
