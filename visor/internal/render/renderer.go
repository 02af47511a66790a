package render

import (
	"log"
	"math"
	"sync"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mhus/nimbus-world-sub010/shared/util"
	"github.com/mhus/nimbus-world-sub010/visor/internal/meshing"
)

// ChunkModel agrupa tudo que um chunk possui na GPU: as malhas por
// material, as instâncias exclusivas e o tracker que libera o conjunto.
type ChunkModel struct {
	Coord     util.ChunkCoord
	MTime     int64
	Meshes    []meshing.FinalizedMesh
	Instances []meshing.ModelInstance
	Tracker   *meshing.ResourceTracker
}

// Renderer mantém os modelos de chunk e desenha a cena em passes.
type Renderer struct {
	mu     sync.RWMutex
	Models map[util.ChunkCoord]*ChunkModel

	Shaders   *ShaderSet
	Textures  *TextureCache
	Materials *MaterialStore
	Assets    *AssetCatalog
	Surfaces  *SurfaceRegistry
	Atlas     *Atlas

	meshFactory *MeshFactory

	// Fila de chunks para purga gradual (evita stutter de frame).
	purgeQueue []util.ChunkCoord
}

// NewRenderer monta o renderizador com o diretório raiz de assets.
func NewRenderer(assetRoot string) *Renderer {
	shaders := NewShaderSet()
	textures := NewTextureCache(assetRoot)
	r := &Renderer{
		Models:      make(map[util.ChunkCoord]*ChunkModel),
		Shaders:     shaders,
		Textures:    textures,
		Materials:   NewMaterialStore(shaders, textures),
		Assets:      NewAssetCatalog(assetRoot),
		Surfaces:    NewSurfaceRegistry(),
		meshFactory: &MeshFactory{},
		purgeQueue:  make([]util.ChunkCoord, 0),
	}

	atlas, err := LoadAtlas(assetRoot + "/atlas.json")
	if err != nil {
		log.Printf("[Renderer] AVISO: atlas não carregado: %v", err)
	} else {
		r.Atlas = atlas
		if tex, ok := atlas.Texture(); ok {
			r.Materials.SetAtlasTexture(tex)
		}
	}

	return r
}

// GetModelVersion informa o MTime do modelo carregado para o chunk, ou
// -1 quando não há modelo.
func (r *Renderer) GetModelVersion(coord util.ChunkCoord) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cm, ok := r.Models[coord]; ok {
		return cm.MTime
	}
	return -1
}

// UploadResult sobe um resultado de meshing para a GPU. O modelo antigo
// do chunk, se existir, é liberado inteiro pelo tracker dele. Precisa
// rodar na thread do contexto gráfico.
//
// Os recursos exclusivos (modelos, superfícies) são readquiridos aqui em
// nome do chunk, a partir dos dados declarativos do resultado; o tracker
// da montagem é liberado na saída, em qualquer caminho. Resultados do
// cache chegam sem tracker e readquirem do mesmo jeito.
func (r *Renderer) UploadResult(res meshing.Result) {
	defer func() {
		if res.Tracker != nil {
			res.Tracker.Dispose()
		}
	}()

	if !rl.IsWindowReady() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.Models[res.Coord]; ok {
		old.Tracker.Dispose()
		delete(r.Models, res.Coord)
	}

	if len(res.MaterialGeometries) == 0 && len(res.Instances) == 0 && len(res.Surfaces) == 0 {
		return
	}

	tracker := meshing.NewResourceTracker()
	meshes := meshing.FinalizeResult(res, r.meshFactory, r.Materials, tracker)

	// Liga shader e textura de cada malha ao material da sua chave.
	for _, fm := range meshes {
		gpu, ok := fm.Mesh.(*GPUMesh)
		if !ok {
			continue
		}
		mat, ok := fm.Material.(*Material)
		if !ok || gpu.Model.MaterialCount == 0 {
			continue
		}
		materials := unsafe.Slice(gpu.Model.Materials, gpu.Model.MaterialCount)
		materials[0].Shader = mat.Shader
		if mat.HasTexture {
			rl.SetMaterialTexture(&materials[0], rl.MapDiffuse, mat.Texture)
		}
	}

	// Reaquisição: o modelo do chunk segura as próprias referências a
	// modelos externos e superfícies. As da montagem morrem no defer.
	for _, inst := range res.Instances {
		if inst.Billboard || inst.ModelPath == "" {
			continue
		}
		handle, err := r.Assets.Load(inst.ModelPath)
		if err != nil {
			log.Printf("[Renderer] Chunk %s: modelo %s indisponível na subida: %v", res.Coord, inst.ModelPath, err)
			continue
		}
		tracker.Add(handle)
	}
	for _, def := range res.Surfaces {
		handle, err := r.Surfaces.Create(res.Coord, def.Y, def.Key)
		if err != nil {
			log.Printf("[Renderer] Chunk %s: superfície na altura %d falhou: %v", res.Coord, def.Y, err)
			continue
		}
		tracker.Add(handle)
	}

	r.Models[res.Coord] = &ChunkModel{
		Coord:     res.Coord,
		MTime:     res.MTime,
		Meshes:    meshes,
		Instances: res.Instances,
		Tracker:   tracker,
	}
}

// Draw desenha a cena em três passes: opacos, instâncias exclusivas e
// materiais com mistura alfa.
func (r *Renderer) Draw(camera rl.Camera3D) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	r.Shaders.UpdateTime(float32(rl.GetTime()))

	// PASSE 1: malhas opacas.
	for _, cm := range r.Models {
		for _, fm := range cm.Meshes {
			mat, _ := fm.Material.(*Material)
			if mat != nil && mat.Blended() {
				continue
			}
			r.drawMesh(fm, mat)
		}
	}

	// PASSE 2: modelos externos e billboards.
	for _, cm := range r.Models {
		for _, inst := range cm.Instances {
			r.drawInstance(camera, inst)
		}
	}

	// PASSE 3: mistura alfa (água, vidro) e superfícies animadas.
	rl.BeginBlendMode(rl.BlendAlpha)
	for _, cm := range r.Models {
		for _, fm := range cm.Meshes {
			mat, _ := fm.Material.(*Material)
			if mat == nil || !mat.Blended() {
				continue
			}
			r.drawMesh(fm, mat)
		}
	}
	for _, s := range r.Surfaces.Snapshot() {
		r.drawSurface(s)
	}
	rl.EndBlendMode()
}

func (r *Renderer) drawMesh(fm meshing.FinalizedMesh, mat *Material) {
	gpu, ok := fm.Mesh.(*GPUMesh)
	if !ok || gpu.Model.MeshCount == 0 {
		return
	}
	if mat != nil && !mat.Culling {
		rl.DisableBackfaceCulling()
		defer rl.EnableBackfaceCulling()
	}
	rl.DrawModel(gpu.Model, rl.Vector3{}, 1.0, rl.White)
}

func (r *Renderer) drawInstance(camera rl.Camera3D, inst meshing.ModelInstance) {
	pos := rl.Vector3{X: inst.Position[0], Y: inst.Position[1], Z: inst.Position[2]}
	color := rl.Color{R: inst.Color[0], G: inst.Color[1], B: inst.Color[2], A: inst.Color[3]}

	if inst.Billboard {
		if tex, err := r.Textures.Get(inst.ModelPath, "point"); err == nil {
			rl.DrawBillboard(camera, tex, pos, inst.Scale, color)
		}
		return
	}

	model, ok := r.Assets.Get(inst.ModelPath)
	if !ok {
		return
	}
	rl.DrawModelEx(model, pos,
		rl.Vector3{Y: 1}, inst.Rotation,
		rl.Vector3{X: inst.Scale, Y: inst.Scale, Z: inst.Scale},
		color)
}

func (r *Renderer) drawSurface(s *Surface) {
	size := float32(util.ChunkSize)
	color := rl.Color{R: 60, G: 140, B: 200, A: 170}
	rl.DrawPlane(s.Center(), rl.Vector2{X: size, Y: size}, color)
}

// Purge agenda a remoção dos chunks fora do raio em torno do centro.
func (r *Renderer) Purge(center util.ChunkCoord, radius int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for coord := range r.Models {
		if util.Abs(coord.X-center.X) > radius || util.Abs(coord.Z-center.Z) > radius {
			r.purgeQueue = append(r.purgeQueue, coord)
		}
	}
}

// ProcessPurge libera alguns chunks agendados por frame.
func (r *Renderer) ProcessPurge() {
	r.mu.Lock()
	defer r.mu.Unlock()

	limit := 2
	if len(r.purgeQueue) < limit {
		limit = len(r.purgeQueue)
	}
	for i := 0; i < limit; i++ {
		coord := r.purgeQueue[0]
		r.purgeQueue = r.purgeQueue[1:]
		if cm, ok := r.Models[coord]; ok {
			cm.Tracker.Dispose()
			delete(r.Models, coord)
		}
	}
}

// Unload libera todos os recursos de GPU do renderizador.
func (r *Renderer) Unload() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cm := range r.Models {
		cm.Tracker.Dispose()
	}
	r.Models = make(map[util.ChunkCoord]*ChunkModel)
	r.Materials.Clear()
	r.Assets.Unload()
	r.Textures.Unload()
	if r.Atlas != nil {
		r.Atlas.Unload()
	}
	r.Shaders.Unload()
}

// GetRayCollision encontra o bloco do terreno atingido pelo raio.
func (r *Renderer) GetRayCollision(ray rl.Ray) (util.BlockCoord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var closestDist float32 = math.MaxFloat32
	var hit bool
	var hitPos rl.Vector3

	for _, cm := range r.Models {
		for _, fm := range cm.Meshes {
			gpu, ok := fm.Mesh.(*GPUMesh)
			if !ok || gpu.Model.MeshCount == 0 {
				continue
			}
			meshes := unsafe.Slice(gpu.Model.Meshes, gpu.Model.MeshCount)
			for i := int32(0); i < gpu.Model.MeshCount; i++ {
				collision := rl.GetRayCollisionMesh(ray, meshes[i], gpu.Model.Transform)
				if collision.Hit && collision.Distance < closestDist {
					closestDist = collision.Distance
					hitPos = collision.Point
					hit = true
				}
			}
		}
	}

	if hit {
		// Empurra o ponto levemente para dentro do bloco atingido.
		dir := rl.Vector3Normalize(ray.Direction)
		hitPos.X += dir.X * 0.01
		hitPos.Y += dir.Y * 0.01
		hitPos.Z += dir.Z * 0.01
		return util.WorldToBlockCoord(hitPos), true
	}
	return util.BlockCoord{}, false
}

// DrawSelection desenha o contorno de destaque do bloco selecionado.
func (r *Renderer) DrawSelection(coord util.BlockCoord) {
	pos := coord.ToWorldCenter()
	rl.DrawCubeWires(pos, 1.01, 1.01, 1.01, rl.Yellow)
}
