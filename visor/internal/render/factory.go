package render

/*
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mhus/nimbus-world-sub010/visor/internal/meshing"
)

// GPUMesh é uma malha subida para a GPU como um modelo Raylib.
type GPUMesh struct {
	Model    rl.Model
	unloaded bool
}

// Dispose descarrega o modelo da GPU. Chamadas repetidas são inofensivas.
func (m *GPUMesh) Dispose() {
	if m.unloaded {
		return
	}
	m.unloaded = true
	rl.UnloadModel(m.Model)
}

// MeshFactory converte geometria acumulada em modelos Raylib. Só pode
// ser usada na thread que detém o contexto gráfico.
type MeshFactory struct{}

func (f *MeshFactory) Create(geo meshing.GeometryData) (meshing.MeshHandle, error) {
	if !rl.IsWindowReady() {
		return nil, fmt.Errorf("contexto gráfico indisponível")
	}
	if geo.VertexCount() == 0 {
		return nil, fmt.Errorf("geometria vazia")
	}

	mesh := geometryToMesh(geo)
	rl.UploadMesh(&mesh, false)
	// Mantemos a cópia em RAM para o raycasting de seleção de blocos.
	model := rl.LoadModelFromMesh(mesh)
	return &GPUMesh{Model: model}, nil
}

// geometryToMesh aloca os buffers da malha em memória C, como o Raylib
// espera para poder liberá-los junto com o modelo.
func geometryToMesh(data meshing.GeometryData) rl.Mesh {
	var mesh rl.Mesh
	vCount := int32(data.VertexCount())
	mesh.VertexCount = vCount
	mesh.TriangleCount = int32(len(data.Indices) / 3)

	if len(data.Vertices) > 0 {
		mesh.Vertices = (*float32)(copyToC(unsafe.Pointer(&data.Vertices[0]), len(data.Vertices)*4))
	}
	if len(data.Normals) > 0 {
		mesh.Normals = (*float32)(copyToC(unsafe.Pointer(&data.Normals[0]), len(data.Normals)*4))
	}
	if len(data.UVs) > 0 {
		mesh.Texcoords = (*float32)(copyToC(unsafe.Pointer(&data.UVs[0]), len(data.UVs)*4))
	}
	if len(data.Colors) > 0 {
		mesh.Colors = (*uint8)(copyToC(unsafe.Pointer(&data.Colors[0]), len(data.Colors)))
	}
	if len(data.Indices) > 0 {
		mesh.Indices = (*uint16)(copyToC(unsafe.Pointer(&data.Indices[0]), len(data.Indices)*2))
	}
	if data.HasWind() {
		// O canal de vento viaja no segundo conjunto de UVs: o shader de
		// plantas lê (leafiness, leverUp) de texcoord2.
		packed := make([]float32, 0, vCount*2)
		for i := int32(0); i < vCount; i++ {
			packed = append(packed, data.Wind[i*4], data.Wind[i*4+2])
		}
		mesh.Texcoords2 = (*float32)(copyToC(unsafe.Pointer(&packed[0]), len(packed)*4))
	}
	return mesh
}

func copyToC(data unsafe.Pointer, size int) unsafe.Pointer {
	if size <= 0 || data == nil {
		return nil
	}
	ptr := C.malloc(C.size_t(size))
	if ptr == nil {
		return nil
	}
	cSlice := unsafe.Slice((*byte)(ptr), size)
	goSlice := unsafe.Slice((*byte)(data), size)
	copy(cSlice, goSlice)
	return ptr
}
