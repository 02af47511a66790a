package meshing

import (
	"testing"

	"github.com/mhus/nimbus-world-sub010/shared/blockdef"
)

func TestHollowQuadCounts(t *testing.T) {
	top := blockdef.FaceTop.Bit()
	bottom := blockdef.FaceBottom.Bit()
	front := blockdef.FaceFront.Bit()

	tests := []struct {
		name      string
		mask      uint8
		wantQuads int
	}{
		// Caixa fechada: casca externa e interna, sem preenchimento.
		{"all faces", blockdef.FaceMaskAll, 12},
		// Uma abertura: 5+5 paredes e 4 faces de preenchimento na borda.
		{"open top", blockdef.FaceMaskAll &^ top, 14},
		// Duas aberturas adjacentes: cada uma perde a aresta da outra.
		{"open top and front", blockdef.FaceMaskAll &^ (top | front), 14},
		// Aberturas opostas: 4 preenchimentos cada.
		{"open top and bottom", blockdef.FaceMaskAll &^ (top | bottom), 16},
		// Só uma parede: as quatro aberturas vizinhas dela ganham uma
		// face de preenchimento; as demais arestas não têm parede.
		{"only top", top, 6},
		{"nothing visible", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, buffers, _ := newTestContext()
			blk := shapeBlock(0, 0, 0)
			blk.Faces = tt.mask

			if err := (hollowGenerator{}).Generate(ctx, blk, shapeModifier("hollow")); err != nil {
				t.Fatal(err)
			}

			verts, indices := totalGeometry(buffers)
			if verts != tt.wantQuads*4 || indices != tt.wantQuads*6 {
				t.Errorf("mask %06b = %d verts, %d indices, want %d quads (%d, %d)",
					tt.mask, verts, indices, tt.wantQuads, tt.wantQuads*4, tt.wantQuads*6)
			}
		})
	}
}

func TestHollowInnerShellInset(t *testing.T) {
	ctx, buffers, _ := newTestContext()
	blk := shapeBlock(0, 0, 0)

	if err := (hollowGenerator{}).Generate(ctx, blk, shapeModifier("hollow")); err != nil {
		t.Fatal(err)
	}

	// Com a caixa fechada existem vértices na casca externa (0 e 1) e
	// na interna, recuados pela espessura da parede.
	sawInner := false
	for _, buf := range buffers {
		v := buf.Geometry.Vertices
		for i := 0; i < len(v); i += 3 {
			for a := 0; a < 3; a++ {
				c := v[i+a]
				if c != 0 && c != 1 && c != hollowWall && c != 1-hollowWall {
					t.Fatalf("unexpected coordinate %f in hollow shell", c)
				}
				if c == hollowWall || c == 1-hollowWall {
					sawInner = true
				}
			}
		}
	}
	if !sawInner {
		t.Error("no inner shell vertices found")
	}
}

func TestHollowInnerFacesReversed(t *testing.T) {
	ctx, buffers, _ := newTestContext()
	blk := shapeBlock(0, 0, 0)
	blk.Faces = blockdef.FaceTop.Bit()

	if err := (hollowGenerator{}).Generate(ctx, blk, shapeModifier("hollow")); err != nil {
		t.Fatal(err)
	}

	// Só a parede de cima: face externa com normal +Y e interna com a
	// normal invertida (-Y). Os preenchimentos são chanfrados e ficam
	// fora das duas contagens.
	up, down := 0, 0
	for _, buf := range buffers {
		n := buf.Geometry.Normals
		for i := 0; i < len(n); i += 3 {
			if n[i+1] > 0.9 {
				up++
			}
			if n[i+1] < -0.9 {
				down++
			}
		}
	}
	if up != 4 || down != 4 {
		t.Errorf("up normals = %d, down normals = %d, want 4 and 4", up, down)
	}
}

func TestHollowGapFacesOnlyAtVisibleNeighbors(t *testing.T) {
	ctx, buffers, _ := newTestContext()
	blk := shapeBlock(0, 0, 0)
	// Topo aberto e frente também aberta: o anel do topo perde o
	// preenchimento do lado da frente.
	blk.Faces = blockdef.FaceMaskAll &^ (blockdef.FaceTop.Bit() | blockdef.FaceFront.Bit())

	if err := (hollowGenerator{}).Generate(ctx, blk, shapeModifier("hollow")); err != nil {
		t.Fatal(err)
	}

	// 4 externas + 4 internas + 3 preenchimentos no topo + 3 na frente.
	verts, _ := totalGeometry(buffers)
	if verts != 14*4 {
		t.Errorf("verts = %d, want %d", verts, 14*4)
	}
}
