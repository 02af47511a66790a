package render

import (
	"testing"

	"github.com/mhus/nimbus-world-sub010/shared/blockdef"
	"github.com/mhus/nimbus-world-sub010/shared/util"
)

func TestAtlasResolve(t *testing.T) {
	atlas := NewAtlas(256, 256)
	atlas.Register("blocks/pedra.png", [4]float32{64, 128, 32, 32})

	rect, ok := atlas.Resolve(&blockdef.TextureDef{Path: "blocks/pedra.png"})
	if !ok {
		t.Fatal("expected a hit for a registered sprite")
	}
	if rect.U0 != 0.25 || rect.V0 != 0.5 || rect.U1 != 0.375 || rect.V1 != 0.625 {
		t.Errorf("rect = %+v, want (0.25, 0.5, 0.375, 0.625)", rect)
	}
}

func TestAtlasResolveMiss(t *testing.T) {
	atlas := NewAtlas(256, 256)

	if _, ok := atlas.Resolve(&blockdef.TextureDef{Path: "blocks/nao-existe.png"}); ok {
		t.Error("unregistered sprite must miss")
	}
	if _, ok := atlas.Resolve(nil); ok {
		t.Error("nil texture must miss")
	}
}

func TestAtlasResolveSubRect(t *testing.T) {
	atlas := NewAtlas(100, 100)
	atlas.Register("blocks/meio.png", [4]float32{0, 0, 100, 100})

	uv := [4]float32{0.25, 0.25, 0.75, 0.75}
	rect, ok := atlas.Resolve(&blockdef.TextureDef{Path: "blocks/meio.png", UV: &uv})
	if !ok {
		t.Fatal("expected a hit")
	}
	if rect.U0 != 0.25 || rect.V0 != 0.25 || rect.U1 != 0.75 || rect.V1 != 0.75 {
		t.Errorf("sub-rect = %+v, want the centered quarter", rect)
	}
}

func TestSurfaceRegistryLifecycle(t *testing.T) {
	reg := NewSurfaceRegistry()

	a, err := reg.Create(util.ChunkCoord{X: 0, Z: 0}, 12, "k")
	if err != nil {
		t.Fatal(err)
	}
	b, err := reg.Create(util.ChunkCoord{X: 1, Z: 0}, 12, "k")
	if err != nil {
		t.Fatal(err)
	}
	if reg.Len() != 2 {
		t.Errorf("Len = %d, want 2", reg.Len())
	}

	a.Dispose()
	if reg.Len() != 1 {
		t.Errorf("Len after dispose = %d, want 1", reg.Len())
	}

	// Descartes repetidos não afetam as outras superfícies.
	a.Dispose()
	if reg.Len() != 1 {
		t.Errorf("Len after double dispose = %d, want 1", reg.Len())
	}

	b.Dispose()
	if reg.Len() != 0 {
		t.Errorf("Len = %d, want 0", reg.Len())
	}
}

func TestSurfaceCenter(t *testing.T) {
	s := &Surface{Chunk: util.ChunkCoord{X: 2, Z: -1}, Y: 10}
	c := s.Center()
	if c.X != 2*util.ChunkSize+8 || c.Z != -1*util.ChunkSize+8 {
		t.Errorf("center = (%f, %f, %f)", c.X, c.Y, c.Z)
	}
	if c.Y < 10.5 || c.Y > 11 {
		t.Errorf("center Y = %f, want near the top of layer 10", c.Y)
	}
}
