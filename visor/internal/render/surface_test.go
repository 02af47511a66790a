package render

import (
	"testing"

	"github.com/mhus/nimbus-world-sub010/shared/util"
)

func TestSurfaceRegistryDedupesByName(t *testing.T) {
	r := NewSurfaceRegistry()
	coord := util.ChunkCoord{X: 1, Z: 2}

	a, err := r.Create(coord, 12, "agua")
	if err != nil {
		t.Fatal(err)
	}
	// Remesh do mesmo chunk pega uma segunda referência, não uma cópia.
	b, err := r.Create(coord, 12, "agua")
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() != 1 {
		t.Fatalf("registry entries = %d, want 1 (same lamina drawn once)", r.Len())
	}

	a.Dispose()
	if r.Len() != 1 {
		t.Error("lamina removed while a reference was still alive")
	}
	b.Dispose()
	if r.Len() != 0 {
		t.Errorf("registry entries = %d, want 0 after last reference", r.Len())
	}
}

func TestSurfaceRefDisposeIdempotent(t *testing.T) {
	r := NewSurfaceRegistry()
	coord := util.ChunkCoord{X: 0, Z: 0}

	a, _ := r.Create(coord, 5, "lava")
	b, _ := r.Create(coord, 5, "lava")

	a.Dispose()
	a.Dispose()
	if r.Len() != 1 {
		t.Error("double Dispose of one reference must not drop another's")
	}

	b.Dispose()
	if r.Len() != 0 {
		t.Errorf("registry entries = %d, want 0", r.Len())
	}

	// Referências mortas não derrubam uma recriação posterior.
	c, _ := r.Create(coord, 5, "lava")
	a.Dispose()
	if r.Len() != 1 {
		t.Error("stale reference removed a recreated lamina")
	}
	c.Dispose()
}

func TestSurfaceRegistrySnapshot(t *testing.T) {
	r := NewSurfaceRegistry()
	coord := util.ChunkCoord{X: 3, Z: -1}

	r.Create(coord, 10, "agua")
	r.Create(coord, 11, "agua")
	r.Create(util.ChunkCoord{X: 4, Z: -1}, 10, "agua")

	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot = %d surfaces, want 3", len(snap))
	}
	for _, s := range snap {
		if s.Key != "agua" {
			t.Errorf("surface key = %q, want agua", s.Key)
		}
	}
}
