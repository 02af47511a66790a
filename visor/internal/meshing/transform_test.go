package meshing

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mhus/nimbus-world-sub010/shared/mapdata"
	"github.com/mhus/nimbus-world-sub010/shared/util"
)

const testEps = 1e-4

func vecNear(a, b mgl32.Vec3) bool {
	d := a.Sub(b)
	return d.X() > -testEps && d.X() < testEps &&
		d.Y() > -testEps && d.Y() < testEps &&
		d.Z() > -testEps && d.Z() < testEps
}

func TestScaleRotateCornersIdentity(t *testing.T) {
	corners := []mgl32.Vec3{{0, 0, 0}, {1, 1, 1}}
	ScaleRotateCorners(corners, [3]float32{1, 1, 1}, 0, 0, mgl32.Vec3{0.5, 0.5, 0.5})

	if !vecNear(corners[0], mgl32.Vec3{0, 0, 0}) || !vecNear(corners[1], mgl32.Vec3{1, 1, 1}) {
		t.Errorf("identity transform moved corners: %v", corners)
	}
}

func TestScaleAboutCenter(t *testing.T) {
	corners := []mgl32.Vec3{{0, 0, 0}, {1, 1, 1}}
	ScaleRotateCorners(corners, [3]float32{0.5, 0.5, 0.5}, 0, 0, mgl32.Vec3{0.5, 0.5, 0.5})

	if !vecNear(corners[0], mgl32.Vec3{0.25, 0.25, 0.25}) {
		t.Errorf("corner 0 = %v, want (0.25, 0.25, 0.25)", corners[0])
	}
	if !vecNear(corners[1], mgl32.Vec3{0.75, 0.75, 0.75}) {
		t.Errorf("corner 1 = %v, want (0.75, 0.75, 0.75)", corners[1])
	}
}

func TestRotateYawAboutCenter(t *testing.T) {
	corners := []mgl32.Vec3{{1, 0.5, 0.5}}
	ScaleRotateCorners(corners, [3]float32{1, 1, 1}, 0, 90, mgl32.Vec3{0.5, 0.5, 0.5})

	if !vecNear(corners[0], mgl32.Vec3{0.5, 0.5, 0}) {
		t.Errorf("yaw 90 = %v, want (0.5, 0.5, 0)", corners[0])
	}
}

func isWholef(v float32) bool {
	_, frac := math.Modf(float64(v))
	return frac > -testEps && frac < testEps
}

// Yaw fora da grade de 90° sai do reticulado: pelo menos um dos eixos
// horizontais de um canto do cubo unitário deixa de ser inteiro.
func TestRotateYawOffGridLeavesLattice(t *testing.T) {
	tests := []struct {
		name string
		deg  float32
	}{
		{"30 graus", 30},
		{"45 graus", 45},
		{"60 graus", 60},
		{"135 graus", 135},
		{"210 graus", 210},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corners := []mgl32.Vec3{{1, 0, 0}}
			ScaleRotateCorners(corners, [3]float32{1, 1, 1}, 0, tt.deg, mgl32.Vec3{0.5, 0.5, 0.5})

			x, z := corners[0].X(), corners[0].Z()
			if isWholef(x) && isWholef(z) {
				t.Errorf("yaw %v kept both X and Z integral: (%f, %f)", tt.deg, x, z)
			}
			if !vecNear(mgl32.Vec3{0, corners[0].Y(), 0}, mgl32.Vec3{0, 0, 0}) {
				t.Errorf("yaw must not move Y, got %f", corners[0].Y())
			}
		})
	}
}

func TestRotatePitchAboutCenter(t *testing.T) {
	corners := []mgl32.Vec3{{0.5, 1, 0.5}}
	ScaleRotateCorners(corners, [3]float32{1, 1, 1}, 90, 0, mgl32.Vec3{0.5, 0.5, 0.5})

	// Rotação em X leva +Y para +Z.
	if !vecNear(corners[0], mgl32.Vec3{0.5, 0.5, 1}) {
		t.Errorf("pitch 90 = %v, want (0.5, 0.5, 1)", corners[0])
	}
}

func TestApplyCornerOffsetsMask(t *testing.T) {
	blk := &mapdata.Block{
		Position: util.NewBlockCoord(0, 0, 0),
		Offsets:  []float32{0.3, 0.9, 0.2},
	}

	corners := []mgl32.Vec3{{0, 0, 0}}
	ApplyCornerOffsets(corners, blk, []AxisMask{AxisX | AxisZ})

	if !vecNear(corners[0], mgl32.Vec3{0.3, 0, 0.2}) {
		t.Errorf("masked offset = %v, want (0.3, 0, 0.2)", corners[0])
	}
}

func TestApplyCornerOffsetsAllAxes(t *testing.T) {
	blk := &mapdata.Block{
		Position: util.NewBlockCoord(0, 0, 0),
		Offsets:  []float32{0.3, 0.9, 0.2, 0.1, 0.1, 0.1},
	}

	corners := []mgl32.Vec3{{0, 0, 0}, {1, 1, 1}}
	ApplyCornerOffsets(corners, blk, nil)

	if !vecNear(corners[0], mgl32.Vec3{0.3, 0.9, 0.2}) {
		t.Errorf("corner 0 = %v, want (0.3, 0.9, 0.2)", corners[0])
	}
	if !vecNear(corners[1], mgl32.Vec3{1.1, 1.1, 1.1}) {
		t.Errorf("corner 1 = %v, want (1.1, 1.1, 1.1)", corners[1])
	}
}

// A ordem é fixa: offset primeiro, depois escala. Escalar antes do
// offset daria (0.75, ...) em vez de (0.5, ...).
func TestTransformOrderOffsetBeforeScale(t *testing.T) {
	blk := &mapdata.Block{
		Position: util.NewBlockCoord(0, 0, 0),
		Offsets:  []float32{0.5, 0, 0},
		Scale:    [3]float32{0.5, 0.5, 0.5},
	}

	corners := []mgl32.Vec3{{0, 0, 0}}
	TransformBlockCorners(corners, blk, nil, nil)

	want := mgl32.Vec3{0.5, 0.25, 0.25}
	if !vecNear(corners[0], want) {
		t.Errorf("transform = %v, want %v", corners[0], want)
	}
}

func TestTransformZeroScaleDefaultsToOne(t *testing.T) {
	blk := &mapdata.Block{Position: util.NewBlockCoord(0, 0, 0)}

	corners := []mgl32.Vec3{{1, 1, 1}}
	TransformBlockCorners(corners, blk, nil, nil)

	if !vecNear(corners[0], mgl32.Vec3{1, 1, 1}) {
		t.Errorf("zero scale should behave as identity, got %v", corners[0])
	}
}
