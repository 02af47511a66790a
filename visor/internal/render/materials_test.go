package render

import (
	"testing"

	"github.com/mhus/nimbus-world-sub010/shared/blockdef"
	"github.com/mhus/nimbus-world-sub010/visor/internal/meshing"
)

func TestParseKeyRoundTrip(t *testing.T) {
	opacity := float32(0.5)
	noCull := false
	vis := &blockdef.Visibility{
		Transparency:    "blend",
		Opacity:         &opacity,
		Sampling:        "linear",
		Effect:          "water",
		BackFaceCulling: &noCull,
	}
	tex := &blockdef.TextureDef{Path: "blocks/agua.png"}

	props := parseKey(meshing.MaterialKey(vis, tex))

	if props.Culling {
		t.Error("Culling = true, want false")
	}
	if props.Transparency != "blend" {
		t.Errorf("Transparency = %q, want blend", props.Transparency)
	}
	if props.Opacity != 0.5 {
		t.Errorf("Opacity = %f, want 0.5", props.Opacity)
	}
	if props.Sampling != "linear" {
		t.Errorf("Sampling = %q, want linear", props.Sampling)
	}
	if props.Effect != "water" {
		t.Errorf("Effect = %q, want water", props.Effect)
	}
	if props.TexturePath != "blocks/agua.png" {
		t.Errorf("TexturePath = %q, want blocks/agua.png", props.TexturePath)
	}
}

func TestParseKeyDefaults(t *testing.T) {
	props := parseKey(meshing.MaterialKey(nil, nil))
	if !props.Culling || props.Transparency != "opaque" || props.Opacity != 1 ||
		props.Sampling != "point" || props.Effect != "" || props.TexturePath != "" {
		t.Errorf("unexpected defaults: %+v", props)
	}
}

func TestMaterialBlended(t *testing.T) {
	tests := []struct {
		transparency string
		opacity      float32
		want         bool
	}{
		{"opaque", 1, false},
		{"cutout", 1, false},
		{"blend", 1, true},
		{"opaque", 0.5, true},
	}
	for _, tt := range tests {
		m := &Material{Transparency: tt.transparency, Opacity: tt.opacity}
		if m.Blended() != tt.want {
			t.Errorf("Blended(%q, %f) = %v, want %v", tt.transparency, tt.opacity, m.Blended(), tt.want)
		}
	}
}
