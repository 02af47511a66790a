package meshing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mhus/nimbus-world-sub010/shared/blockdef"
)

// Efeitos que não usam o atlas compartilhado; para esses a textura
// própria faz parte da chave de material.
var nonAtlasEffects = map[string]bool{
	"water":  true,
	"fire":   true,
	"sprite": true,
	"scroll": true,
	"lava":   true,
}

// MaterialKey produz a chave canônica de lote para uma combinação de
// visibilidade e textura. Blocos com a mesma chave compartilham buffers
// de geometria e o mesmo material na GPU. Posição nunca entra na chave.
func MaterialKey(vis *blockdef.Visibility, tex *blockdef.TextureDef) string {
	var sb strings.Builder

	cull := true
	transparency := "opaque"
	opacity := float32(1)
	sampling := "point"
	effect := ""
	var params map[string]string

	if vis != nil {
		cull = vis.Culling()
		if vis.Transparency != "" {
			transparency = vis.Transparency
		}
		opacity = vis.EffectiveOpacity()
		if vis.Sampling != "" {
			sampling = vis.Sampling
		}
		effect = vis.Effect
		params = vis.EffectParams
	}
	if tex != nil && tex.Effect != "" {
		effect = tex.Effect
	}

	fmt.Fprintf(&sb, "cull=%t|tr=%s|op=%.3f|smp=%s|fx=%s", cull, transparency, opacity, sampling, effect)

	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "|%s=%s", k, params[k])
		}
	}

	// Efeitos fora do atlas carregam textura própria por material.
	if nonAtlasEffects[effect] && tex != nil && tex.Path != "" {
		fmt.Fprintf(&sb, "|tex=%s", tex.Path)
	}

	return sb.String()
}
