package render

import (
	"strconv"
	"strings"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mhus/nimbus-world-sub010/visor/internal/meshing"
)

// Material é a materialização de uma chave canônica de lote: shader,
// textura, modo de mistura e flags de rasterização.
type Material struct {
	key          string
	Shader       rl.Shader
	Texture      rl.Texture2D
	HasTexture   bool
	Culling      bool
	Transparency string
	Opacity      float32
	Effect       string
}

func (m *Material) Key() string { return m.key }

// Blended informa se o material entra no passe de mistura alfa.
func (m *Material) Blended() bool {
	return m.Transparency == "blend" || m.Opacity < 1
}

// keyProps são os campos decodificados de uma chave de material.
type keyProps struct {
	Culling      bool
	Transparency string
	Opacity      float32
	Sampling     string
	Effect       string
	TexturePath  string
}

// parseKey decodifica a chave canônica produzida pelo meshing.
func parseKey(key string) keyProps {
	props := keyProps{Culling: true, Transparency: "opaque", Opacity: 1, Sampling: "point"}
	for _, part := range strings.Split(key, "|") {
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch name {
		case "cull":
			props.Culling = value == "true"
		case "tr":
			props.Transparency = value
		case "op":
			if f, err := strconv.ParseFloat(value, 32); err == nil {
				props.Opacity = float32(f)
			}
		case "smp":
			props.Sampling = value
		case "fx":
			props.Effect = value
		case "tex":
			props.TexturePath = value
		}
	}
	return props
}

// MaterialStore implementa o provedor de materiais com cache por chave.
// Materiais são compartilhados entre chunks e só morrem no Unload.
type MaterialStore struct {
	mu        sync.Mutex
	materials map[string]*Material
	shaders   *ShaderSet
	textures  *TextureCache
	atlas     rl.Texture2D
	hasAtlas  bool
}

func NewMaterialStore(shaders *ShaderSet, textures *TextureCache) *MaterialStore {
	return &MaterialStore{
		materials: make(map[string]*Material),
		shaders:   shaders,
		textures:  textures,
	}
}

// SetAtlasTexture define a textura compartilhada dos materiais de atlas.
func (s *MaterialStore) SetAtlasTexture(tex rl.Texture2D) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.atlas = tex
	s.hasAtlas = true
}

// GetOrCreate devolve o material da chave, construindo na primeira vez.
func (s *MaterialStore) GetOrCreate(key string) (meshing.MaterialHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.materials[key]; ok {
		return m, nil
	}

	props := parseKey(key)
	m := &Material{
		key:          key,
		Culling:      props.Culling,
		Transparency: props.Transparency,
		Opacity:      props.Opacity,
		Effect:       props.Effect,
	}

	if s.shaders != nil {
		m.Shader = s.shaders.ForEffect(props.Effect)
	}

	if props.TexturePath != "" && s.textures != nil {
		tex, err := s.textures.Get(props.TexturePath, props.Sampling)
		if err != nil {
			return nil, err
		}
		m.Texture = tex
		m.HasTexture = true
	} else if s.hasAtlas {
		m.Texture = s.atlas
		m.HasTexture = true
	}

	s.materials[key] = m
	return m, nil
}

// Len retorna quantos materiais estão em cache.
func (s *MaterialStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.materials)
}

// Clear descarta os materiais. As texturas pertencem ao TextureCache e
// os shaders ao ShaderSet; aqui só o cache de combinações é esvaziado.
func (s *MaterialStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materials = make(map[string]*Material)
}
