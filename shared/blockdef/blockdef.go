package blockdef

import "sort"

// Nomes de slots de textura conceituais. Um modificador mapeia slots para
// definições de textura; a seleção por face segue cadeias de fallback
// documentadas em TextureForFace/TextureForInside/TextureForGap.
const (
	SlotTop    = "top"
	SlotBottom = "bottom"
	SlotLeft   = "left"
	SlotRight  = "right"
	SlotFront  = "front"
	SlotBack   = "back"
	SlotAll    = "all"
	SlotSide   = "side"
	SlotWall   = "wall"

	SlotInsidePrefix = "inside-"
	SlotInsideAll    = "inside-all"
)

// Face identifica uma das seis faces de um bloco.
type Face int

const (
	FaceTop Face = iota
	FaceBottom
	FaceLeft
	FaceRight
	FaceFront
	FaceBack
	FaceCount
)

// FaceMaskAll é a máscara de visibilidade com todas as faces ligadas.
const FaceMaskAll uint8 = 0x3F

var faceSlots = [FaceCount]string{SlotTop, SlotBottom, SlotLeft, SlotRight, SlotFront, SlotBack}

// Slot retorna o nome do slot de textura específico da face.
func (f Face) Slot() string {
	return faceSlots[f]
}

// Bit retorna o bit da face na máscara de visibilidade de 6 bits.
func (f Face) Bit() uint8 {
	return 1 << uint(f)
}

// Visible verifica se a face está ligada na máscara.
func (f Face) Visible(mask uint8) bool {
	return mask&f.Bit() != 0
}

// Vertical informa se a face é vertical (normal sem componente Y).
// Faces verticais têm o V da textura invertido na emissão.
func (f Face) Vertical() bool {
	return f != FaceTop && f != FaceBottom
}

func (f Face) String() string {
	return faceSlots[f]
}

// TextureDef descreve uma textura referenciada por um slot.
// Valor imutável durante a renderização; a resolução para retângulo UV
// do atlas é feita pelo resolvedor externo, nunca gravada de volta aqui.
type TextureDef struct {
	Path string `json:"path"`

	// UV restringe a textura a um sub-retângulo (u0,v0,u1,v1) opcional.
	UV *[4]float32 `json:"uv,omitempty"`

	// Effect substitui o efeito do modificador apenas para esta textura.
	Effect string `json:"effect,omitempty"`

	// Color aplica tint RGBA (alpha controla opacidade da face).
	Color *[4]uint8 `json:"color,omitempty"`
}

// Visibility é o sub-registro de visibilidade de um modificador.
type Visibility struct {
	Shape    string                 `json:"shape"`
	Textures map[string]*TextureDef `json:"textures"`

	// Overrides opcionais de transformação.
	Scale *[3]float32 `json:"scale,omitempty"`
	RotX  *float32    `json:"rotX,omitempty"`
	RotY  *float32    `json:"rotY,omitempty"`

	// Effect e parâmetros alimentam a chave de material e os shaders.
	Effect       string            `json:"effect,omitempty"`
	EffectParams map[string]string `json:"effectParams,omitempty"`

	// Faces, quando presente, substitui a máscara de visibilidade do bloco.
	Faces *uint8 `json:"faces,omitempty"`

	// Propriedades de material. Transparency: "opaque", "cutout" ou "blend".
	Transparency    string   `json:"transparency,omitempty"`
	Opacity         *float32 `json:"opacity,omitempty"`
	Sampling        string   `json:"sampling,omitempty"`
	BackFaceCulling *bool    `json:"backFaceCulling,omitempty"`
}

// Wind é o sub-registro de vento (atributos por vértice para o shader).
type Wind struct {
	Leafiness float32 `json:"leafiness"`
	Stability float32 `json:"stability"`
	LeverUp   float32 `json:"leverUp"`
	LeverDown float32 `json:"leverDown"`
}

// Illumination é o sub-registro de iluminação própria do bloco.
type Illumination struct {
	Color    [3]float32 `json:"color"`
	Strength float32    `json:"strength"`
}

// Modifier agrega as propriedades de renderização de um tipo de bloco.
// Pertence ao registro de tipos e é somente-leitura durante o meshing.
type Modifier struct {
	Name         string        `json:"name"`
	Visibility   *Visibility   `json:"visibility,omitempty"`
	Wind         *Wind         `json:"wind,omitempty"`
	Illumination *Illumination `json:"illumination,omitempty"`
}

// EffectiveOpacity retorna a opacidade do modificador (1.0 quando ausente).
func (v *Visibility) EffectiveOpacity() float32 {
	if v.Opacity == nil {
		return 1.0
	}
	return *v.Opacity
}

// Culling retorna o flag de back-face culling (ligado por padrão).
func (v *Visibility) Culling() bool {
	if v.BackFaceCulling == nil {
		return true
	}
	return *v.BackFaceCulling
}

// FaceMask retorna a máscara efetiva: override do modificador quando
// presente, senão a máscara do bloco.
func (v *Visibility) FaceMask(blockMask uint8) uint8 {
	if v.Faces != nil {
		return *v.Faces
	}
	return blockMask
}

// canonicalSlots é a ordem de varredura determinística usada como último
// fallback ("slot 0") quando nenhum slot da cadeia existir.
var canonicalSlots = []string{
	SlotAll, SlotSide, SlotTop, SlotBottom, SlotLeft, SlotRight, SlotFront, SlotBack,
	SlotWall, SlotInsideAll,
}

func (v *Visibility) firstSlot() *TextureDef {
	for _, slot := range canonicalSlots {
		if t, ok := v.Textures[slot]; ok && t != nil {
			return t
		}
	}
	// Último recurso: varredura ordenada para manter o resultado estável.
	keys := make([]string, 0, len(v.Textures))
	for k := range v.Textures {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if t := v.Textures[k]; t != nil {
			return t
		}
	}
	return nil
}

// TextureForFace resolve a textura de uma face externa.
// Cadeia: slot específico da face -> "side" (só faces verticais) -> "all"
// -> primeiro slot canônico disponível. Retorna nil se não houver texturas.
func (v *Visibility) TextureForFace(face Face) *TextureDef {
	if v == nil || len(v.Textures) == 0 {
		return nil
	}
	if t, ok := v.Textures[face.Slot()]; ok && t != nil {
		return t
	}
	if face.Vertical() {
		if t, ok := v.Textures[SlotSide]; ok && t != nil {
			return t
		}
	}
	if t, ok := v.Textures[SlotAll]; ok && t != nil {
		return t
	}
	return v.firstSlot()
}

// TextureForInside resolve a textura de uma face interna de formas ocas.
// Cadeia: "inside-<face>" -> "inside-all" -> "all" -> primeiro slot.
func (v *Visibility) TextureForInside(face Face) *TextureDef {
	if v == nil || len(v.Textures) == 0 {
		return nil
	}
	if t, ok := v.Textures[SlotInsidePrefix+face.Slot()]; ok && t != nil {
		return t
	}
	if t, ok := v.Textures[SlotInsideAll]; ok && t != nil {
		return t
	}
	if t, ok := v.Textures[SlotAll]; ok && t != nil {
		return t
	}
	return v.firstSlot()
}

// TextureForGap resolve a textura das faces de preenchimento (anel da
// parede exposto quando uma face externa está oculta). O slot "wall" tem
// prioridade sobre a cadeia interna apenas para estas faces.
// Cadeia: "wall" -> "inside-<face>" -> "inside-all" -> "all" -> primeiro slot.
func (v *Visibility) TextureForGap(face Face) *TextureDef {
	if v == nil || len(v.Textures) == 0 {
		return nil
	}
	if t, ok := v.Textures[SlotWall]; ok && t != nil {
		return t
	}
	return v.TextureForInside(face)
}
