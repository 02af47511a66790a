package render

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

const terrainVertexShader = `
#version 330

in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
in vec4 vertexColor;

uniform mat4 mvp;

out vec2 fragTexCoord;
out vec4 fragColor;
out vec3 fragNormal;

void main()
{
    fragTexCoord = vertexTexCoord;
    fragColor = vertexColor;
    fragNormal = vertexNormal;
    gl_Position = mvp * vec4(vertexPosition, 1.0);
}
`

const terrainFragmentShader = `
#version 330

in vec2 fragTexCoord;
in vec4 fragColor;
in vec3 fragNormal;

uniform sampler2D texture0;
uniform vec4 colDiffuse;

out vec4 finalColor;

void main()
{
    vec4 texel = texture(texture0, fragTexCoord);
    if (texel.a < 0.01) discard;

    // Iluminação direcional fixa, suficiente para leitura de volume.
    vec3 lightDir = normalize(vec3(0.4, 1.0, 0.3));
    float diff = max(dot(normalize(fragNormal), lightDir), 0.0);
    float light = 0.55 + 0.45 * diff;

    finalColor = texel * fragColor * colDiffuse * vec4(light, light, light, 1.0);
}
`

// O shader de plantas lê o canal de vento empacotado em texcoord2:
// x = leafiness (amplitude da copa), y = leverUp escalado pelo nível.
const plantVertexShader = `
#version 330

in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec2 vertexTexCoord2;
in vec3 vertexNormal;
in vec4 vertexColor;

uniform mat4 mvp;
uniform float time;

out vec2 fragTexCoord;
out vec4 fragColor;
out vec3 fragNormal;

void main()
{
    fragTexCoord = vertexTexCoord;
    fragColor = vertexColor;
    fragNormal = vertexNormal;

    vec3 pos = vertexPosition;
    float leafiness = vertexTexCoord2.x;
    float lever = vertexTexCoord2.y;

    float sway = sin(time * 1.7 + pos.x * 0.9 + pos.z * 1.3);
    float bob  = cos(time * 2.3 + pos.x * 1.1 + pos.z * 0.7);
    pos.x += sway * 0.08 * leafiness * (0.5 + lever);
    pos.z += bob  * 0.06 * leafiness * (0.5 + lever);
    pos.y += sway * 0.02 * lever;

    gl_Position = mvp * vec4(pos, 1.0);
}
`

const plantFragmentShader = `
#version 330

in vec2 fragTexCoord;
in vec4 fragColor;
in vec3 fragNormal;

uniform sampler2D texture0;
uniform vec4 colDiffuse;

out vec4 finalColor;

void main()
{
    vec4 texel = texture(texture0, fragTexCoord);
    if (texel.a < 0.5) discard;

    vec3 lightDir = normalize(vec3(0.4, 1.0, 0.3));
    float diff = max(abs(dot(normalize(fragNormal), lightDir)), 0.0);
    float light = 0.6 + 0.4 * diff;

    finalColor = texel * fragColor * colDiffuse * vec4(light, light, light, 1.0);
}
`

const waterVertexShader = `
#version 330

in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
in vec4 vertexColor;

uniform mat4 mvp;
uniform float time;

out vec2 fragTexCoord;
out vec4 fragColor;
out vec3 fragNormal;

void main()
{
    fragTexCoord = vertexPosition.xz * 0.25 + vec2(time * 0.03, time * 0.02);
    fragColor = vertexColor;
    fragNormal = vertexNormal;

    vec3 pos = vertexPosition;
    pos.y += sin(time * 1.4 + pos.x * 0.8 + pos.z * 0.6) * 0.05;
    pos.y += cos(time * 0.9 + pos.x * 0.3 - pos.z * 1.1) * 0.03;

    gl_Position = mvp * vec4(pos, 1.0);
}
`

const waterFragmentShader = `
#version 330

in vec2 fragTexCoord;
in vec4 fragColor;
in vec3 fragNormal;

uniform sampler2D texture0;
uniform vec4 colDiffuse;
uniform float time;

out vec4 finalColor;

void main()
{
    vec4 texel = texture(texture0, fragTexCoord);

    float w1 = sin(fragTexCoord.x * 6.0 + fragTexCoord.y * 4.0 + time * 1.5) * 0.5 + 0.5;
    float w2 = sin(fragTexCoord.x * 3.4 - fragTexCoord.y * 4.6 + time * 1.1) * 0.5 + 0.5;
    float wave = (w1 + w2) * 0.5;

    vec3 base = texel.rgb * fragColor.rgb;
    base += wave * vec3(0.04, 0.10, 0.14);

    finalColor = vec4(base, fragColor.a * 0.8) * colDiffuse;
}
`

// ShaderSet agrupa os shaders do visor e seus uniforms de tempo.
type ShaderSet struct {
	Terrain rl.Shader
	Plant   rl.Shader
	Water   rl.Shader

	terrainLoaded bool
	plantTimeLoc  int32
	waterTimeLoc  int32
}

// NewShaderSet compila os shaders. Sem janela (testes, headless) o
// conjunto fica vazio e ForEffect devolve o shader zero do Raylib.
func NewShaderSet() *ShaderSet {
	s := &ShaderSet{}
	if !rl.IsWindowReady() {
		return s
	}

	s.Terrain = rl.LoadShaderFromMemory(terrainVertexShader, terrainFragmentShader)
	s.Plant = rl.LoadShaderFromMemory(plantVertexShader, plantFragmentShader)
	s.Water = rl.LoadShaderFromMemory(waterVertexShader, waterFragmentShader)
	s.terrainLoaded = true

	s.plantTimeLoc = rl.GetShaderLocation(s.Plant, "time")
	s.waterTimeLoc = rl.GetShaderLocation(s.Water, "time")
	return s
}

// ForEffect seleciona o shader pelo id de efeito da chave de material.
func (s *ShaderSet) ForEffect(effect string) rl.Shader {
	switch effect {
	case "wind", "leaf", "plant":
		return s.Plant
	case "water", "lava", "scroll":
		return s.Water
	default:
		return s.Terrain
	}
}

// UpdateTime alimenta o uniform de tempo dos shaders animados.
func (s *ShaderSet) UpdateTime(t float32) {
	if !s.terrainLoaded {
		return
	}
	rl.SetShaderValue(s.Plant, s.plantTimeLoc, []float32{t}, rl.ShaderUniformFloat)
	rl.SetShaderValue(s.Water, s.waterTimeLoc, []float32{t}, rl.ShaderUniformFloat)
}

// Unload descarrega os shaders compilados.
func (s *ShaderSet) Unload() {
	if !s.terrainLoaded {
		return
	}
	rl.UnloadShader(s.Terrain)
	rl.UnloadShader(s.Plant)
	rl.UnloadShader(s.Water)
	s.terrainLoaded = false
}
