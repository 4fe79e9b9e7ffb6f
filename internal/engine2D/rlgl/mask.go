package rlgl

import (
	"errors"

	rl "github.com/gen2brain/raylib-go/raylib"

	"linux-lavalamp/internal/engine2D"
	"linux-lavalamp/internal/utils"
)

// maskFragment keeps whatever is drawn only where the blob texture is
// covered. maskRect is the blob surface in framebuffer pixels, origin
// bottom-left.
const maskFragment = `
#version 330
in vec2 fragTexCoord;
in vec4 fragColor;
uniform sampler2D texture0;
uniform sampler2D blobMask;
uniform vec4 colDiffuse;
uniform vec4 maskRect;
out vec4 finalColor;
void main() {
    vec4 texel = texture(texture0, fragTexCoord) * colDiffuse * fragColor;
    vec2 uv = (gl_FragCoord.xy - maskRect.xy) / maskRect.zw;
    float cover = 0.0;
    if (uv.x >= 0.0 && uv.x <= 1.0 && uv.y >= 0.0 && uv.y <= 1.0) {
        cover = texture(blobMask, uv).a;
    }
    finalColor = vec4(texel.rgb, texel.a * cover);
}
`

type MaskShader struct {
	shader  rl.Shader
	maskLoc int32
	rectLoc int32
}

func LoadMaskShader() (*MaskShader, error) {
	sh := rl.LoadShaderFromMemory("", maskFragment)
	if sh.ID == 0 {
		return nil, errors.New("mask shader failed to compile")
	}
	m := &MaskShader{
		shader:  sh,
		maskLoc: rl.GetShaderLocation(sh, "blobMask"),
		rectLoc: rl.GetShaderLocation(sh, "maskRect"),
	}
	utils.Info("Shader: mask loaded (ID: %d)", sh.ID)
	return m, nil
}

// Begin starts clipping to blob. rect is the surface on screen in window
// coordinates; dpi converts them to framebuffer pixels.
func (m *MaskShader) Begin(blob *engine2D.Surface, rect rl.Rectangle, dpi rl.Vector2) bool {
	tex, ok := Texture(blob)
	if !ok {
		return false
	}
	fbHeight := float32(rl.GetRenderHeight())
	x := rect.X * dpi.X
	w := rect.Width * dpi.X
	h := rect.Height * dpi.Y
	y := fbHeight - (rect.Y*dpi.Y + h)

	rl.BeginShaderMode(m.shader)
	rl.SetShaderValueTexture(m.shader, m.maskLoc, tex)
	rl.SetShaderValue(m.shader, m.rectLoc, []float32{x, y, w, h}, rl.ShaderUniformVec4)
	return true
}

func (m *MaskShader) End() { rl.EndShaderMode() }

func (m *MaskShader) Unload() { rl.UnloadShader(m.shader) }
