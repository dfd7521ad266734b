package renderer

// Sphere: the panorama is seen from inside, so the texture is sampled with a
// per-object UV scale (negative U mirrors it) and faded with uOpacity.
const sphereVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec2 aUV;

uniform mat4 uViewProj;
uniform mat4 uModel;
uniform vec2 uUVScale;

out vec2 vUV;

void main() {
	vUV = aUV * uUVScale;
	gl_Position = uViewProj * uModel * vec4(aPos, 1.0);
}
`

const sphereFragmentShader = `
#version 410 core

in vec2 vUV;
out vec4 FragColor;

uniform sampler2D uTexture;
uniform float uOpacity;

void main() {
	vec4 color = texture(uTexture, vUV);
	FragColor = vec4(color.rgb, color.a * uOpacity);
}
`

// Marker: a camera-facing quad spanning [-0.5, 0.5] around uCenter.
const markerVertexShader = `
#version 410 core

layout (location = 0) in vec2 aCorner;

uniform mat4 uViewProj;
uniform vec3 uCenter;
uniform vec3 uRight;
uniform vec3 uUp;
uniform float uSize;

out vec2 vUV;

void main() {
	vUV = vec2(aCorner.x + 0.5, 0.5 - aCorner.y);
	vec3 pos = uCenter + (uRight * aCorner.x + uUp * aCorner.y) * uSize;
	gl_Position = uViewProj * vec4(pos, 1.0);
}
`

const markerFragmentShader = `
#version 410 core

in vec2 vUV;
out vec4 FragColor;

uniform sampler2D uTexture;
uniform float uOpacity;

void main() {
	vec4 color = texture(uTexture, vUV);
	if (color.a < 0.01) {
		discard;
	}
	FragColor = vec4(color.rgb, color.a * uOpacity);
}
`
