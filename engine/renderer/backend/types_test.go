package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilityText(t *testing.T) {
	var c Capability
	require.NoError(t, c.UnmarshalText([]byte("depth_test")))
	assert.Equal(t, CapDepthTest, c)

	require.NoError(t, c.UnmarshalText([]byte("GL_BLEND")))
	assert.Equal(t, CapBlend, c)

	text, err := CapRasterizerDiscard.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "RASTERIZER_DISCARD", string(text))

	assert.Error(t, c.UnmarshalText([]byte("STENCIL_TEST")))
}

func TestBlendAndDepthText(t *testing.T) {
	var src, dst BlendFactor
	require.NoError(t, src.UnmarshalText([]byte("SRC_ALPHA")))
	require.NoError(t, dst.UnmarshalText([]byte("ONE_MINUS_SRC_ALPHA")))
	assert.Equal(t, BlendSrcAlpha, src)
	assert.Equal(t, BlendOneMinusSrcAlpha, dst)

	var d DepthFunc
	require.NoError(t, d.UnmarshalText([]byte("LEQUAL")))
	assert.Equal(t, DepthLEqual, d)
}

func TestDrawModeText(t *testing.T) {
	var m DrawMode
	require.NoError(t, m.UnmarshalText([]byte("points")))
	assert.Equal(t, DrawPoints, m)
	assert.Equal(t, "TRIANGLES", DrawTriangles.String())
	assert.Equal(t, "DrawMode(42)", DrawMode(42).String())
}

func TestTextureFormatSizes(t *testing.T) {
	assert.Equal(t, 1, FormatR8.BytesPerTexel())
	assert.Equal(t, 3, FormatRGB8.BytesPerTexel())
	assert.Equal(t, 4, FormatRGBA8.BytesPerTexel())
	assert.Equal(t, 16, FormatRGBA32F.BytesPerTexel())
	assert.Equal(t, 4, FormatRGBA32F.Channels())
}
