package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 3, 4))
	assert.Equal(t, "a", Coalesce("a", "b"))
	assert.Equal(t, [2]float32{1, 2}, Coalesce([2]float32{}, [2]float32{1, 2}))
	assert.Zero(t, Coalesce[int]())
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32{}))

	b := SliceToBytes([]uint16{0x0102, 0x0304})
	require.Len(t, b, 4)
	assert.Equal(t, []byte{0x02, 0x01, 0x04, 0x03}, b, "little-endian layout")
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageSourceDecode(t *testing.T) {
	data := encodePNG(t)

	got, err := (&ImageSource{Name: "seed", Data: data}).Decode()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), got.Width)
	assert.Equal(t, uint32(1), got.Height)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 255, 0, 255}, got.Pixels)

	path := filepath.Join(t.TempDir(), "seed.png")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	fromFile, err := (&ImageSource{Path: path}).Decode()
	require.NoError(t, err)
	assert.Equal(t, got, fromFile)
}

func TestImageSourceDecodeErrors(t *testing.T) {
	var nilSource *ImageSource
	_, err := nilSource.Decode()
	assert.Error(t, err)

	_, err = (&ImageSource{}).Decode()
	assert.Error(t, err)

	_, err = (&ImageSource{Name: "junk", Data: []byte("not an image")}).Decode()
	assert.Error(t, err)

	_, err = (&ImageSource{Path: filepath.Join(t.TempDir(), "missing.png")}).Decode()
	assert.Error(t, err)
}
