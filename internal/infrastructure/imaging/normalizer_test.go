package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	return img
}

func TestNormalize_PassesThroughPNGAndJPEG(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, sampleImage()))
	out, mime, err := n.Normalize(pngBuf.Bytes(), "application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, MimePNG, mime)
	assert.Equal(t, pngBuf.Bytes(), out)

	var jpgBuf bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpgBuf, sampleImage(), nil))
	out, mime, err = n.Normalize(jpgBuf.Bytes(), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, MimeJPEG, mime)
	assert.Equal(t, jpgBuf.Bytes(), out)
}

func TestNormalize_ConvertsGIF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, sampleImage(), nil))

	out, mime, err := NewNormalizer(zap.NewNop()).Normalize(buf.Bytes(), "image/gif")
	require.NoError(t, err)
	assert.Equal(t, MimePNG, mime)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestNormalize_RejectsUnknownData(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	_, _, err := n.Normalize([]byte("just some text"), "text/plain")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, _, err = n.Normalize(nil, "image/png")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestIsHEIC(t *testing.T) {
	box := func(brand string) []byte {
		return append([]byte{0, 0, 0, 24, 'f', 't', 'y', 'p'}, []byte(brand+"\x00\x00\x00\x00")...)
	}
	assert.True(t, IsHEIC(box("heic")))
	assert.True(t, IsHEIC(box("mif1")))
	assert.False(t, IsHEIC(box("isom")))
	assert.False(t, IsHEIC([]byte("short")))
}
