package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/MametaroGG/BoothPic/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngWithAlpha — картинка 2x2: левый столбец красный, правый прозрачный.
func pngWithAlpha(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(0, 1, color.NRGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeFlattensAlphaOntoWhite(t *testing.T) {
	data, err := NewNormalizer().Normalize(pngWithAlpha(t))
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	r, g, b, a := decoded.At(1, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)
	assert.Equal(t, uint32(0xffff), a, "transparent pixels must become opaque white")

	r, _, _, a = decoded.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := NewNormalizer().Normalize([]byte("definitely not an image"))
	assert.ErrorIs(t, err, e.ErrImageDecodeFailed)
}
