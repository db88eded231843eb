package media

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestNormalizeFitsLargeImage(t *testing.T) {
	out, err := Normalize(bytes.NewReader(encodePNG(t, 2000, 1000)), ".png", PostImage)
	require.NoError(t, err)
	assert.Equal(t, 960, out.Width)
	assert.Equal(t, 480, out.Height)
	assert.Equal(t, "image/png", out.ContentType)

	decoded, format, err := image.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 960, decoded.Bounds().Dx())
}

func TestNormalizeKeepsSmallImage(t *testing.T) {
	out, err := Normalize(bytes.NewReader(encodePNG(t, 40, 20)), ".png", PostImage)
	require.NoError(t, err)
	assert.Equal(t, 40, out.Width)
	assert.Equal(t, 20, out.Height)
}

func TestNormalizeCropsProfilePhoto(t *testing.T) {
	out, err := Normalize(bytes.NewReader(encodePNG(t, 800, 400)), ".JPG", ProfilePhoto)
	require.NoError(t, err)
	assert.Equal(t, 300, out.Width)
	assert.Equal(t, 300, out.Height)
	assert.Equal(t, "image/jpeg", out.ContentType)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize(strings.NewReader("definitely not a png"), ".png", PostImage)
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = Normalize(bytes.NewReader(encodePNG(t, 4, 4)), ".txt", PostImage)
	assert.ErrorIs(t, err, ErrNotImage)
}
