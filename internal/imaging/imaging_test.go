package imaging_test

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lostfound/internal/imaging"
)

func encodePNG(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return &buf
}

func TestProcessPNG(t *testing.T) {
	res, err := imaging.Process(encodePNG(t, 16, 16))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", res.MIME)

	img, err := jpeg.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
}

func TestProcessJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10)), nil))

	res, err := imaging.Process(&buf)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", res.MIME)
}

func TestProcessDownscales(t *testing.T) {
	res, err := imaging.Process(encodePNG(t, 2048, 512))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, imaging.MaxDimension, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy(), "aspect ratio preserved")
}

func TestProcessDownscalesTall(t *testing.T) {
	res, err := imaging.Process(encodePNG(t, 512, 2048))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, imaging.MaxDimension, img.Bounds().Dy())
}

func TestProcessRejectsNonImage(t *testing.T) {
	_, err := imaging.Process(strings.NewReader("<html>not an image</html>"))
	assert.Error(t, err)

	_, err = imaging.Process(strings.NewReader("plain text payload"))
	assert.Error(t, err)
}

func TestProcessRejectsGIF(t *testing.T) {
	// Valid GIF header, but only JPEG and PNG are accepted.
	_, err := imaging.Process(bytes.NewReader([]byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")))
	assert.Error(t, err)
}
