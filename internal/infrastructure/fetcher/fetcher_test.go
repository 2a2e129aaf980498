package fetcher

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MametaroGG/BoothPic/internal/cfg"
	"github.com/MametaroGG/BoothPic/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(t *testing.T, imageRoot string) *Fetcher {
	t.Helper()
	return NewFetcher(&cfg.IndexerCfg{
		ImageRoot:    imageRoot,
		FetchTimeout: 2 * time.Second,
		FetchRetries: 1,
		Workers:      2,
	}, nil, &cfg.MinIOCfg{}, logger.NewSlogLogger())
}

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

func TestResolveLocalFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "raw_images"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "raw_images", "item_1_1.png"), pngWithAlpha(t), 0644))

	res := newTestFetcher(t, root).Resolve(context.Background(), "raw_images/item_1_1.png")

	require.Empty(t, res.Skip)
	require.NotNil(t, res.Image)
	assert.Equal(t, "/api/images/item_1_1.png", res.Image.ThumbnailURL)

	decoded, err := png.Decode(bytes.NewReader(res.Image.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), decoded.Bounds())

	// Прозрачный пиксель исходника сведён на белый фон.
	r, g, b, a := decoded.At(1, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)
	assert.Equal(t, uint32(0xffff), a)
}

func TestResolveFallsBackToRawImagesDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "raw_images"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "raw_images", "item_2_1.png"), pngWithAlpha(t), 0644))

	// Фид ссылается на старый путь, файл давно переехал в raw_images.
	res := newTestFetcher(t, root).Resolve(context.Background(), "data/images/item_2_1.png")

	require.Empty(t, res.Skip)
	assert.Equal(t, "/api/images/item_2_1.png", res.Image.ThumbnailURL)
}

func TestResolveMissingLocalFile(t *testing.T) {
	res := newTestFetcher(t, t.TempDir()).Resolve(context.Background(), "raw_images/nope.png")

	assert.Nil(t, res.Image)
	assert.NotEmpty(t, res.Skip)
}

func TestResolveGarbageFileBecomesSkip(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "raw_images"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "raw_images", "broken.png"), []byte("not an image"), 0644))

	res := newTestFetcher(t, root).Resolve(context.Background(), "raw_images/broken.png")

	assert.Nil(t, res.Image)
	assert.Contains(t, res.Skip, "decode failed")
}

func TestResolveRemoteURL(t *testing.T) {
	payload := pngWithAlpha(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	url := srv.URL + "/item_3_1.png"
	res := newTestFetcher(t, t.TempDir()).Resolve(context.Background(), url)

	require.Empty(t, res.Skip)
	assert.Equal(t, url, res.Image.ThumbnailURL, "remote thumbnails point at the origin URL")
}

func TestResolveRemoteErrorBecomesSkip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	res := newTestFetcher(t, t.TempDir()).Resolve(context.Background(), srv.URL+"/gone.png")

	assert.Nil(t, res.Image)
	assert.NotEmpty(t, res.Skip)
}
