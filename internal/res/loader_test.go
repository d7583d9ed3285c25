package res

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestLoadDataURLImage(t *testing.T) {
	l := NewDataLoader()
	img, err := l.Image(pngDataURL(t, 12, 7))
	require.NoError(t, err)
	assert.Equal(t, 12, img.Bounds().Dx())
	assert.Equal(t, 7, img.Bounds().Dy())
}

func TestParseDataURLVariants(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("hello world!"))
	wrapped := payload[:6] + "\n" + payload[6:]

	r, err := parseDataURL("data:text/plain;base64," + wrapped)
	require.NoError(t, err)
	assert.Equal(t, "hello world!", string(r.Data))
	assert.Equal(t, "text/plain", r.MimeType)

	r, err = parseDataURL("data:,Hello%20World")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", string(r.Data))
	assert.Equal(t, "application/octet-stream", r.MimeType)

	_, err = parseDataURL("data:image/png;base64,***")
	assert.Error(t, err)

	_, err = parseDataURL("data:image/png;base64")
	assert.Error(t, err)
}

func TestDataLoaderRejectsFiles(t *testing.T) {
	_, err := NewDataLoader().Load("/etc/passwd")
	assert.Error(t, err)
}

func TestImageRejectsNonImage(t *testing.T) {
	_, err := NewDataLoader().Image("data:text/plain,abc")
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestImageCorruptData(t *testing.T) {
	_, err := NewDataLoader().Image("data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not a png")))
	assert.Error(t, err)
}

func TestLoadLocalAndSearchPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logo.svg")
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 40 20"><rect width="40" height="20" fill="#4f46e5"/></svg>`
	require.NoError(t, os.WriteFile(path, []byte(svg), 0o644))

	l := NewLoader(filepath.Join(t.TempDir(), "index.html"))
	l.AddSearchPath(dir)

	img, err := l.Image("logo.svg")
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())

	r, g, b, a := img.At(20, 10).RGBA()
	assert.Equal(t, uint32(0x4f), r>>8)
	assert.Equal(t, uint32(0x46), g>>8)
	assert.Equal(t, uint32(0xe5), b>>8)
	assert.Equal(t, uint32(0xff), a>>8)
}

func TestRasterizeSVGSizes(t *testing.T) {
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50"></svg>`
	img, err := RasterizeSVG(strings.NewReader(svg), 200, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds())
}

func TestLoadRemoteResolvesAgainstBase(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 2))))
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/scans/lesion.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png; charset=binary")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	l := NewLoader(srv.URL + "/scans/report.html")
	img, err := l.Image("lesion.png")
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())

	// cached
	_, err = l.Image("lesion.png")
	require.NoError(t, err)
	assert.Equal(t, 1, hits)

	_, err = l.Load("missing.png")
	assert.ErrorContains(t, err, "404")
}
