package raster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chiremba/chiremba/internal/parser/html"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chromeBinaryPath(t *testing.T) string {
	t.Helper()
	if path := os.Getenv("CHROME_BIN"); path != "" {
		return path
	}
	candidates := []string{"google-chrome", "chromium", "chromium-browser"}
	for _, candidate := range candidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path
		}
	}
	t.Skip("chromium binary not found; set CHROME_BIN to run browser rasterizer tests")
	return ""
}

func TestChromiumRasterizesReport(t *testing.T) {
	bin := chromeBinaryPath(t)
	c := NewChromium(Options{BrowserPath: bin})
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	img, err := c.Rasterize(ctx, reportDocument(t))
	require.NoError(t, err)
	assert.Equal(t, 1500, img.Bounds().Dx())
	assert.Greater(t, img.Bounds().Dy(), 600)
	assert.True(t, hasRedPixel(img))
}

func TestRodRasterizesReport(t *testing.T) {
	bin := chromeBinaryPath(t)
	r := NewRod(Options{BrowserPath: bin})
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	img, err := r.Rasterize(ctx, reportDocument(t))
	require.NoError(t, err)
	assert.Equal(t, 1500, img.Bounds().Dx())
	assert.True(t, hasRedPixel(img))
}

func TestChromiumMissingBrowser(t *testing.T) {
	t.Setenv("CHROME_BIN", "")
	t.Setenv("PATH", t.TempDir())
	c := NewChromium(Options{})
	defer c.Close()

	_, err := c.Rasterize(context.Background(), reportDocument(t))
	assert.True(t, IsBrowserUnavailable(err))
}

// remoteImageDocument refers to an image served by a local test server and
// returns the number of requests that server received
func remoteImageDocument(t *testing.T) (*html.Document, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	body := redSquarePNG(t, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	t.Cleanup(srv.Close)

	doc, err := html.NewParser().ParseString(`<html><body><p>scan</p><img src="` + srv.URL + `/scan.png"></body></html>`)
	require.NoError(t, err)
	return doc, &hits
}

func TestBrowserRasterizersStayOffline(t *testing.T) {
	bin := chromeBinaryPath(t)
	backends := map[string]func() Rasterizer{
		"chromium": func() Rasterizer { return NewChromium(Options{BrowserPath: bin}) },
		"rod":      func() Rasterizer { return NewRod(Options{BrowserPath: bin}) },
	}
	for name, newRasterizer := range backends {
		t.Run(name, func(t *testing.T) {
			r := newRasterizer()
			defer Close(r)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			doc, hits := remoteImageDocument(t)
			img, err := r.Rasterize(ctx, doc)
			require.NoError(t, err)
			assert.Equal(t, 1500, img.Bounds().Dx())
			assert.Zero(t, hits.Load())
			assert.False(t, hasRedPixel(img))
		})
	}
}
