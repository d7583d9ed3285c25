package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chiremba/chiremba/internal/parser/html"
	"github.com/chiremba/chiremba/internal/raster"
	"github.com/chiremba/chiremba/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{G: 180, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func sampleData(t *testing.T) report.Data {
	return report.Data{
		Date:          "12/03/2025",
		Time:          "10:42 AM",
		Condition:     "Eczema",
		Confidence:    87,
		Description:   "Inflamed, itchy patches of skin.",
		ModelUsed:     "skin-v2",
		ImageData:     "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 32, 32)),
		AIExplanation: "1. Summary: Likely eczema.",
	}
}

// fixedEngine returns a rasterizer producing a blank w×h artifact
func fixedEngine(w, h int, calls *int) raster.Rasterizer {
	return raster.Func(func(ctx context.Context, doc *html.Document) (image.Image, error) {
		*calls++
		return image.NewRGBA(image.Rect(0, 0, w, h)), nil
	})
}

func TestDownloadPaginatesTallArtifact(t *testing.T) {
	calls := 0
	g, err := New(WithEngine(fixedEngine(1000, 4000, &calls)))
	require.NoError(t, err)
	defer g.Close()

	var out bytes.Buffer
	res, err := g.Download(context.Background(), sampleData(t), &out)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 3, res.PageCount)
	assert.Equal(t, "medical_report_12-03-2025.pdf", res.Filename)
	assert.NotEmpty(t, res.ReportID)
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
}

func TestDownloadShortArtifactIsOnePage(t *testing.T) {
	calls := 0
	g, err := New(WithEngine(fixedEngine(1000, 500, &calls)))
	require.NoError(t, err)

	res, err := g.Download(context.Background(), sampleData(t), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.PageCount)
}

func TestDownloadMissingImageData(t *testing.T) {
	calls := 0
	g, err := New(WithEngine(fixedEngine(1000, 500, &calls)))
	require.NoError(t, err)

	data := sampleData(t)
	data.ImageData = ""

	var out bytes.Buffer
	_, err = g.Download(context.Background(), data, &out)
	require.Error(t, err)
	assert.Equal(t, report.KindInvalidInput, report.KindFromError(err))
	assert.Zero(t, out.Len())
	assert.Zero(t, calls)

	dir := t.TempDir()
	_, err = g.DownloadToFile(context.Background(), data, dir)
	assert.Equal(t, report.KindInvalidInput, report.KindFromError(err))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloadRasterizerFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want report.Kind
	}{
		{"corrupt image", errors.New("failed to load image: unexpected EOF"), report.KindExternalService},
		{"no browser", raster.ErrBrowserUnavailable, report.KindEnvironmentUnavailable},
		{"canceled", context.Canceled, report.KindExternalService},
		{"too large", raster.ErrDocumentTooLarge, report.KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := raster.Func(func(ctx context.Context, doc *html.Document) (image.Image, error) {
				return nil, tt.err
			})
			g, err := New(WithEngine(engine))
			require.NoError(t, err)

			var out bytes.Buffer
			_, err = g.Download(context.Background(), sampleData(t), &out)
			assert.Equal(t, tt.want, report.KindFromError(err))
			assert.ErrorIs(t, err, tt.err)
			assert.Zero(t, out.Len())
		})
	}
}

func TestDownloadOversizeReportIsInvalidInput(t *testing.T) {
	g, err := New(WithRasterizer(raster.KindNative), WithMaxPixels(1000))
	require.NoError(t, err)
	defer g.Close()

	var out bytes.Buffer
	_, err = g.Download(context.Background(), sampleData(t), &out)
	assert.Equal(t, report.KindInvalidInput, report.KindFromError(err))
	assert.ErrorIs(t, err, raster.ErrDocumentTooLarge)
	assert.Zero(t, out.Len())
}

func TestDownloadEmptyArtifact(t *testing.T) {
	calls := 0
	g, err := New(WithEngine(fixedEngine(0, 0, &calls)))
	require.NoError(t, err)

	_, err = g.Download(context.Background(), sampleData(t), &bytes.Buffer{})
	assert.Equal(t, report.KindInvalidInput, report.KindFromError(err))
}

func TestDownloadToFile(t *testing.T) {
	calls := 0
	g, err := New(WithEngine(fixedEngine(1000, 2000, &calls)))
	require.NoError(t, err)

	dir := t.TempDir()
	path, err := g.DownloadToFile(context.Background(), sampleData(t), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "medical_report_12-03-2025.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestDownloadNativeEndToEnd(t *testing.T) {
	g, err := New()
	require.NoError(t, err)
	defer g.Close()

	var out bytes.Buffer
	res, err := g.Download(context.Background(), sampleData(t), &out)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.PageCount, 1)
	assert.Greater(t, out.Len(), 1000)
}

func TestPrint(t *testing.T) {
	g, err := New()
	require.NoError(t, err)

	var out bytes.Buffer
	res, err := g.Print(context.Background(), sampleData(t), &out)
	require.NoError(t, err)
	assert.NotEmpty(t, res.ReportID)
	assert.Zero(t, res.PageCount)

	page := out.String()
	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "window.print()")
	assert.Contains(t, page, "Eczema")

	data := sampleData(t)
	data.Condition = ""
	out.Reset()
	_, err = g.Print(context.Background(), data, &out)
	assert.Equal(t, report.KindInvalidInput, report.KindFromError(err))
	assert.Zero(t, out.Len())
}

func TestConvertHTMLResolvesLocalImages(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.png"), pngBytes(t, 40, 20), 0o644))

	g, err := New()
	require.NoError(t, err)

	markup := `<html><body><h1>Scan</h1><img src="scan.png"></body></html>`
	var out bytes.Buffer
	pages, err := g.ConvertHTML(context.Background(), strings.NewReader(markup), filepath.Join(dir, "page.html"), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
}

func TestNewRejectsInvalidLayout(t *testing.T) {
	_, err := New(WithMargin(150))
	assert.Equal(t, report.KindInvalidInput, report.KindFromError(err))

	_, err = New(WithMargin(math.NaN()))
	assert.Equal(t, report.KindInvalidInput, report.KindFromError(err))

	_, err = New(WithRasterizer("gdi"))
	assert.Equal(t, report.KindInvalidInput, report.KindFromError(err))
}

func TestPageSize(t *testing.T) {
	w, h, ok := PageSize("letter")
	require.True(t, ok)
	assert.Equal(t, PageSizeLetterWidth, w)
	assert.Equal(t, PageSizeLetterHeight, h)

	_, _, ok = PageSize("B5")
	assert.False(t, ok)
}
