package pdf

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/chiremba/chiremba/internal/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var pageObject = regexp.MustCompile(`/Type /Page\b`)

func artifact(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(y), G: 120, B: 200, A: 255})
		}
	}
	return img
}

func TestRenderOnePagePerPlacement(t *testing.T) {
	img := artifact(100, 400)
	plan, err := pagination.Paginate(pagination.ArtifactFromImage(img), pagination.LayoutA4)
	require.NoError(t, err)
	require.Equal(t, 3, plan.PageCount)

	var out bytes.Buffer
	err = NewRenderer().Render(&out, img, plan, RenderOptions{Title: "Report", Creator: "chiremba"})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
	assert.Len(t, pageObject.FindAll(out.Bytes(), -1), 3)
}

func TestRenderSinglePage(t *testing.T) {
	img := artifact(100, 50)
	plan, err := pagination.Paginate(pagination.ArtifactFromImage(img), pagination.LayoutA4)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, NewRenderer().Render(&out, img, plan, RenderOptions{}))
	assert.Len(t, pageObject.FindAll(out.Bytes(), -1), 1)
}

func TestRenderFailureWritesNothing(t *testing.T) {
	var out bytes.Buffer
	err := NewRenderer().Render(&out, nil, pagination.Plan{PageCount: 1}, RenderOptions{})
	assert.ErrorIs(t, err, pagination.ErrInvalidArtifact)
	assert.Zero(t, out.Len())

	err = NewRenderer().Render(&out, artifact(10, 10), pagination.Plan{}, RenderOptions{})
	assert.ErrorIs(t, err, ErrNoPages)
	assert.Zero(t, out.Len())
}

func TestRenderFile(t *testing.T) {
	img := artifact(100, 100)
	plan, err := pagination.Paginate(pagination.ArtifactFromImage(img), pagination.LayoutLetter)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "reports", "medical_report_12-03-2025.pdf")
	require.NoError(t, NewRenderer().RenderFile(path, img, plan, RenderOptions{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestRenderFileFailureLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	err := NewRenderer().RenderFile(path, nil, pagination.Plan{}, RenderOptions{})
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
