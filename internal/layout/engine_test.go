package layout

import (
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/chiremba/chiremba/internal/parser/css"
	"github.com/chiremba/chiremba/internal/parser/html"
	"github.com/chiremba/chiremba/internal/style"
	"github.com/chiremba/chiremba/internal/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func layoutMarkup(t *testing.T, markup, sheet string, width float64, images ImageSource) (*html.Document, *BlockBox, error) {
	t.Helper()
	doc, err := html.NewParser().ParseString(markup)
	require.NoError(t, err)
	stylesheet, err := css.NewParser().ParseString(sheet)
	require.NoError(t, err)

	se := style.NewStyleEngine()
	se.AddStylesheet(stylesheet)

	shaper, err := text.NewTextShaper()
	require.NoError(t, err)

	engine := NewEngine(shaper, images)
	engine.SetOptions(Options{Width: width})
	engine.SetStyles(se.ComputeStyles(doc))
	root, err := engine.Layout(doc)
	return doc, root, err
}

func boxFor(root Box, n *html.Node) Box {
	var found Box
	Walk(root, func(b Box) {
		if found == nil && b.GetNode() == n {
			if _, ok := b.(*LineBox); !ok {
				found = b
			}
		}
	})
	return found
}

func linesOf(root Box) []*LineBox {
	var out []*LineBox
	Walk(root, func(b Box) {
		if l, ok := b.(*LineBox); ok {
			out = append(out, l)
		}
	})
	return out
}

func TestLayoutWrapsLongParagraph(t *testing.T) {
	long := strings.Repeat("healthcare professional evaluation ", 20)
	_, narrow, err := layoutMarkup(t, "<p>"+long+"</p>", `p { margin: 0; font-size: 14px; line-height: 1.4; }`, 200, nil)
	require.NoError(t, err)
	_, wide, err := layoutMarkup(t, "<p>"+long+"</p>", `p { margin: 0; font-size: 14px; line-height: 1.4; }`, 2000, nil)
	require.NoError(t, err)

	narrowLines := linesOf(narrow)
	require.Greater(t, len(narrowLines), len(linesOf(wide)))
	for _, l := range narrowLines {
		assert.LessOrEqual(t, l.Width, 200.0)
		assert.InDelta(t, 19.6, l.Height, 1e-9)
	}
	assert.InDelta(t, float64(len(narrowLines))*19.6, narrow.Height, 1e-6)
	assert.Greater(t, narrow.Height, wide.Height)
}

func TestLayoutConfidenceBar(t *testing.T) {
	doc, root, err := layoutMarkup(t,
		`<div class="box"><div class="confidence-bar"><div class="confidence-fill" style="width: 87%"></div></div></div>`,
		`.box { padding: 12px; } .confidence-bar { height: 6px; margin: 8px 0; background-color: #e5e7eb; } .confidence-fill { height: 100%; background-color: #4f46e5; }`,
		400, nil)
	require.NoError(t, err)

	bar := boxFor(root, doc.Find(html.ByClass("confidence-bar"))).(*BlockBox)
	fill := boxFor(root, doc.Find(html.ByClass("confidence-fill"))).(*BlockBox)

	assert.InDelta(t, 376, bar.Width, 1e-9)
	assert.InDelta(t, 6, bar.Height, 1e-9)
	assert.InDelta(t, 0.87*376, fill.Width, 1e-9)
	assert.InDelta(t, 6, fill.Height, 1e-9)
	assert.InDelta(t, bar.X, fill.X, 1e-9)
	assert.Equal(t, uint8(0xe5), bar.Background.R)
}

func TestLayoutImageScaledAndCentered(t *testing.T) {
	images := ImageSourceFunc(func(src string) (image.Image, error) {
		return image.NewRGBA(image.Rect(0, 0, 1000, 500)), nil
	})
	doc, root, err := layoutMarkup(t,
		`<div class="image-container"><img src="data:image/png;base64,AAAA"></div>`,
		`.image-container { text-align: center; } .image-container img { max-width: 100%; max-height: 100px; }`,
		400, images)
	require.NoError(t, err)

	img := boxFor(root, doc.Find(html.ByTag("img"))).(*ImageBox)
	assert.InDelta(t, 200, img.Width, 1e-9)
	assert.InDelta(t, 100, img.Height, 1e-9)
	assert.InDelta(t, 100, img.X, 1e-9)
	assert.NotNil(t, img.Image)
}

func TestLayoutImageFailure(t *testing.T) {
	images := ImageSourceFunc(func(src string) (image.Image, error) {
		return nil, errors.New("corrupt")
	})
	_, _, err := layoutMarkup(t, `<div><img src="data:image/png;base64,AAAA"></div>`, ``, 400, images)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt")

	_, _, err = layoutMarkup(t, `<div><img src="x.png"></div>`, ``, 400, nil)
	assert.Error(t, err)
}

func TestLayoutSiblingMarginsCollapse(t *testing.T) {
	doc, root, err := layoutMarkup(t,
		`<div class="a"></div><div class="b"></div>`,
		`.a { height: 10px; margin-bottom: 20px; } .b { height: 10px; margin-top: 15px; }`,
		300, nil)
	require.NoError(t, err)

	a := boxFor(root, doc.Find(html.ByClass("a")))
	b := boxFor(root, doc.Find(html.ByClass("b")))
	assert.InDelta(t, 20, b.GetY()-(a.GetY()+a.GetHeight()), 1e-9)
}

func TestLayoutCentersMaxWidthContainer(t *testing.T) {
	doc, root, err := layoutMarkup(t,
		`<div class="report-container"><p>x</p></div>`,
		`.report-container { max-width: 500px; margin: 0 auto; padding: 20px; }`,
		800, nil)
	require.NoError(t, err)

	c := boxFor(root, doc.Find(html.ByClass("report-container"))).(*BlockBox)
	assert.InDelta(t, 540, c.Width, 1e-9)
	assert.InDelta(t, 130, c.X, 1e-9)
}

func TestLayoutInlineRunsKeepStyles(t *testing.T) {
	_, root, err := layoutMarkup(t,
		`<p><strong>Eczema</strong> (12% confidence)</p>`,
		`p { margin: 0; }`, 600, nil)
	require.NoError(t, err)

	lines := linesOf(root)
	require.Len(t, lines, 1)
	require.Len(t, lines[0].Runs, 2)
	assert.Equal(t, "Eczema", lines[0].Runs[0].Text)
	assert.True(t, lines[0].Runs[0].Font.Bold())
	assert.Equal(t, " (12% confidence)", lines[0].Runs[1].Text)
	assert.False(t, lines[0].Runs[1].Font.Bold())
	assert.Equal(t, "Eczema (12% confidence)", lines[0].Text())
}

func TestLayoutSkipsHiddenAndEmpty(t *testing.T) {
	_, _, err := layoutMarkup(t, `<div style="display: none"><p>hidden</p></div>`, ``, 300, nil)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}
