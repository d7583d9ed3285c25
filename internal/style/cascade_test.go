package style

import (
	"image/color"
	"testing"

	"github.com/chiremba/chiremba/internal/parser/css"
	"github.com/chiremba/chiremba/internal/parser/html"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func computeFor(t *testing.T, markup, sheet string) (*html.Document, map[*html.Node]ComputedStyle) {
	t.Helper()
	doc, err := html.NewParser().ParseString(markup)
	require.NoError(t, err)
	stylesheet, err := css.NewParser().ParseString(sheet)
	require.NoError(t, err)

	engine := NewStyleEngine()
	engine.AddStylesheet(stylesheet)
	return doc, engine.ComputeStyles(doc)
}

func TestCascadeSpecificityAndOrder(t *testing.T) {
	doc, styles := computeFor(t,
		`<div class="result-box"><p id="x">a</p></div>`,
		`.result-box p { margin: 6px 0; } p { margin: 0 0 8px 0; color: red; } p { color: blue; }`,
	)
	p := doc.Find(html.ByTag("p"))
	require.NotNil(t, p)
	st := styles[p]

	// the more specific rule keeps its margins despite coming first
	assert.Equal(t, "6px", st.Get("margin-top"))
	assert.Equal(t, "0", st.Get("margin-left"))
	// equal specificity: last wins
	assert.Equal(t, "blue", st.Get("color"))
}

func TestCascadeInlineAndImportant(t *testing.T) {
	doc, styles := computeFor(t,
		`<div class="confidence-fill" style="width: 87%; color: green"></div>`,
		`.confidence-fill { width: 10%; color: red !important; }`,
	)
	div := doc.Find(html.ByClass("confidence-fill"))
	st := styles[div]

	assert.Equal(t, "87%", st.Get("width"))
	assert.Equal(t, "red", st.Get("color"))
	assert.Equal(t, SourceInline, st["width"].Source)
}

func TestCascadeInheritsTextProperties(t *testing.T) {
	doc, styles := computeFor(t,
		`<div class="footer"><p>text</p></div>`,
		`.footer { font-size: 11px; color: #666; padding-top: 15px; }`,
	)
	p := doc.Find(html.ByTag("p"))
	st := styles[p]

	assert.Equal(t, "11px", st.Get("font-size"))
	assert.True(t, st["font-size"].Inherited)
	assert.Equal(t, "#666", st.Get("color"))
	assert.False(t, st.Has("padding-top"))
}

func TestBorderShorthandExpansion(t *testing.T) {
	doc, styles := computeFor(t,
		`<div class="header"></div>`,
		`.header { border-bottom: 2px solid #4f46e5; border: 1px solid #e5e7eb; border-bottom: 2px solid #4f46e5; }`,
	)
	st := styles[doc.Find(html.ByClass("header"))]
	assert.Equal(t, "2px", st.Get("border-bottom-width"))
	assert.Equal(t, "#4f46e5", st.Get("border-bottom-color"))
	assert.Equal(t, "1px", st.Get("border-top-width"))
}

func TestUserAgentHidesHead(t *testing.T) {
	doc, styles := computeFor(t, `<html><head><title>t</title></head><body><h1>x</h1></body></html>`, ``)
	assert.Equal(t, "none", styles[doc.Find(html.ByTag("head"))].Get("display"))
	assert.Equal(t, "2em", styles[doc.Find(html.ByTag("h1"))].Get("font-size"))
}

func TestSpecificity(t *testing.T) {
	assert.Equal(t, Specificity{0, 0, 1}, calculateSpecificity("p"))
	assert.Equal(t, Specificity{0, 1, 1}, calculateSpecificity(".header h1"))
	assert.Equal(t, Specificity{1, 2, 1}, calculateSpecificity("div#a.b .c"))
}

func TestParseLengthResolve(t *testing.T) {
	assert.InDelta(t, 12, ResolveLength("12px", 16, 0, -1), 1e-9)
	assert.InDelta(t, 24, ResolveLength("1.5em", 16, 0, -1), 1e-9)
	assert.InDelta(t, 75, ResolveLength("50%", 16, 150, -1), 1e-9)
	assert.InDelta(t, 0, ResolveLength("0", 16, 0, -1), 1e-9)
	assert.InDelta(t, -1, ResolveLength("auto", 16, 0, -1), 1e-9)
}

func TestParseColor(t *testing.T) {
	c, ok := ParseColor("#4f46e5")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{0x4f, 0x46, 0xe5, 255}, c)

	c, ok = ParseColor("#666")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{0x66, 0x66, 0x66, 255}, c)

	c, ok = ParseColor("rgb(1, 2, 3)")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{1, 2, 3, 255}, c)

	c, ok = ParseColor("rgba(0, 0, 0, 0.1)")
	require.True(t, ok)
	assert.Equal(t, uint8(26), c.A)

	_, ok = ParseColor("not-a-color")
	assert.False(t, ok)
}

func TestSelectorCombinators(t *testing.T) {
	doc, styles := computeFor(t,
		`<div class="box"><p class="direct">a</p><div><p class="nested">b</p></div></div>`,
		`.box > p { color: red; } .box p { margin-top: 3px; } p:hover { color: blue; } p::before { color: green; }`,
	)
	direct := styles[doc.Find(html.ByClass("direct"))]
	nested := styles[doc.Find(html.ByClass("nested"))]

	assert.Equal(t, "red", direct.Get("color"))
	assert.Equal(t, "3px", direct.Get("margin-top"))
	// only the body color reaches the nested paragraph
	assert.True(t, nested["color"].Inherited)
	assert.Equal(t, "3px", nested.Get("margin-top"))

	_, ok := compileSelector("a[href]")
	assert.False(t, ok)
	_, ok = compileSelector("> p")
	assert.False(t, ok)
}
