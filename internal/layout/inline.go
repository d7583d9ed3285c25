package layout

import (
	"image/color"
	"strconv"
	"strings"
	"unicode"

	"github.com/chiremba/chiremba/internal/parser/html"
	"github.com/chiremba/chiremba/internal/style"
	"github.com/chiremba/chiremba/internal/text"
)

// TextRun is a span of text drawn with one font and color
type TextRun struct {
	Text  string
	X     float64
	Width float64
	Font  text.Font
	Color color.RGBA
}

// LineBox is one laid-out line of inline content
type LineBox struct {
	Node     *html.Node
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Baseline float64
	Runs     []TextRun
}

func (l *LineBox) GetX() float64      { return l.X }
func (l *LineBox) GetY() float64      { return l.Y }
func (l *LineBox) GetWidth() float64  { return l.Width }
func (l *LineBox) GetHeight() float64 { return l.Height }

// SetPosition moves the line and its runs
func (l *LineBox) SetPosition(x, y float64) {
	dx, dy := x-l.X, y-l.Y
	l.X, l.Y = x, y
	l.Baseline += dy
	for i := range l.Runs {
		l.Runs[i].X += dx
	}
}

func (l *LineBox) GetNode() *html.Node { return l.Node }

// Text returns the line's text with runs joined as laid out
func (l *LineBox) Text() string {
	var sb strings.Builder
	for _, r := range l.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// textStyle is the resolved set of inherited text properties
type textStyle struct {
	font  text.Font
	color color.RGBA
	align string
}

func defaultTextStyle(fontSize float64) textStyle {
	return textStyle{
		font:  text.Font{Family: "sans-serif", Size: fontSize, LineHeight: 1.2, Weight: 400},
		color: color.RGBA{A: 255},
		align: "left",
	}
}

// resolveTextStyle computes text properties for an element from its style and its parent's
func resolveTextStyle(st style.ComputedStyle, parent textStyle) textStyle {
	ts := parent

	if prop, ok := st["font-size"]; ok && !prop.Inherited {
		ts.font.Size = resolveFontSize(prop.Value, parent.font.Size)
	}
	if prop, ok := st["line-height"]; ok && !prop.Inherited {
		ts.font.LineHeight = resolveLineHeight(prop.Value, ts.font.Size, parent.font.LineHeight)
	}
	if prop, ok := st["font-weight"]; ok && !prop.Inherited {
		ts.font.Weight = resolveWeight(prop.Value, parent.font.Weight)
	}
	if prop, ok := st["font-style"]; ok && !prop.Inherited {
		ts.font.Style = prop.Value
	}
	if prop, ok := st["font-family"]; ok && !prop.Inherited {
		ts.font.Family = prop.Value
	}
	if prop, ok := st["color"]; ok && !prop.Inherited {
		if c, ok := style.ParseColor(prop.Value); ok {
			ts.color = c
		}
	}
	if prop, ok := st["text-align"]; ok && !prop.Inherited {
		ts.align = prop.Value
	}
	return ts
}

func resolveFontSize(value string, parentSize float64) float64 {
	switch value {
	case "small":
		return 13
	case "medium":
		return 16
	case "large":
		return 18
	}
	if size := style.ResolveLength(value, parentSize, parentSize, 0); size > 0 {
		return size
	}
	return parentSize
}

// resolveLineHeight returns the line height as a multiple of the font size
func resolveLineHeight(value string, fontSize, parent float64) float64 {
	if value == "normal" {
		return 1.2
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
		return f
	}
	if px := style.ResolveLength(value, fontSize, fontSize, 0); px > 0 && fontSize > 0 {
		return px / fontSize
	}
	return parent
}

func resolveWeight(value string, parent int) int {
	switch value {
	case "normal":
		return 400
	case "bold":
		return 700
	case "bolder":
		if parent >= 600 {
			return 900
		}
		return 700
	case "lighter":
		return 300
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return parent
}

// inlineRun is a fragment of inline content sharing one text style
type inlineRun struct {
	text      string
	style     textStyle
	lineBreak bool
}

// collectInlineRuns flattens inline content into styled runs
func (e *Engine) collectInlineRuns(n *html.Node, ts textStyle, out *[]inlineRun) {
	switch {
	case n.Type == nodeText:
		*out = append(*out, inlineRun{text: n.Data, style: ts})
	case n.Type == nodeElement:
		st := e.styles[n]
		if st.Get("display") == "none" {
			return
		}
		if n.Data == "br" {
			*out = append(*out, inlineRun{lineBreak: true, style: ts})
			return
		}
		child := resolveTextStyle(st, ts)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			e.collectInlineRuns(c, child, out)
		}
	}
}

// token is a word with the whitespace flag that precedes it
type token struct {
	text        string
	style       textStyle
	spaceBefore bool
	lineBreak   bool
}

func tokenize(runs []inlineRun) []token {
	var tokens []token
	pendingSpace := false
	for _, run := range runs {
		if run.lineBreak {
			tokens = append(tokens, token{lineBreak: true, style: run.style})
			pendingSpace = false
			continue
		}
		var word strings.Builder
		flush := func() {
			if word.Len() == 0 {
				return
			}
			tokens = append(tokens, token{text: word.String(), style: run.style, spaceBefore: pendingSpace})
			word.Reset()
			pendingSpace = false
		}
		for _, r := range run.text {
			if unicode.IsSpace(r) {
				flush()
				pendingSpace = true
				continue
			}
			word.WriteRune(r)
		}
		flush()
	}
	return tokens
}

// layoutInline lays out inline content of container into line boxes starting at y.
// It returns the total height consumed
func (e *Engine) layoutInline(container *BlockBox, nodes []*html.Node, ts textStyle, y float64) float64 {
	var runs []inlineRun
	for _, n := range nodes {
		e.collectInlineRuns(n, ts, &runs)
	}
	tokens := tokenize(runs)
	if len(tokens) == 0 {
		return 0
	}

	x0 := container.ContentX()
	maxWidth := container.ContentWidth()
	owner := container.Node

	var lines [][]token
	var current []token
	width := 0.0
	newLine := func() {
		lines = append(lines, current)
		current = nil
		width = 0
	}

	for _, tok := range tokens {
		if tok.lineBreak {
			if len(current) == 0 {
				current = append(current, token{style: tok.style})
			}
			newLine()
			continue
		}
		w, _ := e.shaper.MeasureText(tok.text, &tok.style.font)
		sp := 0.0
		if tok.spaceBefore && len(current) > 0 {
			sp, _ = e.shaper.MeasureText(" ", &tok.style.font)
		}
		if len(current) > 0 && width+sp+w > maxWidth {
			newLine()
			sp = 0
		}
		if len(current) == 0 && w > maxWidth {
			pieces := e.shaper.SplitTextToLines(tok.text, &tok.style.font, maxWidth)
			for i, piece := range pieces {
				t := tok
				t.text = piece
				t.spaceBefore = false
				current = append(current, t)
				if i < len(pieces)-1 {
					newLine()
				}
			}
			width, _ = e.shaper.MeasureText(pieces[len(pieces)-1], &tok.style.font)
			continue
		}
		if len(current) == 0 {
			tok.spaceBefore = false
		}
		current = append(current, tok)
		width += sp + w
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}

	cursor := y
	for _, line := range lines {
		lb := e.buildLine(owner, line, x0, cursor, maxWidth, ts.align)
		container.AddChild(lb)
		cursor += lb.Height
	}
	return cursor - y
}

// buildLine positions the tokens of one line and merges them into runs
func (e *Engine) buildLine(owner *html.Node, tokens []token, x0, y, maxWidth float64, align string) *LineBox {
	lb := &LineBox{Node: owner, Y: y}

	height, ascent, descent := 0.0, 0.0, 0.0
	for _, tok := range tokens {
		f := tok.style.font
		height = max(height, e.shaper.LineBox(&f))
		a, d := e.shaper.Metrics(&f)
		ascent = max(ascent, a)
		descent = max(descent, d)
	}

	x := 0.0
	for _, tok := range tokens {
		if tok.text == "" {
			continue
		}
		f := tok.style.font
		txt := tok.text
		w, _ := e.shaper.MeasureText(txt, &f)
		if tok.spaceBefore {
			sp, _ := e.shaper.MeasureText(" ", &f)
			txt = " " + txt
			w = sp + w
		}
		if n := len(lb.Runs); n > 0 && lb.Runs[n-1].Font == f && lb.Runs[n-1].Color == tok.style.color {
			lb.Runs[n-1].Text += txt
			lb.Runs[n-1].Width += w
		} else {
			lb.Runs = append(lb.Runs, TextRun{Text: txt, X: x, Width: w, Font: f, Color: tok.style.color})
		}
		x += w
	}

	offset := 0.0
	switch align {
	case "center":
		offset = (maxWidth - x) / 2
	case "right", "end":
		offset = maxWidth - x
	}
	offset = max(offset, 0)

	lb.X = x0 + offset
	lb.Width = x
	lb.Height = height
	lb.Baseline = y + (height-(ascent+descent))/2 + ascent
	for i := range lb.Runs {
		lb.Runs[i].X += lb.X
	}
	return lb
}
