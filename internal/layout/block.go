package layout

import (
	"image/color"

	"github.com/chiremba/chiremba/internal/parser/html"
	"github.com/chiremba/chiremba/internal/style"
)

// Edges holds per-side values in top, right, bottom, left order
type Edges struct {
	Top, Right, Bottom, Left float64
}

// Horizontal returns left + right
func (e Edges) Horizontal() float64 { return e.Left + e.Right }

// Vertical returns top + bottom
func (e Edges) Vertical() float64 { return e.Top + e.Bottom }

// BlockBox represents a block-level box in the layout. X, Y, Width and
// Height describe the border box; margins lie outside it
type BlockBox struct {
	Node  *html.Node
	Style style.ComputedStyle

	X      float64
	Y      float64
	Width  float64
	Height float64

	Margin  Edges
	Padding Edges
	Border  Edges

	Background   color.RGBA
	BorderColor  [4]color.RGBA
	BorderRadius float64

	Children []Box

	autoLeft  bool
	autoRight bool
}

// NewBlockBox creates a new block box for an element
func NewBlockBox(node *html.Node, computedStyle style.ComputedStyle) *BlockBox {
	return &BlockBox{
		Node:  node,
		Style: computedStyle,
	}
}

// ContentX returns the left edge of the content box
func (b *BlockBox) ContentX() float64 { return b.X + b.Border.Left + b.Padding.Left }

// ContentY returns the top edge of the content box
func (b *BlockBox) ContentY() float64 { return b.Y + b.Border.Top + b.Padding.Top }

// ContentWidth returns the width of the content box
func (b *BlockBox) ContentWidth() float64 {
	return b.Width - b.Border.Horizontal() - b.Padding.Horizontal()
}

// ContentHeight returns the height of the content box
func (b *BlockBox) ContentHeight() float64 {
	return b.Height - b.Border.Vertical() - b.Padding.Vertical()
}

// parseBoxModel resolves margins, padding, borders and paint properties.
// fontSize resolves em units; containerWidth resolves percentages
func (b *BlockBox) parseBoxModel(fontSize, containerWidth float64) {
	st := b.Style
	length := func(name string) float64 {
		return style.ResolveLength(st.Get(name), fontSize, containerWidth, 0)
	}

	b.autoLeft = st.Get("margin-left") == "auto"
	b.autoRight = st.Get("margin-right") == "auto"
	b.Margin = Edges{length("margin-top"), length("margin-right"), length("margin-bottom"), length("margin-left")}
	b.Padding = Edges{length("padding-top"), length("padding-right"), length("padding-bottom"), length("padding-left")}

	sides := [4]string{"top", "right", "bottom", "left"}
	var widths [4]float64
	currentColor, ok := style.ParseColor(st.Get("color"))
	if !ok {
		currentColor = color.RGBA{A: 255}
	}
	for i, side := range sides {
		c := currentColor
		if v := st.Get("border-" + side + "-color"); v != "" && v != "currentcolor" {
			if parsed, ok := style.ParseColor(v); ok {
				c = parsed
			}
		}
		if c.A == 0 {
			continue
		}
		b.BorderColor[i] = c
		widths[i] = length("border-" + side + "-width")
	}
	b.Border = Edges{widths[0], widths[1], widths[2], widths[3]}

	if bg, ok := style.ParseColor(st.Get("background-color")); ok {
		b.Background = bg
	}
	b.BorderRadius = style.ResolveLength(st.Get("border-radius"), fontSize, containerWidth, 0)
}

func (b *BlockBox) GetX() float64      { return b.X }
func (b *BlockBox) GetY() float64      { return b.Y }
func (b *BlockBox) GetWidth() float64  { return b.Width }
func (b *BlockBox) GetHeight() float64 { return b.Height }

// SetPosition moves the box and all of its descendants
func (b *BlockBox) SetPosition(x, y float64) {
	dx, dy := x-b.X, y-b.Y
	b.X, b.Y = x, y
	for _, child := range b.Children {
		child.SetPosition(child.GetX()+dx, child.GetY()+dy)
	}
}

// AddChild appends a child box
func (b *BlockBox) AddChild(child Box) {
	b.Children = append(b.Children, child)
}

func (b *BlockBox) GetNode() *html.Node {
	return b.Node
}
