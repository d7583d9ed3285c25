package layout

import (
	"github.com/chiremba/chiremba/internal/parser/html"
)

// Box is a positioned element of the layout tree. Coordinates are CSS
// pixels relative to the top-left corner of the document
type Box interface {
	GetX() float64
	GetY() float64
	GetWidth() float64
	GetHeight() float64
	SetPosition(x, y float64)
	GetNode() *html.Node
}

// Walk visits b and its descendants depth-first in paint order
func Walk(b Box, visit func(Box)) {
	visit(b)
	if block, ok := b.(*BlockBox); ok {
		for _, child := range block.Children {
			Walk(child, visit)
		}
	}
}
