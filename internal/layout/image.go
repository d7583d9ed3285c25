package layout

import (
	"fmt"
	"image"

	"github.com/chiremba/chiremba/internal/parser/html"
	"github.com/chiremba/chiremba/internal/style"
)

// ImageSource resolves the src attribute of an <img> element to a decoded image
type ImageSource interface {
	Image(src string) (image.Image, error)
}

// ImageSourceFunc adapts a function to ImageSource
type ImageSourceFunc func(src string) (image.Image, error)

func (f ImageSourceFunc) Image(src string) (image.Image, error) { return f(src) }

// ImageBox represents an <img> element laid out as a replaced element
// on its own line
type ImageBox struct {
	Node  *html.Node
	Style style.ComputedStyle
	Image image.Image

	X      float64
	Y      float64
	Width  float64
	Height float64

	BorderRadius float64
}

// newImageBox loads the image and sizes it against the container content width
func (e *Engine) newImageBox(node *html.Node, containerWidth, fontSize float64) (*ImageBox, error) {
	src := node.Attribute("src")
	if src == "" {
		return nil, fmt.Errorf("image element has no src")
	}
	if e.images == nil {
		return nil, fmt.Errorf("no image source configured for %q", truncate(src, 32))
	}
	img, err := e.images.Image(src)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("image has zero size")
	}

	st := e.styles[node]
	b := &ImageBox{Node: node, Style: st, Image: img}
	b.size(float64(bounds.Dx()), float64(bounds.Dy()), containerWidth, fontSize)
	return b, nil
}

// size applies width/height and max-width/max-height preserving the aspect ratio
func (b *ImageBox) size(intrinsicW, intrinsicH, containerWidth, fontSize float64) {
	w, h := intrinsicW, intrinsicH
	length := func(name string) float64 {
		return style.ResolveLength(b.Style.Get(name), fontSize, containerWidth, -1)
	}

	if cw := length("width"); cw > 0 {
		h = h * cw / w
		w = cw
		if ch := length("height"); ch > 0 {
			h = ch
		}
	} else if ch := length("height"); ch > 0 {
		w = w * ch / h
		h = ch
	}
	if maxW := length("max-width"); maxW > 0 && w > maxW {
		h = h * maxW / w
		w = maxW
	}
	if maxH := length("max-height"); maxH > 0 && h > maxH {
		w = w * maxH / h
		h = maxH
	}

	b.Width, b.Height = w, h
	b.BorderRadius = max(length("border-radius"), 0)
}

func (b *ImageBox) GetX() float64      { return b.X }
func (b *ImageBox) GetY() float64      { return b.Y }
func (b *ImageBox) GetWidth() float64  { return b.Width }
func (b *ImageBox) GetHeight() float64 { return b.Height }

func (b *ImageBox) SetPosition(x, y float64) { b.X, b.Y = x, y }

func (b *ImageBox) GetNode() *html.Node { return b.Node }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
