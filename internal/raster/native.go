package raster

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/chiremba/chiremba/internal/layout"
	"github.com/chiremba/chiremba/internal/parser/css"
	"github.com/chiremba/chiremba/internal/parser/html"
	"github.com/chiremba/chiremba/internal/res"
	"github.com/chiremba/chiremba/internal/style"
	"github.com/chiremba/chiremba/internal/text"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Native lays out and paints the document in-process with the bundled fonts.
// It is safe for concurrent use
type Native struct {
	opts   Options
	shaper *text.TextShaper
}

// NewNative creates a native rasterizer
func NewNative(opts Options) (*Native, error) {
	shaper, err := text.NewTextShaper()
	if err != nil {
		return nil, err
	}
	return &Native{opts: opts.normalized(), shaper: shaper}, nil
}

// Rasterize implements Rasterizer
func (n *Native) Rasterize(ctx context.Context, doc *html.Document) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}

	se := style.NewStyleEngine()
	for _, sheet := range documentStylesheets(doc) {
		parsed, err := css.NewParser().ParseString(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stylesheet: %w", err)
		}
		se.AddStylesheet(parsed)
	}

	images := n.opts.Images
	if images == nil {
		images = res.NewDataLoader()
	}
	engine := layout.NewEngine(n.shaper, images)
	engine.SetOptions(layout.Options{Width: float64(n.opts.Width)})
	engine.SetStyles(se.ComputeStyles(doc))
	engine.SetLogger(n.opts.Logger)

	root, err := engine.Layout(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to lay out document: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scale := n.opts.Scale
	w := int(math.Ceil(root.Width * scale))
	h := int(math.Ceil(root.Height * scale))
	if limit := n.opts.MaxPixels; limit > 0 && int64(w)*int64(h) > int64(limit) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrDocumentTooLarge, w, h, limit)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	p := &painter{dst: img, scale: scale, shaper: n.shaper}
	if err := p.paint(ctx, root); err != nil {
		return nil, err
	}

	n.opts.Logger.Debug("rasterized document",
		zap.String("rasterizer", string(KindNative)),
		zap.Int("width_px", w),
		zap.Int("height_px", h),
	)
	return img, nil
}

// documentStylesheets returns the text of every <style> element in document order
func documentStylesheets(doc *html.Document) []string {
	var sheets []string
	for _, n := range doc.Root.FindAll(html.ByTag("style")) {
		if s := n.TextContent(); s != "" {
			sheets = append(sheets, s)
		}
	}
	return sheets
}

type painter struct {
	dst    *image.RGBA
	scale  float64
	shaper *text.TextShaper
}

func (p *painter) paint(ctx context.Context, root layout.Box) error {
	var err error
	layout.Walk(root, func(b layout.Box) {
		if err != nil {
			return
		}
		if err = ctx.Err(); err != nil {
			return
		}
		switch box := b.(type) {
		case *layout.BlockBox:
			p.block(box)
		case *layout.LineBox:
			err = p.line(box)
		case *layout.ImageBox:
			p.image(box)
		}
	})
	return err
}

func (p *painter) rect(x, y, w, h float64) image.Rectangle {
	return image.Rect(
		int(math.Round(x*p.scale)),
		int(math.Round(y*p.scale)),
		int(math.Round((x+w)*p.scale)),
		int(math.Round((y+h)*p.scale)),
	)
}

func (p *painter) fill(r image.Rectangle, c color.RGBA, radius float64) {
	if c.A == 0 || r.Empty() {
		return
	}
	src := image.NewUniform(c)
	if radius <= 0 {
		draw.Draw(p.dst, r, src, image.Point{}, draw.Over)
		return
	}
	mask := &roundedMask{r: r, radius: radius * p.scale}
	draw.DrawMask(p.dst, r, src, image.Point{}, mask, r.Min, draw.Over)
}

func (p *painter) block(b *layout.BlockBox) {
	p.fill(p.rect(b.X, b.Y, b.Width, b.Height), b.Background, b.BorderRadius)

	if b.Border.Top > 0 {
		p.fill(p.rect(b.X, b.Y, b.Width, b.Border.Top), b.BorderColor[0], 0)
	}
	if b.Border.Right > 0 {
		p.fill(p.rect(b.X+b.Width-b.Border.Right, b.Y, b.Border.Right, b.Height), b.BorderColor[1], 0)
	}
	if b.Border.Bottom > 0 {
		p.fill(p.rect(b.X, b.Y+b.Height-b.Border.Bottom, b.Width, b.Border.Bottom), b.BorderColor[2], 0)
	}
	if b.Border.Left > 0 {
		p.fill(p.rect(b.X, b.Y, b.Border.Left, b.Height), b.BorderColor[3], 0)
	}
}

func (p *painter) line(l *layout.LineBox) error {
	for _, run := range l.Runs {
		f := run.Font
		face, err := p.shaper.Face(&f, p.scale)
		if err != nil {
			return err
		}
		d := font.Drawer{
			Dst:  p.dst,
			Src:  image.NewUniform(run.Color),
			Face: face,
			Dot:  fixed.Point26_6{X: fixed.Int26_6(run.X * p.scale * 64), Y: fixed.Int26_6(l.Baseline * p.scale * 64)},
		}
		d.DrawString(run.Text)
	}
	return nil
}

func (p *painter) image(b *layout.ImageBox) {
	r := p.rect(b.X, b.Y, b.Width, b.Height)
	if r.Empty() || b.Image == nil {
		return
	}
	if b.BorderRadius <= 0 {
		draw.CatmullRom.Scale(p.dst, r, b.Image, b.Image.Bounds(), draw.Over, nil)
		return
	}
	scaled := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), b.Image, b.Image.Bounds(), draw.Src, nil)
	mask := &roundedMask{r: r, radius: b.BorderRadius * p.scale}
	draw.DrawMask(p.dst, r, scaled, image.Point{}, mask, r.Min, draw.Over)
}

// roundedMask is an alpha mask for a rectangle with rounded corners
type roundedMask struct {
	r      image.Rectangle
	radius float64
}

func (m *roundedMask) ColorModel() color.Model { return color.AlphaModel }
func (m *roundedMask) Bounds() image.Rectangle { return m.r }

func (m *roundedMask) At(x, y int) color.Color {
	rad := math.Min(m.radius, math.Min(float64(m.r.Dx()), float64(m.r.Dy()))/2)
	px, py := float64(x)+0.5, float64(y)+0.5
	minX, minY := float64(m.r.Min.X), float64(m.r.Min.Y)
	maxX, maxY := float64(m.r.Max.X), float64(m.r.Max.Y)

	var cx, cy float64
	switch {
	case px < minX+rad && py < minY+rad:
		cx, cy = minX+rad, minY+rad
	case px > maxX-rad && py < minY+rad:
		cx, cy = maxX-rad, minY+rad
	case px < minX+rad && py > maxY-rad:
		cx, cy = minX+rad, maxY-rad
	case px > maxX-rad && py > maxY-rad:
		cx, cy = maxX-rad, maxY-rad
	default:
		return color.Alpha{A: 255}
	}
	// one pixel of antialiasing along the arc
	d := math.Hypot(px-cx, py-cy) - rad
	switch {
	case d <= -0.5:
		return color.Alpha{A: 255}
	case d >= 0.5:
		return color.Alpha{}
	}
	return color.Alpha{A: uint8((0.5 - d) * 255)}
}
