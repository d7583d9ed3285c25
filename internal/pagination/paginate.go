package pagination

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var (
	// ErrInvalidArtifact is returned when the artifact has a zero or negative dimension
	ErrInvalidArtifact = errors.New("artifact must have positive width and height")
	// ErrInvalidLayout is returned when the margins leave no content area on the page
	ErrInvalidLayout = errors.New("page layout leaves no content area")
)

// tolerance absorbs float error so that an exact multiple of the content
// height does not spill onto an extra, empty page
const tolerance = 1e-6

// Artifact describes the rasterized report in pixels
type Artifact struct {
	Width  int
	Height int
}

// ArtifactFromImage returns the artifact dimensions of img
func ArtifactFromImage(img image.Image) Artifact {
	if img == nil {
		return Artifact{}
	}
	b := img.Bounds()
	return Artifact{Width: b.Dx(), Height: b.Dy()}
}

// Layout represents the physical page geometry in document units
type Layout struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
}

// Standard layouts in millimetres
var (
	LayoutA4     = Layout{PageWidth: 210, PageHeight: 297, Margin: 15}
	LayoutLetter = Layout{PageWidth: 215.9, PageHeight: 279.4, Margin: 15}
)

// ContentWidth returns the usable width inside the margins
func (l Layout) ContentWidth() float64 {
	return l.PageWidth - 2*l.Margin
}

// ContentHeight returns the usable height inside the margins
func (l Layout) ContentHeight() float64 {
	return l.PageHeight - 2*l.Margin
}

// Validate checks that the layout is finite and yields a positive content rectangle
func (l Layout) Validate() error {
	if !finite(l.PageWidth) || !finite(l.PageHeight) || !finite(l.Margin) ||
		l.Margin < 0 || l.ContentWidth() <= 0 || l.ContentHeight() <= 0 {
		return fmt.Errorf("%w: page %.2fx%.2f margin %.2f", ErrInvalidLayout, l.PageWidth, l.PageHeight, l.Margin)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Placement describes how the full scaled artifact is drawn on one page.
// The image is always drawn at full scaled height; the page clip keeps only
// the span [SourceTop, SourceBottom) of the scaled image visible
type Placement struct {
	Index  int
	X      float64
	Y      float64
	Width  float64
	Height float64

	SourceTop    float64
	SourceBottom float64
}

// VisibleHeight returns the height of scaled content shown on the page
func (p Placement) VisibleHeight() float64 {
	return p.SourceBottom - p.SourceTop
}

// Plan is the result of paginating one artifact
type Plan struct {
	Layout       Layout
	Scale        float64
	ScaledHeight float64
	PageCount    int
	Placements   []Placement
}

// Paginate computes how the artifact is sliced into pages.
//
// The artifact is scaled uniformly so its width matches the content width.
// Page i draws the full image at y = margin - i*contentHeight, producing a
// sliding window over the scaled image
func Paginate(a Artifact, l Layout) (Plan, error) {
	if a.Width <= 0 || a.Height <= 0 {
		return Plan{}, fmt.Errorf("%w: got %dx%d", ErrInvalidArtifact, a.Width, a.Height)
	}
	if err := l.Validate(); err != nil {
		return Plan{}, err
	}

	contentWidth := l.ContentWidth()
	contentHeight := l.ContentHeight()
	scale := contentWidth / float64(a.Width)
	scaledHeight := float64(a.Height) * scale

	plan := Plan{
		Layout:       l,
		Scale:        scale,
		ScaledHeight: scaledHeight,
	}

	addPage := func(i int) {
		top := float64(i) * contentHeight
		bottom := math.Min(top+contentHeight, scaledHeight)
		plan.Placements = append(plan.Placements, Placement{
			Index:        i,
			X:            l.Margin,
			Y:            l.Margin - top,
			Width:        contentWidth,
			Height:       scaledHeight,
			SourceTop:    top,
			SourceBottom: bottom,
		})
	}

	addPage(0)
	heightLeft := scaledHeight - contentHeight
	for page := 1; heightLeft > tolerance; page++ {
		addPage(page)
		heightLeft -= contentHeight
	}

	plan.PageCount = len(plan.Placements)
	return plan, nil
}

// PageCount returns the number of pages needed for the artifact
func PageCount(a Artifact, l Layout) (int, error) {
	plan, err := Paginate(a, l)
	if err != nil {
		return 0, err
	}
	return plan.PageCount, nil
}
