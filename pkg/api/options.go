package api

import (
	"github.com/chiremba/chiremba/internal/raster"
	"go.uber.org/zap"
)

// Options represents configuration options for the report generator
type Options struct {
	// Page dimensions in millimetres
	PageWidth  float64
	PageHeight float64
	// Margin applies to all four sides, in millimetres
	Margin float64

	// Rendering options
	// RasterWidth is the CSS viewport width the report is laid out at
	RasterWidth int
	// Scale is the device pixel ratio of the rasterized artifact
	Scale float64
	// JPEGQuality is used when embedding the artifact into the PDF
	JPEGQuality int
	// MaxPixels bounds the native artifact; see raster.Options.MaxPixels
	MaxPixels int

	// Rasterizer selects the implementation used for downloads
	Rasterizer raster.Kind
	// BrowserPath points at the Chrome binary for browser-backed rasterizers
	BrowserPath string
	// Engine replaces the rasterizer selected by Rasterizer when set
	Engine raster.Rasterizer

	// Resource paths searched by ConvertHTML for local images
	ResourcePaths []string

	// Document metadata
	Title   string
	Author  string
	Creator string

	Logger *zap.Logger
}

// Option is a function that modifies Options
type Option func(*Options)

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		// A4 with a 15 mm margin
		PageWidth:  PageSizeA4Width,
		PageHeight: PageSizeA4Height,
		Margin:     15,

		RasterWidth: 750,
		Scale:       2,
		JPEGQuality: 100,

		Rasterizer: raster.KindNative,

		ResourcePaths: []string{},

		Creator: "Chiremba",
	}
}

// WithPageSize sets the page size
func WithPageSize(width, height float64) Option {
	return func(o *Options) {
		o.PageWidth = width
		o.PageHeight = height
	}
}

// WithMargin sets the page margin
func WithMargin(margin float64) Option {
	return func(o *Options) {
		o.Margin = margin
	}
}

// WithMaxPixels bounds the artifact size of the native rasterizer
func WithMaxPixels(pixels int) Option {
	return func(o *Options) {
		o.MaxPixels = pixels
	}
}

// WithRasterWidth sets the layout viewport width
func WithRasterWidth(width int) Option {
	return func(o *Options) {
		o.RasterWidth = width
	}
}

// WithScale sets the device pixel ratio
func WithScale(scale float64) Option {
	return func(o *Options) {
		o.Scale = scale
	}
}

// WithJPEGQuality sets the quality of the embedded artifact
func WithJPEGQuality(quality int) Option {
	return func(o *Options) {
		o.JPEGQuality = quality
	}
}

// WithRasterizer selects the rasterizer implementation
func WithRasterizer(kind raster.Kind) Option {
	return func(o *Options) {
		o.Rasterizer = kind
	}
}

// WithBrowserPath sets the browser binary for browser-backed rasterizers
func WithBrowserPath(path string) Option {
	return func(o *Options) {
		o.BrowserPath = path
	}
}

// WithEngine uses r instead of a built-in rasterizer
func WithEngine(r raster.Rasterizer) Option {
	return func(o *Options) {
		o.Engine = r
	}
}

// WithResourcePath adds a path to search for resources
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithTitle sets the document title
func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

// WithAuthor sets the document author
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// Standard page sizes in millimetres
const (
	PageSizeA3Width  = 297.0
	PageSizeA3Height = 420.0
	PageSizeA4Width  = 210.0
	PageSizeA4Height = 297.0
	PageSizeA5Width  = 148.0
	PageSizeA5Height = 210.0

	// US Letter and Legal
	PageSizeLetterWidth  = 215.9
	PageSizeLetterHeight = 279.4
	PageSizeLegalWidth   = 215.9
	PageSizeLegalHeight  = 355.6
)

// WithPageSizeA4 sets the page size to A4
func WithPageSizeA4() Option {
	return WithPageSize(PageSizeA4Width, PageSizeA4Height)
}

// WithPageSizeLetter sets the page size to US Letter
func WithPageSizeLetter() Option {
	return WithPageSize(PageSizeLetterWidth, PageSizeLetterHeight)
}

// WithPageSizeLegal sets the page size to US Legal
func WithPageSizeLegal() Option {
	return WithPageSize(PageSizeLegalWidth, PageSizeLegalHeight)
}

// PageSize returns the dimensions of a named page size
func PageSize(name string) (width, height float64, ok bool) {
	switch name {
	case "A3", "a3":
		return PageSizeA3Width, PageSizeA3Height, true
	case "A4", "a4", "":
		return PageSizeA4Width, PageSizeA4Height, true
	case "A5", "a5":
		return PageSizeA5Width, PageSizeA5Height, true
	case "Letter", "letter", "LETTER":
		return PageSizeLetterWidth, PageSizeLetterHeight, true
	case "Legal", "legal", "LEGAL":
		return PageSizeLegalWidth, PageSizeLegalHeight, true
	}
	return 0, 0, false
}
