// Package raster turns a report document tree into one tall bitmap
package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/chiremba/chiremba/internal/layout"
	"github.com/chiremba/chiremba/internal/parser/html"
	"go.uber.org/zap"
)

// ErrBrowserUnavailable is returned when no headless browser can be found or started
var ErrBrowserUnavailable = errors.New("headless browser unavailable")

// ErrDocumentTooLarge is returned when the artifact would exceed Options.MaxPixels
var ErrDocumentTooLarge = errors.New("document too large to rasterize")

// DefaultMaxPixels bounds the in-memory RGBA artifact to 2 GiB, about 160 A4
// pages at the default width and scale
const DefaultMaxPixels = 1 << 29

// Rasterizer renders a document into a single image whose width is
// Options.Width*Options.Scale pixels and whose height fits the whole document
type Rasterizer interface {
	Rasterize(ctx context.Context, doc *html.Document) (image.Image, error)
}

// Func adapts a plain function to Rasterizer
type Func func(ctx context.Context, doc *html.Document) (image.Image, error)

func (f Func) Rasterize(ctx context.Context, doc *html.Document) (image.Image, error) {
	return f(ctx, doc)
}

// Kind names a rasterizer implementation
type Kind string

const (
	KindNative   Kind = "native"
	KindChromium Kind = "chromium"
	KindRod      Kind = "rod"
)

// Options holds settings shared by every rasterizer
type Options struct {
	// Width is the CSS viewport width
	Width int
	// Scale is the device pixel ratio
	Scale float64
	// BrowserPath overrides browser discovery for the browser-backed kinds
	BrowserPath string
	// Images resolves <img> sources for the native rasterizer. Defaults to a
	// loader that only accepts data URLs.
	Images layout.ImageSource
	// Logger receives debug output; nil disables logging
	Logger *zap.Logger
	// MaxPixels bounds the native artifact size. Zero selects
	// DefaultMaxPixels and a negative value removes the bound.
	MaxPixels int
}

// DefaultOptions returns a 750px viewport rendered at twice its size
func DefaultOptions() Options {
	return Options{Width: 750, Scale: 2}
}

func (o Options) normalized() Options {
	if o.Width <= 0 {
		o.Width = 750
	}
	if o.Scale <= 0 {
		o.Scale = 2
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.MaxPixels == 0 {
		o.MaxPixels = DefaultMaxPixels
	}
	return o
}

// New builds the rasterizer of the given kind. Browser-backed rasterizers
// start their browser lazily and should be closed by the caller
func New(kind Kind, opts Options) (Rasterizer, error) {
	switch Kind(strings.ToLower(string(kind))) {
	case KindNative, "":
		return NewNative(opts)
	case KindChromium:
		return NewChromium(opts), nil
	case KindRod:
		return NewRod(opts), nil
	}
	return nil, fmt.Errorf("unknown rasterizer %q", kind)
}

// Close releases resources held by r when it has any
func Close(r Rasterizer) error {
	if c, ok := r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// FindBrowser returns the Chrome or Chromium executable to use. CHROME_BIN
// wins over the binaries found on PATH
func FindBrowser(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin, nil
	}
	for _, candidate := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "chrome"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", ErrBrowserUnavailable
}

// documentHTML serializes doc for browser-backed rasterizers
func documentHTML(doc *html.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("nil document")
	}
	return doc.Render()
}

// blockedURLPatterns keeps browser rendering offline. Reports embed their
// image as a data URL so nothing else needs fetching
var blockedURLPatterns = []string{"http://*:*/*", "https://*:*/*"}

// waitImagesJS resolves once every <img> has loaded or failed
const waitImagesJS = `Promise.all(Array.from(document.images).map(img => img.complete ? true : new Promise(resolve => { img.onload = img.onerror = () => resolve(true); }))).then(() => true)`
