package res

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	// decoders for image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNotImage is returned when a resource does not hold image data
var ErrNotImage = errors.New("resource is not an image")

var mimeByExt = map[string]string{
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".png":   "image/png",
	".gif":   "image/gif",
	".webp":  "image/webp",
	".tif":   "image/tiff",
	".tiff":  "image/tiff",
	".bmp":   "image/bmp",
	".ico":   "image/x-icon",
	".svg":   "image/svg+xml",
	".ttf":   "font/ttf",
	".otf":   "font/otf",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".css":   "text/css",
	".html":  "text/html",
	".htm":   "text/html",
}

func mimeFromPath(path string) string {
	if m, ok := mimeByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return m
	}
	return "application/octet-stream"
}

// classify picks the resource type from the MIME type, falling back to the
// extension for generic types
func classify(mimeType, path string) ResourceType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return ResourceTypeImage
	case strings.HasPrefix(mimeType, "font/"):
		return ResourceTypeFont
	case mimeType == "text/css":
		return ResourceTypeCSS
	}
	if byExt := mimeFromPath(path); byExt != "application/octet-stream" && byExt != mimeType {
		return classify(byExt, "")
	}
	return ResourceTypeOther
}

// LoadImage loads a resource and checks that it is an image
func (l *Loader) LoadImage(ref string) (*Resource, error) {
	r, err := l.Load(ref)
	if err != nil {
		return nil, err
	}
	if r.Type != ResourceTypeImage {
		return nil, fmt.Errorf("%w: %s", ErrNotImage, shorten(ref))
	}
	return r, nil
}

// Image loads and decodes the image at ref
func (l *Loader) Image(ref string) (image.Image, error) {
	r, err := l.LoadImage(ref)
	if err != nil {
		return nil, err
	}
	return DecodeImage(r)
}

// DecodeImage decodes raster and SVG image resources
func DecodeImage(r *Resource) (image.Image, error) {
	if r.MimeType == "image/svg+xml" || strings.HasSuffix(strings.ToLower(r.URL), ".svg") {
		return RasterizeSVG(r.GetReader(), 0, 0)
	}
	img, _, err := image.Decode(r.GetReader())
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", r.MimeType, err)
	}
	return img, nil
}
