package res

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

const defaultSVGSize = 300

// RasterizeSVG renders an SVG document onto an RGBA image. A zero width or
// height is taken from the SVG view box, keeping its aspect ratio
func RasterizeSVG(r io.Reader, width, height int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(r, oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg: %w", err)
	}

	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		vw, vh = defaultSVGSize, defaultSVGSize
	}
	switch {
	case width <= 0 && height <= 0:
		width, height = int(math.Ceil(vw)), int(math.Ceil(vh))
	case width <= 0:
		width = int(math.Ceil(float64(height) * vw / vh))
	case height <= 0:
		height = int(math.Ceil(float64(width) * vh / vw))
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("svg has zero size")
	}

	icon.SetTarget(0, 0, float64(width), float64(height))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1)
	return img, nil
}
