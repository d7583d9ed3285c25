package pagination

import (
	"image"

	"go.uber.org/zap"
)

// Options represents options for the pagination engine
type Options struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
}

// Engine paginates rendered artifacts with a fixed page layout
type Engine struct {
	options Options
	logger  *zap.Logger
}

// NewEngine creates a new pagination engine for A4 pages in millimetres
func NewEngine() *Engine {
	return &Engine{
		options: Options{
			PageWidth:  LayoutA4.PageWidth,
			PageHeight: LayoutA4.PageHeight,
			Margin:     LayoutA4.Margin,
		},
		logger: zap.NewNop(),
	}
}

// SetOptions sets the options for the pagination engine
func (e *Engine) SetOptions(options Options) {
	e.options = options
}

// SetLogger sets the logger used for debug output
func (e *Engine) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e.logger = logger
}

// Layout returns the page layout derived from the options
func (e *Engine) Layout() Layout {
	return Layout{
		PageWidth:  e.options.PageWidth,
		PageHeight: e.options.PageHeight,
		Margin:     e.options.Margin,
	}
}

// Paginate computes the page plan for a rendered image
func (e *Engine) Paginate(img image.Image) (Plan, error) {
	artifact := ArtifactFromImage(img)
	plan, err := Paginate(artifact, e.Layout())
	if err != nil {
		return Plan{}, err
	}
	e.logger.Debug("paginated artifact",
		zap.Int("width_px", artifact.Width),
		zap.Int("height_px", artifact.Height),
		zap.Float64("scale", plan.Scale),
		zap.Float64("scaled_height", plan.ScaledHeight),
		zap.Int("pages", plan.PageCount),
	)
	return plan, nil
}
