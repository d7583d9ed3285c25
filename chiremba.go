package chiremba

import (
	"github.com/chiremba/chiremba/internal/report"
	"github.com/chiremba/chiremba/pkg/api"
)

type Generator = api.Generator
type Options = api.Options
type Option = api.Option
type Result = api.Result

type ReportData = report.Data
type Alternative = report.Alternative

func New(opts ...Option) (*Generator, error)             { return api.New(opts...) }
func NewWithOptions(options Options) (*Generator, error) { return api.NewWithOptions(options) }
func DefaultOptions() Options                            { return api.DefaultOptions() }

var (
	WithPageSize       = api.WithPageSize
	WithMargin         = api.WithMargin
	WithRasterWidth    = api.WithRasterWidth
	WithScale          = api.WithScale
	WithJPEGQuality    = api.WithJPEGQuality
	WithMaxPixels      = api.WithMaxPixels
	WithRasterizer     = api.WithRasterizer
	WithBrowserPath    = api.WithBrowserPath
	WithEngine         = api.WithEngine
	WithResourcePath   = api.WithResourcePath
	WithTitle          = api.WithTitle
	WithAuthor         = api.WithAuthor
	WithLogger         = api.WithLogger
	WithPageSizeA4     = api.WithPageSizeA4
	WithPageSizeLetter = api.WithPageSizeLetter
	WithPageSizeLegal  = api.WithPageSizeLegal
)

const (
	PageSizeA3Width  = api.PageSizeA3Width
	PageSizeA3Height = api.PageSizeA3Height
	PageSizeA4Width  = api.PageSizeA4Width
	PageSizeA4Height = api.PageSizeA4Height
	PageSizeA5Width  = api.PageSizeA5Width
	PageSizeA5Height = api.PageSizeA5Height

	PageSizeLetterWidth  = api.PageSizeLetterWidth
	PageSizeLetterHeight = api.PageSizeLetterHeight
	PageSizeLegalWidth   = api.PageSizeLegalWidth
	PageSizeLegalHeight  = api.PageSizeLegalHeight
)
