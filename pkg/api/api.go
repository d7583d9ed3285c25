package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"

	"github.com/chiremba/chiremba/internal/pagination"
	"github.com/chiremba/chiremba/internal/parser/html"
	"github.com/chiremba/chiremba/internal/raster"
	"github.com/chiremba/chiremba/internal/render/pdf"
	"github.com/chiremba/chiremba/internal/report"
	"github.com/chiremba/chiremba/internal/res"
	"go.uber.org/zap"
)

// Result describes a generated report
type Result struct {
	ReportID  string
	Filename  string
	PageCount int
}

// Generator turns report data into a paginated PDF or a printable HTML page
type Generator struct {
	options    Options
	rasterizer raster.Rasterizer
	owned      bool
	paginator  *pagination.Engine
	renderer   *pdf.Renderer
	logger     *zap.Logger
}

// New creates a report generator with the default options modified by opts
func New(opts ...Option) (*Generator, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return NewWithOptions(options)
}

// NewWithOptions creates a report generator with the specified options
func NewWithOptions(options Options) (*Generator, error) {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	layout := pagination.Layout{
		PageWidth:  options.PageWidth,
		PageHeight: options.PageHeight,
		Margin:     options.Margin,
	}
	if err := layout.Validate(); err != nil {
		return nil, report.NewError(report.KindInvalidInput, "invalid page layout", err)
	}

	g := &Generator{
		options:    options,
		rasterizer: options.Engine,
		paginator:  pagination.NewEngine(),
		renderer:   pdf.NewRenderer(),
		logger:     logger,
	}
	if g.rasterizer == nil {
		r, err := raster.New(options.Rasterizer, g.rasterOptions())
		if err != nil {
			return nil, report.NewError(report.KindInvalidInput, "invalid rasterizer", err)
		}
		g.rasterizer = r
		g.owned = true
	}

	g.paginator.SetOptions(pagination.Options{
		PageWidth:  options.PageWidth,
		PageHeight: options.PageHeight,
		Margin:     options.Margin,
	})
	g.paginator.SetLogger(logger)
	g.renderer.JPEGQuality = options.JPEGQuality
	g.renderer.SetLogger(logger)
	return g, nil
}

func (g *Generator) rasterOptions() raster.Options {
	return raster.Options{
		Width:       g.options.RasterWidth,
		Scale:       g.options.Scale,
		BrowserPath: g.options.BrowserPath,
		Logger:      g.logger,
		MaxPixels:   g.options.MaxPixels,
	}
}

// Close releases the rasterizer when the generator created it
func (g *Generator) Close() error {
	if !g.owned {
		return nil
	}
	return raster.Close(g.rasterizer)
}

// Download renders data as a paginated PDF and writes it to w. Nothing is
// written to w when generation fails
func (g *Generator) Download(ctx context.Context, data report.Data, w io.Writer) (Result, error) {
	doc, img, plan, err := g.prepare(ctx, data)
	if err != nil {
		return Result{}, err
	}
	if err := g.renderer.Render(w, img, plan, g.renderOptions(doc, data)); err != nil {
		return Result{}, report.NewError(report.KindInternal, "failed to render pdf", err)
	}
	return g.done(doc, plan), nil
}

// DownloadToFile renders data into dir under the report's filename and
// returns the written path. No file is created when generation fails
func (g *Generator) DownloadToFile(ctx context.Context, data report.Data, dir string) (string, error) {
	doc, img, plan, err := g.prepare(ctx, data)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, doc.Filename)
	if err := g.renderer.RenderFile(path, img, plan, g.renderOptions(doc, data)); err != nil {
		return "", report.NewError(report.KindInternal, "failed to write pdf", err)
	}
	g.done(doc, plan)
	return path, nil
}

// Print writes data as a standalone HTML page that opens the browser's
// print dialog once loaded
func (g *Generator) Print(ctx context.Context, data report.Data, w io.Writer) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	doc, err := report.BuildDocument(data, report.ModePrint)
	if err != nil {
		return Result{}, err
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return Result{}, report.NewError(report.KindInternal, "failed to render report", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return Result{}, report.NewError(report.KindInternal, "failed to write report", err)
	}

	g.logger.Info("generated printable report", zap.String("report_id", doc.ID))
	return Result{ReportID: doc.ID, Filename: doc.Filename}, nil
}

// ConvertHTML paginates an arbitrary HTML document into a PDF. Images may be
// data URLs, paths relative to baseURL or the resource paths, or remote URLs.
// It always uses the native rasterizer. It returns the page count
func (g *Generator) ConvertHTML(ctx context.Context, r io.Reader, baseURL string, w io.Writer) (int, error) {
	doc, err := html.NewParser().Parse(r)
	if err != nil {
		return 0, report.NewError(report.KindInvalidInput, "failed to parse html", err)
	}

	loader := res.NewLoader(baseURL)
	for _, path := range g.options.ResourcePaths {
		loader.AddSearchPath(path)
	}
	opts := g.rasterOptions()
	opts.Images = loader
	native, err := raster.NewNative(opts)
	if err != nil {
		return 0, report.NewError(report.KindInternal, "failed to start rasterizer", err)
	}

	img, err := native.Rasterize(ctx, doc)
	if err != nil {
		return 0, rasterError(err)
	}
	plan, err := g.paginate(img)
	if err != nil {
		return 0, err
	}
	if err := g.renderer.Render(w, img, plan, pdf.RenderOptions{
		Title:   g.options.Title,
		Author:  g.options.Author,
		Creator: g.options.Creator,
	}); err != nil {
		return 0, report.NewError(report.KindInternal, "failed to render pdf", err)
	}
	return plan.PageCount, nil
}

// prepare runs every step up to pdf assembly
func (g *Generator) prepare(ctx context.Context, data report.Data) (*report.Document, image.Image, pagination.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, pagination.Plan{}, err
	}
	doc, err := report.BuildDocument(data, report.ModeDownload)
	if err != nil {
		return nil, nil, pagination.Plan{}, err
	}

	img, err := g.rasterizer.Rasterize(ctx, doc.Tree)
	if err != nil {
		g.logger.Warn("rasterization failed", zap.String("report_id", doc.ID), zap.Error(err))
		return nil, nil, pagination.Plan{}, rasterError(err)
	}

	plan, err := g.paginate(img)
	if err != nil {
		return nil, nil, pagination.Plan{}, err
	}
	return doc, img, plan, nil
}

func (g *Generator) paginate(img image.Image) (pagination.Plan, error) {
	plan, err := g.paginator.Paginate(img)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidArtifact) || errors.Is(err, pagination.ErrInvalidLayout) {
			return pagination.Plan{}, report.NewError(report.KindInvalidInput, "cannot paginate report", err)
		}
		return pagination.Plan{}, report.NewError(report.KindInternal, "cannot paginate report", err)
	}
	return plan, nil
}

func (g *Generator) renderOptions(doc *report.Document, data report.Data) pdf.RenderOptions {
	title := g.options.Title
	if title == "" {
		title = doc.Title
	}
	return pdf.RenderOptions{
		Title:    title,
		Author:   g.options.Author,
		Subject:  fmt.Sprintf("Diagnosis: %s", data.Condition),
		Keywords: doc.ID,
		Creator:  g.options.Creator,
	}
}

func (g *Generator) done(doc *report.Document, plan pagination.Plan) Result {
	g.logger.Info("generated report",
		zap.String("report_id", doc.ID),
		zap.String("filename", doc.Filename),
		zap.Int("pages", plan.PageCount),
	)
	return Result{ReportID: doc.ID, Filename: doc.Filename, PageCount: plan.PageCount}
}

// rasterError classifies a rasterizer failure
func rasterError(err error) error {
	var reportErr *report.Error
	switch {
	case errors.As(err, &reportErr):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return report.NewError(report.KindExternalService, "report rendering was canceled", err)
	case errors.Is(err, raster.ErrDocumentTooLarge):
		return report.NewError(report.KindInvalidInput, "report is too large to render", err)
	case raster.IsBrowserUnavailable(err):
		return report.NewError(report.KindEnvironmentUnavailable, "headless browser unavailable", err)
	}
	return report.NewError(report.KindExternalService, "failed to rasterize report", err)
}
