package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"

	"codeberg.org/go-pdf/fpdf"
	"github.com/chiremba/chiremba/internal/pagination"
	"go.uber.org/zap"
)

// imageName is the key the artifact is registered under in the PDF
const imageName = "report"

// ErrNoPages is returned when a plan has nothing to draw
var ErrNoPages = errors.New("plan has no pages")

// Renderer assembles a paginated PDF from one rasterized artifact
type Renderer struct {
	// JPEGQuality is the encoder quality used for the embedded artifact
	JPEGQuality int
	logger      *zap.Logger
}

// RenderOptions contains options for rendering
type RenderOptions struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
}

// NewRenderer creates a new PDF renderer
func NewRenderer() *Renderer {
	return &Renderer{
		JPEGQuality: 100,
		logger:      zap.NewNop(),
	}
}

// SetLogger sets the logger used for debug output
func (r *Renderer) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r.logger = logger
}

// Render draws img once per placement of plan and writes the document to w.
// The document is built in memory first so w receives nothing on failure
func (r *Renderer) Render(w io.Writer, img image.Image, plan pagination.Plan, options RenderOptions) error {
	var buf bytes.Buffer
	if err := r.render(&buf, img, plan, options); err != nil {
		return err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// RenderFile renders to outputPath. The file only appears once rendering succeeded
func (r *Renderer) RenderFile(outputPath string, img image.Image, plan pagination.Plan, options RenderOptions) error {
	var buf bytes.Buffer
	if err := r.render(&buf, img, plan, options); err != nil {
		return err
	}

	outputDir := filepath.Dir(outputPath)
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(outputDir, ".report-*.pdf")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := buf.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		return fmt.Errorf("failed to move pdf into place: %w", err)
	}
	return nil
}

func (r *Renderer) render(w io.Writer, img image.Image, plan pagination.Plan, options RenderOptions) error {
	if img == nil {
		return fmt.Errorf("failed to render pdf: %w", pagination.ErrInvalidArtifact)
	}
	if plan.PageCount < 1 || len(plan.Placements) != plan.PageCount {
		return ErrNoPages
	}
	l := plan.Layout

	var encoded bytes.Buffer
	quality := r.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = 100
	}
	if err := jpeg.Encode(&encoded, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: l.PageWidth, Ht: l.PageHeight},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(l.Margin, l.Margin, l.Margin)
	pdf.SetTitle(options.Title, true)
	pdf.SetAuthor(options.Author, true)
	pdf.SetSubject(options.Subject, true)
	pdf.SetKeywords(options.Keywords, true)
	pdf.SetCreator(options.Creator, true)
	if options.Producer != "" {
		pdf.SetProducer(options.Producer, true)
	}

	imgOpts := fpdf.ImageOptions{ImageType: "JPG", AllowNegativePosition: true}
	pdf.RegisterImageOptionsReader(imageName, imgOpts, &encoded)

	// every page shows the same image shifted up by one content height
	for _, p := range plan.Placements {
		pdf.AddPage()
		pdf.ClipRect(l.Margin, l.Margin, l.ContentWidth(), l.ContentHeight(), false)
		pdf.ImageOptions(imageName, p.X, p.Y, p.Width, p.Height, false, imgOpts, 0, "")
		pdf.ClipEnd()
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}

	r.logger.Debug("rendered pdf",
		zap.Int("pages", plan.PageCount),
		zap.Float64("scale", plan.Scale),
		zap.Int("jpeg_bytes", encoded.Len()),
	)
	return nil
}
