package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chiremba/chiremba/internal/parser/html"
	"github.com/google/uuid"
)

// Mode selects the output a document is built for
type Mode int

const (
	// ModeDownload builds a document for rasterization into a paginated PDF.
	ModeDownload Mode = iota
	// ModePrint builds a document handed to the browser's print dialog.
	ModePrint
)

func (m Mode) String() string {
	switch m {
	case ModeDownload:
		return "download"
	case ModePrint:
		return "print"
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

const (
	reportTitle        = "Chiremba Image Diagnosis Report"
	disclaimer         = "This report was generated using AI-assisted analysis. Please consult with a qualified healthcare professional for proper evaluation and treatment."
	analysisNotPresent = "AI analysis not available"
	autoPrintScript    = "window.onload = function() { window.print(); };"
)

// Document is a report rendered into a document tree
type Document struct {
	ID       string
	Mode     Mode
	Title    string
	Filename string
	Tree     *html.Document
}

// Write serializes the document as HTML
func (d *Document) Write(w io.Writer) error {
	if err := d.Tree.Write(w); err != nil {
		return fmt.Errorf("failed to write report html: %w", err)
	}
	return nil
}

// HTML returns the serialized document
func (d *Document) HTML() (string, error) {
	var sb strings.Builder
	if err := d.Write(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// BuildDocument validates data and builds its document tree for mode
func BuildDocument(data Data, mode Mode) (*Document, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if mode != ModeDownload && mode != ModePrint {
		return nil, NewError(KindInvalidInput, "unknown output mode "+mode.String(), nil)
	}

	id := uuid.NewString()

	head := html.Element("head").Append(
		html.Element("meta", html.Attr("charset", "utf-8")),
		html.Element("meta", html.Attr("name", "report-id"), html.Attr("content", id)),
		html.Element("title").Append(html.Text(reportTitle)),
		html.Element("style").Append(html.Text(Stylesheet(mode))),
	)

	body := html.Element("body").Append(
		html.Element("div", html.Class("report-container")).Append(
			header(data),
			results(data),
			imageBlock(data),
			analysis(data),
			alternatives(data),
			footer(),
		),
	)
	if mode == ModePrint {
		body.Append(html.Element("script").Append(html.Text(autoPrintScript)))
	}

	root := html.Element("html", html.Attr("lang", "en")).Append(head, body)
	return &Document{
		ID:       id,
		Mode:     mode,
		Title:    reportTitle,
		Filename: Filename(data.Date),
		Tree:     html.NewDocument(root),
	}, nil
}

func header(d Data) *html.Node {
	return html.Element("div", html.Class("header")).Append(
		html.Element("h1").Append(html.Text(reportTitle)),
		paragraph("Generated on "+d.Date+" at "+d.Time),
	)
}

func results(d Data) *html.Node {
	box := html.Element("div", html.Class("result-box")).Append(
		html.Element("h3").Append(html.Text("Detected Condition: "+d.Condition)),
		paragraph(d.Description),
		html.Element("div", html.Class("confidence-bar")).Append(
			html.Element("div",
				html.Class("confidence-fill"),
				html.Attr("style", "width: "+percent(d.Confidence)),
			),
		),
		paragraph("Confidence Level: "+percent(d.Confidence)),
		paragraph("Model Used: "+d.ModelUsed),
	)
	if strings.TrimSpace(d.Urgency) != "" {
		box.Append(paragraph("Urgency: " + d.Urgency))
	}
	return section("Analysis Results", box)
}

func imageBlock(d Data) *html.Node {
	return html.Element("div", html.Class("image-container")).Append(
		html.Element("img", html.Attr("src", d.ImageData), html.Attr("alt", "Analyzed Image")),
	)
}

func analysis(d Data) *html.Node {
	block := html.Element("div", html.Class("ai-analysis")).Append(
		html.Element("h3").Append(html.Text("AI Detailed Analysis")),
	)

	sections := ParseExplanation(d.AIExplanation)
	if len(sections) == 0 {
		return block.Append(paragraph(analysisNotPresent))
	}
	for _, sec := range sections {
		if sec.Title == "" {
			for _, p := range sec.Paragraphs {
				block.Append(paragraph(p))
			}
			continue
		}
		node := html.Element("div", html.Class("ai-section")).Append(
			html.Element("h4").Append(html.Text(sec.Title)),
		)
		for _, p := range sec.Paragraphs {
			node.Append(paragraph(p))
		}
		block.Append(node)
	}
	return block
}

func alternatives(d Data) *html.Node {
	if len(d.Alternatives) == 0 {
		return nil
	}
	box := html.Element("div", html.Class("result-box"))
	for _, alt := range d.Alternatives {
		box.Append(html.Element("div", html.Class("alternative")).Append(
			html.Element("p").Append(
				html.Element("strong").Append(html.Text(alt.Class)),
				html.Text(" ("+percent(alt.Confidence)+" confidence)"),
			),
		))
	}
	return section("Alternative Diagnoses", box)
}

func footer() *html.Node {
	return html.Element("div", html.Class("footer")).Append(paragraph(disclaimer))
}

func section(title string, content *html.Node) *html.Node {
	return html.Element("div", html.Class("section")).Append(
		html.Element("h2", html.Class("section-title")).Append(html.Text(title)),
		content,
	)
}

func paragraph(s string) *html.Node {
	return html.Element("p").Append(html.Text(s))
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
