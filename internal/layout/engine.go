package layout

import (
	"errors"
	"fmt"

	"github.com/chiremba/chiremba/internal/parser/html"
	"github.com/chiremba/chiremba/internal/style"
	"github.com/chiremba/chiremba/internal/text"
	"go.uber.org/zap"
	xhtml "golang.org/x/net/html"
)

const (
	nodeText    = xhtml.TextNode
	nodeElement = xhtml.ElementNode
)

// ErrEmptyDocument is returned when a document has nothing to lay out
var ErrEmptyDocument = errors.New("document has no content")

// Options represents options for the layout engine
type Options struct {
	// Width is the viewport width in CSS pixels
	Width float64
	// FontSize is the root font size in CSS pixels
	FontSize float64
}

// Engine handles the layout process
type Engine struct {
	options Options
	styles  map[*html.Node]style.ComputedStyle
	shaper  *text.TextShaper
	images  ImageSource
	logger  *zap.Logger
}

// NewEngine creates a new layout engine
func NewEngine(shaper *text.TextShaper, images ImageSource) *Engine {
	return &Engine{
		options: Options{
			Width:    750,
			FontSize: 16,
		},
		styles: make(map[*html.Node]style.ComputedStyle),
		shaper: shaper,
		images: images,
		logger: zap.NewNop(),
	}
}

// SetOptions sets the options for the layout engine
func (e *Engine) SetOptions(options Options) {
	if options.Width <= 0 {
		options.Width = 750
	}
	if options.FontSize <= 0 {
		options.FontSize = 16
	}
	e.options = options
}

// SetStyles sets the computed styles for the layout engine
func (e *Engine) SetStyles(styles map[*html.Node]style.ComputedStyle) {
	e.styles = styles
}

// SetLogger sets the logger used for debug output
func (e *Engine) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e.logger = logger
}

// Layout creates a layout tree from a document. The returned root box spans
// the viewport width; its height is the height of the whole document
func (e *Engine) Layout(doc *html.Document) (*BlockBox, error) {
	if doc == nil || doc.Root == nil {
		return nil, ErrEmptyDocument
	}
	if e.shaper == nil {
		return nil, fmt.Errorf("layout engine has no text shaper")
	}

	bodyNode := doc.Body()
	if bodyNode == nil {
		bodyNode = doc.Root
	}

	root := NewBlockBox(bodyNode, e.styles[bodyNode])
	ts := resolveTextStyle(root.Style, defaultTextStyle(e.options.FontSize))
	root.parseBoxModel(ts.font.Size, e.options.Width)
	root.Width = e.options.Width - root.Margin.Horizontal()
	root.X = root.Margin.Left

	if err := e.layoutBlock(root, root.Margin.Top, ts, 0); err != nil {
		return nil, err
	}

	// the document includes the body's margins
	total := &BlockBox{
		Node:     doc.Root,
		Width:    e.options.Width,
		Height:   root.Margin.Top + root.Height + root.Margin.Bottom,
		Children: []Box{root},
	}
	if total.Height <= 0 {
		return nil, ErrEmptyDocument
	}

	e.logger.Debug("laid out document",
		zap.Float64("width", total.Width),
		zap.Float64("height", total.Height),
	)
	return total, nil
}

// layoutBlock lays out b's children with b's border box top at y. b.X, b.Width
// and the box model must already be set. parentContentHeight resolves
// percentage heights and is zero when the parent height is not fixed
func (e *Engine) layoutBlock(b *BlockBox, y float64, ts textStyle, parentContentHeight float64) error {
	b.Y = y
	contentY := b.ContentY()
	contentWidth := b.ContentWidth()

	fixedHeight := -1.0
	if v := b.Style.Get("height"); v != "" {
		if l, err := style.ParseLength(v); err == nil {
			if l.Unit != "%" {
				fixedHeight = l.Resolve(ts.font.Size, 0)
			} else if parentContentHeight > 0 {
				fixedHeight = l.Resolve(ts.font.Size, parentContentHeight)
			}
		}
	}

	cursor := contentY
	prevMargin := 0.0
	var inline []*html.Node

	flush := func() {
		if len(inline) == 0 {
			return
		}
		h := e.layoutInline(b, inline, ts, cursor+prevMargin)
		if h > 0 {
			cursor += prevMargin + h
			prevMargin = 0
		}
		inline = nil
	}

	for c := b.Node.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case nodeText:
			inline = append(inline, c)
			continue
		case nodeElement:
		default:
			continue
		}

		st := e.styles[c]
		display := st.Get("display")
		switch {
		case display == "none":
			continue
		case c.Data == "img":
			flush()
			img, err := e.newImageBox(c, contentWidth, ts.font.Size)
			if err != nil {
				return err
			}
			x := b.ContentX()
			switch ts.align {
			case "center":
				x += max((contentWidth-img.Width)/2, 0)
			case "right", "end":
				x += max(contentWidth-img.Width, 0)
			}
			img.SetPosition(x, cursor+prevMargin)
			b.AddChild(img)
			cursor += prevMargin + img.Height
			prevMargin = 0
		case display == "block" || display == "list-item":
			flush()
			child := NewBlockBox(c, st)
			childTS := resolveTextStyle(st, ts)
			e.sizeBlock(child, childTS.font.Size, contentWidth)
			child.X = b.ContentX() + child.Margin.Left

			// adjacent sibling margins collapse to the larger of the two
			top := cursor + max(prevMargin, child.Margin.Top)
			if err := e.layoutBlock(child, top, childTS, max(fixedHeight, 0)); err != nil {
				return err
			}
			b.AddChild(child)
			cursor = child.Y + child.Height
			prevMargin = child.Margin.Bottom
		default:
			inline = append(inline, c)
		}
	}
	flush()

	contentHeight := cursor + prevMargin - contentY
	if fixedHeight >= 0 {
		contentHeight = fixedHeight
	}
	b.Height = b.Border.Vertical() + b.Padding.Vertical() + contentHeight
	return nil
}

// sizeBlock resolves the box model and border-box width of a block within
// a container of the given content width
func (e *Engine) sizeBlock(b *BlockBox, fontSize, containerWidth float64) {
	b.parseBoxModel(fontSize, containerWidth)
	frame := b.Padding.Horizontal() + b.Border.Horizontal()

	content := containerWidth - b.Margin.Horizontal() - frame
	explicit := false
	if v := b.Style.Get("width"); v != "" && v != "auto" {
		if w := style.ResolveLength(v, fontSize, containerWidth, -1); w >= 0 {
			content = w
			explicit = true
		}
	}
	if v := b.Style.Get("max-width"); v != "" && v != "none" {
		if w := style.ResolveLength(v, fontSize, containerWidth, -1); w >= 0 && content > w {
			content = w
			explicit = true
		}
	}
	content = max(content, 0)
	b.Width = content + frame

	if explicit && (b.autoLeft || b.autoRight) {
		free := max(containerWidth-b.Width-b.Margin.Horizontal(), 0)
		switch {
		case b.autoLeft && b.autoRight:
			b.Margin.Left += free / 2
			b.Margin.Right += free / 2
		case b.autoLeft:
			b.Margin.Left += free
		default:
			b.Margin.Right += free
		}
	}
}
