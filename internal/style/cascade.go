package style

import (
	"github.com/chiremba/chiremba/internal/parser/css"
	"github.com/chiremba/chiremba/internal/parser/html"
	xhtml "golang.org/x/net/html"
)

// Specificity represents the specificity of a CSS selector
type Specificity struct {
	ID      int
	Class   int
	Element int
}

// StyleProperty represents a computed style property
type StyleProperty struct {
	Name        string
	Value       string
	Important   bool
	Source      Source
	Specificity Specificity
	Inherited   bool
}

// Source represents the source of a style property
type Source int

const (
	SourceUserAgent Source = iota
	SourceAuthor
	SourceInline
)

// inherited lists the properties a child takes from its parent when no rule sets them
var inherited = map[string]bool{
	"color":       true,
	"font-family": true,
	"font-size":   true,
	"font-style":  true,
	"font-weight": true,
	"line-height": true,
	"text-align":  true,
	"white-space": true,
}

// ComputedStyle represents the computed style for an element
type ComputedStyle map[string]StyleProperty

// Get returns the value of a property, or "" when unset
func (s ComputedStyle) Get(name string) string {
	return s[name].Value
}

// Has reports whether the property is set
func (s ComputedStyle) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// rule is a stylesheet rule compiled against one selector
type rule struct {
	selector     selector
	declarations []*css.Declaration
	source       Source
}

// StyleEngine handles the CSS cascade and style computation
type StyleEngine struct {
	rules []rule
}

// NewStyleEngine creates a new style engine seeded with the user agent sheet
func NewStyleEngine() *StyleEngine {
	e := &StyleEngine{}
	e.add(defaultUserAgentStyles(), SourceUserAgent)
	return e
}

// AddStylesheet adds an author stylesheet. Selectors the engine cannot match,
// such as pseudo-elements, are dropped
func (e *StyleEngine) AddStylesheet(stylesheet *css.Stylesheet) {
	e.add(stylesheet, SourceAuthor)
}

func (e *StyleEngine) add(stylesheet *css.Stylesheet, source Source) {
	if stylesheet == nil {
		return
	}
	for _, r := range stylesheet.Rules {
		for _, text := range r.Selectors {
			sel, ok := compileSelector(text)
			if !ok {
				continue
			}
			e.rules = append(e.rules, rule{selector: sel, declarations: r.Declarations, source: source})
		}
	}
}

// ComputeStyles computes styles for all elements in the document
func (e *StyleEngine) ComputeStyles(doc *html.Document) map[*html.Node]ComputedStyle {
	result := make(map[*html.Node]ComputedStyle)
	if doc == nil {
		return result
	}
	e.compute(doc.Root, nil, result)
	return result
}

func (e *StyleEngine) compute(node *html.Node, parent ComputedStyle, result map[*html.Node]ComputedStyle) {
	if node == nil {
		return
	}

	current := parent
	if node.Type == xhtml.ElementNode {
		current = e.styleFor(node)
		inherit(current, parent)
		result[node] = current
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		e.compute(child, current, result)
	}
}

// inherit copies inheritable properties from parent that style does not set
func inherit(style, parent ComputedStyle) {
	for name, prop := range parent {
		if !inherited[name] {
			continue
		}
		if _, ok := style[name]; ok {
			continue
		}
		prop.Inherited = true
		style[name] = prop
	}
}

func (e *StyleEngine) styleFor(node *html.Node) ComputedStyle {
	style := make(ComputedStyle)
	for _, r := range e.rules {
		if r.selector.matches(node) {
			apply(style, r.declarations, r.selector.specificity, r.source)
		}
	}

	if inline := node.Attribute("style"); inline != "" {
		sheet, err := css.NewParser().ParseString("inline { " + inline + " }")
		if err == nil && len(sheet.Rules) > 0 {
			apply(style, sheet.Rules[0].Declarations, Specificity{ID: 1}, SourceInline)
		}
	}
	return style
}

// apply merges declarations into style following the cascade
func apply(style ComputedStyle, declarations []*css.Declaration, specificity Specificity, source Source) {
	for _, decl := range declarations {
		for property, value := range expandShorthand(decl.Property, decl.Value) {
			existing, exists := style[property]

			// Importance beats origin, origin beats specificity, and among
			// equals the later declaration wins.
			wins := !exists ||
				(decl.Important && !existing.Important) ||
				(decl.Important == existing.Important && source > existing.Source) ||
				(decl.Important == existing.Important && source == existing.Source &&
					compareSpecificity(specificity, existing.Specificity) >= 0)
			if !wins {
				continue
			}

			style[property] = StyleProperty{
				Name:        property,
				Value:       value,
				Important:   decl.Important,
				Source:      source,
				Specificity: specificity,
			}
		}
	}
}

// compareSpecificity compares two specificities
func compareSpecificity(a, b Specificity) int {
	if a.ID != b.ID {
		return a.ID - b.ID
	}
	if a.Class != b.Class {
		return a.Class - b.Class
	}
	return a.Element - b.Element
}

// defaultUserAgentStyles returns the default user agent stylesheet
func defaultUserAgentStyles() *css.Stylesheet {
	stylesheet, _ := css.NewParser().ParseString(`
		html, body, div, p, h1, h2, h3, h4, h5, h6, ul, ol, li, section, header, footer { display: block; }
		head, title, style, script, meta, link { display: none; }
		body { margin: 0; font-size: 16px; color: #000; line-height: 1.2; }
		h1 { font-size: 2em; margin: 0.67em 0; font-weight: bold; }
		h2 { font-size: 1.5em; margin: 0.83em 0; font-weight: bold; }
		h3 { font-size: 1.17em; margin: 1em 0; font-weight: bold; }
		h4 { margin: 1.33em 0; font-weight: bold; }
		h5 { font-size: 0.83em; margin: 1.67em 0; font-weight: bold; }
		h6 { font-size: 0.67em; margin: 2.33em 0; font-weight: bold; }
		p, ul, ol { margin: 1em 0; }
		b, strong { font-weight: bold; }
		i, em { font-style: italic; }
		img { display: inline-block; }
		pre { white-space: pre; }
	`)
	return stylesheet
}
