package html

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parser represents an HTML parser
type Parser struct{}

// Node represents an HTML node in the document tree
type Node struct {
	Type        html.NodeType
	Data        string
	Attr        []html.Attribute
	Parent      *Node
	FirstChild  *Node
	LastChild   *Node
	PrevSibling *Node
	NextSibling *Node
}

// Document represents an HTML document tree
type Document struct {
	Root *Node
}

// NewParser creates a new HTML parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses HTML from a string
func (p *Parser) ParseString(content string) (*Document, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses HTML from an io.Reader
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	root := convertNode(node, nil)
	return &Document{Root: root}, nil
}

// convertNode converts an html.Node to our Node structure
func convertNode(n *html.Node, parent *Node) *Node {
	if n == nil {
		return nil
	}

	node := &Node{
		Type:   n.Type,
		Data:   n.Data,
		Attr:   n.Attr,
		Parent: parent,
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		node.appendChild(convertNode(c, node))
	}

	return node
}

// Attr builds an attribute for Element
func Attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// Class is shorthand for a class attribute
func Class(names string) html.Attribute {
	return Attr("class", names)
}

// Element creates a detached element node
func Element(tag string, attrs ...html.Attribute) *Node {
	return &Node{
		Type: html.ElementNode,
		Data: tag,
		Attr: attrs,
	}
}

// Text creates a detached text node. The content is escaped when rendered
func Text(s string) *Node {
	return &Node{Type: html.TextNode, Data: s}
}

// Append attaches children to n in order and returns n
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.Parent = n
		n.appendChild(c)
	}
	return n
}

func (n *Node) appendChild(c *Node) {
	c.PrevSibling = n.LastChild
	c.NextSibling = nil
	if n.LastChild != nil {
		n.LastChild.NextSibling = c
	} else {
		n.FirstChild = c
	}
	n.LastChild = c
}

// Attribute returns the value of the named attribute, or "" when absent
func (n *Node) Attribute(key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasClass reports whether the element carries the given class
func (n *Node) HasClass(name string) bool {
	for _, c := range strings.Fields(n.Attribute("class")) {
		if c == name {
			return true
		}
	}
	return false
}

// TextContent concatenates all descendant text
func (n *Node) TextContent() string {
	var sb strings.Builder
	n.walk(func(c *Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

// Find returns the first node in document order for which match returns true
func (n *Node) Find(match func(*Node) bool) *Node {
	var found *Node
	n.walk(func(c *Node) bool {
		if found == nil && match(c) {
			found = c
		}
		return found == nil
	})
	return found
}

// FindAll returns every node in document order for which match returns true
func (n *Node) FindAll(match func(*Node) bool) []*Node {
	var out []*Node
	n.walk(func(c *Node) bool {
		if match(c) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// walk visits n and its descendants depth-first until visit returns false
func (n *Node) walk(visit func(*Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !c.walk(visit) {
			return false
		}
	}
	return true
}

// ByTag matches element nodes with the given tag name
func ByTag(tag string) func(*Node) bool {
	return func(n *Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

// ByClass matches element nodes carrying the given class
func ByClass(name string) func(*Node) bool {
	return func(n *Node) bool {
		return n.Type == html.ElementNode && n.HasClass(name)
	}
}

// NewDocument creates a document with a doctype and the given html element
func NewDocument(root *Node) *Document {
	doc := &Node{Type: html.DocumentNode}
	doc.Append(&Node{Type: html.DoctypeNode, Data: "html"}, root)
	return &Document{Root: doc}
}

// Find returns the first matching node in the document
func (d *Document) Find(match func(*Node) bool) *Node {
	if d == nil || d.Root == nil {
		return nil
	}
	return d.Root.Find(match)
}

// Body returns the body element, or nil when the document has none
func (d *Document) Body() *Node {
	return d.Find(ByTag("body"))
}

// Write serializes the document to w
func (d *Document) Write(w io.Writer) error {
	if d == nil || d.Root == nil {
		return fmt.Errorf("failed to render html: empty document")
	}
	return html.Render(w, toHTML(d.Root))
}

// Render renders the document back to HTML
func (d *Document) Render() (string, error) {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// toHTML converts the tree rooted at n into x/net/html nodes
func toHTML(n *Node) *html.Node {
	out := &html.Node{
		Type: n.Type,
		Data: n.Data,
		Attr: n.Attr,
	}
	if n.Type == html.ElementNode {
		out.DataAtom = atom.Lookup([]byte(n.Data))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out.AppendChild(toHTML(c))
	}
	return out
}
