package style

import (
	"strings"

	"github.com/chiremba/chiremba/internal/parser/html"
	xhtml "golang.org/x/net/html"
)

// compound is one compound selector such as div#main.card
type compound struct {
	tag     string
	id      string
	classes []string
}

// selector is a compiled complex selector. parts run left to right;
// child[i] reports whether parts[i] and parts[i+1] are joined by '>'
type selector struct {
	parts       []compound
	child       []bool
	specificity Specificity
}

// compileSelector compiles descendant and child selectors built from tags,
// ids and classes. Anything else (attributes, pseudo-classes, sibling
// combinators) is reported as unsupported
func compileSelector(text string) (selector, bool) {
	var sel selector
	pendingChild := false
	for _, tok := range strings.Fields(strings.ReplaceAll(text, ">", " > ")) {
		if tok == ">" {
			if len(sel.parts) == 0 || pendingChild {
				return selector{}, false
			}
			pendingChild = true
			continue
		}
		c, ok := parseCompound(tok)
		if !ok {
			return selector{}, false
		}
		if len(sel.parts) > 0 {
			sel.child = append(sel.child, pendingChild)
		}
		pendingChild = false
		sel.parts = append(sel.parts, c)

		if c.id != "" {
			sel.specificity.ID++
		}
		sel.specificity.Class += len(c.classes)
		if c.tag != "" && c.tag != "*" {
			sel.specificity.Element++
		}
	}
	if len(sel.parts) == 0 || pendingChild {
		return selector{}, false
	}
	return sel, true
}

func parseCompound(tok string) (compound, bool) {
	var c compound
	end := strings.IndexAny(tok, ".#")
	if end < 0 {
		end = len(tok)
	}
	c.tag = strings.ToLower(tok[:end])
	if strings.ContainsAny(c.tag, "[]:+~()") {
		return compound{}, false
	}

	rest := tok[end:]
	for rest != "" {
		kind := rest[0]
		rest = rest[1:]
		n := strings.IndexAny(rest, ".#")
		if n < 0 {
			n = len(rest)
		}
		name := rest[:n]
		rest = rest[n:]
		if name == "" || strings.ContainsAny(name, "[]:+~()") {
			return compound{}, false
		}
		if kind == '#' {
			if c.id != "" {
				return compound{}, false
			}
			c.id = name
		} else {
			c.classes = append(c.classes, name)
		}
	}
	return c, true
}

func (c compound) matches(n *html.Node) bool {
	if n == nil || n.Type != xhtml.ElementNode {
		return false
	}
	if c.tag != "" && c.tag != "*" && c.tag != n.Data {
		return false
	}
	if c.id != "" && n.Attribute("id") != c.id {
		return false
	}
	for _, class := range c.classes {
		if !n.HasClass(class) {
			return false
		}
	}
	return true
}

// matches reports whether n is the subject of the selector
func (s selector) matches(n *html.Node) bool {
	last := len(s.parts) - 1
	if last < 0 || !s.parts[last].matches(n) {
		return false
	}
	return s.matchAncestors(n.Parent, last-1)
}

// matchAncestors matches parts[..i] against n and its ancestors,
// backtracking over descendant combinators
func (s selector) matchAncestors(n *html.Node, i int) bool {
	if i < 0 {
		return true
	}
	if s.child[i] {
		return s.parts[i].matches(n) && s.matchAncestors(n.Parent, i-1)
	}
	for anc := n; anc != nil; anc = anc.Parent {
		if s.parts[i].matches(anc) && s.matchAncestors(anc.Parent, i-1) {
			return true
		}
	}
	return false
}

// calculateSpecificity returns the specificity of a selector, or zero when
// it cannot be compiled
func calculateSpecificity(text string) Specificity {
	sel, _ := compileSelector(text)
	return sel.specificity
}
