// Package css parses the stylesheet subset used by report documents
package css

import (
	"fmt"
	"io"
	"strings"
)

// Parser represents a CSS parser
type Parser struct{}

// Rule is a selector list with its declarations
type Rule struct {
	Selectors    []string
	Declarations []*Declaration
}

// Declaration represents a CSS declaration (property-value pair)
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Stylesheet represents a parsed CSS stylesheet
type Stylesheet struct {
	Rules []*Rule

	// AtRules counts skipped @page, @media and similar blocks
	AtRules int
}

// NewParser creates a new CSS parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses CSS from a string
func (p *Parser) ParseString(content string) (*Stylesheet, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses CSS from an io.Reader. Malformed rules are dropped the way a
// browser would drop them; only a read failure is an error
func (p *Parser) Parse(r io.Reader) (*Stylesheet, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read stylesheet: %w", err)
	}

	sheet := &Stylesheet{Rules: []*Rule{}}
	s := &scanner{src: stripComments(string(content))}
	for {
		prelude, body, ok := s.nextBlock()
		if !ok {
			sheet.AtRules += s.statements
			break
		}
		// @page and @media only affect paged or print output, which the
		// browser handles natively
		if strings.HasPrefix(prelude, "@") {
			sheet.AtRules++
			continue
		}
		selectors := splitTopLevel(prelude, ',')
		if len(selectors) == 0 {
			continue
		}
		sheet.Rules = append(sheet.Rules, &Rule{
			Selectors:    selectors,
			Declarations: parseDeclarations(body),
		})
	}
	return sheet, nil
}

// scanner walks top-level blocks of a stylesheet
type scanner struct {
	src string
	pos int

	statements int
}

// nextBlock returns the prelude and body of the next `prelude { body }` block.
// Nested blocks stay inside body. Whitespace runs in the prelude collapse to
// one space so descendant selectors survive
func (s *scanner) nextBlock() (prelude, body string, ok bool) {
	var pre strings.Builder
	space := false
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '{':
			s.pos++
			start := s.pos
			s.skipBlock()
			end := s.pos
			if end > start && s.src[end-1] == '}' {
				end--
			}
			return strings.TrimSpace(pre.String()), s.src[start:end], true
		case c == ';' && strings.HasPrefix(strings.TrimSpace(pre.String()), "@"):
			// statement at-rules such as @import or @charset have no block
			s.pos++
			s.statements++
			pre.Reset()
			space = false
			continue
		case isWhitespace(c):
			space = pre.Len() > 0
		default:
			if space {
				pre.WriteByte(' ')
				space = false
			}
			pre.WriteByte(c)
		}
		s.pos++
	}
	return "", "", false
}

// skipBlock advances past the closing brace matching an already consumed '{'
func (s *scanner) skipBlock() {
	depth := 1
	var quote byte
	for s.pos < len(s.src) && depth > 0 {
		c := s.src[s.pos]
		s.pos++
		switch {
		case quote != 0:
			if c == '\\' {
				s.pos++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '{':
			depth++
		case c == '}':
			depth--
		}
	}
}

// splitTopLevel splits s on sep outside quotes and parentheses, trimming and
// dropping empty parts. Data URLs in url() carry ';' and ','
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			if part := strings.TrimSpace(s[start:i]); part != "" {
				parts = append(parts, part)
			}
			start = i + 1
		}
	}
	if part := strings.TrimSpace(s[start:]); part != "" {
		parts = append(parts, part)
	}
	return parts
}

func parseDeclarations(body string) []*Declaration {
	chunks := splitTopLevel(body, ';')
	result := make([]*Declaration, 0, len(chunks))
	for _, chunk := range chunks {
		colon := strings.IndexByte(chunk, ':')
		if colon <= 0 {
			continue
		}
		property := strings.ToLower(strings.TrimSpace(chunk[:colon]))
		value := strings.TrimSpace(chunk[colon+1:])
		if property == "" || value == "" || strings.ContainsAny(property, "{}") {
			continue
		}

		important := false
		if i := strings.LastIndex(strings.ToLower(value), "!important"); i >= 0 && strings.TrimSpace(value[i+len("!important"):]) == "" {
			important = true
			value = strings.TrimSpace(value[:i])
		}
		result = append(result, &Declaration{Property: property, Value: value, Important: important})
	}
	return result
}

func stripComments(content string) string {
	var sb strings.Builder
	sb.Grow(len(content))
	for {
		start := strings.Index(content, "/*")
		if start < 0 {
			sb.WriteString(content)
			return sb.String()
		}
		sb.WriteString(content[:start])
		end := strings.Index(content[start+2:], "*/")
		if end < 0 {
			// an unterminated comment runs to the end of the sheet
			return sb.String()
		}
		sb.WriteByte(' ')
		content = content[start+2+end+2:]
	}
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
