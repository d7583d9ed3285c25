package text

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Font represents a font used for text shaping
type Font struct {
	Family     string
	Style      string
	Weight     int
	Size       float64
	LineHeight float64
}

// Bold reports whether the font weight renders as bold
func (f *Font) Bold() bool {
	return f.Weight >= 600
}

// Italic reports whether the font style renders as italic
func (f *Font) Italic() bool {
	return f.Style == "italic" || f.Style == "oblique"
}

// Monospace reports whether the family asks for a fixed-pitch face
func (f *Font) Monospace() bool {
	fam := strings.ToLower(f.Family)
	return strings.Contains(fam, "mono") || strings.Contains(fam, "courier")
}

type variant int

const (
	variantRegular variant = iota
	variantBold
	variantItalic
	variantBoldItalic
	variantMono
)

type faceKey struct {
	v    variant
	size fixed.Int26_6
}

// TextShaper measures and breaks text with the bundled Go fonts.
// It is safe for concurrent use
type TextShaper struct {
	fonts map[variant]*opentype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

// NewTextShaper creates a new text shaper
func NewTextShaper() (*TextShaper, error) {
	sources := map[variant][]byte{
		variantRegular:    goregular.TTF,
		variantBold:       gobold.TTF,
		variantItalic:     goitalic.TTF,
		variantBoldItalic: gobolditalic.TTF,
		variantMono:       gomono.TTF,
	}
	s := &TextShaper{
		fonts: make(map[variant]*opentype.Font, len(sources)),
		faces: make(map[faceKey]font.Face),
	}
	for v, ttf := range sources {
		f, err := opentype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("failed to parse bundled font: %w", err)
		}
		s.fonts[v] = f
	}
	return s, nil
}

func variantOf(f *Font) variant {
	switch {
	case f.Monospace():
		return variantMono
	case f.Bold() && f.Italic():
		return variantBoldItalic
	case f.Bold():
		return variantBold
	case f.Italic():
		return variantItalic
	}
	return variantRegular
}

// Face returns a face for f at f.Size*scale pixels. Faces are cached and
// owned by the shaper
func (s *TextShaper) Face(f *Font, scale float64) (font.Face, error) {
	size := f.Size * scale
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %.2f", size)
	}
	key := faceKey{v: variantOf(f), size: fixed.Int26_6(size * 64)}

	s.mu.Lock()
	defer s.mu.Unlock()
	if face, ok := s.faces[key]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(s.fonts[key.v], &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	s.faces[key] = face
	return face, nil
}

// Metrics returns the ascent and descent of f in pixels
func (s *TextShaper) Metrics(f *Font) (ascent, descent float64) {
	face, err := s.Face(f, 1)
	if err != nil {
		return 0, 0
	}
	m := face.Metrics()
	return toFloat(m.Ascent), toFloat(m.Descent)
}

// LineBox returns the height of one line of f
func (s *TextShaper) LineBox(f *Font) float64 {
	if f.LineHeight > 0 {
		return f.Size * f.LineHeight
	}
	ascent, descent := s.Metrics(f)
	return ascent + descent
}

// MeasureText measures text without breaking it
func (s *TextShaper) MeasureText(text string, f *Font) (width, height float64) {
	face, err := s.Face(f, 1)
	if err != nil {
		return 0, 0
	}
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		width = max(width, toFloat(font.MeasureString(face, line)))
	}
	return width, float64(len(lines)) * s.LineBox(f)
}

// SplitTextToLines breaks text into lines no wider than maxWidth. Whitespace
// runs collapse to single spaces; words wider than a line are broken between
// characters
func (s *TextShaper) SplitTextToLines(text string, f *Font, maxWidth float64) []string {
	words := splitIntoWords(text)
	if len(words) == 0 {
		return nil
	}
	if maxWidth <= 0 {
		return []string{strings.Join(words, " ")}
	}
	face, err := s.Face(f, 1)
	if err != nil {
		return []string{strings.Join(words, " ")}
	}
	measure := func(s string) float64 { return toFloat(font.MeasureString(face, s)) }

	var lines []string
	var current string
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if measure(candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		for measure(word) > maxWidth {
			head, tail := breakWord(word, maxWidth, measure)
			lines = append(lines, head)
			word = tail
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// breakWord splits word so the head fits maxWidth, keeping at least one rune
func breakWord(word string, maxWidth float64, measure func(string) float64) (string, string) {
	runes := []rune(word)
	n := 1
	for n < len(runes) && measure(string(runes[:n+1])) <= maxWidth {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}

// splitIntoWords splits text into words
func splitIntoWords(text string) []string {
	return strings.FieldsFunc(text, unicode.IsSpace)
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
