package style

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var boxSides = [4]string{"top", "right", "bottom", "left"}

// expandShorthand splits shorthand declarations into their longhand properties.
// Unknown properties are returned unchanged
func expandShorthand(property, value string) map[string]string {
	switch property {
	case "margin", "padding":
		t, r, b, l := splitBoxShorthand(value)
		return map[string]string{
			property + "-top":    t,
			property + "-right":  r,
			property + "-bottom": b,
			property + "-left":   l,
		}
	case "border":
		out := make(map[string]string, 8)
		width, colour := splitBorder(value)
		for _, side := range boxSides {
			out["border-"+side+"-width"] = width
			out["border-"+side+"-color"] = colour
		}
		return out
	case "border-top", "border-right", "border-bottom", "border-left":
		width, colour := splitBorder(value)
		return map[string]string{
			property + "-width": width,
			property + "-color": colour,
		}
	case "background":
		return map[string]string{"background-color": value}
	}
	return map[string]string{property: value}
}

// splitBoxShorthand parses CSS shorthand like:
//   - "10px"
//   - "10px 20px"
//   - "10px 15px 8px"
//   - "10px 12px 8px 6px"
//
// and returns (top, right, bottom, left) values
func splitBoxShorthand(value string) (string, string, string, string) {
	parts := strings.Fields(value)
	switch len(parts) {
	case 0:
		return "0", "0", "0", "0"
	case 1:
		return parts[0], parts[0], parts[0], parts[0]
	case 2:
		return parts[0], parts[1], parts[0], parts[1]
	case 3:
		return parts[0], parts[1], parts[2], parts[1]
	default:
		return parts[0], parts[1], parts[2], parts[3]
	}
}

// splitBorder extracts width and color from a border shorthand such as "2px solid #4f46e5"
func splitBorder(value string) (width, colour string) {
	width, colour = "0", "transparent"
	if strings.TrimSpace(value) == "none" {
		return width, colour
	}
	width = "3px"
	colour = "currentcolor"
	for _, part := range splitValueList(value) {
		switch {
		case isBorderStyle(part):
		case startsNumeric(part):
			width = part
		default:
			colour = part
		}
	}
	return width, colour
}

func isBorderStyle(s string) bool {
	switch s {
	case "none", "hidden", "dotted", "dashed", "solid", "double", "groove", "ridge", "inset", "outset":
		return true
	}
	return false
}

func startsNumeric(s string) bool {
	return s != "" && (s[0] == '.' || s[0] == '-' || (s[0] >= '0' && s[0] <= '9'))
}

// splitValueList splits on whitespace outside parentheses
func splitValueList(value string) []string {
	var out []string
	var cur strings.Builder
	depth := 0
	for _, r := range value {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth--
		case (r == ' ' || r == '\t') && depth == 0:
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// Length is a CSS length before resolution
type Length struct {
	Value float64
	Unit  string
}

// ParseLength parses a CSS length such as "12px", "1.5em", "100%" or "0"
func ParseLength(value string) (Length, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return Length{}, fmt.Errorf("empty length")
	}
	for _, unit := range []string{"rem", "px", "em", "pt", "mm", "%"} {
		if strings.HasSuffix(v, unit) {
			f, err := strconv.ParseFloat(strings.TrimSuffix(v, unit), 64)
			if err != nil {
				return Length{}, fmt.Errorf("invalid length %q: %w", value, err)
			}
			return Length{Value: f, Unit: unit}, nil
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Length{}, fmt.Errorf("invalid length %q: %w", value, err)
	}
	return Length{Value: f, Unit: ""}, nil
}

// Resolve converts the length to CSS pixels.
// fontSize is the size em refers to; percentBase is the size % refers to
func (l Length) Resolve(fontSize, percentBase float64) float64 {
	switch l.Unit {
	case "em":
		return l.Value * fontSize
	case "rem":
		return l.Value * 16
	case "pt":
		return l.Value * 96 / 72
	case "mm":
		return l.Value * 96 / 25.4
	case "%":
		return l.Value * percentBase / 100
	default:
		return l.Value
	}
}

// ResolveLength parses and resolves value, returning def when it cannot be parsed
func ResolveLength(value string, fontSize, percentBase, def float64) float64 {
	l, err := ParseLength(value)
	if err != nil {
		return def
	}
	return l.Resolve(fontSize, percentBase)
}

var namedColors = map[string]color.RGBA{
	"black":       {0, 0, 0, 255},
	"white":       {255, 255, 255, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"transparent": {0, 0, 0, 0},
}

// ParseColor parses a CSS color value. Supported forms are #rgb, #rrggbb,
// rgb(), rgba() and a small set of named colors
func ParseColor(value string) (color.RGBA, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if strings.HasPrefix(v, "#") {
		return parseHexColor(v)
	}
	if c, ok := namedColors[v]; ok {
		return c, true
	}
	if strings.HasPrefix(v, "rgb") {
		open := strings.IndexByte(v, '(')
		end := strings.LastIndexByte(v, ')')
		if open < 0 || end < open {
			return color.RGBA{}, false
		}
		parts := strings.Split(v[open+1:end], ",")
		if len(parts) != 3 && len(parts) != 4 {
			return color.RGBA{}, false
		}
		var ch [3]uint8
		for i := 0; i < 3; i++ {
			n, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
			if err != nil {
				return color.RGBA{}, false
			}
			ch[i] = clampByte(n)
		}
		alpha := 1.0
		if len(parts) == 4 {
			a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
			if err != nil {
				return color.RGBA{}, false
			}
			alpha = a
		}
		a := clampByte(alpha * 255)
		// color.RGBA is alpha-premultiplied
		return color.RGBA{
			R: uint8(uint16(ch[0]) * uint16(a) / 255),
			G: uint8(uint16(ch[1]) * uint16(a) / 255),
			B: uint8(uint16(ch[2]) * uint16(a) / 255),
			A: a,
		}, true
	}
	return color.RGBA{}, false
}

// parseHexColor parses #RRGGBB or #RGB
func parseHexColor(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 255}, true
}

func clampByte(f float64) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 255 {
		return 255
	}
	return uint8(f + 0.5)
}
