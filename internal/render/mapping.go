package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FieldStyle is one draw instruction: position in points from the top-left
// page corner, font size, hex color and an optional wrap width.
type FieldStyle struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	FontSize float64 `json:"fontSize"`
	Color    string  `json:"color"`
	MaxWidth float64 `json:"maxWidth,omitempty"`
}

type FieldMapping map[string]FieldStyle

// Field names a mapping may position. Anything else in stored configuration
// is a mistake and rejected at parse time instead of drawn as garbage.
var knownFields = map[string]struct{}{
	"first_name":       {},
	"last_name":        {},
	"amount":           {},
	"issue_date":       {},
	"expires_at":       {},
	"certificate_code": {},
	"message":          {},
	"from_name":        {},
}

// ParseMapping decodes a stored field mapping, failing on malformed JSON,
// unknown style keys and unknown field names. Callers fall back to
// DefaultMapping when it errors.
func ParseMapping(raw []byte) (FieldMapping, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty field mapping")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var mapping FieldMapping
	if err := dec.Decode(&mapping); err != nil {
		return nil, fmt.Errorf("malformed field mapping, %v", err)
	}
	for name := range mapping {
		if _, ok := knownFields[name]; !ok {
			return nil, fmt.Errorf("unknown field %q in mapping", name)
		}
	}
	return mapping, nil
}

// DefaultMapping positions every field relative to the page center so a
// template without stored configuration still renders.
func DefaultMapping(pageWidth, pageHeight float64) FieldMapping {
	centerX := pageWidth / 2
	centerY := pageHeight / 2

	return FieldMapping{
		"first_name":       {X: centerX - 100, Y: centerY + 50, FontSize: 24, Color: "#000000"},
		"last_name":        {X: centerX + 20, Y: centerY + 50, FontSize: 24, Color: "#000000"},
		"amount":           {X: centerX - 50, Y: centerY, FontSize: 20, Color: "#ff0000"},
		"issue_date":       {X: centerX - 100, Y: centerY - 50, FontSize: 14, Color: "#666666"},
		"expires_at":       {X: centerX - 100, Y: centerY - 80, FontSize: 12, Color: "#666666"},
		"certificate_code": {X: 50, Y: 50, FontSize: 10, Color: "#999999"},
		"message":          {X: centerX - 200, Y: centerY - 120, FontSize: 14, Color: "#333333", MaxWidth: 400},
		"from_name":        {X: centerX - 50, Y: centerY - 200, FontSize: 16, Color: "#000000"},
	}
}

// ParseHexColor accepts #RRGGBB (leading # optional) and reports ok=false on
// any other shape so callers can fall back to black.
func ParseHexColor(color string) (r, g, b int, ok bool) {
	hex := strings.TrimPrefix(color, "#")
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return 0, 0, 0, false
		}
		switch i {
		case 0:
			r = int(v)
		case 1:
			g = int(v)
		case 2:
			b = int(v)
		}
	}
	return r, g, b, true
}

// WrapText splits text into lines by an approximate character width of
// fontSize*0.6 points. Words are never split mid-token; a word longer than
// the budget gets its own line.
func WrapText(text string, maxWidth, fontSize float64) []string {
	if fontSize <= 0 {
		fontSize = 14
	}
	charWidth := fontSize * 0.6
	maxChars := int(math.Floor(maxWidth / charWidth))

	var lines []string
	var current string
	for _, word := range strings.Split(text, " ") {
		if utf8.RuneCountInString(current)+utf8.RuneCountInString(word) <= maxChars {
			if current != "" {
				current += " "
			}
			current += word
		} else {
			if current != "" {
				lines = append(lines, current)
			}
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
