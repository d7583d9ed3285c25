package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Alternative is a secondary diagnosis with its confidence percentage
type Alternative struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// Data is the diagnostic result a report is generated from
type Data struct {
	Date          string        `json:"date"`
	Time          string        `json:"time"`
	Condition     string        `json:"condition"`
	Confidence    float64       `json:"confidence"`
	Description   string        `json:"description"`
	Urgency       string        `json:"urgency"`
	ModelUsed     string        `json:"modelUsed"`
	ImageData     string        `json:"imageData"`
	Alternatives  []Alternative `json:"alternatives,omitempty"`
	AIExplanation string        `json:"aiExplanation,omitempty"`
}

// Validate checks the fields every report needs
func (d *Data) Validate() error {
	var missing []string
	if strings.TrimSpace(d.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(d.Time) == "" {
		missing = append(missing, "time")
	}
	if strings.TrimSpace(d.Condition) == "" {
		missing = append(missing, "condition")
	}
	if strings.TrimSpace(d.ModelUsed) == "" {
		missing = append(missing, "modelUsed")
	}
	if strings.TrimSpace(d.ImageData) == "" {
		missing = append(missing, "imageData")
	}
	if len(missing) > 0 {
		return NewError(KindInvalidInput, "missing required report fields: "+strings.Join(missing, ", "), nil)
	}

	if !strings.HasPrefix(d.ImageData, "data:image/") {
		return NewError(KindInvalidInput, "imageData must be an image data URI", nil)
	}
	if d.Confidence < 0 || d.Confidence > 100 {
		return NewError(KindInvalidInput, fmt.Sprintf("confidence %v is outside 0-100", d.Confidence), nil)
	}
	for i, alt := range d.Alternatives {
		if strings.TrimSpace(alt.Class) == "" {
			return NewError(KindInvalidInput, fmt.Sprintf("alternative %d has no class", i), nil)
		}
		if alt.Confidence < 0 || alt.Confidence > 100 {
			return NewError(KindInvalidInput, fmt.Sprintf("alternative %d confidence %v is outside 0-100", i, alt.Confidence), nil)
		}
	}
	return nil
}

// Decode reads a JSON report record
func Decode(r io.Reader) (Data, error) {
	var d Data
	dec := json.NewDecoder(r)
	if err := dec.Decode(&d); err != nil {
		return Data{}, NewError(KindInvalidInput, "invalid report data", err)
	}
	return d, nil
}
