package cli

import (
	"encoding/json"

	"contact-picker/internal/format"
)

// envelope is the JSON shape every command prints: {"data": ..., "meta": ..., "_hints": [...]}.
type envelope struct {
	Data  any            `json:"data"`
	Meta  map[string]any `json:"meta,omitempty"`
	Hints []string       `json:"_hints,omitempty"`
}

// Text renders only the payload; --format text is for humans.
func (e envelope) Text() string {
	if t, ok := e.Data.(format.Texter); ok {
		return t.Text()
	}
	b, err := json.MarshalIndent(e.Data, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(b)
}
