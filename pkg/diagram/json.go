package diagram

import (
	"encoding/json"
	"fmt"
	"io"
)

// Document is the JSON form of an export.
type Document struct {
	Diagrams []*Diagram `json:"diagrams"`
}

// WriteJSON encodes diagrams as an indented JSON document and writes it to w.
func WriteJSON(diagrams []*Diagram, w io.Writer) error {
	if diagrams == nil {
		diagrams = []*Diagram{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Document{Diagrams: diagrams}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
