package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"shipperizer/internal/domain"
)

// JSONCodec handles the element list as JSON
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports a snapshot from a JSON element list
func (c *JSONCodec) Parse(r io.Reader) (domain.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to read JSON: %w", err)
	}
	return parseJSON(data)
}

func parseJSON(data []byte) (domain.Snapshot, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Snapshot{}, &domain.MalformedImportError{Reason: "invalid JSON", Cause: err}
	}
	if err := ValidateDocument(doc); err != nil {
		return domain.Snapshot{}, &domain.MalformedImportError{Reason: "schema validation failed", Cause: err}
	}

	var elems []Element
	if err := json.Unmarshal(data, &elems); err != nil {
		return domain.Snapshot{}, &domain.MalformedImportError{Reason: "invalid element list", Cause: err}
	}
	return FromElements(elems)
}

// Export writes the snapshot as an indented JSON element list
func (c *JSONCodec) Export(snap domain.Snapshot, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(ToElements(snap)); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// Marshal encodes a snapshot as a compact JSON element list
func Marshal(snap domain.Snapshot) ([]byte, error) {
	data, err := json.Marshal(ToElements(snap))
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a JSON element list produced by Marshal or Export
func Unmarshal(data []byte) (domain.Snapshot, error) {
	return parseJSON(data)
}
