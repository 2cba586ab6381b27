package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"shipperizer/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles the element list as YAML
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse imports a snapshot from a YAML element list. The document is
// re-encoded as JSON so both formats share one schema and one decoder.
func (c *YAMLCodec) Parse(r io.Reader) (domain.Snapshot, error) {
	var doc any
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			doc = []any{}
		} else {
			return domain.Snapshot{}, &domain.MalformedImportError{Reason: "invalid YAML", Cause: err}
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return domain.Snapshot{}, &domain.MalformedImportError{Reason: "YAML is not representable as JSON", Cause: err}
	}
	return parseJSON(data)
}

// Export writes the snapshot as a YAML element list
func (c *YAMLCodec) Export(snap domain.Snapshot, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(ToElements(snap)); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
