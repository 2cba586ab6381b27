package codec

import (
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// elementsSchema is the structural contract of an element list. Invariants
// between records (unique ids, one relationship per pair) are checked after
// decoding by domain.Snapshot.Validate.
const elementsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["group", "data"],
    "properties": {
      "group": {"enum": ["nodes", "edges"]},
      "data": {"type": "object"},
      "position": {
        "type": "object",
        "required": ["x", "y"],
        "properties": {
          "x": {"type": "number"},
          "y": {"type": "number"}
        }
      },
      "classes": {"type": "string"}
    },
    "allOf": [
      {
        "if": {"properties": {"group": {"const": "nodes"}}},
        "then": {
          "properties": {
            "data": {
              "required": ["id"],
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "image": {"type": "string"},
                "img": {"type": "string"}
              }
            }
          }
        }
      },
      {
        "if": {"properties": {"group": {"const": "edges"}}},
        "then": {
          "properties": {
            "data": {
              "required": ["source", "target"],
              "anyOf": [{"required": ["kind"]}, {"required": ["rel"]}],
              "properties": {
                "source": {"type": "string", "minLength": 1},
                "target": {"type": "string", "minLength": 1},
                "kind": {"type": "string"},
                "rel": {"type": "string"},
                "merged": {"type": "boolean"}
              }
            }
          }
        }
      }
    ]
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// elementSchema compiles the element list schema once
func elementSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = jsonschema.CompileString("elements.json", elementsSchema)
	})
	return compiledSchema, schemaErr
}

// ValidateDocument checks a decoded JSON document (as produced by
// json.Unmarshal into an any) against the element list schema
func ValidateDocument(doc any) error {
	sch, err := elementSchema()
	if err != nil {
		return err
	}
	return sch.Validate(doc)
}
