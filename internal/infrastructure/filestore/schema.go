package filestore

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Persisted record collections are a trust boundary: the files are shared
// with the approval workflow and can be hand-edited, so every load is
// validated against a schema before the bytes are trusted.

const approvalSchemaJSON = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["approved_at", "source", "recommendation"],
    "properties": {
      "id": {"type": "string"},
      "approved_at": {"type": "string"},
      "source": {"type": "string"},
      "completed": {"type": "boolean"},
      "completed_at": {"type": "string"},
      "recommendation": {"type": "object"}
    }
  }
}`

const rejectionSchemaJSON = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["rejected_at", "source", "recommendation"],
    "properties": {
      "id": {"type": "string"},
      "rejected_at": {"type": "string"},
      "source": {"type": "string"},
      "recommendation": {"type": "object"}
    }
  }
}`

func compileSchema(name, schemaJSON string) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s schema: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("failed to add %s schema resource: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s schema: %w", name, err)
	}
	return schema, nil
}
