package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://catalog.json"

// documentSchema describes the shape of a catalog file. Graph-level rules
// (duplicates, dangling prerequisites, cycles) are checked by validateItems.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["items"],
  "properties": {
    "version": {"type": "integer", "minimum": 1},
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "kind", "subject", "difficulty"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string"},
          "kind": {"type": "string", "minLength": 1},
          "subject": {"type": "string", "minLength": 1},
          "topic": {"type": "string"},
          "difficulty": {"enum": ["beginner", "intermediate", "advanced"]},
          "estimated_minutes": {"type": "integer", "minimum": 0},
          "prerequisites": {"type": "array", "items": {"type": "string"}, "uniqueItems": true},
          "tags": {"type": "array", "items": {"type": "string"}, "uniqueItems": true}
        }
      }
    }
  }
}`

var (
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
	compileSchemaOnce sync.Once
)

// documentValidator returns the compiled catalog schema.
func documentValidator() (*jsonschema.Schema, error) {
	compileSchemaOnce.Do(func() {
		def, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchema))
		if err != nil {
			compiledSchemaErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compiledSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compiledSchemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, compiledSchemaErr
}
