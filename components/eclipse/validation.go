package eclipse

import (
	"bytes"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// catalogSchema describes a single catalog manifest.
const catalogSchema = `{
  "type": "object",
  "required": ["version", "metrics"],
  "properties": {
    "version": {"type": "string"},
    "name": {"type": "string"},
    "metrics": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "title", "value", "status", "progress", "view"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string", "minLength": 1},
          "value": {"type": "string"},
          "status": {"enum": ["green", "yellow", "red"]},
          "progress": {"type": "integer", "minimum": 0, "maximum": 100},
          "target": {"type": "number", "minimum": 0},
          "details": {"type": "string"},
          "trend": {"type": "string"},
          "view": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

const catalogSchemaName = "eclipse-catalog.json"

var defaultCatalogValidator = NewCatalogValidator()

// CatalogValidator validates catalog documents against the manifest schema.
type CatalogValidator struct {
	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// NewCatalogValidator builds a validator backed by jsonschema v5. The schema
// is compiled on first use.
func NewCatalogValidator() *CatalogValidator {
	return &CatalogValidator{}
}

// Validate ensures the document satisfies the catalog schema.
func (v *CatalogValidator) Validate(doc *CatalogDocument) error {
	if doc == nil {
		return fmt.Errorf("eclipse: catalog document is nil")
	}
	schema, err := v.schema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("eclipse: marshal catalog: %w", err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("eclipse: normalize catalog: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("eclipse: catalog failed validation: %w", err)
	}
	return nil
}

func (v *CatalogValidator) schema() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(catalogSchemaName, bytes.NewReader([]byte(catalogSchema))); err != nil {
			v.err = fmt.Errorf("eclipse: load catalog schema: %w", err)
			return
		}
		v.compiled, v.err = compiler.Compile(catalogSchemaName)
		if v.err != nil {
			v.err = fmt.Errorf("eclipse: compile catalog schema: %w", v.err)
		}
	})
	return v.compiled, v.err
}
