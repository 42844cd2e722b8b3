// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"

	"cinema-sage/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

// Schema validates job variables against a compiled JSON schema.
type Schema struct {
	schema *gojsonschema.Schema
}

// NewSchema compiles a schema given as a Go map. It fails on a malformed
// schema, so callers build schemas once at startup.
func NewSchema(schemaMap map[string]interface{}) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{schema: compiled}, nil
}

// MustSchema is NewSchema for package-level schemas.
func MustSchema(schemaMap map[string]interface{}) *Schema {
	s, err := NewSchema(schemaMap)
	if err != nil {
		panic(err)
	}
	return s
}

// ValidateJSON checks a raw JSON document. Any violation is reported as a
// non-retryable INVALID_REQUEST listing every failed field.
func (s *Schema) ValidateJSON(document string) error {
	result, err := s.schema.Validate(gojsonschema.NewStringLoader(document))
	if err != nil {
		return errors.NewInvalidRequestError(fmt.Sprintf("malformed variables: %v", err))
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return errors.NewInvalidRequestError(strings.Join(errs, "; "))
	}

	return nil
}
