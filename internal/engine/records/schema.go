// internal/engine/records/schema.go
package records

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// rowSchema validates one coerced customer row before it enters the
// prepared set. Coercion runs first, so types here are already settled.
const rowSchema = `{
	"type": "object",
	"required": ["customer_id", "recency", "frequency", "monetary", "segment"],
	"properties": {
		"customer_id": {"type": "string", "minLength": 1},
		"recency":     {"type": "number", "minimum": 0},
		"frequency":   {"type": "number", "minimum": 0},
		"monetary":    {"type": "number", "minimum": 0},
		"segment":     {"type": "integer", "minimum": 0}
	}
}`

var compiledRowSchema *gojsonschema.Schema

func init() {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(rowSchema))
	if err != nil {
		panic(fmt.Sprintf("invalid row schema: %v", err))
	}
	compiledRowSchema = schema
}

// validateRow checks one coerced row against the row schema and returns
// a joined description of the violations, empty when the row is valid.
func validateRow(row map[string]interface{}) (bool, string) {
	result, err := compiledRowSchema.Validate(gojsonschema.NewGoLoader(row))
	if err != nil {
		return false, err.Error()
	}
	if result.Valid() {
		return true, ""
	}

	var reasons []string
	for _, desc := range result.Errors() {
		reasons = append(reasons, desc.String())
	}
	return false, strings.Join(reasons, "; ")
}
