package jsearch

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// responseSchema pins down only the top-level envelope. Individual listings
// vary too much to be worth constraining.
const responseSchema = `{
  "type": "object",
  "required": ["data"],
  "properties": {
    "status": {"type": "string"},
    "request_id": {"type": "string"},
    "data": {
      "type": "array",
      "items": {"type": "object"}
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("search_response.json", strings.NewReader(responseSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("search_response.json")
})

// validateEnvelope checks a decoded response body against responseSchema.
func validateEnvelope(doc any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("response does not match schema: %w", err)
	}
	return nil
}
