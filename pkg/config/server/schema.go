package server

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// NewSchemaReflector returns a reflector that only marks fields tagged
// jsonschema:"required" as required, and expands the root object.
func NewSchemaReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
	}
}

// GenerateSchema reflects MCPServerConfigFile into an indented JSON schema.
func GenerateSchema(reflector *jsonschema.Reflector, title string) ([]byte, error) {
	schema := reflector.Reflect(&MCPServerConfigFile{})
	schema.Title = title

	return json.MarshalIndent(schema, "", "  ")
}
