package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaResource = "navgen.schema.json"

// GenerateSchema reflects the JSON Schema of the configuration file.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		ExpandedStruct:            true,
		Namer:                     definitionName,
		// Use YAML field names for property names
		FieldNameTag: "yaml",
	}

	schema := r.Reflect(&Config{})
	schema.Title = "navgen configuration"
	schema.Description = "Settings for generating Doxygen navigation scripts."

	return json.MarshalIndent(schema, "", "  ")
}

// definitionName prefixes types from other packages with their package name,
// so logging.Config does not shadow the root Config definition.
func definitionName(t reflect.Type) string {
	pkg := t.PkgPath()
	if pkg == "" || pkg == reflect.TypeOf(Config{}).PkgPath() {
		return ""
	}
	base := path.Base(pkg)
	return strings.ToUpper(base[:1]) + base[1:] + t.Name()
}

// SchemaValidator validates configuration against the reflected schema.
type SchemaValidator struct {
	schema *sjsonschema.Schema
}

// NewSchemaValidator compiles the configuration schema.
func NewSchemaValidator() (*SchemaValidator, error) {
	data, err := GenerateSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}

	compiler := sjsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResource, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &SchemaValidator{schema: schema}, nil
}

// Validate validates configuration data against the schema.
func (v *SchemaValidator) Validate(configData interface{}) error {
	jsonData, err := json.Marshal(configData)
	if err != nil {
		return fmt.Errorf("failed to marshal config to JSON for validation: %w", err)
	}

	var dataToValidate interface{}
	if err := json.Unmarshal(jsonData, &dataToValidate); err != nil {
		return fmt.Errorf("failed to unmarshal JSON for validation: %w", err)
	}

	if err := v.schema.Validate(dataToValidate); err != nil {
		if validationErr, ok := err.(*sjsonschema.ValidationError); ok {
			var messages []string
			collectErrors(validationErr, &messages)
			return fmt.Errorf("schema validation failed:\n%s", strings.Join(messages, "\n"))
		}
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func collectErrors(err *sjsonschema.ValidationError, messages *[]string) {
	if err.InstanceLocation != "" || len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		*messages = append(*messages, fmt.Sprintf("- %s: %s", location, err.Message))
	}
	for _, cause := range err.Causes {
		collectErrors(cause, messages)
	}
}
