// Package schema is a plugin that validates every stored value against a
// JSON Schema carried in the entity metadata under "schema". Entities
// without a schema are not tapped.
//
// Taps run after the value is stored and subscribers are notified, so a
// violation is reported to the caller of Set but does not undo the write.
package schema

import (
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/entity/plugin"
	"github.com/xeipuuv/gojsonschema"
)

// Name is the catalog name of the plugin.
const Name = "schema"

// MetadataKey holds the schema: a JSON string, []byte, or a map.
const MetadataKey = "schema"

// Plugin returns the validating plugin.
func Plugin() plugin.Plugin {
	ignore := func(meta plugin.Metadata) bool { return !meta.Has(MetadataKey) }
	validate := func(t plugin.Target, meta plugin.Metadata) error {
		if !t.Ready() {
			return nil
		}
		return Validate(meta[MetadataKey], t.Snapshot())
	}
	return plugin.Plugin{
		Name:             Name,
		OnInit:           validate,
		OnSet:            validate,
		ShouldIgnoreInit: ignore,
		ShouldIgnoreSet:  ignore,
	}
}

// Validate checks value against schema.
func Validate(schema, value any) error {
	loader, err := schemaLoader(schema)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(loader, gojsonschema.NewGoLoader(value))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidValue, strings.Join(violations, "; "))
	}
	return nil
}

func schemaLoader(schema any) (gojsonschema.JSONLoader, error) {
	switch s := schema.(type) {
	case string:
		return gojsonschema.NewStringLoader(s), nil
	case []byte:
		return gojsonschema.NewBytesLoader(s), nil
	case map[string]any:
		return gojsonschema.NewGoLoader(s), nil
	case plugin.Metadata:
		return gojsonschema.NewGoLoader(map[string]any(s)), nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidSchema, schema)
	}
}
