package conversion

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/viant/fluxor/model/types"
	schema "github.com/viant/mcp-protocol/schema"
)

// BuildSchema converts an action signature into MCP tool metadata.
func BuildSchema(sig *types.Signature) (schema.Tool, error) {
	inputSchema, err := InputSchema(sig.Input)
	if err != nil {
		return schema.Tool{}, fmt.Errorf("failed to build input schema for %s: %w", sig.Name, err)
	}
	desc := sig.Description
	return schema.Tool{Name: sig.Name, Description: &desc, InputSchema: inputSchema}, nil
}

// InputSchema derives an object schema from a struct (or pointer to struct)
// type. Property definitions produced by ToolInputSchema.Load are kept; names,
// descriptions and the required list are normalised from struct tags.
func InputSchema(t reflect.Type) (schema.ToolInputSchema, error) {
	ret := schema.ToolInputSchema{Type: "object", Properties: map[string]map[string]interface{}{}}
	if t == nil {
		return ret, nil
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return ret, fmt.Errorf("unsupported input kind: %v", t.Kind())
	}

	var loaded schema.ToolInputSchema
	if err := loaded.Load(reflect.New(t).Interface()); err != nil {
		return ret, err
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, omitEmpty := jsonName(field)
		if name == "-" {
			continue
		}
		prop := map[string]interface{}{}
		for k, v := range loaded.Properties[name] {
			prop[k] = v
		}
		if _, ok := prop["type"]; !ok {
			prop["type"] = jsonType(field.Type)
		}
		if description := field.Tag.Get("description"); description != "" {
			prop["description"] = description
		}
		ret.Properties[name] = prop
		if !omitEmpty {
			ret.Required = append(ret.Required, name)
		}
	}
	return ret, nil
}

func jsonName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name, false
	}
	parts := strings.Split(tag, ",")
	name := parts[0]
	if name == "" {
		name = field.Name
	}
	omitEmpty := false
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty
}

func jsonType(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	}
	return "object"
}
