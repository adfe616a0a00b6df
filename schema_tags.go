package lanes

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

// SchemaFor generates a JSON Schema for struct type T by reflecting over
// its exported fields and the following tags:
//
//	json:"name"      - property name (required for the field to be included)
//	desc:"text"      - property description
//	required:"true"  - marks the field as required
//	enum:"a,b,c"     - allowed string values (comma-separated)
//	min:"0"          - minimum value (numbers)
//	max:"100"        - maximum value (numbers)
//	minLength:"1"    - minimum string length
//	maxLength:"100"  - maximum string length
//	pattern:"regex"  - string pattern
//	minItems:"1"     - minimum array items
//	maxItems:"10"    - maximum array items
//
// A field with no json tag (or `json:"-"`) is omitted from the schema.
func SchemaFor[T any]() (json.RawMessage, error) {
	var zero T
	t := reflect.TypeOf(zero)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	schema := map[string]any{"type": "object"}
	if t == nil || t.Kind() != reflect.Struct {
		schema["properties"] = map[string]any{}
		return json.Marshal(schema)
	}

	props, required := tagPropertiesFor(t)
	schema["properties"] = props
	if len(required) > 0 {
		schema["required"] = required
	}
	return json.Marshal(schema)
}

// MustSchemaFor is like SchemaFor but panics on error.
func MustSchemaFor[T any]() json.RawMessage {
	schema, err := SchemaFor[T]()
	if err != nil {
		panic(err)
	}
	return schema
}

// tagPropertiesFor walks a struct type's exported fields, returning the
// JSON Schema `properties` map and the list of required field names.
func tagPropertiesFor(t reflect.Type) (map[string]any, []string) {
	props := make(map[string]any)
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name := strings.Split(jsonTag, ",")[0]
		if name == "" {
			continue
		}

		props[name] = tagPropertyDef(field)
		if field.Tag.Get("required") == "true" {
			required = append(required, name)
		}
	}

	return props, required
}

// tagPropertyDef builds the JSON Schema property object for a single
// struct field from its Go type and annotation tags.
func tagPropertyDef(field reflect.StructField) map[string]any {
	prop := map[string]any{"type": jsonSchemaType(field.Type)}

	if desc := field.Tag.Get("desc"); desc != "" {
		prop["description"] = desc
	}
	if enum := field.Tag.Get("enum"); enum != "" {
		values := strings.Split(enum, ",")
		anyValues := make([]any, len(values))
		for i, v := range values {
			anyValues[i] = v
		}
		prop["enum"] = anyValues
	}
	if min, ok := parseFloatTag(field, "min"); ok {
		prop["minimum"] = min
	}
	if max, ok := parseFloatTag(field, "max"); ok {
		prop["maximum"] = max
	}
	if v, ok := parseIntTag(field, "minLength"); ok {
		prop["minLength"] = v
	}
	if v, ok := parseIntTag(field, "maxLength"); ok {
		prop["maxLength"] = v
	}
	if v, ok := parseIntTag(field, "minItems"); ok {
		prop["minItems"] = v
	}
	if v, ok := parseIntTag(field, "maxItems"); ok {
		prop["maxItems"] = v
	}
	if pattern := field.Tag.Get("pattern"); pattern != "" {
		prop["pattern"] = pattern
	}
	if def := field.Tag.Get("default"); def != "" {
		prop["default"] = def
	}

	t := field.Type
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		prop["items"] = map[string]any{"type": jsonSchemaType(t.Elem())}
	}

	return prop
}

func jsonSchemaType(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return "string"
	}
}

func parseFloatTag(field reflect.StructField, tag string) (float64, bool) {
	raw := field.Tag.Get(tag)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseIntTag(field reflect.StructField, tag string) (int, bool) {
	raw := field.Tag.Get(tag)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
