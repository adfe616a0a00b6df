package tool

import (
	"encoding/json"

	lanes "github.com/lanesdev/lanes"
)

// SchemaFor generates a JSON schema from a struct type T.
// This is a convenience re-export of lanes.SchemaFor.
// See lanes.SchemaFor for full documentation.
func SchemaFor[T any]() (json.RawMessage, error) {
	return lanes.SchemaFor[T]()
}

// MustSchemaFor is like SchemaFor but panics on error.
// This is a convenience re-export of lanes.MustSchemaFor.
func MustSchemaFor[T any]() json.RawMessage {
	return lanes.MustSchemaFor[T]()
}
