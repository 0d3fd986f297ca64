package tsclient

import (
	"fmt"

	"github.com/loamworks/loam/internal/introspect"
)

// typeMap translates every supported field type token to its TypeScript
// counterpart. The map is total over introspect.FieldTypes; an unmapped
// token is an emission error, never a silent `any`.
var typeMap = map[string]string{
	"String": "string",
	"f64":    "number",
	"f32":    "number",
	"i32":    "number",
	"i64":    "number",
	"u32":    "number",
	"u64":    "number",
	"bool":   "boolean",
	"Uuid":   "string",
}

// tsType maps one field's base token. Optionality is rendered at the field
// site (`?` plus `| null`), not here.
func tsType(f introspect.FieldDescriptor) (string, error) {
	ts, ok := typeMap[f.Type]
	if !ok {
		return "", fmt.Errorf("field %q: no TypeScript mapping for type %q", f.Name, f.Type)
	}
	return ts, nil
}
