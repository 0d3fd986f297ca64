// Package introspect reconstructs a structural model of a loam-rs project
// from its generated source tree and its link configuration. It is not a
// Rust parser: extraction is anchored on the two shapes the scaffolder
// itself emits (the impl_data_entity! macro and the descriptor's route
// chain), and anything outside those shapes is a reported mismatch, never a
// silent misread.
package introspect

import (
	"strings"

	"github.com/ohler55/ojg/oj"
)

// FieldTypes is the fixed set of declared type tokens an entity field may
// use, optionally wrapped in Option<...>.
var FieldTypes = []string{"String", "f64", "f32", "i32", "i64", "u32", "u64", "bool", "Uuid"}

// reservedFields are injected by the framework on every entity; they are
// excluded from extraction even if a model re-declares them.
var reservedFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// Reserved reports whether the field name is framework-injected and may
// not be declared by callers.
func Reserved(name string) bool {
	return reservedFields[name]
}

// SupportedType reports whether token belongs to the fixed set, unwrapping
// a single Option<...> layer.
func SupportedType(token string) bool {
	base, _ := BaseType(token)
	for _, t := range FieldTypes {
		if t == base {
			return true
		}
	}
	return false
}

// BaseType strips one Option<...> wrapper, returning the inner token and
// whether the field is optional.
func BaseType(token string) (string, bool) {
	if inner, ok := strings.CutPrefix(token, "Option<"); ok {
		if inner, ok := strings.CutSuffix(inner, ">"); ok {
			return strings.TrimSpace(inner), true
		}
	}
	return token, false
}

// FieldDescriptor is one entity field: base type token plus optionality.
type FieldDescriptor struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Optional bool   `json:"optional"`
}

// RouteRecord is one REST route extracted from a descriptor, in declaration
// order. Summary carries the handler name the route dispatches to.
type RouteRecord struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Summary string `json:"summary,omitempty"`
}

// EntityRecord is the normalized form of one entity directory. Built fresh
// on every scan and never mutated afterwards.
type EntityRecord struct {
	Name          string            `json:"name"`
	Pascal        string            `json:"pascal"`
	Plural        string            `json:"plural"`
	Fields        []FieldDescriptor `json:"fields"`
	IndexedFields []string          `json:"indexed_fields"`
	Routes        []RouteRecord     `json:"routes"`
}

// RelationRecord is one typed link between two entity types. Whether Source
// and Target resolve to known entities is a consumer concern (doctor checks
// it); extraction only guarantees both are present.
type RelationRecord struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	LinkType     string `json:"link_type"`
	ForwardRoute string `json:"forward_route"`
	ReverseRoute string `json:"reverse_route"`
}

// ProjectModel is the merged introspection result: entities ordered by
// name, relations in document order with duplicates removed. Immutable once
// built.
type ProjectModel struct {
	Entities  []EntityRecord   `json:"entities"`
	Relations []RelationRecord `json:"relations"`
}

// Entity returns the record for the given snake_case name.
func (m *ProjectModel) Entity(name string) (EntityRecord, bool) {
	for _, e := range m.Entities {
		if e.Name == name {
			return e, true
		}
	}
	return EntityRecord{}, false
}

// JSON renders the model as indented JSON. Entities are already sorted, so
// the output is byte-stable for the same input tree.
func (m *ProjectModel) JSON() string {
	return oj.JSON(m, 2)
}
