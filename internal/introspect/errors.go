package introspect

import "fmt"

// StructuralMismatchError reports input text that does not match the one
// supported macro or descriptor shape. The hint names what the reader
// expected at the failure point.
type StructuralMismatchError struct {
	Path string
	Hint string
}

func (e *StructuralMismatchError) Error() string {
	return fmt.Sprintf("%s: structural mismatch: %s", e.Path, e.Hint)
}

// UnsupportedTypeError reports a field whose declared type token is outside
// the fixed supported set. It aborts that entity's extraction only.
type UnsupportedTypeError struct {
	Path  string
	Field string
	Token string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("%s: field %q has unsupported type %q (supported: String, f64, f32, i32, i64, u32, u64, bool, Uuid, Option<T>)",
		e.Path, e.Field, e.Token)
}

// Issue is a per-entity or per-link failure collected during a scan.
// Issues are isolated: one bad entity never aborts its siblings.
type Issue struct {
	Subject string // entity name, directory, or link position
	Err     error
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %v", i.Subject, i.Err)
}
