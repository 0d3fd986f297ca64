package introspect

import (
	"strings"

	"github.com/loamworks/loam/internal/naming"
)

// ParseEntityModel extracts the entity definition from the content of a
// model.rs file. The reader accepts exactly one shape,
//
//	impl_data_entity!(Pascal, "snake", ["idx", ...], { field: Type, ... });
//
// (or impl_data_entity_validated!) written as a single balanced statement.
// Any deviation fails with a StructuralMismatchError; an out-of-set field
// type fails with an UnsupportedTypeError. There is no partial result.
func ParseEntityModel(content, path string) (EntityRecord, error) {
	r := &macroReader{src: content, path: path}

	if err := r.findMacro(); err != nil {
		return EntityRecord{}, err
	}

	if err := r.expect('('); err != nil {
		return EntityRecord{}, err
	}

	pascal := r.ident()
	if pascal == "" {
		return EntityRecord{}, r.fail("expected entity type name after '('")
	}
	if err := r.expect(','); err != nil {
		return EntityRecord{}, err
	}

	name, err := r.stringLit()
	if err != nil {
		return EntityRecord{}, err
	}
	if err := r.expect(','); err != nil {
		return EntityRecord{}, err
	}

	indexed, err := r.stringList()
	if err != nil {
		return EntityRecord{}, err
	}
	if err := r.expect(','); err != nil {
		return EntityRecord{}, err
	}

	fields, err := r.fieldBlock()
	if err != nil {
		return EntityRecord{}, err
	}

	if err := r.expect(')'); err != nil {
		return EntityRecord{}, err
	}

	return EntityRecord{
		Name:          name,
		Pascal:        pascal,
		Plural:        naming.Plural(name), // overridden by the descriptor when present
		Fields:        fields,
		IndexedFields: indexed,
		Routes:        nil,
	}, nil
}

// macroReader is a cursor over one model.rs buffer. It is a small-grammar
// recursive-descent reader, not an expression parser: it knows commas,
// string literals, one bracket level, and nothing else.
type macroReader struct {
	src  string
	pos  int
	path string
}

const macroName = "impl_data_entity"

func (r *macroReader) fail(hint string) error {
	return &StructuralMismatchError{Path: r.path, Hint: hint}
}

// findMacro positions the cursor just after the `!` of the first
// impl_data_entity! (or _validated!) invocation.
func (r *macroReader) findMacro() error {
	from := 0
	for {
		i := strings.Index(r.src[from:], macroName)
		if i < 0 {
			return r.fail("no " + macroName + "! macro found")
		}
		at := from + i
		if at > 0 && isIdentChar(r.src[at-1]) {
			from = at + 1
			continue
		}
		r.pos = at + len(macroName)
		if strings.HasPrefix(r.src[r.pos:], "_validated") {
			r.pos += len("_validated")
		}
		if r.pos < len(r.src) && isIdentChar(r.src[r.pos]) {
			// Longer identifier, not the macro.
			from = at + 1
			continue
		}
		r.skipSpace()
		if r.pos >= len(r.src) || r.src[r.pos] != '!' {
			return r.fail("expected '!' after " + macroName)
		}
		r.pos++
		return nil
	}
}

func (r *macroReader) skipSpace() {
	for r.pos < len(r.src) {
		switch r.src[r.pos] {
		case ' ', '\t', '\n', '\r':
			r.pos++
		default:
			return
		}
	}
}

func (r *macroReader) expect(c byte) error {
	r.skipSpace()
	if r.pos >= len(r.src) || r.src[r.pos] != c {
		return r.fail("expected '" + string(c) + "'" + r.at())
	}
	r.pos++
	return nil
}

// at formats a short context hint around the cursor for error messages.
func (r *macroReader) at() string {
	rest := r.src[r.pos:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	if len(rest) > 30 {
		rest = rest[:30]
	}
	return " near " + strings.TrimSpace(rest)
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (r *macroReader) ident() string {
	r.skipSpace()
	start := r.pos
	for r.pos < len(r.src) && isIdentChar(r.src[r.pos]) {
		r.pos++
	}
	return r.src[start:r.pos]
}

func (r *macroReader) stringLit() (string, error) {
	if err := r.expect('"'); err != nil {
		return "", err
	}
	end := strings.IndexByte(r.src[r.pos:], '"')
	if end < 0 {
		return "", r.fail("unterminated string literal")
	}
	s := r.src[r.pos : r.pos+end]
	r.pos += end + 1
	return s, nil
}

// stringList reads `["a", "b", ...]`, empty list allowed.
func (r *macroReader) stringList() ([]string, error) {
	if err := r.expect('['); err != nil {
		return nil, err
	}
	var out []string
	for {
		r.skipSpace()
		if r.pos < len(r.src) && r.src[r.pos] == ']' {
			r.pos++
			return out, nil
		}
		s, err := r.stringLit()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		r.skipSpace()
		if r.pos < len(r.src) && r.src[r.pos] == ',' {
			r.pos++
		}
	}
}

// fieldBlock reads `{ name: Type, ... }`. Reserved framework fields are
// dropped; every other field's type must come from the supported set.
func (r *macroReader) fieldBlock() ([]FieldDescriptor, error) {
	if err := r.expect('{'); err != nil {
		return nil, err
	}
	fields := []FieldDescriptor{}
	for {
		r.skipSpace()
		if r.pos < len(r.src) && r.src[r.pos] == '}' {
			r.pos++
			return fields, nil
		}

		name := r.ident()
		if name == "" {
			return nil, r.fail("expected field name" + r.at())
		}
		if err := r.expect(':'); err != nil {
			return nil, err
		}
		token, err := r.typeToken(name)
		if err != nil {
			return nil, err
		}

		if !reservedFields[name] {
			base, optional := BaseType(token)
			fields = append(fields, FieldDescriptor{Name: name, Type: base, Optional: optional})
		}

		r.skipSpace()
		if r.pos < len(r.src) && r.src[r.pos] == ',' {
			r.pos++
		}
	}
}

// typeToken reads one declared type: a bare identifier or ident<ident>.
// Deeper nesting is not a supported shape.
func (r *macroReader) typeToken(field string) (string, error) {
	base := r.ident()
	if base == "" {
		return "", r.fail("expected type for field " + field + r.at())
	}
	token := base
	if r.pos < len(r.src) && r.src[r.pos] == '<' {
		r.pos++
		inner := r.ident()
		if inner == "" {
			return "", r.fail("expected type parameter for field " + field)
		}
		if err := r.expect('>'); err != nil {
			return "", err
		}
		token = base + "<" + inner + ">"
	}
	if !SupportedType(token) {
		return "", &UnsupportedTypeError{Path: r.path, Field: field, Token: token}
	}
	return token, nil
}
