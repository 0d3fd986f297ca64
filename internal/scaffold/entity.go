package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/loamworks/loam/internal/introspect"
	"github.com/loamworks/loam/internal/markers"
	"github.com/loamworks/loam/internal/naming"
	"github.com/loamworks/loam/internal/writer"
)

// Field is one declared entity field as it appears in the model macro.
type Field struct {
	Name     string
	Type     string // base type token, without Option<>
	Optional bool
}

// Decl renders the field's declared type token.
func (f Field) Decl() string {
	if f.Optional {
		return "Option<" + f.Type + ">"
	}
	return f.Type
}

// Entity carries everything needed to render and register one entity.
type Entity struct {
	Name      string // snake_case
	Pascal    string
	Plural    string
	Fields    []Field
	Indexed   []string
	Validated bool
}

// NewEntity derives the name forms from a raw entity name.
func NewEntity(rawName string, fields []Field, indexed []string, validated bool) Entity {
	snake := naming.Snake(rawName)
	return Entity{
		Name:      snake,
		Pascal:    naming.Pascal(snake),
		Plural:    naming.Plural(snake),
		Fields:    fields,
		Indexed:   indexed,
		Validated: validated,
	}
}

// ParseFields parses a comma-separated field spec like
// "sku:String,price:f64,note:Option<String>". An empty spec is a valid
// empty field list: the framework injects id and the timestamps, so an
// entity needs no declared fields of its own.
func ParseFields(spec string) ([]Field, error) {
	fields := []Field{}
	seen := map[string]bool{}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, token, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid field %q: expected name:Type", part)
		}
		name = strings.TrimSpace(name)
		token = strings.TrimSpace(token)
		if name == "" || token == "" {
			return nil, fmt.Errorf("invalid field %q: expected name:Type", part)
		}
		if introspect.Reserved(name) {
			return nil, fmt.Errorf("field %q is added automatically and cannot be declared", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate field %q", name)
		}
		if !introspect.SupportedType(token) {
			return nil, fmt.Errorf("field %q has unsupported type %q (supported: %s, each optionally Option<...>)",
				name, token, strings.Join(introspect.FieldTypes, ", "))
		}
		base, optional := introspect.BaseType(token)
		seen[name] = true
		fields = append(fields, Field{Name: name, Type: base, Optional: optional})
	}
	return fields, nil
}

// entityFiles maps each generated file inside the entity directory to its
// template.
var entityFiles = []struct{ file, tmpl string }{
	{"model.rs", "entity/model.rs"},
	{"store.rs", "entity/store.rs"},
	{"handlers.rs", "entity/handlers.rs"},
	{"descriptor.rs", "entity/descriptor.rs"},
	{"mod.rs", "entity/mod.rs"},
}

// CreateEntity renders the entity directory under apiRoot/src/entities and
// declares the module in entities/mod.rs. It refuses to overwrite an
// existing entity.
func CreateEntity(w writer.Writer, apiRoot string, e Entity) error {
	for _, idx := range e.Indexed {
		found := false
		for _, f := range e.Fields {
			if f.Name == idx {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("indexed field %q is not declared", idx)
		}
	}

	dir := filepath.Join(apiRoot, "src", "entities", e.Name)
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("entity %q already exists at %s", e.Name, dir)
	}
	if err := w.MkdirAll(dir); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	for _, ef := range entityFiles {
		content, err := render(ef.tmpl, e)
		if err != nil {
			return err
		}
		if err := w.WriteFile(filepath.Join(dir, ef.file), content); err != nil {
			return fmt.Errorf("write %s: %w", ef.file, err)
		}
	}
	return declareModule(w, apiRoot, e.Name)
}

// declareModule adds "pub mod <name>;" to src/entities/mod.rs, keeping the
// declarations sorted.
func declareModule(w writer.Writer, apiRoot, name string) error {
	modPath := filepath.Join(apiRoot, "src", "entities", "mod.rs")
	decl := "pub mod " + name + ";"

	data, err := os.ReadFile(modPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("read %s: %w", modPath, err)
		}
		return w.WriteFile(modPath, decl+"\n")
	}
	original := string(data)

	var head, decls, tail []string
	for _, line := range strings.Split(strings.TrimRight(original, "\n"), "\n") {
		switch {
		case strings.HasPrefix(strings.TrimSpace(line), "pub mod "):
			if strings.TrimSpace(line) == decl {
				return nil
			}
			decls = append(decls, strings.TrimSpace(line))
		case len(decls) == 0:
			head = append(head, line)
		default:
			tail = append(tail, line)
		}
	}
	decls = append(decls, decl)
	sort.Strings(decls)

	lines := append(append(head, decls...), tail...)
	return w.UpdateFile(modPath, original, strings.Join(lines, "\n")+"\n")
}

// Registration is the outcome of wiring one entity into the generated
// module and stores files.
type Registration struct {
	// Applied lists "file: anchor" pairs that received a new line.
	Applied []string
	// Legacy lists files whose anchors are gone, with the lines the
	// caller has to add by hand.
	Legacy []LegacyFile
}

// LegacyFile describes a registration target that has drifted from the
// generated shape and must be edited manually.
type LegacyFile struct {
	Path  string
	Lines []string
}

// AnchorLine returns the line and idempotency needle for one catalog
// anchor. Each needle is a prefix of the line it guards, so a name sharing
// a suffix with another entity ("item" next to "order_item") never matches
// its sibling's registration.
func (e Entity) AnchorLine(name string) (line, needle string) {
	switch name {
	case "entity_types":
		return fmt.Sprintf("%q,", e.Name), fmt.Sprintf("%q,", e.Name)
	case "register_entities":
		return fmt.Sprintf("registry.register(Box::new(%sDescriptor { store: stores.%s_store.clone() }));", e.Pascal, e.Name),
			"registry.register(Box::new(" + e.Pascal + "Descriptor"
	case "entity_fetchers":
		return fmt.Sprintf("%q => Some(Box::new(EntityFetcherImpl::new(stores.%s_store.clone()))),", e.Name, e.Name),
			fmt.Sprintf("%q => Some(Box::new(EntityFetcherImpl", e.Name)
	case "entity_creators":
		return fmt.Sprintf("%q => Some(Box::new(EntityCreatorImpl::new(stores.%s_store.clone()))),", e.Name, e.Name),
			fmt.Sprintf("%q => Some(Box::new(EntityCreatorImpl", e.Name)
	case "store_fields":
		return fmt.Sprintf("pub %s_store: Arc<InMemoryDataService<%s>>,", e.Name, e.Pascal),
			"pub " + e.Name + "_store:"
	case "store_init_vars":
		return fmt.Sprintf("let %s_store = Arc::new(InMemoryDataService::new());", e.Name),
			"let " + e.Name + "_store ="
	case "store_init_fields":
		return e.Name + "_store,", e.Name + "_store,"
	}
	return "", ""
}

// importLine is the use declaration injected into each role file.
func (e Entity) importLine(role markers.FileRole) string {
	switch role {
	case markers.RoleModule:
		return fmt.Sprintf("use crate::entities::%s::descriptor::%sDescriptor;", e.Name, e.Pascal)
	case markers.RoleStores:
		return fmt.Sprintf("use crate::entities::%s::model::%s;", e.Name, e.Pascal)
	}
	return ""
}

// RegisterEntity threads the entity through every anchor in the generated
// module and stores files. Files whose anchors have been removed are
// reported as legacy instead of failing the whole registration.
func RegisterEntity(w writer.Writer, apiRoot string, e Entity) (*Registration, error) {
	reg := &Registration{}
	for _, role := range []markers.FileRole{markers.RoleModule, markers.RoleStores} {
		if err := registerInRole(w, apiRoot, e, role, reg); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func registerInRole(w writer.Writer, apiRoot string, e Entity, role markers.FileRole, reg *Registration) error {
	path := filepath.Join(apiRoot, role.Path())
	rel := role.Path()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			reg.Legacy = append(reg.Legacy, LegacyFile{Path: rel, Lines: e.roleLines(role)})
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	original := string(data)
	buffer := original

	var missing []string
	applied := false
	for _, a := range markers.Catalog {
		if a.Role != role {
			continue
		}
		line, needle := e.AnchorLine(a.Name)
		updated, inserted, err := markers.Insert(buffer, a.Token, line, needle)
		if err != nil {
			if errors.Is(err, markers.ErrAnchorNotFound) {
				missing = append(missing, line)
				continue
			}
			return fmt.Errorf("update %s: %w", rel, err)
		}
		buffer = updated
		if inserted {
			applied = true
			reg.Applied = append(reg.Applied, rel+": "+a.Name)
		}
	}

	if len(missing) > 0 {
		lines := append([]string{e.importLine(role)}, missing...)
		reg.Legacy = append(reg.Legacy, LegacyFile{Path: rel, Lines: lines})
	}
	if applied {
		buffer = markers.AddImport(buffer, e.importLine(role))
	}
	if buffer != original {
		if err := w.UpdateFile(path, original, buffer); err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
	}
	return nil
}

// roleLines lists every line the entity contributes to a role file, used
// for manual instructions when the file is missing entirely.
func (e Entity) roleLines(role markers.FileRole) []string {
	lines := []string{e.importLine(role)}
	for _, a := range markers.Catalog {
		if a.Role != role {
			continue
		}
		line, _ := e.AnchorLine(a.Name)
		lines = append(lines, line)
	}
	return lines
}
