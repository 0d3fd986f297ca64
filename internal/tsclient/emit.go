// Package tsclient renders a project model into a self-contained TypeScript
// API client. The output depends only on the platform fetch primitive and
// is byte-stable for a given model: entities in model (alphabetical) order,
// type declarations before operations, relation traversals last.
package tsclient

import (
	"fmt"
	"strings"

	"github.com/loamworks/loam/internal/introspect"
	"github.com/loamworks/loam/internal/naming"
)

const header = `// Generated by loam. Do not edit.
//
// Typed client for this project's REST API. No runtime dependencies
// beyond fetch.
`

const clientPreamble = `export class ApiClient {
  constructor(private baseUrl: string = "") {}

  private async request<T>(method: string, path: string, body?: unknown): Promise<T> {
    const res = await fetch(this.baseUrl + path, {
      method,
      headers: { "Content-Type": "application/json" },
      body: body === undefined ? undefined : JSON.stringify(body),
    });
    if (!res.ok) {
      throw new Error(method + " " + path + " failed: " + res.status);
    }
    if (res.status === 204) {
      return undefined as T;
    }
    return (await res.json()) as T;
  }
`

// Emit renders the client artifact for model.
func Emit(model *introspect.ProjectModel) (string, error) {
	var b strings.Builder
	b.WriteString(header)

	for _, e := range model.Entities {
		if err := writeInterfaces(&b, e); err != nil {
			return "", fmt.Errorf("entity %s: %w", e.Name, err)
		}
	}

	b.WriteString("\n")
	b.WriteString(clientPreamble)

	for _, e := range model.Entities {
		writeOperations(&b, e)
	}
	for _, r := range model.Relations {
		writeTraversal(&b, model, r)
	}

	b.WriteString("}\n")
	return b.String(), nil
}

// writeInterfaces emits the three declarations for one entity: the full
// record, the creation input, and the update input with every field
// optional.
func writeInterfaces(b *strings.Builder, e introspect.EntityRecord) error {
	fmt.Fprintf(b, "\nexport interface %s {\n", e.Pascal)
	b.WriteString("  id: string;\n")
	for _, f := range e.Fields {
		line, err := fieldDecl(f, false)
		if err != nil {
			return err
		}
		b.WriteString(line)
	}
	b.WriteString("  created_at: string;\n")
	b.WriteString("  updated_at: string;\n")
	b.WriteString("}\n")

	fmt.Fprintf(b, "\nexport interface %sCreate {\n", e.Pascal)
	for _, f := range e.Fields {
		line, err := fieldDecl(f, false)
		if err != nil {
			return err
		}
		b.WriteString(line)
	}
	b.WriteString("}\n")

	fmt.Fprintf(b, "\nexport interface %sUpdate {\n", e.Pascal)
	for _, f := range e.Fields {
		line, err := fieldDecl(f, true)
		if err != nil {
			return err
		}
		b.WriteString(line)
	}
	b.WriteString("}\n")

	return nil
}

// fieldDecl renders one interface field. Optional (Option<T>) fields widen
// to `name?: T | null`; forceOptional marks every field with `?` for the
// update input.
func fieldDecl(f introspect.FieldDescriptor, forceOptional bool) (string, error) {
	ts, err := tsType(f)
	if err != nil {
		return "", err
	}
	mark := ""
	if f.Optional || forceOptional {
		mark = "?"
	}
	if f.Optional {
		ts += " | null"
	}
	return fmt.Sprintf("  %s%s: %s;\n", f.Name, mark, ts), nil
}

// writeOperations emits the five CRUD operations for one entity.
func writeOperations(b *strings.Builder, e introspect.EntityRecord) {
	plural := e.Plural
	pluralPascal := naming.Pascal(plural)

	fmt.Fprintf(b, "\n  // %s\n", e.Name)
	fmt.Fprintf(b, "  async list%s(): Promise<%s[]> {\n", pluralPascal, e.Pascal)
	fmt.Fprintf(b, "    return this.request(\"GET\", \"/%s\");\n  }\n", plural)
	fmt.Fprintf(b, "  async get%s(id: string): Promise<%s> {\n", e.Pascal, e.Pascal)
	fmt.Fprintf(b, "    return this.request(\"GET\", `/%s/${id}`);\n  }\n", plural)
	fmt.Fprintf(b, "  async create%s(input: %sCreate): Promise<%s> {\n", e.Pascal, e.Pascal, e.Pascal)
	fmt.Fprintf(b, "    return this.request(\"POST\", \"/%s\", input);\n  }\n", plural)
	fmt.Fprintf(b, "  async update%s(id: string, input: %sUpdate): Promise<%s> {\n", e.Pascal, e.Pascal, e.Pascal)
	fmt.Fprintf(b, "    return this.request(\"PUT\", `/%s/${id}`, input);\n  }\n", plural)
	fmt.Fprintf(b, "  async delete%s(id: string): Promise<void> {\n", e.Pascal)
	fmt.Fprintf(b, "    await this.request(\"DELETE\", `/%s/${id}`);\n  }\n", plural)
}

// writeTraversal emits one relation-traversal operation on the source
// entity's collection. The return type narrows to the target's record when
// the target is a known entity.
func writeTraversal(b *strings.Builder, model *introspect.ProjectModel, r introspect.RelationRecord) {
	source, ok := model.Entity(r.Source)
	if !ok {
		// Unresolved source: no collection to hang the route on. Doctor
		// reports these; the emitter just skips.
		return
	}

	result := "unknown"
	if target, ok := model.Entity(r.Target); ok {
		result = target.Pascal
	}

	fmt.Fprintf(b, "\n  // %s -> %s (%s)\n", r.Source, r.Target, r.LinkType)
	fmt.Fprintf(b, "  async list%sFor%s(id: string): Promise<%s[]> {\n",
		naming.Pascal(r.ForwardRoute), source.Pascal, result)
	fmt.Fprintf(b, "    return this.request(\"GET\", `/%s/${id}/%s`);\n  }\n",
		source.Plural, r.ForwardRoute)
}
