// Package diag runs health checks over a loam-rs project: file layout,
// anchor integrity, entity extraction, registration completeness, and link
// endpoint resolution. The same report backs the doctor command and the
// MCP health tool.
package diag

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/loamworks/loam/internal/introspect"
	"github.com/loamworks/loam/internal/markers"
	"github.com/loamworks/loam/internal/scaffold"
)

// Status of one check.
type Status string

const (
	OK   Status = "ok"
	Warn Status = "warn"
	Fail Status = "fail"
)

// Check is one named result in a report.
type Check struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Report is the full outcome of a project examination.
type Report struct {
	Checks []Check `json:"checks"`
}

func (r *Report) add(name string, s Status, detail string) {
	r.Checks = append(r.Checks, Check{Name: name, Status: s, Detail: detail})
}

// Healthy reports whether no check failed. Warnings do not make a project
// unhealthy.
func (r *Report) Healthy() bool {
	for _, c := range r.Checks {
		if c.Status == Fail {
			return false
		}
	}
	return true
}

// Counts returns the number of ok, warn, and fail checks.
func (r *Report) Counts() (ok, warn, fail int) {
	for _, c := range r.Checks {
		switch c.Status {
		case OK:
			ok++
		case Warn:
			warn++
		case Fail:
			fail++
		}
	}
	return
}

// Write renders the report as an aligned text listing.
func (r *Report) Write(out io.Writer) {
	mark := map[Status]string{OK: "ok", Warn: "warn", Fail: "FAIL"}
	for _, c := range r.Checks {
		if c.Detail == "" {
			fmt.Fprintf(out, "  [%4s] %s\n", mark[c.Status], c.Name)
			continue
		}
		fmt.Fprintf(out, "  [%4s] %s: %s\n", mark[c.Status], c.Name, c.Detail)
	}
	ok, warn, fail := r.Counts()
	fmt.Fprintf(out, "\n  %d ok, %d warnings, %d failures\n", ok, warn, fail)
}

// requiredFiles are the backbone of a generated project, relative to the
// project root.
var requiredFiles = []string{
	"Cargo.toml",
	filepath.Join("src", "main.rs"),
	filepath.Join("src", "module.rs"),
	filepath.Join("src", "stores.rs"),
	filepath.Join("src", "entities", "mod.rs"),
}

// Examine runs every check against the project rooted at apiRoot.
func Examine(apiRoot string) *Report {
	r := &Report{}

	for _, rel := range requiredFiles {
		if _, err := os.Stat(filepath.Join(apiRoot, rel)); err != nil {
			r.add("file "+rel, Fail, "missing")
		} else {
			r.add("file "+rel, OK, "")
		}
	}

	buffers := checkAnchors(apiRoot, r)

	model, issues := introspect.Scan(apiRoot)
	for _, iss := range issues {
		r.add("extract "+iss.Subject, Fail, iss.Err.Error())
	}
	if len(model.Entities) == 0 {
		r.add("entities", Warn, "no entities found")
	} else {
		r.add("entities", OK, fmt.Sprintf("%d extracted", len(model.Entities)))
	}

	checkRegistrations(model, buffers, r)
	checkRelations(model, r)
	return r
}

// checkAnchors verifies every catalog anchor survives in its file, and
// returns the file contents for the registration probes.
func checkAnchors(apiRoot string, r *Report) map[markers.FileRole]string {
	buffers := map[markers.FileRole]string{}
	for _, role := range []markers.FileRole{markers.RoleModule, markers.RoleStores} {
		data, err := os.ReadFile(filepath.Join(apiRoot, role.Path()))
		if err != nil {
			continue // the file check above already reported it
		}
		buffers[role] = string(data)
	}
	for _, a := range markers.Catalog {
		buffer, ok := buffers[a.Role]
		if !ok {
			continue
		}
		if _, err := markers.Locate(buffer, a.Token); err != nil {
			r.add("anchor "+a.Name, Warn,
				fmt.Sprintf("%s has no %s marker; automatic registration is unavailable", a.Role.Path(), a.Token))
		} else {
			r.add("anchor "+a.Name, OK, "")
		}
	}
	return buffers
}

// checkRegistrations probes whether each extracted entity is wired through
// every anchor it should appear under.
func checkRegistrations(model *introspect.ProjectModel, buffers map[markers.FileRole]string, r *Report) {
	for _, rec := range model.Entities {
		e := scaffold.NewEntity(rec.Name, nil, nil, false)
		var missing []string
		for _, a := range markers.Catalog {
			buffer, ok := buffers[a.Role]
			if !ok {
				continue
			}
			if _, err := markers.Locate(buffer, a.Token); err != nil {
				continue // unprobeable, already warned
			}
			_, needle := e.AnchorLine(a.Name)
			if !markers.HasLineAfter(buffer, a.Token, needle) {
				missing = append(missing, a.Name)
			}
		}
		if len(missing) > 0 {
			r.add("registration "+rec.Name, Fail,
				fmt.Sprintf("not wired under: %v (run 'loam add entity' or add the lines by hand)", missing))
		} else {
			r.add("registration "+rec.Name, OK, "")
		}
	}
}

// checkRelations resolves both endpoints of every relation against the
// extracted entities. Unresolved endpoints are failures here even though
// extraction and client generation merely skip them.
func checkRelations(model *introspect.ProjectModel, r *Report) {
	for _, rel := range model.Relations {
		name := fmt.Sprintf("link %s->%s", rel.Source, rel.Target)
		var broken []string
		if _, ok := model.Entity(rel.Source); !ok {
			broken = append(broken, "source "+rel.Source)
		}
		if _, ok := model.Entity(rel.Target); !ok {
			broken = append(broken, "target "+rel.Target)
		}
		if len(broken) > 0 {
			r.add(name, Fail, fmt.Sprintf("unknown %v", broken))
		} else {
			r.add(name, OK, "")
		}
	}
}
