package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/loamworks/loam/internal/naming"
	"github.com/loamworks/loam/internal/workspace"
	"github.com/loamworks/loam/internal/writer"
)

// Project describes a workspace to generate.
type Project struct {
	Name string // snake_case workspace and crate name
	Port int
}

// NewProject normalizes a raw project name and applies the default port.
func NewProject(rawName string, port int) Project {
	if port == 0 {
		port = 3000
	}
	return Project{Name: naming.Snake(rawName), Port: port}
}

// projectFiles maps each generated backend file, relative to the api
// directory, to its template.
var projectFiles = []struct{ file, tmpl string }{
	{"Cargo.toml", "project/Cargo.toml"},
	{filepath.Join("src", "main.rs"), "project/main.rs"},
	{filepath.Join("src", "module.rs"), "project/module.rs"},
	{filepath.Join("src", "stores.rs"), "project/stores.rs"},
	{filepath.Join("src", "entities", "mod.rs"), "project/entities_mod.rs"},
	{filepath.Join("config", "links.yaml"), "project/links.yaml"},
	{".gitignore", "project/gitignore"},
}

// CreateProject generates a fresh workspace at dir: the loam.yaml marker
// plus the api backend skeleton with all insertion anchors in place. dir
// must not already contain a workspace.
func CreateProject(w writer.Writer, dir string, p Project) error {
	marker := filepath.Join(dir, workspace.ConfigFile)
	if _, err := os.Stat(marker); err == nil {
		return fmt.Errorf("%s already exists in %s", workspace.ConfigFile, dir)
	}

	cfg := workspace.Config{
		Name: p.Name,
		API:  workspace.APIConfig{Path: "api", Port: p.Port},
	}
	if err := w.MkdirAll(dir); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := workspace.Save(w, marker, &cfg); err != nil {
		return err
	}

	apiRoot := filepath.Join(dir, cfg.API.Path)
	for _, sub := range []string{
		filepath.Join("src", "entities"),
		"config",
	} {
		if err := w.MkdirAll(filepath.Join(apiRoot, sub)); err != nil {
			return fmt.Errorf("create %s: %w", sub, err)
		}
	}
	for _, pf := range projectFiles {
		content, err := render(pf.tmpl, p)
		if err != nil {
			return err
		}
		if err := w.WriteFile(filepath.Join(apiRoot, pf.file), content); err != nil {
			return fmt.Errorf("write %s: %w", pf.file, err)
		}
	}
	return nil
}
