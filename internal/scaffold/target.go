package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/loamworks/loam/internal/workspace"
	"github.com/loamworks/loam/internal/writer"
)

// TargetSpec describes one deployment target to scaffold into a workspace.
type TargetSpec struct {
	Type      string
	Framework string
	Dir       string // workspace-relative target directory
}

// NewTargetSpec applies the per-type defaults: webapps land in front/ on
// react, the desktop shell in targets/desktop.
func NewTargetSpec(targetType, framework, dir string) TargetSpec {
	s := TargetSpec{Type: targetType, Framework: framework, Dir: dir}
	if s.Framework == "" {
		s.Framework = "react"
	}
	if s.Dir == "" {
		switch s.Type {
		case workspace.TargetWebapp:
			s.Dir = "front"
		case workspace.TargetDesktop:
			s.Dir = filepath.Join("targets", "desktop")
		}
	}
	return s
}

// webappFiles maps each generated webapp file, relative to the target
// directory, to its template.
var webappFiles = []struct{ file, tmpl string }{
	{"package.json", "webapp/package.json"},
	{"vite.config.ts", "webapp/vite.config.ts"},
	{"tsconfig.json", "webapp/tsconfig.json"},
	{"index.html", "webapp/index.html"},
	{filepath.Join("src", "main.tsx"), "webapp/main.tsx"},
	{filepath.Join("src", "App.tsx"), "webapp/App.tsx"},
}

// desktopFiles is the Tauri shell wrapping the webapp SPA.
var desktopFiles = []struct{ file, tmpl string }{
	{filepath.Join("src-tauri", "Cargo.toml"), "desktop/Cargo.toml"},
	{filepath.Join("src-tauri", "tauri.conf.json"), "desktop/tauri.conf.json"},
	{filepath.Join("src-tauri", "src", "main.rs"), "desktop/main.rs"},
	{filepath.Join("src-tauri", "build.rs"), "desktop/build.rs"},
	{filepath.Join("src-tauri", "capabilities", "default.json"), "desktop/capabilities.json"},
}

// AddTarget scaffolds spec under the workspace root and records it in
// loam.yaml. One target per type; the desktop shell requires a webapp
// target to wrap.
func AddTarget(w writer.Writer, root string, spec TargetSpec) error {
	cfgPath := filepath.Join(root, workspace.ConfigFile)
	cfg, err := workspace.Load(cfgPath)
	if err != nil {
		return err
	}
	for _, t := range cfg.Targets {
		if t.Type == spec.Type {
			return fmt.Errorf("a %s target already exists at %s; remove it from %s first",
				spec.Type, t.Path, workspace.ConfigFile)
		}
	}
	dir := filepath.Join(root, spec.Dir)
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %s already exists", dir)
	}

	target := workspace.Target{Type: spec.Type, Path: filepath.ToSlash(spec.Dir)}
	switch spec.Type {
	case workspace.TargetWebapp:
		if spec.Framework != "react" {
			return fmt.Errorf("unsupported webapp framework %q (only react)", spec.Framework)
		}
		target.Framework = spec.Framework
		if err := renderWebapp(w, dir, cfg); err != nil {
			return err
		}
	case workspace.TargetDesktop:
		front := cfg.WebappTarget()
		if front == nil {
			return fmt.Errorf("a webapp target is required before a desktop target: the desktop shell wraps the webapp (run 'loam add target webapp' first)")
		}
		if err := renderDesktop(w, dir, spec.Dir, front.Path, cfg); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported target type %q (webapp, desktop)", spec.Type)
	}

	cfg.Targets = append(cfg.Targets, target)
	return workspace.Save(w, cfgPath, cfg)
}

func renderWebapp(w writer.Writer, dir string, cfg *workspace.Config) error {
	for _, sub := range []string{"src", "public"} {
		if err := w.MkdirAll(filepath.Join(dir, sub)); err != nil {
			return fmt.Errorf("create %s: %w", sub, err)
		}
	}
	data := struct {
		Name string
		Port int
	}{cfg.Name, cfg.API.Port}
	for _, tf := range webappFiles {
		content, err := render(tf.tmpl, data)
		if err != nil {
			return err
		}
		if err := w.WriteFile(filepath.Join(dir, tf.file), content); err != nil {
			return fmt.Errorf("write %s: %w", tf.file, err)
		}
	}
	return nil
}

func renderDesktop(w writer.Writer, dir, relDir, frontPath string, cfg *workspace.Config) error {
	// frontendDist in tauri.conf.json resolves relative to src-tauri/.
	dist, err := filepath.Rel(filepath.Join(relDir, "src-tauri"), filepath.Join(frontPath, "dist"))
	if err != nil {
		return fmt.Errorf("resolve webapp dist path: %w", err)
	}

	for _, sub := range []string{
		filepath.Join("src-tauri", "src"),
		filepath.Join("src-tauri", "capabilities"),
	} {
		if err := w.MkdirAll(filepath.Join(dir, sub)); err != nil {
			return fmt.Errorf("create %s: %w", sub, err)
		}
	}
	data := struct {
		Name      string
		FrontDist string
	}{cfg.Name, filepath.ToSlash(dist)}
	for _, tf := range desktopFiles {
		content, err := render(tf.tmpl, data)
		if err != nil {
			return err
		}
		if err := w.WriteFile(filepath.Join(dir, tf.file), content); err != nil {
			return fmt.Errorf("write %s: %w", tf.file, err)
		}
	}
	return nil
}
