// Package workspace handles loam.yaml workspace configuration and root
// discovery for loam-rs projects.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/loamworks/loam/internal/writer"
)

// ConfigFile is the workspace marker file at the workspace root.
const ConfigFile = "loam.yaml"

// Target types.
const (
	TargetWebapp  = "webapp"
	TargetDesktop = "desktop"
)

// Config is the root configuration of a loam workspace.
type Config struct {
	Name    string    `yaml:"name"`
	API     APIConfig `yaml:"api"`
	Targets []Target  `yaml:"targets,omitempty"`
}

// APIConfig locates the backend within the workspace.
type APIConfig struct {
	Path string `yaml:"path"`
	Port int    `yaml:"port"`
}

// Target is one deployment target directory.
type Target struct {
	Type      string `yaml:"target_type"`
	Framework string `yaml:"framework,omitempty"`
	Path      string `yaml:"path"`
}

// WebappTarget returns the first webapp target, or nil.
func (c *Config) WebappTarget() *Target {
	for i := range c.Targets {
		if c.Targets[i].Type == TargetWebapp {
			return &c.Targets[i]
		}
	}
	return nil
}

// Load reads and validates a loam.yaml, applying defaults for absent api
// settings.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workspace config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.API.Path == "" {
		c.API.Path = "api"
	}
	if c.API.Port == 0 {
		c.API.Port = 3000
	}
	return &c, nil
}

// Save writes the configuration through the writer, so dry runs narrate
// the change instead of touching disk.
func Save(w writer.Writer, path string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("serialize workspace config: %w", err)
	}
	if original, err := os.ReadFile(path); err == nil {
		return w.UpdateFile(path, string(original), string(data))
	}
	return w.WriteFile(path, string(data))
}

// FindRoot walks up from start looking for a loam.yaml. Returns the
// directory containing it.
func FindRoot(start string) (string, bool) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, ConfigFile)); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DetectProjectRoot walks up from start looking for a Cargo.toml that
// depends on the loam framework. This finds the API directory itself, with
// or without a surrounding workspace.
func DetectProjectRoot(start string) (string, error) {
	dir := start
	for {
		cargo := filepath.Join(dir, "Cargo.toml")
		if data, err := os.ReadFile(cargo); err == nil {
			content := string(data)
			if strings.Contains(content, "[dependencies]") && strings.Contains(content, "loam") {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("not inside a loam-rs project: no Cargo.toml with a 'loam' dependency above %s", start)
}

// ResolveAPIRoot resolves the backend directory from the current working
// directory: inside a workspace it is <root>/<api.path>, otherwise the
// nearest project root.
func ResolveAPIRoot(cwd string) (string, error) {
	if root, ok := FindRoot(cwd); ok {
		cfg, err := Load(filepath.Join(root, ConfigFile))
		if err != nil {
			return "", err
		}
		return filepath.Join(root, cfg.API.Path), nil
	}
	return DetectProjectRoot(cwd)
}
