package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/loamworks/loam/internal/naming"
	"github.com/loamworks/loam/internal/writer"
)

// Link is one typed relation to record in config/links.yaml.
type Link struct {
	Source       string
	Target       string
	LinkType     string
	ForwardRoute string
	ReverseRoute string
	Description  string
}

// NewLink normalizes names and fills derived defaults the same way
// extraction does, so a recorded link reads back identically.
func NewLink(source, target, linkType, forward, reverse, description string) Link {
	l := Link{
		Source:       naming.Snake(source),
		Target:       naming.Snake(target),
		LinkType:     linkType,
		ForwardRoute: forward,
		ReverseRoute: reverse,
		Description:  description,
	}
	if l.LinkType == "" {
		l.LinkType = "has_" + l.Target
	}
	if l.ForwardRoute == "" {
		l.ForwardRoute = naming.Plural(l.Target)
	}
	if l.ReverseRoute == "" {
		l.ReverseRoute = l.Source
	}
	return l
}

// linksFile is the full shape of config/links.yaml. Parsing keeps the
// validation rules opaque so recording a link never drops hand-written
// configuration.
type linksFile struct {
	Entities        []linkEntityEntry `yaml:"entities"`
	Links           []linkFileEntry   `yaml:"links"`
	ValidationRules map[string]any    `yaml:"validation_rules,omitempty"`
}

type linkEntityEntry struct {
	Singular string `yaml:"singular"`
	Plural   string `yaml:"plural"`
}

type linkFileEntry struct {
	LinkType         string `yaml:"link_type"`
	SourceType       string `yaml:"source_type"`
	TargetType       string `yaml:"target_type"`
	ForwardRouteName string `yaml:"forward_route_name,omitempty"`
	ReverseRouteName string `yaml:"reverse_route_name,omitempty"`
	Description      string `yaml:"description,omitempty"`
}

// AddLink records a link in apiRoot/config/links.yaml, creating the file
// if needed and declaring both endpoint entities in the entities section.
// An existing (source, target, link_type) entry is rejected.
func AddLink(w writer.Writer, apiRoot string, l Link) error {
	path := filepath.Join(apiRoot, "config", "links.yaml")

	var doc linksFile
	original := ""
	if data, err := os.ReadFile(path); err == nil {
		original = string(data)
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", path, err)
	}

	for _, e := range doc.Links {
		if e.SourceType == l.Source && e.TargetType == l.Target && e.LinkType == l.LinkType {
			return fmt.Errorf("link %s from %s to %s already exists", l.LinkType, l.Source, l.Target)
		}
	}

	doc.Links = append(doc.Links, linkFileEntry{
		LinkType:         l.LinkType,
		SourceType:       l.Source,
		TargetType:       l.Target,
		ForwardRouteName: l.ForwardRoute,
		ReverseRouteName: l.ReverseRoute,
		Description:      l.Description,
	})
	declareLinkEntity(&doc, l.Source)
	declareLinkEntity(&doc, l.Target)

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", path, err)
	}
	if original == "" {
		if err := w.MkdirAll(filepath.Dir(path)); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		return w.WriteFile(path, string(data))
	}
	return w.UpdateFile(path, original, string(data))
}

func declareLinkEntity(doc *linksFile, name string) {
	for _, e := range doc.Entities {
		if e.Singular == name {
			return
		}
	}
	doc.Entities = append(doc.Entities, linkEntityEntry{
		Singular: name,
		Plural:   naming.Plural(name),
	})
}
