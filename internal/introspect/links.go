package introspect

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/loamworks/loam/internal/naming"
)

// linksDoc mirrors the subset of config/links.yaml this package reads.
// Unknown keys are ignored so newer configuration fields never break older
// tooling.
type linksDoc struct {
	Links []linkEntry `yaml:"links"`
}

type linkEntry struct {
	LinkType         string `yaml:"link_type"`
	SourceType       string `yaml:"source_type"`
	TargetType       string `yaml:"target_type"`
	ForwardRouteName string `yaml:"forward_route_name"`
	ReverseRouteName string `yaml:"reverse_route_name"`
}

// ParseLinks reads the `links:` list of a links.yaml document. An entry
// missing source or target is skipped with an Issue; the remaining entries
// still extract. Absent optional keys take their derived defaults:
// link_type has_<target>, forward route the pluralized target, reverse
// route the source name.
func ParseLinks(content string) ([]RelationRecord, []Issue) {
	var doc linksDoc
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, []Issue{{Subject: "links.yaml", Err: fmt.Errorf("parse: %w", err)}}
	}

	var relations []RelationRecord
	var issues []Issue
	for i, l := range doc.Links {
		if l.SourceType == "" || l.TargetType == "" {
			issues = append(issues, Issue{
				Subject: fmt.Sprintf("links.yaml entry %d", i),
				Err:     fmt.Errorf("missing source_type or target_type"),
			})
			continue
		}

		rel := RelationRecord{
			Source:       l.SourceType,
			Target:       l.TargetType,
			LinkType:     l.LinkType,
			ForwardRoute: l.ForwardRouteName,
			ReverseRoute: l.ReverseRouteName,
		}
		if rel.LinkType == "" {
			rel.LinkType = "has_" + rel.Target
		}
		if rel.ForwardRoute == "" {
			rel.ForwardRoute = naming.Plural(rel.Target)
		}
		if rel.ReverseRoute == "" {
			rel.ReverseRoute = rel.Source
		}
		relations = append(relations, rel)
	}

	return relations, issues
}
