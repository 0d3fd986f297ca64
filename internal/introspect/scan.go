package introspect

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Scan walks the entity tree under root (the directory holding src/ and
// config/) and merges it with config/links.yaml into one ProjectModel.
// Failures are per-entity and per-link: a malformed model.rs yields an
// Issue for that entity while its siblings still introspect. Entities come
// back sorted by name, so the model, and everything emitted from it, is
// byte-stable across runs on an unmodified tree.
func Scan(root string) (*ProjectModel, []Issue) {
	var issues []Issue

	entities, entIssues := scanEntities(filepath.Join(root, "src", "entities"))
	issues = append(issues, entIssues...)

	var relations []RelationRecord
	linksPath := filepath.Join(root, "config", "links.yaml")
	if content, err := os.ReadFile(linksPath); err == nil {
		var linkIssues []Issue
		relations, linkIssues = ParseLinks(string(content))
		issues = append(issues, linkIssues...)
	}

	return BuildModel(entities, relations), issues
}

func scanEntities(entitiesDir string) ([]EntityRecord, []Issue) {
	entries, err := os.ReadDir(entitiesDir)
	if err != nil {
		// No entity tree yet; an empty project, not a failure.
		return nil, nil
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var records []EntityRecord
	var issues []Issue
	for _, name := range names {
		dir := filepath.Join(entitiesDir, name)
		modelPath := filepath.Join(dir, "model.rs")

		content, err := os.ReadFile(modelPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue // not an entity directory
			}
			issues = append(issues, Issue{Subject: name, Err: fmt.Errorf("read model.rs: %w", err)})
			continue
		}

		record, err := ParseEntityModel(string(content), modelPath)
		if err != nil {
			issues = append(issues, Issue{Subject: name, Err: err})
			continue
		}

		// Descriptor is optional: without it the entity keeps its derived
		// plural and an empty route list.
		if descContent, err := os.ReadFile(filepath.Join(dir, "descriptor.rs")); err == nil {
			plural, routes := ParseDescriptor(string(descContent))
			if plural != "" {
				record.Plural = plural
			}
			record.Routes = routes
		}

		records = append(records, record)
	}

	return records, issues
}

// BuildModel aggregates entities and relations into one model. Pure: no
// I/O, no validation of relation endpoints (doctor owns that check).
// Entities are sorted by name; relations are de-duplicated on
// (source, target, link_type), first occurrence wins.
func BuildModel(entities []EntityRecord, relations []RelationRecord) *ProjectModel {
	sorted := make([]EntityRecord, len(entities))
	copy(sorted, entities)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	seen := map[[3]string]bool{}
	var deduped []RelationRecord
	for _, r := range relations {
		key := [3]string{r.Source, r.Target, r.LinkType}
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, r)
	}

	return &ProjectModel{Entities: sorted, Relations: deduped}
}
