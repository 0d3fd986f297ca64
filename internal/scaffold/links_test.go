package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamworks/loam/internal/introspect"
	"github.com/loamworks/loam/internal/writer"
)

func TestNewLinkDefaults(t *testing.T) {
	l := NewLink("Product", "Category", "", "", "", "")
	assert.Equal(t, Link{
		Source:       "product",
		Target:       "category",
		LinkType:     "has_category",
		ForwardRoute: "categories",
		ReverseRoute: "product",
	}, l)
}

func TestAddLinkRoundTrips(t *testing.T) {
	_, api := newProject(t)
	require.NoError(t, AddLink(writer.NewReal(), api, NewLink("product", "category", "", "", "", "")))

	data, err := os.ReadFile(filepath.Join(api, "config", "links.yaml"))
	require.NoError(t, err)
	rels, issues := introspect.ParseLinks(string(data))
	require.Empty(t, issues)
	require.Len(t, rels, 1)
	assert.Equal(t, introspect.RelationRecord{
		Source:       "product",
		Target:       "category",
		LinkType:     "has_category",
		ForwardRoute: "categories",
		ReverseRoute: "product",
	}, rels[0])
}

func TestAddLinkDeclaresEntities(t *testing.T) {
	_, api := newProject(t)
	require.NoError(t, AddLink(writer.NewReal(), api, NewLink("product", "category", "", "", "", "")))

	data, err := os.ReadFile(filepath.Join(api, "config", "links.yaml"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "singular: product")
	assert.Contains(t, content, "plural: products")
	assert.Contains(t, content, "singular: category")
	assert.Contains(t, content, "plural: categories")
}

func TestAddLinkRejectsDuplicate(t *testing.T) {
	_, api := newProject(t)
	w := writer.NewReal()
	require.NoError(t, AddLink(w, api, NewLink("product", "category", "", "", "", "")))
	err := AddLink(w, api, NewLink("product", "category", "", "", "", ""))
	assert.ErrorContains(t, err, "already exists")
}

func TestAddLinkDistinctTypesCoexist(t *testing.T) {
	_, api := newProject(t)
	w := writer.NewReal()
	require.NoError(t, AddLink(w, api, NewLink("product", "category", "", "", "", "")))
	require.NoError(t, AddLink(w, api, NewLink("product", "category", "tagged_as", "tags", "tagged", "")))

	data, err := os.ReadFile(filepath.Join(api, "config", "links.yaml"))
	require.NoError(t, err)
	rels, issues := introspect.ParseLinks(string(data))
	require.Empty(t, issues)
	assert.Len(t, rels, 2)
}

func TestAddLinkKeepsDescription(t *testing.T) {
	_, api := newProject(t)
	l := NewLink("product", "category", "", "", "", "primary shelf placement")
	require.NoError(t, AddLink(writer.NewReal(), api, l))

	data, err := os.ReadFile(filepath.Join(api, "config", "links.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "description: primary shelf placement")

	// extraction ignores the extra key
	rels, issues := introspect.ParseLinks(string(data))
	assert.Empty(t, issues)
	assert.Len(t, rels, 1)
}

func TestAddLinkCreatesMissingFile(t *testing.T) {
	_, api := newProject(t)
	require.NoError(t, os.Remove(filepath.Join(api, "config", "links.yaml")))
	require.NoError(t, AddLink(writer.NewReal(), api, NewLink("a", "b", "", "", "", "")))

	data, err := os.ReadFile(filepath.Join(api, "config", "links.yaml"))
	require.NoError(t, err)
	rels, issues := introspect.ParseLinks(string(data))
	assert.Empty(t, issues)
	assert.Len(t, rels, 1)
}
