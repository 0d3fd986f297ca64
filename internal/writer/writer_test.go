package writer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReal_WritesToDisk(t *testing.T) {
	dir := t.TempDir()
	w := NewReal()

	path := filepath.Join(dir, "sub", "file.txt")
	require.NoError(t, w.MkdirAll(filepath.Dir(path)))
	require.NoError(t, w.WriteFile(path, "hello\n"))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(got))
	assert.False(t, w.DryRun())
}

func TestDry_NeverTouchesDisk(t *testing.T) {
	dir := t.TempDir()
	var buf strings.Builder
	w := NewDry(&buf)

	path := filepath.Join(dir, "file.txt")
	require.NoError(t, w.WriteFile(path, "hello\n"))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.True(t, w.DryRun())
	assert.Equal(t, []string{path}, w.Created())
	assert.Contains(t, buf.String(), "would create: "+path)
}

func TestDry_UpdateShowsAddedLines(t *testing.T) {
	var buf strings.Builder
	w := NewDry(&buf)

	require.NoError(t, w.UpdateFile("/x/mod.rs", "pub mod a;\n", "pub mod a;\npub mod b;\n"))
	assert.Contains(t, buf.String(), "would modify: /x/mod.rs")
	assert.Contains(t, buf.String(), "+ pub mod b;")
	assert.NotContains(t, buf.String(), "+ pub mod a;")
}

func TestDry_Summary(t *testing.T) {
	var buf strings.Builder
	w := NewDry(&buf)
	w.Summary()
	assert.Contains(t, buf.String(), "no changes would be made")

	buf.Reset()
	require.NoError(t, w.WriteFile("/a", "x"))
	require.NoError(t, w.UpdateFile("/b", "", "y"))
	buf.Reset()
	w.Summary()
	assert.Contains(t, buf.String(), "1 file(s) would be created, 1 modified")
}
