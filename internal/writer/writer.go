// Package writer abstracts file output behind go-billy filesystems so
// every command supports --dry-run: the real writer targets the OS
// filesystem, the dry-run writer targets an in-memory one and reports what
// would have happened.
package writer

import (
	"fmt"
	"io"
	"os"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Writer is the file-output surface handed to commands. Implementations
// never read: callers read with os and pass original content in.
type Writer interface {
	MkdirAll(path string) error
	WriteFile(path, content string) error
	// UpdateFile overwrites an existing file; the original content is
	// carried so a simulated writer can show what changed.
	UpdateFile(path, original, updated string) error
	DryRun() bool
}

// Real writes through to a billy filesystem rooted at the OS root.
type Real struct {
	fs billy.Filesystem
}

// NewReal returns a Writer backed by the OS filesystem.
func NewReal() *Real {
	return &Real{fs: osfs.New("/")}
}

func (w *Real) MkdirAll(path string) error {
	return w.fs.MkdirAll(path, 0o755)
}

func (w *Real) WriteFile(path, content string) error {
	return util.WriteFile(w.fs, path, []byte(content), 0o644)
}

func (w *Real) UpdateFile(path, _, updated string) error {
	return util.WriteFile(w.fs, path, []byte(updated), 0o644)
}

func (w *Real) DryRun() bool { return false }

// Dry simulates writes against an in-memory filesystem and narrates them.
type Dry struct {
	fs      billy.Filesystem
	out     io.Writer
	created []string
	updated []string
}

// NewDry returns a dry-run Writer narrating to out (defaults to stdout).
func NewDry(out io.Writer) *Dry {
	if out == nil {
		out = os.Stdout
	}
	return &Dry{fs: memfs.New(), out: out}
}

func (w *Dry) MkdirAll(path string) error {
	return w.fs.MkdirAll(path, 0o755)
}

func (w *Dry) WriteFile(path, content string) error {
	fmt.Fprintf(w.out, "  would create: %s\n", path)
	w.created = append(w.created, path)
	return util.WriteFile(w.fs, path, []byte(content), 0o644)
}

func (w *Dry) UpdateFile(path, original, updated string) error {
	fmt.Fprintf(w.out, "  would modify: %s\n", path)
	w.updated = append(w.updated, path)
	printAddedLines(w.out, original, updated)
	return util.WriteFile(w.fs, path, []byte(updated), 0o644)
}

func (w *Dry) DryRun() bool { return true }

// Created and Updated expose the recorded paths.
func (w *Dry) Created() []string { return w.created }
func (w *Dry) Updated() []string { return w.updated }

// Summary prints a closing count of simulated changes.
func (w *Dry) Summary() {
	switch {
	case len(w.created) == 0 && len(w.updated) == 0:
		fmt.Fprintln(w.out, "  no changes would be made")
	default:
		fmt.Fprintf(w.out, "  %d file(s) would be created, %d modified\n",
			len(w.created), len(w.updated))
	}
}

// printAddedLines shows the lines present in updated but not in original.
func printAddedLines(out io.Writer, original, updated string) {
	have := map[string]bool{}
	for _, l := range strings.Split(original, "\n") {
		have[l] = true
	}
	for _, l := range strings.Split(updated, "\n") {
		if !have[l] {
			fmt.Fprintf(out, "    + %s\n", l)
		}
	}
}
