// Package markers implements anchor-based mutation of generated source
// files. Generated files carry single-line comment anchors like
// `// [loam:store_fields]`; new declarations are inserted on the line after
// the anchor, exactly once, with the anchor's indentation. No language
// parsing happens here; the anchors are the only structure we rely on.
package markers

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAnchorNotFound reports a buffer without the requested anchor. Files
// generated before an anchor existed hit this; callers treat it as the
// legacy-file condition and fall back to printing manual instructions.
var ErrAnchorNotFound = errors.New("anchor not found")

// AnchorSite is the resolved location of one anchor inside one buffer.
// Ephemeral: recomputed on every call, never persisted.
type AnchorSite struct {
	Token  string
	Line   int    // line index of the anchor comment
	Indent string // leading whitespace of the anchor line
}

// Locate finds the first line whose trimmed content contains token.
// Generated files contain each anchor exactly once by construction, so only
// the first occurrence is considered.
func Locate(buffer, token string) (AnchorSite, error) {
	lines := strings.Split(buffer, "\n")
	for i, l := range lines {
		if strings.Contains(strings.TrimSpace(l), token) {
			return AnchorSite{
				Token:  token,
				Line:   i,
				Indent: l[:len(l)-len(strings.TrimLeft(l, " \t"))],
			}, nil
		}
	}
	return AnchorSite{}, fmt.Errorf("%w: %q", ErrAnchorNotFound, token)
}

// Insert places line on the line directly after the anchor, copying the
// anchor line's indentation. needle is the candidate's distinguishing
// prefix (for example the entity's quoted name); when a line after the
// anchor already starts with it, the buffer is returned unchanged and the
// second result is false. Pass an empty needle to key on the whole trimmed
// line. This is the idempotence guarantee: running the same registration
// twice never duplicates it.
func Insert(buffer, token, line, needle string) (string, bool, error) {
	site, err := Locate(buffer, token)
	if err != nil {
		return buffer, false, err
	}

	if needle == "" {
		needle = strings.TrimSpace(line)
	}
	if HasLineAfter(buffer, token, needle) {
		return buffer, false, nil
	}

	lines := strings.Split(strings.TrimSuffix(buffer, "\n"), "\n")
	indented := site.Indent + line

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:site.Line+1]...)
	out = append(out, indented)
	out = append(out, lines[site.Line+1:]...)

	result := strings.Join(out, "\n")
	if strings.HasSuffix(buffer, "\n") {
		result += "\n"
	}
	return result, true, nil
}

// HasLineAfter reports whether any line after the anchor starts with needle
// once trimmed. Anchoring at the line start keeps entity names with a shared
// suffix apart: "item_store," never matches a line holding
// "order_item_store,". Returns false when the anchor itself is absent.
func HasLineAfter(buffer, token, needle string) bool {
	site, err := Locate(buffer, token)
	if err != nil {
		return false
	}
	lines := strings.Split(buffer, "\n")
	for _, l := range lines[site.Line+1:] {
		if strings.HasPrefix(strings.TrimSpace(l), needle) {
			return true
		}
	}
	return false
}

// AddImport inserts a `use` declaration after the last line of the leading
// import run, or as the first line when the file has none. Duplicate
// detection is on trimmed equality, so re-adding an import is a no-op.
func AddImport(buffer, importLine string) string {
	want := strings.TrimSpace(importLine)
	lines := strings.Split(strings.TrimSuffix(buffer, "\n"), "\n")
	for _, l := range lines {
		if strings.TrimSpace(l) == want {
			return buffer
		}
	}

	// Last `use` line of the run at the top of the file. Blank lines and
	// comments may precede or separate imports; the run ends at the first
	// other content.
	insertAt := 0
scan:
	for i, l := range lines {
		t := strings.TrimSpace(l)
		switch {
		case strings.HasPrefix(t, "use "):
			insertAt = i + 1
		case t == "" || strings.HasPrefix(t, "//"):
			// blank lines and comments do not end the run
		default:
			break scan
		}
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:insertAt]...)
	out = append(out, importLine)
	out = append(out, lines[insertAt:]...)

	result := strings.Join(out, "\n")
	if strings.HasSuffix(buffer, "\n") {
		result += "\n"
	}
	return result
}
