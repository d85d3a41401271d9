// Package smbpath implements the path algebra a remote SMB share is
// addressed through: the string-level primitives here, and the
// FileSystem-bound Path value in path.go.
//
// Everything in this package is pure and synchronous; nothing here talks to
// a server. The only way the two halves connect to the rest of the module
// is the FileSystem interface, kept deliberately narrow to avoid an import
// cycle with pkg/smbfs, whose Registry constructs the handles that satisfy it.
package smbpath

import "strings"

const separator = "/"

// IsFolder reports whether s ends with the path separator.
func IsFolder(s string) bool {
	return strings.HasSuffix(s, separator)
}

// IsAbsolute reports whether s begins with the path separator.
func IsAbsolute(s string) bool {
	return strings.HasPrefix(s, separator)
}

// Split breaks s into its slash-delimited components. A single leading
// empty segment produced by an absolute path is dropped; empty segments
// produced by consecutive separators are preserved, matching Merge's
// round-trip contract.
func Split(s string) []string {
	if s == "" {
		return nil
	}

	trimmed := s
	if IsAbsolute(trimmed) {
		trimmed = trimmed[1:]
	}
	if IsFolder(trimmed) {
		trimmed = trimmed[:len(trimmed)-1]
	}
	if trimmed == "" {
		return nil
	}

	return strings.Split(trimmed, separator)
}

// Merge reassembles components[start:end] into a path string, honoring the
// absolute and folder flags. It is the inverse of Split:
// Merge(Split(p), 0, len(Split(p)), IsAbsolute(p), IsFolder(p)) == p for any
// p with no consecutive separators.
//
// An empty slice is a special case: folder=true always renders "/"
// (the root), regardless of absolute; folder=false renders "" even when
// absolute is true, since there is nothing to anchor a bare "/" to.
func Merge(components []string, start, end int, absolute, folder bool) string {
	if end == start {
		if folder {
			return separator
		}
		return ""
	}

	var b strings.Builder
	if absolute {
		b.WriteString(separator)
	}
	b.WriteString(strings.Join(components[start:end], separator))
	if folder {
		b.WriteString(separator)
	}
	return b.String()
}
