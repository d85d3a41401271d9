package smbpath

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/smbvfs/smbvfs/pkg/fserrors"
)

// FileSystem is the minimal identity a Path needs from its owning file
// system: something to render into a URI and something to compare for
// cross-filesystem rejection. *pkg/smbfs.FileSystem satisfies this.
type FileSystem interface {
	Identifier() string
}

// Path is an immutable value describing a location on one FileSystem.
// Two paths are equal iff they share the same FileSystem identity and the
// same components; the Absolute and Folder flags affect rendering and
// algebra but not equality.
type Path struct {
	fs         FileSystem
	components []string
	absolute   bool
	folder     bool
}

// New builds a Path on fs from its string form, e.g. "/a/b/c.txt" or
// "relative/dir/".
func New(fs FileSystem, s string) Path {
	return Path{
		fs:         fs,
		components: Split(s),
		absolute:   IsAbsolute(s),
		folder:     IsFolder(s),
	}
}

func (p Path) FileSystem() FileSystem { return p.fs }
func (p Path) IsAbsolute() bool       { return p.absolute }
func (p Path) IsFolder() bool         { return p.folder }

// String renders the path back to its canonical string form.
func (p Path) String() string {
	return Merge(p.components, 0, len(p.components), p.absolute, p.folder)
}

func (p Path) sameFS(other Path) bool {
	if p.fs == nil || other.fs == nil {
		return p.fs == other.fs
	}
	return p.fs.Identifier() == other.fs.Identifier()
}

func withComponents(base Path, components []string, absolute, folder bool) Path {
	return Path{fs: base.fs, components: components, absolute: absolute, folder: folder}
}

// Root returns the root path "/" on the same file system, if this path is
// absolute. Non-absolute paths have no root.
func (p Path) Root() (Path, error) {
	if !p.absolute {
		return Path{}, fserrors.New(fserrors.InvalidArgument, "Root", p.String())
	}
	return withComponents(p, nil, true, true), nil
}

// FileName returns a new relative path built from this path's last
// component.
func (p Path) FileName() (Path, error) {
	n := len(p.components)
	if n == 0 {
		return Path{}, fserrors.New(fserrors.InvalidArgument, "FileName", p.String())
	}
	return withComponents(p, []string{p.components[n-1]}, false, p.folder), nil
}

// Parent returns the folder path built from all but the last component,
// keeping this path's absoluteness. A path of 0 or 1 components has no
// parent.
func (p Path) Parent() (Path, error) {
	n := len(p.components)
	if n <= 1 {
		return Path{}, fserrors.New(fserrors.InvalidArgument, "Parent", p.String())
	}
	components := make([]string, n-1)
	copy(components, p.components[:n-1])
	return withComponents(p, components, p.absolute, true), nil
}

// NameCount returns the number of components.
func (p Path) NameCount() int { return len(p.components) }

// Name returns a relative sub-path containing only component i.
func (p Path) Name(i int) (Path, error) {
	n := len(p.components)
	if i < 0 || i >= n {
		return Path{}, fserrors.New(fserrors.InvalidArgument, "Name", p.String())
	}
	folder := i == n-1 && p.folder
	return withComponents(p, []string{p.components[i]}, false, folder), nil
}

// Subpath returns a relative path over components [begin, end).
//
// The original this module is modeled on rejected end >= NameCount()
// rather than the conventional end > NameCount(); that is treated here as
// an off-by-one in the source and corrected, so end == NameCount() is
// accepted.
func (p Path) Subpath(begin, end int) (Path, error) {
	n := len(p.components)
	if begin < 0 || end > n || begin > end {
		return Path{}, fserrors.New(fserrors.InvalidArgument, "Subpath", p.String())
	}
	folder := end > 0 && end-1 == n-1 && p.folder
	components := make([]string, end-begin)
	copy(components, p.components[begin:end])
	return withComponents(p, components, false, folder), nil
}

// StartsWith reports whether the rendered string of this path begins with
// other's rendered string at a separator boundary. Cross-FS comparisons
// return false rather than failing.
func (p Path) StartsWith(other Path) bool {
	if !p.sameFS(other) {
		return false
	}
	if other.absolute && !p.absolute {
		return false
	}
	return hasComponentPrefix(p.components, other.components)
}

// EndsWith reports whether the rendered string of this path ends with
// other's rendered string at a separator boundary.
func (p Path) EndsWith(other Path) bool {
	if !p.sameFS(other) {
		return false
	}
	if other.absolute {
		return p.absolute && equalComponents(p.components, other.components)
	}
	n, m := len(p.components), len(other.components)
	if m > n {
		return false
	}
	return equalComponents(p.components[n-m:], other.components)
}

func hasComponentPrefix(components, prefix []string) bool {
	if len(prefix) > len(components) {
		return false
	}
	for i, c := range prefix {
		if components[i] != c {
			return false
		}
	}
	return true
}

func equalComponents(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Normalize eliminates "." and ".." components. "." is dropped outright.
// ".." pops the previous name whenever one has been accumulated. With no
// name left to pop it is dropped on an absolute path, so normalize never
// crosses the root, and kept on a relative path.
func (p Path) Normalize() Path {
	out := make([]string, 0, len(p.components))
	for _, c := range p.components {
		switch c {
		case ".":
			continue
		case "..":
			if len(out) > 0 && out[len(out)-1] != ".." {
				out = out[:len(out)-1]
			} else if !p.absolute {
				out = append(out, "..")
			}
			// absolute path at the root: ".." is dropped, never crossed.
		default:
			out = append(out, c)
		}
	}
	return withComponents(p, out, p.absolute, p.folder)
}

// Resolve resolves other against this path. If other is absolute, it is
// returned unchanged (rebased onto this path's file system). Otherwise
// this path must be a folder path, or the call fails.
func (p Path) Resolve(other Path) (Path, error) {
	if !p.sameFS(other) {
		return Path{}, fserrors.New(fserrors.InvalidArgument, "Resolve", p.String())
	}
	if other.absolute {
		return withComponents(p, append([]string(nil), other.components...), true, other.folder), nil
	}
	if !p.folder {
		return Path{}, fserrors.New(fserrors.InvalidArgument, "Resolve", p.String())
	}
	components := make([]string, 0, len(p.components)+len(other.components))
	components = append(components, p.components...)
	components = append(components, other.components...)
	return withComponents(p, components, p.absolute, other.folder), nil
}

// ResolveSibling resolves other against this path's parent: it replaces
// this path's last component instead of appending after it.
func (p Path) ResolveSibling(other Path) (Path, error) {
	if !p.sameFS(other) {
		return Path{}, fserrors.New(fserrors.InvalidArgument, "ResolveSibling", p.String())
	}
	if other.absolute {
		return withComponents(p, append([]string(nil), other.components...), true, other.folder), nil
	}
	if !p.folder {
		return Path{}, fserrors.New(fserrors.InvalidArgument, "ResolveSibling", p.String())
	}
	n := len(p.components)
	base := 0
	if n > 0 {
		base = n - 1
	}
	components := make([]string, 0, base+len(other.components))
	components = append(components, p.components[:base]...)
	components = append(components, other.components...)
	return withComponents(p, components, p.absolute, other.folder), nil
}

// Relativize computes the relative path that, resolved against this path,
// yields target. Both paths must share absoluteness and file system.
func (p Path) Relativize(target Path) (Path, error) {
	if p.absolute != target.absolute || !p.sameFS(target) {
		return Path{}, fserrors.New(fserrors.InvalidArgument, "Relativize", p.String())
	}

	common := 0
	for common < len(p.components) && common < len(target.components) && p.components[common] == target.components[common] {
		common++
	}

	up := len(p.components) - common
	components := make([]string, 0, up+len(target.components)-common)
	for i := 0; i < up; i++ {
		components = append(components, "..")
	}
	components = append(components, target.components[common:]...)

	return withComponents(p, components, false, target.folder), nil
}

// ToURI builds the smb:// URI form of this path: scheme, file system
// identifier as authority, and the rendered path.
func (p Path) ToURI() (string, error) {
	rendered := p.String()
	u := &url.URL{Scheme: "smb", Host: p.fsIdentifier(), Path: rendered}
	if !p.absolute {
		return "", fserrors.New(fserrors.InvalidArgument, "ToURI", rendered)
	}
	return u.String(), nil
}

func (p Path) fsIdentifier() string {
	if p.fs == nil {
		return ""
	}
	return p.fs.Identifier()
}

// Compare orders two paths lexicographically on their rendered string.
// Cross-FS comparisons fail.
func (p Path) Compare(other Path) (int, error) {
	if !p.sameFS(other) {
		return 0, fserrors.New(fserrors.InvalidArgument, "Compare", p.String())
	}
	return strings.Compare(p.String(), other.String()), nil
}

// Iterator yields one relative Path per component: every element but the
// last is a folder path; the last carries this path's own folder flag.
func (p Path) Iterator() []Path {
	n := len(p.components)
	out := make([]Path, 0, n)
	for i := 0; i < n; i++ {
		folder := i < n-1 || p.folder
		out = append(out, withComponents(p, []string{p.components[i]}, false, folder))
	}
	return out
}

// GoString supports %#v style debugging and error messages.
func (p Path) GoString() string {
	return fmt.Sprintf("smbpath.Path{%q}", p.String())
}
