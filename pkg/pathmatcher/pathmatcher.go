// Package pathmatcher implements the glob/regex path matching described in
// spec §4.8: a pattern carrying a "glob:" or "regex:" prefix (regex is the
// default when no prefix is present) is translated into a Go regexp that
// matches a path's normalized, rendered string.
//
// No teacher analog exists for glob translation specifically (the teacher's
// own regexp.MustCompile uses, e.g. pkg/metadata's SID validation, are fixed
// patterns with no glob-to-regex step); this package is built directly from
// spec §4.8's translation rules against the standard library's regexp, with
// no third-party globbing library wired in because those rules are bespoke
// (curly-brace alternation is not part of any common glob dialect this
// module's dependency set already provides).
package pathmatcher

import (
	"regexp"
	"strings"

	"github.com/smbvfs/smbvfs/pkg/fserrors"
	"github.com/smbvfs/smbvfs/pkg/smbpath"
)

// Matcher matches a normalized path string against a compiled pattern.
type Matcher struct {
	re *regexp.Regexp
}

// New compiles pattern, which may carry a "glob:" or "regex:" prefix; a bare
// pattern with no recognized prefix is treated as a regex.
//
// A glob with no "/" in it names a file, not a path: per spec §8 scenario 7,
// "glob:{a,b}.txt" must match "/x/a.txt", not just the bare string "a.txt".
// Such patterns are matched with an optional leading "any directories"
// prefix so they match against the path's final component regardless of how
// deep it sits; a glob containing "/" is left anchored to the whole rendered
// path, since it already names its own directory structure.
func New(pattern string) (*Matcher, error) {
	var expr string
	var basenameOnly bool

	switch {
	case strings.HasPrefix(pattern, "glob:"):
		raw := strings.TrimPrefix(pattern, "glob:")
		expr = globToRegex(raw)
		basenameOnly = !strings.Contains(raw, "/")
	case strings.HasPrefix(pattern, "regex:"):
		expr = strings.TrimPrefix(pattern, "regex:")
	default:
		expr = pattern
	}

	if basenameOnly {
		expr = "(?:.*/)?(?:" + expr + ")"
	}

	re, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		return nil, fserrors.Wrap(fserrors.InvalidArgument, "PathMatcher.New", pattern, err)
	}
	return &Matcher{re: re}, nil
}

// Matches normalizes p (spec §4.2) and runs a full-string match against the
// compiled pattern.
func (m *Matcher) Matches(p smbpath.Path) bool {
	return m.re.MatchString(p.Normalize().String())
}

// globToRegex translates a glob pattern into the equivalent regex body per
// spec §4.8's translation rules:
//   - "*" -> ".*", "?" -> "."
//   - ".", "(", ")", "+", "|", "^", "$", "@", "%" are literal-escaped
//   - "\\" toggles an escape state forcing the next special character literal
//   - "{a,b,c}" -> "(a|b|c)", with "," an alternator only inside braces
func globToRegex(glob string) string {
	var b strings.Builder
	escaped := false
	inGroup := false

	literal := func(r rune) {
		b.WriteString("\\")
		b.WriteRune(r)
	}

	for _, r := range glob {
		if escaped {
			switch r {
			case '*', '?', '.', '(', ')', '+', '|', '^', '$', '@', '%', '{', '}', ',', '\\':
				literal(r)
			default:
				b.WriteRune(r)
			}
			escaped = false
			continue
		}

		switch r {
		case '\\':
			escaped = true
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '.', '(', ')', '+', '|', '^', '$', '@', '%':
			literal(r)
		case '{':
			inGroup = true
			b.WriteString("(")
		case '}':
			inGroup = false
			b.WriteString(")")
		case ',':
			if inGroup {
				b.WriteString("|")
			} else {
				literal(r)
			}
		default:
			b.WriteRune(r)
		}
	}

	// A trailing backslash with no following character to escape is kept
	// literal rather than silently dropped.
	if escaped {
		b.WriteString("\\\\")
	}

	return b.String()
}
