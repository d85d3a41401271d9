package pathmatcher

import (
	"testing"

	"github.com/smbvfs/smbvfs/pkg/smbpath"
)

type fakeFS string

func (f fakeFS) Identifier() string { return string(f) }

func TestGlobStar(t *testing.T) {
	m, err := New("glob:*.txt")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fs := fakeFS("u@h")
	if !m.Matches(smbpath.New(fs, "/a/b/c.txt")) {
		t.Error("expected match for c.txt")
	}
	if m.Matches(smbpath.New(fs, "/a/b/c.md")) {
		t.Error("expected no match for c.md")
	}
}

func TestGlobBraceAlternation(t *testing.T) {
	m, err := New("glob:{a,b}.txt")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fs := fakeFS("u@h")
	if !m.Matches(smbpath.New(fs, "/x/a.txt")) {
		t.Error("expected match for a.txt")
	}
	if !m.Matches(smbpath.New(fs, "/x/b.txt")) {
		t.Error("expected match for b.txt")
	}
	if m.Matches(smbpath.New(fs, "/x/c.txt")) {
		t.Error("expected no match for c.txt")
	}
}

func TestGlobLiteralCommaOutsideGroup(t *testing.T) {
	m, err := New("glob:a,b.txt")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fs := fakeFS("u@h")
	if !m.Matches(smbpath.New(fs, "a,b.txt")) {
		t.Error("comma outside a {} group must be literal")
	}
}

func TestRegexDefaultPrefix(t *testing.T) {
	m, err := New(`a\d+\.txt`)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fs := fakeFS("u@h")
	if !m.Matches(smbpath.New(fs, "a123.txt")) {
		t.Error("bare pattern should be treated as regex")
	}
}

func TestGlobQuestionMark(t *testing.T) {
	m, err := New("glob:a?.txt")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fs := fakeFS("u@h")
	if !m.Matches(smbpath.New(fs, "ax.txt")) {
		t.Error("? should match single char")
	}
	if m.Matches(smbpath.New(fs, "axx.txt")) {
		t.Error("? should not match two chars")
	}
}
