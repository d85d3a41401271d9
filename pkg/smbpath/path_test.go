package smbpath

import (
	"testing"

	"github.com/smbvfs/smbvfs/pkg/fserrors"
)

type fakeFS string

func (f fakeFS) Identifier() string { return string(f) }

func TestPathParsingFlags(t *testing.T) {
	fs := fakeFS("u@h")
	cases := []struct {
		s         string
		absolute  bool
		folder    bool
		nameCount int
	}{
		{"/a/b/c.txt", true, false, 3},
		{"/a/b/", true, true, 2},
		{"/", true, true, 0},
	}
	for _, c := range cases {
		p := New(fs, c.s)
		if p.IsAbsolute() != c.absolute {
			t.Errorf("%q: absolute = %v, want %v", c.s, p.IsAbsolute(), c.absolute)
		}
		if p.IsFolder() != c.folder {
			t.Errorf("%q: folder = %v, want %v", c.s, p.IsFolder(), c.folder)
		}
		if p.NameCount() != c.nameCount {
			t.Errorf("%q: name_count = %d, want %d", c.s, p.NameCount(), c.nameCount)
		}
	}
}

func TestRelativize(t *testing.T) {
	fs := fakeFS("u@host")
	cases := []struct {
		from, to, want string
	}{
		{"/a/b/c", "/a/b/c/d/e/f", "d/e/f"},
		{"/a/b/c/d/e/f", "/a/b/c", "../../.."},
		{"/a/b/c", "/a/b/c", ""},
		{"/a/b/c", "/x/y/z", "../../../x/y/z"},
		{"/a/b/c/d/e/f", "/x/y/z", "../../../../../../x/y/z"},
		{"/x/y/z", "/a/b/c", "../../../a/b/c"},
	}
	for _, c := range cases {
		from := New(fs, c.from)
		to := New(fs, c.to)
		r, err := from.Relativize(to)
		if err != nil {
			t.Fatalf("%q.relativize(%q): %v", c.from, c.to, err)
		}
		if r.IsAbsolute() {
			t.Errorf("%q.relativize(%q): result is absolute", c.from, c.to)
		}
		if got := r.String(); got != c.want {
			t.Errorf("%q.relativize(%q) = %q, want %q", c.from, c.to, got, c.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	fs := fakeFS("u@h")
	cases := []struct {
		in, want string
	}{
		{"/a/./b/../c/", "/a/c/"},
		{"/../a/", "/a/"},
		{"/a/b/../../../c/", "/c/"},
	}
	for _, c := range cases {
		p := New(fs, c.in)
		got := p.Normalize().String()
		if got != c.want {
			t.Errorf("normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	fs := fakeFS("u@h")
	inputs := []string{"/a/./b/../c/", "a/../../b", "/a/b/c"}
	for _, in := range inputs {
		p := New(fs, in)
		once := p.Normalize()
		twice := once.Normalize()
		if once.String() != twice.String() {
			t.Errorf("normalize not idempotent for %q: %q vs %q", in, once.String(), twice.String())
		}
	}
}

func TestCompare(t *testing.T) {
	fs := fakeFS("u@h")
	a := New(fs, "/home/x/text.xls")
	b := New(fs, "/home/x/")

	got, err := a.Compare(b)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if got <= 0 {
		t.Errorf("a.compare(b) = %d, want > 0", got)
	}

	got, err = b.Compare(a)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if got >= 0 {
		t.Errorf("b.compare(a) = %d, want < 0", got)
	}

	got, err = a.Compare(a)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if got != 0 {
		t.Errorf("a.compare(a) = %d, want 0", got)
	}
}

func TestCompareCrossFS(t *testing.T) {
	a := New(fakeFS("u@h1"), "/a")
	b := New(fakeFS("u@h2"), "/a")

	if _, err := a.Compare(b); !fserrors.Is(err, fserrors.InvalidArgument) {
		t.Fatalf("cross-fs compare error = %v, want InvalidArgument", err)
	}
}

func TestSubpathAcceptsEndEqualsNameCount(t *testing.T) {
	fs := fakeFS("u@h")
	p := New(fs, "/a/b/c")

	sub, err := p.Subpath(1, p.NameCount())
	if err != nil {
		t.Fatalf("subpath(1, n): %v", err)
	}
	if got := sub.String(); got != "b/c" {
		t.Errorf("subpath(1, n) = %q, want %q", got, "b/c")
	}
}

func TestResolveAndRelativizeRoundTrip(t *testing.T) {
	fs := fakeFS("u@h")
	a := New(fs, "/a/b/c/")
	r, err := a.Relativize(New(fs, "/a/b/c/d/e"))
	if err != nil {
		t.Fatalf("relativize: %v", err)
	}
	resolved, err := a.Resolve(r)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got, want := resolved.Normalize().String(), New(fs, "/a/b/c/d/e").Normalize().String(); got != want {
		t.Errorf("round trip = %q, want %q", got, want)
	}
}

func TestIterator(t *testing.T) {
	fs := fakeFS("u@h")
	p := New(fs, "/a/b/c")
	it := p.Iterator()
	if len(it) != 3 {
		t.Fatalf("iterator len = %d, want 3", len(it))
	}
	for i, elem := range it {
		if elem.IsAbsolute() {
			t.Errorf("element %d is absolute", i)
		}
		wantFolder := i < len(it)-1
		if elem.IsFolder() != wantFolder {
			t.Errorf("element %d folder = %v, want %v", i, elem.IsFolder(), wantFolder)
		}
	}
}
