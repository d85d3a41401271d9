package smbpath

import "testing"

func TestIsAbsoluteIsFolder(t *testing.T) {
	cases := []struct {
		s        string
		absolute bool
		folder   bool
	}{
		{"/a/b/c.txt", true, false},
		{"/a/b/", true, true},
		{"/", true, true},
		{"a/b", false, false},
		{"a/b/", false, true},
	}
	for _, c := range cases {
		if got := IsAbsolute(c.s); got != c.absolute {
			t.Errorf("IsAbsolute(%q) = %v, want %v", c.s, got, c.absolute)
		}
		if got := IsFolder(c.s); got != c.folder {
			t.Errorf("IsFolder(%q) = %v, want %v", c.s, got, c.folder)
		}
	}
}

func TestSplit(t *testing.T) {
	cases := []struct {
		s    string
		want []string
	}{
		{"/a/b/c.txt", []string{"a", "b", "c.txt"}},
		{"/a/b/", []string{"a", "b"}},
		{"/", nil},
		{"", nil},
	}
	for _, c := range cases {
		got := Split(c.s)
		if len(got) != len(c.want) {
			t.Fatalf("Split(%q) = %v, want %v", c.s, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("Split(%q)[%d] = %q, want %q", c.s, i, got[i], c.want[i])
			}
		}
	}
}

func TestMergeRoundTrip(t *testing.T) {
	cases := []string{"/a/b/c.txt", "/a/b/", "a/b", "a/b/"}
	for _, s := range cases {
		components := Split(s)
		got := Merge(components, 0, len(components), IsAbsolute(s), IsFolder(s))
		if got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}

func TestMergeEmptySlice(t *testing.T) {
	if got := Merge(nil, 0, 0, true, false); got != "" {
		t.Errorf("Merge(nil, absolute, !folder) = %q, want \"\"", got)
	}
	if got := Merge(nil, 0, 0, true, true); got != "/" {
		t.Errorf("Merge(nil, absolute, folder) = %q, want \"/\"", got)
	}
}
