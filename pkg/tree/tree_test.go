package tree

import (
	"strings"
	"testing"

	"github.com/fruitsalade/sitedeck/pkg/models"
)

func TestBreadcrumbs(t *testing.T) {
	crumbs := Breadcrumbs("a/b/c")
	want := []Crumb{
		{"Home", ""},
		{"a", "a"},
		{"b", "a/b"},
		{"c", "a/b/c"},
	}
	if len(crumbs) != len(want) {
		t.Fatalf("expected %d crumbs, got %d: %v", len(want), len(crumbs), crumbs)
	}
	for i := range want {
		if crumbs[i] != want[i] {
			t.Errorf("crumb %d = %+v, want %+v", i, crumbs[i], want[i])
		}
	}
}

func TestBreadcrumbsRoot(t *testing.T) {
	crumbs := Breadcrumbs("")
	if len(crumbs) != 1 || crumbs[0].Label != HomeLabel || crumbs[0].Path != "" {
		t.Errorf("expected only Home, got %v", crumbs)
	}
}

func TestBreadcrumbsRoundTrip(t *testing.T) {
	paths := []string{"", "a", "a/b", "a/b/c", "docs/2024/march", "x/y/z/w/v"}
	for _, p := range paths {
		crumbs := Breadcrumbs(p)
		if got := crumbs[len(crumbs)-1].Path; got != p {
			t.Errorf("last crumb of %q navigates to %q", p, got)
		}
		for i := 1; i < len(crumbs); i++ {
			if !strings.HasPrefix(p, crumbs[i].Path) {
				t.Errorf("crumb %q is not a prefix of %q", crumbs[i].Path, p)
			}
			if got := BuildChildPath(crumbs[i-1].Path, crumbs[i].Label); got != crumbs[i].Path {
				t.Errorf("joining %q and %q gave %q, want %q", crumbs[i-1].Path, crumbs[i].Label, got, crumbs[i].Path)
			}
		}
	}
}

func TestBreadcrumbsSkipEmptySegments(t *testing.T) {
	crumbs := Breadcrumbs("/a//b/")
	if len(crumbs) != 3 || crumbs[1].Path != "a" || crumbs[2].Path != "a/b" {
		t.Errorf("unexpected crumbs for messy path: %v", crumbs)
	}
}

func TestClean(t *testing.T) {
	tests := map[string]string{
		"":         "",
		"/":        "",
		"a/":       "a",
		"//a//b//": "a/b",
		"a/b":      "a/b",
	}
	for in, want := range tests {
		if got := Clean(in); got != want {
			t.Errorf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParent(t *testing.T) {
	tests := map[string]string{
		"index.html":  "",
		"img/cat.png": "img",
		"a/b/c.txt":   "a/b",
		"":            "",
	}
	for in, want := range tests {
		if got := Parent(in); got != want {
			t.Errorf("Parent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSortDirectoriesFirst(t *testing.T) {
	entries := []models.FileEntry{
		{Path: "zeta.html"},
		{Path: "b-dir", IsDirectory: true},
		{Path: "alpha.css"},
		{Path: "a-dir", IsDirectory: true},
		{Path: "Beta.js"},
	}
	sorted := Sort(entries)

	want := []string{"a-dir", "b-dir", "alpha.css", "Beta.js", "zeta.html"}
	for i, w := range want {
		if sorted[i].Path != w {
			t.Errorf("position %d: got %q, want %q (all: %v)", i, sorted[i].Path, w, paths(sorted))
		}
	}

	seenFile := false
	for _, e := range sorted {
		if !e.IsDirectory {
			seenFile = true
		} else if seenFile {
			t.Fatalf("directory %q rendered after a file", e.Path)
		}
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	entries := []models.FileEntry{{Path: "b"}, {Path: "a"}}
	Sort(entries)
	if entries[0].Path != "b" {
		t.Error("Sort must return a copy")
	}
}

func TestSortLocaleAware(t *testing.T) {
	// Byte order would put "Zoo" before "apple" and "émile" after "zebra".
	entries := []models.FileEntry{{Path: "zebra"}, {Path: "émile"}, {Path: "Zoo"}, {Path: "apple"}}
	got := paths(Sort(entries))
	want := []string{"apple", "émile", "zebra", "Zoo"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestDeletable(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"index.html", false},
		{"blog/index.html", false},
		{"index.htm", true},
		{"about.html", true},
		{"img", true},
	}
	for _, tt := range tests {
		if got := Deletable(models.FileEntry{Path: tt.path}); got != tt.want {
			t.Errorf("Deletable(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFindByPathAndCount(t *testing.T) {
	entries := []models.FileEntry{{Path: "a", IsDirectory: true}, {Path: "b.txt"}, {Path: "c.txt"}}
	if _, ok := FindByPath(entries, "b.txt"); !ok {
		t.Error("expected to find b.txt")
	}
	if _, ok := FindByPath(entries, "missing"); ok {
		t.Error("did not expect to find missing")
	}
	dirs, files := CountDirs(entries)
	if dirs != 1 || files != 2 {
		t.Errorf("CountDirs = %d, %d", dirs, files)
	}
}

func paths(entries []models.FileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}
