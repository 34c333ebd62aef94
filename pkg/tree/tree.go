// Package tree provides path and listing helpers for flat, path-tagged
// directory listings.
package tree

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/fruitsalade/sitedeck/pkg/models"
)

// HomeLabel is the label of the first breadcrumb.
const HomeLabel = "Home"

// ProtectedName is the entry name that is never offered for deletion.
const ProtectedName = "index.html"

// Crumb is one breadcrumb: a label and the directory it navigates to.
type Crumb struct {
	Label string
	Path  string
}

// Segments returns the non-empty components of a slash-separated path.
func Segments(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Clean normalises a directory path: no leading, trailing or doubled
// slashes. The root is "".
func Clean(path string) string {
	return strings.Join(Segments(path), "/")
}

// Breadcrumbs returns Home followed by one crumb per segment of current,
// each mapping to the cumulative prefix path.
func Breadcrumbs(current string) []Crumb {
	crumbs := []Crumb{{Label: HomeLabel, Path: ""}}
	var built string
	for _, seg := range Segments(current) {
		if built == "" {
			built = seg
		} else {
			built += "/" + seg
		}
		crumbs = append(crumbs, Crumb{Label: seg, Path: built})
	}
	return crumbs
}

// BuildChildPath constructs a child path from parent + name.
func BuildChildPath(parentPath, name string) string {
	if parentPath == "" {
		return name
	}
	return parentPath + "/" + name
}

// Parent returns the directory containing path, "" for top-level entries.
func Parent(path string) string {
	segs := Segments(path)
	if len(segs) <= 1 {
		return ""
	}
	return strings.Join(segs[:len(segs)-1], "/")
}

// Sort returns a sorted copy of entries: directories before files, and
// within each group locale-aware lexicographic order by full path.
func Sort(entries []models.FileEntry) []models.FileEntry {
	sorted := make([]models.FileEntry, len(entries))
	copy(sorted, entries)

	// Collators are not safe for concurrent use; one per call.
	col := collate.New(language.Und)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.IsDirectory != b.IsDirectory {
			return a.IsDirectory
		}
		return col.CompareString(a.Path, b.Path) < 0
	})
	return sorted
}

// Deletable reports whether the UI may offer a delete action for e.
func Deletable(e models.FileEntry) bool {
	return e.Name() != ProtectedName
}

// FindByPath returns the entry with the given path.
func FindByPath(entries []models.FileEntry, path string) (models.FileEntry, bool) {
	for _, e := range entries {
		if e.Path == path {
			return e, true
		}
	}
	return models.FileEntry{}, false
}

// CountDirs returns the number of directories and files in entries.
func CountDirs(entries []models.FileEntry) (dirs, files int) {
	for _, e := range entries {
		if e.IsDirectory {
			dirs++
		} else {
			files++
		}
	}
	return dirs, files
}
