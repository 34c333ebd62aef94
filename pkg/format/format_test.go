package format

import (
	"testing"
	"time"

	"github.com/fruitsalade/sitedeck/pkg/models"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 Bytes"},
		{1, "1 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1100, "1.07 KB"},
		{1024 * 1024, "1 MB"},
		{5 * 1024 * 1024 * 1024, "5 GB"},
		{3 * 1024 * 1024 * 1024 * 1024, "3072 GB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSizeDirectory(t *testing.T) {
	if got := Size(models.FileEntry{Path: "img", IsDirectory: true, Size: 4096}); got != "-" {
		t.Errorf("directory size = %q, want -", got)
	}
	if got := Size(models.FileEntry{Path: "a.txt", Size: 1536}); got != "1.5 KB" {
		t.Errorf("file size = %q", got)
	}
}

func TestDate(t *testing.T) {
	if got := Date(models.Timestamp{}); got != "-" {
		t.Errorf("zero date = %q", got)
	}
	ts := models.Timestamp{Time: time.Date(2024, 3, 1, 10, 30, 0, 0, time.Local)}
	if got := Date(ts); got != "Mar 1, 2024 10:30" {
		t.Errorf("Date = %q", got)
	}
}

func TestRelativeTo(t *testing.T) {
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	ts := models.Timestamp{Time: now.Add(-72 * time.Hour)}
	if got := relativeTo(ts, now); got != "3 days ago" {
		t.Errorf("RelativeTo = %q", got)
	}
	if got := relativeTo(models.Timestamp{}, now); got != "" {
		t.Errorf("zero relative = %q", got)
	}
}

func TestHits(t *testing.T) {
	if got := Hits(1234567); got != "1,234,567" {
		t.Errorf("Hits = %q", got)
	}
	if got := Hits(12); got != "12" {
		t.Errorf("Hits = %q", got)
	}
}

func TestKindAndIcon(t *testing.T) {
	tests := []struct {
		path string
		dir  bool
		kind string
		icon string
	}{
		{"index.HTML", false, "html", "code"},
		{"style.css", false, "css", "palette"},
		{"app.js", false, "js", "cogs"},
		{"data.json", false, "json", "brackets-curly"},
		{"README.md", false, "md", "markdown"},
		{"notes.txt", false, "txt", "file-alt"},
		{"img/cat.webp", false, "image", "image"},
		{"doc.pdf", false, "", "file-pdf"},
		{"bundle.7z", false, "", "file-archive"},
		{"Makefile", false, "", "file"},
		{"assets", true, "", "folder"},
	}
	for _, tt := range tests {
		e := models.FileEntry{Path: tt.path, IsDirectory: tt.dir}
		if !tt.dir {
			if got := Kind(e.Name()); got != tt.kind {
				t.Errorf("Kind(%q) = %q, want %q", tt.path, got, tt.kind)
			}
		}
		if got := Icon(e); got != tt.icon {
			t.Errorf("Icon(%q) = %q, want %q", tt.path, got, tt.icon)
		}
	}
}
