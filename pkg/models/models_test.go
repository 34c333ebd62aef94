package models

import (
	"encoding/json"
	"testing"
)

func TestFileEntryName(t *testing.T) {
	tests := map[string]string{
		"index.html":     "index.html",
		"blog/post.html": "post.html",
		"img/":           "img",
		"a/b/c/deep.txt": "deep.txt",
	}
	for in, want := range tests {
		if got := (FileEntry{Path: in}).Name(); got != want {
			t.Errorf("Name(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisplayDomain(t *testing.T) {
	if got := (SiteInfo{Domain: "example.com", Sitename: "x"}).DisplayDomain(); got != "example.com" {
		t.Errorf("got %q", got)
	}
	if got := (SiteInfo{Sitename: "kittens"}).DisplayDomain(); got != "kittens.neocities.org" {
		t.Errorf("got %q", got)
	}
	if got := (SiteInfo{}).DisplayDomain(); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestSessionDisplayName(t *testing.T) {
	if (Session{}).DisplayName() != "User" {
		t.Error("empty username should display as User")
	}
	if (Session{Username: "alice"}).DisplayName() != "alice" {
		t.Error("expected alice")
	}
}

func TestParseTimestamp(t *testing.T) {
	inputs := []string{
		"2024-03-01T10:00:00Z",
		"2024-03-01T10:00:00.123456+02:00",
		"Fri, 01 Mar 2024 10:00:00 +0000",
		"Fri, 01 Mar 2024 10:00:00 GMT",
		"Fri, 1 Mar 2024 10:00:00 -0500",
		"2024-03-01 10:00:00 +0000",
		"2024-03-01T10:00:00",
		"2024-03-01 10:00:00",
		"2024-03-01T10:00:00.000+0000",
	}
	for _, in := range inputs {
		ts, err := ParseTimestamp(in)
		if err != nil {
			t.Errorf("ParseTimestamp(%q): %v", in, err)
			continue
		}
		if ts.Year() != 2024 || ts.Month() != 3 || ts.Day() != 1 {
			t.Errorf("ParseTimestamp(%q) = %v", in, ts)
		}
	}
	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestTimestampJSON(t *testing.T) {
	var e FileEntry
	if err := json.Unmarshal([]byte(`{"path":"a","updated_at":null}`), &e); err != nil {
		t.Fatalf("null: %v", err)
	}
	if !e.UpdatedAt.IsZero() {
		t.Error("null should decode to zero time")
	}
	if err := json.Unmarshal([]byte(`{"path":"a","updated_at":""}`), &e); err != nil {
		t.Fatalf("empty: %v", err)
	}
	for _, raw := range []string{`"nope"`, `"2024-15-45 99:00:00"`, `1705314600`} {
		var e FileEntry
		if err := json.Unmarshal([]byte(`{"path":"a","size":3,"updated_at":`+raw+`}`), &e); err != nil {
			t.Fatalf("updated_at %s should not fail the entry: %v", raw, err)
		}
		if !e.UpdatedAt.IsZero() || e.Size != 3 {
			t.Errorf("updated_at %s: got %+v", raw, e)
		}
		if e.UpdatedAt.Unparsed() == "" {
			t.Errorf("updated_at %s: raw value not kept", raw)
		}
	}
	if err := json.Unmarshal([]byte(`{"path":"a","updated_at":"2024-01-15 10:30:00"}`), &e); err != nil || e.UpdatedAt.Day() != 15 {
		t.Errorf("zone-less date: %v %v", e.UpdatedAt, err)
	}
	if e.UpdatedAt.Unparsed() != "" {
		t.Error("parsed date should not report a raw value")
	}

	out, err := json.Marshal(FileEntry{Path: "a"})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"path":"a","is_directory":false,"size":0,"updated_at":null}` {
		t.Errorf("unexpected json %s", out)
	}
}
