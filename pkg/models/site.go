// Package models contains the data types shared by the dashboard, the CLI and the API client.
package models

import "strings"

// FileEntry is one immediate child of a listed directory.
type FileEntry struct {
	Path        string    `json:"path"`
	IsDirectory bool      `json:"is_directory"`
	Size        int64     `json:"size"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

// Name returns the final path segment.
func (e FileEntry) Name() string {
	p := strings.TrimSuffix(e.Path, "/")
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

// SiteInfo describes the hosted site. Read-only.
type SiteInfo struct {
	Hits        int64     `json:"hits"`
	CreatedAt   Timestamp `json:"created_at"`
	LastUpdated Timestamp `json:"last_updated"`
	Domain      string    `json:"domain"`
	Sitename    string    `json:"sitename"`
}

// DisplayDomain returns the custom domain, falling back to the default
// subdomain derived from the site name.
func (s SiteInfo) DisplayDomain() string {
	if s.Domain != "" {
		return s.Domain
	}
	if s.Sitename == "" {
		return ""
	}
	return s.Sitename + ".neocities.org"
}

// Session is the in-memory authentication state of the dashboard.
type Session struct {
	Authenticated bool
	Username      string
	HasUsername   bool
	HasAPIKey     bool
}

// DisplayName returns the username, or "User" for key-only sessions.
func (s Session) DisplayName() string {
	if s.Username == "" {
		return "User"
	}
	return s.Username
}
