// Package protocol defines the remote site API request/response types.
package protocol

import "github.com/fruitsalade/sitedeck/pkg/models"

// Envelope discriminator values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Envelope is embedded in every response. Callers branch on Result only,
// never on the HTTP status code.
type Envelope struct {
	Result  string `json:"result"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the envelope signals success.
func (e Envelope) OK() bool {
	return e.Result == ResultSuccess
}

// Failed reports whether the envelope explicitly signals an error.
func (e Envelope) Failed() bool {
	return e.Result == ResultError
}

// AuthStatusResponse is returned by GET /api/auth.
type AuthStatusResponse struct {
	Envelope
	HasUsername bool   `json:"hasUsername"`
	HasAPIKey   bool   `json:"hasApiKey"`
	Username    string `json:"username"`
}

// Authenticated reports whether either credential mode is active.
func (r AuthStatusResponse) Authenticated() bool {
	return r.HasUsername || r.HasAPIKey
}

// AuthRequest is the body for POST /api/auth. All fields empty means logout.
type AuthRequest struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	APIKey   string `json:"apiKey,omitempty"`
}

// LogoutRequest clears both credential modes on the server.
type LogoutRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	APIKey   string `json:"apiKey"`
}

// AuthResponse is returned by POST /api/auth.
type AuthResponse struct {
	Envelope
	Success bool `json:"success"`
}

// InfoResponse is returned by GET /api/info.
type InfoResponse struct {
	Envelope
	Info models.SiteInfo `json:"info"`
}

// ListResponse is returned by GET /api/list.
type ListResponse struct {
	Envelope
	Files []models.FileEntry `json:"files"`
}

// CreateFileRequest is the body for POST /api/create-file.
type CreateFileRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Path     string `json:"path"`
}

// DownloadResponse is returned by GET /api/download/{path}.
type DownloadResponse struct {
	Envelope
	Content string `json:"content"`
}

// DeleteRequest is the body for POST /api/delete.
type DeleteRequest struct {
	Filenames []string `json:"filenames"`
}

// Multipart field names for POST /api/upload.
const (
	UploadFilesField = "files"
	UploadPathField  = "path"
)
