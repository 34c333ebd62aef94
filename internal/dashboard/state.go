// Package dashboard holds the dashboard state and its transitions.
//
// Every change goes through Reduce, a pure function from a state and an
// event to a new state and a list of effects. The Controller executes the
// effects against the site API and feeds their results back as events.
package dashboard

import (
	"github.com/fruitsalade/sitedeck/pkg/models"
	"github.com/fruitsalade/sitedeck/pkg/tree"
)

// View is the top-level screen.
type View int

const (
	// ViewStarting is shown until the first status check resolves.
	ViewStarting View = iota
	ViewLogin
	ViewDashboard
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewDashboard:
		return "dashboard"
	}
	return "starting"
}

// Modal identifies the open dialog.
type Modal string

const (
	ModalNone    Modal = ""
	ModalCreate  Modal = "create"
	ModalUpload  Modal = "upload"
	ModalEdit    Modal = "edit"
	ModalConfirm Modal = "confirm"
)

// Placeholder editor contents.
const (
	EditorLoadingText = "Loading..."
	EditorFailedText  = "Failed to load file content"
)

// Editor is the edit modal buffer.
type Editor struct {
	Path    string
	Content string
	Loading bool
	Failed  bool
	Saving  bool
}

// Viewer holds the last file fetched for read-only viewing.
type Viewer struct {
	Path    string
	Content string
}

// State is the whole dashboard. Values are replaced, never patched in
// place: Files is a fresh slice per listing.
type State struct {
	View    View
	Session models.Session

	SiteInfo    models.SiteInfo
	HasSiteInfo bool

	CurrentPath string
	Files       []models.FileEntry
	Breadcrumbs []tree.Crumb
	// Listed is true once a listing has succeeded since login.
	Listed bool

	// Loading counts listing calls in flight.
	Loading int
	// ListSeq is the sequence number of the newest listing issued.
	ListSeq uint64

	Modal Modal
	// ModalPath pre-fills the destination directory of the create and
	// upload dialogs.
	ModalPath    string
	DeleteTarget string
	Editor       Editor
	Viewer       Viewer

	DarkMode bool
}

// Initial returns the state before any preference or status is loaded.
func Initial() State {
	return State{
		View:        ViewStarting,
		Breadcrumbs: tree.Breadcrumbs(""),
	}
}

// IsLoading reports whether a listing call is outstanding.
func (s State) IsLoading() bool {
	return s.Loading > 0
}

// Authenticated reports whether the dashboard view is active.
func (s State) Authenticated() bool {
	return s.Session.Authenticated
}

// clone copies the slices so a snapshot handed to a renderer cannot alias
// the controller's state.
func (s State) clone() State {
	if s.Files != nil {
		s.Files = append([]models.FileEntry(nil), s.Files...)
	}
	if s.Breadcrumbs != nil {
		s.Breadcrumbs = append([]tree.Crumb(nil), s.Breadcrumbs...)
	}
	return s
}
