package dashboard

import (
	"errors"

	"github.com/fruitsalade/sitedeck/internal/notify"
	"github.com/fruitsalade/sitedeck/pkg/client"
	"github.com/fruitsalade/sitedeck/pkg/models"
	"github.com/fruitsalade/sitedeck/pkg/protocol"
)

// FormError is a browser submission the dashboard could not read. Reason,
// when set, is shown after the failure message.
type FormError struct {
	Reason string
	Err    error
}

func (e *FormError) Error() string {
	if e.Reason == "" {
		return e.Err.Error()
	}
	return e.Reason + ": " + e.Err.Error()
}

func (e *FormError) Unwrap() error { return e.Err }

// formReason returns the Reason of a FormError in err's chain, or "".
func formReason(err error) string {
	var fe *FormError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	return ""
}

// Event is an input to Reduce: either a user command or the result of an
// effect.
type Event interface {
	event()
}

// Commands.
type (
	// PrefsLoaded applies the stored preferences at startup.
	PrefsLoaded struct{ DarkMode bool }

	CheckStatus struct{}

	// Authenticate submits one credential mode. UseAPIKey selects which
	// fields are read.
	Authenticate struct {
		UseAPIKey bool
		Username  string
		Password  string
		APIKey    string
	}

	Logout struct{}

	Navigate struct{ Path string }

	// Refresh reloads the listing, then site info, then confirms.
	Refresh struct{}

	OpenModal struct{ Modal Modal }

	CloseModal struct{}

	CreateFile struct {
		Filename string
		Content  string
		Path     string
	}

	// Upload sends Files into Path. Err is set instead when the upload
	// form itself could not be read.
	Upload struct {
		Files []client.UploadFile
		Path  string
		Err   error
	}

	OpenEditor struct{ Path string }

	SaveEdit struct{ Content string }

	ViewFile struct{ Path string }

	RequestDelete struct{ Path string }

	ConfirmDelete struct{}

	ToggleDarkMode struct{}
)

// Effect results.
type (
	StatusLoaded struct {
		Status *protocol.AuthStatusResponse
		Err    error
	}

	AuthDone struct {
		UseAPIKey bool
		Err       error
	}

	LogoutDone struct{ Err error }

	SiteInfoLoaded struct {
		Info *models.SiteInfo
		Err  error
	}

	ListingLoaded struct {
		Seq   uint64
		Path  string
		Files []models.FileEntry
		Err   error
	}

	CreateDone struct{ Err error }

	UploadDone struct{ Err error }

	EditorLoaded struct {
		Path    string
		Content string
		Err     error
	}

	SaveDone struct {
		Path string
		Err  error
	}

	ViewLoaded struct {
		Path    string
		Content string
		Err     error
	}

	DeleteDone struct {
		Path string
		Err  error
	}

	PrefSaved struct{ Err error }
)

func (PrefsLoaded) event()    {}
func (CheckStatus) event()    {}
func (Authenticate) event()   {}
func (Logout) event()         {}
func (Navigate) event()       {}
func (Refresh) event()        {}
func (OpenModal) event()      {}
func (CloseModal) event()     {}
func (CreateFile) event()     {}
func (Upload) event()         {}
func (OpenEditor) event()     {}
func (SaveEdit) event()       {}
func (ViewFile) event()       {}
func (RequestDelete) event()  {}
func (ConfirmDelete) event()  {}
func (ToggleDarkMode) event() {}

func (StatusLoaded) event()   {}
func (AuthDone) event()       {}
func (LogoutDone) event()     {}
func (SiteInfoLoaded) event() {}
func (ListingLoaded) event()  {}
func (CreateDone) event()     {}
func (UploadDone) event()     {}
func (EditorLoaded) event()   {}
func (SaveDone) event()       {}
func (ViewLoaded) event()     {}
func (DeleteDone) event()     {}
func (PrefSaved) event()      {}

// Effect is work Reduce asks the Controller to perform.
type Effect interface {
	effect()
}

// Effects.
type (
	FetchStatus struct{}

	PostCredentials struct {
		UseAPIKey bool
		Creds     client.Credentials
	}

	PostLogout struct{}

	FetchSiteInfo struct{}

	FetchListing struct {
		Seq  uint64
		Path string
	}

	PostCreate struct {
		Filename string
		Content  string
		Path     string
	}

	PostUpload struct {
		Files []client.UploadFile
		Path  string
	}

	// FetchContent reads a file for the editor, or for the viewer when
	// ForView is set.
	FetchContent struct {
		Path    string
		ForView bool
	}

	PostSave struct {
		Path    string
		Content string
	}

	PostDelete struct{ Path string }

	ShowNotification struct {
		Message  string
		Severity notify.Severity
	}

	StoreDarkMode struct{ On bool }
)

func (FetchStatus) effect()      {}
func (PostCredentials) effect()  {}
func (PostLogout) effect()       {}
func (FetchSiteInfo) effect()    {}
func (FetchListing) effect()     {}
func (PostCreate) effect()       {}
func (PostUpload) effect()       {}
func (FetchContent) effect()     {}
func (PostSave) effect()         {}
func (PostDelete) effect()       {}
func (ShowNotification) effect() {}
func (StoreDarkMode) effect()    {}
