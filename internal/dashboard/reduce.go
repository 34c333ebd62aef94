package dashboard

import (
	"github.com/fruitsalade/sitedeck/internal/notify"
	"github.com/fruitsalade/sitedeck/pkg/client"
	"github.com/fruitsalade/sitedeck/pkg/models"
	"github.com/fruitsalade/sitedeck/pkg/tree"
)

// User-facing messages.
const (
	MsgEnterCredentials = "Please enter both username and password"
	MsgEnterAPIKey      = "Please enter your API key"
	MsgAuthOK           = "Authentication successful!"
	MsgAPIKeyAuthOK     = "API key authentication successful!"
	MsgAuthFailed       = "Authentication failed"
	MsgAPIKeyAuthFailed = "API key authentication failed"
	MsgStatusFailed     = "Failed to check authentication status"
	MsgLoggedOut        = "Logged out successfully"
	MsgLogoutFailed     = "Logout failed"
	MsgSiteInfoFailed   = "Failed to load site information"
	MsgListFailed       = "Failed to load files"
	MsgRefreshed        = "Files and stats refreshed"
	MsgEnterFilename    = "Please enter a file name"
	MsgCreated          = "File created successfully!"
	MsgCreateFailed     = "File creation failed"
	MsgSelectFiles      = "Please select files to upload"
	MsgUploaded         = "Files uploaded successfully!"
	MsgUploadFailed     = "Upload failed"
	MsgLoadContent      = "Failed to load file content"
	MsgSaved            = "File saved successfully!"
	MsgSaveFailed       = "File save failed"
	MsgViewFailed       = "Failed to download file"
	MsgDeleted          = "File deleted successfully!"
	MsgDeleteFailed     = "Delete failed"
	MsgPrefFailed       = "Failed to save preference"
)

// failMessage appends the server message to a fallback, when there is one.
func failMessage(fallback string, err error) string {
	if msg := client.ServerMessage(err); msg != "" {
		return fallback + ": " + msg
	}
	if reason := formReason(err); reason != "" {
		return fallback + ": " + reason
	}
	return fallback
}

func note(message string, sev notify.Severity) Effect {
	return ShowNotification{Message: message, Severity: sev}
}

// Reduce applies ev to s. It performs no I/O.
func Reduce(s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case PrefsLoaded:
		s.DarkMode = ev.DarkMode
		return s, nil

	case ToggleDarkMode:
		s.DarkMode = !s.DarkMode
		return s, []Effect{StoreDarkMode{On: s.DarkMode}}

	case PrefSaved:
		if ev.Err != nil {
			return s, []Effect{note(MsgPrefFailed, notify.Error)}
		}
		return s, nil

	case CheckStatus:
		return s, []Effect{FetchStatus{}}

	case StatusLoaded:
		return reduceStatus(s, ev)

	case Authenticate:
		return reduceAuthenticate(s, ev)

	case AuthDone:
		if ev.Err == nil {
			msg := MsgAuthOK
			if ev.UseAPIKey {
				msg = MsgAPIKeyAuthOK
			}
			return s, []Effect{note(msg, notify.Success), FetchStatus{}}
		}
		msg := client.ServerMessage(ev.Err)
		if msg == "" {
			msg = MsgAuthFailed
			if ev.UseAPIKey {
				msg = MsgAPIKeyAuthFailed
			}
		}
		return s, []Effect{note(msg, notify.Error)}

	case Logout:
		return s, []Effect{PostLogout{}}

	case LogoutDone:
		s = loggedOut(s)
		if ev.Err != nil {
			return s, []Effect{note(MsgLogoutFailed, notify.Error)}
		}
		return s, []Effect{note(MsgLoggedOut, notify.Info)}

	case SiteInfoLoaded:
		if ev.Err != nil || ev.Info == nil {
			return s, []Effect{note(failMessage(MsgSiteInfoFailed, ev.Err), notify.Error)}
		}
		s.SiteInfo = *ev.Info
		s.HasSiteInfo = true
		return s, nil

	case Navigate:
		if !s.Authenticated() {
			return s, nil
		}
		s.CurrentPath = tree.Clean(ev.Path)
		var list Effect
		s, list = issueListing(s)
		return s, []Effect{list}

	case ListingLoaded:
		return reduceListing(s, ev)

	case Refresh:
		if !s.Authenticated() {
			return s, nil
		}
		var list Effect
		s, list = issueListing(s)
		return s, []Effect{list, FetchSiteInfo{}, note(MsgRefreshed, notify.Info)}

	case OpenModal:
		if !s.Authenticated() {
			return s, nil
		}
		switch ev.Modal {
		case ModalCreate, ModalUpload:
			s.Modal = ev.Modal
			s.ModalPath = s.CurrentPath
		}
		return s, nil

	case CloseModal:
		return closeModal(s), nil

	case CreateFile:
		if !s.Authenticated() {
			return s, nil
		}
		if ev.Filename == "" {
			return s, []Effect{note(MsgEnterFilename, notify.Error)}
		}
		return s, []Effect{PostCreate{Filename: ev.Filename, Content: ev.Content, Path: tree.Clean(ev.Path)}}

	case CreateDone:
		if ev.Err != nil {
			return s, []Effect{note(failMessage(MsgCreateFailed, ev.Err), notify.Error)}
		}
		return mutated(s, MsgCreated)

	case Upload:
		if !s.Authenticated() {
			return s, nil
		}
		if ev.Err != nil {
			return s, []Effect{note(failMessage(MsgUploadFailed, ev.Err), notify.Error)}
		}
		if len(ev.Files) == 0 {
			return s, []Effect{note(MsgSelectFiles, notify.Error)}
		}
		return s, []Effect{PostUpload{Files: ev.Files, Path: tree.Clean(ev.Path)}}

	case UploadDone:
		if ev.Err != nil {
			return s, []Effect{note(failMessage(MsgUploadFailed, ev.Err), notify.Error)}
		}
		return mutated(s, MsgUploaded)

	case OpenEditor:
		if !s.Authenticated() || ev.Path == "" {
			return s, nil
		}
		s.Modal = ModalEdit
		s.Editor = Editor{Path: ev.Path, Content: EditorLoadingText, Loading: true}
		return s, []Effect{FetchContent{Path: ev.Path}}

	case EditorLoaded:
		if s.Modal != ModalEdit || s.Editor.Path != ev.Path || !s.Editor.Loading {
			return s, nil
		}
		s.Editor.Loading = false
		if ev.Err != nil {
			s.Editor.Content = EditorFailedText
			s.Editor.Failed = true
			return s, []Effect{note(failMessage(MsgLoadContent, ev.Err), notify.Error)}
		}
		s.Editor.Content = ev.Content
		return s, nil

	case SaveEdit:
		if s.Modal != ModalEdit || s.Editor.Loading || s.Editor.Saving {
			return s, nil
		}
		s.Editor.Content = ev.Content
		s.Editor.Failed = false
		s.Editor.Saving = true
		return s, []Effect{PostSave{Path: s.Editor.Path, Content: ev.Content}}

	case SaveDone:
		if s.Modal == ModalEdit && s.Editor.Path == ev.Path {
			s.Editor.Saving = false
		}
		if ev.Err != nil {
			return s, []Effect{note(failMessage(MsgSaveFailed, ev.Err), notify.Error)}
		}
		return mutated(s, MsgSaved)

	case ViewFile:
		if !s.Authenticated() || ev.Path == "" {
			return s, nil
		}
		s.Viewer = Viewer{}
		return s, []Effect{FetchContent{Path: ev.Path, ForView: true}}

	case ViewLoaded:
		if ev.Err != nil {
			return s, []Effect{note(failMessage(MsgViewFailed, ev.Err), notify.Error)}
		}
		s.Viewer = Viewer{Path: ev.Path, Content: ev.Content}
		return s, nil

	case RequestDelete:
		if !s.Authenticated() || ev.Path == "" {
			return s, nil
		}
		if !tree.Deletable(entryFor(s, ev.Path)) {
			return s, nil
		}
		s.Modal = ModalConfirm
		s.DeleteTarget = ev.Path
		return s, nil

	case ConfirmDelete:
		if s.Modal != ModalConfirm || s.DeleteTarget == "" {
			return s, nil
		}
		return s, []Effect{PostDelete{Path: s.DeleteTarget}}

	case DeleteDone:
		if ev.Err != nil {
			return s, []Effect{note(failMessage(MsgDeleteFailed, ev.Err), notify.Error)}
		}
		return mutated(s, MsgDeleted)
	}
	return s, nil
}

func reduceStatus(s State, ev StatusLoaded) (State, []Effect) {
	var effects []Effect
	failed := ev.Status != nil && ev.Status.Failed()
	if failed {
		msg := ev.Status.Message
		if msg == "" {
			msg = MsgStatusFailed
		}
		effects = append(effects, note(msg, notify.Error))
	}

	sess := client.Session(ev.Status)
	if !sess.Authenticated {
		return loggedOut(s), effects
	}

	s.Session = sess
	s.View = ViewDashboard
	if !failed {
		effects = append(effects, note("Welcome "+sess.DisplayName(), notify.Info))
	}
	s, list := issueListing(s)
	return s, append(effects, FetchSiteInfo{}, list)
}

func reduceAuthenticate(s State, ev Authenticate) (State, []Effect) {
	if ev.UseAPIKey {
		if ev.APIKey == "" {
			return s, []Effect{note(MsgEnterAPIKey, notify.Error)}
		}
		return s, []Effect{PostCredentials{UseAPIKey: true, Creds: client.Credentials{APIKey: ev.APIKey}}}
	}
	if ev.Username == "" || ev.Password == "" {
		return s, []Effect{note(MsgEnterCredentials, notify.Error)}
	}
	return s, []Effect{PostCredentials{Creds: client.Credentials{Username: ev.Username, Password: ev.Password}}}
}

func reduceListing(s State, ev ListingLoaded) (State, []Effect) {
	if s.Loading > 0 {
		s.Loading--
	}
	if ev.Seq != s.ListSeq {
		return s, nil
	}
	if ev.Err != nil {
		return s, []Effect{note(failMessage(MsgListFailed, ev.Err), notify.Error)}
	}
	s.Files = tree.Sort(ev.Files)
	s.Breadcrumbs = tree.Breadcrumbs(ev.Path)
	s.Listed = true
	return s, nil
}

// issueListing raises the loading counter and tags a listing of the
// current path with a fresh sequence number.
func issueListing(s State) (State, Effect) {
	s.ListSeq++
	s.Loading++
	return s, FetchListing{Seq: s.ListSeq, Path: s.CurrentPath}
}

// mutated is the common tail of every successful mutation: confirm, close
// the dialog and refresh the current directory once.
func mutated(s State, message string) (State, []Effect) {
	s = closeModal(s)
	s, list := issueListing(s)
	return s, []Effect{note(message, notify.Success), list}
}

func closeModal(s State) State {
	s.Modal = ModalNone
	s.ModalPath = ""
	s.DeleteTarget = ""
	s.Editor = Editor{}
	return s
}

// loggedOut drops everything tied to the session. The preference and the
// in-flight counter survive; bumping ListSeq orphans outstanding listings.
func loggedOut(s State) State {
	return State{
		View:        ViewLogin,
		Breadcrumbs: tree.Breadcrumbs(""),
		Loading:     s.Loading,
		ListSeq:     s.ListSeq + 1,
		DarkMode:    s.DarkMode,
	}
}

// entryFor returns the listed entry for path, or a synthetic one so the
// name-based delete rule still applies to paths not in the listing.
func entryFor(s State, path string) models.FileEntry {
	if e, ok := tree.FindByPath(s.Files, path); ok {
		return e
	}
	return models.FileEntry{Path: path}
}
