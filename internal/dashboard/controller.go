package dashboard

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/fruitsalade/sitedeck/internal/events"
	"github.com/fruitsalade/sitedeck/internal/metrics"
	"github.com/fruitsalade/sitedeck/internal/notify"
	"github.com/fruitsalade/sitedeck/pkg/client"
	"github.com/fruitsalade/sitedeck/pkg/models"
	"github.com/fruitsalade/sitedeck/pkg/protocol"
	"github.com/fruitsalade/sitedeck/pkg/tree"
)

// API is the subset of *client.Client the controller drives.
type API interface {
	AuthStatus(ctx context.Context) (*protocol.AuthStatusResponse, error)
	Authenticate(ctx context.Context, creds client.Credentials) error
	Logout(ctx context.Context) error
	SiteInfo(ctx context.Context) (*models.SiteInfo, error)
	List(ctx context.Context, dir string) ([]models.FileEntry, error)
	CreateFile(ctx context.Context, filename, content, dir string) error
	Upload(ctx context.Context, files []client.UploadFile, dir string) error
	Read(ctx context.Context, path string) (string, error)
	SaveText(ctx context.Context, path, content string) error
	Delete(ctx context.Context, paths ...string) error
}

// Notifier shows notifications. *notify.Queue satisfies it.
type Notifier interface {
	Notify(message string, sev notify.Severity) notify.Notification
}

// Preferences persists the dark-mode flag. *prefs.Store satisfies it.
type Preferences interface {
	DarkMode() (bool, error)
	SetDarkMode(on bool) error
}

// Config wires a Controller.
type Config struct {
	API       API
	Notifier  Notifier
	Prefs     Preferences      // optional
	Publisher notify.Publisher // optional; receives state-change events
	Logger    *zap.Logger      // optional
}

// Controller owns the dashboard State. State changes happen under a mutex;
// API calls run outside it so other requests are served meanwhile.
type Controller struct {
	mu    sync.Mutex
	state State

	api   API
	notes Notifier
	prefs Preferences
	pub   notify.Publisher
	log   *zap.Logger

	// listMu guards the cancel func of the newest listing call.
	listMu     sync.Mutex
	listSeq    uint64
	listCancel context.CancelFunc
}

// NewController creates a controller in the initial state.
func NewController(cfg Config) *Controller {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		state: Initial(),
		api:   cfg.API,
		notes: cfg.Notifier,
		prefs: cfg.Prefs,
		pub:   cfg.Publisher,
		log:   log,
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// LoadPreferences applies stored preferences. It performs no network I/O
// and is meant to run before the first CheckStatus.
func (c *Controller) LoadPreferences() {
	if c.prefs == nil {
		return
	}
	dark, err := c.prefs.DarkMode()
	if err != nil {
		c.log.Warn("load preferences", zap.Error(err))
	}
	c.apply(PrefsLoaded{DarkMode: dark})
}

// Dispatch applies ev and runs the resulting effects to completion, in
// order. Effects produced by a result run before the remaining effects of
// the same command, so a command behaves like a sequence of awaited calls.
// The returned snapshot reflects every transition the command caused.
//
// Calls are detached from ctx cancellation: a browser navigating away does
// not abort work already started.
func (c *Controller) Dispatch(ctx context.Context, ev Event) State {
	c.dispatch(ctx, ev, nil)
	return c.State()
}

// View reads path for the standalone viewer. The content comes from this
// call's own result rather than the shared State.Viewer, so concurrent views
// of different files do not see each other. ok is false when the read
// failed or was refused.
func (c *Controller) View(ctx context.Context, path string) (v Viewer, ok bool) {
	c.dispatch(ctx, ViewFile{Path: path}, func(res Event) {
		if l, isView := res.(ViewLoaded); isView && l.Err == nil && l.Path == path {
			v, ok = Viewer{Path: l.Path, Content: l.Content}, true
		}
	})
	return v, ok
}

// dispatch runs ev to completion, handing every result event to observe.
func (c *Controller) dispatch(ctx context.Context, ev Event, observe func(Event)) {
	ctx = context.WithoutCancel(ctx)

	if u, ok := ev.(Upload); ok && u.Err != nil {
		c.logFailure(client.OpUpload, u.Path, u.Err)
	}

	queue := c.apply(ev)
	for len(queue) > 0 {
		eff := queue[0]
		queue = queue[1:]
		res := c.run(ctx, eff)
		if res == nil {
			continue
		}
		if observe != nil {
			observe(res)
		}
		queue = append(c.apply(res), queue...)
	}
}

func (c *Controller) apply(ev Event) []Effect {
	c.mu.Lock()
	before := c.state
	if l, ok := ev.(ListingLoaded); ok {
		switch {
		case l.Seq != c.state.ListSeq:
			metrics.RecordStaleListing()
			c.log.Debug("discarding stale listing", zap.Uint64("seq", l.Seq), zap.Uint64("latest", c.state.ListSeq), zap.String("path", l.Path))
		case l.Err == nil:
			metrics.SetListingEntries(len(l.Files))
		}
	}
	next, effects := Reduce(c.state, ev)
	c.state = next
	c.mu.Unlock()

	if c.pub != nil && (changesView(ev) || inFlightChanged(before, next)) {
		c.pub.Publish(events.Event{Type: events.EventState})
	}
	return effects
}

// changesView reports whether ev is a result that can alter what the page
// shows. Commands only publish through inFlightChanged: the sending browser
// is blocked until its command finishes, so only other tabs would see them.
func changesView(ev Event) bool {
	switch ev.(type) {
	case StatusLoaded, LogoutDone, SiteInfoLoaded, ListingLoaded,
		CreateDone, UploadDone, EditorLoaded, SaveDone, DeleteDone:
		return true
	}
	return false
}

// inFlightChanged reports whether a loading or saving indicator moved.
func inFlightChanged(before, after State) bool {
	return before.IsLoading() != after.IsLoading() ||
		before.Editor.Loading != after.Editor.Loading ||
		before.Editor.Saving != after.Editor.Saving
}

// run executes one effect and returns the event describing its outcome,
// or nil when there is none.
func (c *Controller) run(ctx context.Context, eff Effect) Event {
	switch e := eff.(type) {
	case ShowNotification:
		if c.notes != nil {
			c.notes.Notify(e.Message, e.Severity)
		}
		return nil

	case StoreDarkMode:
		if c.prefs == nil {
			return nil
		}
		err := c.prefs.SetDarkMode(e.On)
		if err != nil {
			c.log.Error("save preference", zap.Error(err))
		}
		return PrefSaved{Err: err}

	case FetchStatus:
		status, err := c.api.AuthStatus(ctx)
		c.logFailure(client.OpAuthStatus, "", err)
		return StatusLoaded{Status: status, Err: err}

	case PostCredentials:
		err := c.api.Authenticate(ctx, e.Creds)
		c.logFailure(client.OpAuthenticate, "", err)
		return AuthDone{UseAPIKey: e.UseAPIKey, Err: err}

	case PostLogout:
		err := c.api.Logout(ctx)
		c.logFailure(client.OpLogout, "", err)
		return LogoutDone{Err: err}

	case FetchSiteInfo:
		info, err := c.api.SiteInfo(ctx)
		c.logFailure(client.OpSiteInfo, "", err)
		return SiteInfoLoaded{Info: info, Err: err}

	case FetchListing:
		return c.list(ctx, e)

	case PostCreate:
		err := c.api.CreateFile(ctx, e.Filename, e.Content, e.Path)
		c.logFailure(client.OpCreateFile, tree.BuildChildPath(e.Path, e.Filename), err)
		return CreateDone{Err: err}

	case PostUpload:
		err := c.api.Upload(ctx, e.Files, e.Path)
		c.logFailure(client.OpUpload, e.Path, err)
		return UploadDone{Err: err}

	case FetchContent:
		content, err := c.api.Read(ctx, e.Path)
		c.logFailure(client.OpRead, e.Path, err)
		if e.ForView {
			return ViewLoaded{Path: e.Path, Content: content, Err: err}
		}
		return EditorLoaded{Path: e.Path, Content: content, Err: err}

	case PostSave:
		err := c.api.SaveText(ctx, e.Path, e.Content)
		c.logFailure(client.OpUpload, e.Path, err)
		return SaveDone{Path: e.Path, Err: err}

	case PostDelete:
		err := c.api.Delete(ctx, e.Path)
		c.logFailure(client.OpDelete, e.Path, err)
		return DeleteDone{Path: e.Path, Err: err}
	}

	c.log.Warn("unknown effect", zap.Any("effect", eff))
	return nil
}

// list runs a listing call, cancelling the previous one if it is still in
// flight. Its result is discarded by sequence number either way.
func (c *Controller) list(ctx context.Context, e FetchListing) Event {
	lctx, cancel := context.WithCancel(ctx)
	c.listMu.Lock()
	if e.Seq > c.listSeq {
		if c.listCancel != nil {
			c.listCancel()
		}
		c.listSeq, c.listCancel = e.Seq, cancel
	}
	c.listMu.Unlock()

	files, err := c.api.List(lctx, e.Path)

	c.listMu.Lock()
	if c.listSeq == e.Seq {
		c.listCancel = nil
	}
	c.listMu.Unlock()
	cancel()

	if errors.Is(err, context.Canceled) {
		c.log.Debug("listing superseded", zap.Uint64("seq", e.Seq), zap.String("path", e.Path))
	} else {
		c.logFailure(client.OpList, e.Path, err)
	}
	return ListingLoaded{Seq: e.Seq, Path: e.Path, Files: files, Err: err}
}

func (c *Controller) logFailure(op, path string, err error) {
	if err == nil {
		return
	}
	fields := []zap.Field{zap.String("op", op), zap.Error(err)}
	if path != "" {
		fields = append(fields, zap.String("path", path))
	}
	if msg := client.ServerMessage(err); msg != "" {
		fields = append(fields, zap.String("server_message", msg))
	}
	c.log.Error("site API call failed", fields...)
}
