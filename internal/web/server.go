// Package web serves the dashboard to a browser. Every page is rendered on
// the server from the dashboard state; forms post commands and are
// redirected back to the index.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/fruitsalade/sitedeck/internal/access"
	"github.com/fruitsalade/sitedeck/internal/dashboard"
	"github.com/fruitsalade/sitedeck/internal/events"
	"github.com/fruitsalade/sitedeck/internal/logging"
	"github.com/fruitsalade/sitedeck/internal/metrics"
	"github.com/fruitsalade/sitedeck/internal/notify"
	"github.com/fruitsalade/sitedeck/pkg/client"
	"github.com/fruitsalade/sitedeck/pkg/format"
	"github.com/fruitsalade/sitedeck/pkg/models"
	"github.com/fruitsalade/sitedeck/pkg/tree"
	"github.com/fruitsalade/sitedeck/webapp"
)

// DefaultMaxUploadSize bounds a multipart upload request.
const DefaultMaxUploadSize = 100 << 20

// multipartMemory is how much of an upload is held in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// Dashboard is the state machine behind the pages. *dashboard.Controller
// satisfies it.
type Dashboard interface {
	State() dashboard.State
	Dispatch(ctx context.Context, ev dashboard.Event) dashboard.State
	View(ctx context.Context, path string) (dashboard.Viewer, bool)
}

// Notifications is the visible message list. *notify.Queue satisfies it.
type Notifications interface {
	Active() []notify.Notification
	Dismiss(id uint64) bool
}

// Config wires a Server.
type Config struct {
	Dashboard     Dashboard
	Notifications Notifications
	Broadcaster   *events.Broadcaster // optional; enables /events
	MaxUploadSize int64
	Guard         access.Guard
	Logger        *zap.Logger
	// APIBase is shown on the login page.
	APIBase string
}

// Server is the dashboard HTTP server.
type Server struct {
	dash          Dashboard
	notes         Notifications
	broadcaster   *events.Broadcaster
	maxUploadSize int64
	guard         access.Guard
	log           *zap.Logger
	apiBase       string
	tmpl          *template.Template
}

// NewServer parses the embedded templates and creates a server.
func NewServer(cfg Config) (*Server, error) {
	tmpl, err := template.ParseFS(webapp.Assets, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Server{
		dash:          cfg.Dashboard,
		notes:         cfg.Notifications,
		broadcaster:   cfg.Broadcaster,
		maxUploadSize: cfg.MaxUploadSize,
		guard:         cfg.Guard,
		log:           cfg.Logger,
		apiBase:       cfg.APIBase,
		tmpl:          tmpl,
	}, nil
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /events", s.handleEvents)

	static, _ := fs.Sub(webapp.Assets, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/apikey", s.handleAPIKey)
	mux.HandleFunc("POST /auth/logout", s.command(func(*http.Request) dashboard.Event { return dashboard.Logout{} }))

	mux.HandleFunc("GET /browse", s.command(func(r *http.Request) dashboard.Event {
		return dashboard.Navigate{Path: r.URL.Query().Get("path")}
	}))
	mux.HandleFunc("POST /refresh", s.command(func(*http.Request) dashboard.Event { return dashboard.Refresh{} }))

	mux.HandleFunc("GET /modal/{name}", s.handleOpenModal)
	mux.HandleFunc("POST /modal/close", s.command(func(*http.Request) dashboard.Event { return dashboard.CloseModal{} }))

	mux.HandleFunc("POST /files/create", s.handleCreate)
	mux.HandleFunc("POST /files/upload", s.handleUpload)
	mux.HandleFunc("GET /files/edit", s.command(func(r *http.Request) dashboard.Event {
		return dashboard.OpenEditor{Path: r.URL.Query().Get("path")}
	}))
	mux.HandleFunc("POST /files/edit", s.handleSave)
	mux.HandleFunc("GET /files/view", s.handleView)
	mux.HandleFunc("GET /files/delete", s.command(func(r *http.Request) dashboard.Event {
		return dashboard.RequestDelete{Path: r.URL.Query().Get("path")}
	}))
	mux.HandleFunc("POST /files/delete", s.command(func(*http.Request) dashboard.Event { return dashboard.ConfirmDelete{} }))

	mux.HandleFunc("POST /prefs/dark-mode", s.command(func(*http.Request) dashboard.Event { return dashboard.ToggleDarkMode{} }))
	mux.HandleFunc("POST /notifications/{id}/dismiss", s.handleDismiss)

	guard := s.guard
	guard.Open = append(append([]string(nil), guard.Open...), "/health")

	var h http.Handler = metrics.Middleware(mux)
	h = sameOrigin(h)
	h = guard.Wrap(h)
	h = access.Headers(h)
	return logging.Middleware(h)
}

// sameOrigin rejects cross-site form posts. Browsers send Sec-Fetch-Site
// on every request; older ones at least send Origin on POST.
func sameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		if site := r.Header.Get("Sec-Fetch-Site"); site != "" {
			if site != "same-origin" && site != "none" {
				http.Error(w, "cross-site request refused", http.StatusForbidden)
				return
			}
		} else if origin := r.Header.Get("Origin"); origin != "" {
			u, err := url.Parse(origin)
			if err != nil || u.Host != r.Host {
				http.Error(w, "cross-site request refused", http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ─── SSE Events ─────────────────────────────────────────────────────────────

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.broadcaster == nil {
		http.NotFound(w, r)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch, cancel := s.broadcaster.Subscribe()
	defer cancel()
	s.log.Debug("event stream opened", zap.Int("subscribers", s.broadcaster.Count()))

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := events.WriteSSE(w, event); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// ─── Pages ──────────────────────────────────────────────────────────────────

// entryView is one row of the file list, preformatted for the template.
type entryView struct {
	Path        string
	Name        string
	IsDirectory bool
	Size        string
	Updated     string
	Kind        string
	Icon        string
	Deletable   bool
}

type infoView struct {
	Hits                string
	Created             string
	LastUpdated         string
	LastUpdatedRelative string
	Domain              string
}

type pageData struct {
	State   dashboard.State
	Notes   []notify.Notification
	Entries []entryView
	Crumbs  []tree.Crumb
	// Up is the parent directory; HasUp is false at the root.
	Up      string
	HasUp   bool
	Info    infoView
	APIBase string
}

func entries(files []models.FileEntry) []entryView {
	sorted := tree.Sort(files)
	out := make([]entryView, 0, len(sorted))
	for _, f := range sorted {
		out = append(out, entryView{
			Path:        f.Path,
			Name:        f.Name(),
			IsDirectory: f.IsDirectory,
			Size:        format.Size(f),
			Updated:     format.Date(f.UpdatedAt),
			Kind:        format.Kind(f.Name()),
			Icon:        format.Icon(f),
			Deletable:   tree.Deletable(f),
		})
	}
	return out
}

func siteInfo(st dashboard.State) infoView {
	if !st.HasSiteInfo {
		return infoView{Hits: "-", Created: "-", LastUpdated: "-", Domain: "-"}
	}
	info := st.SiteInfo
	v := infoView{
		Hits:        format.Hits(info.Hits),
		Created:     format.Date(info.CreatedAt),
		LastUpdated: format.Date(info.LastUpdated),
		Domain:      info.DisplayDomain(),
	}
	if !info.LastUpdated.IsZero() {
		v.LastUpdatedRelative = format.Relative(info.LastUpdated)
	}
	if v.Domain == "" {
		v.Domain = "-"
	}
	return v
}

func (s *Server) page(st dashboard.State) pageData {
	return pageData{
		State:   st,
		Notes:   s.notes.Active(),
		Entries: entries(st.Files),
		Crumbs:  st.Breadcrumbs,
		Up:      tree.Parent(st.CurrentPath),
		HasUp:   st.CurrentPath != "",
		Info:    siteInfo(st),
		APIBase: s.apiBase,
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		logging.WithContext(r.Context()).Error("render template", zap.String("template", name), zap.Error(err))
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st := s.dash.State()
	if st.View == dashboard.ViewDashboard {
		s.render(w, r, "dashboard", s.page(st))
		return
	}
	s.render(w, r, "login", s.page(st))
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		redirectHome(w, r)
		return
	}
	v, ok := s.dash.View(r.Context(), path)
	if !ok {
		redirectHome(w, r)
		return
	}
	s.render(w, r, "view", v)
}

// ─── Commands ───────────────────────────────────────────────────────────────

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// command returns a handler that dispatches the event built from the
// request and redirects to the index.
func (s *Server) command(build func(*http.Request) dashboard.Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.dash.Dispatch(r.Context(), build(r))
		redirectHome(w, r)
	}
}

// formText returns a form field with browser line endings normalised.
func formText(r *http.Request, key string) string {
	return strings.ReplaceAll(r.PostFormValue(key), "\r\n", "\n")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.dash.Dispatch(r.Context(), dashboard.Authenticate{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	})
	redirectHome(w, r)
}

func (s *Server) handleAPIKey(w http.ResponseWriter, r *http.Request) {
	s.dash.Dispatch(r.Context(), dashboard.Authenticate{
		UseAPIKey: true,
		APIKey:    r.PostFormValue("api_key"),
	})
	redirectHome(w, r)
}

func (s *Server) handleOpenModal(w http.ResponseWriter, r *http.Request) {
	var m dashboard.Modal
	switch r.PathValue("name") {
	case string(dashboard.ModalCreate):
		m = dashboard.ModalCreate
	case string(dashboard.ModalUpload):
		m = dashboard.ModalUpload
	default:
		http.NotFound(w, r)
		return
	}
	s.dash.Dispatch(r.Context(), dashboard.OpenModal{Modal: m})
	redirectHome(w, r)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	s.dash.Dispatch(r.Context(), dashboard.CreateFile{
		Filename: r.PostFormValue("filename"),
		Content:  formText(r, "content"),
		Path:     r.PostFormValue("path"),
	})
	redirectHome(w, r)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	s.dash.Dispatch(r.Context(), dashboard.SaveEdit{Content: formText(r, "content")})
	redirectHome(w, r)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		fe := &dashboard.FormError{Err: err}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fe.Reason = "upload exceeds " + format.FormatBytes(tooLarge.Limit)
		}
		s.dash.Dispatch(r.Context(), dashboard.Upload{Err: fe})
		redirectHome(w, r)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	files := make([]uploadPart, 0, len(headers))
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			s.dash.Dispatch(r.Context(), dashboard.Upload{
				Path: r.PostFormValue("path"),
				Err:  fmt.Errorf("open upload part %q: %w", fh.Filename, err),
			})
			redirectHome(w, r)
			return
		}
		files = append(files, uploadPart{name: fh.Filename, File: f})
	}

	s.dash.Dispatch(r.Context(), dashboard.Upload{
		Files: uploadFiles(files),
		Path:  r.PostFormValue("path"),
	})
	redirectHome(w, r)
}

type uploadPart struct {
	name string
	multipart.File
}

func uploadFiles(parts []uploadPart) []client.UploadFile {
	out := make([]client.UploadFile, 0, len(parts))
	for _, p := range parts {
		out = append(out, client.UploadFile{Name: p.name, Content: p.File})
	}
	return out
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid notification id", http.StatusBadRequest)
		return
	}
	s.notes.Dismiss(id)
	redirectHome(w, r)
}
