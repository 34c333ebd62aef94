package logging

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := L()
	Set(zap.New(core))
	t.Cleanup(func() { Set(prev) })
	return logs
}

func TestMiddlewareGeneratesRequestID(t *testing.T) {
	logs := observe(t)

	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/browse", nil))

	if seen == "" {
		t.Fatal("expected a request ID in the handler context")
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("response header %q does not match context %q", rec.Header().Get(RequestIDHeader), seen)
	}

	done := logs.FilterMessage("request").All()
	if len(done) != 1 {
		t.Fatalf("expected one request log, got %d", len(done))
	}
	if done[0].Level != zapcore.InfoLevel {
		t.Errorf("expected info level, got %v", done[0].Level)
	}
	fields := done[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) {
		t.Errorf("status field = %v", fields["status"])
	}
	if fields["request_id"] != seen {
		t.Errorf("request_id field = %v", fields["request_id"])
	}
}

func TestMiddlewareRequestIDFromCaller(t *testing.T) {
	observe(t)
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	tests := []struct {
		name string
		in   string
		keep bool
	}{
		{"plain", "abc-123", true},
		{"too long", strings.Repeat("a", maxRequestIDLen+1), false},
		{"control characters", "abc\x01", false},
		{"spaces", "a b", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, tt.in)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if tt.keep && got != tt.in {
				t.Errorf("expected %q to be echoed, got %q", tt.in, got)
			}
			if !tt.keep && (got == tt.in || got == "") {
				t.Errorf("expected a fresh ID, got %q", got)
			}
		})
	}
}

func TestMiddlewareLevels(t *testing.T) {
	logs := observe(t)

	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	for _, p := range []string{"/static/style.css", "/events", "/boom"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	want := map[string]zapcore.Level{
		"/static/style.css": zapcore.DebugLevel,
		"/events":           zapcore.DebugLevel,
		"/boom":             zapcore.ErrorLevel,
	}
	for _, e := range logs.All() {
		path, _ := e.ContextMap()["path"].(string)
		if lvl, ok := want[path]; ok && e.Level != lvl {
			t.Errorf("%s logged at %v, want %v", path, e.Level, lvl)
		}
	}
}

func TestMiddlewarePassesFlusher(t *testing.T) {
	observe(t)

	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := w.(http.Flusher); !ok {
			t.Error("wrapped writer must implement http.Flusher")
		}
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events", nil))
}

func TestSetLevel(t *testing.T) {
	SetLevel("error")
	defer SetLevel("info")
	if level.Enabled(zapcore.WarnLevel) {
		t.Error("warn should be disabled at error level")
	}
	SetLevel("bogus")
	if level.Level() != zapcore.ErrorLevel {
		t.Error("invalid level must be ignored")
	}
}

func TestInitWritesToFile(t *testing.T) {
	prev := L()
	t.Cleanup(func() { Set(prev); SetLevel("info") })

	path := t.TempDir() + "/sitedeck.log"
	if err := Init(Config{Level: "debug", Format: "json", OutputPath: path}); err != nil {
		t.Fatal(err)
	}
	Named("test").Debug("hello")
	Sync()
	if !level.Enabled(zapcore.DebugLevel) {
		t.Error("debug level not applied")
	}
}
