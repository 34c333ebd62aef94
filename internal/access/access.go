// Package access guards the local dashboard with optional basic auth and
// sets hardening headers on every response.
package access

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type ctxKey string

const userKey ctxKey = "sitedeck.user"

// UserFromContext returns the authenticated dashboard user, if any.
func UserFromContext(ctx context.Context) string {
	v, _ := ctx.Value(userKey).(string)
	return v
}

// Guard checks basic-auth credentials against one user and bcrypt hash.
// An empty user disables the guard.
type Guard struct {
	User   string
	Bcrypt string
	Realm  string
	// Open lists paths served without credentials.
	Open []string
}

// Enabled reports whether credentials are required.
func (g Guard) Enabled() bool {
	return g.User != "" && g.Bcrypt != ""
}

// Wrap returns next behind the guard.
func (g Guard) Wrap(next http.Handler) http.Handler {
	if !g.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, p := range g.Open {
			if r.URL.Path == p {
				next.ServeHTTP(w, r)
				return
			}
		}
		u, p, ok := r.BasicAuth()
		if !ok || strings.Contains(u, "\x00") || strings.Contains(p, "\x00") {
			g.deny(w)
			return
		}
		userOK := subtle.ConstantTimeCompare([]byte(u), []byte(g.User)) == 1
		passErr := bcrypt.CompareHashAndPassword([]byte(g.Bcrypt), []byte(p))
		if !userOK || passErr != nil {
			g.deny(w)
			return
		}
		r = r.WithContext(context.WithValue(r.Context(), userKey, u))
		next.ServeHTTP(w, r)
	})
}

func (g Guard) deny(w http.ResponseWriter) {
	realm := g.Realm
	if realm == "" {
		realm = "sitedeck"
	}
	w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

// HashPassword returns a bcrypt hash suitable for DASHBOARD_PASSWORD_BCRYPT.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Headers sets basic hardening headers. Static assets may be cached;
// everything else is rendered from live state and is not.
func Headers(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self'; script-src 'self'; img-src 'self' data:")
		if strings.HasPrefix(r.URL.Path, "/static/") {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		} else {
			w.Header().Set("Cache-Control", "no-store")
		}
		next.ServeHTTP(w, r)
	})
}
