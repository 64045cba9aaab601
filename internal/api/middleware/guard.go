package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/DemisRincon/skill-up/internal/domain"
	"github.com/DemisRincon/skill-up/internal/pkg/logger"
)

// SessionResolver validates a session token and resolves the holder's
// identity and role in one synchronous check.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Session, error)
}

const (
	loginPath     = "/auth/login"
	dashboardPath = "/dashboard"
)

// Guard intercepts every request and enforces the session and role rules:
// unauthenticated callers of protected paths are redirected to login with
// the original path preserved, authenticated callers are kept off the auth
// pages, and manager-restricted paths require the manager role. A session
// lookup failure counts as unauthenticated.
func Guard(resolver SessionResolver, cookieName string, logger *logger.Logger) func(next http.Handler) http.Handler {
	log := logger.Component("middleware/guard")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			var session *domain.Session
			if token := extractToken(r, cookieName); token != "" {
				resolved, err := resolver.Resolve(r.Context(), token)
				if err != nil {
					log.Debug("session resolution failed", "error", err)
				} else {
					session = resolved
				}
			}

			// signed-in users have no business on the auth pages
			if isAuthPage(path) {
				if session != nil {
					http.Redirect(w, r, dashboardPath, http.StatusTemporaryRedirect)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if isPublicPath(path) {
				if session != nil {
					r = r.WithContext(WithSession(r.Context(), session))
				}
				next.ServeHTTP(w, r)
				return
			}

			if session == nil {
				if isAPIPath(path) {
					writeGuardError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
					return
				}
				redirect := loginPath + "?" + url.Values{"redirectTo": {path}}.Encode()
				http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
				return
			}

			if isManagerPath(path) && !session.IsManager() {
				log.Warn("non-manager denied",
					"path", path,
					"profile_id", session.ProfileID,
				)
				if isAPIPath(path) {
					writeGuardError(w, http.StatusForbidden, "NOT_ASSIGNED", "manager role required")
					return
				}
				http.Redirect(w, r, dashboardPath, http.StatusTemporaryRedirect)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

func extractToken(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := r.Header.Get("Authorization")
	if token := strings.TrimPrefix(auth, "Bearer "); token != auth {
		return token
	}
	return ""
}

func isAuthPage(path string) bool {
	return path == "/auth/login" || path == "/auth/register"
}

// isPublicPath lists everything reachable without a session: static assets,
// liveness, the auth endpoints themselves, the invite-send endpoint (its
// contract is defined entirely by its body), and the invite-token respond
// flow (the token is the credential).
func isPublicPath(path string) bool {
	switch path {
	case "/health", "/api/auth/login", "/api/auth/register", "/api/send-invites":
		return true
	}
	return strings.HasPrefix(path, "/static/") ||
		strings.HasPrefix(path, "/dashboard/survey/respond/")
}

func isManagerPath(path string) bool {
	return path == "/dashboard/survey" ||
		strings.HasPrefix(path, "/dashboard/surveys/") ||
		strings.HasPrefix(path, "/dashboard/results/")
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

func writeGuardError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
