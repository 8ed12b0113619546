package auth

import (
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Pages and API routes that remain reachable when logged out. Routes match
// exactly so a future sibling sharing a prefix stays protected by default.
var publicPaths = map[string]struct{}{
	"/login":                  {},
	"/signup":                 {},
	"/forgot-password":        {},
	"/healthz":                {},
	"/api/login":              {},
	"/api/logout":             {},
	"/api/me":                 {},
	"/api/register":           {},
	"/api/form-show":          {},
	"/api/form-submit-client": {},
	"/api/form-submissions":   {},
	"/api/trainercode":        {},
}

// Prefix exemptions cover only directory-shaped namespaces: static assets and
// the explicitly public API subtree.
var publicPrefixes = []string{
	"/static/",
	"/assets/",
	"/images/",
	"/favicon",
	"/api/public/",
}

// Any path ending in a file extension is treated as a static asset.
var fileExtension = regexp.MustCompile(`\.[a-zA-Z0-9]+$`)

func IsPublic(path string) bool {
	if _, ok := publicPaths[path]; ok {
		return true
	}
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return fileExtension.MatchString(path)
}

// Guard is the single choke point enforcing "no anonymous access to protected
// paths". Unauthenticated page requests are redirected to /login with the
// original path and query preserved in the next parameter; unauthenticated
// API requests get a 401. On success the verified claims are injected into
// the request context for downstream role checks and handlers.
func Guard(sessions *CookieStore, lg *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			claims, ok := sessions.Read(r)
			if !ok {
				if strings.HasPrefix(r.URL.Path, "/api/") {
					writeDetail(w, http.StatusUnauthorized, "Not authenticated")
					return
				}
				target := r.URL.Path
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				lg.Debugw("redirecting unauthenticated request", "path", r.URL.Path)
				http.Redirect(w, r, "/login?next="+url.QueryEscape(target), http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole enforces an operation-specific role on top of Guard.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := FromContext(r.Context())
			if claims.Subject == "" {
				writeDetail(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			if !claims.HasRole(role) {
				writeDetail(w, http.StatusForbidden, "Only "+role+"s may perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}
