package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"go.uber.org/zap"
)

func TestIsPublic(t *testing.T) {
	public := []string{
		"/login", "/signup", "/forgot-password",
		"/static/app.css", "/assets/logo.png", "/images/bg.jpg", "/favicon.ico",
		"/api/login", "/api/logout", "/api/me", "/api/register",
		"/api/form-show", "/api/form-submit-client", "/api/form-submissions",
		"/api/trainercode", "/api/public/announcements", "/healthz",
		"/robots.txt", "/anything/bundle.js",
	}
	for _, p := range public {
		if !IsPublic(p) {
			t.Errorf("expected %q to be public", p)
		}
	}

	private := []string{
		"/", "/dashboard", "/formbuilder", "/chat",
		"/api/client/link-trainer", "/api/client/select-trainer",
		"/api/trainers/available", "/api/nutrition/search", "/api/chat/ws",
		// Siblings sharing a public route's prefix stay protected.
		"/api/metrics", "/api/meals", "/api/registered-devices",
		"/api/trainercode/rotate", "/api/form-showcase",
	}
	for _, p := range private {
		if IsPublic(p) {
			t.Errorf("expected %q to be protected", p)
		}
	}
}

func guarded(store *CookieStore) (http.Handler, *Claims) {
	var seen Claims
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return Guard(store, zap.NewNop().Sugar())(inner), &seen
}

func TestGuardPublicPathNeedsNoSession(t *testing.T) {
	h, _ := guarded(newTestStore(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGuardRedirectPreservesPathAndQuery(t *testing.T) {
	h, _ := guarded(newTestStore(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard?tab=nutrition&week=2", nil))

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected 307, got %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	if loc.Path != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc.Path)
	}
	if got := loc.Query().Get("next"); got != "/dashboard?tab=nutrition&week=2" {
		t.Errorf("next parameter lost the original target: %q", got)
	}
}

func TestGuardAPIRequestGets401(t *testing.T) {
	h, _ := guarded(newTestStore(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trainers/available", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON error envelope, got %q", ct)
	}
}

func TestGuardInvalidTokenRedirects(t *testing.T) {
	h, _ := guarded(newTestStore(t))
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "tampered"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected 307, got %d", rec.Code)
	}
}

func TestGuardInjectsClaims(t *testing.T) {
	store := newTestStore(t)
	h, seen := guarded(store)

	rec := httptest.NewRecorder()
	store.Write(rec, testClaims())
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(sessionCookie(t, rec))

	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec2.Code)
	}
	if *seen != testClaims() {
		t.Fatalf("claims not propagated: %+v", *seen)
	}
}

func TestRequireRole(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RequireRole(RoleClient)(inner)

	// No claims in context at all.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/client/link-trainer", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %d", rec.Code)
	}

	// Wrong role.
	trainer := testClaims()
	trainer.Role = RoleTrainer
	req := httptest.NewRequest(http.MethodPost, "/api/client/link-trainer", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithClaims(req.Context(), trainer)))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for trainer role, got %d", rec.Code)
	}

	// Matching role.
	req = httptest.NewRequest(http.MethodPost, "/api/client/link-trainer", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithClaims(req.Context(), testClaims())))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for client role, got %d", rec.Code)
	}
}
