package auth

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// CookieName is the session cookie set on login and read on every request.
const CookieName = "session"

// CookieStore bridges the token codec to the HTTP cookie transport.
type CookieStore struct {
	codec  *Codec
	maxAge int
	secure bool
	lg     *zap.SugaredLogger
}

func NewCookieStore(codec *Codec, secure bool, lg *zap.SugaredLogger) *CookieStore {
	return &CookieStore{
		codec:  codec,
		maxAge: int(codec.TTL() / time.Second),
		secure: secure,
		lg:     lg,
	}
}

// Read extracts and verifies the session cookie. Absent, empty and invalid
// cookies all report the same unauthenticated state.
func (s *CookieStore) Read(r *http.Request) (Claims, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return Claims{}, false
	}
	claims, err := s.codec.Verify(c.Value)
	if err != nil {
		return Claims{}, false
	}
	return claims, true
}

// Write issues a token and sets the cookie. A failed issue must not abort an
// otherwise successful login, so it is logged and swallowed; the caller ends
// up effectively logged out.
func (s *CookieStore) Write(w http.ResponseWriter, claims Claims) {
	token, err := s.codec.Issue(claims)
	if err != nil {
		s.lg.Errorw("failed to issue session token", "error", err, "subject", claims.Subject)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   s.maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
