package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleClient  = "client"
	RoleTrainer = "trainer"
)

var (
	// ErrInvalidToken covers malformed, tampered and wrongly-signed tokens.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrExpired is returned for tokens past their expiration time.
	ErrExpired = errors.New("session token expired")
	// ErrMissingClaim is returned by Issue when required claims are absent.
	ErrMissingClaim = errors.New("subject, email and role are required")
)

// Claims is the identity payload carried by a session token. The profile
// fields are denormalized copies taken at login time and are not re-checked
// against the backend on subsequent requests.
type Claims struct {
	Subject     string
	Email       string
	Role        string
	FirstName   string
	LastName    string
	Country     string
	PhoneNumber string
}

func (c Claims) HasRole(role string) bool { return c.Role == role }

type sessionClaims struct {
	Email       string `json:"email"`
	Role        string `json:"role"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Country     string `json:"country,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session tokens with a process-wide HMAC secret.
// Invalidation is purely time-based; there is no revocation list.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl}
}

func (c *Codec) TTL() time.Duration { return c.ttl }

func (c *Codec) Issue(cl Claims) (string, error) {
	if cl.Subject == "" || cl.Email == "" || cl.Role == "" {
		return "", ErrMissingClaim
	}
	now := time.Now()
	sc := sessionClaims{
		Email:       cl.Email,
		Role:        cl.Role,
		FirstName:   cl.FirstName,
		LastName:    cl.LastName,
		Country:     cl.Country,
		PhoneNumber: cl.PhoneNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   cl.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, sc).SignedString(c.secret)
}

// Verify is all-or-nothing: signature and expiry must both hold, there is no
// degraded success.
func (c *Codec) Verify(token string) (Claims, error) {
	tok, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrInvalidToken
	}
	sc, ok := tok.Claims.(*sessionClaims)
	if !ok || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	return Claims{
		Subject:     sc.Subject,
		Email:       sc.Email,
		Role:        sc.Role,
		FirstName:   sc.FirstName,
		LastName:    sc.LastName,
		Country:     sc.Country,
		PhoneNumber: sc.PhoneNumber,
	}, nil
}
