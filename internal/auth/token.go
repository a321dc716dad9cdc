// Package auth implements credential primitives: the bcrypt password hasher
// and the TokenService issuing and verifying the two classes of signed,
// time-limited tokens (session and password-reset). The two classes are
// signed with independent secrets so a leaked reset token cannot be replayed
// as a session token and vice versa.
package auth

import (
	"bytes"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is the single error returned for every verification
// failure: tampering, wrong key, expiry, malformed input, unexpected signing
// method. Callers must not be able to tell those apart.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the decoded subject of a verified session token.
type Identity struct {
	UserID string
	Email  string
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

type resetClaims struct {
	jwt.RegisteredClaims
}

// TokenConfig holds signing secrets and lifetimes for both token classes.
type TokenConfig struct {
	SessionSecret []byte
	ResetSecret   []byte
	SessionTTL    time.Duration
	ResetTTL      time.Duration
}

// TokenConfigFromEnv reads token config from env vars, defaulting both
// lifetimes to one hour.
func TokenConfigFromEnv() TokenConfig {
	cfg := TokenConfig{
		SessionSecret: []byte(os.Getenv("JWT_SESSION_SECRET")),
		ResetSecret:   []byte(os.Getenv("JWT_RESET_SECRET")),
		SessionTTL:    time.Hour,
		ResetTTL:      time.Hour,
	}
	if v := os.Getenv("SESSION_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SessionTTL = d
		}
	}
	if v := os.Getenv("RESET_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ResetTTL = d
		}
	}
	return cfg
}

// Validate rejects configurations that collapse the separation between
// token classes: a missing secret leaves tokens signed with an empty key,
// and a shared secret lets a reset token pass session verification.
func (c TokenConfig) Validate() error {
	if len(c.SessionSecret) == 0 {
		return errors.New("session token secret is not set")
	}
	if len(c.ResetSecret) == 0 {
		return errors.New("reset token secret is not set")
	}
	if bytes.Equal(c.SessionSecret, c.ResetSecret) {
		return errors.New("session and reset token secrets must differ")
	}
	return nil
}

// TokenService signs and verifies session and password-reset tokens.
type TokenService struct {
	cfg TokenConfig
}

func NewTokenService(cfg TokenConfig) *TokenService {
	return &TokenService{cfg: cfg}
}

// IssueSession signs a session token for the given user.
func (s *TokenService) IssueSession(userID, email string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.SessionTTL)),
		},
		Email: email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.SessionSecret)
}

// VerifySession checks signature and expiry together and returns the decoded
// identity. Any failure yields ErrInvalidToken.
func (s *TokenService) VerifySession(token string) (Identity, error) {
	claims := &sessionClaims{}
	if err := s.parse(token, claims, s.cfg.SessionSecret); err != nil {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

// IssueReset signs a password-reset token carrying only the user id. The
// jti is recorded so a consumed-token denylist can be layered on later.
func (s *TokenService) IssueReset(userID string) (string, error) {
	now := time.Now()
	claims := resetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.ResetTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.ResetSecret)
}

// VerifyReset checks a reset token and returns the user id it was issued
// for. Any failure yields ErrInvalidToken.
func (s *TokenService) VerifyReset(token string) (string, error) {
	claims := &resetClaims{}
	if err := s.parse(token, claims, s.cfg.ResetSecret); err != nil {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (s *TokenService) parse(token string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
