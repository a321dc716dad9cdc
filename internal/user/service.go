// Package user implements the account lifecycle: registration, login,
// password recovery, and the HTTP handlers exposing them.
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/uvbuddy/uvbuddy-api/internal/auth"
	"github.com/uvbuddy/uvbuddy-api/internal/user/entity"
	userrepo "github.com/uvbuddy/uvbuddy-api/internal/user/repo"
)

var (
	ErrUserExists     = errors.New("user already exists")
	ErrUserNotFound   = errors.New("user not found")
	ErrBadCredentials = errors.New("invalid credentials")
	ErrSendMail       = errors.New("error sending email")
)

// Repository is the persistence surface the service needs; *repo.UserRepo
// satisfies it.
type Repository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// TokenIssuer is the slice of auth.TokenService the service uses.
type TokenIssuer interface {
	IssueSession(userID, email string) (string, error)
	IssueReset(userID string) (string, error)
	VerifyReset(token string) (string, error)
}

// ResetMailer dispatches the password-recovery email.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

var _ Repository = (*userrepo.UserRepo)(nil)

// Service orchestrates registration, authentication and password recovery.
type Service struct {
	repo     Repository
	hasher   auth.PasswordHasher
	tokens   TokenIssuer
	mailer   ResetMailer
	newID    func() string
	resetURL *url.URL
}

// NewService wires the service from its collaborators. frontendBaseURL is the
// base against which recovery links are built.
func NewService(repo Repository, hasher auth.PasswordHasher, tokens TokenIssuer, mailer ResetMailer, newID func() string, frontendBaseURL string) (*Service, error) {
	base, err := url.Parse(frontendBaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse frontend base url: %w", err)
	}
	return &Service{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		mailer:   mailer,
		newID:    newID,
		resetURL: base.JoinPath("reset-password"),
	}, nil
}

// Register creates a new account. A taken email yields ErrUserExists whether
// it is caught by the prior lookup or by the unique index on insert.
func (s *Service) Register(ctx context.Context, name, email, password string) error {
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return ErrUserExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	u := &entity.User{
		ID:           s.newID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, userrepo.ErrDuplicateEmail) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

// Login verifies credentials and returns a session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return "", ErrBadCredentials
	}
	return s.tokens.IssueSession(u.ID, u.Email)
}

// ForgotPassword issues a reset token and emails a recovery link. The token
// travels only in the email, never in the HTTP response.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	token, err := s.tokens.IssueReset(u.ID)
	if err != nil {
		return err
	}

	link := *s.resetURL
	q := link.Query()
	q.Set("token", token)
	link.RawQuery = q.Encode()

	if err := s.mailer.SendPasswordReset(ctx, u.Email, link.String()); err != nil {
		return fmt.Errorf("%w: %v", ErrSendMail, err)
	}
	return nil
}

// ResetPassword verifies a reset token and overwrites the stored hash. Every
// failure mode, including an unknown user id inside a well-signed token,
// collapses into auth.ErrInvalidToken.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.tokens.VerifyReset(token)
	if err != nil {
		return auth.ErrInvalidToken
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.ErrInvalidToken
		}
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, u.ID, hash)
}
