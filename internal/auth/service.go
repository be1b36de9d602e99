package auth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"corredora-platform/internal/notify"
	"corredora-platform/internal/users"

	"golang.org/x/crypto/bcrypt"
)

// Service implements the credential flows on top of the stateless Manager.
//
// Failure semantics: every verification failure maps to a *Error carrying the
// HTTP status for the boundary. Nothing is retried; a failed verification is
// terminal for that request.
type Service struct {
	manager *Manager
	repo    users.Repository
	mailer  notify.Mailer
	resets  ResetTokenStore

	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(m *Manager, repo users.Repository, mailer notify.Mailer, resets ResetTokenStore) *Service {
	return &Service{
		manager: m,
		repo:    repo,
		mailer:  mailer,
		resets:  resets,
		clock:   time.Now,
	}
}

// Manager exposes the token issuer/verifier for middleware wiring.
func (s *Service) Manager() *Manager { return s.manager }

type LoginInput struct {
	Username string `json:"username"`
	Email    string `json:"mail"`
	Password string `json:"password"`
}

type LoginResult struct {
	User         users.User `json:"user"`
	Token        string     `json:"token"`
	RefreshToken string     `json:"refreshToken"`
}

// Login resolves the account by email or username (exactly one must be set)
// and compares the password hash. Lookup failure and hash mismatch yield the
// identical opaque error.
func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	if in.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	if (in.Email == "") == (in.Username == "") {
		return LoginResult{}, ErrInvalidCredentials
	}

	var (
		u   users.User
		err error
	)
	if in.Email != "" {
		u, err = s.repo.FindByEmail(ctx, in.Email)
	} else {
		u, err = s.repo.FindByUsername(ctx, in.Username)
	}
	if err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	pair, err := s.manager.IssuePair(s.clock().UTC(), Principal{ID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		User:         u.Sanitized(),
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

type RefreshResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Refresh verifies the old refresh token and re-signs a brand-new access AND
// refresh pair from the decoded principal (full rotation). The payload is
// trusted as-is rather than re-fetched from the datastore, so a role change
// only takes effect once the existing refresh token expires.
func (s *Service) Refresh(ctx context.Context, oldRefreshToken string) (RefreshResult, error) {
	_ = ctx

	claims, err := s.manager.Verify(oldRefreshToken, TokenKindRefresh, s.clock())
	if err != nil {
		return RefreshResult{}, ErrInvalidToken
	}

	pair, err := s.manager.IssuePair(s.clock().UTC(), claims.Principal())
	if err != nil {
		return RefreshResult{}, err
	}
	return RefreshResult{Token: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// CurrentUser resolves the authenticated principal to its fresh user record.
func (s *Service) CurrentUser(ctx context.Context, principalID int64) (users.User, error) {
	u, err := s.repo.FindByID(ctx, principalID)
	if err != nil {
		return users.User{}, ErrInvalidToken
	}
	return u.Sanitized(), nil
}

type ForgotPasswordResult struct {
	OK         bool   `json:"ok"`
	ResetToken string `json:"resetToken,omitempty"`
	ResetURL   string `json:"resetUrl,omitempty"`
}

// ForgotPassword always reports success so callers cannot probe which emails
// exist. On a real match it mints a reset token and dispatches the email;
// a send failure is logged by the caller, never surfaced.
func (s *Service) ForgotPassword(ctx context.Context, email, origin string) (ForgotPasswordResult, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return ForgotPasswordResult{OK: true}, nil
	}

	token, err := s.manager.SignResetToken(s.clock().UTC(), u.ID)
	if err != nil {
		return ForgotPasswordResult{}, err
	}

	resetURL := fmt.Sprintf("%s/restablecer?token=%s", origin, url.QueryEscape(token))

	msg := notify.Message{
		To:      u.Email,
		Subject: "Restablecer contraseña",
		Body: fmt.Sprintf(
			"Hola %s,\n\nPara restablecer tu contraseña abre el siguiente enlace (válido por %d minutos):\n\n%s\n\nSi no solicitaste este cambio, ignora este correo.",
			u.Nombre, int(s.manager.resetTTL.Minutes()), resetURL,
		),
	}
	_ = s.mailer.Send(ctx, msg)

	return ForgotPasswordResult{OK: true, ResetToken: token, ResetURL: resetURL}, nil
}

// ResetPassword verifies the reset token, enforces the purpose marker and a
// well-formed numeric subject, consumes the token's jti and replaces the
// stored password hash. Every verification or shape failure maps to the same
// 400-class error.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || len(newPassword) < 8 {
		return ErrMalformedResetToken
	}

	claims, err := s.manager.Verify(token, TokenKindReset, s.clock())
	if err != nil {
		return ErrMalformedResetToken
	}
	if claims.Purpose != PurposeReset || claims.UserID <= 0 {
		return ErrMalformedResetToken
	}

	if s.resets != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := s.resets.Consume(ctx, claims.ID, ttl); err != nil {
			return ErrMalformedResetToken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, claims.UserID, string(hash)); err != nil {
		return ErrMalformedResetToken
	}
	return nil
}
