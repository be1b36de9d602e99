package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"corredora-platform/internal/notify"
	"corredora-platform/internal/users"

	"golang.org/x/crypto/bcrypt"
)

func testService(t *testing.T) (*Service, *users.MemoryRepo, *notify.Recorder) {
	t.Helper()

	repo := users.NewMemoryRepo()
	rec := notify.NewRecorder()
	svc := NewService(testManager(t), repo, rec, NewMemoryResetStore())
	return svc, repo, rec
}

func seedUser(t *testing.T, repo *users.MemoryRepo, email, username, password, role string) users.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	u, err := repo.Create(context.Background(), users.User{
		Username:     username,
		Email:        email,
		Nombre:       "Ana",
		Role:         role,
		PasswordHash: string(hash),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return u
}

func TestLogin_Succeeds(t *testing.T) {
	svc, repo, _ := testService(t)
	seedUser(t, repo, "ana@corredora.mx", "ana", "secreta123", "USUARIO")

	res, err := svc.Login(context.Background(), LoginInput{Email: "ana@corredora.mx", Password: "secreta123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token == "" || res.RefreshToken == "" {
		t.Fatalf("expected token pair")
	}
	if res.User.PasswordHash != "" {
		t.Fatalf("password hash leaked in response")
	}

	// Username login works too.
	if _, err := svc.Login(context.Background(), LoginInput{Username: "ana", Password: "secreta123"}); err != nil {
		t.Fatalf("username login: %v", err)
	}
}

func TestLogin_EnumerationResistance(t *testing.T) {
	svc, repo, _ := testService(t)
	seedUser(t, repo, "x@x.com", "x", "correcta12", "USUARIO")

	_, errWrongPass := svc.Login(context.Background(), LoginInput{Email: "x@x.com", Password: "wrong"})
	_, errNoUser := svc.Login(context.Background(), LoginInput{Email: "nonexistent@x.com", Password: "anything"})

	if errWrongPass == nil || errNoUser == nil {
		t.Fatalf("expected both logins to fail")
	}
	if errWrongPass.Error() != errNoUser.Error() {
		t.Fatalf("error messages differ: %q vs %q", errWrongPass, errNoUser)
	}
}

func TestLogin_RequiresExactlyOneIdentifier(t *testing.T) {
	svc, repo, _ := testService(t)
	seedUser(t, repo, "a@b.c", "a", "secreta123", "USUARIO")

	if _, err := svc.Login(context.Background(), LoginInput{Password: "secreta123"}); err == nil {
		t.Fatalf("expected failure with no identifier")
	}
	if _, err := svc.Login(context.Background(), LoginInput{Email: "a@b.c", Username: "a", Password: "secreta123"}); err == nil {
		t.Fatalf("expected failure with both identifiers")
	}
}

func TestRefresh_RotatesBothTokens(t *testing.T) {
	svc, repo, _ := testService(t)
	seedUser(t, repo, "ana@corredora.mx", "ana", "secreta123", "USUARIO")

	t0 := time.Unix(1700000000, 0).UTC()
	svc.clock = func() time.Time { return t0 }

	res, err := svc.Login(context.Background(), LoginInput{Email: "ana@corredora.mx", Password: "secreta123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// 14m31s later: the original access token is inside the renewal window.
	t1 := t0.Add(14*time.Minute + 31*time.Second)
	svc.clock = func() time.Time { return t1 }

	rot, err := svc.Refresh(context.Background(), res.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rot.Token == res.Token || rot.RefreshToken == res.RefreshToken {
		t.Fatalf("expected both tokens rotated")
	}

	claims, err := svc.manager.Verify(rot.Token, TokenKindAccess, t1)
	if err != nil {
		t.Fatalf("verify rotated access: %v", err)
	}
	// New expiry counts from the renewal time, not from login.
	if got := claims.ExpiresAt.Time; !got.Equal(t1.Add(15 * time.Minute)) {
		t.Fatalf("expected exp %v, got %v", t1.Add(15*time.Minute), got)
	}
}

func TestRefresh_RejectsExpiredAndForeignTokens(t *testing.T) {
	svc, repo, _ := testService(t)
	seedUser(t, repo, "ana@corredora.mx", "ana", "secreta123", "USUARIO")

	t0 := time.Unix(1700000000, 0).UTC()
	svc.clock = func() time.Time { return t0 }
	res, err := svc.Login(context.Background(), LoginInput{Email: "ana@corredora.mx", Password: "secreta123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// Access token is not a refresh credential.
	if _, err := svc.Refresh(context.Background(), res.Token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	// Past refresh expiry.
	svc.clock = func() time.Time { return t0.Add(8 * 24 * time.Hour) }
	if _, err := svc.Refresh(context.Background(), res.RefreshToken); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestForgotPassword_GhostEmailHasNoSideEffects(t *testing.T) {
	svc, _, rec := testService(t)

	res, err := svc.ForgotPassword(context.Background(), "ghost@nowhere.com", "https://corredora.example")
	if err != nil {
		t.Fatalf("forgot: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected ok")
	}
	if res.ResetToken != "" || res.ResetURL != "" {
		t.Fatalf("expected empty token/url for unknown email")
	}
	if len(rec.Sent()) != 0 {
		t.Fatalf("expected no email side effect")
	}
}

func TestForgotPassword_KnownEmailSendsResetLink(t *testing.T) {
	svc, repo, rec := testService(t)
	seedUser(t, repo, "ana@corredora.mx", "ana", "secreta123", "USUARIO")

	res, err := svc.ForgotPassword(context.Background(), "ana@corredora.mx", "https://corredora.example")
	if err != nil {
		t.Fatalf("forgot: %v", err)
	}
	if !res.OK || res.ResetToken == "" {
		t.Fatalf("expected reset token")
	}
	if !strings.HasPrefix(res.ResetURL, "https://corredora.example/restablecer?token=") {
		t.Fatalf("unexpected reset url %q", res.ResetURL)
	}

	sent := rec.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sent))
	}
	if sent[0].To != "ana@corredora.mx" {
		t.Fatalf("unexpected recipient %q", sent[0].To)
	}
	if !strings.Contains(sent[0].Body, res.ResetURL) {
		t.Fatalf("email body missing reset url")
	}
}

func TestResetPassword_ReplacesHashOnce(t *testing.T) {
	svc, repo, _ := testService(t)
	u := seedUser(t, repo, "ana@corredora.mx", "ana", "secreta123", "USUARIO")

	res, err := svc.ForgotPassword(context.Background(), "ana@corredora.mx", "https://corredora.example")
	if err != nil {
		t.Fatalf("forgot: %v", err)
	}

	if err := svc.ResetPassword(context.Background(), res.ResetToken, "nuevaClave99"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	stored, err := repo.FindByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("nuevaClave99")); err != nil {
		t.Fatalf("new password not stored: %v", err)
	}

	// Single use: a second consumption of the same token fails.
	if err := svc.ResetPassword(context.Background(), res.ResetToken, "otraClave123"); err != ErrMalformedResetToken {
		t.Fatalf("expected ErrMalformedResetToken on reuse, got %v", err)
	}
}

func TestResetPassword_RejectsAccessTokenReuse(t *testing.T) {
	svc, repo, _ := testService(t)
	u := seedUser(t, repo, "ana@corredora.mx", "ana", "secreta123", "USUARIO")

	access, err := svc.manager.SignAccessToken(svc.clock().UTC(), Principal{ID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if err := svc.ResetPassword(context.Background(), access, "nuevaClave99"); err != ErrMalformedResetToken {
		t.Fatalf("expected ErrMalformedResetToken, got %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), u.ID)
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secreta123")); err != nil {
		t.Fatalf("password must remain unchanged")
	}
}

func TestResetPassword_RejectsShortPassword(t *testing.T) {
	svc, repo, _ := testService(t)
	seedUser(t, repo, "ana@corredora.mx", "ana", "secreta123", "USUARIO")

	res, _ := svc.ForgotPassword(context.Background(), "ana@corredora.mx", "https://corredora.example")
	if err := svc.ResetPassword(context.Background(), res.ResetToken, "corta"); err != ErrMalformedResetToken {
		t.Fatalf("expected ErrMalformedResetToken, got %v", err)
	}
}
