package auth

import (
	"testing"
	"time"

	"corredora-platform/internal/config"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		ResetSecret:   "reset-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		ResetTTL:      15 * time.Minute,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	m := testManager(t)
	now := time.Unix(1700000000, 0).UTC()
	p := Principal{ID: 42, Email: "ana@corredora.mx", Role: "USUARIO"}

	pair, err := m.IssuePair(now, p)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected token strings")
	}

	claims, err := m.Verify(pair.AccessToken, TokenKindAccess, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if got := claims.Principal(); got != p {
		t.Fatalf("unexpected principal: %+v", got)
	}

	claims, err = m.Verify(pair.RefreshToken, TokenKindRefresh, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
	if got := claims.Principal(); got != p {
		t.Fatalf("unexpected principal: %+v", got)
	}

	reset, err := m.SignResetToken(now, 42)
	if err != nil {
		t.Fatalf("sign reset: %v", err)
	}
	claims, err = m.Verify(reset, TokenKindReset, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify reset: %v", err)
	}
	if claims.UserID != 42 || claims.Purpose != PurposeReset {
		t.Fatalf("unexpected reset claims: %+v", claims)
	}
}

func TestVerifyRejectsCrossKindSecrets(t *testing.T) {
	m := testManager(t)
	now := time.Unix(1700000000, 0).UTC()
	p := Principal{ID: 1, Email: "a@b.c", Role: "USUARIO"}

	pair, err := m.IssuePair(now, p)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	reset, err := m.SignResetToken(now, 1)
	if err != nil {
		t.Fatalf("sign reset: %v", err)
	}

	cases := []struct {
		name  string
		token string
		kind  TokenKind
	}{
		{"refresh as access", pair.RefreshToken, TokenKindAccess},
		{"access as refresh", pair.AccessToken, TokenKindRefresh},
		{"access as reset", pair.AccessToken, TokenKindReset},
		{"reset as access", reset, TokenKindAccess},
	}
	for _, tc := range cases {
		if _, err := m.Verify(tc.token, tc.kind, now.Add(time.Minute)); err == nil {
			t.Fatalf("%s: expected verification failure", tc.name)
		}
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := testManager(t)
	now := time.Unix(1700000000, 0).UTC()

	// Issued already expired.
	tok, err := m.issue(now, Claims{
		UserID:    1,
		Email:     "a@b.c",
		Role:      "USUARIO",
		TokenKind: TokenKindAccess,
	}, -time.Second, m.accessSecret)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(tok, TokenKindAccess, now); err == nil {
		t.Fatalf("expected expired-token failure")
	}

	// Issued valid, verified past expiry.
	p := Principal{ID: 1, Email: "a@b.c", Role: "USUARIO"}
	access, err := m.SignAccessToken(now, p)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Verify(access, TokenKindAccess, now.Add(16*time.Minute)); err == nil {
		t.Fatalf("expected expired-token failure")
	}
}

func TestVerifyRejectsWrongResetPurpose(t *testing.T) {
	m := testManager(t)
	now := time.Unix(1700000000, 0).UTC()

	// Signature-valid under the reset secret, but wrong purpose.
	tok, err := m.issue(now, Claims{
		UserID:    1,
		Purpose:   "verify-email",
		TokenKind: TokenKindReset,
	}, time.Minute, m.resetSecret)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(tok, TokenKindReset, now); err == nil {
		t.Fatalf("expected purpose mismatch failure")
	}
}

func TestNewManagerRequiresPrimarySecrets(t *testing.T) {
	if _, err := NewManager(config.AuthConfig{RefreshSecret: "r"}); err == nil {
		t.Fatalf("expected error for missing access secret")
	}
	if _, err := NewManager(config.AuthConfig{AccessSecret: "a"}); err == nil {
		t.Fatalf("expected error for missing refresh secret")
	}
}

func TestNewManagerResetSecretFallsBack(t *testing.T) {
	m, err := NewManager(config.AuthConfig{AccessSecret: "a", RefreshSecret: "r"})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	if string(m.resetSecret) != config.DefaultResetSecret {
		t.Fatalf("expected reset secret fallback")
	}
}
