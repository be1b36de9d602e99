package auth

import "github.com/golang-jwt/jwt/v5"

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
	TokenKindReset   TokenKind = "reset"
)

// PurposeReset is the fixed purpose marker carried by reset tokens. A reset
// token with any other purpose is rejected even when its signature is valid.
const PurposeReset = "reset"

// Principal is the authenticated identity carried inside access and refresh
// tokens. It is derived from the user record at sign time and never persisted
// outside it.
type Principal struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Claims are the only supported JWT claims shape for this service.
// UserID is numeric by contract: a token whose subject is not a well-formed
// number fails to decode into this struct and is rejected.
type Claims struct {
	jwt.RegisteredClaims

	UserID    int64     `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	Purpose   string    `json:"purpose,omitempty"`
	TokenKind TokenKind `json:"token_kind"`
}

func (c Claims) Principal() Principal {
	return Principal{ID: c.UserID, Email: c.Email, Role: c.Role}
}
