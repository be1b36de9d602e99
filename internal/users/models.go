package users

import "time"

// User is the account record behind every Principal.
// PasswordHash must never leave this package in API responses; use Sanitized.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"mail" db:"mail"`
	Nombre       string    `json:"nombre,omitempty" db:"nombre"`
	Telefono     string    `json:"telefono,omitempty" db:"telefono"`
	Role         string    `json:"role" db:"role"`
	PasswordHash string    `json:"-" db:"password_hash"`
	ImagenURL    string    `json:"imagen_url,omitempty" db:"imagen_url"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Sanitized strips the credential material before the record crosses the API
// boundary.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}
