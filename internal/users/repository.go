package users

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

// Repository is the persistence contract consumed by the auth service and the
// HTTP handlers. MemoryRepo implements the same contract for tests.
type Repository interface {
	FindByID(ctx context.Context, id int64) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
	Create(ctx context.Context, u User) (User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// PostgresRepo persists users via database/sql on the pgx stdlib driver.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const userColumns = `id, username, mail, nombre, telefono, role, password_hash, COALESCE(imagen_url,''), created_at`

func scanUser(row *sql.Row) (User, error) {
	var u User
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Nombre,
		&u.Telefono,
		&u.Role,
		&u.PasswordHash,
		&u.ImagenURL,
		&u.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepo) FindByID(ctx context.Context, id int64) (User, error) {
	const q = `SELECT ` + userColumns + ` FROM usuarios WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) FindByEmail(ctx context.Context, email string) (User, error) {
	const q = `SELECT ` + userColumns + ` FROM usuarios WHERE mail = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

func (r *PostgresRepo) FindByUsername(ctx context.Context, username string) (User, error) {
	const q = `SELECT ` + userColumns + ` FROM usuarios WHERE username = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, username))
}

func (r *PostgresRepo) Create(ctx context.Context, u User) (User, error) {
	const q = `
INSERT INTO usuarios (username, mail, nombre, telefono, role, password_hash, imagen_url, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id, created_at
`
	now := time.Now().UTC()
	if err := r.db.QueryRowContext(ctx, q,
		u.Username,
		u.Email,
		u.Nombre,
		u.Telefono,
		u.Role,
		u.PasswordHash,
		u.ImagenURL,
		now,
	).Scan(&u.ID, &u.CreatedAt); err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const q = `UPDATE usuarios SET password_hash = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, passwordHash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
