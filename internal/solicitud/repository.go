package solicitud

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"corredora-platform/pkg/utils"
)

// PostgresRepo persists solicitudes and their items. Items are written in the
// same transaction as the header row.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Create(ctx context.Context, s Solicitud) (Solicitud, error) {
	err := utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const q = `
INSERT INTO solicitudes (user_id, estado, notas, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5)
RETURNING id
`
		if err := tx.QueryRowContext(ctx, q,
			s.UserID,
			s.Estado,
			s.Notas,
			s.CreatedAt,
			s.UpdatedAt,
		).Scan(&s.ID); err != nil {
			return err
		}

		const qi = `
INSERT INTO solicitud_items (solicitud_id, product_id, nombre_producto, prima_mensual_minor)
VALUES ($1,$2,$3,$4)
`
		for _, it := range s.Items {
			if _, err := tx.ExecContext(ctx, qi, s.ID, it.ProductID, it.NombreProducto, it.PrimaMensualMinor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Solicitud{}, err
	}
	return s, nil
}

func (r *PostgresRepo) FindByID(ctx context.Context, id int64) (Solicitud, error) {
	const q = `
SELECT id, user_id, estado, COALESCE(notas,''), created_at, updated_at
FROM solicitudes
WHERE id = $1
`
	var s Solicitud
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID,
		&s.UserID,
		&s.Estado,
		&s.Notas,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Solicitud{}, ErrNotFound
		}
		return Solicitud{}, err
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return Solicitud{}, err
	}
	s.Items = items
	return s, nil
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID int64) ([]Solicitud, error) {
	const q = `
SELECT id, user_id, estado, COALESCE(notas,''), created_at, updated_at
FROM solicitudes
WHERE user_id = $1
ORDER BY created_at DESC
`
	return r.list(ctx, q, userID)
}

func (r *PostgresRepo) ListAll(ctx context.Context) ([]Solicitud, error) {
	const q = `
SELECT id, user_id, estado, COALESCE(notas,''), created_at, updated_at
FROM solicitudes
ORDER BY created_at DESC
`
	return r.list(ctx, q)
}

func (r *PostgresRepo) UpdateEstado(ctx context.Context, id int64, estado Estado, notas string, updatedAt time.Time) error {
	const q = `UPDATE solicitudes SET estado=$2, notas=$3, updated_at=$4 WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id, estado, notas, updatedAt)
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

func (r *PostgresRepo) list(ctx context.Context, q string, args ...any) ([]Solicitud, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Solicitud
	for rows.Next() {
		var s Solicitud
		if err := rows.Scan(&s.ID, &s.UserID, &s.Estado, &s.Notas, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := r.loadItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *PostgresRepo) loadItems(ctx context.Context, solicitudID int64) ([]Item, error) {
	const q = `
SELECT product_id, nombre_producto, prima_mensual_minor
FROM solicitud_items
WHERE solicitud_id = $1
ORDER BY product_id
`
	rows, err := r.db.QueryContext(ctx, q, solicitudID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.NombreProducto, &it.PrimaMensualMinor); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
