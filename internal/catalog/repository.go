package catalog

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo persists products via database/sql on the pgx stdlib driver.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const productColumns = `id, nombre, categoria, COALESCE(descripcion,''), prima_mensual_minor, aseguradora, activo, created_at, updated_at`

func (r *PostgresRepo) List(ctx context.Context, includeInactive bool) ([]Product, error) {
	q := `SELECT ` + productColumns + ` FROM productos`
	if !includeInactive {
		q += ` WHERE activo = true`
	}
	q += ` ORDER BY nombre`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID,
			&p.Nombre,
			&p.Categoria,
			&p.Descripcion,
			&p.PrimaMensualMinor,
			&p.Aseguradora,
			&p.Activo,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) FindByID(ctx context.Context, id int64) (Product, error) {
	const q = `SELECT ` + productColumns + ` FROM productos WHERE id = $1`
	var p Product
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID,
		&p.Nombre,
		&p.Categoria,
		&p.Descripcion,
		&p.PrimaMensualMinor,
		&p.Aseguradora,
		&p.Activo,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepo) Create(ctx context.Context, p Product) (Product, error) {
	const q = `
INSERT INTO productos (nombre, categoria, descripcion, prima_mensual_minor, aseguradora, activo, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id
`
	if err := r.db.QueryRowContext(ctx, q,
		p.Nombre,
		p.Categoria,
		p.Descripcion,
		p.PrimaMensualMinor,
		p.Aseguradora,
		p.Activo,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepo) Update(ctx context.Context, p Product) (Product, error) {
	const q = `
UPDATE productos
SET nombre=$2, categoria=$3, descripcion=$4, prima_mensual_minor=$5, aseguradora=$6, activo=$7, updated_at=$8
WHERE id=$1
`
	res, err := r.db.ExecContext(ctx, q,
		p.ID,
		p.Nombre,
		p.Categoria,
		p.Descripcion,
		p.PrimaMensualMinor,
		p.Aseguradora,
		p.Activo,
		p.UpdatedAt,
	)
	if err != nil {
		return Product{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Product{}, err
	}
	if n == 0 {
		return Product{}, ErrNotFound
	}
	return p, nil
}
