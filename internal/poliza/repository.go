package poliza

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"corredora-platform/internal/solicitud"
	"corredora-platform/pkg/utils"
)

// PostgresRepo persists polizas. Create writes the poliza row and flips the
// solicitud to POLIZA_EMITIDA in a single transaction.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const polizaColumns = `id, solicitud_id, user_id, numero_poliza, documento_url, vigencia_desde, vigencia_hasta, emitida_at`

func (r *PostgresRepo) Create(ctx context.Context, p Poliza) (Poliza, error) {
	err := utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const q = `
INSERT INTO polizas (solicitud_id, user_id, numero_poliza, documento_url, vigencia_desde, vigencia_hasta, emitida_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id
`
		if err := tx.QueryRowContext(ctx, q,
			p.SolicitudID,
			p.UserID,
			p.NumeroPoliza,
			p.DocumentoURL,
			p.VigenciaDesde,
			p.VigenciaHasta,
			p.EmitidaAt,
		).Scan(&p.ID); err != nil {
			return err
		}

		const qs = `UPDATE solicitudes SET estado=$2, updated_at=$3 WHERE id=$1 AND estado=$4`
		res, err := tx.ExecContext(ctx, qs, p.SolicitudID, solicitud.EstadoPolizaEmitida, time.Now().UTC(), solicitud.EstadoAprobada)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			// Lost the race: the solicitud left APROBADA between the
			// service check and this write.
			return ErrSolicitudNotApproved
		}
		return nil
	})
	if err != nil {
		return Poliza{}, err
	}
	return p, nil
}

func (r *PostgresRepo) FindByID(ctx context.Context, id int64) (Poliza, error) {
	const q = `SELECT ` + polizaColumns + ` FROM polizas WHERE id = $1`
	return scanPoliza(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) FindBySolicitud(ctx context.Context, solicitudID int64) (Poliza, error) {
	const q = `SELECT ` + polizaColumns + ` FROM polizas WHERE solicitud_id = $1`
	return scanPoliza(r.db.QueryRowContext(ctx, q, solicitudID))
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID int64) ([]Poliza, error) {
	const q = `SELECT ` + polizaColumns + ` FROM polizas WHERE user_id = $1 ORDER BY emitida_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Poliza
	for rows.Next() {
		var p Poliza
		if err := rows.Scan(
			&p.ID,
			&p.SolicitudID,
			&p.UserID,
			&p.NumeroPoliza,
			&p.DocumentoURL,
			&p.VigenciaDesde,
			&p.VigenciaHasta,
			&p.EmitidaAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPoliza(row *sql.Row) (Poliza, error) {
	var p Poliza
	if err := row.Scan(
		&p.ID,
		&p.SolicitudID,
		&p.UserID,
		&p.NumeroPoliza,
		&p.DocumentoURL,
		&p.VigenciaDesde,
		&p.VigenciaHasta,
		&p.EmitidaAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Poliza{}, ErrNotFound
		}
		return Poliza{}, err
	}
	return p, nil
}
