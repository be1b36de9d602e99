package poliza

import "time"

// Poliza is an issued policy bound to an approved solicitud.
// The document itself lives in external storage; only its URL and metadata
// are persisted here.
type Poliza struct {
	ID          int64  `json:"id" db:"id"`
	SolicitudID int64  `json:"solicitud_id" db:"solicitud_id"`
	UserID      int64  `json:"user_id" db:"user_id"`

	NumeroPoliza string `json:"numero_poliza" db:"numero_poliza"`
	DocumentoURL string `json:"documento_url" db:"documento_url"`

	VigenciaDesde time.Time `json:"vigencia_desde" db:"vigencia_desde"`
	VigenciaHasta time.Time `json:"vigencia_hasta" db:"vigencia_hasta"`

	EmitidaAt time.Time `json:"emitida_at" db:"emitida_at"`
}

// Vigente reports whether the policy covers the given instant.
func (p Poliza) Vigente(at time.Time) bool {
	return !at.Before(p.VigenciaDesde) && at.Before(p.VigenciaHasta)
}
