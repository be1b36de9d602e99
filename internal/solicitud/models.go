package solicitud

import "time"

// Estado is the lifecycle state of a solicitud.
type Estado string

const (
	EstadoPendiente     Estado = "PENDIENTE"
	EstadoEnRevision    Estado = "EN_REVISION"
	EstadoAprobada      Estado = "APROBADA"
	EstadoPolizaEmitida Estado = "POLIZA_EMITIDA"
	EstadoRechazada     Estado = "RECHAZADA"
	EstadoCancelada     Estado = "CANCELADA"
)

// Solicitud is a user's insurance request built from the catalog.
// Items snapshot the premium at creation time; later catalog changes do not
// alter an existing solicitud.
type Solicitud struct {
	ID     int64  `json:"id" db:"id"`
	UserID int64  `json:"user_id" db:"user_id"`
	Estado Estado `json:"estado" db:"estado"`

	Items []Item `json:"items"`

	// Notas carries the reviewer's comment on approval/rejection.
	Notas string `json:"notas,omitempty" db:"notas"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Item is one requested product with its premium snapshot in minor units.
type Item struct {
	ProductID         int64  `json:"product_id" db:"product_id"`
	NombreProducto    string `json:"nombre_producto" db:"nombre_producto"`
	PrimaMensualMinor int64  `json:"prima_mensual_minor" db:"prima_mensual_minor"`
}

// TotalMensualMinor sums the monthly premiums of all items.
func (s Solicitud) TotalMensualMinor() int64 {
	var total int64
	for _, it := range s.Items {
		total += it.PrimaMensualMinor
	}
	return total
}
