package catalog

import "time"

// Product is an insurance product offered through the brokerage.
// Money convention: premiums are stored in minor units (centavos).
type Product struct {
	ID          int64  `json:"id" db:"id"`
	Nombre      string `json:"nombre" db:"nombre"`
	Categoria   string `json:"categoria" db:"categoria"`
	Descripcion string `json:"descripcion,omitempty" db:"descripcion"`

	// PrimaMensualMinor is the monthly premium in minor units.
	PrimaMensualMinor int64  `json:"prima_mensual_minor" db:"prima_mensual_minor"`
	Aseguradora       string `json:"aseguradora" db:"aseguradora"`

	// Activo products are visible to regular users; inactive ones only to
	// administrators.
	Activo bool `json:"activo" db:"activo"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Known categories. Not enforced as an enum in storage; kept stable here.
const (
	CategoriaVida     = "VIDA"
	CategoriaAuto     = "AUTO"
	CategoriaHogar    = "HOGAR"
	CategoriaSalud    = "SALUD"
	CategoriaViaje    = "VIAJE"
	CategoriaMascotas = "MASCOTAS"
)
