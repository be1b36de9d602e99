package solicitud

import "errors"

var ErrInvalidTransition = errors.New("invalid estado transition")

// transitions is the single source of truth for the solicitud lifecycle.
// RECHAZADA and CANCELADA and POLIZA_EMITIDA are terminal.
var transitions = map[Estado][]Estado{
	EstadoPendiente:  {EstadoEnRevision, EstadoRechazada, EstadoCancelada},
	EstadoEnRevision: {EstadoAprobada, EstadoRechazada},
	EstadoAprobada:   {EstadoPolizaEmitida},
}

// CanTransition reports whether moving from one estado to another is legal.
func CanTransition(from, to Estado) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist from the estado.
func IsTerminal(e Estado) bool {
	return len(transitions[e]) == 0
}
