package solicitud

import "testing"

func TestCanTransition(t *testing.T) {
	legal := []struct{ from, to Estado }{
		{EstadoPendiente, EstadoEnRevision},
		{EstadoPendiente, EstadoRechazada},
		{EstadoPendiente, EstadoCancelada},
		{EstadoEnRevision, EstadoAprobada},
		{EstadoEnRevision, EstadoRechazada},
		{EstadoAprobada, EstadoPolizaEmitida},
	}
	for _, tc := range legal {
		if !CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s legal", tc.from, tc.to)
		}
	}

	illegal := []struct{ from, to Estado }{
		{EstadoPendiente, EstadoAprobada},
		{EstadoPendiente, EstadoPolizaEmitida},
		{EstadoEnRevision, EstadoCancelada},
		{EstadoEnRevision, EstadoPendiente},
		{EstadoAprobada, EstadoRechazada},
		{EstadoAprobada, EstadoCancelada},
		{EstadoRechazada, EstadoEnRevision},
		{EstadoCancelada, EstadoPendiente},
		{EstadoPolizaEmitida, EstadoAprobada},
	}
	for _, tc := range illegal {
		if CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s illegal", tc.from, tc.to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	for _, e := range []Estado{EstadoRechazada, EstadoCancelada, EstadoPolizaEmitida} {
		if !IsTerminal(e) {
			t.Fatalf("expected %s terminal", e)
		}
	}
	for _, e := range []Estado{EstadoPendiente, EstadoEnRevision, EstadoAprobada} {
		if IsTerminal(e) {
			t.Fatalf("expected %s non-terminal", e)
		}
	}
}
