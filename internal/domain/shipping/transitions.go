// Package shipping contiene las reglas puras del flujo de liberación de cargas:
// la tabla de transiciones de estado y el guardián de salida.
//
//	assembling ─> pending_release ─┬─> approved ──┬─> in_transit ─> delivered
//	                               │      ^       │
//	                               └─> on_hold ───┘ (on_hold → approved)
//	                   pending_release ──────────────> in_transit
package shipping

import (
	"github.com/jhoicas/Despachos-api/internal/domain"
	"github.com/jhoicas/Despachos-api/internal/domain/entity"
)

var transitions = map[string][]string{
	entity.LoadStatusAssembling:     {entity.LoadStatusPendingRelease},
	entity.LoadStatusPendingRelease: {entity.LoadStatusApproved, entity.LoadStatusOnHold, entity.LoadStatusInTransit},
	entity.LoadStatusOnHold:         {entity.LoadStatusApproved},
	entity.LoadStatusApproved:       {entity.LoadStatusInTransit},
	entity.LoadStatusInTransit:      {entity.LoadStatusDelivered},
}

// CanTransition valida que from → to exista en la tabla. No evalúa precondiciones de datos.
func CanTransition(loadID, from, to string) error {
	if !entity.ValidLoadStatus(to) {
		return domain.NewValidationError("status", "desconocido: "+to)
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return domain.NewInvalidStateError("carga", loadID, from, "pasar a "+to)
}

// AllowedTransitions devuelve los estados alcanzables desde from.
func AllowedTransitions(from string) []string {
	out := make([]string, len(transitions[from]))
	copy(out, transitions[from])
	return out
}

// ReleaseStatusFor estado de la solicitud de liberación que acompaña al estado de la carga.
// Devuelve "" cuando la transición no toca la solicitud.
func ReleaseStatusFor(loadStatus string) string {
	switch loadStatus {
	case entity.LoadStatusPendingRelease:
		return entity.ReleaseStatusPending
	case entity.LoadStatusApproved:
		return entity.ReleaseStatusApproved
	case entity.LoadStatusOnHold:
		return entity.ReleaseStatusOnHold
	case entity.LoadStatusInTransit:
		return entity.ReleaseStatusShipped
	}
	return ""
}
