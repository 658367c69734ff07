package shipping

import (
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Despachos-api/internal/domain"
	"github.com/jhoicas/Despachos-api/internal/domain/entity"
)

// EvaluateDeparture evalúa todas las precondiciones de salida (→ in_transit) sobre el estado
// de las membresías y devuelve todas las violaciones, no solo la primera.
// Es una función pura: sirve tanto para la vista previa como para la transición real.
func EvaluateDeparture(memberships []*entity.LoadMembership) []domain.Violation {
	if len(memberships) == 0 {
		return []domain.Violation{{
			Code:    domain.ViolationEmptyLoad,
			Message: "la carga no tiene pallets",
		}}
	}

	var onHold, noDest []string
	for _, m := range memberships {
		if m.IsOnHold {
			onHold = append(onHold, m.PalletID)
			continue
		}
		if !m.HasDestination() {
			noDest = append(noDest, m.PalletID)
		}
	}

	var violations []domain.Violation
	if len(noDest) > 0 {
		violations = append(violations, domain.Violation{
			Code:      domain.ViolationMissingDest,
			Message:   fmt.Sprintf("%d %s sin destino", len(noDest), pallets(len(noDest))),
			PalletIDs: noDest,
		})
	}
	if len(onHold) > 0 {
		violations = append(violations, domain.Violation{
			Code:      domain.ViolationPalletOnHold,
			Message:   fmt.Sprintf("%d %s en retención", len(onHold), pallets(len(onHold))),
			PalletIDs: onHold,
		})
	}
	return violations
}

// CheckDeparture devuelve *domain.PreconditionFailedError si hay alguna violación.
func CheckDeparture(memberships []*entity.LoadMembership) error {
	if v := EvaluateDeparture(memberships); len(v) > 0 {
		return domain.NewPreconditionFailedError("salida a tránsito", v)
	}
	return nil
}

// DeliveryDestinations destinos distintos de las membresías no retenidas, ordenados.
func DeliveryDestinations(memberships []*entity.LoadMembership) []string {
	seen := map[string]struct{}{}
	for _, m := range memberships {
		if m.IsOnHold {
			continue
		}
		seen[entity.NormalizeDestination(m.Destination)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// CheckDelivery exige una fecha de entrega por cada destino referenciado por membresías no retenidas.
func CheckDelivery(memberships []*entity.LoadMembership, dates map[string]time.Time) error {
	normalized := make(map[string]time.Time, len(dates))
	for d, t := range dates {
		normalized[entity.NormalizeDestination(d)] = t
	}

	var violations []domain.Violation
	for _, dest := range DeliveryDestinations(memberships) {
		if t, ok := normalized[dest]; !ok || t.IsZero() {
			var ids []string
			for _, m := range memberships {
				if !m.IsOnHold && entity.NormalizeDestination(m.Destination) == dest {
					ids = append(ids, m.PalletID)
				}
			}
			violations = append(violations, domain.Violation{
				Code:      domain.ViolationMissingDelivery,
				Message:   fmt.Sprintf("falta fecha de entrega para el destino %s", dest),
				PalletIDs: ids,
			})
		}
	}
	if len(violations) > 0 {
		return domain.NewPreconditionFailedError("confirmación de entrega", violations)
	}
	return nil
}

func pallets(n int) string {
	if n == 1 {
		return "pallet"
	}
	return "pallets"
}
