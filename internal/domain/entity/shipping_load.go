package entity

import "time"

// Estados de una carga de embarque.
const (
	LoadStatusAssembling     = "assembling"
	LoadStatusPendingRelease = "pending_release"
	LoadStatusApproved       = "approved"
	LoadStatusOnHold         = "on_hold"
	LoadStatusInTransit      = "in_transit"
	LoadStatusDelivered      = "delivered"
)

// ShippingLoad agrupación con nombre y fecha de pallets que salen en un mismo camión.
// TotalPallets es un contador desnormalizado: siempre se recalcula desde load_memberships.
type ShippingLoad struct {
	ID              string
	LoadNumber      string
	ShippingDate    time.Time
	Status          string
	TotalPallets    int
	ReleaseNumber   string
	ReleaseDocument string // handle opaco del almacén de documentos
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsPreDeparture indica si la carga aún no salió de planta.
func (l *ShippingLoad) IsPreDeparture() bool {
	return l.Status != LoadStatusInTransit && l.Status != LoadStatusDelivered
}

// ValidLoadStatus indica si s es un estado de carga conocido.
func ValidLoadStatus(s string) bool {
	switch s {
	case LoadStatusAssembling, LoadStatusPendingRelease, LoadStatusApproved,
		LoadStatusOnHold, LoadStatusInTransit, LoadStatusDelivered:
		return true
	}
	return false
}
