package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DestinationTBD destino por defecto de un pallet recién asignado ("por definir").
const DestinationTBD = "to-be-determined"

// NormalizeDestination normaliza el destino (minúsculas, sin espacios extremos).
func NormalizeDestination(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// LoadMembership participación de un pallet en una carga, con atributos locales del embarque.
// Un pallet aparece como máximo en una membresía en todo el sistema (UNIQUE pallet_id).
type LoadMembership struct {
	ID              string
	LoadID          string
	PalletID        string
	Quantity        decimal.Decimal // cantidad comprometida
	Destination     string
	IsOnHold        bool
	ReleaseNumber   string
	ReleaseDocument string
	DeliveryDate    *time.Time // solo después de la salida
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasDestination indica si ya se eligió un destino distinto de "por definir".
func (m *LoadMembership) HasDestination() bool {
	d := NormalizeDestination(m.Destination)
	return d != "" && d != DestinationTBD
}

// MembershipDetail membresía con los atributos del pallet resueltos (consulta de carga).
type MembershipDetail struct {
	LoadMembership
	Pallet Pallet
}

// HeldMembership membresía retenida cuya fecha de reconsideración ya venció.
type HeldMembership struct {
	MembershipID string
	LoadID       string
	LoadNumber   string
	PalletID     string
	ProductCode  string
	ReleaseDate  time.Time
}
