package entity

import "time"

// Estados de la solicitud de liberación al cliente.
const (
	ReleaseStatusPending  = "pending"
	ReleaseStatusApproved = "approved"
	ReleaseStatusOnHold   = "on_hold"
	ReleaseStatusShipped  = "shipped"
)

// ReleaseRequest ticket de autorización del cliente para que una carga salga.
// La solicitud activa de una carga es la más reciente.
type ReleaseRequest struct {
	ID              string
	LoadID          string
	RequestedBy     string
	Status          string
	RequestedAt     time.Time
	RespondedAt     *time.Time
	ReleaseNumber   string
	ReleaseDocument string
	CustomerNotes   string
}
