package dto

import (
	"io"
	"time"
)

// Acciones de disposición por pallet.
const (
	DispositionShip = "ship"
	DispositionHold = "hold"
)

// DispositionRequest body para PUT /api/loads/:id/memberships/:membershipId/disposition.
// ship requiere destino; hold acepta una fecha de reconsideración (YYYY-MM-DD).
type DispositionRequest struct {
	Action      string `json:"action"`
	Destination string `json:"destination,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
}

// DispositionInput entrada ya parseada del resolvedor.
type DispositionInput struct {
	Action      string
	Destination string
	ReleaseDate *time.Time
}

// ReleaseNumberRequest body para asignar número de liberación a un pallet.
type ReleaseNumberRequest struct {
	ReleaseNumber string `json:"release_number"`
}

// DocumentUpload archivo a subir al almacén de documentos.
type DocumentUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// AttachDocumentResponse resultado de adjuntar un documento a varias membresías.
type AttachDocumentResponse struct {
	Document      string   `json:"document"`
	MembershipIDs []string `json:"membership_ids"`
}

// HeldMembershipResponse pallet retenido cuya fecha de reconsideración venció.
type HeldMembershipResponse struct {
	MembershipID string    `json:"membership_id"`
	LoadID       string    `json:"load_id"`
	LoadNumber   string    `json:"load_number"`
	PalletID     string    `json:"pallet_id"`
	ProductCode  string    `json:"product_code"`
	ReleaseDate  time.Time `json:"release_date"`
}
