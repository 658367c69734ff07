package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Despachos-api/internal/domain"
)

// CreateLoadRequest body para POST /api/loads.
type CreateLoadRequest struct {
	LoadNumber   string `json:"load_number"`
	ShippingDate string `json:"shipping_date"` // YYYY-MM-DD
	Notes        string `json:"notes"`
}

// LoadResponse salida de una carga.
type LoadResponse struct {
	ID              string    `json:"id"`
	LoadNumber      string    `json:"load_number"`
	ShippingDate    string    `json:"shipping_date"`
	Status          string    `json:"status"`
	TotalPallets    int       `json:"total_pallets"`
	ReleaseNumber   string    `json:"release_number,omitempty"`
	ReleaseDocument string    `json:"release_document,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	NextStatuses    []string  `json:"next_statuses"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// LoadListResponse lista paginada de cargas.
type LoadListResponse struct {
	Items []LoadResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// LoadDetailResponse carga con sus membresías y la solicitud de liberación activa.
type LoadDetailResponse struct {
	Load           LoadResponse            `json:"load"`
	Memberships    []MembershipResponse    `json:"memberships"`
	ReleaseRequest *ReleaseRequestResponse `json:"release_request,omitempty"`
}

// AddPalletResult resultado por pallet de POST /api/loads/:id/pallets.
type AddPalletResult struct {
	PalletID     string `json:"pallet_id"`
	MembershipID string `json:"membership_id,omitempty"`
	Added        bool   `json:"added"`
	ErrorCode    string `json:"error_code,omitempty"`
	Error        string `json:"error,omitempty"`
}

// AddPalletsResponse éxito parcial: cada pallet se agrega completo o se omite y se reporta.
type AddPalletsResponse struct {
	LoadID       string            `json:"load_id"`
	TotalPallets int               `json:"total_pallets"`
	Results      []AddPalletResult `json:"results"`
}

// RemoveMembershipsRequest body para DELETE /api/loads/:id/memberships.
type RemoveMembershipsRequest struct {
	MembershipIDs []string `json:"membership_ids"`
}

// RemoveMembershipsResponse resultado de quitar pallets de una carga.
type RemoveMembershipsResponse struct {
	LoadID          string   `json:"load_id"`
	Removed         int64    `json:"removed"`
	ReleasedPallets []string `json:"released_pallets"`
	TotalPallets    int      `json:"total_pallets"`
}

// MembershipResponse membresía con atributos del pallet resueltos.
type MembershipResponse struct {
	ID              string          `json:"id"`
	LoadID          string          `json:"load_id"`
	PalletID        string          `json:"pallet_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Destination     string          `json:"destination"`
	IsOnHold        bool            `json:"is_on_hold"`
	ReleaseNumber   string          `json:"release_number,omitempty"`
	ReleaseDocument string          `json:"release_document,omitempty"`
	DeliveryDate    *time.Time      `json:"delivery_date,omitempty"`
	Pallet          *PalletResponse `json:"pallet,omitempty"`
}

// TransitionRequest body para POST /api/loads/:id/transitions.
// DeliveryDates (destino → YYYY-MM-DD) solo aplica a la transición a delivered.
type TransitionRequest struct {
	To            string            `json:"to"`
	DeliveryDates map[string]string `json:"delivery_dates,omitempty"`
}

// TransitionResponse resultado de una transición de estado.
type TransitionResponse struct {
	Load            LoadResponse            `json:"load"`
	ReleaseRequest  *ReleaseRequestResponse `json:"release_request,omitempty"`
	ArchivedPallets int                     `json:"archived_pallets,omitempty"`
	ShippedPallets  int64                   `json:"shipped_pallets,omitempty"`
}

// ReadinessResponse vista previa del guardián de salida.
type ReadinessResponse struct {
	LoadID     string             `json:"load_id"`
	Ready      bool               `json:"ready"`
	Violations []domain.Violation `json:"violations"`
}

// ReleaseRequestResponse solicitud de liberación activa.
type ReleaseRequestResponse struct {
	ID              string     `json:"id"`
	LoadID          string     `json:"load_id"`
	RequestedBy     string     `json:"requested_by"`
	Status          string     `json:"status"`
	RequestedAt     time.Time  `json:"requested_at"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
	ReleaseNumber   string     `json:"release_number,omitempty"`
	ReleaseDocument string     `json:"release_document,omitempty"`
	CustomerNotes   string     `json:"customer_notes,omitempty"`
}

// Decisiones del cliente sobre una solicitud de liberación.
const (
	DecisionApprove = "approve"
	DecisionHold    = "hold"
)

// RespondReleaseRequest body (JSON o multipart) de la respuesta a la solicitud de liberación.
// En multipart el documento de autorización va en el campo "document".
type RespondReleaseRequest struct {
	Decision      string `json:"decision" form:"decision"`
	ReleaseNumber string `json:"release_number" form:"release_number"`
	Notes         string `json:"notes" form:"notes"`
}

// RespondReleaseInput respuesta del cliente (o admin) a la solicitud de liberación.
// Document es opcional; si viene, se sube antes de escribir la referencia.
type RespondReleaseInput struct {
	Decision      string
	ReleaseNumber string
	Notes         string
	Document      *DocumentUpload
}
