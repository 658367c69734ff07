package dto

import "github.com/jhoicas/Despachos-api/internal/domain"

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto y acota Limit a 100.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
// Violations se llena cuando una transición se rechaza por precondiciones.
type ErrorResponse struct {
	Code       string             `json:"code"`
	Message    string             `json:"message"`
	Violations []domain.Violation `json:"violations,omitempty"`
}

// Actor quién ejecuta el comando (extraído del token).
type Actor struct {
	UserID     string
	CustomerID string // vacío para personal de planta
	Role       string
}

// IsAdmin indica si el actor es personal de planta.
func (a Actor) IsAdmin() bool { return a.Role == "admin" }
