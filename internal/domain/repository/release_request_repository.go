package repository

import (
	"context"

	"github.com/jhoicas/Despachos-api/internal/domain/entity"
)

// ReleaseRequestRepository define el puerto de persistencia para ReleaseRequest.
type ReleaseRequestRepository interface {
	Create(ctx context.Context, rr *entity.ReleaseRequest) error
	// GetActiveByLoad devuelve la solicitud más reciente de la carga, o nil.
	GetActiveByLoad(ctx context.Context, loadID string) (*entity.ReleaseRequest, error)
	Update(ctx context.Context, rr *entity.ReleaseRequest) error
	DeleteByLoad(ctx context.Context, loadID string) (int64, error)
}
