package repository

import (
	"context"

	"github.com/jhoicas/Despachos-api/internal/domain/entity"
)

// LoadRepository define el puerto de persistencia para ShippingLoad.
type LoadRepository interface {
	// Create devuelve *domain.ConflictError si el número de carga ya existe.
	Create(ctx context.Context, load *entity.ShippingLoad) error
	GetByID(ctx context.Context, id string) (*entity.ShippingLoad, error)
	GetForUpdate(ctx context.Context, id string) (*entity.ShippingLoad, error)
	List(ctx context.Context, status string, limit, offset int) ([]*entity.ShippingLoad, error)
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateRelease(ctx context.Context, id, releaseNumber, releaseDocument string) error
	// RecountPallets recalcula total_pallets desde load_memberships y devuelve el nuevo total.
	RecountPallets(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
}
