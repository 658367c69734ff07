package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Despachos-api/internal/domain/entity"
)

// PalletRepository define el puerto de persistencia del registro de pallets (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si no existe.
type PalletRepository interface {
	Create(ctx context.Context, pallet *entity.Pallet) error
	GetByID(ctx context.Context, id string) (*entity.Pallet, error)
	// GetForUpdate bloquea la fila del pallet (SELECT FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Pallet, error)
	// ListAvailable excluye pallets con membresía aunque su estado diga available.
	ListAvailable(ctx context.Context, filter entity.PalletFilter, limit, offset int) ([]*entity.Pallet, error)
	UpdateStatus(ctx context.Context, ids []string, status string) (int64, error)
	// Release regresa los pallets a available y limpia la fecha de liberación.
	Release(ctx context.Context, ids []string) (int64, error)
	SetReleaseDate(ctx context.Context, id string, date *time.Time) error
	// UpsertProduced inserta o actualiza un pallet real de producción sin tocar su estado.
	UpsertProduced(ctx context.Context, pallet *entity.Pallet) (created bool, err error)
}
