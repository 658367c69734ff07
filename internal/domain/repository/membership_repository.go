package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Despachos-api/internal/domain/entity"
)

// MembershipRepository define el puerto de persistencia para LoadMembership.
type MembershipRepository interface {
	// Create devuelve *domain.AlreadyAssignedError si el pallet ya tiene membresía.
	Create(ctx context.Context, m *entity.LoadMembership) error
	GetByID(ctx context.Context, id string) (*entity.LoadMembership, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.LoadMembership, error)
	ExistsForPallet(ctx context.Context, palletID string) (bool, error)
	ListByLoad(ctx context.Context, loadID string) ([]*entity.LoadMembership, error)
	ListDetailedByLoad(ctx context.Context, loadID string) ([]*entity.MembershipDetail, error)
	// UpdateDisposition persiste destino, retención y número de liberación.
	UpdateDisposition(ctx context.Context, m *entity.LoadMembership) error
	SetDocument(ctx context.Context, ids []string, document string) (int64, error)
	StampDelivery(ctx context.Context, loadID, destination string, date time.Time) (int64, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
	DeleteByLoad(ctx context.Context, loadID string) (int64, error)
	ListHeldDue(ctx context.Context, asOf time.Time) ([]*entity.HeldMembership, error)
}
