package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Despachos-api/internal/domain/entity"
)

// ShippedPalletRepository bitácora inmutable de pallets embarcados.
type ShippedPalletRepository interface {
	Create(ctx context.Context, rec *entity.ShippedPalletRecord) error
	ListByLoad(ctx context.Context, loadID string) ([]*entity.ShippedPalletRecord, error)
	ExistsForPallet(ctx context.Context, palletID string) (bool, error)
	// StampDelivery fija la fecha de entrega solo en registros que aún no la tienen.
	StampDelivery(ctx context.Context, loadID, destination string, date time.Time) (int64, error)
}
