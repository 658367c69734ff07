package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Despachos-api/internal/domain/entity"
	"github.com/jhoicas/Despachos-api/internal/domain/repository"
)

var _ repository.ShippedPalletRepository = (*ShippedPalletRepo)(nil)

const shippedColumns = `id, pallet_id, load_id, product_code, description, lot, customer_lot, sales_order,
	quantity, unit, destination, shipped_at, delivery_date`

// ShippedPalletRepo bitácora de pallets embarcados. Solo inserta y fija la fecha de entrega.
type ShippedPalletRepo struct {
	q Querier
}

// NewShippedPalletRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShippedPalletRepository(q Querier) *ShippedPalletRepo {
	return &ShippedPalletRepo{q: q}
}

// Create inserta la fotografía del pallet.
func (r *ShippedPalletRepo) Create(ctx context.Context, rec *entity.ShippedPalletRecord) error {
	query := `
		INSERT INTO shipped_pallets (` + shippedColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query, rec.ID, rec.PalletID, rec.LoadID, rec.ProductCode, rec.Description, rec.Lot,
		rec.CustomerLot, rec.SalesOrder, rec.Quantity, rec.Unit, rec.Destination, rec.ShippedAt, rec.DeliveryDate)
	if err != nil {
		return fmt.Errorf("insert shipped pallet: %w", err)
	}
	return nil
}

// ListByLoad registros archivados de la carga.
func (r *ShippedPalletRepo) ListByLoad(ctx context.Context, loadID string) ([]*entity.ShippedPalletRecord, error) {
	rows, err := r.q.Query(ctx, `SELECT `+shippedColumns+` FROM shipped_pallets WHERE load_id = $1 ORDER BY pallet_id`, loadID)
	if err != nil {
		return nil, fmt.Errorf("list shipped pallets: %w", err)
	}
	defer rows.Close()

	var list []*entity.ShippedPalletRecord
	for rows.Next() {
		var s entity.ShippedPalletRecord
		err := rows.Scan(&s.ID, &s.PalletID, &s.LoadID, &s.ProductCode, &s.Description, &s.Lot, &s.CustomerLot,
			&s.SalesOrder, &s.Quantity, &s.Unit, &s.Destination, &s.ShippedAt, &s.DeliveryDate)
		if err != nil {
			return nil, fmt.Errorf("scan shipped pallet: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// ExistsForPallet indica si el pallet ya tiene registro de salida.
func (r *ShippedPalletRepo) ExistsForPallet(ctx context.Context, palletID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM shipped_pallets WHERE pallet_id = $1)`, palletID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("shipped pallet exists: %w", err)
	}
	return exists, nil
}

// StampDelivery fija la fecha de entrega una sola vez (solo donde aún es NULL).
func (r *ShippedPalletRepo) StampDelivery(ctx context.Context, loadID, destination string, date time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE shipped_pallets SET delivery_date = $3
		WHERE load_id = $1 AND destination = $2 AND delivery_date IS NULL`, loadID, destination, date)
	if err != nil {
		return 0, fmt.Errorf("stamp shipped delivery: %w", err)
	}
	return tag.RowsAffected(), nil
}
