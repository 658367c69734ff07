package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Despachos-api/internal/domain/entity"
	"github.com/jhoicas/Despachos-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo consultas de solo lectura sobre pedidos de clientes.
type PurchaseOrderRepo struct {
	pool *pgxpool.Pool
}

// NewPurchaseOrderRepository construye el adaptador de pedidos.
func NewPurchaseOrderRepository(pool *pgxpool.Pool) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{pool: pool}
}

// ListByCustomerLots pedidos cuyo lote de cliente está en lots.
func (r *PurchaseOrderRepo) ListByCustomerLots(ctx context.Context, lots []string) ([]*entity.PurchaseOrder, error) {
	const query = `
	SELECT id, sales_order_number, customer_lot, customer_name, unit_price, pieces_per_pallet, pieces_per_case
	FROM purchase_orders
	WHERE customer_lot = ANY($1)
	ORDER BY customer_lot, sales_order_number`

	rows, err := r.pool.Query(ctx, query, lots)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()

	var list []*entity.PurchaseOrder
	for rows.Next() {
		var o entity.PurchaseOrder
		if err := rows.Scan(&o.ID, &o.SalesOrderNumber, &o.CustomerLot, &o.CustomerName, &o.UnitPrice,
			&o.PiecesPerPallet, &o.PiecesPerCase); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}
