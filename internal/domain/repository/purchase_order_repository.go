package repository

import (
	"context"

	"github.com/jhoicas/Despachos-api/internal/domain/entity"
)

// PurchaseOrderRepository consulta de pedidos (solo lectura) para el manifiesto.
type PurchaseOrderRepository interface {
	// ListByCustomerLots devuelve los pedidos cuyo lote de cliente esté en lots.
	ListByCustomerLots(ctx context.Context, lots []string) ([]*entity.PurchaseOrder, error)
}
