package entity

import "github.com/shopspring/decimal"

// PurchaseOrder registro de pedido (colaborador externo) usado para enriquecer el manifiesto.
// Se relaciona con los pallets por lote del cliente o código de trazabilidad.
type PurchaseOrder struct {
	ID               string
	SalesOrderNumber string
	CustomerLot      string
	CustomerName     string
	UnitPrice        decimal.Decimal
	PiecesPerPallet  int
	PiecesPerCase    int
}
