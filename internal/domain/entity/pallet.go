package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pallet en el registro de inventario.
const (
	PalletStatusAvailable = "available" // disponible para asignar a una carga
	PalletStatusAssigned  = "assigned"  // comprometido en una carga (también durante el tránsito)
	PalletStatusShipped   = "shipped"   // entregado; archivado en shipped_pallets
)

// Pallet unidad física (o virtual) de producto terminado.
// Los pallets reales llegan por la sincronización de producción; los virtuales se crean a mano
// para representar inventario aún no sincronizado.
type Pallet struct {
	ID             string
	ProductCode    string
	Description    string
	Quantity       decimal.Decimal // existencia en la unidad de medida
	Unit           string
	ProductionDate *time.Time
	Lot            string // código de trazabilidad
	SalesOrderRef  string
	CustomerLot    string // referencia de orden de compra del cliente
	GrossWeight    decimal.Decimal
	NetWeight      decimal.Decimal
	Pieces         int
	Status         string
	IsVirtual      bool
	ReleaseDate    *time.Time // "reconsiderar después de esta fecha" para pallets retenidos
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsAvailable indica si el pallet puede asignarse a una carga.
func (p *Pallet) IsAvailable() bool {
	return p.Status == PalletStatusAvailable
}

// PalletFilter filtros conjuntivos (AND) para listar pallets disponibles.
// Cada campo no vacío se compara por subcadena sin distinguir mayúsculas.
type PalletFilter struct {
	ProductCode string
	Description string
	Lot         string
	OrderRef    string // coincide con la orden de venta o el lote del cliente
	Unit        string
}
