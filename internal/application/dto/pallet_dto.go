package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateVirtualPalletRequest body para POST /api/pallets/virtual.
type CreateVirtualPalletRequest struct {
	ProductCode    string          `json:"product_code"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
	ProductionDate *time.Time      `json:"production_date,omitempty"`
	Lot            string          `json:"lot"`
	SalesOrderRef  string          `json:"sales_order_ref"`
	CustomerLot    string          `json:"customer_lot"`
	GrossWeight    decimal.Decimal `json:"gross_weight"`
	NetWeight      decimal.Decimal `json:"net_weight"`
	Pieces         int             `json:"pieces"`
}

// ProducedPalletInput pallet confirmado por la sincronización de producción.
type ProducedPalletInput struct {
	ID             string
	ProductCode    string
	Description    string
	Quantity       decimal.Decimal
	Unit           string
	ProductionDate *time.Time
	Lot            string
	SalesOrderRef  string
	CustomerLot    string
	GrossWeight    decimal.Decimal
	NetWeight      decimal.Decimal
	Pieces         int
}

// PalletIDsRequest body con lista de pallets (marcar embarcados, liberar, agregar a carga).
type PalletIDsRequest struct {
	PalletIDs []string `json:"pallet_ids"`
}

// PalletFilterQuery filtros de GET /api/pallets/available.
type PalletFilterQuery struct {
	ProductCode string `query:"product_code"`
	Description string `query:"description"`
	Lot         string `query:"lot"`
	OrderRef    string `query:"order_ref"`
	Unit        string `query:"unit"`
	PageRequest
}

// PalletResponse salida de un pallet.
type PalletResponse struct {
	ID             string          `json:"id"`
	ProductCode    string          `json:"product_code"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
	ProductionDate *time.Time      `json:"production_date,omitempty"`
	Lot            string          `json:"lot"`
	SalesOrderRef  string          `json:"sales_order_ref"`
	CustomerLot    string          `json:"customer_lot"`
	GrossWeight    decimal.Decimal `json:"gross_weight"`
	NetWeight      decimal.Decimal `json:"net_weight"`
	Pieces         int             `json:"pieces"`
	Status         string          `json:"status"`
	IsVirtual      bool            `json:"is_virtual"`
	ReleaseDate    *time.Time      `json:"release_date,omitempty"`
}

// PalletListResponse lista paginada de pallets.
type PalletListResponse struct {
	Items []PalletResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// BulkStatusResponse resultado de una operación masiva de estado.
type BulkStatusResponse struct {
	Updated int64 `json:"updated"`
}

// SyncResult resultado de sincronizar un lote de pallets de producción.
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}
