package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Formatos de exportación del manifiesto.
const (
	ManifestFormatJSON = "json"
	ManifestFormatCSV  = "csv"
	ManifestFormatXML  = "xml"
	ManifestFormatPDF  = "pdf"
)

// Manifest documento agregado de una carga para aduanas/contabilidad.
// Los campos de pedido quedan vacíos cuando no hay coincidencia (ver Warnings).
type Manifest struct {
	LoadID        string          `json:"load_id"`
	LoadNumber    string          `json:"load_number"`
	ShippingDate  time.Time       `json:"shipping_date"`
	Status        string          `json:"status"`
	ReleaseNumber string          `json:"release_number,omitempty"`
	GeneratedAt   time.Time       `json:"generated_at"`
	Lines         []ManifestLine  `json:"lines"`
	TotalPallets  int             `json:"total_pallets"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalGross    decimal.Decimal `json:"total_gross_weight"`
	TotalNet      decimal.Decimal `json:"total_net_weight"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Warnings      []string        `json:"warnings,omitempty"`
}

// ManifestLine una línea por pallet embarcado (o por embarcar).
type ManifestLine struct {
	PalletID        string          `json:"pallet_id"`
	ProductCode     string          `json:"product_code"`
	Description     string          `json:"description"`
	Lot             string          `json:"lot"`
	CustomerLot     string          `json:"customer_lot"`
	SalesOrder      string          `json:"sales_order,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
	Pieces          int             `json:"pieces"`
	PiecesPerPallet int             `json:"pieces_per_pallet,omitempty"`
	PiecesPerCase   int             `json:"pieces_per_case,omitempty"`
	Cases           int             `json:"cases,omitempty"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Amount          decimal.Decimal `json:"amount"`
	GrossWeight     decimal.Decimal `json:"gross_weight"`
	NetWeight       decimal.Decimal `json:"net_weight"`
	Destination     string          `json:"destination"`
	ReleaseNumber   string          `json:"release_number,omitempty"`
	DeliveryDate    *time.Time      `json:"delivery_date,omitempty"`
	Matched         bool            `json:"matched"`
}

// ManifestExport documento renderizado listo para descargar.
type ManifestExport struct {
	Filename    string
	ContentType string
	Body        []byte
	Digest      string // huella del contenido cuando el formato la define (XML)
	Incomplete  bool
}
