package manifest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
)

var csvHeader = []string{
	"pallet_id", "product_code", "description", "lot", "customer_lot", "sales_order",
	"quantity", "unit", "pieces", "cases", "unit_price", "amount",
	"gross_weight", "net_weight", "destination", "release_number", "delivery_date",
}

// CSVRenderer manifiesto en CSV: encabezado, una fila por pallet y una fila de totales.
type CSVRenderer struct{}

// NewCSVRenderer construye el renderizador.
func NewCSVRenderer() *CSVRenderer { return &CSVRenderer{} }

func (r *CSVRenderer) Format() string { return dto.ManifestFormatCSV }

func (r *CSVRenderer) Render(_ context.Context, m *dto.Manifest) (*dto.ManifestExport, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := make([][]string, 0, len(m.Lines)+2)
	records = append(records, csvHeader)
	for _, l := range m.Lines {
		records = append(records, []string{
			l.PalletID, l.ProductCode, l.Description, l.Lot, l.CustomerLot, l.SalesOrder,
			qty(l.Quantity), l.Unit, strconv.Itoa(l.Pieces), intOrEmpty(l.Cases), money(l.UnitPrice), money(l.Amount),
			weight(l.GrossWeight), weight(l.NetWeight), l.Destination, l.ReleaseNumber, formatDate(l.DeliveryDate),
		})
	}
	records = append(records, []string{
		"TOTAL", "", "", "", "", "",
		qty(m.TotalQuantity), "", strconv.Itoa(m.TotalPallets), "", "", money(m.TotalAmount),
		weight(m.TotalGross), weight(m.TotalNet), "", "", "",
	})
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("csv: escribir manifiesto: %w", err)
	}
	return &dto.ManifestExport{
		Filename:    filename(m, "csv"),
		ContentType: "text/csv; charset=utf-8",
		Body:        buf.Bytes(),
	}, nil
}
