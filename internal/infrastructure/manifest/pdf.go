package manifest

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
)

// Layout (A4 horizontal):
//
//	┌──────────────────────────────────────────────────────────────┐
//	│  MANIFIESTO DE EMBARQUE + N° carga │ Fecha / Estado / Lib.   │
//	│  TABLA: Pallet | Producto | Lote | Cant | Cajas | ... Destino │
//	│  TOTALES                                                     │
//	│  ADVERTENCIAS (pedidos sin coincidencia)                     │
//	└──────────────────────────────────────────────────────────────┘

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorWarn    = &props.Color{Red: 170, Green: 60, Blue: 0}
)

// PDFRenderer manifiesto imprimible con Maroto v2.
type PDFRenderer struct{}

// NewPDFRenderer construye el renderizador.
func NewPDFRenderer() *PDFRenderer { return &PDFRenderer{} }

func (r *PDFRenderer) Format() string { return dto.ManifestFormatPDF }

func (r *PDFRenderer) Render(_ context.Context, man *dto.Manifest) (*dto.ManifestExport, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Manifiesto "+man.LoadNumber, true).
		Build()

	m := maroto.New(cfg)
	if err := m.RegisterHeader(headerRow(man), line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5})); err != nil {
		return nil, fmt.Errorf("pdf: registrar encabezado: %w", err)
	}

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(man.Lines)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(man))
	if len(man.Warnings) > 0 {
		m.AddRows(line.NewRow(3))
		m.AddRows(warningRows(man.Warnings)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return &dto.ManifestExport{
		Filename:    filename(man, "pdf"),
		ContentType: "application/pdf",
		Body:        doc.GetBytes(),
	}, nil
}

// headerRow: título + N° de carga (izq) y fecha, estado y liberación (der).
func headerRow(man *dto.Manifest) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("MANIFIESTO DE EMBARQUE", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Carga "+man.LoadNumber, props.Text{
				Style: fontstyle.Bold, Size: 11, Top: 9,
			}),
		),
		col.New(5).Add(
			text.New("Fecha de embarque: "+man.ShippingDate.Format(dateLayout), props.Text{
				Size: 8, Align: align.Right, Top: 1, Color: colorGray,
			}),
			text.New("Estado: "+man.Status, props.Text{
				Size: 8, Align: align.Right, Top: 6, Color: colorGray,
			}),
			text.New("Liberación: "+nonEmpty(man.ReleaseNumber, "—"), props.Text{
				Size: 8, Align: align.Right, Top: 11, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7.5, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Pallet", 1, align.Left),
		h("Producto", 3, align.Left),
		h("Lote / Pedido", 2, align.Left),
		h("Cant.", 1, align.Right),
		h("Cajas", 1, align.Right),
		h("Importe", 1, align.Right),
		h("Peso neto", 1, align.Right),
		h("Destino", 2, align.Left),
	)
}

// tableRows: una fila por pallet.
func tableRows(lines []dto.ManifestLine) []core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 7.5, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		lot := l.Lot
		if l.SalesOrder != "" {
			lot += " / " + l.SalesOrder
		}
		result = append(result, row.New(6).Add(
			cell(l.PalletID, 1, align.Left),
			cell(l.ProductCode+" "+l.Description, 3, align.Left),
			cell(lot, 2, align.Left),
			cell(qty(l.Quantity)+" "+l.Unit, 1, align.Right),
			cell(nonEmpty(intOrEmpty(l.Cases), "—"), 1, align.Right),
			cell(formatMoney(money(l.Amount)), 1, align.Right),
			cell(weight(l.NetWeight), 1, align.Right),
			cell(l.Destination, 2, align.Left),
		))
	}
	return result
}

func totalsRow(man *dto.Manifest) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(12).Add(
		col.New(6),
		col.New(3).Add(
			label("Pallets: "+fmt.Sprint(man.TotalPallets)),
			text.New("Peso bruto / neto:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 5}),
		),
		col.New(3).Add(
			value("Importe: "+formatMoney(money(man.TotalAmount))),
			text.New(weight(man.TotalGross)+" / "+weight(man.TotalNet), props.Text{Size: 9, Align: align.Right, Right: 1, Top: 5}),
		),
	)
}

func warningRows(warnings []string) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(text.New("DATOS INCOMPLETOS", props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorWarn, Top: 1,
		}))),
	}
	for _, w := range warnings {
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New("• "+w, props.Text{Size: 7, Color: colorGray, Left: 2}),
		)))
	}
	return rows
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney inserta comas de miles en un importe con dos decimales.
// Ej: "25000.50" → "25,000.50"
func formatMoney(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	if frac != "" {
		return sign + string(buf) + "." + frac
	}
	return sign + string(buf)
}
