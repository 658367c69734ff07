package manifest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
)

// XMLRenderer manifiesto en XML canónico (C14N). Digest es el SHA-256 hex del cuerpo, de modo que
// aduanas puede verificar que el archivo recibido no cambió.
type XMLRenderer struct{}

// NewXMLRenderer construye el renderizador.
func NewXMLRenderer() *XMLRenderer { return &XMLRenderer{} }

func (r *XMLRenderer) Format() string { return dto.ManifestFormatXML }

func (r *XMLRenderer) Render(_ context.Context, m *dto.Manifest) (*dto.ManifestExport, error) {
	doc := etree.NewDocument()
	root := doc.CreateElement("Manifest")
	root.CreateAttr("loadNumber", m.LoadNumber)
	root.CreateAttr("status", m.Status)

	header := root.CreateElement("Header")
	header.CreateElement("LoadID").SetText(m.LoadID)
	header.CreateElement("ShippingDate").SetText(m.ShippingDate.Format(dateLayout))
	header.CreateElement("GeneratedAt").SetText(m.GeneratedAt.UTC().Format(time.RFC3339))
	if m.ReleaseNumber != "" {
		header.CreateElement("ReleaseNumber").SetText(m.ReleaseNumber)
	}

	lines := root.CreateElement("Pallets")
	for _, l := range m.Lines {
		p := lines.CreateElement("Pallet")
		p.CreateAttr("id", l.PalletID)
		p.CreateAttr("matched", strconv.FormatBool(l.Matched))
		p.CreateElement("ProductCode").SetText(l.ProductCode)
		p.CreateElement("Description").SetText(l.Description)
		p.CreateElement("Lot").SetText(l.Lot)
		p.CreateElement("CustomerLot").SetText(l.CustomerLot)
		if l.SalesOrder != "" {
			p.CreateElement("SalesOrder").SetText(l.SalesOrder)
		}
		q := p.CreateElement("Quantity")
		q.CreateAttr("unit", l.Unit)
		q.SetText(qty(l.Quantity))
		p.CreateElement("Pieces").SetText(strconv.Itoa(l.Pieces))
		if l.Cases > 0 {
			p.CreateElement("Cases").SetText(strconv.Itoa(l.Cases))
		}
		p.CreateElement("UnitPrice").SetText(money(l.UnitPrice))
		p.CreateElement("Amount").SetText(money(l.Amount))
		p.CreateElement("GrossWeight").SetText(weight(l.GrossWeight))
		p.CreateElement("NetWeight").SetText(weight(l.NetWeight))
		p.CreateElement("Destination").SetText(l.Destination)
		if l.ReleaseNumber != "" {
			p.CreateElement("ReleaseNumber").SetText(l.ReleaseNumber)
		}
		if d := formatDate(l.DeliveryDate); d != "" {
			p.CreateElement("DeliveryDate").SetText(d)
		}
	}

	totals := root.CreateElement("Totals")
	totals.CreateElement("Pallets").SetText(strconv.Itoa(m.TotalPallets))
	totals.CreateElement("Quantity").SetText(qty(m.TotalQuantity))
	totals.CreateElement("GrossWeight").SetText(weight(m.TotalGross))
	totals.CreateElement("NetWeight").SetText(weight(m.TotalNet))
	totals.CreateElement("Amount").SetText(money(m.TotalAmount))

	if len(m.Warnings) > 0 {
		warnings := root.CreateElement("Warnings")
		for _, w := range m.Warnings {
			warnings.CreateElement("Warning").SetText(w)
		}
	}

	raw, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("xml: serializar manifiesto: %w", err)
	}
	canonical, err := canonicalize(raw)
	if err != nil {
		return nil, fmt.Errorf("xml: canonicalizar manifiesto: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return &dto.ManifestExport{
		Filename:    filename(m, "xml"),
		ContentType: "application/xml",
		Body:        canonical,
		Digest:      hex.EncodeToString(sum[:]),
	}, nil
}

func canonicalize(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}
