package manifest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
)

func sampleManifest() *dto.Manifest {
	delivered := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
	return &dto.Manifest{
		LoadID:        "c1",
		LoadNumber:    "L-100/A",
		ShippingDate:  time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Status:        "delivered",
		ReleaseNumber: "REL-7",
		GeneratedAt:   time.Date(2025, 1, 13, 8, 0, 0, 0, time.UTC),
		Lines: []dto.ManifestLine{
			{
				PalletID: "P-1", ProductCode: "SKU-1", Description: "Tortilla, harina", Lot: "LOT-1", CustomerLot: "CL-1",
				SalesOrder: "SO-1", Quantity: decimal.NewFromInt(180), Unit: "kg", Pieces: 240, PiecesPerCase: 12, Cases: 20,
				UnitPrice: decimal.RequireFromString("2.5"), Amount: decimal.NewFromInt(450),
				GrossWeight: decimal.RequireFromString("510.25"), NetWeight: decimal.NewFromInt(500),
				Destination: "salinas", ReleaseNumber: "REL-7", DeliveryDate: &delivered, Matched: true,
			},
			{
				PalletID: "P-2", ProductCode: "SKU-2", Description: "Tostada", Lot: "LOT-2", CustomerLot: "CL-2",
				Quantity: decimal.NewFromInt(200), Unit: "kg", Pieces: 240,
				GrossWeight: decimal.NewFromInt(505), NetWeight: decimal.NewFromInt(500), Destination: "salinas",
			},
		},
		TotalPallets:  2,
		TotalQuantity: decimal.NewFromInt(380),
		TotalGross:    decimal.RequireFromString("1015.25"),
		TotalNet:      decimal.NewFromInt(1000),
		TotalAmount:   decimal.NewFromInt(450),
		Warnings:      []string{"pallet P-2: sin pedido para lote CL-2"},
	}
}

func TestCSVRenderer(t *testing.T) {
	out, err := NewCSVRenderer().Render(context.Background(), sampleManifest())
	require.NoError(t, err)
	assert.Equal(t, "manifiesto_L-100_A.csv", out.Filename)

	records, err := csv.NewReader(bytes.NewReader(out.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "Tortilla, harina", records[1][2], "las comas quedan entrecomilladas")
	assert.Equal(t, "450.00", records[1][11])
	assert.Equal(t, "2025-01-12", records[1][16])
	assert.Equal(t, "", records[2][9], "sin pedido no hay cajas")
	assert.Equal(t, "TOTAL", records[3][0])
	assert.Equal(t, "1015.250", records[3][12])
}

func TestXMLRenderer_DigestYContenido(t *testing.T) {
	r := NewXMLRenderer()
	m := sampleManifest()
	out, err := r.Render(context.Background(), m)
	require.NoError(t, err)

	sum := sha256.Sum256(out.Body)
	assert.Equal(t, hex.EncodeToString(sum[:]), out.Digest)

	again, err := r.Render(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, out.Digest, again.Digest, "mismo manifiesto, mismo digest")

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out.Body))
	root := doc.SelectElement("Manifest")
	require.NotNil(t, root)
	assert.Equal(t, "L-100/A", root.SelectAttrValue("loadNumber", ""))
	pallets := root.FindElements("./Pallets/Pallet")
	require.Len(t, pallets, 2)
	assert.Equal(t, "true", pallets[0].SelectAttrValue("matched", ""))
	assert.Nil(t, pallets[1].SelectElement("SalesOrder"))
	assert.Equal(t, "450.00", root.FindElement("./Totals/Amount").Text())
	assert.Len(t, root.FindElements("./Warnings/Warning"), 1)
}

func TestPDFRenderer(t *testing.T) {
	out, err := NewPDFRenderer().Render(context.Background(), sampleManifest())
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", out.ContentType)
	assert.True(t, bytes.HasPrefix(out.Body, []byte("%PDF")))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0.00", formatMoney("0.00"))
	assert.Equal(t, "25,000.50", formatMoney("25000.50"))
	assert.Equal(t, "1,000,000", formatMoney("1000000"))
	assert.Equal(t, "-1,234.00", formatMoney("-1234.00"))
}
