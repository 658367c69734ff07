package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
)

const sampleFeed = "id;product_code;description;quantity;unit;production_date;lot;customer_lot;gross_weight;net_weight;pieces\n" +
	"P-1;SKU-1;Tortilla de maíz;1.234,5;kg;05/01/2025;LOT-1;CL-1;510,25;500;240\n" +
	";;;;;;;;;;\n" +
	"P-2;SKU-2;Tostada;80;kg;2025-01-06;LOT-2;CL-2;;;\n"

func TestParseFeed_Latin1(t *testing.T) {
	var encoded bytes.Buffer
	w := transform.NewWriter(&encoded, charmap.ISO8859_1.NewEncoder())
	_, err := w.Write([]byte(sampleFeed))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NotContains(t, encoded.String(), "maíz", "el archivo de prueba está en latin1")

	got, err := ParseFeed(transform.NewReader(&encoded, charmap.ISO8859_1.NewDecoder()))
	require.NoError(t, err)
	require.Len(t, got, 2, "las filas sin id se ignoran")

	p := got[0]
	assert.Equal(t, "Tortilla de maíz", p.Description)
	assert.True(t, p.Quantity.Equal(decimal.RequireFromString("1234.5")))
	assert.True(t, p.GrossWeight.Equal(decimal.RequireFromString("510.25")))
	assert.Equal(t, 240, p.Pieces)
	require.NotNil(t, p.ProductionDate)
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), *p.ProductionDate)
	assert.Equal(t, "CL-1", p.CustomerLot)

	assert.True(t, got[1].NetWeight.IsZero())
}

func TestParseFeed_Errores(t *testing.T) {
	_, err := ParseFeed(strings.NewReader("id;description\nP-1;x\n"))
	assert.ErrorContains(t, err, "product_code")

	_, err = ParseFeed(strings.NewReader("id;product_code;quantity\nP-1;SKU;mucho\n"))
	assert.ErrorContains(t, err, "línea 2")

	_, err = ParseFeed(strings.NewReader("id;product_code;quantity;production_date\nP-1;SKU;1;ayer\n"))
	assert.ErrorContains(t, err, "production_date")
}

func TestChunks(t *testing.T) {
	in := make([]dto.ProducedPalletInput, 5)
	assert.Len(t, chunks(in, 2), 3)
	assert.Len(t, chunks(in, 0), 1)
	assert.Empty(t, chunks(nil, 2))
}
