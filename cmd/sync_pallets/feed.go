package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
)

// Columnas del archivo de producción. id, product_code y quantity son obligatorias.
var feedColumns = []string{
	"id", "product_code", "description", "quantity", "unit", "production_date", "lot",
	"sales_order", "customer_lot", "gross_weight", "net_weight", "pieces",
}

// ParseFeed lee el CSV de producción (';' como separador, coma decimal aceptada).
// Las columnas se ubican por nombre en el encabezado; el orden no importa.
func ParseFeed(r io.Reader) ([]dto.ProducedPalletInput, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("encabezado: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{"id", "product_code", "quantity"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("encabezado: falta la columna %q", required)
		}
	}

	var out []dto.ProducedPalletInput
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if get("id") == "" {
			continue
		}
		p, err := parseRow(get)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func parseRow(get func(string) string) (dto.ProducedPalletInput, error) {
	p := dto.ProducedPalletInput{
		ID:            get("id"),
		ProductCode:   get("product_code"),
		Description:   get("description"),
		Unit:          get("unit"),
		Lot:           get("lot"),
		SalesOrderRef: get("sales_order"),
		CustomerLot:   get("customer_lot"),
	}
	var err error
	if p.Quantity, err = parseDecimal(get("quantity")); err != nil {
		return p, fmt.Errorf("quantity: %w", err)
	}
	if p.GrossWeight, err = parseDecimal(get("gross_weight")); err != nil {
		return p, fmt.Errorf("gross_weight: %w", err)
	}
	if p.NetWeight, err = parseDecimal(get("net_weight")); err != nil {
		return p, fmt.Errorf("net_weight: %w", err)
	}
	if s := get("pieces"); s != "" {
		if p.Pieces, err = strconv.Atoi(s); err != nil {
			return p, fmt.Errorf("pieces: %w", err)
		}
	}
	if s := get("production_date"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return p, fmt.Errorf("production_date: %w", err)
		}
		p.ProductionDate = &t
	}
	return p, nil
}

// parseDecimal acepta "1234.5", "1234,5" y "1.234,5".
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha no reconocida %q", s)
}
