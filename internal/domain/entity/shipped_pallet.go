package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShippedPalletRecord fotografía inmutable del pallet al salir la carga (in_transit).
// Solo DeliveryDate se escribe después, una única vez.
type ShippedPalletRecord struct {
	ID           string
	PalletID     string
	LoadID       string
	ProductCode  string
	Description  string
	Lot          string
	CustomerLot  string
	SalesOrder   string
	Quantity     decimal.Decimal
	Unit         string
	Destination  string
	ShippedAt    time.Time
	DeliveryDate *time.Time
}

// NewShippedPalletRecord toma la fotografía a partir del pallet y su membresía.
func NewShippedPalletRecord(id string, p *Pallet, m *LoadMembership, at time.Time) *ShippedPalletRecord {
	return &ShippedPalletRecord{
		ID:          id,
		PalletID:    p.ID,
		LoadID:      m.LoadID,
		ProductCode: p.ProductCode,
		Description: p.Description,
		Lot:         p.Lot,
		CustomerLot: p.CustomerLot,
		SalesOrder:  p.SalesOrderRef,
		Quantity:    m.Quantity,
		Unit:        p.Unit,
		Destination: NormalizeDestination(m.Destination),
		ShippedAt:   at,
	}
}
