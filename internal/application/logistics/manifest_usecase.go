package logistics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
	"github.com/jhoicas/Despachos-api/internal/domain"
	"github.com/jhoicas/Despachos-api/internal/domain/entity"
	"github.com/jhoicas/Despachos-api/internal/domain/repository"
	"github.com/jhoicas/Despachos-api/pkg/logger"
)

// ManifestUseCase arma el manifiesto de una carga cruzando membresías, fotografías de embarque
// y pedidos, y lo exporta en los formatos registrados.
type ManifestUseCase struct {
	loads       repository.LoadRepository
	memberships repository.MembershipRepository
	shipped     repository.ShippedPalletRepository
	orders      repository.PurchaseOrderRepository
	renderers   map[string]ManifestRenderer
	log         *logger.Logger
}

// NewManifestUseCase construye el caso de uso con los renderizadores disponibles.
func NewManifestUseCase(
	loads repository.LoadRepository,
	memberships repository.MembershipRepository,
	shipped repository.ShippedPalletRepository,
	orders repository.PurchaseOrderRepository,
	log *logger.Logger,
	renderers ...ManifestRenderer,
) *ManifestUseCase {
	byFormat := make(map[string]ManifestRenderer, len(renderers))
	for _, r := range renderers {
		byFormat[r.Format()] = r
	}
	return &ManifestUseCase{
		loads:       loads,
		memberships: memberships,
		shipped:     shipped,
		orders:      orders,
		renderers:   byFormat,
		log:         log.Component("manifest"),
	}
}

// Generate arma el manifiesto. Si faltan pedidos para algunas líneas devuelve el manifiesto
// completo junto con *domain.IncompleteDataError; los campos sin coincidencia quedan vacíos.
func (uc *ManifestUseCase) Generate(ctx context.Context, loadID string) (*dto.Manifest, error) {
	load, err := uc.loads.GetByID(ctx, loadID)
	if err != nil {
		return nil, err
	}
	if load == nil {
		return nil, domain.NewNotFoundError("carga", loadID)
	}
	details, err := uc.memberships.ListDetailedByLoad(ctx, load.ID)
	if err != nil {
		return nil, err
	}
	records, err := uc.shipped.ListByLoad(ctx, load.ID)
	if err != nil {
		return nil, err
	}

	lines := buildLines(details, records)
	orders, err := uc.lookupOrders(ctx, lines)
	if err != nil {
		return nil, err
	}

	m := &dto.Manifest{
		LoadID:        load.ID,
		LoadNumber:    load.LoadNumber,
		ShippingDate:  load.ShippingDate,
		Status:        load.Status,
		ReleaseNumber: load.ReleaseNumber,
		GeneratedAt:   time.Now(),
		Lines:         lines,
		TotalQuantity: decimal.Zero,
		TotalGross:    decimal.Zero,
		TotalNet:      decimal.Zero,
		TotalAmount:   decimal.Zero,
	}
	var missing []string
	for i := range m.Lines {
		line := &m.Lines[i]
		if o := matchOrder(orders, line); o != nil {
			applyOrder(line, o)
		} else {
			missing = append(missing, fmt.Sprintf("pallet %s sin pedido (lote cliente %q, lote %q)", line.PalletID, line.CustomerLot, line.Lot))
		}
		m.TotalQuantity = m.TotalQuantity.Add(line.Quantity)
		m.TotalGross = m.TotalGross.Add(line.GrossWeight)
		m.TotalNet = m.TotalNet.Add(line.NetWeight)
		m.TotalAmount = m.TotalAmount.Add(line.Amount)
	}
	m.TotalPallets = len(m.Lines)
	m.Warnings = missing

	if len(missing) > 0 {
		uc.log.Warn().Str("load_id", load.ID).Int("missing", len(missing)).Msg("manifiesto con datos incompletos")
		return m, &domain.IncompleteDataError{Missing: missing}
	}
	return m, nil
}

// Export genera el manifiesto y lo renderiza en format (csv, xml, pdf).
// Los datos incompletos no impiden la exportación: se marca Incomplete.
func (uc *ManifestUseCase) Export(ctx context.Context, loadID, format string) (*dto.ManifestExport, error) {
	r, ok := uc.renderers[format]
	if !ok {
		return nil, domain.NewValidationError("format", "no soportado: "+format)
	}
	m, err := uc.Generate(ctx, loadID)
	incomplete := errors.Is(err, domain.ErrIncompleteData)
	if err != nil && !incomplete {
		return nil, err
	}
	out, err := r.Render(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("renderizar manifiesto %s: %w", format, err)
	}
	out.Incomplete = incomplete
	uc.log.Info().Str("load_id", loadID).Str("format", format).Int("bytes", len(out.Body)).Msg("manifiesto exportado")
	return out, nil
}

// buildLines una línea por membresía no retenida. Si la carga ya salió, los campos de la
// fotografía archivada prevalecen sobre los del pallet vivo.
func buildLines(details []*entity.MembershipDetail, records []*entity.ShippedPalletRecord) []dto.ManifestLine {
	recByPallet := make(map[string]*entity.ShippedPalletRecord, len(records))
	for _, r := range records {
		recByPallet[r.PalletID] = r
	}

	lines := make([]dto.ManifestLine, 0, len(details))
	seen := make(map[string]bool, len(details))
	for _, d := range details {
		if d.IsOnHold {
			continue
		}
		p := d.Pallet
		line := dto.ManifestLine{
			PalletID:      p.ID,
			ProductCode:   p.ProductCode,
			Description:   p.Description,
			Lot:           p.Lot,
			CustomerLot:   p.CustomerLot,
			SalesOrder:    p.SalesOrderRef,
			Quantity:      d.Quantity,
			Unit:          p.Unit,
			Pieces:        p.Pieces,
			UnitPrice:     decimal.Zero,
			Amount:        decimal.Zero,
			GrossWeight:   p.GrossWeight,
			NetWeight:     p.NetWeight,
			Destination:   entity.NormalizeDestination(d.Destination),
			ReleaseNumber: d.ReleaseNumber,
			DeliveryDate:  d.DeliveryDate,
		}
		if r, ok := recByPallet[p.ID]; ok {
			applySnapshot(&line, r)
		}
		seen[p.ID] = true
		lines = append(lines, line)
	}
	// Registros archivados cuya membresía ya no existe.
	for _, r := range records {
		if seen[r.PalletID] {
			continue
		}
		line := dto.ManifestLine{
			PalletID:    r.PalletID,
			UnitPrice:   decimal.Zero,
			Amount:      decimal.Zero,
			GrossWeight: decimal.Zero,
			NetWeight:   decimal.Zero,
		}
		applySnapshot(&line, r)
		lines = append(lines, line)
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Destination != lines[j].Destination {
			return lines[i].Destination < lines[j].Destination
		}
		return lines[i].PalletID < lines[j].PalletID
	})
	return lines
}

func applySnapshot(line *dto.ManifestLine, r *entity.ShippedPalletRecord) {
	line.ProductCode = r.ProductCode
	line.Description = r.Description
	line.Lot = r.Lot
	line.CustomerLot = r.CustomerLot
	line.SalesOrder = r.SalesOrder
	line.Quantity = r.Quantity
	line.Unit = r.Unit
	line.Destination = r.Destination
	if r.DeliveryDate != nil {
		line.DeliveryDate = r.DeliveryDate
	}
}

func (uc *ManifestUseCase) lookupOrders(ctx context.Context, lines []dto.ManifestLine) ([]*entity.PurchaseOrder, error) {
	keys := make([]string, 0, len(lines)*2)
	for _, l := range lines {
		if l.CustomerLot != "" {
			keys = append(keys, l.CustomerLot)
		}
		if l.Lot != "" {
			keys = append(keys, l.Lot)
		}
	}
	keys = uniqueIDs(keys)
	if len(keys) == 0 {
		return nil, nil
	}
	return uc.orders.ListByCustomerLots(ctx, keys)
}

// matchOrder busca por lote del cliente y, si no hay, por código de trazabilidad.
func matchOrder(orders []*entity.PurchaseOrder, line *dto.ManifestLine) *entity.PurchaseOrder {
	for _, key := range []string{line.CustomerLot, line.Lot} {
		if key == "" {
			continue
		}
		for _, o := range orders {
			if o.CustomerLot == key {
				return o
			}
		}
	}
	return nil
}

func applyOrder(line *dto.ManifestLine, o *entity.PurchaseOrder) {
	line.Matched = true
	if o.SalesOrderNumber != "" {
		line.SalesOrder = o.SalesOrderNumber
	}
	line.UnitPrice = o.UnitPrice
	line.Amount = line.Quantity.Mul(o.UnitPrice).Round(2)
	line.PiecesPerPallet = o.PiecesPerPallet
	line.PiecesPerCase = o.PiecesPerCase
	if o.PiecesPerCase > 0 {
		line.Cases = line.Pieces / o.PiecesPerCase
	}
}
