package logistics

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
	"github.com/jhoicas/Despachos-api/internal/domain"
	"github.com/jhoicas/Despachos-api/internal/domain/entity"
	"github.com/jhoicas/Despachos-api/internal/domain/shipping"
)

const dateLayout = "2006-01-02"

func toPalletResponse(p *entity.Pallet) *dto.PalletResponse {
	if p == nil {
		return nil
	}
	return &dto.PalletResponse{
		ID:             p.ID,
		ProductCode:    p.ProductCode,
		Description:    p.Description,
		Quantity:       p.Quantity,
		Unit:           p.Unit,
		ProductionDate: p.ProductionDate,
		Lot:            p.Lot,
		SalesOrderRef:  p.SalesOrderRef,
		CustomerLot:    p.CustomerLot,
		GrossWeight:    p.GrossWeight,
		NetWeight:      p.NetWeight,
		Pieces:         p.Pieces,
		Status:         p.Status,
		IsVirtual:      p.IsVirtual,
		ReleaseDate:    p.ReleaseDate,
	}
}

func toLoadResponse(l *entity.ShippingLoad) *dto.LoadResponse {
	if l == nil {
		return nil
	}
	return &dto.LoadResponse{
		ID:              l.ID,
		LoadNumber:      l.LoadNumber,
		ShippingDate:    l.ShippingDate.Format(dateLayout),
		Status:          l.Status,
		TotalPallets:    l.TotalPallets,
		ReleaseNumber:   l.ReleaseNumber,
		ReleaseDocument: l.ReleaseDocument,
		Notes:           l.Notes,
		NextStatuses:    shipping.AllowedTransitions(l.Status),
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

func toMembershipResponse(m *entity.LoadMembership, p *entity.Pallet) dto.MembershipResponse {
	return dto.MembershipResponse{
		ID:              m.ID,
		LoadID:          m.LoadID,
		PalletID:        m.PalletID,
		Quantity:        m.Quantity,
		Destination:     m.Destination,
		IsOnHold:        m.IsOnHold,
		ReleaseNumber:   m.ReleaseNumber,
		ReleaseDocument: m.ReleaseDocument,
		DeliveryDate:    m.DeliveryDate,
		Pallet:          toPalletResponse(p),
	}
}

func toReleaseRequestResponse(rr *entity.ReleaseRequest) *dto.ReleaseRequestResponse {
	if rr == nil {
		return nil
	}
	return &dto.ReleaseRequestResponse{
		ID:              rr.ID,
		LoadID:          rr.LoadID,
		RequestedBy:     rr.RequestedBy,
		Status:          rr.Status,
		RequestedAt:     rr.RequestedAt,
		RespondedAt:     rr.RespondedAt,
		ReleaseNumber:   rr.ReleaseNumber,
		ReleaseDocument: rr.ReleaseDocument,
		CustomerNotes:   rr.CustomerNotes,
	}
}

// lockLoad lee la carga con bloqueo de fila (SELECT FOR UPDATE) dentro de la transacción.
func lockLoad(ctx context.Context, uow UnitOfWork, loadID string) (*entity.ShippingLoad, error) {
	load, err := uow.Loads().GetForUpdate(ctx, loadID)
	if err != nil {
		return nil, err
	}
	if load == nil {
		return nil, domain.NewNotFoundError("carga", loadID)
	}
	return load, nil
}

// uniqueIDs elimina vacíos y duplicados conservando el orden.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// lockOrder ids únicos ordenados. Toda transacción que bloquea varios pallets los toma en este orden.
func lockOrder(ids []string) []string {
	out := uniqueIDs(ids)
	sort.Strings(out)
	return out
}
