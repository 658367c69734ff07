package logistics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
	"github.com/jhoicas/Despachos-api/internal/domain"
	"github.com/jhoicas/Despachos-api/internal/domain/entity"
	"github.com/jhoicas/Despachos-api/internal/domain/repository"
	"github.com/jhoicas/Despachos-api/pkg/logger"
)

// Códigos de error por pallet en AddPallets.
const (
	AddErrAlreadyAssigned = "ALREADY_ASSIGNED"
	AddErrNotFound        = "NOT_FOUND"
	AddErrInvalidState    = "INVALID_STATE"
)

// AssemblyUseCase arma cargas: alta, agregar/quitar pallets y borrado.
// Toda mutación bloquea la fila de la carga y recalcula total_pallets en la misma transacción.
type AssemblyUseCase struct {
	txRunner    TxRunner
	loads       repository.LoadRepository
	memberships repository.MembershipRepository
	releases    repository.ReleaseRequestRepository
	log         *logger.Logger
}

// NewAssemblyUseCase construye el caso de uso.
func NewAssemblyUseCase(
	txRunner TxRunner,
	loads repository.LoadRepository,
	memberships repository.MembershipRepository,
	releases repository.ReleaseRequestRepository,
	log *logger.Logger,
) *AssemblyUseCase {
	return &AssemblyUseCase{
		txRunner:    txRunner,
		loads:       loads,
		memberships: memberships,
		releases:    releases,
		log:         log.Component("load_assembly"),
	}
}

// CreateLoad crea una carga vacía en assembling.
func (uc *AssemblyUseCase) CreateLoad(ctx context.Context, in dto.CreateLoadRequest) (*dto.LoadResponse, error) {
	number := strings.TrimSpace(in.LoadNumber)
	if number == "" {
		return nil, domain.NewValidationError("load_number", "es requerido")
	}
	shipDate, err := time.Parse(dateLayout, strings.TrimSpace(in.ShippingDate))
	if err != nil {
		return nil, domain.NewValidationError("shipping_date", "debe tener formato YYYY-MM-DD")
	}
	now := time.Now()
	load := &entity.ShippingLoad{
		ID:           uuid.New().String(),
		LoadNumber:   number,
		ShippingDate: shipDate,
		Status:       entity.LoadStatusAssembling,
		TotalPallets: 0,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.loads.Create(ctx, load); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			uc.log.Warn().Str("load_number", number).Msg("número de carga duplicado")
		}
		return nil, err
	}
	uc.log.Info().Str("load_id", load.ID).Str("load_number", number).Msg("carga creada")
	return toLoadResponse(load), nil
}

// AddPallets agrega pallets a la carga. Cada pallet se agrega completo (membresía + estado assigned)
// o se omite y se reporta; un fallo no deshace los pallets ya agregados.
func (uc *AssemblyUseCase) AddPallets(ctx context.Context, loadID string, palletIDs []string) (*dto.AddPalletsResponse, error) {
	// Orden fijo de bloqueo: dos peticiones con los mismos pallets en distinto orden no se interbloquean.
	ids := lockOrder(palletIDs)
	if len(ids) == 0 {
		return nil, domain.NewValidationError("pallet_ids", "es requerido")
	}

	var out *dto.AddPalletsResponse
	err := uc.txRunner.Run(ctx, func(uow UnitOfWork) error {
		load, err := lockLoad(ctx, uow, loadID)
		if err != nil {
			return err
		}
		if !load.IsPreDeparture() {
			return domain.NewInvalidStateError("carga", load.ID, load.Status, "agregar pallets a")
		}

		results := make([]dto.AddPalletResult, 0, len(ids))
		for _, palletID := range ids {
			var membershipID string
			err := uow.Savepoint(ctx, func(sp UnitOfWork) error {
				var err error
				membershipID, err = assignPallet(ctx, sp, load.ID, palletID)
				return err
			})
			res := dto.AddPalletResult{PalletID: palletID}
			if err != nil {
				code := addErrorCode(err)
				if code == "" {
					return err
				}
				res.ErrorCode, res.Error = code, err.Error()
				uc.log.Warn().Str("load_id", load.ID).Str("pallet_id", palletID).Str("code", code).Msg("pallet omitido")
			} else {
				res.Added, res.MembershipID = true, membershipID
			}
			results = append(results, res)
		}

		total, err := uow.Loads().RecountPallets(ctx, load.ID)
		if err != nil {
			return err
		}
		out = &dto.AddPalletsResponse{LoadID: load.ID, TotalPallets: total, Results: results}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("load_id", out.LoadID).Int("total_pallets", out.TotalPallets).Msg("pallets agregados")
	return out, nil
}

// assignPallet bloquea el pallet, crea la membresía y lo marca assigned.
func assignPallet(ctx context.Context, uow UnitOfWork, loadID, palletID string) (string, error) {
	p, err := uow.Pallets().GetForUpdate(ctx, palletID)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", domain.NewNotFoundError("pallet", palletID)
	}
	member, err := uow.Memberships().ExistsForPallet(ctx, palletID)
	if err != nil {
		return "", err
	}
	if member || p.Status == entity.PalletStatusAssigned {
		return "", domain.NewAlreadyAssignedError(palletID)
	}
	if !p.IsAvailable() {
		return "", domain.NewInvalidStateError("pallet", palletID, p.Status, "asignar")
	}

	now := time.Now()
	m := &entity.LoadMembership{
		ID:          uuid.New().String(),
		LoadID:      loadID,
		PalletID:    palletID,
		Quantity:    p.Quantity,
		Destination: entity.DestinationTBD,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// UNIQUE(pallet_id) resuelve la carrera entre dos peticiones concurrentes.
	if err := uow.Memberships().Create(ctx, m); err != nil {
		return "", err
	}
	if _, err := uow.Pallets().UpdateStatus(ctx, []string{palletID}, entity.PalletStatusAssigned); err != nil {
		return "", err
	}
	return m.ID, nil
}

func addErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyAssigned):
		return AddErrAlreadyAssigned
	case errors.Is(err, domain.ErrNotFound):
		return AddErrNotFound
	case errors.Is(err, domain.ErrInvalidState):
		return AddErrInvalidState
	}
	return ""
}

// RemoveMemberships quita pallets de la carga y los devuelve a available.
func (uc *AssemblyUseCase) RemoveMemberships(ctx context.Context, loadID string, membershipIDs []string) (*dto.RemoveMembershipsResponse, error) {
	ids := uniqueIDs(membershipIDs)
	if len(ids) == 0 {
		return nil, domain.NewValidationError("membership_ids", "es requerido")
	}

	var out *dto.RemoveMembershipsResponse
	err := uc.txRunner.Run(ctx, func(uow UnitOfWork) error {
		load, err := lockLoad(ctx, uow, loadID)
		if err != nil {
			return err
		}
		if !load.IsPreDeparture() {
			return domain.NewInvalidStateError("carga", load.ID, load.Status, "quitar pallets de")
		}

		ms, err := uow.Memberships().ListByIDs(ctx, ids)
		if err != nil {
			return err
		}
		found := make(map[string]*entity.LoadMembership, len(ms))
		for _, m := range ms {
			found[m.ID] = m
		}
		palletIDs := make([]string, 0, len(ids))
		for _, id := range ids {
			m, ok := found[id]
			if !ok || m.LoadID != load.ID {
				return domain.NewNotFoundError("membresía", id)
			}
			palletIDs = append(palletIDs, m.PalletID)
		}

		removed, err := uow.Memberships().DeleteByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if _, err := uow.Pallets().Release(ctx, palletIDs); err != nil {
			return err
		}
		total, err := uow.Loads().RecountPallets(ctx, load.ID)
		if err != nil {
			return err
		}
		out = &dto.RemoveMembershipsResponse{
			LoadID:          load.ID,
			Removed:         removed,
			ReleasedPallets: palletIDs,
			TotalPallets:    total,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("load_id", out.LoadID).Int64("removed", out.Removed).Int("total_pallets", out.TotalPallets).Msg("pallets quitados de la carga")
	return out, nil
}

// DeleteLoad libera los pallets y borra membresías, solicitudes de liberación y la carga.
func (uc *AssemblyUseCase) DeleteLoad(ctx context.Context, loadID string) error {
	var released int64
	err := uc.txRunner.Run(ctx, func(uow UnitOfWork) error {
		load, err := lockLoad(ctx, uow, loadID)
		if err != nil {
			return err
		}
		if !load.IsPreDeparture() {
			return domain.NewInvalidStateError("carga", load.ID, load.Status, "eliminar")
		}
		ms, err := uow.Memberships().ListByLoad(ctx, load.ID)
		if err != nil {
			return err
		}
		palletIDs := make([]string, 0, len(ms))
		for _, m := range ms {
			palletIDs = append(palletIDs, m.PalletID)
		}
		if len(palletIDs) > 0 {
			if released, err = uow.Pallets().Release(ctx, palletIDs); err != nil {
				return err
			}
		}
		if _, err := uow.Memberships().DeleteByLoad(ctx, load.ID); err != nil {
			return err
		}
		if _, err := uow.Releases().DeleteByLoad(ctx, load.ID); err != nil {
			return err
		}
		return uow.Loads().Delete(ctx, load.ID)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("load_id", loadID).Int64("released_pallets", released).Msg("carga eliminada")
	return nil
}

// GetLoad devuelve la carga con membresías (atributos del pallet resueltos) y la solicitud activa.
func (uc *AssemblyUseCase) GetLoad(ctx context.Context, loadID string) (*dto.LoadDetailResponse, error) {
	load, err := uc.loads.GetByID(ctx, loadID)
	if err != nil {
		return nil, err
	}
	if load == nil {
		return nil, domain.NewNotFoundError("carga", loadID)
	}
	memberships, err := uc.listMemberships(ctx, load.ID)
	if err != nil {
		return nil, err
	}
	rr, err := uc.releases.GetActiveByLoad(ctx, load.ID)
	if err != nil {
		return nil, err
	}
	return &dto.LoadDetailResponse{
		Load:           *toLoadResponse(load),
		Memberships:    memberships,
		ReleaseRequest: toReleaseRequestResponse(rr),
	}, nil
}

// ListLoads lista cargas, opcionalmente filtradas por estado.
func (uc *AssemblyUseCase) ListLoads(ctx context.Context, status string, page dto.PageRequest) (*dto.LoadListResponse, error) {
	status = strings.TrimSpace(status)
	if status != "" && !entity.ValidLoadStatus(status) {
		return nil, domain.NewValidationError("status", "desconocido: "+status)
	}
	page.DefaultPage()
	list, err := uc.loads.List(ctx, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LoadResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLoadResponse(l))
	}
	return &dto.LoadListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// ListMemberships membresías de la carga con atributos del pallet.
func (uc *AssemblyUseCase) ListMemberships(ctx context.Context, loadID string) ([]dto.MembershipResponse, error) {
	load, err := uc.loads.GetByID(ctx, loadID)
	if err != nil {
		return nil, err
	}
	if load == nil {
		return nil, domain.NewNotFoundError("carga", loadID)
	}
	return uc.listMemberships(ctx, load.ID)
}

func (uc *AssemblyUseCase) listMemberships(ctx context.Context, loadID string) ([]dto.MembershipResponse, error) {
	details, err := uc.memberships.ListDetailedByLoad(ctx, loadID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MembershipResponse, 0, len(details))
	for _, d := range details {
		m, p := d.LoadMembership, d.Pallet
		out = append(out, toMembershipResponse(&m, &p))
	}
	return out, nil
}
