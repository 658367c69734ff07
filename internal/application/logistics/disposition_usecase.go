package logistics

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
	"github.com/jhoicas/Despachos-api/internal/domain"
	"github.com/jhoicas/Despachos-api/internal/domain/entity"
	"github.com/jhoicas/Despachos-api/internal/domain/repository"
	"github.com/jhoicas/Despachos-api/pkg/logger"
)

// DispositionUseCase decisiones por pallet dentro de una carga: embarcar (con destino) o retener,
// número de liberación y documento de autorización.
type DispositionUseCase struct {
	txRunner     TxRunner
	memberships  repository.MembershipRepository
	storage      DocumentStorage
	destinations map[string]struct{}
	log          *logger.Logger
}

// NewDispositionUseCase construye el caso de uso. destinations vacío acepta cualquier destino no vacío.
func NewDispositionUseCase(
	txRunner TxRunner,
	memberships repository.MembershipRepository,
	storage DocumentStorage,
	destinations []string,
	log *logger.Logger,
) *DispositionUseCase {
	allowed := make(map[string]struct{}, len(destinations))
	for _, d := range destinations {
		if d = entity.NormalizeDestination(d); d != "" {
			allowed[d] = struct{}{}
		}
	}
	return &DispositionUseCase{
		txRunner:     txRunner,
		memberships:  memberships,
		storage:      storage,
		destinations: allowed,
		log:          log.Component("disposition"),
	}
}

// SetDisposition aplica ship u hold a una membresía.
// ship fija el destino y quita la retención; hold marca la retención y opcionalmente la fecha
// de reconsideración del pallet.
func (uc *DispositionUseCase) SetDisposition(ctx context.Context, actor dto.Actor, loadID, membershipID string, in dto.DispositionInput) (*dto.MembershipResponse, error) {
	var dest string
	switch in.Action {
	case dto.DispositionShip:
		var err error
		if dest, err = uc.validDestination(in.Destination); err != nil {
			return nil, err
		}
	case dto.DispositionHold:
	default:
		return nil, domain.NewValidationError("action", "debe ser ship o hold")
	}

	var out dto.MembershipResponse
	err := uc.txRunner.Run(ctx, func(uow UnitOfWork) error {
		m, err := editableMembership(ctx, uow, actor, loadID, membershipID)
		if err != nil {
			return err
		}
		if in.Action == dto.DispositionShip {
			m.Destination = dest
			m.IsOnHold = false
			if err := uow.Pallets().SetReleaseDate(ctx, m.PalletID, nil); err != nil {
				return err
			}
		} else {
			m.IsOnHold = true
			if in.ReleaseDate != nil {
				if err := uow.Pallets().SetReleaseDate(ctx, m.PalletID, in.ReleaseDate); err != nil {
					return err
				}
			}
		}
		m.UpdatedAt = time.Now()
		if err := uow.Memberships().UpdateDisposition(ctx, m); err != nil {
			return err
		}
		p, err := uow.Pallets().GetByID(ctx, m.PalletID)
		if err != nil {
			return err
		}
		out = toMembershipResponse(m, p)
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("load_id", loadID).Str("membership_id", membershipID).Str("action", in.Action).Msg("disposición rechazada")
		return nil, err
	}
	uc.log.Info().Str("load_id", loadID).Str("membership_id", membershipID).Str("action", in.Action).Str("destination", out.Destination).Msg("disposición aplicada")
	return &out, nil
}

// SetReleaseNumber asigna el número de liberación de un pallet.
func (uc *DispositionUseCase) SetReleaseNumber(ctx context.Context, actor dto.Actor, loadID, membershipID, releaseNumber string) (*dto.MembershipResponse, error) {
	releaseNumber = strings.TrimSpace(releaseNumber)
	if releaseNumber == "" {
		return nil, domain.NewValidationError("release_number", "es requerido")
	}
	var out dto.MembershipResponse
	err := uc.txRunner.Run(ctx, func(uow UnitOfWork) error {
		m, err := editableMembership(ctx, uow, actor, loadID, membershipID)
		if err != nil {
			return err
		}
		m.ReleaseNumber = releaseNumber
		m.UpdatedAt = time.Now()
		if err := uow.Memberships().UpdateDisposition(ctx, m); err != nil {
			return err
		}
		out = toMembershipResponse(m, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("membership_id", membershipID).Str("release_number", releaseNumber).Msg("número de liberación asignado")
	return &out, nil
}

// AttachDocument sube un documento una sola vez y lo referencia desde todas las membresías
// seleccionadas, o desde ninguna si algo falla.
func (uc *DispositionUseCase) AttachDocument(ctx context.Context, actor dto.Actor, loadID string, membershipIDs []string, doc *dto.DocumentUpload) (*dto.AttachDocumentResponse, error) {
	ids := uniqueIDs(membershipIDs)
	if len(ids) == 0 {
		return nil, domain.NewValidationError("membership_ids", "es requerido")
	}
	if doc == nil || doc.Content == nil {
		return nil, domain.NewValidationError("document", "es requerido")
	}

	handle, err := uc.storage.Save(ctx, doc.Filename, doc.Content)
	if err != nil {
		uc.log.Error().Err(err).Str("load_id", loadID).Msg("fallo al guardar documento")
		return nil, fmt.Errorf("guardar documento: %w", err)
	}

	err = uc.txRunner.Run(ctx, func(uow UnitOfWork) error {
		load, err := lockLoad(ctx, uow, loadID)
		if err != nil {
			return err
		}
		if err := authorizeEdit(ctx, uow, actor, load); err != nil {
			return err
		}
		ms, err := uow.Memberships().ListByIDs(ctx, ids)
		if err != nil {
			return err
		}
		owned := make(map[string]bool, len(ms))
		for _, m := range ms {
			owned[m.ID] = m.LoadID == load.ID
		}
		for _, id := range ids {
			if !owned[id] {
				return domain.NewNotFoundError("membresía", id)
			}
		}
		n, err := uow.Memberships().SetDocument(ctx, ids, handle)
		if err != nil {
			return err
		}
		if int(n) != len(ids) {
			return fmt.Errorf("adjuntar documento: %d de %d membresías actualizadas", n, len(ids))
		}
		return nil
	})
	if err != nil {
		if derr := uc.storage.Delete(ctx, handle); derr != nil {
			uc.log.Warn().Err(derr).Str("document", handle).Msg("no se pudo borrar documento huérfano")
		}
		return nil, err
	}
	uc.log.Info().Str("load_id", loadID).Str("document", handle).Int("memberships", len(ids)).Msg("documento adjuntado")
	return &dto.AttachDocumentResponse{Document: handle, MembershipIDs: ids}, nil
}

// OpenDocument abre un documento de autorización por su handle.
func (uc *DispositionUseCase) OpenDocument(ctx context.Context, handle string) (io.ReadCloser, error) {
	if strings.TrimSpace(handle) == "" {
		return nil, domain.NewValidationError("document", "es requerido")
	}
	return uc.storage.Open(ctx, handle)
}

// ListHeldDue pallets retenidos cuya fecha de reconsideración ya pasó.
func (uc *DispositionUseCase) ListHeldDue(ctx context.Context, asOf time.Time) ([]dto.HeldMembershipResponse, error) {
	list, err := uc.memberships.ListHeldDue(ctx, asOf)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HeldMembershipResponse, 0, len(list))
	for _, h := range list {
		out = append(out, dto.HeldMembershipResponse{
			MembershipID: h.MembershipID,
			LoadID:       h.LoadID,
			LoadNumber:   h.LoadNumber,
			PalletID:     h.PalletID,
			ProductCode:  h.ProductCode,
			ReleaseDate:  h.ReleaseDate,
		})
	}
	return out, nil
}

func (uc *DispositionUseCase) validDestination(raw string) (string, error) {
	dest := entity.NormalizeDestination(raw)
	if dest == "" || dest == entity.DestinationTBD {
		return "", domain.NewValidationError("destination", "es requerido para embarcar")
	}
	if len(uc.destinations) > 0 {
		if _, ok := uc.destinations[dest]; !ok {
			return "", domain.NewValidationError("destination", "no permitido: "+dest)
		}
	}
	return dest, nil
}

// editableMembership bloquea la carga, verifica permisos y devuelve la membresía.
func editableMembership(ctx context.Context, uow UnitOfWork, actor dto.Actor, loadID, membershipID string) (*entity.LoadMembership, error) {
	load, err := lockLoad(ctx, uow, loadID)
	if err != nil {
		return nil, err
	}
	if err := authorizeEdit(ctx, uow, actor, load); err != nil {
		return nil, err
	}
	m, err := uow.Memberships().GetByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.LoadID != load.ID {
		return nil, domain.NewNotFoundError("membresía", membershipID)
	}
	return m, nil
}

// authorizeEdit admin: cualquier momento antes de la salida; cliente: solo con la solicitud pendiente.
func authorizeEdit(ctx context.Context, uow UnitOfWork, actor dto.Actor, load *entity.ShippingLoad) error {
	if !load.IsPreDeparture() {
		return domain.NewInvalidStateError("carga", load.ID, load.Status, "modificar pallets de")
	}
	if actor.IsAdmin() {
		return nil
	}
	rr, err := uow.Releases().GetActiveByLoad(ctx, load.ID)
	if err != nil {
		return err
	}
	if rr == nil || rr.Status != entity.ReleaseStatusPending {
		status := "sin solicitud"
		if rr != nil {
			status = rr.Status
		}
		return domain.NewInvalidStateError("solicitud de liberación", load.ID, status, "modificar pallets con")
	}
	return nil
}
