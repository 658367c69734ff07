package logistics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
	"github.com/jhoicas/Despachos-api/internal/domain"
	"github.com/jhoicas/Despachos-api/internal/domain/entity"
	"github.com/jhoicas/Despachos-api/internal/domain/repository"
	"github.com/jhoicas/Despachos-api/internal/domain/shipping"
	"github.com/jhoicas/Despachos-api/pkg/logger"
)

// WorkflowUseCase máquina de estados de liberación de cargas.
// Cada transición valida y aplica sus efectos en una sola transacción: o todo o nada.
type WorkflowUseCase struct {
	txRunner    TxRunner
	loads       repository.LoadRepository
	memberships repository.MembershipRepository
	releases    repository.ReleaseRequestRepository
	storage     DocumentStorage
	log         *logger.Logger
}

// NewWorkflowUseCase construye el caso de uso.
func NewWorkflowUseCase(
	txRunner TxRunner,
	loads repository.LoadRepository,
	memberships repository.MembershipRepository,
	releases repository.ReleaseRequestRepository,
	storage DocumentStorage,
	log *logger.Logger,
) *WorkflowUseCase {
	return &WorkflowUseCase{
		txRunner:    txRunner,
		loads:       loads,
		memberships: memberships,
		releases:    releases,
		storage:     storage,
		log:         log.Component("release_workflow"),
	}
}

// Transition despacha la transición pedida al método que aplica sus efectos.
func (uc *WorkflowUseCase) Transition(ctx context.Context, actor dto.Actor, loadID string, req dto.TransitionRequest) (*dto.TransitionResponse, error) {
	to := strings.TrimSpace(req.To)
	switch to {
	case entity.LoadStatusPendingRelease:
		return uc.SendForRelease(ctx, actor, loadID)
	case entity.LoadStatusApproved:
		return uc.Respond(ctx, actor, loadID, dto.RespondReleaseInput{Decision: dto.DecisionApprove})
	case entity.LoadStatusOnHold:
		return uc.Respond(ctx, actor, loadID, dto.RespondReleaseInput{Decision: dto.DecisionHold})
	case entity.LoadStatusInTransit:
		return uc.Depart(ctx, actor, loadID)
	case entity.LoadStatusDelivered:
		dates, err := parseDeliveryDates(req.DeliveryDates)
		if err != nil {
			return nil, err
		}
		return uc.ConfirmDelivery(ctx, actor, loadID, dates)
	}
	load, err := uc.loads.GetByID(ctx, loadID)
	if err != nil {
		return nil, err
	}
	if load == nil {
		return nil, domain.NewNotFoundError("carga", loadID)
	}
	return nil, shipping.CanTransition(load.ID, load.Status, to)
}

// SendForRelease assembling → pending_release: abre una solicitud de liberación al cliente.
func (uc *WorkflowUseCase) SendForRelease(ctx context.Context, actor dto.Actor, loadID string) (*dto.TransitionResponse, error) {
	if err := requireAdmin(actor, "enviar a liberación"); err != nil {
		return nil, err
	}
	var out *dto.TransitionResponse
	err := uc.txRunner.Run(ctx, func(uow UnitOfWork) error {
		load, err := lockLoad(ctx, uow, loadID)
		if err != nil {
			return err
		}
		if err := shipping.CanTransition(load.ID, load.Status, entity.LoadStatusPendingRelease); err != nil {
			return err
		}
		total, err := uow.Loads().RecountPallets(ctx, load.ID)
		if err != nil {
			return err
		}
		if total == 0 {
			return domain.NewPreconditionFailedError("envío a liberación", []domain.Violation{{
				Code:    domain.ViolationNoPallets,
				Message: "la carga no tiene pallets",
			}})
		}
		rr := &entity.ReleaseRequest{
			ID:          uuid.New().String(),
			LoadID:      load.ID,
			RequestedBy: actor.UserID,
			Status:      entity.ReleaseStatusPending,
			RequestedAt: time.Now(),
		}
		if err := uow.Releases().Create(ctx, rr); err != nil {
			return err
		}
		if err := setLoadStatus(ctx, uow, load, entity.LoadStatusPendingRelease); err != nil {
			return err
		}
		load.TotalPallets = total
		out = &dto.TransitionResponse{Load: *toLoadResponse(load), ReleaseRequest: toReleaseRequestResponse(rr)}
		return nil
	})
	if err != nil {
		uc.logRejected(loadID, entity.LoadStatusPendingRelease, err)
		return nil, err
	}
	uc.log.Info().Str("load_id", loadID).Str("release_request_id", out.ReleaseRequest.ID).Msg("carga enviada a liberación")
	return out, nil
}

// Respond aprueba o retiene la carga. El cliente solo puede responder mientras la solicitud esté
// pendiente; el admin puede hacerlo en cualquier momento antes de la salida.
// Si trae documento, se sube antes de escribir la referencia y se borra si la transacción falla.
func (uc *WorkflowUseCase) Respond(ctx context.Context, actor dto.Actor, loadID string, in dto.RespondReleaseInput) (*dto.TransitionResponse, error) {
	var target string
	switch in.Decision {
	case dto.DecisionApprove:
		target = entity.LoadStatusApproved
	case dto.DecisionHold:
		target = entity.LoadStatusOnHold
	default:
		return nil, domain.NewValidationError("decision", "debe ser approve o hold")
	}

	handle, err := uc.upload(ctx, in.Document)
	if err != nil {
		return nil, err
	}

	var out *dto.TransitionResponse
	err = uc.txRunner.Run(ctx, func(uow UnitOfWork) error {
		load, err := lockLoad(ctx, uow, loadID)
		if err != nil {
			return err
		}
		rr, err := uow.Releases().GetActiveByLoad(ctx, load.ID)
		if err != nil {
			return err
		}
		if rr == nil {
			return domain.NewPreconditionFailedError("respuesta de liberación", []domain.Violation{{
				Code:    domain.ViolationNoReleaseRequest,
				Message: "la carga no tiene solicitud de liberación",
			}})
		}
		if !actor.IsAdmin() && rr.Status != entity.ReleaseStatusPending {
			return domain.NewInvalidStateError("solicitud de liberación", rr.ID, rr.Status, "responder")
		}
		if err := shipping.CanTransition(load.ID, load.Status, target); err != nil {
			return err
		}

		now := time.Now()
		rr.Status = shipping.ReleaseStatusFor(target)
		rr.RespondedAt = &now
		if n := strings.TrimSpace(in.ReleaseNumber); n != "" {
			rr.ReleaseNumber = n
			load.ReleaseNumber = n
		}
		if handle != "" {
			rr.ReleaseDocument = handle
			load.ReleaseDocument = handle
		}
		if notes := strings.TrimSpace(in.Notes); notes != "" {
			rr.CustomerNotes = notes
		}
		if err := uow.Releases().Update(ctx, rr); err != nil {
			return err
		}
		if err := uow.Loads().UpdateRelease(ctx, load.ID, load.ReleaseNumber, load.ReleaseDocument); err != nil {
			return err
		}
		if err := setLoadStatus(ctx, uow, load, target); err != nil {
			return err
		}
		out = &dto.TransitionResponse{Load: *toLoadResponse(load), ReleaseRequest: toReleaseRequestResponse(rr)}
		return nil
	})
	if err != nil {
		uc.discard(ctx, handle)
		uc.logRejected(loadID, target, err)
		return nil, err
	}
	uc.log.Info().
		Str("load_id", loadID).
		Str("decision", in.Decision).
		Str("role", actor.Role).
		Str("customer_id", actor.CustomerID).
		Msg("solicitud de liberación respondida")
	return out, nil
}

// Depart pending_release|approved → in_transit. El guardián se evalúa sobre las membresías
// leídas dentro de la transacción; si pasa, se archiva una fotografía por pallet no retenido.
func (uc *WorkflowUseCase) Depart(ctx context.Context, actor dto.Actor, loadID string) (*dto.TransitionResponse, error) {
	if err := requireAdmin(actor, "despachar"); err != nil {
		return nil, err
	}
	var out *dto.TransitionResponse
	err := uc.txRunner.Run(ctx, func(uow UnitOfWork) error {
		load, err := lockLoad(ctx, uow, loadID)
		if err != nil {
			return err
		}
		if err := shipping.CanTransition(load.ID, load.Status, entity.LoadStatusInTransit); err != nil {
			return err
		}
		details, err := uow.Memberships().ListDetailedByLoad(ctx, load.ID)
		if err != nil {
			return err
		}
		ms := make([]*entity.LoadMembership, 0, len(details))
		for _, d := range details {
			m := d.LoadMembership
			ms = append(ms, &m)
		}
		if err := shipping.CheckDeparture(ms); err != nil {
			return err
		}

		now := time.Now()
		archived := 0
		for _, d := range details {
			if d.IsOnHold {
				continue
			}
			m, p := d.LoadMembership, d.Pallet
			rec := entity.NewShippedPalletRecord(uuid.New().String(), &p, &m, now)
			if err := uow.Shipped().Create(ctx, rec); err != nil {
				return err
			}
			archived++
		}

		rr, err := uow.Releases().GetActiveByLoad(ctx, load.ID)
		if err != nil {
			return err
		}
		if rr != nil {
			rr.Status = entity.ReleaseStatusShipped
			if err := uow.Releases().Update(ctx, rr); err != nil {
				return err
			}
		}
		if err := setLoadStatus(ctx, uow, load, entity.LoadStatusInTransit); err != nil {
			return err
		}
		out = &dto.TransitionResponse{
			Load:            *toLoadResponse(load),
			ReleaseRequest:  toReleaseRequestResponse(rr),
			ArchivedPallets: archived,
		}
		return nil
	})
	if err != nil {
		uc.logRejected(loadID, entity.LoadStatusInTransit, err)
		return nil, err
	}
	uc.log.Info().Str("load_id", loadID).Int("archived_pallets", out.ArchivedPallets).Msg("carga en tránsito")
	return out, nil
}

// ConfirmDelivery in_transit → delivered. Exige fecha de entrega por destino; la fecha se escribe
// en los registros archivados y en las membresías, y los pallets pasan a shipped.
func (uc *WorkflowUseCase) ConfirmDelivery(ctx context.Context, actor dto.Actor, loadID string, dates map[string]time.Time) (*dto.TransitionResponse, error) {
	if err := requireAdmin(actor, "confirmar entrega"); err != nil {
		return nil, err
	}
	var out *dto.TransitionResponse
	err := uc.txRunner.Run(ctx, func(uow UnitOfWork) error {
		load, err := lockLoad(ctx, uow, loadID)
		if err != nil {
			return err
		}
		if err := shipping.CanTransition(load.ID, load.Status, entity.LoadStatusDelivered); err != nil {
			return err
		}
		ms, err := uow.Memberships().ListByLoad(ctx, load.ID)
		if err != nil {
			return err
		}
		if err := shipping.CheckDelivery(ms, dates); err != nil {
			return err
		}

		normalized := make(map[string]time.Time, len(dates))
		for d, t := range dates {
			normalized[entity.NormalizeDestination(d)] = t
		}
		for _, dest := range shipping.DeliveryDestinations(ms) {
			date := normalized[dest]
			if _, err := uow.Shipped().StampDelivery(ctx, load.ID, dest, date); err != nil {
				return err
			}
			if _, err := uow.Memberships().StampDelivery(ctx, load.ID, dest, date); err != nil {
				return err
			}
		}

		palletIDs := make([]string, 0, len(ms))
		for _, m := range ms {
			if !m.IsOnHold {
				palletIDs = append(palletIDs, m.PalletID)
			}
		}
		var shipped int64
		if len(palletIDs) > 0 {
			if shipped, err = uow.Pallets().UpdateStatus(ctx, palletIDs, entity.PalletStatusShipped); err != nil {
				return err
			}
		}
		if err := setLoadStatus(ctx, uow, load, entity.LoadStatusDelivered); err != nil {
			return err
		}
		out = &dto.TransitionResponse{Load: *toLoadResponse(load), ShippedPallets: shipped}
		return nil
	})
	if err != nil {
		uc.logRejected(loadID, entity.LoadStatusDelivered, err)
		return nil, err
	}
	uc.log.Info().Str("load_id", loadID).Int64("shipped_pallets", out.ShippedPallets).Msg("entrega confirmada")
	return out, nil
}

// Readiness vista previa del guardián de salida (solo lectura).
func (uc *WorkflowUseCase) Readiness(ctx context.Context, loadID string) (*dto.ReadinessResponse, error) {
	load, err := uc.loads.GetByID(ctx, loadID)
	if err != nil {
		return nil, err
	}
	if load == nil {
		return nil, domain.NewNotFoundError("carga", loadID)
	}
	ms, err := uc.memberships.ListByLoad(ctx, load.ID)
	if err != nil {
		return nil, err
	}
	violations := shipping.EvaluateDeparture(ms)
	if violations == nil {
		violations = []domain.Violation{}
	}
	return &dto.ReadinessResponse{LoadID: load.ID, Ready: len(violations) == 0, Violations: violations}, nil
}

// GetReleaseRequest solicitud de liberación activa de la carga.
func (uc *WorkflowUseCase) GetReleaseRequest(ctx context.Context, loadID string) (*dto.ReleaseRequestResponse, error) {
	rr, err := uc.releases.GetActiveByLoad(ctx, loadID)
	if err != nil {
		return nil, err
	}
	if rr == nil {
		return nil, domain.NewNotFoundError("solicitud de liberación", loadID)
	}
	return toReleaseRequestResponse(rr), nil
}

func (uc *WorkflowUseCase) upload(ctx context.Context, doc *dto.DocumentUpload) (string, error) {
	if doc == nil || doc.Content == nil {
		return "", nil
	}
	handle, err := uc.storage.Save(ctx, doc.Filename, doc.Content)
	if err != nil {
		return "", fmt.Errorf("guardar documento: %w", err)
	}
	return handle, nil
}

// discard borra un documento huérfano; un fallo solo se registra.
func (uc *WorkflowUseCase) discard(ctx context.Context, handle string) {
	if handle == "" {
		return
	}
	if err := uc.storage.Delete(ctx, handle); err != nil {
		uc.log.Warn().Err(err).Str("document", handle).Msg("no se pudo borrar documento huérfano")
	}
}

func (uc *WorkflowUseCase) logRejected(loadID, to string, err error) {
	uc.log.Warn().Err(err).Str("load_id", loadID).Str("to", to).Msg("transición rechazada")
}

func setLoadStatus(ctx context.Context, uow UnitOfWork, load *entity.ShippingLoad, status string) error {
	if err := uow.Loads().UpdateStatus(ctx, load.ID, status); err != nil {
		return err
	}
	load.Status = status
	load.UpdatedAt = time.Now()
	return nil
}

func requireAdmin(actor dto.Actor, operation string) error {
	if actor.IsAdmin() {
		return nil
	}
	return fmt.Errorf("%w: solo un admin puede %s", domain.ErrForbidden, operation)
}

func parseDeliveryDates(raw map[string]string) (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(raw))
	for dest, s := range raw {
		t, err := time.Parse(dateLayout, strings.TrimSpace(s))
		if err != nil {
			return nil, domain.NewValidationError("delivery_dates."+dest, "debe tener formato YYYY-MM-DD")
		}
		out[dest] = t
	}
	return out, nil
}
