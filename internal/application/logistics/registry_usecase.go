package logistics

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
	"github.com/jhoicas/Despachos-api/internal/domain"
	"github.com/jhoicas/Despachos-api/internal/domain/entity"
	"github.com/jhoicas/Despachos-api/internal/domain/repository"
	"github.com/jhoicas/Despachos-api/pkg/logger"
)

// RegistryUseCase registro de pallets: fuente de verdad de unidades de inventario y su estado.
type RegistryUseCase struct {
	txRunner TxRunner
	pallets  repository.PalletRepository
	log      *logger.Logger
}

// NewRegistryUseCase construye el caso de uso.
func NewRegistryUseCase(txRunner TxRunner, pallets repository.PalletRepository, log *logger.Logger) *RegistryUseCase {
	return &RegistryUseCase{txRunner: txRunner, pallets: pallets, log: log.Component("pallet_registry")}
}

// ListAvailable lista pallets disponibles; los filtros se combinan con AND.
func (uc *RegistryUseCase) ListAvailable(ctx context.Context, q dto.PalletFilterQuery) (*dto.PalletListResponse, error) {
	q.DefaultPage()
	filter := entity.PalletFilter{
		ProductCode: strings.TrimSpace(q.ProductCode),
		Description: strings.TrimSpace(q.Description),
		Lot:         strings.TrimSpace(q.Lot),
		OrderRef:    strings.TrimSpace(q.OrderRef),
		Unit:        strings.TrimSpace(q.Unit),
	}
	list, err := uc.pallets.ListAvailable(ctx, filter, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PalletResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toPalletResponse(p))
	}
	return &dto.PalletListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}, nil
}

// GetByID obtiene un pallet.
func (uc *RegistryUseCase) GetByID(ctx context.Context, id string) (*dto.PalletResponse, error) {
	p, err := uc.pallets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NewNotFoundError("pallet", id)
	}
	return toPalletResponse(p), nil
}

// CreateVirtual registra inventario aún no sincronizado desde producción (is_virtual=true, available).
func (uc *RegistryUseCase) CreateVirtual(ctx context.Context, in dto.CreateVirtualPalletRequest) (*dto.PalletResponse, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	if strings.TrimSpace(in.ProductCode) == "" {
		return nil, domain.NewValidationError("product_code", "es requerido")
	}
	if in.GrossWeight.IsNegative() || in.NetWeight.IsNegative() || in.Pieces < 0 {
		return nil, domain.NewValidationError("weight/pieces", "no pueden ser negativos")
	}
	now := time.Now()
	p := &entity.Pallet{
		ID:             uuid.New().String(),
		ProductCode:    strings.TrimSpace(in.ProductCode),
		Description:    in.Description,
		Quantity:       in.Quantity,
		Unit:           in.Unit,
		ProductionDate: in.ProductionDate,
		Lot:            in.Lot,
		SalesOrderRef:  in.SalesOrderRef,
		CustomerLot:    in.CustomerLot,
		GrossWeight:    in.GrossWeight,
		NetWeight:      in.NetWeight,
		Pieces:         in.Pieces,
		Status:         entity.PalletStatusAvailable,
		IsVirtual:      true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.pallets.Create(ctx, p); err != nil {
		return nil, err
	}
	uc.log.Info().Str("pallet_id", p.ID).Str("product_code", p.ProductCode).Msg("pallet virtual creado")
	return toPalletResponse(p), nil
}

// MarkShipped cambia en bloque el estado a shipped. Solo acepta pallets assigned que ya tienen
// registro de salida; no toca membresías.
func (uc *RegistryUseCase) MarkShipped(ctx context.Context, palletIDs []string) (*dto.BulkStatusResponse, error) {
	ids := lockOrder(palletIDs)
	if len(ids) == 0 {
		return nil, domain.NewValidationError("pallet_ids", "es requerido")
	}
	var n int64
	err := uc.txRunner.Run(ctx, func(uow UnitOfWork) error {
		for _, id := range ids {
			p, err := lockPallet(ctx, uow, id)
			if err != nil {
				return err
			}
			if p.Status != entity.PalletStatusAssigned {
				return domain.NewInvalidStateError("pallet", id, p.Status, "marcar como embarcado")
			}
			archived, err := uow.Shipped().ExistsForPallet(ctx, id)
			if err != nil {
				return err
			}
			if !archived {
				return domain.NewInvalidStateError("pallet", id, "sin registro de salida", "marcar como embarcado")
			}
		}
		var err error
		n, err = uow.Pallets().UpdateStatus(ctx, ids, entity.PalletStatusShipped)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("updated", n).Msg("pallets marcados como embarcados")
	return &dto.BulkStatusResponse{Updated: n}, nil
}

// Release regresa pallets a available y limpia la fecha de liberación.
// Un pallet que aún pertenece a una carga se quita con RemovePallet; aquí se rechaza toda la petición.
func (uc *RegistryUseCase) Release(ctx context.Context, palletIDs []string) (*dto.BulkStatusResponse, error) {
	ids := lockOrder(palletIDs)
	if len(ids) == 0 {
		return nil, domain.NewValidationError("pallet_ids", "es requerido")
	}
	var n int64
	err := uc.txRunner.Run(ctx, func(uow UnitOfWork) error {
		for _, id := range ids {
			p, err := lockPallet(ctx, uow, id)
			if err != nil {
				return err
			}
			member, err := uow.Memberships().ExistsForPallet(ctx, id)
			if err != nil {
				return err
			}
			if member {
				return domain.NewInvalidStateError("pallet", id, p.Status, "liberar un pallet con carga")
			}
		}
		var err error
		n, err = uow.Pallets().Release(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("updated", n).Msg("pallets liberados")
	return &dto.BulkStatusResponse{Updated: n}, nil
}

func lockPallet(ctx context.Context, uow UnitOfWork, id string) (*entity.Pallet, error) {
	p, err := uow.Pallets().GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NewNotFoundError("pallet", id)
	}
	return p, nil
}

// SyncProduced inserta o actualiza pallets reales confirmados por producción.
// Nunca cambia el estado de un pallet existente (asignado o embarcado sigue igual).
func (uc *RegistryUseCase) SyncProduced(ctx context.Context, in []dto.ProducedPalletInput) (*dto.SyncResult, error) {
	for i, p := range in {
		if strings.TrimSpace(p.ID) == "" {
			return nil, domain.NewValidationError("id", "requerido en la fila "+strconv.Itoa(i+1))
		}
		if !p.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.NewValidationError("quantity", "debe ser mayor que cero (pallet "+p.ID+")")
		}
	}
	res := &dto.SyncResult{}
	err := uc.txRunner.Run(ctx, func(uow UnitOfWork) error {
		res.Created, res.Updated = 0, 0
		now := time.Now()
		for _, src := range in {
			p := &entity.Pallet{
				ID:             strings.TrimSpace(src.ID),
				ProductCode:    src.ProductCode,
				Description:    src.Description,
				Quantity:       src.Quantity,
				Unit:           src.Unit,
				ProductionDate: src.ProductionDate,
				Lot:            src.Lot,
				SalesOrderRef:  src.SalesOrderRef,
				CustomerLot:    src.CustomerLot,
				GrossWeight:    src.GrossWeight,
				NetWeight:      src.NetWeight,
				Pieces:         src.Pieces,
				Status:         entity.PalletStatusAvailable,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			created, err := uow.Pallets().UpsertProduced(ctx, p)
			if err != nil {
				return err
			}
			if created {
				res.Created++
			} else {
				res.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int("created", res.Created).Int("updated", res.Updated).Msg("sincronización de producción aplicada")
	return res, nil
}
