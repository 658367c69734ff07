package logistics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
	"github.com/jhoicas/Despachos-api/internal/domain/entity"
	"github.com/jhoicas/Despachos-api/pkg/logger"
)

var (
	admin    = dto.Actor{UserID: "u-admin", Role: "admin"}
	customer = dto.Actor{UserID: "u-cliente", Role: "cliente"}
)

type harness struct {
	store       *memStore
	storage     *memStorage
	registry    *RegistryUseCase
	assembly    *AssemblyUseCase
	workflow    *WorkflowUseCase
	disposition *DispositionUseCase
	manifest    *ManifestUseCase
}

func newHarness(t *testing.T, destinations ...string) *harness {
	t.Helper()
	store := newMemStore()
	storage := newMemStorage()
	log := logger.Nop()
	return &harness{
		store:       store,
		storage:     storage,
		registry:    NewRegistryUseCase(store, store.palletRepo(), log),
		assembly:    NewAssemblyUseCase(store, store.loadRepo(), store.membershipRepo(), store.releaseRepo(), log),
		workflow:    NewWorkflowUseCase(store, store.loadRepo(), store.membershipRepo(), store.releaseRepo(), storage, log),
		disposition: NewDispositionUseCase(store, store.membershipRepo(), storage, destinations, log),
		manifest: NewManifestUseCase(store.loadRepo(), store.membershipRepo(), store.shippedRepo(), store.orderRepo(), log,
			&stubRenderer{format: dto.ManifestFormatCSV}),
	}
}

// seedPallets crea n pallets disponibles P-1..P-n.
func (h *harness) seedPallets(n int) []string {
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("P-%d", i)
		h.store.seedPallet(entity.Pallet{
			ID:          id,
			ProductCode: "SKU-" + fmt.Sprint(i),
			Description: "Tortilla de harina",
			Quantity:    decimal.NewFromInt(int64(100 * i)),
			Unit:        "kg",
			Lot:         fmt.Sprintf("LOT-%d", i),
			CustomerLot: fmt.Sprintf("CL-%d", i),
			GrossWeight: decimal.NewFromFloat(520.5),
			NetWeight:   decimal.NewFromInt(500),
			Pieces:      240,
			Status:      entity.PalletStatusAvailable,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		})
		ids = append(ids, id)
	}
	return ids
}

// newLoadWith crea una carga y le agrega los pallets.
func (h *harness) newLoadWith(t *testing.T, number string, palletIDs ...string) *dto.LoadResponse {
	t.Helper()
	ctx := context.Background()
	load, err := h.assembly.CreateLoad(ctx, dto.CreateLoadRequest{LoadNumber: number, ShippingDate: "2025-01-10"})
	require.NoError(t, err)
	if len(palletIDs) > 0 {
		res, err := h.assembly.AddPallets(ctx, load.ID, palletIDs)
		require.NoError(t, err)
		for _, r := range res.Results {
			require.True(t, r.Added, r.Error)
		}
	}
	return load
}

// membershipFor busca la membresía del pallet en el estado confirmado.
func (h *harness) membershipFor(t *testing.T, palletID string) entity.LoadMembership {
	t.Helper()
	for _, m := range h.store.snapshot().memberships {
		if m.PalletID == palletID {
			return m
		}
	}
	t.Fatalf("pallet %s sin membresía", palletID)
	return entity.LoadMembership{}
}

func (h *harness) ship(t *testing.T, loadID, palletID, dest string) {
	t.Helper()
	m := h.membershipFor(t, palletID)
	_, err := h.disposition.SetDisposition(context.Background(), admin, loadID, m.ID,
		dto.DispositionInput{Action: dto.DispositionShip, Destination: dest})
	require.NoError(t, err)
}

type stubRenderer struct {
	format string
	got    *dto.Manifest
}

func (r *stubRenderer) Format() string { return r.format }

func (r *stubRenderer) Render(ctx context.Context, m *dto.Manifest) (*dto.ManifestExport, error) {
	r.got = m
	return &dto.ManifestExport{Filename: m.LoadNumber + "." + r.format, Body: []byte(m.LoadNumber)}, nil
}
