package logistics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
	"github.com/jhoicas/Despachos-api/internal/domain"
	"github.com/jhoicas/Despachos-api/internal/domain/entity"
)

func TestSendForRelease_CargaVacia(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	load := h.newLoadWith(t, "L-100")

	_, err := h.workflow.SendForRelease(ctx, admin, load.ID)
	var pf *domain.PreconditionFailedError
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, domain.ViolationNoPallets, pf.Violations[0].Code)
	assert.Empty(t, h.store.snapshot().releases)
}

func TestSendForRelease_SoloAdmin(t *testing.T) {
	h := newHarness(t)
	ids := h.seedPallets(1)
	load := h.newLoadWith(t, "L-100", ids...)

	_, err := h.workflow.SendForRelease(context.Background(), customer, load.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRespond_ClienteApruebaConDocumento(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	ids := h.seedPallets(1)
	load := h.newLoadWith(t, "L-100", ids...)
	_, err := h.workflow.SendForRelease(ctx, admin, load.ID)
	require.NoError(t, err)

	out, err := h.workflow.Respond(ctx, customer, load.ID, dto.RespondReleaseInput{
		Decision:      dto.DecisionApprove,
		ReleaseNumber: "LIB-77",
		Notes:         "ok para salir",
		Document:      &dto.DocumentUpload{Filename: "autorizacion.pdf", Content: strings.NewReader("%PDF")},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.LoadStatusApproved, out.Load.Status)
	assert.Equal(t, "LIB-77", out.Load.ReleaseNumber)
	require.NotNil(t, out.ReleaseRequest)
	assert.Equal(t, entity.ReleaseStatusApproved, out.ReleaseRequest.Status)
	assert.NotNil(t, out.ReleaseRequest.RespondedAt)
	assert.Equal(t, "ok para salir", out.ReleaseRequest.CustomerNotes)
	assert.NotEmpty(t, out.ReleaseRequest.ReleaseDocument)
	assert.Equal(t, 1, h.storage.count())

	// Ya respondida: el cliente no puede volver a responder.
	_, err = h.workflow.Respond(ctx, customer, load.ID, dto.RespondReleaseInput{Decision: dto.DecisionHold})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRespond_RetencionYLuegoAprobacion(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	ids := h.seedPallets(1)
	load := h.newLoadWith(t, "L-100", ids...)
	_, err := h.workflow.SendForRelease(ctx, admin, load.ID)
	require.NoError(t, err)

	out, err := h.workflow.Transition(ctx, customer, load.ID, dto.TransitionRequest{To: entity.LoadStatusOnHold})
	require.NoError(t, err)
	assert.Equal(t, entity.LoadStatusOnHold, out.Load.Status)
	assert.Equal(t, entity.ReleaseStatusOnHold, out.ReleaseRequest.Status)

	// on_hold → in_transit no existe.
	_, err = h.workflow.Depart(ctx, admin, load.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	out, err = h.workflow.Transition(ctx, admin, load.ID, dto.TransitionRequest{To: entity.LoadStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, entity.LoadStatusApproved, out.Load.Status)
}

func TestRespond_SinSolicitud(t *testing.T) {
	h := newHarness(t)
	ids := h.seedPallets(1)
	load := h.newLoadWith(t, "L-100", ids...)

	_, err := h.workflow.Respond(context.Background(), admin, load.ID, dto.RespondReleaseInput{Decision: dto.DecisionApprove})
	var pf *domain.PreconditionFailedError
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, domain.ViolationNoReleaseRequest, pf.Violations[0].Code)
}

func TestRespond_FalloDeTransaccionBorraDocumento(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	ids := h.seedPallets(1)
	load := h.newLoadWith(t, "L-100", ids...)
	_, err := h.workflow.SendForRelease(ctx, admin, load.ID)
	require.NoError(t, err)

	h.store.fail = errCommit
	_, err = h.workflow.Respond(ctx, customer, load.ID, dto.RespondReleaseInput{
		Decision: dto.DecisionApprove,
		Document: &dto.DocumentUpload{Filename: "a.pdf", Content: strings.NewReader("x")},
	})
	assert.ErrorIs(t, err, errCommit)
	assert.Zero(t, h.storage.count())
	assert.Equal(t, entity.LoadStatusPendingRelease, h.store.snapshot().loads[load.ID].Status)
}

func TestDepart_ReportaTodasLasViolaciones(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	ids := h.seedPallets(3)
	load := h.newLoadWith(t, "L-100", ids...)
	_, err := h.workflow.SendForRelease(ctx, admin, load.ID)
	require.NoError(t, err)
	m := h.membershipFor(t, ids[0])
	_, err = h.disposition.SetDisposition(ctx, admin, load.ID, m.ID, dto.DispositionInput{Action: dto.DispositionHold})
	require.NoError(t, err)

	preview, err := h.workflow.Readiness(ctx, load.ID)
	require.NoError(t, err)
	assert.False(t, preview.Ready)

	_, err = h.workflow.Transition(ctx, admin, load.ID, dto.TransitionRequest{To: entity.LoadStatusInTransit})
	var pf *domain.PreconditionFailedError
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, preview.Violations, pf.Violations, "la vista previa coincide con la transición real")
	require.Len(t, pf.Violations, 2)
	assert.Equal(t, domain.ViolationMissingDest, pf.Violations[0].Code)
	assert.ElementsMatch(t, []string{ids[1], ids[2]}, pf.Violations[0].PalletIDs)
	assert.Equal(t, domain.ViolationPalletOnHold, pf.Violations[1].Code)
	assert.Contains(t, err.Error(), "2 pallets sin destino")
}

func TestConfirmDelivery(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	ids := h.seedPallets(3)
	load := h.newLoadWith(t, "L-100", ids...)
	_, err := h.workflow.SendForRelease(ctx, admin, load.ID)
	require.NoError(t, err)
	h.ship(t, load.ID, ids[0], "salinas")
	h.ship(t, load.ID, ids[1], "Monterrey")
	h.ship(t, load.ID, ids[2], "salinas")
	_, err = h.workflow.Depart(ctx, admin, load.ID)
	require.NoError(t, err)
	archived := h.store.snapshot().shipped

	// Falta la fecha de monterrey.
	_, err = h.workflow.Transition(ctx, admin, load.ID, dto.TransitionRequest{
		To:            entity.LoadStatusDelivered,
		DeliveryDates: map[string]string{"salinas": "2025-01-12"},
	})
	var pf *domain.PreconditionFailedError
	require.ErrorAs(t, err, &pf)
	require.Len(t, pf.Violations, 1)
	assert.Equal(t, []string{ids[1]}, pf.Violations[0].PalletIDs)
	assert.Nil(t, h.store.snapshot().shipped[0].DeliveryDate, "nada se persiste si falla")

	_, err = h.workflow.Transition(ctx, admin, load.ID, dto.TransitionRequest{
		To:            entity.LoadStatusDelivered,
		DeliveryDates: map[string]string{"salinas": "12/01/2025"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := h.workflow.Transition(ctx, admin, load.ID, dto.TransitionRequest{
		To:            entity.LoadStatusDelivered,
		DeliveryDates: map[string]string{"SALINAS": "2025-01-12", "monterrey": "2025-01-13"},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.LoadStatusDelivered, out.Load.Status)
	assert.Equal(t, int64(3), out.ShippedPallets)

	st := h.store.snapshot()
	for _, id := range ids {
		assert.Equal(t, entity.PalletStatusShipped, st.pallets[id].Status)
	}
	for i, rec := range st.shipped {
		require.NotNil(t, rec.DeliveryDate)
		// Solo cambia la fecha de entrega; el resto de la fotografía es inmutable.
		rec.DeliveryDate = nil
		assert.Equal(t, archived[i], rec)
	}
	m := h.membershipFor(t, ids[1])
	assert.Equal(t, time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), *m.DeliveryDate)
}

func TestTransition_EstadoDesconocidoOInvalido(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	ids := h.seedPallets(1)
	load := h.newLoadWith(t, "L-100", ids...)

	_, err := h.workflow.Transition(ctx, admin, load.ID, dto.TransitionRequest{To: "volando"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = h.workflow.Transition(ctx, admin, load.ID, dto.TransitionRequest{To: entity.LoadStatusAssembling})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = h.workflow.Transition(ctx, admin, load.ID, dto.TransitionRequest{To: entity.LoadStatusDelivered})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestGetReleaseRequest(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	ids := h.seedPallets(1)
	load := h.newLoadWith(t, "L-100", ids...)

	_, err := h.workflow.GetReleaseRequest(ctx, load.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.workflow.SendForRelease(ctx, admin, load.ID)
	require.NoError(t, err)
	rr, err := h.workflow.GetReleaseRequest(ctx, load.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.UserID, rr.RequestedBy)
}
