package shipping_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Despachos-api/internal/domain"
	"github.com/jhoicas/Despachos-api/internal/domain/entity"
	"github.com/jhoicas/Despachos-api/internal/domain/shipping"
)

func membership(palletID, dest string, hold bool) *entity.LoadMembership {
	return &entity.LoadMembership{ID: "m-" + palletID, PalletID: palletID, Destination: dest, IsOnHold: hold}
}

func TestEvaluateDeparture_CargaVacia(t *testing.T) {
	v := shipping.EvaluateDeparture(nil)
	require.Len(t, v, 1)
	assert.Equal(t, domain.ViolationEmptyLoad, v[0].Code)
}

func TestEvaluateDeparture_TodoListo(t *testing.T) {
	ms := []*entity.LoadMembership{
		membership("p1", "salinas", false),
		membership("p2", "Salinas ", false),
	}
	assert.Empty(t, shipping.EvaluateDeparture(ms))
	assert.NoError(t, shipping.CheckDeparture(ms))
}

// Todas las violaciones se reportan juntas: "2 pallets sin destino, 1 pallet en retención".
func TestEvaluateDeparture_ReportaTodasLasViolaciones(t *testing.T) {
	ms := []*entity.LoadMembership{
		membership("p1", entity.DestinationTBD, false),
		membership("p2", entity.DestinationTBD, true),
		membership("p3", "", false),
		membership("p4", "salinas", false),
	}
	v := shipping.EvaluateDeparture(ms)
	require.Len(t, v, 2)

	assert.Equal(t, domain.ViolationMissingDest, v[0].Code)
	assert.ElementsMatch(t, []string{"p1", "p3"}, v[0].PalletIDs)
	assert.Equal(t, "2 pallets sin destino", v[0].Message)

	assert.Equal(t, domain.ViolationPalletOnHold, v[1].Code)
	assert.Equal(t, []string{"p2"}, v[1].PalletIDs)
	assert.Equal(t, "1 pallet en retención", v[1].Message)

	err := shipping.CheckDeparture(ms)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
	var pf *domain.PreconditionFailedError
	require.True(t, errors.As(err, &pf))
	assert.Len(t, pf.Violations, 2)
	assert.Contains(t, err.Error(), "2 pallets sin destino, 1 pallet en retención")
}

// Un pallet retenido no exige destino, pero sí bloquea la salida.
func TestEvaluateDeparture_RetenidoSinDestinoSoloCuentaComoRetenido(t *testing.T) {
	ms := []*entity.LoadMembership{membership("p1", entity.DestinationTBD, true)}
	v := shipping.EvaluateDeparture(ms)
	require.Len(t, v, 1)
	assert.Equal(t, domain.ViolationPalletOnHold, v[0].Code)
}

func TestCheckDelivery(t *testing.T) {
	ms := []*entity.LoadMembership{
		membership("p1", "salinas", false),
		membership("p2", "monterrey", false),
		membership("p3", "salinas", false),
	}
	day := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, []string{"monterrey", "salinas"}, shipping.DeliveryDestinations(ms))

	err := shipping.CheckDelivery(ms, map[string]time.Time{"SALINAS": day})
	require.Error(t, err)
	var pf *domain.PreconditionFailedError
	require.True(t, errors.As(err, &pf))
	require.Len(t, pf.Violations, 1)
	assert.Equal(t, domain.ViolationMissingDelivery, pf.Violations[0].Code)
	assert.Equal(t, []string{"p2"}, pf.Violations[0].PalletIDs)

	assert.NoError(t, shipping.CheckDelivery(ms, map[string]time.Time{"salinas": day, "monterrey": day}))
}
