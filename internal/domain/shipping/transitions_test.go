package shipping_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Despachos-api/internal/domain"
	"github.com/jhoicas/Despachos-api/internal/domain/entity"
	"github.com/jhoicas/Despachos-api/internal/domain/shipping"
)

func TestCanTransition_Permitidas(t *testing.T) {
	ok := [][2]string{
		{entity.LoadStatusAssembling, entity.LoadStatusPendingRelease},
		{entity.LoadStatusPendingRelease, entity.LoadStatusApproved},
		{entity.LoadStatusPendingRelease, entity.LoadStatusOnHold},
		{entity.LoadStatusPendingRelease, entity.LoadStatusInTransit},
		{entity.LoadStatusOnHold, entity.LoadStatusApproved},
		{entity.LoadStatusApproved, entity.LoadStatusInTransit},
		{entity.LoadStatusInTransit, entity.LoadStatusDelivered},
	}
	for _, tr := range ok {
		assert.NoError(t, shipping.CanTransition("L", tr[0], tr[1]), "%s → %s", tr[0], tr[1])
	}
}

func TestCanTransition_Rechazadas(t *testing.T) {
	bad := [][2]string{
		{entity.LoadStatusAssembling, entity.LoadStatusInTransit},
		{entity.LoadStatusAssembling, entity.LoadStatusApproved},
		{entity.LoadStatusOnHold, entity.LoadStatusInTransit},
		{entity.LoadStatusInTransit, entity.LoadStatusAssembling},
		{entity.LoadStatusDelivered, entity.LoadStatusInTransit},
		{entity.LoadStatusApproved, entity.LoadStatusPendingRelease},
	}
	for _, tr := range bad {
		err := shipping.CanTransition("L", tr[0], tr[1])
		assert.ErrorIs(t, err, domain.ErrInvalidState, "%s → %s", tr[0], tr[1])
	}
}

func TestCanTransition_EstadoDesconocido(t *testing.T) {
	err := shipping.CanTransition("L", entity.LoadStatusAssembling, "volando")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReleaseStatusFor(t *testing.T) {
	assert.Equal(t, entity.ReleaseStatusShipped, shipping.ReleaseStatusFor(entity.LoadStatusInTransit))
	assert.Equal(t, entity.ReleaseStatusOnHold, shipping.ReleaseStatusFor(entity.LoadStatusOnHold))
	assert.Equal(t, "", shipping.ReleaseStatusFor(entity.LoadStatusDelivered))
}
