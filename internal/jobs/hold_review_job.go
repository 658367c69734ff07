// Package jobs tareas programadas con github.com/robfig/cron/v3.
//
// HoldReviewJob recorre los pallets retenidos cuya fecha de reconsideración ya pasó y los
// reporta en el log para que planta decida si embarcarlos. Es de solo lectura: nunca cambia
// la disposición.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
	"github.com/jhoicas/Despachos-api/pkg/logger"
)

// heldLister lo implementa *logistics.DispositionUseCase.
type heldLister interface {
	ListHeldDue(ctx context.Context, asOf time.Time) ([]dto.HeldMembershipResponse, error)
}

// HoldReviewJob revisión periódica de retenciones vencidas.
type HoldReviewJob struct {
	lister  heldLister
	spec    string
	cron    *cron.Cron
	log     *logger.Logger
	now     func() time.Time
	timeout time.Duration
}

// NewHoldReviewJob crea el job con una expresión cron de 5 campos (ej. "0 7 * * *").
func NewHoldReviewJob(lister heldLister, spec string, log *logger.Logger) *HoldReviewJob {
	return &HoldReviewJob{
		lister:  lister,
		spec:    spec,
		cron:    cron.New(),
		log:     log.Component("hold_review_job"),
		now:     time.Now,
		timeout: time.Minute,
	}
}

// Start programa el job y arranca el planificador.
func (j *HoldReviewJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, func() { _, _ = j.RunOnce(context.Background()) }); err != nil {
		return err
	}
	j.cron.Start()
	j.log.Info().Str("spec", j.spec).Msg("revisión de retenciones programada")
	return nil
}

// Stop detiene el planificador y espera a que termine una ejecución en curso.
func (j *HoldReviewJob) Stop() {
	<-j.cron.Stop().Done()
	j.log.Info().Msg("revisión de retenciones detenida")
}

// RunOnce ejecuta una revisión y devuelve cuántos pallets están vencidos.
func (j *HoldReviewJob) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	asOf := j.now()
	due, err := j.lister.ListHeldDue(ctx, asOf)
	if err != nil {
		j.log.Error().Err(err).Msg("revisión de retenciones falló")
		return 0, err
	}
	for _, h := range due {
		j.log.Warn().
			Str("load_id", h.LoadID).
			Str("load_number", h.LoadNumber).
			Str("pallet_id", h.PalletID).
			Str("membership_id", h.MembershipID).
			Time("release_date", h.ReleaseDate).
			Msg("pallet retenido con fecha de reconsideración vencida")
	}
	j.log.Info().Int("due", len(due)).Time("as_of", asOf).Msg("revisión de retenciones completada")
	return len(due), nil
}
