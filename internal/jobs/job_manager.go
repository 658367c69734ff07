package jobs

import (
	"fmt"

	"github.com/jhoicas/Despachos-api/pkg/config"
	"github.com/jhoicas/Despachos-api/pkg/logger"
)

// JobManager arranca y detiene los jobs habilitados por configuración.
type JobManager struct {
	holdReview *HoldReviewJob
}

// NewJobManager crea los jobs. HOLD_REVIEW_CRON vacío deshabilita la revisión de retenciones.
func NewJobManager(cfg config.JobsConfig, held heldLister, log *logger.Logger) *JobManager {
	jm := &JobManager{}
	if cfg.HoldReviewCron != "" {
		jm.holdReview = NewHoldReviewJob(held, cfg.HoldReviewCron, log)
	}
	return jm
}

// StartAll arranca los jobs habilitados.
func (jm *JobManager) StartAll() error {
	if jm.holdReview != nil {
		if err := jm.holdReview.Start(); err != nil {
			return fmt.Errorf("iniciar revisión de retenciones: %w", err)
		}
	}
	return nil
}

// StopAll detiene los jobs en curso.
func (jm *JobManager) StopAll() {
	if jm.holdReview != nil {
		jm.holdReview.Stop()
	}
}
