package application

import (
	"context"

	"treats/domain/interfaces"
	"treats/infrastructure/observability"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// ReconciliationWorker runs the reconciliation pass on a cron schedule,
// keeping the cached balance columns honest against the ledger
type ReconciliationWorker struct {
	service  interfaces.ReconciliationService
	schedule string
	cron     *cron.Cron
}

// NewReconciliationWorker creates a new reconciliation worker
func NewReconciliationWorker(service interfaces.ReconciliationService, schedule string) *ReconciliationWorker {
	return &ReconciliationWorker{
		service:  service,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start schedules the reconciliation pass. The returned stop function blocks
// until a running pass finishes.
func (w *ReconciliationWorker) Start(ctx context.Context) (func(), error) {
	_, err := w.cron.AddFunc(w.schedule, func() {
		w.runOnce(ctx)
	})
	if err != nil {
		return nil, err
	}

	w.cron.Start()
	log.WithField("schedule", w.schedule).Info("Reconciliation worker started")

	return func() {
		stopCtx := w.cron.Stop()
		<-stopCtx.Done()
		log.Info("Reconciliation worker stopped")
	}, nil
}

func (w *ReconciliationWorker) runOnce(ctx context.Context) {
	report, err := w.service.Reconcile(ctx)
	if err != nil {
		log.WithError(err).Error("Reconciliation pass failed")
		return
	}

	observability.ReconciliationDrift.Set(float64(report.Drifted))
	log.WithFields(log.Fields{
		"checked":  report.Checked,
		"drifted":  report.Drifted,
		"repaired": report.Repaired,
	}).Info("Reconciliation pass completed")
}
