package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Reconciler is the subset of the summary worker the scheduler drives.
type Reconciler interface {
	ReconcileSummaries(ctx context.Context) (int, error)
	ProcessPendingTrades(ctx context.Context) error
}

// Scheduler runs the periodic reconciliation job on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	worker Reconciler
	ctx    context.Context
}

func New(ctx context.Context, worker Reconciler) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		worker: worker,
		ctx:    ctx,
	}
}

// Register wires the reconciliation task to the given standard cron
// expression, for example "0 2 * * *" for nightly at 02:00.
func (s *Scheduler) Register(reconcileCron string) error {
	if _, err := s.cron.AddFunc(reconcileCron, s.reconcileTask); err != nil {
		return fmt.Errorf("register reconcile task: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("Scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("Scheduler stopped")
}

// RunReconcileNow executes the reconciliation task immediately.
func (s *Scheduler) RunReconcileNow() {
	s.reconcileTask()
}

func (s *Scheduler) reconcileTask() {
	slog.InfoContext(s.ctx, "Running scheduled summary reconciliation")

	corrected, err := s.worker.ReconcileSummaries(s.ctx)
	if err != nil {
		slog.ErrorContext(s.ctx, "Scheduled reconciliation failed", "error", err)
		return
	}
	if corrected > 0 {
		slog.WarnContext(s.ctx, "Reconciliation corrected drifted summaries", "corrected", corrected)
	}

	if err := s.worker.ProcessPendingTrades(s.ctx); err != nil {
		slog.ErrorContext(s.ctx, "Pending trade sweep failed", "error", err)
	}
}
