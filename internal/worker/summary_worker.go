package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tradebook/internal/amqp"
	"tradebook/internal/backend"
	"tradebook/internal/core"
	"tradebook/internal/journal"
)

// TradeExporter pushes a single trade to an external sheet. The Google
// Sheets client implements it; nil disables export.
type TradeExporter interface {
	AppendTrade(ctx context.Context, rec core.TradeRecord) (string, error)
}

// SummaryWorker keeps the materialized monthly summaries in step with the
// day-level trade rows and exports trades to the configured sheet.
type SummaryWorker struct {
	store     backend.Store
	exporter  TradeExporter
	batchSize int
}

func NewSummaryWorker(store backend.Store, exporter TradeExporter, batchSize int) *SummaryWorker {
	return &SummaryWorker{
		store:     store,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleTradeSync processes a single trade sync message from AMQP
func (w *SummaryWorker) HandleTradeSync(ctx context.Context, msg *amqp.TradeSyncMessage) error {
	slog.InfoContext(ctx, "Processing trade sync message",
		"trade_id", msg.TradeID,
		"month", msg.Month)

	if _, err := w.RefreshMonthlySummary(ctx, msg.Month); err != nil {
		return fmt.Errorf("refresh monthly summary: %w", err)
	}

	rec, err := w.store.GetTrade(ctx, msg.TradeID)
	if errors.Is(err, journal.ErrNotFound) {
		// The trade vanished between publish and consume. Nothing left
		// to export, don't requeue.
		slog.WarnContext(ctx, "Trade from sync message no longer exists", "trade_id", msg.TradeID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get trade from storage: %w", err)
	}

	if err := w.exportTrade(ctx, rec); err != nil {
		return fmt.Errorf("export trade: %w", err)
	}
	return nil
}

// RefreshMonthlySummary recomputes a month's summary from its day rows
// and writes the materialized row.
func (w *SummaryWorker) RefreshMonthlySummary(ctx context.Context, month string) (core.MonthSummary, error) {
	records, err := w.store.ListTradesByMonth(ctx, month)
	if err != nil {
		return core.MonthSummary{}, fmt.Errorf("list trades: %w", err)
	}

	agg, err := core.AggregateMonth(month, records)
	if err != nil {
		return core.MonthSummary{}, fmt.Errorf("aggregate month %s: %w", month, err)
	}

	if err := w.store.UpsertMonthlySummary(ctx, agg.Summary); err != nil {
		return core.MonthSummary{}, fmt.Errorf("upsert summary: %w", err)
	}
	return agg.Summary, nil
}

// ProcessPendingTrades picks up trades that never made it through AMQP.
// This is a backup mechanism in case messages are lost.
func (w *SummaryWorker) ProcessPendingTrades(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck drains a larger pending backlog at worker startup,
// recovering from missed messages or worker downtime.
func (w *SummaryWorker) StartupSyncCheck(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize*5)
}

func (w *SummaryWorker) processPending(ctx context.Context, limit int) error {
	pending, err := w.store.GetPendingSyncTrades(ctx, limit)
	if err != nil {
		return fmt.Errorf("get pending trades: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending trades", "count", len(pending))

	// Refresh each affected month once, not per trade.
	months := make(map[string]bool)
	for _, rec := range pending {
		months[rec.Month] = true
	}
	for month := range months {
		if _, err := w.RefreshMonthlySummary(ctx, month); err != nil {
			slog.ErrorContext(ctx, "Failed to refresh monthly summary", "month", month, "error", err)
		}
	}

	successCount := 0
	errorCount := 0
	for _, rec := range pending {
		if err := w.exportTrade(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to export trade", "trade_id", rec.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Pending trade processing completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)
	return nil
}

// ReconcileSummaries recomputes every materialized month and rewrites
// rows that drifted from their day-level trades. Returns the number of
// months corrected.
func (w *SummaryWorker) ReconcileSummaries(ctx context.Context) (int, error) {
	months, err := w.store.ListSummaryMonths(ctx)
	if err != nil {
		return 0, fmt.Errorf("list summary months: %w", err)
	}

	corrected := 0
	for _, month := range months {
		stored, err := w.store.GetMonthlySummary(ctx, month)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to read stored summary", "month", month, "error", err)
			continue
		}

		records, err := w.store.ListTradesByMonth(ctx, month)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to list trades for reconciliation", "month", month, "error", err)
			continue
		}
		agg, err := core.AggregateMonth(month, records)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to aggregate month for reconciliation", "month", month, "error", err)
			continue
		}

		if core.SummariesConsistent(stored, agg.Summary) {
			continue
		}

		slog.WarnContext(ctx, "Monthly summary drifted from trade rows, rewriting",
			"month", month,
			"stored_net", stored.Net,
			"computed_net", agg.Summary.Net)
		if err := w.store.UpsertMonthlySummary(ctx, agg.Summary); err != nil {
			slog.ErrorContext(ctx, "Failed to rewrite drifted summary", "month", month, "error", err)
			continue
		}
		corrected++
	}

	slog.InfoContext(ctx, "Summary reconciliation completed",
		"months", len(months),
		"corrected", corrected)
	return corrected, nil
}

func (w *SummaryWorker) exportTrade(ctx context.Context, rec core.TradeRecord) error {
	if w.exporter == nil {
		// Export disabled, the summary refresh is all this trade needs.
		if err := w.store.MarkTradeSynced(ctx, rec.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to mark trade synced", "trade_id", rec.ID, "error", err)
		}
		return nil
	}

	ref, err := w.exporter.AppendTrade(ctx, rec)
	if err != nil {
		if markErr := w.store.MarkTradeSyncError(ctx, rec.ID, err.Error()); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "trade_id", rec.ID, "error", markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.store.MarkTradeSynced(ctx, rec.ID); err != nil {
		// The export succeeded, keep going.
		slog.ErrorContext(ctx, "Failed to mark trade synced", "trade_id", rec.ID, "error", err)
	}

	slog.InfoContext(ctx, "Trade exported",
		"trade_id", rec.ID,
		"sheet_ref", ref,
		"trade_date", rec.Date,
		"net", rec.Net)
	return nil
}
