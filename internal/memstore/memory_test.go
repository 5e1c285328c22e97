package memstore

import (
	"context"
	"errors"
	"testing"

	"tradebook/internal/core"
	"tradebook/internal/journal"
)

func TestTradeOrdering(t *testing.T) {
	s := New()
	ctx := context.Background()

	records := []core.TradeRecord{
		{ID: "b", Date: "2025-04-09", Month: "2025-04"},
		{ID: "a", Date: "2025-04-04", Month: "2025-04"},
		{ID: "c", Date: "2025-04-04", Month: "2025-04"},
		{ID: "other", Date: "2025-05-01", Month: "2025-05"},
	}
	for _, rec := range records {
		if err := s.InsertTrade(ctx, rec); err != nil {
			t.Fatalf("InsertTrade(%s): %v", rec.ID, err)
		}
	}

	got, err := s.ListTradesByMonth(ctx, "2025-04")
	if err != nil {
		t.Fatalf("ListTradesByMonth: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	// Date order first, insertion order within a date.
	if got[0].ID != "a" || got[1].ID != "c" || got[2].ID != "b" {
		t.Errorf("order = %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestSyncStateTransitions(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, id := range []string{"t1", "t2", "t3"} {
		if err := s.InsertTrade(ctx, core.TradeRecord{ID: id, Date: "2025-04-04", Month: "2025-04"}); err != nil {
			t.Fatalf("InsertTrade: %v", err)
		}
	}

	pending, err := s.GetPendingSyncTrades(ctx, 2)
	if err != nil {
		t.Fatalf("GetPendingSyncTrades: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != "t1" {
		t.Fatalf("pending = %+v", pending)
	}

	if err := s.MarkTradeSynced(ctx, "t1"); err != nil {
		t.Fatalf("MarkTradeSynced: %v", err)
	}
	if err := s.MarkTradeSyncError(ctx, "t2", "sheet unavailable"); err != nil {
		t.Fatalf("MarkTradeSyncError: %v", err)
	}

	pending, err = s.GetPendingSyncTrades(ctx, 0)
	if err != nil {
		t.Fatalf("GetPendingSyncTrades: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "t3" {
		t.Errorf("pending after marks = %+v", pending)
	}

	if err := s.MarkTradeSynced(ctx, "missing"); !errors.Is(err, journal.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.GetMonthlySummary(ctx, "2025-04"); !errors.Is(err, journal.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	sum := core.MonthSummary{Month: "2025-04", Net: 6213, TradeCount: 12, ActiveDays: 4}
	if err := s.UpsertMonthlySummary(ctx, sum); err != nil {
		t.Fatalf("UpsertMonthlySummary: %v", err)
	}
	got, err := s.GetMonthlySummary(ctx, "2025-04")
	if err != nil {
		t.Fatalf("GetMonthlySummary: %v", err)
	}
	if got != sum {
		t.Errorf("got %+v, want %+v", got, sum)
	}

	if err := s.UpsertMonthlySummary(ctx, core.MonthSummary{Month: "2025-03"}); err != nil {
		t.Fatalf("UpsertMonthlySummary: %v", err)
	}
	months, err := s.ListSummaryMonths(ctx)
	if err != nil {
		t.Fatalf("ListSummaryMonths: %v", err)
	}
	if len(months) != 2 || months[0] != "2025-03" || months[1] != "2025-04" {
		t.Errorf("months = %v", months)
	}
}
