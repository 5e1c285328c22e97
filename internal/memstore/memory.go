// Package memstore provides an in-memory persistence backend used by
// tests and by local development without SQLite.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tradebook/internal/core"
	"tradebook/internal/journal"
)

const (
	syncStatusPending = "pending"
	syncStatusSynced  = "synced"
	syncStatusError   = "error"
)

type tradeRow struct {
	record     core.TradeRecord
	seq        int
	syncStatus string
	syncError  string
}

// Store keeps everything in process memory behind one RWMutex. It
// implements the full journal store surface plus the worker operations.
type Store struct {
	mu        sync.RWMutex
	trades    map[string]*tradeRow
	setups    []core.Setup
	pairs     []core.TradingPair
	summaries map[string]core.MonthSummary
	nextSeq   int
}

func New() *Store {
	return &Store{
		trades:    make(map[string]*tradeRow),
		summaries: make(map[string]core.MonthSummary),
	}
}

func (s *Store) InsertTrade(_ context.Context, rec core.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.trades[rec.ID]; exists {
		return fmt.Errorf("trade %s already exists", rec.ID)
	}
	s.nextSeq++
	s.trades[rec.ID] = &tradeRow{record: rec, seq: s.nextSeq, syncStatus: syncStatusPending}
	return nil
}

func (s *Store) GetTrade(_ context.Context, id string) (core.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.trades[id]
	if !ok {
		return core.TradeRecord{}, journal.ErrNotFound
	}
	return row.record, nil
}

func (s *Store) ListTradesByMonth(_ context.Context, month string) ([]core.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.monthRowsLocked(month)
	out := make([]core.TradeRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.record)
	}
	return out, nil
}

func (s *Store) monthRowsLocked(month string) []*tradeRow {
	var rows []*tradeRow
	for _, row := range s.trades {
		if row.record.Month == month {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].record.Date != rows[j].record.Date {
			return rows[i].record.Date < rows[j].record.Date
		}
		return rows[i].seq < rows[j].seq
	})
	return rows
}

func (s *Store) InsertSetup(_ context.Context, setup core.Setup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setups = append(s.setups, setup)
	return nil
}

func (s *Store) ListSetups(_ context.Context) ([]core.Setup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Setup, len(s.setups))
	copy(out, s.setups)
	return out, nil
}

func (s *Store) InsertPair(_ context.Context, pair core.TradingPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pairs {
		if p.Symbol == pair.Symbol {
			return journal.ErrDuplicateSymbol
		}
	}
	s.pairs = append(s.pairs, pair)
	return nil
}

func (s *Store) ListPairs(_ context.Context) ([]core.TradingPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.TradingPair, len(s.pairs))
	copy(out, s.pairs)
	return out, nil
}

func (s *Store) UpdatePair(_ context.Context, pair core.TradingPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pairs {
		if p.Symbol == pair.Symbol && p.ID != pair.ID {
			return journal.ErrDuplicateSymbol
		}
	}
	for i, p := range s.pairs {
		if p.ID == pair.ID {
			s.pairs[i] = pair
			return nil
		}
	}
	return journal.ErrNotFound
}

func (s *Store) DeletePair(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.pairs {
		if p.ID == id {
			s.pairs = append(s.pairs[:i], s.pairs[i+1:]...)
			return nil
		}
	}
	return journal.ErrNotFound
}

func (s *Store) GetMonthlySummary(_ context.Context, month string) (core.MonthSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum, ok := s.summaries[month]
	if !ok {
		return core.MonthSummary{}, journal.ErrNotFound
	}
	return sum, nil
}

func (s *Store) UpsertMonthlySummary(_ context.Context, sum core.MonthSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[sum.Month] = sum
	return nil
}

func (s *Store) ListSummaryMonths(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	months := make([]string, 0, len(s.summaries))
	for m := range s.summaries {
		months = append(months, m)
	}
	sort.Strings(months)
	return months, nil
}

func (s *Store) GetPendingSyncTrades(_ context.Context, limit int) ([]core.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []*tradeRow
	for _, row := range s.trades {
		if row.syncStatus == syncStatusPending {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]core.TradeRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.record)
	}
	return out, nil
}

func (s *Store) MarkTradeSynced(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.trades[id]
	if !ok {
		return journal.ErrNotFound
	}
	row.syncStatus = syncStatusSynced
	row.syncError = ""
	return nil
}

func (s *Store) MarkTradeSyncError(_ context.Context, id string, cause string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.trades[id]
	if !ok {
		return journal.ErrNotFound
	}
	row.syncStatus = syncStatusError
	row.syncError = cause
	return nil
}

func (s *Store) Close() error {
	return nil
}
