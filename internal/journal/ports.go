package journal

import (
	"context"
	"errors"

	"tradebook/internal/core"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateSymbol = errors.New("symbol already exists")
)

// TradeStore persists journaled trade records.
type TradeStore interface {
	InsertTrade(ctx context.Context, rec core.TradeRecord) error
	GetTrade(ctx context.Context, id string) (core.TradeRecord, error)
	// ListTradesByMonth returns the month's records ordered by trade date,
	// then insertion order within a date.
	ListTradesByMonth(ctx context.Context, month string) ([]core.TradeRecord, error)
}

// SetupStore persists playbook setups.
type SetupStore interface {
	InsertSetup(ctx context.Context, s core.Setup) error
	ListSetups(ctx context.Context) ([]core.Setup, error)
}

// PairStore persists watchlist symbols.
type PairStore interface {
	InsertPair(ctx context.Context, p core.TradingPair) error
	ListPairs(ctx context.Context) ([]core.TradingPair, error)
	UpdatePair(ctx context.Context, p core.TradingPair) error
	DeletePair(ctx context.Context, id string) error
}

// SummaryReader exposes the materialized monthly summary rows the worker
// maintains. Implementations return ErrNotFound when no row exists.
type SummaryReader interface {
	GetMonthlySummary(ctx context.Context, month string) (core.MonthSummary, error)
}

// Store is the full persistence surface the journal service needs.
type Store interface {
	TradeStore
	SetupStore
	PairStore
	SummaryReader
	Close() error
}

// SyncPublisher fans a newly written trade out to the background worker.
type SyncPublisher interface {
	PublishTradeSync(ctx context.Context, tradeID, month string) error
}
