package backend

import (
	"context"

	"tradebook/internal/core"
	"tradebook/internal/journal"
)

// Store is the full persistence surface shared by the API server and the
// sync worker: the journal store plus the summary and sync-state
// operations the worker maintains.
type Store interface {
	journal.Store

	UpsertMonthlySummary(ctx context.Context, sum core.MonthSummary) error
	ListSummaryMonths(ctx context.Context) ([]string, error)
	GetPendingSyncTrades(ctx context.Context, limit int) ([]core.TradeRecord, error)
	MarkTradeSynced(ctx context.Context, id string) error
	MarkTradeSyncError(ctx context.Context, id string, cause string) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the store instance and optional cleanup function
type Result struct {
	Store   Store
	Cleanup CleanupFunc
}

// Factory creates stores based on configuration
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for store creation
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string
}

// Type represents the kind of backing store
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
