package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tradebook/internal/core"
)

// Service orchestrates journal reads and writes across storage and AMQP
type Service struct {
	store     Store
	publisher SyncPublisher
}

func NewService(store Store, publisher SyncPublisher) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
	}
}

// MonthlyView is the aggregate payload the journal page renders from.
type MonthlyView struct {
	Month   string              `json:"month"`
	Summary core.MonthSummary   `json:"summary"`
	Days    []core.DayAggregate `json:"days"`
	Setups  []core.Setup        `json:"setups"`
	Pairs   []core.TradingPair  `json:"pairs"`
}

// CalendarView is the grid payload plus the single-day projections the
// narrow layout uses.
type CalendarView struct {
	Month     string             `json:"month"`
	Calendar  core.CalendarMonth `json:"calendar"`
	ActiveDay core.MobileDayCard `json:"activeDay"`
	WeekStart string             `json:"weekStart"`
	WeekEnd   string             `json:"weekEnd"`
}

// MonthlyJournal loads everything the journal page needs for a month.
// Trade rows, the stored summary, setups and pairs are fetched
// concurrently; the stored summary is only trusted when it agrees with
// the fold over the day rows.
func (s *Service) MonthlyJournal(ctx context.Context, month string) (*MonthlyView, error) {
	if _, _, err := core.MonthRange(month); err != nil {
		return nil, err
	}

	var (
		records []core.TradeRecord
		stored  core.MonthSummary
		setups  []core.Setup
		pairs   []core.TradingPair
		haveRow bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.store.ListTradesByMonth(gctx, month)
		if err != nil {
			return fmt.Errorf("list trades: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		row, err := s.store.GetMonthlySummary(gctx, month)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get monthly summary: %w", err)
		}
		stored = row
		haveRow = true
		return nil
	})
	g.Go(func() error {
		var err error
		setups, err = s.store.ListSetups(gctx)
		if err != nil {
			return fmt.Errorf("list setups: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		pairs, err = s.store.ListPairs(gctx)
		if err != nil {
			return fmt.Errorf("list pairs: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg, err := core.AggregateMonth(month, records)
	if err != nil {
		return nil, fmt.Errorf("aggregate month %s: %w", month, err)
	}

	summary := agg.Summary
	if haveRow {
		if core.SummariesConsistent(stored, agg.Summary) {
			summary = stored
		} else {
			slog.WarnContext(ctx, "Stored monthly summary diverges from day rows, serving local fold",
				"month", month,
				"stored_net", stored.Net,
				"local_net", agg.Summary.Net)
		}
	}

	view := &MonthlyView{
		Month:   month,
		Summary: summary,
		Setups:  setups,
		Pairs:   pairs,
	}
	for _, date := range agg.DatesInOrder() {
		view.Days = append(view.Days, *agg.Day(date))
	}
	return view, nil
}

// Calendar builds the grid for the month containing reference, plus the
// mobile card and active-week span for that exact day.
func (s *Service) Calendar(ctx context.Context, reference time.Time) (*CalendarView, error) {
	month := core.MonthKey(reference.UTC())

	var (
		records []core.TradeRecord
		setups  []core.Setup
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.store.ListTradesByMonth(gctx, month)
		if err != nil {
			return fmt.Errorf("list trades: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		setups, err = s.store.ListSetups(gctx)
		if err != nil {
			return fmt.Errorf("list setups: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg, err := core.AggregateMonth(month, records)
	if err != nil {
		return nil, fmt.Errorf("aggregate month %s: %w", month, err)
	}

	names := setupNames(setups)
	weekStart, weekEnd := core.ActiveWeek(reference)
	return &CalendarView{
		Month:     month,
		Calendar:  core.BuildCalendar(reference, agg.Days, names),
		ActiveDay: core.MobileDay(reference, agg.Days, names),
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
	}, nil
}

// AddTrade normalizes, validates and persists a trade record, then
// publishes a sync message so the worker refreshes the month's summary.
// Publish failures are logged, not surfaced; the local write already
// succeeded.
func (s *Service) AddTrade(ctx context.Context, rec core.TradeRecord) (core.TradeRecord, error) {
	rec.ID = uuid.NewString()
	rec.Pair = core.NormalizeSymbol(rec.Pair)
	rec.Month = core.MonthKeyOf(rec.Date)
	for i := range rec.Attachments {
		if rec.Attachments[i].ID == "" {
			rec.Attachments[i].ID = uuid.NewString()
		}
		rec.Attachments[i].SortOrder = i
	}
	if err := rec.Validate(); err != nil {
		return core.TradeRecord{}, err
	}

	if err := s.store.InsertTrade(ctx, rec); err != nil {
		return core.TradeRecord{}, fmt.Errorf("insert trade: %w", err)
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "Sync publisher not available, skipping sync message", "trade_id", rec.ID)
		return rec, nil
	}
	if err := s.publisher.PublishTradeSync(ctx, rec.ID, rec.Month); err != nil {
		slog.ErrorContext(ctx, "Failed to publish trade sync message",
			"trade_id", rec.ID, "month", rec.Month, "error", err)
	}
	return rec, nil
}

func (s *Service) GetTrade(ctx context.Context, id string) (core.TradeRecord, error) {
	return s.store.GetTrade(ctx, id)
}

func (s *Service) AddSetup(ctx context.Context, setup core.Setup) (core.Setup, error) {
	setup.ID = uuid.NewString()
	if err := setup.Validate(); err != nil {
		return core.Setup{}, err
	}
	if err := s.store.InsertSetup(ctx, setup); err != nil {
		return core.Setup{}, fmt.Errorf("insert setup: %w", err)
	}
	return setup, nil
}

func (s *Service) ListSetups(ctx context.Context) ([]core.Setup, error) {
	return s.store.ListSetups(ctx)
}

func (s *Service) AddPair(ctx context.Context, symbol string) (core.TradingPair, error) {
	pair := core.TradingPair{
		ID:     uuid.NewString(),
		Symbol: core.NormalizeSymbol(symbol),
	}
	if err := pair.Validate(); err != nil {
		return core.TradingPair{}, err
	}
	if err := s.store.InsertPair(ctx, pair); err != nil {
		return core.TradingPair{}, fmt.Errorf("insert pair: %w", err)
	}
	return pair, nil
}

func (s *Service) ListPairs(ctx context.Context) ([]core.TradingPair, error) {
	return s.store.ListPairs(ctx)
}

func (s *Service) UpdatePair(ctx context.Context, id, symbol string) (core.TradingPair, error) {
	pair := core.TradingPair{ID: id, Symbol: core.NormalizeSymbol(symbol)}
	if err := pair.Validate(); err != nil {
		return core.TradingPair{}, err
	}
	if err := s.store.UpdatePair(ctx, pair); err != nil {
		return core.TradingPair{}, fmt.Errorf("update pair: %w", err)
	}
	return pair, nil
}

func (s *Service) DeletePair(ctx context.Context, id string) error {
	if err := s.store.DeletePair(ctx, id); err != nil {
		return fmt.Errorf("delete pair: %w", err)
	}
	return nil
}

// Close releases the underlying store.
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

func setupNames(setups []core.Setup) map[string]string {
	names := make(map[string]string, len(setups))
	for _, s := range setups {
		names[s.ID] = s.Name
	}
	return names
}
