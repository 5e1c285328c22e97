package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tradebook/internal/core"
	"tradebook/internal/journal"

	_ "modernc.org/sqlite"
)

const (
	SyncStatusPending = "pending"
	SyncStatusSynced  = "synced"
	SyncStatusError   = "error"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertTrade writes a trade record and its attachments in one transaction
func (r *SQLiteRepository) InsertTrade(ctx context.Context, rec core.TradeRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO trade_days (
			id, trade_date, month, pair, net, trades, rr, direction,
			session, closed_by, risk_percent, emotion, with_plan,
			description, setup_id, sync_status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Date, rec.Month, rec.Pair, rec.Net, rec.Trades,
		nullFloat(rec.RR), string(rec.Direction), rec.Session,
		string(rec.ClosedBy), nullFloat(rec.RiskPercent), rec.Emotion,
		boolToInt(rec.WithPlan), rec.Description, rec.SetupID, SyncStatusPending)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}

	for _, att := range rec.Attachments {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO trade_attachments (id, trade_id, bucket, path, content_type, sort_order)
			VALUES (?, ?, ?, ?, ?, ?)`,
			att.ID, rec.ID, att.Bucket, att.Path, att.ContentType, att.SortOrder)
		if err != nil {
			return fmt.Errorf("insert attachment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Trade saved to SQLite",
		"trade_id", rec.ID,
		"trade_date", rec.Date,
		"pair", rec.Pair,
		"net", rec.Net,
		"trades", rec.Trades)
	return nil
}

const tradeColumns = `
	id, trade_date, month, pair, net, trades, rr, direction, session,
	closed_by, risk_percent, emotion, with_plan, description, setup_id`

func (r *SQLiteRepository) GetTrade(ctx context.Context, id string) (core.TradeRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tradeColumns+` FROM trade_days WHERE id = ?`, id)

	rec, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.TradeRecord{}, journal.ErrNotFound
	}
	if err != nil {
		return core.TradeRecord{}, fmt.Errorf("get trade by id: %w", err)
	}

	attachments, err := r.listAttachments(ctx, `
		SELECT id, trade_id, bucket, path, content_type, sort_order
		FROM trade_attachments WHERE trade_id = ? ORDER BY sort_order`, id)
	if err != nil {
		return core.TradeRecord{}, err
	}
	rec.Attachments = attachments[id]
	return rec, nil
}

// ListTradesByMonth returns a month's records ordered by trade date, then
// insertion order within a date.
func (r *SQLiteRepository) ListTradesByMonth(ctx context.Context, month string) ([]core.TradeRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tradeColumns+` FROM trade_days WHERE month = ? ORDER BY trade_date, rowid`, month)
	if err != nil {
		return nil, fmt.Errorf("list trades by month: %w", err)
	}
	defer rows.Close()

	var records []core.TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}

	attachments, err := r.listAttachments(ctx, `
		SELECT a.id, a.trade_id, a.bucket, a.path, a.content_type, a.sort_order
		FROM trade_attachments a
		JOIN trade_days t ON t.id = a.trade_id
		WHERE t.month = ? ORDER BY a.sort_order`, month)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Attachments = attachments[records[i].ID]
	}
	return records, nil
}

func (r *SQLiteRepository) listAttachments(ctx context.Context, query string, arg any) (map[string][]core.TradeAttachment, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]core.TradeAttachment)
	for rows.Next() {
		var att core.TradeAttachment
		var tradeID string
		if err := rows.Scan(&att.ID, &tradeID, &att.Bucket, &att.Path, &att.ContentType, &att.SortOrder); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		out[tradeID] = append(out[tradeID], att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attachments: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) InsertSetup(ctx context.Context, s core.Setup) error {
	var winRate, avgR *float64
	var sample *int
	if s.Stats != nil {
		winRate = &s.Stats.WinRate
		avgR = &s.Stats.AvgR
		sample = &s.Stats.Sample
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO setups (id, name, bias, description, focus_tag, last_executed, win_rate, avg_r, sample)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Bias, s.Description, s.FocusTag, s.LastExecuted, winRate, avgR, sample)
	if err != nil {
		return fmt.Errorf("insert setup: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListSetups(ctx context.Context) ([]core.Setup, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, bias, description, focus_tag, last_executed, win_rate, avg_r, sample
		FROM setups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list setups: %w", err)
	}
	defer rows.Close()

	var setups []core.Setup
	for rows.Next() {
		var s core.Setup
		var winRate, avgR sql.NullFloat64
		var sample sql.NullInt64
		if err := rows.Scan(&s.ID, &s.Name, &s.Bias, &s.Description, &s.FocusTag, &s.LastExecuted, &winRate, &avgR, &sample); err != nil {
			return nil, fmt.Errorf("scan setup: %w", err)
		}
		if winRate.Valid || avgR.Valid || sample.Valid {
			s.Stats = &core.SetupStats{
				WinRate: winRate.Float64,
				AvgR:    avgR.Float64,
				Sample:  int(sample.Int64),
			}
		}
		setups = append(setups, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate setups: %w", err)
	}
	return setups, nil
}

func (r *SQLiteRepository) InsertPair(ctx context.Context, p core.TradingPair) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO trading_pairs (id, symbol) VALUES (?, ?)`, p.ID, p.Symbol)
	if isUniqueViolation(err) {
		return journal.ErrDuplicateSymbol
	}
	if err != nil {
		return fmt.Errorf("insert pair: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListPairs(ctx context.Context) ([]core.TradingPair, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, symbol FROM trading_pairs ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("list pairs: %w", err)
	}
	defer rows.Close()

	var pairs []core.TradingPair
	for rows.Next() {
		var p core.TradingPair
		if err := rows.Scan(&p.ID, &p.Symbol); err != nil {
			return nil, fmt.Errorf("scan pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pairs: %w", err)
	}
	return pairs, nil
}

func (r *SQLiteRepository) UpdatePair(ctx context.Context, p core.TradingPair) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE trading_pairs SET symbol = ? WHERE id = ?`, p.Symbol, p.ID)
	if isUniqueViolation(err) {
		return journal.ErrDuplicateSymbol
	}
	if err != nil {
		return fmt.Errorf("update pair: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update pair rows affected: %w", err)
	}
	if affected == 0 {
		return journal.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeletePair(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trading_pairs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete pair: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete pair rows affected: %w", err)
	}
	if affected == 0 {
		return journal.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetMonthlySummary(ctx context.Context, month string) (core.MonthSummary, error) {
	var sum core.MonthSummary
	err := r.db.QueryRowContext(ctx, `
		SELECT month, net, trade_count, active_days, gross_profit, gross_loss
		FROM monthly_trade_summary WHERE month = ?`, month).
		Scan(&sum.Month, &sum.Net, &sum.TradeCount, &sum.ActiveDays, &sum.GrossProfit, &sum.GrossLoss)
	if errors.Is(err, sql.ErrNoRows) {
		return core.MonthSummary{}, journal.ErrNotFound
	}
	if err != nil {
		return core.MonthSummary{}, fmt.Errorf("get monthly summary: %w", err)
	}
	return sum, nil
}

// UpsertMonthlySummary writes the materialized summary row for a month
func (r *SQLiteRepository) UpsertMonthlySummary(ctx context.Context, sum core.MonthSummary) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO monthly_trade_summary (month, net, trade_count, active_days, gross_profit, gross_loss, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (month) DO UPDATE SET
			net = excluded.net,
			trade_count = excluded.trade_count,
			active_days = excluded.active_days,
			gross_profit = excluded.gross_profit,
			gross_loss = excluded.gross_loss,
			updated_at = excluded.updated_at`,
		sum.Month, sum.Net, sum.TradeCount, sum.ActiveDays, sum.GrossProfit, sum.GrossLoss)
	if err != nil {
		return fmt.Errorf("upsert monthly summary: %w", err)
	}

	slog.InfoContext(ctx, "Monthly summary updated",
		"month", sum.Month,
		"net", sum.Net,
		"trade_count", sum.TradeCount,
		"active_days", sum.ActiveDays)
	return nil
}

// ListSummaryMonths returns every month with a materialized summary row
func (r *SQLiteRepository) ListSummaryMonths(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT month FROM monthly_trade_summary ORDER BY month`)
	if err != nil {
		return nil, fmt.Errorf("list summary months: %w", err)
	}
	defer rows.Close()

	var months []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan month: %w", err)
		}
		months = append(months, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate months: %w", err)
	}
	return months, nil
}

// GetPendingSyncTrades returns trades awaiting export, oldest first
func (r *SQLiteRepository) GetPendingSyncTrades(ctx context.Context, limit int) ([]core.TradeRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tradeColumns+` FROM trade_days WHERE sync_status = ? ORDER BY rowid LIMIT ?`,
		SyncStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync trades: %w", err)
	}
	defer rows.Close()

	var records []core.TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}
	return records, nil
}

// MarkTradeSynced marks a trade as successfully exported
func (r *SQLiteRepository) MarkTradeSynced(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE trade_days SET sync_status = ?, sync_error = '' WHERE id = ?`,
		SyncStatusSynced, id)
	if err != nil {
		return fmt.Errorf("mark trade synced: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark trade synced rows affected: %w", err)
	}
	if affected == 0 {
		return journal.ErrNotFound
	}

	slog.InfoContext(ctx, "Trade marked as synced", "trade_id", id)
	return nil
}

// MarkTradeSyncError records an export failure against a trade
func (r *SQLiteRepository) MarkTradeSyncError(ctx context.Context, id string, cause string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE trade_days SET sync_status = ?, sync_error = ? WHERE id = ?`,
		SyncStatusError, cause, id)
	if err != nil {
		return fmt.Errorf("mark trade sync error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark trade sync error rows affected: %w", err)
	}
	if affected == 0 {
		return journal.ErrNotFound
	}

	slog.WarnContext(ctx, "Trade marked with sync error", "trade_id", id, "error", cause)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(row rowScanner) (core.TradeRecord, error) {
	var rec core.TradeRecord
	var rr, riskPercent sql.NullFloat64
	var direction, closedBy string
	var withPlan int
	err := row.Scan(&rec.ID, &rec.Date, &rec.Month, &rec.Pair, &rec.Net, &rec.Trades,
		&rr, &direction, &rec.Session, &closedBy, &riskPercent, &rec.Emotion,
		&withPlan, &rec.Description, &rec.SetupID)
	if err != nil {
		return core.TradeRecord{}, err
	}
	rec.Direction = core.Direction(direction)
	rec.ClosedBy = core.CloseReason(closedBy)
	rec.WithPlan = withPlan != 0
	if rr.Valid {
		rec.RR = &rr.Float64
	}
	if riskPercent.Valid {
		rec.RiskPercent = &riskPercent.Float64
	}
	return rec, nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
