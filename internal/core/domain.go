package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	Long  Direction = "long"
	Short Direction = "short"
)

const (
	ClosedByTakeProfit CloseReason = "tp"
	ClosedByStopLoss   CloseReason = "sl"
	ClosedByManual     CloseReason = "manual"
)

type (
	Direction   string
	CloseReason string

	// TradeAttachment points at a screenshot or document stored in an
	// external object bucket.
	TradeAttachment struct {
		ID          string `json:"id"`
		Bucket      string `json:"bucket"`
		Path        string `json:"path"`
		ContentType string `json:"contentType,omitempty"`
		SortOrder   int    `json:"sortOrder"`
	}

	// TradeRecord is one journaled trade result for a calendar day.
	// Several records may share a date; read paths roll them up per day.
	TradeRecord struct {
		ID          string            `json:"id"`
		Date        string            `json:"date"`  // ISO YYYY-MM-DD
		Month       string            `json:"month"` // YYYY-MM, derived from Date
		Pair        string            `json:"pair"`
		Net         float64           `json:"net"`
		Trades      int               `json:"trades"`
		RR          *float64          `json:"rr,omitempty"`
		Direction   Direction         `json:"direction"`
		Session     string            `json:"session,omitempty"`
		ClosedBy    CloseReason       `json:"closedBy"`
		RiskPercent *float64          `json:"riskPercent,omitempty"`
		Emotion     string            `json:"emotion,omitempty"`
		WithPlan    bool              `json:"withPlan"`
		Description string            `json:"description,omitempty"`
		SetupID     string            `json:"setupId,omitempty"`
		Attachments []TradeAttachment `json:"attachments,omitempty"`
	}

	SetupStats struct {
		WinRate float64 `json:"winRate"`
		AvgR    float64 `json:"avgR"`
		Sample  int     `json:"sample"`
	}

	// Setup is a named playbook entry traders reference from trades.
	Setup struct {
		ID           string      `json:"id"`
		Name         string      `json:"name"`
		Bias         string      `json:"bias"`
		Description  string      `json:"description"`
		FocusTag     string      `json:"focusTag,omitempty"`
		LastExecuted string      `json:"lastExecuted,omitempty"`
		Stats        *SetupStats `json:"stats,omitempty"`
	}

	// TradingPair is a watchlist instrument symbol.
	TradingPair struct {
		ID     string `json:"id"`
		Symbol string `json:"symbol"`
	}
)

var (
	ErrInvalidDate        = errors.New("invalid trade date")
	ErrInvalidTrades      = errors.New("trade count must be at least 1")
	ErrEmptyPair          = errors.New("empty pair symbol")
	ErrInvalidDirection   = errors.New("invalid direction")
	ErrInvalidCloseReason = errors.New("invalid close reason")
	ErrInvalidNet         = errors.New("net must be a finite amount")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptyBias          = errors.New("empty bias")
	ErrEmptyDescription   = errors.New("empty description")
)

const isoDateLayout = "2006-01-02"

// ParseISODate parses a YYYY-MM-DD date string.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(isoDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatISODate renders a time as a YYYY-MM-DD date string.
func FormatISODate(t time.Time) string {
	return t.Format(isoDateLayout)
}

// MonthKey returns the YYYY-MM grouping key for a date.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// MonthKeyOf derives the month key from an ISO date string.
func MonthKeyOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// MonthRange returns the [start, end) ISO date bounds for a YYYY-MM key.
func MonthRange(month string) (start, end string, err error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return "", "", fmt.Errorf("invalid month key %q: expected YYYY-MM", month)
	}
	return FormatISODate(t), FormatISODate(t.AddDate(0, 1, 0)), nil
}

// NormalizeSymbol uppercases and trims a pair symbol.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func (d Direction) Valid() bool {
	return d == Long || d == Short
}

func (c CloseReason) Valid() bool {
	switch c {
	case ClosedByTakeProfit, ClosedByStopLoss, ClosedByManual:
		return true
	default:
		return false
	}
}

func (t TradeRecord) Validate() error {
	if _, err := ParseISODate(t.Date); err != nil {
		return err
	}
	if t.Month != "" && t.Month != MonthKeyOf(t.Date) {
		return fmt.Errorf("month %q does not match date %q", t.Month, t.Date)
	}
	if t.Trades < 1 {
		return ErrInvalidTrades
	}
	if strings.TrimSpace(t.Pair) == "" {
		return ErrEmptyPair
	}
	if !t.Direction.Valid() {
		return ErrInvalidDirection
	}
	if !t.ClosedBy.Valid() {
		return ErrInvalidCloseReason
	}
	if math.IsNaN(t.Net) || math.IsInf(t.Net, 0) {
		return ErrInvalidNet
	}
	return nil
}

func (s Setup) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(s.Bias) == "" {
		return ErrEmptyBias
	}
	if strings.TrimSpace(s.Description) == "" {
		return ErrEmptyDescription
	}
	if s.LastExecuted != "" {
		if _, err := ParseISODate(s.LastExecuted); err != nil {
			return fmt.Errorf("last executed: %w", err)
		}
	}
	return nil
}

func (p TradingPair) Validate() error {
	if strings.TrimSpace(p.Symbol) == "" {
		return ErrEmptyPair
	}
	return nil
}
