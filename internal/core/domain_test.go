package core

import (
	"errors"
	"testing"
)

func TestParseISODate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "2025-04-04", false},
		{"leap day", "2024-02-29", false},
		{"bad month", "2025-13-01", true},
		{"bad format", "04/04/2025", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseISODate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseISODate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidDate) {
				t.Errorf("expected ErrInvalidDate, got %v", err)
			}
		})
	}
}

func TestMonthRange(t *testing.T) {
	start, end, err := MonthRange("2025-04")
	if err != nil {
		t.Fatalf("MonthRange: %v", err)
	}
	if start != "2025-04-01" || end != "2025-05-01" {
		t.Errorf("got [%s, %s), want [2025-04-01, 2025-05-01)", start, end)
	}

	start, end, err = MonthRange("2024-12")
	if err != nil {
		t.Fatalf("MonthRange: %v", err)
	}
	if start != "2024-12-01" || end != "2025-01-01" {
		t.Errorf("got [%s, %s), want [2024-12-01, 2025-01-01)", start, end)
	}

	if _, _, err := MonthRange("2025-4"); err == nil {
		t.Error("expected error for malformed month key")
	}
}

func TestNormalizeSymbol(t *testing.T) {
	if got := NormalizeSymbol("  eurusd "); got != "EURUSD" {
		t.Errorf("NormalizeSymbol = %q, want EURUSD", got)
	}
}

func TestTradeRecordValidate(t *testing.T) {
	valid := TradeRecord{
		ID:        "t1",
		Date:      "2025-04-04",
		Month:     "2025-04",
		Pair:      "EURUSD",
		Net:       150,
		Trades:    2,
		Direction: Long,
		ClosedBy:  ClosedByTakeProfit,
	}

	tests := []struct {
		name    string
		mutate  func(*TradeRecord)
		wantErr error
	}{
		{"valid", func(*TradeRecord) {}, nil},
		{"bad date", func(r *TradeRecord) { r.Date = "not-a-date" }, ErrInvalidDate},
		{"zero trades", func(r *TradeRecord) { r.Trades = 0 }, ErrInvalidTrades},
		{"empty pair", func(r *TradeRecord) { r.Pair = "  " }, ErrEmptyPair},
		{"bad direction", func(r *TradeRecord) { r.Direction = "sideways" }, ErrInvalidDirection},
		{"bad close reason", func(r *TradeRecord) { r.ClosedBy = "expired" }, ErrInvalidCloseReason},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			tt.mutate(&rec)
			err := rec.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("month mismatch", func(t *testing.T) {
		rec := valid
		rec.Month = "2025-05"
		if err := rec.Validate(); err == nil {
			t.Error("expected error for month not matching date")
		}
	})
}

func TestSetupValidate(t *testing.T) {
	s := Setup{Name: "London breakout", Bias: "bullish", Description: "Trade the open"}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	s.Name = ""
	if err := s.Validate(); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Validate() = %v, want ErrEmptyName", err)
	}
}
