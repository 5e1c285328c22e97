package core

import "testing"

func TestFormatCompactCurrency(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{4727, "$4.7K"},
		{1049, "$1K"}, // floored, not rounded to $1.1K
		{-1571, "-$1.6K"},
		{123, "$123"},
		{0, "$0"},
		{999.5, "$999.5"},
		{1000, "$1K"},
		{10000, "$10K"},
		{-1000, "-$1K"},
		{2934, "$2.9K"},
		{-42, "-$42"},
	}

	for _, tt := range tests {
		if got := FormatCompactCurrency(tt.value); got != tt.want {
			t.Errorf("FormatCompactCurrency(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestTradeMetaLabel(t *testing.T) {
	names := map[string]string{"s1": "London breakout", "s2": "NY reversal", "s3": "Asia range"}

	tests := []struct {
		name string
		day  *DayAggregate
		want string
	}{
		{
			"single trade",
			&DayAggregate{
				TotalTrades: 1,
				Entries:     []TradeRecord{{Pair: "EURUSD", SetupID: "s1"}},
			},
			"1 trade • EURUSD • London breakout",
		},
		{
			"dedupes pairs, unknown setup falls back to id",
			&DayAggregate{
				TotalTrades: 3,
				Entries: []TradeRecord{
					{Pair: "EURUSD", SetupID: "missing"},
					{Pair: "EURUSD"},
					{Pair: "GBPUSD"},
				},
			},
			"3 trades • EURUSD, GBPUSD • missing",
		},
		{
			"long lists collapse",
			&DayAggregate{
				TotalTrades: 4,
				Entries: []TradeRecord{
					{Pair: "EURUSD", SetupID: "s1"},
					{Pair: "GBPUSD", SetupID: "s2"},
					{Pair: "USDJPY", SetupID: "s3"},
					{Pair: "AUDUSD"},
				},
			},
			"4 trades • EURUSD, GBPUSD +2 • London breakout, NY reversal +1",
		},
		{
			"no pairs or setups",
			&DayAggregate{TotalTrades: 2, Entries: []TradeRecord{{}, {}}},
			"2 trades",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TradeMetaLabel(tt.day, names); got != tt.want {
				t.Errorf("TradeMetaLabel = %q, want %q", got, tt.want)
			}
		})
	}
}
