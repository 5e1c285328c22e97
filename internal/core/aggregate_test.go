package core

import (
	"math"
	"reflect"
	"testing"
)

func april2025Records() []TradeRecord {
	rr := func(v float64) *float64 { return &v }
	return []TradeRecord{
		{ID: "t1", Date: "2025-04-04", Month: "2025-04", Pair: "EURUSD", Net: 2934, Trades: 4, RR: rr(2.1), Direction: Long, ClosedBy: ClosedByTakeProfit, SetupID: "s1"},
		{ID: "t2", Date: "2025-04-09", Month: "2025-04", Pair: "GBPUSD", Net: 4727, Trades: 3, Direction: Long, ClosedBy: ClosedByTakeProfit, SetupID: "s1"},
		{ID: "t3", Date: "2025-04-17", Month: "2025-04", Pair: "USDJPY", Net: -1571, Trades: 2, Direction: Short, ClosedBy: ClosedByStopLoss},
		{ID: "t4", Date: "2025-04-25", Month: "2025-04", Pair: "EURUSD", Net: 123, Trades: 3, Direction: Short, ClosedBy: ClosedByManual, SetupID: "s2"},
	}
}

func TestAggregateMonthApril2025(t *testing.T) {
	agg, err := AggregateMonth("2025-04", april2025Records())
	if err != nil {
		t.Fatalf("AggregateMonth: %v", err)
	}

	want := MonthSummary{
		Month:       "2025-04",
		Net:         6213,
		TradeCount:  12,
		ActiveDays:  4,
		GrossProfit: 7784,
		GrossLoss:   1571,
	}
	if !reflect.DeepEqual(agg.Summary, want) {
		t.Errorf("Summary = %+v, want %+v", agg.Summary, want)
	}

	day := agg.Day("2025-04-04")
	if day == nil {
		t.Fatal("missing aggregate for 2025-04-04")
	}
	if day.TotalNet != 2934 || day.TotalTrades != 4 || len(day.Entries) != 1 {
		t.Errorf("day aggregate = %+v", day)
	}
	if agg.Day("2025-04-05") != nil {
		t.Error("expected no aggregate for a date without trades")
	}
}

func TestAggregateMonthAdditivity(t *testing.T) {
	records := []TradeRecord{
		{ID: "a", Date: "2025-06-02", Net: 100.25, Trades: 1},
		{ID: "b", Date: "2025-06-02", Net: -40.75, Trades: 2},
		{ID: "c", Date: "2025-06-02", Net: 10.5, Trades: 1},
	}
	agg, err := AggregateMonth("2025-06", records)
	if err != nil {
		t.Fatalf("AggregateMonth: %v", err)
	}
	day := agg.Day("2025-06-02")
	if day == nil {
		t.Fatal("missing day aggregate")
	}
	if day.TotalNet != 100.25-40.75+10.5 {
		t.Errorf("TotalNet = %v", day.TotalNet)
	}
	if day.TotalTrades != 4 {
		t.Errorf("TotalTrades = %d, want 4", day.TotalTrades)
	}
	if len(day.Entries) != 3 {
		t.Errorf("Entries = %d, want 3", len(day.Entries))
	}
}

func TestAggregateMonthZeroNetDay(t *testing.T) {
	records := []TradeRecord{
		{ID: "a", Date: "2025-06-02", Net: 50, Trades: 1},
		{ID: "b", Date: "2025-06-02", Net: -50, Trades: 1},
		{ID: "c", Date: "2025-06-03", Net: 80, Trades: 1},
	}
	agg, err := AggregateMonth("2025-06", records)
	if err != nil {
		t.Fatalf("AggregateMonth: %v", err)
	}
	// Zero-net day counts as active but lands in neither gross bucket.
	sum := agg.Summary
	if sum.ActiveDays != 2 {
		t.Errorf("ActiveDays = %d, want 2", sum.ActiveDays)
	}
	if sum.GrossProfit != 80 || sum.GrossLoss != 0 {
		t.Errorf("gross = +%v -%v, want +80 -0", sum.GrossProfit, sum.GrossLoss)
	}
	if sum.Net != 80 {
		t.Errorf("Net = %v, want 80", sum.Net)
	}
}

func TestAggregateMonthSummaryConsistency(t *testing.T) {
	agg, err := AggregateMonth("2025-04", april2025Records())
	if err != nil {
		t.Fatalf("AggregateMonth: %v", err)
	}
	sum := agg.Summary
	if math.Abs(sum.Net-(sum.GrossProfit-sum.GrossLoss)) > 1e-9 {
		t.Errorf("net %v != grossProfit %v - grossLoss %v", sum.Net, sum.GrossProfit, sum.GrossLoss)
	}
}

func TestAggregateMonthRejectsBadInput(t *testing.T) {
	if _, err := AggregateMonth("2025-04", []TradeRecord{{ID: "x", Date: "bogus"}}); err == nil {
		t.Error("expected error for malformed date")
	}
	if _, err := AggregateMonth("2025-04", []TradeRecord{{ID: "x", Date: "2025-05-01"}}); err == nil {
		t.Error("expected error for record outside the month")
	}
}

func TestDatesInOrderPreservesInsertion(t *testing.T) {
	records := []TradeRecord{
		{ID: "a", Date: "2025-06-15", Net: 1, Trades: 1},
		{ID: "b", Date: "2025-06-03", Net: 1, Trades: 1},
		{ID: "c", Date: "2025-06-15", Net: 1, Trades: 1},
		{ID: "d", Date: "2025-06-09", Net: 1, Trades: 1},
	}
	agg, err := AggregateMonth("2025-06", records)
	if err != nil {
		t.Fatalf("AggregateMonth: %v", err)
	}
	got := agg.DatesInOrder()
	want := []string{"2025-06-15", "2025-06-03", "2025-06-09"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DatesInOrder = %v, want %v", got, want)
	}
}

func TestSummariesConsistent(t *testing.T) {
	a := MonthSummary{Month: "2025-04", Net: 6213, TradeCount: 12, ActiveDays: 4, GrossProfit: 7784, GrossLoss: 1571}
	b := a
	if !SummariesConsistent(a, b) {
		t.Error("identical summaries should be consistent")
	}
	b.Net += 5e-7
	if !SummariesConsistent(a, b) {
		t.Error("summaries within tolerance should be consistent")
	}
	b.Net = a.Net + 0.01
	if SummariesConsistent(a, b) {
		t.Error("diverging net should not be consistent")
	}
	b = a
	b.TradeCount++
	if SummariesConsistent(a, b) {
		t.Error("diverging trade count should not be consistent")
	}
}
