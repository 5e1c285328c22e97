package core

import (
	"reflect"
	"testing"
	"time"
)

func buildApril2025Grid(t *testing.T) CalendarMonth {
	t.Helper()
	agg, err := AggregateMonth("2025-04", april2025Records())
	if err != nil {
		t.Fatalf("AggregateMonth: %v", err)
	}
	ref := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	return BuildCalendar(ref, agg.Days, map[string]string{"s1": "London breakout", "s2": "NY reversal"})
}

func TestBuildCalendarApril2025(t *testing.T) {
	grid := buildApril2025Grid(t)

	if len(grid.Weeks) != 5 {
		t.Fatalf("weeks = %d, want 5", len(grid.Weeks))
	}

	// April 2025 starts on a Tuesday, so the grid opens on Sunday March 30.
	if got := grid.Weeks[0].Days[0].Date; got != "2025-03-30" {
		t.Errorf("grid starts at %s, want 2025-03-30", got)
	}
	if got := grid.Weeks[4].Days[6].Date; got != "2025-05-03" {
		t.Errorf("grid ends at %s, want 2025-05-03", got)
	}

	weekOf := func(date string) CalendarWeek {
		for _, w := range grid.Weeks {
			for _, d := range w.Days {
				if d.Date == date {
					return w
				}
			}
		}
		t.Fatalf("date %s not in grid", date)
		return CalendarWeek{}
	}

	if w := weekOf("2025-04-04"); w.Tone != TonePositive {
		t.Errorf("week of April 4 tone = %s, want positive", w.Tone)
	}
	if w := weekOf("2025-04-17"); w.Tone != ToneNegative {
		t.Errorf("week of April 17 tone = %s, want negative", w.Tone)
	}

	wantSummary := CalendarSummary{Net: 6213, TradeCount: 12, ActiveDays: 4}
	if grid.Summary != wantSummary {
		t.Errorf("summary = %+v, want %+v", grid.Summary, wantSummary)
	}
}

func TestBuildCalendarCellDetails(t *testing.T) {
	grid := buildApril2025Grid(t)

	var cells = make(map[string]CalendarDay)
	for _, w := range grid.Weeks {
		for _, d := range w.Days {
			cells[d.Date] = d
		}
	}

	gain := cells["2025-04-04"]
	if gain.Highlight != HighlightPositive {
		t.Errorf("April 4 highlight = %q, want positive", gain.Highlight)
	}
	if gain.ValueLabel != "$2.9K" {
		t.Errorf("April 4 value label = %q, want $2.9K", gain.ValueLabel)
	}
	if gain.DayNumber != "4" {
		t.Errorf("April 4 day number = %q, want 4", gain.DayNumber)
	}

	loss := cells["2025-04-17"]
	if loss.Highlight != HighlightNegative {
		t.Errorf("April 17 highlight = %q, want negative", loss.Highlight)
	}
	if loss.ValueLabel != "-$1.6K" {
		t.Errorf("April 17 value label = %q, want -$1.6K", loss.ValueLabel)
	}

	quiet := cells["2025-04-10"]
	if quiet.Highlight != "" || quiet.ValueLabel != "" {
		t.Errorf("quiet day should have no highlight or labels, got %+v", quiet)
	}

	padding := cells["2025-03-30"]
	if padding.IsCurrentMonth || padding.DayNumber != "" {
		t.Errorf("padding cell should have no day number, got %+v", padding)
	}
}

func TestBuildCalendarGridCompleteness(t *testing.T) {
	refs := []time.Time{
		time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC), // 6-week layout
		time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC),
	}

	for _, ref := range refs {
		grid := BuildCalendar(ref, nil, nil)
		if n := len(grid.Weeks); n < 4 || n > 6 {
			t.Errorf("%s: weeks = %d, want 4..6", ref.Format("2006-01"), n)
		}
		var prev time.Time
		for wi, w := range grid.Weeks {
			if len(w.Days) != 7 {
				t.Fatalf("%s week %d has %d days", ref.Format("2006-01"), wi, len(w.Days))
			}
			for _, d := range w.Days {
				day, err := ParseISODate(d.Date)
				if err != nil {
					t.Fatalf("cell date %q: %v", d.Date, err)
				}
				if !prev.IsZero() && !day.Equal(prev.AddDate(0, 0, 1)) {
					t.Fatalf("%s: gap between %s and %s", ref.Format("2006-01"), FormatISODate(prev), d.Date)
				}
				prev = day
			}
		}
		first, _ := ParseISODate(grid.Weeks[0].Days[0].Date)
		if first.Weekday() != time.Sunday {
			t.Errorf("%s: grid starts on %s, want Sunday", ref.Format("2006-01"), first.Weekday())
		}
		if prev.Weekday() != time.Saturday {
			t.Errorf("%s: grid ends on %s, want Saturday", ref.Format("2006-01"), prev.Weekday())
		}
	}
}

func TestBuildCalendarMonthDayMarking(t *testing.T) {
	ref := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	grid := BuildCalendar(ref, nil, nil)
	for _, w := range grid.Weeks {
		for _, d := range w.Days {
			inApril := d.Date >= "2025-04-01" && d.Date <= "2025-04-30"
			if d.IsCurrentMonth != inApril {
				t.Errorf("%s: IsCurrentMonth = %v", d.Date, d.IsCurrentMonth)
			}
			if inApril && d.DayNumber == "" {
				t.Errorf("%s: missing day number", d.Date)
			}
			if !inApril && d.DayNumber != "" {
				t.Errorf("%s: padding cell has day number %q", d.Date, d.DayNumber)
			}
		}
	}
}

func TestBuildCalendarPaddingCountsTowardWeek(t *testing.T) {
	// A trade on a trailing padding day still contributes to that week's
	// total but never to the month summary.
	agg, err := AggregateMonth("2025-05", []TradeRecord{
		{ID: "x", Date: "2025-05-01", Net: 500, Trades: 1},
	})
	if err != nil {
		t.Fatalf("AggregateMonth: %v", err)
	}
	ref := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	grid := BuildCalendar(ref, agg.Days, nil)

	last := grid.Weeks[len(grid.Weeks)-1]
	if last.Total != "$500" || last.TradingDays != 1 {
		t.Errorf("last week total = %s days = %d, want $500 and 1", last.Total, last.TradingDays)
	}
	if last.Tone != TonePositive {
		t.Errorf("last week tone = %s, want positive", last.Tone)
	}
	if grid.Summary.Net != 0 || grid.Summary.ActiveDays != 0 {
		t.Errorf("month summary should ignore padding trades, got %+v", grid.Summary)
	}

	// Padding cells never highlight even with data on them.
	for _, d := range last.Days {
		if d.Date == "2025-05-01" && d.Highlight != "" {
			t.Errorf("padding cell highlight = %q, want empty", d.Highlight)
		}
	}
}

func TestBuildCalendarIdempotent(t *testing.T) {
	agg, err := AggregateMonth("2025-04", april2025Records())
	if err != nil {
		t.Fatalf("AggregateMonth: %v", err)
	}
	ref := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	names := map[string]string{"s1": "London breakout"}
	first := BuildCalendar(ref, agg.Days, names)
	second := BuildCalendar(ref, agg.Days, names)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated builds with identical input diverge")
	}
}

func TestActiveWeek(t *testing.T) {
	tests := []struct {
		date  string
		start string
		end   string
	}{
		{"2025-04-17", "2025-04-13", "2025-04-19"},
		{"2025-04-13", "2025-04-13", "2025-04-19"}, // already Sunday
		{"2025-04-19", "2025-04-13", "2025-04-19"}, // Saturday
	}
	for _, tt := range tests {
		d, err := ParseISODate(tt.date)
		if err != nil {
			t.Fatalf("ParseISODate: %v", err)
		}
		start, end := ActiveWeek(d)
		if start != tt.start || end != tt.end {
			t.Errorf("ActiveWeek(%s) = [%s, %s], want [%s, %s]", tt.date, start, end, tt.start, tt.end)
		}
	}
}

func TestMobileDay(t *testing.T) {
	agg, err := AggregateMonth("2025-04", april2025Records())
	if err != nil {
		t.Fatalf("AggregateMonth: %v", err)
	}
	names := map[string]string{"s1": "London breakout"}

	active, _ := ParseISODate("2025-04-04")
	card := MobileDay(active, agg.Days, names)
	if card.ValueLabel != "$2.9K" || card.Tone != TonePositive {
		t.Errorf("active day card = %+v", card)
	}

	empty, _ := ParseISODate("2025-04-05")
	card = MobileDay(empty, agg.Days, names)
	want := MobileDayCard{Date: "2025-04-05", ValueLabel: "$0", TradesLabel: "No trades", Tone: ToneNeutral}
	if card != want {
		t.Errorf("empty day card = %+v, want %+v", card, want)
	}
}
