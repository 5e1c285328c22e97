package core

import (
	"fmt"
	"math"
)

// DayAggregate rolls up all trade records sharing one calendar date.
type DayAggregate struct {
	Date        string        `json:"date"`
	TotalNet    float64       `json:"totalNet"`
	TotalTrades int           `json:"totalTrades"`
	Entries     []TradeRecord `json:"entries"`
}

// MonthSummary is the aggregate line a month header shows. Zero-net days
// count toward ActiveDays but land in neither gross bucket.
type MonthSummary struct {
	Month       string  `json:"month"`
	Net         float64 `json:"net"`
	TradeCount  int     `json:"tradeCount"`
	ActiveDays  int     `json:"activeDays"`
	GrossProfit float64 `json:"grossProfit"`
	GrossLoss   float64 `json:"grossLoss"`
}

// MonthAggregate groups a month's records by date, preserving the order
// dates were first seen so folds stay deterministic.
type MonthAggregate struct {
	Month   string
	Days    map[string]*DayAggregate
	Summary MonthSummary

	order []string
}

// AggregateMonth folds trade records into per-day aggregates and a month
// summary. Records outside the given month, or with unparseable dates,
// are an error rather than silently dropped.
func AggregateMonth(month string, records []TradeRecord) (*MonthAggregate, error) {
	agg := &MonthAggregate{
		Month: month,
		Days:  make(map[string]*DayAggregate),
	}
	for _, rec := range records {
		if _, err := ParseISODate(rec.Date); err != nil {
			return nil, err
		}
		if MonthKeyOf(rec.Date) != month {
			return nil, fmt.Errorf("trade %s dated %s outside month %s", rec.ID, rec.Date, month)
		}
		day, ok := agg.Days[rec.Date]
		if !ok {
			day = &DayAggregate{Date: rec.Date}
			agg.Days[rec.Date] = day
			agg.order = append(agg.order, rec.Date)
		}
		day.TotalNet += rec.Net
		day.TotalTrades += rec.Trades
		day.Entries = append(day.Entries, rec)
	}
	agg.Summary = agg.foldSummary()
	return agg, nil
}

// DatesInOrder returns the aggregated dates in first-seen order.
func (a *MonthAggregate) DatesInOrder() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Day returns the aggregate for an ISO date, or nil when no trades exist.
func (a *MonthAggregate) Day(date string) *DayAggregate {
	return a.Days[date]
}

func (a *MonthAggregate) foldSummary() MonthSummary {
	sum := MonthSummary{Month: a.Month}
	for _, date := range a.order {
		day := a.Days[date]
		sum.Net += day.TotalNet
		sum.TradeCount += day.TotalTrades
		sum.ActiveDays++
		switch {
		case day.TotalNet > 0:
			sum.GrossProfit += day.TotalNet
		case day.TotalNet < 0:
			sum.GrossLoss += math.Abs(day.TotalNet)
		}
	}
	return sum
}

const summaryEpsilon = 1e-6

// SummariesConsistent reports whether two summaries agree within a small
// float tolerance on every field.
func SummariesConsistent(a, b MonthSummary) bool {
	if a.Month != b.Month || a.TradeCount != b.TradeCount || a.ActiveDays != b.ActiveDays {
		return false
	}
	return closeEnough(a.Net, b.Net) &&
		closeEnough(a.GrossProfit, b.GrossProfit) &&
		closeEnough(a.GrossLoss, b.GrossLoss)
}

func closeEnough(a, b float64) bool {
	return math.Abs(a-b) <= summaryEpsilon
}
