package core

import (
	"fmt"
	"time"
)

type (
	Tone      string
	Highlight string
)

const (
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneNeutral  Tone = "neutral"

	HighlightPositive Highlight = "positive"
	HighlightNegative Highlight = "negative"
)

// CalendarDay is one grid cell. Padding cells from adjacent months carry
// no day number and never highlight.
type CalendarDay struct {
	Date           string    `json:"id"`
	DayNumber      string    `json:"dayNumber,omitempty"`
	IsCurrentMonth bool      `json:"isCurrentMonth"`
	Highlight      Highlight `json:"highlight,omitempty"`
	ValueLabel     string    `json:"valueLabel,omitempty"`
	TradesLabel    string    `json:"tradesLabel,omitempty"`
}

// CalendarWeek is a Sunday-to-Saturday row with its own running totals.
// Week totals include padding days, unlike the month summary.
type CalendarWeek struct {
	Label       string        `json:"label"`
	Total       string        `json:"total"`
	TradingDays int           `json:"tradingDays"`
	Tone        Tone          `json:"tone"`
	Days        []CalendarDay `json:"days"`
}

type CalendarSummary struct {
	Net        float64 `json:"net"`
	TradeCount int     `json:"tradeCount"`
	ActiveDays int     `json:"activeDays"`
}

type CalendarMonth struct {
	Weeks   []CalendarWeek  `json:"weeks"`
	Summary CalendarSummary `json:"summary"`
}

// BuildCalendar walks the full Sunday-aligned grid around the reference
// month and attaches aggregates to the cells that have trades. setupNames
// maps setup ids to display names for the per-day trade labels.
func BuildCalendar(reference time.Time, days map[string]*DayAggregate, setupNames map[string]string) CalendarMonth {
	ref := reference.UTC()
	firstOfMonth := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)
	startOfCalendar := firstOfMonth.AddDate(0, 0, -int(firstOfMonth.Weekday()))
	endOfCalendar := lastOfMonth.AddDate(0, 0, 6-int(lastOfMonth.Weekday()))

	var (
		out      CalendarMonth
		week     []CalendarDay
		weekNet  float64
		weekDays int
	)
	for cursor := startOfCalendar; !cursor.After(endOfCalendar); cursor = cursor.AddDate(0, 0, 1) {
		date := FormatISODate(cursor)
		inMonth := cursor.Month() == firstOfMonth.Month() && cursor.Year() == firstOfMonth.Year()

		cell := CalendarDay{Date: date, IsCurrentMonth: inMonth}
		if inMonth {
			cell.DayNumber = fmt.Sprintf("%d", cursor.Day())
		}
		if day := days[date]; day != nil {
			weekNet += day.TotalNet
			weekDays++
			cell.ValueLabel = FormatCompactCurrency(day.TotalNet)
			cell.TradesLabel = TradeMetaLabel(day, setupNames)
			if inMonth {
				switch {
				case day.TotalNet > 0:
					cell.Highlight = HighlightPositive
				case day.TotalNet < 0:
					cell.Highlight = HighlightNegative
				}
				out.Summary.Net += day.TotalNet
				out.Summary.TradeCount += day.TotalTrades
				out.Summary.ActiveDays++
			}
		}
		week = append(week, cell)

		if len(week) == 7 {
			tone := ToneNeutral
			switch {
			case weekNet > 0:
				tone = TonePositive
			case weekNet < 0:
				tone = ToneNegative
			}
			out.Weeks = append(out.Weeks, CalendarWeek{
				Label:       fmt.Sprintf("Week %d", len(out.Weeks)+1),
				Total:       FormatCompactCurrency(weekNet),
				TradingDays: weekDays,
				Tone:        tone,
				Days:        week,
			})
			week = nil
			weekNet = 0
			weekDays = 0
		}
	}
	return out
}

// ActiveWeek returns the Sunday-to-Saturday ISO date span containing a date.
func ActiveWeek(date time.Time) (start, end string) {
	d := date.UTC()
	sunday := d.AddDate(0, 0, -int(d.Weekday()))
	return FormatISODate(sunday), FormatISODate(sunday.AddDate(0, 0, 6))
}

// MobileDayCard is the condensed single-day view used by small screens.
type MobileDayCard struct {
	Date        string `json:"date"`
	ValueLabel  string `json:"valueLabel"`
	TradesLabel string `json:"tradesLabel"`
	Tone        Tone   `json:"tone"`
}

// MobileDay builds the condensed card for one date, falling back to an
// empty state when no trades exist.
func MobileDay(date time.Time, days map[string]*DayAggregate, setupNames map[string]string) MobileDayCard {
	iso := FormatISODate(date.UTC())
	day := days[iso]
	if day == nil {
		return MobileDayCard{Date: iso, ValueLabel: "$0", TradesLabel: "No trades", Tone: ToneNeutral}
	}
	tone := ToneNeutral
	switch {
	case day.TotalNet > 0:
		tone = TonePositive
	case day.TotalNet < 0:
		tone = ToneNegative
	}
	return MobileDayCard{
		Date:        iso,
		ValueLabel:  FormatCompactCurrency(day.TotalNet),
		TradesLabel: TradeMetaLabel(day, setupNames),
		Tone:        tone,
	}
}
