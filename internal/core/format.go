package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatCompactCurrency renders a dollar amount the way the calendar
// cells show it. Amounts of $1000 and up are floored (not rounded) to
// the nearest 0.1K, dropping a trailing ".0".
func FormatCompactCurrency(value float64) string {
	sign := ""
	if value < 0 {
		sign = "-"
	}
	abs := math.Abs(value)
	if abs >= 1000 {
		floored := math.Abs(math.Floor(value/100) / 10)
		display := strconv.FormatFloat(floored, 'f', 1, 64)
		display = strings.TrimSuffix(display, ".0")
		return sign + "$" + display + "K"
	}
	return sign + "$" + groupThousands(abs)
}

func groupThousands(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	if n <= 3 {
		if frac != "" {
			return intPart + "." + frac
		}
		return intPart
	}
	var b strings.Builder
	for i, ch := range intPart {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// TradeMetaLabel builds a day's one-line description: trade count, the
// pairs traded, and the setups used, joined with bullet separators.
func TradeMetaLabel(day *DayAggregate, setupNames map[string]string) string {
	parts := []string{fmt.Sprintf("%d %s", day.TotalTrades, plural(day.TotalTrades, "trade"))}

	var pairs []string
	seenPairs := make(map[string]bool)
	var setups []string
	seenSetups := make(map[string]bool)
	for _, rec := range day.Entries {
		if rec.Pair != "" && !seenPairs[rec.Pair] {
			seenPairs[rec.Pair] = true
			pairs = append(pairs, rec.Pair)
		}
		if rec.SetupID != "" && !seenSetups[rec.SetupID] {
			seenSetups[rec.SetupID] = true
			name := setupNames[rec.SetupID]
			if name == "" {
				name = rec.SetupID
			}
			setups = append(setups, name)
		}
	}
	if len(pairs) > 0 {
		parts = append(parts, summarizeList(pairs))
	}
	if len(setups) > 0 {
		parts = append(parts, summarizeList(setups))
	}
	return strings.Join(parts, " • ")
}

func summarizeList(items []string) string {
	if len(items) <= 2 {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s, %s +%d", items[0], items[1], len(items)-2)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
