// Package format turns statistics values into the strings shown on the dashboard.
//
// All thresholds are named so they can be tested and tuned independently of the
// templates that display them.
package format

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// CurrencyPrefix is prepended to every monetary value.
const CurrencyPrefix = "R$"

// Relative time buckets.
const (
	JustNowLimit = time.Minute
	MinutesLimit = time.Hour
	HoursLimit   = 24 * time.Hour
	DaysLimit    = 7 * 24 * time.Hour

	JustNowLabel   = "Agora mesmo"
	AbsoluteLayout = "02/01/2006"
)

// Quantity unit buckets used by the bar chart tooltip.
const (
	KilogramThreshold   = 1000.0
	OneDecimalThreshold = 10.0
)

var monthAbbrevs = [12]string{
	"Jan", "Fev", "Mar", "Abr", "Mai", "Jun",
	"Jul", "Ago", "Set", "Out", "Nov", "Dez",
}

// Currency formats v with two decimals, e.g. "R$ 1234.50".
func Currency(v float64) string {
	return CurrencyPrefix + " " + strconv.FormatFloat(v, 'f', 2, 64)
}

// SignedCurrency formats the absolute value of v with a leading + for inbound
// and - for outbound, e.g. "+R$ 12.50".
func SignedCurrency(v float64, inbound bool) string {
	sign := "-"
	if inbound {
		sign = "+"
	}
	return sign + Currency(math.Abs(v))
}

// Percentage shows the magnitude of v with one decimal. The sign is conveyed elsewhere.
func Percentage(v float64) string {
	return strconv.FormatFloat(math.Abs(v), 'f', 1, 64) + "%"
}

// MonthAbbrev maps 1-12 to a three letter pt-BR abbreviation. Other values are
// returned as the raw number.
func MonthAbbrev(month int) string {
	if month < 1 || month > 12 {
		return strconv.Itoa(month)
	}
	return monthAbbrevs[month-1]
}

// RelativeTime describes t relative to now. Elapsed time is floored into minute,
// hour and day buckets; from DaysLimit on the absolute date is shown.
func RelativeTime(t, now time.Time) string {
	elapsed := now.Sub(t)
	switch {
	case elapsed < JustNowLimit:
		return JustNowLabel
	case elapsed < MinutesLimit:
		return fmt.Sprintf("%dmin atrás", int(elapsed/time.Minute))
	case elapsed < HoursLimit:
		return fmt.Sprintf("%dh atrás", int(elapsed/time.Hour))
	case elapsed < DaysLimit:
		return fmt.Sprintf("%dd atrás", int(elapsed/(24*time.Hour)))
	default:
		return t.Format(AbsoluteLayout)
	}
}

// Quantity formats a stock quantity for tooltips: kilograms from 1000 up,
// units with one decimal from 10 up, units with two decimals below.
func Quantity(v float64) string {
	switch {
	case v >= KilogramThreshold:
		return strconv.FormatFloat(v/KilogramThreshold, 'f', 1, 64) + " kg"
	case v >= OneDecimalThreshold:
		return strconv.FormatFloat(v, 'f', 1, 64) + " un"
	default:
		return strconv.FormatFloat(v, 'f', 2, 64) + " un"
	}
}

// Units formats a quantity with as few digits as needed, e.g. "2.5 un".
func Units(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " un"
}

// Percent rounds a 0..1 share to a whole percentage, halves away from zero.
func Percent(share float64) int {
	if math.IsNaN(share) || math.IsInf(share, 0) {
		return 0
	}
	return int(math.Round(share * 100))
}
