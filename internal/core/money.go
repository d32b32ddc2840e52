// Package core holds the ledger domain: entries, periods, the metrics
// aggregator, the insight classifier and the allocation planner.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in kobo (hundredths of a naira). Calculations always
// use integer kobo to avoid floating-point drift; floats appear only at
// the display boundary.
type Money struct {
	Kobo int64
}

// Naira returns the naira value as a float64 for display purposes.
func (m Money) Naira() float64 {
	return float64(m.Kobo) / 100.0
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Kobo == 0
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Kobo: m.Kobo + other.Kobo}
}

// Sub returns m - other. The result may be negative (deficit).
func (m Money) Sub(other Money) Money {
	return Money{Kobo: m.Kobo - other.Kobo}
}

// ParseAmount converts a decimal string into Money.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted and
// the third decimal place is rounded half-up. Invalid or negative input
// coerces to zero rather than failing: a bad amount never aborts the
// interaction that carried it.
func ParseAmount(s string) Money {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Money{}
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return Money{}
	}
	var fracKobo int64
	if len(fracPart) > 0 {
		fracKobo = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracKobo += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracKobo++
			}
		}
	}
	return Money{Kobo: iv*100 + fracKobo}
}

// Decimal renders the amount as a plain decimal string ("1234.50"),
// the representation stored in record rows.
func (m Money) Decimal() string {
	kobo := m.Kobo
	neg := kobo < 0
	if neg {
		kobo = -kobo
	}
	s := fmt.Sprintf("%d.%02d", kobo/100, kobo%100)
	if neg {
		return "-" + s
	}
	return s
}

// FormatNaira renders the amount for the UI as whole naira with thousands
// separators, e.g. "₦5,000". Kobo are rounded half-up, matching how the
// tracker has always displayed money.
func (m Money) FormatNaira() string {
	kobo := m.Kobo
	neg := kobo < 0
	if neg {
		kobo = -kobo
	}
	units := (kobo + 50) / 100
	s := strconv.FormatInt(units, 10)
	var b strings.Builder
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-₦" + b.String()
	}
	return "₦" + b.String()
}
