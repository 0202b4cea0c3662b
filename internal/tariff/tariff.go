// Package tariff computes parking fees and drives the fee simulator.
package tariff

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/banshee-data/parking.report/internal/units"
)

// BilledHours rounds a requested stay up to whole hours, with a minimum of
// one. NaN and negative input bill one hour.
func BilledHours(h float64) int {
	if math.IsNaN(h) || h <= 1 {
		return 1
	}
	if h >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Ceil(h))
}

// Total is BilledHours(h) times the hourly rate.
func Total(h float64, rate int) int64 {
	return int64(BilledHours(h)) * int64(rate)
}

// Quote is one simulator result.
type Quote struct {
	Type        string  `json:"type"`
	Hours       float64 `json:"hours"`
	BilledHours int     `json:"billed_hours"`
	Rate        int     `json:"rate"`
	Total       int64   `json:"total"`
}

// NewQuote prices hours of vehicleType at rate.
func NewQuote(vehicleType string, hours float64, rate int) Quote {
	return Quote{
		Type:        vehicleType,
		Hours:       hours,
		BilledHours: BilledHours(hours),
		Rate:        rate,
		Total:       Total(hours, rate),
	}
}

// Text is the result line, e.g. "$ 4.500 (3 horas)".
func (q Quote) Text() string {
	return fmt.Sprintf("%s (%d horas)", units.FormatCurrency(float64(q.Total)), q.BilledHours)
}

// ParseHours reads the leading decimal number of s, ignoring anything after
// it. Input without a leading number is 0.
func ParseHours(s string) float64 {
	p := floatPrefix(s)
	if p == "" {
		return 0
	}
	v, err := strconv.ParseFloat(p, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseRate reads the leading base-10 integer of s. "1.500" is 1 and input
// without a leading integer is 0.
func ParseRate(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	j := i
	for j < len(s) && isDigit(s[j]) {
		j++
	}
	if j == i {
		return 0
	}
	v, err := strconv.ParseInt(s[:j], 10, 32)
	if err != nil {
		return 0
	}
	return int(v)
}

func floatPrefix(s string) string {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return ""
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return s[:i]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
