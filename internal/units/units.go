// Package units provides the vehicle-type catalogue and the display
// formatting shared by every dashboard view.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Vehicle type constants, as the backend and the rate inputs name them.
const (
	Moto      = "moto"
	Auto      = "auto"
	Camioneta = "camioneta"
)

// ValidVehicleTypes contains all vehicle types the lot accepts.
var ValidVehicleTypes = []string{Moto, Auto, Camioneta}

// defaultHourlyRates mirrors the backend's out-of-the-box tariff (COP/hour).
var defaultHourlyRates = map[string]int{
	Moto:      1500,
	Auto:      2500,
	Camioneta: 3500,
}

// IsValidVehicleType reports whether t (case-insensitive) is a known type.
func IsValidVehicleType(t string) bool {
	t = strings.ToLower(strings.TrimSpace(t))
	for _, v := range ValidVehicleTypes {
		if t == v {
			return true
		}
	}
	return false
}

// GetValidVehicleTypesString returns a comma-separated list for error messages.
func GetValidVehicleTypesString() string {
	return strings.Join(ValidVehicleTypes, ", ")
}

// DefaultHourlyRate returns the stock rate for t, or 0 for unknown types.
func DefaultHourlyRate(t string) int {
	return defaultHourlyRates[strings.ToLower(t)]
}

// Locale used for currency grouping (Colombian peso, no decimals).
var currencyLocale = language.MustParse("es-CO")

// FormatCurrency renders amount as whole Colombian pesos, e.g. "$ 12.500".
func FormatCurrency(amount float64) string {
	p := message.NewPrinter(currencyLocale)
	n := int64(math.Round(amount))
	if n < 0 {
		return p.Sprintf("-$ %d", -n)
	}
	return p.Sprintf("$ %d", n)
}

// FormatCount renders a non-negative counter.
func FormatCount(n int) string {
	return strconv.Itoa(n)
}

// FormatPercent renders p with one decimal and a percent sign, e.g. "42.0%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatStay renders a dwell time as "{h}h {m}m".
func FormatStay(hours, minutes int) string {
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
