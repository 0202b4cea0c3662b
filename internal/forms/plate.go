// Package forms validates the operator forms before they are submitted:
// plate format, required fields and the entry-form gate.
package forms

import (
	"regexp"
	"strings"
)

// PlateField is the input name that carries a licence plate.
const PlateField = "placa"

var platePattern = regexp.MustCompile(`^[A-Z0-9-]{3,8}$`)

// ValidPlate reports whether s, uppercased, is 3 to 8 characters of A-Z,
// 0-9 or '-'.
func ValidPlate(s string) bool {
	return platePattern.MatchString(strings.ToUpper(s))
}

// NormalizePlate is the keystroke transform applied to plate inputs.
func NormalizePlate(s string) string {
	return strings.ToUpper(s)
}
