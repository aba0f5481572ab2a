package util

import (
	"math"
	"strconv"
	"strings"
)

// CleanNumber converts a dirty numeric string into a float64. Filing
// exports carry thousands separators, currency symbols, explicit plus
// signs and stray spaces ("+239,491", "$17.50", ""). Unparsable input
// resolves to zero: blank price fields are routine, not errors.
func CleanNumber(s string) float64 {
	if s == "" {
		return 0
	}
	r := strings.NewReplacer(",", "", "$", "", " ", "", "+", "")
	v, err := strconv.ParseFloat(r.Replace(strings.TrimSpace(s)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// CodeFromType extracts the transaction code from a descriptive type
// field: "54 - Exercise of warrants" -> "54". A missing type resolves to
// the sentinel "00", which the classifier treats as noise.
func CodeFromType(typeField string) string {
	if strings.TrimSpace(typeField) == "" {
		return "00"
	}
	head, _, _ := strings.Cut(typeField, " - ")
	return strings.TrimSpace(head)
}

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
