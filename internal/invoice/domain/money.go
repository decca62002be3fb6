package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount converts a decimal currency string ("100.50") to integer minor
// units. Sums over invoices stay exact because all arithmetic is on int64
// cents, never floats.
func ParseAmount(raw string) (int64, error) {
	value := strings.TrimSpace(raw)
	if value == "" || !isDigitsAndDot(value) {
		return 0, ErrInvalidAmount
	}

	whole, frac, _ := strings.Cut(value, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, ErrInvalidAmount
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0, ErrInvalidAmount
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}

	return units*100 + cents, nil
}

// FormatAmount renders minor units as a decimal string.
func FormatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func isDigitsAndDot(s string) bool {
	dots := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
