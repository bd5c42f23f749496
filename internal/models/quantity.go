package models

import (
	"regexp"
	"strconv"
)

var leadingNumber = regexp.MustCompile(`^(\d+(\.\d+)?)`)

// ParseQuantity returns the number a free-text quantity starts with
// ("10 units" -> 10, "2.5kg" -> 2.5). Text without a leading number is 0.
func ParseQuantity(s string) float64 {
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}
