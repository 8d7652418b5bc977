package utils

import (
	"strconv"
)

// StringToInt converts s to an int, returning fallback when s is empty or
// not a positive integer.
func StringToInt(s string, fallback int) int {
	i, err := strconv.Atoi(s)
	if err != nil || i <= 0 {
		return fallback
	}
	return i
}
