package sanitizer

import (
	"regexp"
	"strconv"
	"strings"
)

var amountRe = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)*`)

// ParseAmount reads the first number in a money amount such as "$1,250.50",
// "150 USD", "Rs. 300" or "₹ 300". ok is false when no number can be read.
func ParseAmount(raw string) (float64, bool) {
	if strings.Contains(raw, "%") {
		return 0, false
	}

	match := amountRe.FindString(raw)
	if match == "" {
		return 0, false
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}
