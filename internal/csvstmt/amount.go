package csvstmt

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	numericPattern = regexp.MustCompile(`^-?(\d+(\.\d+)?|\.\d+)$`)
	// Optional sign, parens, currency symbol, grouped digits, optional decimals.
	amountShapePattern = regexp.MustCompile(`^[-+]?\(?[-+]?\s*[$£€¥₹]?\s*[-+]?\d[\d,]*(\.\d+)?\)?-?$`)
	currencyReplacer   = strings.NewReplacer(
		"$", "", "£", "", "€", "", "¥", "", "₹", "",
		",", "", " ", "", "\u00a0", "", "\t", "",
	)
)

// parseAmount converts a statement amount cell to a signed decimal.
// "(12.50)" and "12.50-" are negative. ok is false when the cell is blank
// or not numeric after cleaning.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = currencyReplacer.Replace(s)
	if strings.HasSuffix(s, "-") {
		negative = !negative
		s = strings.TrimSuffix(s, "-")
	}
	s = strings.TrimPrefix(s, "+")
	if strings.HasPrefix(s, "-") && strings.HasPrefix(s[1:], "-") {
		return decimal.Zero, false
	}

	if !numericPattern.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Abs().Neg()
	}
	return d, true
}

// looksLikeAmount reports whether s has the shape of a money value.
func looksLikeAmount(s string) bool {
	return amountShapePattern.MatchString(strings.TrimSpace(s))
}
