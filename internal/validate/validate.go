package validate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// US ZIP: 5 digits or ZIP+4
	reZIP      = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	reEmail    = regexp.MustCompile(`\S+@\S+\.\S+`)
	rePhone    = regexp.MustCompile(`^\d{10}$`)
	reCard     = regexp.MustCompile(`^\d{16}$`)
	reExp      = regexp.MustCompile(`^\d{2}/\d{2}$`)
	reCVV      = regexp.MustCompile(`^\d{3,4}$`)
	reNonDigit = regexp.MustCompile(`\D`)
	reSpace    = regexp.MustCompile(`\s`)
	reID       = regexp.MustCompile(`^[0-9]{1,9}$`)
	reCategory = regexp.MustCompile(`^[A-Za-z0-9 '&-]{1,50}$`)
)

// Required reports whether s has anything left after trimming.
func Required(s string) bool { return strings.TrimSpace(s) != "" }

func Email(s string) bool { return reEmail.MatchString(s) }

// Phone checks the digits-only form of s.
func Phone(s string) bool { return rePhone.MatchString(Digits(s)) }

func ZIP(s string) bool { return reZIP.MatchString(s) }

// CardNumber checks s with whitespace stripped.
func CardNumber(s string) bool { return reCard.MatchString(reSpace.ReplaceAllString(s, "")) }

// ExpDate checks the MM/YY shape only.
func ExpDate(s string) bool { return reExp.MatchString(s) }

func CVV(s string) bool { return reCVV.MatchString(s) }

// Digits drops every non-digit rune from s.
func Digits(s string) string { return reNonDigit.ReplaceAllString(s, "") }

// ID validates a catalog product id.
func ID(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if !reID.MatchString(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Category validates a catalog category name as used in URLs.
func Category(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reCategory.MatchString(s)
}

func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > 99 {
		return 99
	} // clamp form input
	return n
}

// Price parses a non-negative price filter. Empty input is not ok.
func Price(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 12 {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// MaskCard keeps the last four digits of a card number for logs.
func MaskCard(s string) string {
	d := Digits(s)
	if len(d) < 4 {
		return "****"
	}
	return "****-****-****-" + d[len(d)-4:]
}
