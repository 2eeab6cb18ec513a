package validate

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reRut   = regexp.MustCompile(`^[0-9]{7,8}-[0-9Kk]$`)
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// Rut validates a Chilean tax id in NNNNNNNN-D form, including the mod-11
// check digit.
func Rut(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !reRut.MatchString(s) {
		return "", false
	}
	parts := strings.SplitN(s, "-", 2)
	body, dv := parts[0], parts[1]

	sum, factor := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}
	rem := 11 - (sum % 11)
	want := ""
	switch rem {
	case 11:
		want = "0"
	case 10:
		want = "K"
	default:
		want = strconv.Itoa(rem)
	}
	return s, dv == want
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 60 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 60 {
		return "", false
	}
	return s, true
}

// Address requires non-blank free text; checkout rejects blanks before the
// engine is ever invoked.
func Address(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 200 {
		return "", false
	}
	return s, true
}

// Qty clamps a requested cart quantity into the accepted window.
func Qty(n int) int {
	if n < 1 {
		return 1
	}
	if n > 50 {
		return 50
	} // clamp to avoid abuse
	return n
}

// ID validates a simple resource identifier (product/order/user ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Amount accepts a finite, non-negative money value.
func Amount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// Password enforces a simple complexity window for login/registration.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 40 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
