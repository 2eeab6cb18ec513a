package validate_test

import (
	"math"
	"testing"

	"ferremas/internal/validate"
)

func TestRut(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12345678-5", "12345678-5", true},
		{"11111111-1", "11111111-1", true},
		{"11111112-k", "11111112-K", true}, // lower-case dv normalized
		{"11111117-0", "11111117-0", true},
		{" 22222222-2 ", "22222222-2", true},
		{"12345678-9", "", false}, // wrong check digit
		{"1234567", "", false},    // no dv
		{"abcdefgh-1", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := validate.Rut(tc.in)
		if ok != tc.ok {
			t.Errorf("Rut(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Errorf("Rut(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEmail(t *testing.T) {
	if _, ok := validate.Email("cliente@ferremas.test"); !ok {
		t.Error("valid email rejected")
	}
	for _, bad := range []string{"", "no-at-sign", "a@b", "x@y."} {
		if _, ok := validate.Email(bad); ok {
			t.Errorf("Email(%q) should fail", bad)
		}
	}
}

func TestQtyClamp(t *testing.T) {
	cases := map[int]int{0: 1, -3: 1, 1: 1, 5: 5, 50: 50, 51: 50}
	for in, want := range cases {
		if got := validate.Qty(in); got != want {
			t.Errorf("Qty(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestAmount(t *testing.T) {
	for _, v := range []float64{0, 0.5, 45990, 115005} {
		if !validate.Amount(v) {
			t.Errorf("Amount(%v) should pass", v)
		}
	}
	for _, v := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if validate.Amount(v) {
			t.Errorf("Amount(%v) should fail", v)
		}
	}
}

func TestPassword(t *testing.T) {
	if !validate.Password("Passw0rd!") {
		t.Error("strong password rejected")
	}
	for _, bad := range []string{"short1!", "alllowercase1!", "NODIGITS!!", "NoSymbol12"} {
		if validate.Password(bad) {
			t.Errorf("Password(%q) should fail", bad)
		}
	}
}
