// This file contains money parsing and formatting. Amounts travel as
// integer cents; display strings use the Chilean convention with dots
// grouping thousands and a comma before decimals ("1.234,56").
package core

import (
	"strings"
	"unicode"
)

type Money struct {
	Cents int64
}

// ParseAmount converts a user- or legacy-supplied amount string to Money.
// Dots are thousands separators, the comma is the decimal separator.
// Malformed or empty input coerces to zero instead of failing, keeping
// aggregate views resilient to historical bad rows.
func ParseAmount(s string) Money {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Money{}
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}
		}
	}
	var iv int64
	const maxSafe = (1<<63 - 1) / 100
	for _, r := range intPart {
		iv = iv*10 + int64(r-'0')
		if iv > maxSafe {
			return Money{}
		}
	}
	// First two fractional digits, half-up rounding on the third.
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	cents := iv*100 + frac
	if neg {
		cents = -cents
	}
	return Money{Cents: cents}
}

// Units returns the amount rounded to whole currency units, half away
// from zero. Display and legacy data work in whole pesos.
func (m Money) Units() int64 {
	if m.Cents >= 0 {
		return (m.Cents + 50) / 100
	}
	return -((-m.Cents + 50) / 100)
}

// Add returns m + n.
func (m Money) Add(n Money) Money { return Money{Cents: m.Cents + n.Cents} }

// Sub returns m - n.
func (m Money) Sub(n Money) Money { return Money{Cents: m.Cents - n.Cents} }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.Cents == 0 }

// Format renders the amount as whole units with dot-grouped thousands,
// e.g. 1234500 cents -> "12.345".
func (m Money) Format() string {
	units := m.Units()
	neg := units < 0
	if neg {
		units = -units
	}
	digits := []byte{}
	if units == 0 {
		digits = append(digits, '0')
	}
	for units > 0 {
		digits = append(digits, byte('0'+units%10))
		units /= 10
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	n := len(digits)
	for i := n - 1; i >= 0; i-- {
		b.WriteByte(digits[i])
		if i > 0 && i%3 == 0 {
			b.WriteByte('.')
		}
	}
	return b.String()
}
