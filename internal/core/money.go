// Package core provides the cash-flow domain model and money handling.
//
// This file contains functions for parsing monetary amounts from strings
// and formatting minor units for display.
package core

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
)

// Money is an amount of minor currency units (e.g. cents) in a currency.
type Money struct {
	Minor    int64    `json:"minor"`
	Currency Currency `json:"currency"`
}

// NewMoney creates a Money value.
func NewMoney(minor int64, c Currency) Money {
	return Money{Minor: minor, Currency: c}
}

// Validate reports an error for negative amounts or unknown currencies.
func (m Money) Validate() error {
	if m.Minor < 0 {
		return ErrInvalidAmount
	}
	if !m.Currency.IsValid() {
		return ErrUnknownCurrency
	}
	return nil
}

// Format renders the amount with the currency symbol and thousands separators,
// e.g. "¥12,345.60".
func (m Money) Format() string {
	return FormatMinor(m.Minor, m.Currency)
}

// FormatMinor formats minor units in the given currency.
func FormatMinor(minor int64, c Currency) string {
	neg := minor < 0
	if neg {
		minor = -minor
	}
	major := minor / 100
	rem := minor % 100
	s := c.Symbol() + humanize.Comma(major) + "." + twoDigits(rem)
	if neg {
		return "-" + s
	}
	return s
}

func twoDigits(v int64) string {
	if v < 10 {
		return "0" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}

// ParseDecimalToMinor converts a decimal string to minor units with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Zero is accepted; negative
// values and malformed input return ErrInvalidAmount.
//
// Examples:
//
//	ParseDecimalToMinor("12.34")  -> 1234, nil
//	ParseDecimalToMinor("12,34")  -> 1234, nil
//	ParseDecimalToMinor("12.345") -> 1235, nil (rounds up)
//	ParseDecimalToMinor("12.344") -> 1234, nil (rounds down)
func ParseDecimalToMinor(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv >= maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
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
	return iv*100 + frac, nil
}
