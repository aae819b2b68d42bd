package core

import "strings"

// Currency is an ISO 4217 code supported by the dashboard.
type Currency string

const (
	CNY Currency = "CNY"
	HKD Currency = "HKD"
	USD Currency = "USD"
	EUR Currency = "EUR"
)

// Currencies lists every supported currency.
func Currencies() []Currency {
	return []Currency{CNY, HKD, USD, EUR}
}

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", ErrUnknownCurrency
	}
	return c, nil
}

// IsValid reports whether c is a supported currency.
func (c Currency) IsValid() bool {
	switch c {
	case CNY, HKD, USD, EUR:
		return true
	default:
		return false
	}
}

// Symbol returns the display symbol for the currency.
func (c Currency) Symbol() string {
	switch c {
	case CNY:
		return "¥"
	case HKD:
		return "HK$"
	case USD:
		return "$"
	case EUR:
		return "€"
	default:
		return string(c) + " "
	}
}

// DisplayName returns a human readable currency name.
func (c Currency) DisplayName() string {
	switch c {
	case CNY:
		return "Chinese Yuan"
	case HKD:
		return "Hong Kong Dollar"
	case USD:
		return "US Dollar"
	case EUR:
		return "Euro"
	default:
		return string(c)
	}
}
