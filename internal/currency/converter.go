// Package currency converts amounts into the base currency using an
// explicit rate table.
package currency

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"cashflow/internal/core"
)

var (
	ErrMissingRate = errors.New("no exchange rate for currency")
	ErrInvalidRate = errors.New("invalid exchange rate")
)

// DefaultRates mirrors the rates the dashboard ships with: amounts are
// entered in HKD and reported in CNY.
func DefaultRates() map[core.Currency]decimal.Decimal {
	return map[core.Currency]decimal.Decimal{
		core.HKD: decimal.RequireFromString("0.92"),
	}
}

// Converter converts Money into a base currency. Rates express how many
// base units one unit of the foreign currency is worth. It is immutable
// once built and safe for concurrent use.
type Converter struct {
	base  core.Currency
	rates map[core.Currency]decimal.Decimal
}

// NewConverter builds a converter. The base currency always has rate 1.
func NewConverter(base core.Currency, rates map[core.Currency]decimal.Decimal) (*Converter, error) {
	if !base.IsValid() {
		return nil, fmt.Errorf("base currency: %w: %q", core.ErrUnknownCurrency, string(base))
	}
	table := make(map[core.Currency]decimal.Decimal, len(rates)+1)
	for c, r := range rates {
		if !c.IsValid() {
			return nil, fmt.Errorf("%w: %q", core.ErrUnknownCurrency, string(c))
		}
		if !r.IsPositive() {
			return nil, fmt.Errorf("%w: %s=%s", ErrInvalidRate, c, r)
		}
		table[c] = r
	}
	table[base] = decimal.NewFromInt(1)
	return &Converter{base: base, rates: table}, nil
}

// Base returns the base currency.
func (c *Converter) Base() core.Currency { return c.base }

// Rate returns the rate for cur.
func (c *Converter) Rate(cur core.Currency) (decimal.Decimal, error) {
	r, ok := c.rates[cur]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrMissingRate, cur)
	}
	return r, nil
}

// ToBase converts m to the base currency, rounding half away from zero.
func (c *Converter) ToBase(m core.Money) (core.Money, error) {
	r, err := c.Rate(m.Currency)
	if err != nil {
		return core.Money{}, err
	}
	minor := decimal.NewFromInt(m.Minor).Mul(r).Round(0).IntPart()
	return core.NewMoney(minor, c.base), nil
}

// Rates returns a copy of the rate table.
func (c *Converter) Rates() map[core.Currency]decimal.Decimal {
	out := make(map[core.Currency]decimal.Decimal, len(c.rates))
	for k, v := range c.rates {
		out[k] = v
	}
	return out
}

// String renders the table in the same form ParseRates accepts.
func (c *Converter) String() string {
	keys := make([]string, 0, len(c.rates))
	for k := range c.rates {
		if k != c.base {
			keys = append(keys, string(k))
		}
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+c.rates[core.Currency(k)].String())
	}
	return strings.Join(parts, ",")
}

// ParseRates parses a "HKD=0.92,USD=7.10" list. Empty input yields an
// empty table.
func ParseRates(s string) (map[core.Currency]decimal.Decimal, error) {
	out := make(map[core.Currency]decimal.Decimal)
	s = strings.TrimSpace(s)
	if s == "" {
		return out, nil
	}
	for _, pair := range strings.Split(s, ",") {
		code, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRate, pair)
		}
		cur, err := core.ParseCurrency(code)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, code)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil || !rate.IsPositive() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRate, pair)
		}
		out[cur] = rate
	}
	return out, nil
}
