package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"cashflow/internal/core"
)

// paramError describes a malformed query parameter; it becomes a 400.
type paramError struct {
	Name  string
	Value string
	Want  string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Name, e.Value, e.Want)
}

// QueryParser reads typed query parameters, keeping the first failure.
type QueryParser struct {
	query url.Values
	err   error
}

func NewQueryParser(query url.Values) *QueryParser {
	return &QueryParser{query: query}
}

// Err returns the first parameter error, if any.
func (p *QueryParser) Err() error {
	return p.err
}

func (p *QueryParser) raw(name string) string {
	return strings.TrimSpace(p.query.Get(name))
}

func (p *QueryParser) fail(name, value, want string) {
	if p.err == nil {
		p.err = &paramError{Name: name, Value: value, Want: want}
	}
}

// Month parses a YYYY-MM parameter, returning def when absent.
func (p *QueryParser) Month(name string, def core.Month) core.Month {
	v := p.raw(name)
	if v == "" {
		return def
	}
	m, err := core.ParseMonth(v)
	if err != nil {
		p.fail(name, v, "must be YYYY-MM")
		return def
	}
	return m
}

// NonNegativeInt parses a whole number of at least zero, returning def
// when absent.
func (p *QueryParser) NonNegativeInt(name string, def int) int {
	v := p.raw(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		p.fail(name, v, "must be a non-negative integer")
		return def
	}
	return n
}

// BoundedInt is NonNegativeInt with an inclusive upper bound.
func (p *QueryParser) BoundedInt(name string, def, max int) int {
	v := p.raw(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > max {
		p.fail(name, v, fmt.Sprintf("must be an integer between 0 and %d", max))
		return def
	}
	return n
}

// Rate parses a decimal fraction between 0 and 1, returning def when absent.
func (p *QueryParser) Rate(name string, def decimal.Decimal) decimal.Decimal {
	v := p.raw(name)
	if v == "" {
		return def
	}
	r, err := decimal.NewFromString(v)
	if err != nil || r.IsNegative() || r.GreaterThan(decimal.NewFromInt(1)) {
		p.fail(name, v, "must be a decimal between 0 and 1")
		return def
	}
	return r
}
