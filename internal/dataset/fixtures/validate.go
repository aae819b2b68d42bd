package fixtures

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"cashflow/internal/core"
)

var (
	validate  *validator.Validate
	nonBlank  = regexp.MustCompile(`\S`)
	monthFmts = []string{core.MonthLayout, "2006-01-02"}
)

func init() {
	validate = validator.New()

	// "2025-08" or a full date whose month is used
	_ = validate.RegisterValidation("yearmonth", func(fl validator.FieldLevel) bool {
		_, err := parseBaseMonth(fl.Field().String())
		return err == nil
	})

	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return nonBlank.MatchString(fl.Field().String())
	})

	_ = validate.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		_, err := core.ParseCurrency(fl.Field().String())
		return err == nil
	})
}

func parseBaseMonth(s string) (core.Month, error) {
	s = strings.TrimSpace(s)
	for _, layout := range monthFmts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.MonthOf(t), nil
		}
	}
	return core.Month{}, fmt.Errorf("%w: %q", core.ErrInvalidMonth, s)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fieldErrorToString(e))
	}
	return fmt.Errorf("invalid input: %s", strings.Join(msgs, "; "))
}

func fieldErrorToString(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "yearmonth":
		return fmt.Sprintf("%s must be in YYYY-MM format", e.Field())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", e.Field())
	case "currency":
		return fmt.Sprintf("%s has unknown currency %q", e.Field(), e.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param())
	case "gte":
		return fmt.Sprintf("%s must not be negative", e.Field())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
