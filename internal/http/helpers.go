package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"cashflow/internal/core"
	"cashflow/internal/dataset"
	"cashflow/internal/expense"
	"cashflow/internal/forecast"
	"cashflow/internal/loan"
	"cashflow/internal/services"
)

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Status: status})
}

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrLoanNotFound):
		return http.StatusNotFound
	case errors.Is(err, forecast.ErrInvalidHorizon),
		errors.Is(err, services.ErrHorizonTooLarge),
		errors.Is(err, loan.ErrInvalidMonths),
		errors.Is(err, expense.ErrInvalidMonths):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNoSchedule),
		errors.Is(err, dataset.ErrInvalidData),
		isRecordError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func isRecordError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidMonth,
		core.ErrInvalidRate,
		core.ErrUnknownCurrency,
		core.ErrUnknownPattern,
		core.ErrUnknownCategory,
		core.ErrUnknownLoanType,
		core.ErrUnknownLedger,
		core.ErrNegativeTerms,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
