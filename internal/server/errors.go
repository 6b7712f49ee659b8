// Package server provides the HTTP REST API for the capacity planner.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/capacity-planner/internal/forecast"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validation *ErrValidation
	var invalid *forecast.InvalidInputError
	var notFound *forecast.NotFoundError

	switch {
	case errors.As(err, &validation), errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
