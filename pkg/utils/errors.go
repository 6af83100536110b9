package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/stitts-dev/fpl-optimizer/internal/optimizer"
)

type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func NewAppError(code string, message string, details ...string) *AppError {
	err := &AppError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common error codes
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeInternal             = "INTERNAL_ERROR"
	ErrCodeInfeasible           = "INFEASIBLE"
	ErrCodeNoData               = "NO_DATA"
	ErrCodeInsufficientPosition = "INSUFFICIENT_POSITION"
	ErrCodeTimeout              = "TIMEOUT"
	ErrCodeRateLimited          = "RATE_LIMITED"
)

// FromError maps an engine failure to its HTTP status and AppError
func FromError(err error) (int, *AppError) {
	switch {
	case errors.Is(err, optimizer.ErrInvalidRequest):
		return http.StatusBadRequest, NewAppError(ErrCodeValidation, "Invalid optimization request", err.Error())
	case errors.Is(err, optimizer.ErrInfeasible):
		return http.StatusUnprocessableEntity, NewAppError(ErrCodeInfeasible, "No squad satisfies the constraints", err.Error())
	case errors.Is(err, optimizer.ErrNoData):
		return http.StatusNotFound, NewAppError(ErrCodeNoData, "Player data unavailable", err.Error())
	case errors.Is(err, optimizer.ErrInsufficientPosition):
		return http.StatusInternalServerError, NewAppError(ErrCodeInsufficientPosition, "Squad cannot fill the formation", err.Error())
	case errors.Is(err, optimizer.ErrTimeout):
		return http.StatusGatewayTimeout, NewAppError(ErrCodeTimeout, "Optimization timed out", err.Error())
	}
	return http.StatusInternalServerError, NewAppError(ErrCodeInternal, "Internal server error", err.Error())
}
