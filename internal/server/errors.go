package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrRunInProgress is returned while another pipeline batch holds the store.
var ErrRunInProgress = errors.New("a pipeline run is already in progress")

// ErrInvalidCredentials indicates a wrong operator username or password.
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid username or password"
}

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
	var invalid *ErrInvalidCredentials
	var validation *ErrValidation
	switch {
	case errors.As(err, &invalid):
		return http.StatusUnauthorized
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, ErrRunInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// validationMessage reports the first failed field of a validator error.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return (&ErrValidation{Field: fe.Field(), Message: fe.Tag()}).Error()
	}
	return "validation error: invalid request"
}
