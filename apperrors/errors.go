package apperrors

import (
	"errors"
	"net/http"
)

// Error types for domain errors
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

type DatabaseError struct {
	Message string
	Err     error
}

func (e *DatabaseError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// UnavailableError marks an external collaborator (price source, scoring
// model) that could not be reached.
type UnavailableError struct {
	Service string
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return e.Service + " unavailable: " + e.Err.Error()
	}
	return e.Service + " unavailable"
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Constructors
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

func NewNotFoundError(msg string) error {
	return &NotFoundError{Message: msg}
}

func NewDatabaseError(msg string, err error) error {
	return &DatabaseError{Message: msg, Err: err}
}

func NewUnavailableError(service string, err error) error {
	return &UnavailableError{Service: service, Err: err}
}

// Type checks
func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsNotFoundError(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsDatabaseError(err error) bool {
	var e *DatabaseError
	return errors.As(err, &e)
}

func IsUnavailableError(err error) bool {
	var e *UnavailableError
	return errors.As(err, &e)
}

// Mapper maps domain errors to HTTP status codes
type Mapper struct{}

func NewMapper() *Mapper {
	return &Mapper{}
}

func (m *Mapper) MapErrorToHttp(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	switch {
	case IsValidationError(err):
		return http.StatusBadRequest, err.Error()
	case IsNotFoundError(err):
		return http.StatusNotFound, err.Error()
	case IsUnavailableError(err):
		return http.StatusServiceUnavailable, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
