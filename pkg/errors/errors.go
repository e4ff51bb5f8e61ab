// Package errors defines the sentinel errors shared by the indexing and
// retrieval services and maps them onto HTTP status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotReady means no index snapshot has been built or loaded yet.
	ErrNotReady = errors.New("index not ready")
	// ErrEmptyQuery means the query normalised to zero searchable terms.
	ErrEmptyQuery = errors.New("no searchable terms")
	// ErrCorpusIO covers failures reading or writing the persisted index or
	// the source document batch.
	ErrCorpusIO = errors.New("corpus i/o failure")
	// ErrMalformedDocument marks a single source record that had to be
	// repaired with default values.
	ErrMalformedDocument = errors.New("malformed document")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrTimeout           = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// CorpusIO wraps err as an ErrCorpusIO for the named operation.
func CorpusIO(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrCorpusIO, err)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrEmptyQuery):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotReady), errors.Is(err, ErrCorpusIO):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
