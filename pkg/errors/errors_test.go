package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not ready", fmt.Errorf("search: %w", ErrNotReady), http.StatusServiceUnavailable},
		{"empty query", ErrEmptyQuery, http.StatusUnprocessableEntity},
		{"not found", ErrDocumentNotFound, http.StatusNotFound},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"timeout", ErrTimeout, http.StatusGatewayTimeout},
		{"corpus io", CorpusIO("loading segment", errors.New("disk gone")), http.StatusServiceUnavailable},
		{"app error wins", New(ErrNotReady, http.StatusTeapot, "brewing"), http.StatusTeapot},
		{"unknown", context.Canceled, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCorpusIOKeepsCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := CorpusIO("writing segment", cause)
	if !errors.Is(err, ErrCorpusIO) {
		t.Errorf("expected ErrCorpusIO in chain: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause in chain: %v", err)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrInvalidInput, http.StatusBadRequest, "limit %d out of range", -1)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("AppError should unwrap to its sentinel")
	}
	if err.Error() != "invalid input: limit -1 out of range" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
