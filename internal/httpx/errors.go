package httpx

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"bookcatalog/internal/store"
	"bookcatalog/internal/validation"
)

// ErrInvalidJSON is returned by DecodeJSON for bodies that are not a single
// JSON value of the expected shape.
var ErrInvalidJSON = errors.New("invalid JSON body")

// DecodeJSON reads the whole request body into v.
func DecodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}

// WriteError maps the errors shared by every handler to a response. Handlers
// translate their own sentinel errors first and fall through to this.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	if details, ok := validation.Details(err); ok {
		JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", toErrorDetails(details))
		return
	}

	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, ErrInvalidJSON):
		JSONError(w, r, http.StatusBadRequest, "INVALID_JSON", "Request body is not valid JSON", nil)
	case errors.As(err, &maxErr):
		JSONError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", nil)
	case errors.Is(err, store.ErrIntegrityViolation):
		JSONError(w, r, http.StatusBadRequest, "INTEGRITY_VIOLATION", "The data conflicts with existing records", nil)
	default:
		slog.ErrorContext(r.Context(), "unhandled error",
			slog.String("request_id", RequestIDFrom(r)),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

func toErrorDetails(failures []validation.Failure) []ErrorDetail {
	out := make([]ErrorDetail, len(failures))
	for i, f := range failures {
		out[i] = ErrorDetail{Field: f.Field, Message: f.Reason}
	}
	return out
}
