package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Strob0t/lightlogger/internal/adapter/http/envelope"
	"github.com/Strob0t/lightlogger/internal/domain"
	"github.com/Strob0t/lightlogger/internal/domain/value"
)

const msgInvalidJSON = "Invalid JSON body"

// readValue reads the request body, bounded by limit, into a tagged value.
// It writes the error response itself and reports false on failure.
func readValue(w http.ResponseWriter, r *http.Request, limit int64) (value.Value, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			envelope.Error(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return value.Value{}, false
		}
		envelope.Error(w, http.StatusBadRequest, msgInvalidJSON)
		return value.Value{}, false
	}
	v, err := value.Parse(data)
	if err != nil {
		envelope.Error(w, http.StatusBadRequest, msgInvalidJSON)
		return value.Value{}, false
	}
	return v, true
}

// readObject is readValue restricted to JSON objects.
func readObject(w http.ResponseWriter, r *http.Request, limit int64) (value.Value, bool) {
	v, ok := readValue(w, r, limit)
	if !ok {
		return v, false
	}
	if v.Kind() != value.Map {
		envelope.Error(w, http.StatusBadRequest, msgInvalidJSON)
		return v, false
	}
	return v, true
}

// stringField returns the string member key of obj, or "".
func stringField(obj value.Value, key string) string {
	s, _ := obj.Field(key).AsString()
	return s
}

// writeDomainError maps domain sentinels onto status codes. notFoundMsg is
// used for domain.ErrNotFound.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		if len(verr.Details) > 0 {
			envelope.ErrorWith(w, http.StatusBadRequest, verr.Message, verr.Details, nil)
			return
		}
		envelope.Error(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, domain.ErrNotFound):
		envelope.Error(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrConflict):
		envelope.Error(w, http.StatusConflict, "Resource already exists")
	case errors.Is(err, domain.ErrUnauthorized):
		envelope.Error(w, http.StatusUnauthorized, "Unauthorized")
	default:
		writeInternalError(w, r, err)
	}
}

// writeInternalError logs err and returns it to the client as a 500.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "request failed", "error", err)
	envelope.Error(w, http.StatusInternalServerError, err.Error())
}
