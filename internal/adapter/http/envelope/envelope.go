// Package envelope writes the JSON response envelope shared by handlers and
// middleware: {success, message, data} on success and
// {success:false, message, errors?} on failure.
package envelope

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Body is the wire shape of every JSON response.
type Body struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

// OK writes a success envelope. A nil data is sent as null.
func OK(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, successBody{Success: true, Message: message, Data: data})
}

// Error writes a failure envelope without details.
func Error(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Body{Message: message})
}

// ErrorWith writes a failure envelope with itemized errors and optional data.
func ErrorWith(w http.ResponseWriter, status int, message string, errs, data any) {
	WriteJSON(w, status, Body{Message: message, Errors: errs, Data: data})
}

// successBody always carries the data member, even when it is null.
type successBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}
