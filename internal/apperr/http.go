// internal/apperr/http.go
package apperr

import (
	"encoding/json"
	"net/http"

	"finance-predictor/internal/logging"
)

// Envelope is the JSON body of every error response.
type Envelope struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// WriteJSON encodes v with the given status. Encoding failures are logged
// with the request-scoped logger; the status line has already been sent.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).WithError(err).WithField("status", status).Error("encode response")
	}
}

// Write logs err with the request-scoped logger and writes the error envelope.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	entry := logging.FromContext(r.Context()).WithError(err).WithField("status", status)
	switch {
	case status >= 500:
		entry.Error("request failed")
	case status == StatusClientClosedRequest:
		entry.Info("request cancelled")
	default:
		entry.Warn("request rejected")
	}
	WriteJSON(w, r, status, Envelope{Error: PublicMessage(err), Status: status})
}

// FromStatus rebuilds a classified error from a decoded envelope.
func FromStatus(status int, message string) *Error {
	kind := KindInternal
	switch {
	case status == http.StatusBadRequest:
		kind = KindInvalid
	case status == http.StatusNotFound:
		kind = KindNotFound
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{Kind: kind, Message: message}
}
