// Package httpx holds the JSON response helpers shared by every handler.
// All response bodies in the API go through JSON or JSONError, so the
// Content-Type header and the error envelope shape are set in one place.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the wire shape of every error body: a snake_case code
// plus optional structured details (field violations, offender ids).
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// JSON writes payload with the given status. The body is marshalled
// before the status line goes out so an encode failure never produces a
// 200 with half a body.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// the client went away; nothing left to do
		_ = err
	}
}

// JSONError writes an ErrorResponse with the given status and code.
func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}
