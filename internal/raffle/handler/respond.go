package handler

import (
	"encoding/json"
	"net/http"

	dErrors "raffle/pkg/domain-errors"
)

type errorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message,omitempty"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// writeError centralizes domain error translation to HTTP responses so every
// endpoint returns the same JSON error envelope, diagnostic fields included.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorResponse{
		Error:  string(code),
		Fields: dErrors.FieldsOf(err),
	}
	if code != dErrors.CodeInternal {
		body.Message = err.Error()
	}
	writeJSON(w, dErrors.ToHTTPStatus(code), body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
