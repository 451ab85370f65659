package httpext

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ErrorResponse is the JSON body of every API error
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// JsonError writes a JSON error response with the specified status code
func JsonError(w http.ResponseWriter, message string, code int) {
	WriteJSON(w, code, ErrorResponse{Error: message})
}

// WriteJSON encodes v as the response body with the given status code
func WriteJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		// headers are already sent, all we can do is record it
		log.Error().Err(err).Int("status", code).Msg("Failed to encode JSON response")
	}
}
