package utils

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WriteError sends a JSON error body with the given status code.
func WriteError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(errorResponse{Status: "error", Message: message}); err != nil {
		Logger.WithError(err).Error("failed to encode error response")
	}
}
