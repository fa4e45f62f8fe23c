package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/benvon/questlog/internal/apperr"
	logpkg "github.com/benvon/questlog/internal/logger"
)

const maxErrorMessageLength = 200

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage strips control characters and bounds the length
func sanitizeErrorMessage(message string) string {
	return logpkg.SanitizeString(message, maxErrorMessageLength)
}

// respondJSONError sends an error JSON response with a sanitized message
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizeErrorMessage(message),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondAppError maps the error taxonomy onto HTTP statuses.
// Persistence and computation details stay in the server log.
func respondAppError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	switch {
	case apperr.IsNotFound(err):
		respondJSONError(w, http.StatusNotFound, "Not Found", err.Error())
	case apperr.IsValidation(err):
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
	case apperr.IsPersistence(err):
		logger.Error("request_persistence_failed", zap.String("op", op), zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Storage is unavailable, try again later")
	default:
		logger.Error("request_failed", zap.String("op", op), zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", fmt.Sprintf("Failed to %s", op))
	}
}

// decodeJSON reads the request body into v, rejecting unknown fields.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large",
				fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return false
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body: "+err.Error())
		return false
	}
	return true
}
