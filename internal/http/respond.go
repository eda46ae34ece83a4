package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fjod/storefront/internal/service"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps service errors to an HTTP status and error code.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidIdentifier):
		respondError(w, http.StatusBadRequest, "invalid_identifier", "Invalid product id")
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", "Product not found")
	case errors.Is(err, service.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", "Quantity must be positive")
	case errors.Is(err, service.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "Cart is empty")
	case errors.Is(err, service.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, service.ErrSessionBusy):
		respondError(w, http.StatusConflict, "session_busy", "cart is being modified by another request")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		slog.Error("unhandled service error",
			slog.String("request_id", RequestIDFromContext(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireSessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "session_id is required")
		return "", false
	}
	return sessionID, true
}
