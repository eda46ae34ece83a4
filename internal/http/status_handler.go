package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/repository"
)

type StatusHandler struct {
	reporter      repository.StatusReporter
	urlConfigured bool
	timeout       time.Duration
}

func NewStatusHandler(reporter repository.StatusReporter, urlConfigured bool, timeout time.Duration) *StatusHandler {
	return &StatusHandler{
		reporter:      reporter,
		urlConfigured: urlConfigured,
		timeout:       timeout,
	}
}

type StatusResponse struct {
	repository.Diagnostics
	DatabaseURL string `json:"database_url"`
}

func (h *StatusHandler) Root(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "E-commerce Backend is running"})
}

func (h *StatusHandler) Hello(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "Hello from the backend API!"})
}

func (h *StatusHandler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status never fails. Store faults are reported inside the body.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := StatusResponse{
		Diagnostics: h.reporter.Diagnose(ctx),
		DatabaseURL: "not set",
	}
	if h.urlConfigured {
		resp.DatabaseURL = "set"
	}

	respondJSON(w, http.StatusOK, resp)
}
