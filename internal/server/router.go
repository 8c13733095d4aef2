package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marketbridge/marketbridge/internal/handlers"
	"github.com/marketbridge/marketbridge/internal/middleware"
)

// NewRouter constructs a ServeMux with the push endpoint and the
// operational routes registered.
func NewRouter(h *handlers.PushHandler) http.Handler {
	mux := http.NewServeMux()

	// The subscription pushes to the root path.
	mux.HandleFunc("/", h.HandlePush)

	// Health endpoints
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}
