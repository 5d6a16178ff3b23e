package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bryanchriswhite/RegionShot/internal/encode"
	"github.com/bryanchriswhite/RegionShot/internal/logger"
	"github.com/bryanchriswhite/RegionShot/internal/runner"
)

// CaptureFunc submits a capture request to the run loop and blocks until it
// completes. A nil image with a nil error means the user cancelled.
type CaptureFunc func(ctx context.Context) (*image.RGBA, error)

// StatusFunc reports backend availability for the status endpoint.
type StatusFunc func() map[string]string

// Server exposes the HTTP trigger surface: remote callers can request a
// capture and receive the encoded image back.
type Server struct {
	router  *mux.Router
	capture CaptureFunc
	status  StatusFunc
}

// NewServer creates a new API server around the given capture trigger.
func NewServer(capture CaptureFunc, status StatusFunc) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		capture: capture,
		status:  status,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/capture", s.handleCapture).Methods("POST")
	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start starts the HTTP server on localhost only; the trigger surface is not
// meant to be reachable from other hosts.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	logger.WithComponent("api").Info().Str("addr", addr).Msg("API server listening")
	return http.ListenAndServe(addr, s.router)
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")

	img, err := s.capture(r.Context())
	switch {
	case errors.Is(err, runner.ErrBusy):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	case img == nil:
		// User cancelled the selection.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", encode.ContentType(format))
	if err := encode.Encode(w, img, format); err != nil {
		logger.WithComponent("api").Error().Err(err).Msg("Failed to encode capture response")
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var backends map[string]string
	if s.status != nil {
		backends = s.status()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"backends": backends,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
