// Package api exposes the detector over HTTP so CI systems can scan
// manifests without a local checkout.
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/k8sec/kubegate/internal/detector"
	"github.com/k8sec/kubegate/internal/loader"
	"github.com/k8sec/kubegate/internal/logger"
	"github.com/k8sec/kubegate/internal/types"
)

// maxBodySize caps scan request bodies at 10 MiB
const maxBodySize = 10 << 20

// Server represents the API server
type Server struct {
	router *mux.Router
}

// NewServer creates a new API server instance
func NewServer() *Server {
	s := &Server{
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

// routes sets up the API routes
func (s *Server) routes() {
	s.router.HandleFunc("/api/v1/health", s.healthCheck).Methods("GET")
	s.router.HandleFunc("/api/v1/scan", s.scan).Methods("POST")
}

// Handler returns the underlying HTTP handler, used by tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the API server
func (s *Server) Start(addr string) error {
	logger.Info().Str("addr", addr).Msg("starting server")
	return http.ListenAndServe(addr, s.router)
}

// healthCheck handles the health check endpoint
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// scan accepts raw YAML in the request body and returns detector findings
func (s *Server) scan(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "failed to read request body",
		})
		return
	}
	if len(body) == 0 {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "empty request body",
		})
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "request"
	}

	docs := loader.Load(bytes.NewReader(body))
	findings := detector.Detect(name, docs)

	result := types.Result{
		Source:       name,
		Success:      len(findings) == 0,
		Timestamp:    time.Now().Unix(),
		Findings:     findings,
		FilesScanned: 1,
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}
