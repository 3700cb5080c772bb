// Package api exposes internal/runservice as a REST API: a gorilla/mux
// router wrapping JSON handlers over one orchestration service.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dronelab/autodrone/internal/runservice"
	"github.com/dronelab/autodrone/internal/transport/websocket"
)

// Server is the REST API surface over a runservice.Service. A hub is
// optional; when present, state-changing endpoints also broadcast the
// run's new summary to its websocket subscribers.
type Server struct {
	service *runservice.Service
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer builds a Server and registers its routes. hub may be nil.
func NewServer(service *runservice.Service, hub *websocket.Hub) *Server {
	s := &Server{service: service, hub: hub, router: mux.NewRouter()}
	s.setupRoutes()
	return s
}

func (s *Server) broadcastState(runID string, summary *runservice.RunSummary) {
	if s.hub != nil {
		s.hub.BroadcastState(runID, summary)
	}
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/runs", s.handleCreateRun).Methods("POST")
	api.HandleFunc("/runs/{id}/tick", s.handleTick).Methods("POST")
	api.HandleFunc("/runs/{id}/run", s.handleRunToCompletion).Methods("POST")
	api.HandleFunc("/runs/{id}/rewind", s.handleRewind).Methods("POST")
	api.HandleFunc("/runs/{id}/state", s.handleGetState).Methods("GET")
	api.HandleFunc("/runs/{id}/events", s.handleGetEvents).Methods("GET")
	api.HandleFunc("/runs/{id}/score", s.handleScore).Methods("GET")

	api.HandleFunc("/levels", s.handleListLevels).Methods("GET")
	api.HandleFunc("/levels/{name}", s.handleGetLevel).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run")
	if runID == "" {
		http.Error(w, "run parameter required", http.StatusBadRequest)
		return
	}
	if _, err := s.service.GetState(r.Context(), runID); err != nil {
		http.Error(w, "invalid run", http.StatusNotFound)
		return
	}
	if s.hub == nil {
		http.Error(w, "websocket hub not configured", http.StatusServiceUnavailable)
		return
	}
	s.hub.ServeWS(w, r, runID)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
