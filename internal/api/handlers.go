package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/dronelab/autodrone/internal/runservice"
)

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Level  string `json:"level"`
		Source string `json:"source"`
		Syntax string `json:"syntax"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	syntax := runservice.SyntaxBlock
	if req.Syntax == "brace" {
		syntax = runservice.SyntaxBrace
	}

	summary, err := s.service.CreateRun(r.Context(), req.Level, req.Source, syntax)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.broadcastState(summary.ID, summary)
	respondJSON(w, http.StatusCreated, summary)
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	summary, err := s.service.Tick(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.broadcastState(id, summary)
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleRunToCompletion(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	maxTicks := 10000
	if v := r.URL.Query().Get("max_ticks"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			maxTicks = n
		}
	}
	summary, err := s.service.RunToCompletion(r.Context(), id, maxTicks)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.broadcastState(id, summary)
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleRewind(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		Ticks int `json:"ticks"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	summary, err := s.service.Rewind(r.Context(), id, req.Ticks)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.broadcastState(id, summary)
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	summary, err := s.service.GetState(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	events, err := s.service.GetEvents(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, events)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	result, err := s.service.Score(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListLevels(w http.ResponseWriter, r *http.Request) {
	names, err := s.service.ListLevels(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, names)
}

func (s *Server) handleGetLevel(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	lvl, err := s.service.GetLevel(r.Context(), name)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, lvl)
}
