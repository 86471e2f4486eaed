package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/orneryd/newsvec/pkg/search"
)

type searchRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "No search query provided")
		return
	}

	start := time.Now()
	results, err := s.svc.Search(r.Context(), req.Query)
	s.metrics.observeSearch(time.Since(start), err)
	if err != nil {
		switch {
		case errors.Is(err, search.ErrEmptyQuery):
			writeError(w, http.StatusBadRequest, "No search query provided")
		case errors.Is(err, search.ErrNoIndex):
			writeError(w, http.StatusInternalServerError, "Search index not available")
		default:
			writeError(w, http.StatusInternalServerError, "Search failed")
		}
		return
	}
	if results == nil {
		results = []search.Result{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	count, err := s.svc.Rebuild(r.Context())
	s.metrics.observeRebuild(err)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to rebuild index: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Index rebuilt with %d articles", count),
	})
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": ServiceName,
	})
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a machine-readable error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
