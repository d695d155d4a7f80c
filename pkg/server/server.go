// Package server exposes generated recap documents over a read-only JSON
// API. It serves the static output of the last batch run; it never
// recomputes recaps.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/boozer-app/recap/internal/logger"
	"github.com/boozer-app/recap/pkg/recap"
)

// Server provides the HTTP API over one run's recap documents.
type Server struct {
	global *recap.GlobalRecap
	recaps []recap.UserRecap
	byUser map[int64]*recap.UserRecap
	port   int
	log    *logrus.Entry
}

// New creates a server over the given documents.
func New(global *recap.GlobalRecap, recaps []recap.UserRecap, port int, log *logrus.Entry) *Server {
	if port == 0 {
		port = 8080
	}
	byUser := make(map[int64]*recap.UserRecap, len(recaps))
	for i := range recaps {
		byUser[recaps[i].UserID] = &recaps[i]
	}
	return &Server{
		global: global,
		recaps: recaps,
		byUser: byUser,
		port:   port,
		log:    log,
	}
}

// Handler returns the route mux, split out so tests can drive it with
// httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/recap/global", s.handleGlobal)
	mux.HandleFunc("/api/v1/recap/users", s.handleUsers)
	mux.HandleFunc("/api/v1/recap/users/", s.handleUser)
	return mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.log.WithField("addr", addr).Info("recap server listening")
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGlobal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	logger.WithRequest(s.log, r).Debug("serving global recap")
	writeJSON(w, http.StatusOK, s.global)
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  s.recaps,
		"count": len(s.recaps),
	})
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/v1/recap/users/")
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	// Inactive users have no recap; they 404 rather than serving an
	// empty document.
	rec, ok := s.byUser[userID]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no recap for user"})
		return
	}
	logger.WithRequest(s.log, r).WithField("user_id", userID).Debug("serving user recap")
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
