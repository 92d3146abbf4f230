// Package server exposes the recording store over HTTP for remote
// monitoring and maintenance of a deployed unit.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ecglab/recstore/internal/service"
	"github.com/ecglab/recstore/internal/store"
)

// Server is the HTTP remote-control server around a service instance.
type Server struct {
	svc  *service.Service
	port string
}

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// EraseResponse is the JSON body for a completed erase.
type EraseResponse struct {
	Name    string `json:"name"`
	Removed bool   `json:"removed"`
}

// New creates a server around the given service.
func New(svc *service.Service, port string) *Server {
	return &Server{svc: svc, port: port}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/recordings", s.handleList)
	mux.HandleFunc("GET /api/recordings/{name}", s.handleDump)
	mux.HandleFunc("DELETE /api/recordings/{name}", s.handleErase)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	return mux
}

// Start runs the HTTP server. Blocks until the listener fails.
func (s *Server) Start() error {
	addr := ":" + s.port
	slog.Info("recstore server listening", "addr", addr)

	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Status())
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.List()
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	if entries == nil {
		// Keep the JSON an array, not null.
		entries = []store.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleDump(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	cw := &countingWriter{w: w, header: w.Header()}
	if _, err := s.svc.Dump(name, cw); err != nil {
		if cw.n == 0 {
			writeError(w, http.StatusNotFound, err)
			return
		}
		// Part of the body is already out; log and drop the connection.
		slog.Error("dump failed", "name", name, "error", err)
	}
}

// countingWriter defers the content type until the first byte so failed
// dumps can still answer with a JSON error.
type countingWriter struct {
	w      http.ResponseWriter
	header http.Header
	n      int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.n == 0 {
		c.header.Set("Content-Type", "text/csv")
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func (s *Server) handleErase(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	removed, err := s.svc.Erase(name)
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, fmt.Errorf("no such recording: %s", name))
		return
	}

	writeJSON(w, http.StatusOK, EraseResponse{Name: name, Removed: true})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Reset(); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Status())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
