// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api exposes the report pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdiddy/report-engine/internal/pipeline"
	"github.com/pdiddy/report-engine/internal/store"
	"github.com/pdiddy/report-engine/pkg/types"
)

// Runner runs the report pipeline. Satisfied by *pipeline.Pipeline; tests
// supply stubs.
type Runner interface {
	Run(ctx context.Context, query string, opts pipeline.Options) *types.Report
}

// Server holds the HTTP handlers' collaborators.
type Server struct {
	log    *slog.Logger
	runner Runner
	store  *store.Store
}

// NewServer builds a Server. The store may be nil; report persistence and
// history endpoints then respond 503.
func NewServer(runner Runner, st *store.Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{log: log, runner: runner, store: st}
}

// Routes assembles the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/v1/reports", s.handleCreate)
	r.Get("/v1/reports", s.handleList)
	r.Get("/v1/reports/{id}", s.handleGet)
	r.Delete("/v1/reports/{id}", s.handleDelete)

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

// createRequest is the POST /v1/reports body.
type createRequest struct {
	Query  string `json:"query"`
	Domain string `json:"domain,omitempty"`
	Style  string `json:"style,omitempty"`
	Sample string `json:"sample,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreate runs the pipeline for the posted query. The response is the
// full Report; a stage failure is still a 200 with the error field set, since
// the pipeline's contract is to return partial results rather than fail.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}

	report := s.runner.Run(r.Context(), req.Query, pipeline.Options{
		Domain: req.Domain,
		Style:  req.Style,
		Sample: req.Sample,
	})

	if s.store != nil {
		if err := s.store.Save(r.Context(), report); err != nil {
			s.log.Warn("saving report", "id", report.ID, "err", err)
		}
	}

	s.log.Info("report created", "id", report.ID, "failed", report.Failed())
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "report history disabled"})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}

	summaries, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.log.Error("listing reports", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "listing reports failed"})
		return
	}
	if summaries == nil {
		summaries = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "report history disabled"})
		return
	}

	report, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "report history disabled"})
		return
	}

	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
