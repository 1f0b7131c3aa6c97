// Package server exposes a read-only HTTP view of run history for the daemon.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/whhaicheng/SimDesk/internal/app/usecase"
	"github.com/whhaicheng/SimDesk/internal/domain/search"
	"github.com/whhaicheng/SimDesk/internal/domain/simulation"
	"github.com/whhaicheng/SimDesk/internal/domain/validation"
)

const shutdownTimeout = 5 * time.Second

// Server serves /healthz, /metrics and the /runs endpoints.
type Server struct {
	httpServer  *http.Server
	simulations *usecase.SimulationUseCase
}

// New builds the router. metrics may be nil, in which case /metrics is not mounted.
func New(addr string, simulations *usecase.SimulationUseCase, metrics http.Handler) *Server {
	s := &Server{simulations: simulations}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Get("/healthz", s.health)
	if metrics != nil {
		router.Method(http.MethodGet, "/metrics", metrics)
	}
	router.Route("/runs", func(r chi.Router) {
		r.Get("/", s.listRuns)
		r.Get("/{id}", s.getRun)
	})

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server started", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	slog.Info("HTTP server stopped")
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type runPage struct {
	Items    []simulation.Snapshot `json:"items"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PerPage  int                   `json:"per_page"`
	LastPage int                   `json:"last_page"`
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	filter, page, err := parseRunQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.simulations.SearchRuns(r.Context(), filter, page)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	out := runPage{
		Items:    make([]simulation.Snapshot, 0, len(res.Items)),
		Total:    res.Total,
		Page:     res.Page,
		PerPage:  res.PerPage,
		LastPage: res.LastPage,
	}
	for _, run := range res.Items {
		out.Items = append(out.Items, run.Snapshot())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.simulations.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, run.Snapshot())
}

// parseRunQuery reads name, path, status, from, to, page and per_page.
func parseRunQuery(r *http.Request) (simulation.Filter, search.PageRequest, error) {
	q := r.URL.Query()
	filter := simulation.Filter{
		ProjectName: q.Get("name"),
		ProjectPath: q.Get("path"),
	}
	page := search.FirstPage()

	if v := q.Get("status"); v != "" {
		st, err := simulation.ParseStatus(v)
		if err != nil {
			return filter, page, err
		}
		filter.Status = &st
	}
	for key, dst := range map[string]**time.Time{"from": &filter.RecordedFrom, "to": &filter.RecordedTo} {
		if v := q.Get(key); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return filter, page, fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = &t
		}
	}
	for key, dst := range map[string]*int{"page": &page.Page, "per_page": &page.PerPage} {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return filter, page, fmt.Errorf("invalid %s: %q", key, v)
			}
			*dst = n
		}
	}
	return filter, page, nil
}

func statusFor(err error) int {
	var verr *validation.Error
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &verr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.Error("HTTP request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
