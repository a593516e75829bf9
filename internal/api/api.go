// Package api provides the HTTP API for the IssueBuddy ticket service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/cors"

	"github.com/AbhignaKuchukulla/Issue-buddy/internal/config"
	"github.com/AbhignaKuchukulla/Issue-buddy/internal/repo"
	"github.com/AbhignaKuchukulla/Issue-buddy/internal/ticket"
)

// maxBodyBytes caps request bodies at 1 MiB.
const maxBodyBytes = 1 << 20

// Server is the HTTP API server.
type Server struct {
	cfg        *config.Config
	tickets    *repo.Repository
	logger     *slog.Logger
	httpServer *http.Server
}

// NewServer creates a new API server.
func NewServer(cfg *config.Config, tickets *repo.Repository, logger *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		tickets: tickets,
		logger:  logger,
	}
}

// Handler returns the routed handler with CORS applied. Split out from
// Start so tests can drive the full stack through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/tickets", s.handleTickets)
	mux.HandleFunc("/api/tickets/", s.handleTicketDetail)

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete,
		},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(mux)
}

// Start begins listening on the configured bind address. Blocks until
// context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:        s.cfg.Server.Bind,
		Handler:     s.Handler(),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutCtx)
	}()

	s.logger.Info("api server starting", "bind", s.cfg.Server.Bind)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeOpError maps repository errors to response codes. Validation
// and lookup failures are expected; anything else is a persistence
// fault, logged in full and reported as a bare 500.
func (s *Server) writeOpError(w http.ResponseWriter, err error) {
	var verr *repo.ValidationError
	switch {
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string][]string{"errors": verr.Errors})
	default:
		s.logger.Error("ticket operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal")
	}
}

// decodePayload reads a ticket payload from the request body, capped
// at maxBodyBytes. Unknown fields are ignored, matching the patchable
// field enumeration in the ticket package.
func decodePayload(w http.ResponseWriter, r *http.Request) (*ticket.Payload, bool) {
	var p ticket.Payload
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return nil, false
	}
	return &p, true
}

// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// GET|POST /api/tickets
func (s *Server) handleTickets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleList(w, r)
	case http.MethodPost:
		s.handleCreate(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
	}
}

// GET /api/tickets?q=&status=&priority=&page=&pageSize=
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	q := repo.Query{
		Q:        params.Get("q"),
		Status:   params.Get("status"),
		Priority: params.Get("priority"),
		Page:     1,
		PageSize: repo.DefaultPageSize,
	}
	if n, err := strconv.Atoi(params.Get("page")); err == nil {
		q.Page = n
	}
	if n, err := strconv.Atoi(params.Get("pageSize")); err == nil {
		q.PageSize = n
	}

	writeJSON(w, http.StatusOK, s.tickets.List(q))
}

// POST /api/tickets
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := decodePayload(w, r)
	if !ok {
		return
	}
	created, err := s.tickets.Create(p)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	s.logger.Debug("ticket created", "id", created.ID)
	writeJSON(w, http.StatusCreated, created)
}

// GET|PUT|PATCH|DELETE /api/tickets/{id}
func (s *Server) handleTicketDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/tickets/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := s.tickets.Get(id)
		if err != nil {
			s.writeOpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)

	case http.MethodPut:
		p, ok := decodePayload(w, r)
		if !ok {
			return
		}
		updated, err := s.tickets.Replace(id, p)
		if err != nil {
			s.writeOpError(w, err)
			return
		}
		s.logger.Debug("ticket replaced", "id", id)
		writeJSON(w, http.StatusOK, updated)

	case http.MethodPatch:
		p, ok := decodePayload(w, r)
		if !ok {
			return
		}
		updated, err := s.tickets.Update(id, p)
		if err != nil {
			s.writeOpError(w, err)
			return
		}
		s.logger.Debug("ticket updated", "id", id)
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := s.tickets.Delete(id); err != nil {
			s.writeOpError(w, err)
			return
		}
		s.logger.Debug("ticket deleted", "id", id)
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
	}
}
