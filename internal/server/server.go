package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ppiankov/scaleproof/internal/model"
	"github.com/ppiankov/scaleproof/internal/store"
)

// maxRequestBytes bounds POST /validate bodies
const maxRequestBytes = 1 << 20

// ScaleValidator validates one scale on demand
type ScaleValidator interface {
	ValidateScale(ctx context.Context, id string, scale model.ScaleData) model.ValidationResult
}

// SourceLister exposes the approved-source registry
type SourceLister interface {
	Sources() []model.ApprovedSource
}

// Options configures the API server
type Options struct {
	Log     io.Writer // Startup and shutdown lines (default os.Stderr)
	Verbose bool      // Log every request
}

// Server is the read-only scale API plus on-demand validation
type Server struct {
	router    *chi.Mux
	db        *store.Database
	validator ScaleValidator
	sources   SourceLister
	log       io.Writer
}

// ValidateResponse is the POST /validate response body
type ValidateResponse struct {
	Result model.ValidationResult `json:"result"`
	Stored *model.StoredScale     `json:"stored"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates an API server over the scale database
func New(db *store.Database, validator ScaleValidator, sources SourceLister, opts Options) *Server {
	if opts.Log == nil {
		opts.Log = os.Stderr
	}
	s := &Server{
		router:    chi.NewRouter(),
		db:        db,
		validator: validator,
		sources:   sources,
		log:       opts.Log,
	}
	s.setupMiddleware(opts.Verbose)
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware(verbose bool) {
	s.router.Use(middleware.RequestID)
	if verbose {
		s.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
			Logger:  log.New(s.log, "", log.LstdFlags),
			NoColor: true,
		}))
	}
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/scales", s.handleListScales)
	s.router.Get("/scales/{id}", s.handleGetScale)
	s.router.Post("/validate", s.handleValidate)
	s.router.Get("/sources", s.handleSources)
	s.router.Get("/stats", s.handleStats)
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(s.log, "✓ Listening on %s\n", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		fmt.Fprintf(s.log, "⚙️  Shutting down\n")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": model.Version})
}

func (s *Server) handleListScales(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.db.GetAllScales())
}

func (s *Server) handleGetScale(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	scale := s.db.GetScale(id)
	if scale == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("no verified scale %q", id)})
		return
	}
	writeJSON(w, http.StatusOK, scale)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var scale model.ScaleData
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := dec.Decode(&scale); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid scale JSON: %v", err)})
		return
	}
	if scale.ID == "" || scale.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "scale id and name are required"})
		return
	}

	result := s.validator.ValidateScale(r.Context(), scale.ID, scale)
	stored, err := s.db.AddScale(scale, &result)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ValidateResponse{Result: result, Stored: stored})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sources.Sources())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.db.Stats())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
