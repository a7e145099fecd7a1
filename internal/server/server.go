package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"picvoice/internal/annotate"
	"picvoice/internal/config"
	"picvoice/internal/deps"
	"picvoice/internal/library"
	"picvoice/internal/logging"
	"picvoice/internal/store"
)

// Server owns the HTTP listener and routes requests to the store,
// library, and orchestrator.
type Server struct {
	cfg     *config.Config
	store   *store.Store
	library *library.Library
	orch    *annotate.Orchestrator
	logger  *slog.Logger

	listener net.Listener
	server   *http.Server
}

func New(cfg *config.Config, st *store.Store, lib *library.Library, orch *annotate.Orchestrator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	srv := &Server{
		cfg:     cfg,
		store:   st,
		library: lib,
		orch:    orch,
		logger:  logging.WithComponent(logger, "server"),
	}
	srv.server = &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/management/upload-images", s.handleUploadImages)
	mux.HandleFunc("/api/all-images", s.handleAllImages)
	mux.HandleFunc("/api/session-images", s.handleSessionImages)
	mux.HandleFunc("/api/sessions", s.handleSessions)
	mux.HandleFunc("/api/tags", s.handleTags)
	mux.HandleFunc("/api/tags/", s.handleTagItem)
	mux.HandleFunc("/api/images/ready", s.handleImagesReady)
	mux.HandleFunc("/api/images/", s.handleImageAction)
	mux.HandleFunc("/api/image/", s.handleImageDelete)
	mux.HandleFunc("/api/annotate", s.handleAnnotate)
	mux.HandleFunc("/api/annotations", s.handleAnnotations)
	mux.HandleFunc("/api/annotations/summary", s.handleAnnotationSummary)
	mux.HandleFunc("/api/annotation/id/", s.handleAnnotationDelete)
	mux.HandleFunc("/api/health", s.handleHealth)

	email := s.cfg.Account.Email
	mux.Handle("/uploads/", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(s.library.UploadsDir(email)))))
	mux.Handle("/outputs/", http.StripPrefix("/outputs/",
		http.FileServer(http.Dir(s.library.OutputsDir(email)))))
	return mux
}

// Start binds the configured address and serves until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.cfg.Paths.Bind)
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("listen %s: %w", bind, err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the listener down, letting in-flight requests finish.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) requirements() []deps.Requirement {
	return deps.Requirements(s.cfg)
}
