// Package httpapi exposes the gateway over HTTP: the token-addressed
// upload endpoint, path-addressed downloads with range support, and the
// two cleanup triggers.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/ADevelopere/storagegate/internal/logging"
	"github.com/ADevelopere/storagegate/internal/server/config"
	"github.com/ADevelopere/storagegate/internal/server/storage"
)

type Server struct {
	cfg     *config.Config
	log     logging.Logger
	storage *storage.Service
}

func NewServer(cfg *config.Config, log logging.Logger, svc *storage.Service) *Server {
	return &Server{
		cfg:     cfg,
		log:     log.With("component", "httpapi"),
		storage: svc,
	}
}

// Handler assembles the route table and middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mux.HandleFunc("PUT /storage/upload/{tokenId}", s.handleUpload)
	mux.HandleFunc("GET /storage/files/{path...}", s.handleDownload)
	mux.HandleFunc("POST /storage/cleanup", s.handleCleanup)
	mux.HandleFunc("POST /cron/cleanup-signed-urls", s.handleCronCleanup)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	var handler http.Handler = mux
	handler = s.identity(handler)
	handler = c.Handler(handler)
	handler = s.requestLogger(handler)
	return handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.EndpointAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.log.Info(ctx, "stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info(ctx, "starting HTTP server", "address", s.cfg.EndpointAddr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
