// Package gateway exposes the narration pipelines over HTTP with a
// single interactive upload page.
package gateway

import (
	"context"
	"embed"
	"fmt"
	"net/http"

	"github.com/pagevoice/pagevoice/pkg/config"
	"github.com/pagevoice/pagevoice/pkg/logger"
	"github.com/pagevoice/pagevoice/pkg/media"
	"github.com/pagevoice/pagevoice/pkg/pipeline"
	"github.com/pagevoice/pagevoice/pkg/voice"
)

//go:embed templates/*
var templates embed.FS

// Server is the gateway HTTP server.
type Server struct {
	cfg      *config.Config
	pipe     *pipeline.Pipeline
	uploads  media.UploadStore
	registry *voice.Registry
	server   *http.Server
}

// NewServer wires the pipelines and upload store behind an HTTP surface.
func NewServer(cfg *config.Config) (*Server, error) {
	uploads, err := media.NewFileUploadStore(cfg.Output.UploadsDir)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:      cfg,
		pipe:     pipeline.New(cfg),
		uploads:  uploads,
		registry: voice.NewRegistry(cfg.Hosted.APIKey, cfg.Hosted.BaseURL),
	}, nil
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Gateway.Host, s.cfg.Gateway.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.routes(),
	}

	go func() {
		logger.InfoCF("gateway", "HTTP server starting", map[string]any{
			"address": "http://" + addr,
		})
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorCF("gateway", "HTTP server error", map[string]any{
				"error": err.Error(),
			})
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/voices", s.handleVoices)
	mux.HandleFunc("POST /api/narrate", s.handleNarrate)
	mux.HandleFunc("POST /api/extract", s.handleExtract)
	mux.HandleFunc("POST /api/clone", s.handleClone)
	mux.Handle("GET /audio/", http.StripPrefix("/audio/",
		http.FileServer(http.Dir(s.cfg.Output.Dir))))
	return mux
}
