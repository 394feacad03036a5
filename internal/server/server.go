// Package server exposes the content pipeline over HTTP.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/abhisek/eduagent/internal/content"
	"github.com/abhisek/eduagent/internal/store"
)

//go:embed assets
var assets embed.FS

// Runner executes one generate, review and refine cycle.
type Runner interface {
	Run(ctx context.Context, grade content.Grade, topic string) (*content.Result, error)
}

// Options configures a Server.
type Options struct {
	// AllowOrigins lists CORS origins. "*" or an empty list allows all.
	AllowOrigins []string

	// Model is recorded with each stored generation.
	Model string
}

// Server routes HTTP requests to the pipeline and the generation history.
type Server struct {
	pipeline    Runner
	generations store.GenerationRepo
	model       string
	router      *gin.Engine
}

// New builds a Server and its routes.
func New(pipeline Runner, generations store.GenerationRepo, opts Options) (*Server, error) {
	s := &Server{
		pipeline:    pipeline,
		generations: generations,
		model:       opts.Model,
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog())
	router.Use(cors.New(corsConfig(opts.AllowOrigins)))

	tmpl, err := template.ParseFS(assets, "assets/templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(assets, "assets/static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}
	router.StaticFS("/static", http.FS(static))

	router.GET("/", s.handleIndex)
	router.GET("/health", s.handleHealth)
	router.POST("/generate", s.handleGenerate)
	router.GET("/generations", s.handleListGenerations)
	router.GET("/generations/:id", s.handleGetGeneration)

	s.router = router
	return s, nil
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests for up to shutdownGrace.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

const shutdownGrace = 10 * time.Second

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
