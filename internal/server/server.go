package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"ledger-utility-service/internal/config"
	"ledger-utility-service/internal/handlers"
)

// Server represents the HTTP server
type Server struct {
	engine     *gin.Engine
	handler    *handlers.Handler
	httpServer *http.Server
	registry   *prometheus.Registry
	cfg        *config.ParsedConfig
}

// route is one entry of the static dispatch table
type route struct {
	method  string
	path    string
	handler gin.HandlerFunc
}

// NewServer creates a new HTTP server
func NewServer(handler *handlers.Handler, cfg *config.ParsedConfig) *Server {
	if cfg.Server.Verbose {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &Server{
		engine:   gin.New(),
		handler:  handler,
		registry: prometheus.NewRegistry(),
		cfg:      cfg,
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return server
}

func (s *Server) routes() []route {
	return []route{
		{http.MethodGet, "/check-health", s.handler.CheckHealth},
		{http.MethodPost, "/keypair", s.handler.GenerateKeyPair},
		{http.MethodPost, "/token/create", s.handler.CreateToken},
		{http.MethodPost, "/token/mint", s.handler.MintToken},
		{http.MethodPost, "/message/sign", s.handler.SignMessage},
		{http.MethodPost, "/message/verify", s.handler.VerifyMessage},
	}
}

// setupRoutes configures middleware and the HTTP routes
func (s *Server) setupRoutes() {
	s.engine.Use(requestID())
	s.engine.Use(requestLogger())
	if s.cfg.MetricsEnabled {
		s.engine.Use(newMetrics(s.registry).middleware())
	}
	// recovery sits innermost so the logger and metrics still see a panic's 500
	s.engine.Use(gin.CustomRecovery(s.handler.Recover))

	if s.cfg.MetricsEnabled {
		s.engine.GET("/metrics", gin.WrapH(metricsHandler(s.registry)))
	}

	for _, r := range s.routes() {
		s.engine.Handle(r.method, r.path, r.handler)
	}

	s.engine.NoRoute(s.handler.NotFound)

	if s.cfg.Server.Verbose {
		log.Debug().Msg("available endpoints:")
		for _, r := range s.routes() {
			log.Debug().Msgf("  %-4s %s", r.method, r.path)
		}
	}
}

// Handler returns the root http.Handler, with CORS applied
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	}).Handler(s.engine)
}

// Start listens on the configured port and serves until Shutdown
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}

	return s.Serve(listener)
}

// Serve serves on an existing listener until Shutdown
func (s *Server) Serve(listener net.Listener) error {
	log.Info().Str("address", listener.Addr().String()).Msg("server listening")

	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// Shutdown drains in-flight requests, forcing a close after the configured timeout
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	log.Info().Dur("timeout", s.cfg.ShutdownTimeout).Msg("shutting down server")

	err := s.httpServer.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		log.Warn().Msg("graceful shutdown timed out, forcing close")
		return s.httpServer.Close()
	}

	return err
}
