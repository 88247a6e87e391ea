package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"rentwatch/internal/config"
	"rentwatch/internal/scan"
	"rentwatch/internal/sites"
	"rentwatch/internal/storage"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	runner     *scan.Runner
	registry   *sites.Registry
	pgStore    *storage.PostgresStore
	redisStore *storage.RedisStore // nil when Redis is not configured
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, runner *scan.Runner, reg *sites.Registry, ps *storage.PostgresStore, rs *storage.RedisStore, l *zap.Logger) *Server {
	s := &Server{
		config:     cfg,
		runner:     runner,
		registry:   reg,
		pgStore:    ps,
		redisStore: rs,
		logger:     l,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.ServerPort),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
