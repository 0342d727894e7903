// Package server exposes the read-only ops endpoint: host health, service
// election state, lighting catalog views, and metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/peterhaneve/ONIMods-sub014/internal/auth"
	"github.com/peterhaneve/ONIMods-sub014/internal/lighting"
	"github.com/peterhaneve/ONIMods-sub014/internal/mods"
	"github.com/peterhaneve/ONIMods-sub014/internal/observability"
	"github.com/peterhaneve/ONIMods-sub014/internal/registry"
)

// Config configures the ops endpoint listener.
type Config struct {
	ListenAddr string
	HostID     string
	AuthToken  string
}

// PreviewRequest asks for a one-shot shape cast.
type PreviewRequest struct {
	OriginX int    `json:"origin_x"`
	OriginY int    `json:"origin_y"`
	Radius  int    `json:"radius"`
	ShapeID string `json:"shape_id"`
	Lux     int    `json:"lux"`
}

// PreviewCell is one lit cell of a preview cast.
type PreviewCell struct {
	X   int `json:"x"`
	Y   int `json:"y"`
	Lux int `json:"lux"`
}

// PreviewResult is the computed preview, cells in row order.
type PreviewResult struct {
	Shape string        `json:"shape"`
	Cells []PreviewCell `json:"cells"`
}

// StatusSource is the host surface the ops endpoint reads from.
type StatusSource interface {
	ServiceSnapshot() []registry.ServiceStatus
	ModList() []mods.Metadata
	ShapeList() []lighting.ShapeInfo
	PreviewLight(req PreviewRequest) (PreviewResult, bool)
}

// Server owns the gin engine and its listener lifecycle.
type Server struct {
	cfg       Config
	source    StatusSource
	engine    *gin.Engine
	startedAt time.Time
}

// New builds the ops endpoint over a status source.
func New(cfg Config, source StatusSource) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(observability.RequestLogger(log.Logger))
	engine.Use(observability.RequestMetricsMiddleware(cfg.HostID))

	s := &Server{
		cfg:       cfg,
		source:    source,
		engine:    engine,
		startedAt: time.Now(),
	}
	s.registerRoutes()
	return s
}

// Handler exposes the engine for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{Addr: s.cfg.ListenAddr, Handler: s.engine}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("ops shutdown incomplete")
		}
	}()

	log.Info().Str("addr", s.cfg.ListenAddr).Msg("ops endpoint listening")
	err := httpSrv.ListenAndServe()
	<-shutdownDone
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) guarded() gin.IRoutes {
	group := s.engine.Group("/")
	if s.cfg.AuthToken != "" {
		group.Use(auth.Middleware(auth.StaticToken{Token: s.cfg.AuthToken}))
	}
	return group
}
