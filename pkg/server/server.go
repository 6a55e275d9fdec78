// Package server assembles the HTTP API: middleware stack, route
// groups, and lifecycle.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/fern/config"
	graphpkg "github.com/Ramsey-B/fern/pkg/graph"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/routes/classificationfailure"
	"github.com/Ramsey-B/fern/pkg/routes/entity"
	graphroutes "github.com/Ramsey-B/fern/pkg/routes/graph"
	"github.com/Ramsey-B/fern/pkg/routes/health"
	"github.com/Ramsey-B/fern/pkg/routes/matchcandidate"
	"github.com/Ramsey-B/fern/pkg/routes/matchconfig"
	"github.com/Ramsey-B/fern/pkg/routes/street"
	"github.com/Ramsey-B/fern/pkg/routes/tenant"
)

// Server wraps the echo instance with its configured lifecycle.
type Server struct {
	echo *echo.Echo
	cfg  *config.Config
}

// New builds the API server. The graph projection may be nil; its routes
// then answer 503 until one is injected.
func New(cfg *config.Config, logger ectologger.Logger, checker *health.Checker, projection *graphpkg.Projection) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.HTTPErrorHandler = middleware.Error(logger)

	if checker != nil {
		checker.RegisterRoutes(e)
	}

	api := e.Group("/api/v1")
	entity.Register(api.Group("/entities"))
	street.Register(api.Group("/streets"))
	matchcandidate.Register(api.Group("/match-candidates"))
	matchconfig.Register(api.Group("/match-config"))
	classificationfailure.Register(api.Group("/classification-failures"))
	graphroutes.NewHandler(projection).Register(api.Group("/graph"))
	tenant.Register(api)

	return &Server{echo: e, cfg: cfg}
}

// Echo exposes the underlying instance, mainly for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%d", s.cfg.Port))
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
