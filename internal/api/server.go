package api

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/david/deal-portal/internal/repository"
)

type Options struct {
	// RefreshInterval is the minimum spacing of manual refreshes once the
	// burst is spent. Zero disables throttling.
	RefreshInterval time.Duration
	RefreshBurst    int
	CORSOrigins     []string
	Logger          *slog.Logger
}

type Server struct {
	Repo *repository.Repository
	Echo *echo.Echo

	logger    *slog.Logger
	dashboard *template.Template

	// The fetched snapshot lives here until a refresh replaces it.
	snapshots *cache.Cache
	loads     singleflight.Group
	refresh   *rate.Limiter
}

func NewServer(repo *repository.Repository, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	allowedOrigins := opts.CORSOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:4200"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if opts.RefreshInterval > 0 {
		limit = rate.Every(opts.RefreshInterval)
	}
	burst := opts.RefreshBurst
	if burst < 1 {
		burst = 1
	}

	s := &Server{
		Repo:      repo,
		Echo:      e,
		logger:    logger,
		dashboard: dashboardTemplate,
		snapshots: cache.New(cache.NoExpiration, 0),
		refresh:   rate.NewLimiter(limit, burst),
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	s.Echo.GET("/", s.handleDashboard)

	api := s.Echo.Group("/api/v1")
	api.GET("/deals", s.handleListDeals)
	api.GET("/deals/:id", s.handleGetDeal)
	api.GET("/stats", s.handleGetStats)
	api.GET("/filters", s.handleGetFilters)
	api.GET("/sheet", s.handleGetSheet)
	api.POST("/refresh", s.handleRefresh)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
