package api

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/david/studio-desk/internal/studio"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Options struct {
	CORSOrigins    []string
	MaxUploadBytes int64
	// LookupIP resolves hosts for import-from-URL checks. Defaults to net.LookupIP.
	LookupIP func(host string) ([]net.IP, error)
}

type Server struct {
	Echo    *echo.Echo
	Service *studio.Service

	maxUpload int64
	lookupIP  func(host string) ([]net.IP, error)
}

func NewServer(svc *studio.Service, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.LookupIP == nil {
		opts.LookupIP = net.LookupIP
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"http://localhost:3000"}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = httpErrorHandler
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: opts.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))
	// Multipart framing needs headroom above the file limit itself.
	e.Use(middleware.BodyLimit(strconv.FormatInt(opts.MaxUploadBytes+(1<<20), 10) + "B"))

	s := &Server{
		Echo:      e,
		Service:   svc,
		maxUpload: opts.MaxUploadBytes,
		lookupIP:  opts.LookupIP,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)

	api := s.Echo.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/dashboard/stats", s.handleDashboardStats)

	api.GET("/projects", s.handleListProjects)
	api.POST("/projects", s.handleCreateProject)
	api.DELETE("/projects/clear", s.handleClearAll)
	api.GET("/projects/:id", s.handleGetProject)
	api.PUT("/projects/:id", s.handleUpdateProject)

	api.GET("/projects/:id/sections", s.handleListSections)
	api.POST("/projects/:id/sections", s.handleCreateSection)
	api.GET("/sections/:id", s.handleGetSection)
	api.PUT("/sections/:id", s.handleSaveSection)
	api.POST("/sections/:id/submit", s.handleSubmitSection)
	api.POST("/sections/:id/approve", s.handleApproveSection)
	api.POST("/sections/:id/reject", s.handleRejectSection)
	api.POST("/sections/:id/lock", s.handleLockSection)
	api.POST("/sections/:id/review", s.handleReviewSection)

	api.POST("/projects/:id/scan", s.handleScanDirectory)
	api.GET("/projects/:id/assets", s.handleListAssets)
	api.PUT("/assets/:id", s.handleUpdateAsset)

	api.GET("/opportunities", s.handleListOpportunities)
	api.POST("/opportunities", s.handleCreateOpportunity)
	api.POST("/opportunities/import", s.handleImportText)
	api.POST("/opportunities/import/file", s.handleImportFile)
	api.POST("/opportunities/research", s.handleResearch)
	api.GET("/opportunities/:id", s.handleGetOpportunity)
	api.PUT("/opportunities/:id", s.handleUpdateOpportunity)
	api.GET("/opportunities/:id/application", s.handleGetApplicationForOpportunity)

	api.POST("/applications", s.handleCreateApplication)
	api.GET("/applications/:id", s.handleGetApplication)
	api.PUT("/applications/:id", s.handleUpdateApplication)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleDashboardStats(c echo.Context) error {
	stats, err := s.Service.DashboardStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}
