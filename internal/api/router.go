package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/accessdesk/project-access/docs"
	"github.com/accessdesk/project-access/internal/api/handler"
	"github.com/accessdesk/project-access/internal/api/middleware"
	"github.com/accessdesk/project-access/internal/core/ports"
	"github.com/accessdesk/project-access/internal/pkg/config"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Log      zerolog.Logger
	Auth     ports.AuthService
	Users    ports.UserService
	Projects ports.ProjectService
	Requests ports.RequestService
	Reports  ports.ReportService
	// Activity may be nil, in which case calls are only logged.
	Activity     middleware.ActivityQueue
	HealthChecks map[string]handler.HealthCheck
	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	cfg := d.Config
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.BodyLimit(cfg.HTTP.BodyLimit))
	e.Use(prometheusMiddleware(d.Registry))
	e.Use(middleware.Activity(d.Activity, d.Log))
	e.Use(middleware.LoadSession(d.Auth, cfg.Session.CookieName, d.Log))

	// --- Operational routes ---
	health := handler.NewHealthHandler(d.HealthChecks)
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Project access API is running")
	})
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", metricsHandler(d.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth, handler.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.IsProduction(),
		MaxAge: cfg.Session.TTL,
	})
	projectHandler := handler.NewProjectHandler(d.Projects)
	userHandler := handler.NewUserHandler(d.Users)
	requestHandler := handler.NewRequestHandler(d.Requests)
	reportHandler := handler.NewReportHandler(d.Reports, d.Log.With().Str("component", "report").Logger())

	authed := middleware.RequireAuth()
	admin := middleware.RequireAdmin()
	client := middleware.RequireClient()

	g := e.Group(cfg.APIPrefix)

	// --- Auth routes ---
	g.POST("/auth/signup", authHandler.Signup)
	g.POST("/auth/login", authHandler.Login)
	g.GET("/auth/me", authHandler.Me)
	g.POST("/auth/logout", authHandler.Logout)

	// --- Project routes ---
	g.GET("/projects", projectHandler.List, authed)
	g.GET("/projects/all-for-request-access", projectHandler.ListForRequestAccess, authed)
	g.POST("/projects", projectHandler.Create, admin)
	g.PUT("/projects/:id", projectHandler.Update, admin)
	g.DELETE("/projects/:id", projectHandler.Delete, admin)

	// --- User routes ---
	g.GET("/users", userHandler.List, admin)
	g.POST("/users", userHandler.Create, admin)
	g.DELETE("/users/:id", userHandler.Delete, admin)

	// --- Request routes ---
	g.POST("/requests", requestHandler.Create, client)
	g.GET("/requests/pending", requestHandler.Pending, admin)
	g.POST("/requests/:id/decision", requestHandler.Decide, admin)
	g.GET("/requests/my-requests", requestHandler.Mine, authed)

	// --- Report routes ---
	g.GET("/reports", reportHandler.Export, admin)

	return e
}

func prometheusMiddleware(reg *prometheus.Registry) echo.MiddlewareFunc {
	if reg == nil {
		return echoprometheus.NewMiddleware("project_access")
	}
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "project_access",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	})
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
