package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/govalyteams/sheetdesk/docs"
	"github.com/govalyteams/sheetdesk/internal/api/handler"
	"github.com/govalyteams/sheetdesk/internal/api/middleware"
	"github.com/govalyteams/sheetdesk/internal/core/policy"
	"github.com/govalyteams/sheetdesk/internal/core/ports"
)

// Deps is everything the router needs to serve requests.
type Deps struct {
	Accounts  ports.AccountService
	Sheets    ports.SheetService
	JWTSecret string
	Logger    zerolog.Logger

	// Health lists the dependencies checked by /health/ready.
	Health map[string]handler.Pinger

	// Registerer and Gatherer back /metrics. They default to the global
	// Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
//
// @title        sheetdesk API
// @version      1.0
// @description  Role-gated catalog of shared spreadsheets and their assignments.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func NewRouter(deps Deps) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "sheetdesk",
		Registerer: deps.Registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Accounts)
	accountHandler := handler.NewAccountHandler(deps.Accounts)
	sheetHandler := handler.NewSheetHandler(deps.Sheets, deps.Logger)
	healthHandler := handler.NewHealthHandler(deps.Health)

	// --- Public routes ---
	e.POST("/auth/login", authHandler.Login)
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Authenticated routes ---
	auth := middleware.Auth(deps.JWTSecret)

	e.GET("/accounts", accountHandler.List, auth, middleware.Require(policy.ListAccounts))
	e.POST("/accounts", accountHandler.Create, auth, middleware.Require(policy.CreateAccount))

	e.GET("/sheets", sheetHandler.List, auth, middleware.Require(policy.ListSheets))
	e.POST("/sheets", sheetHandler.Create, auth, middleware.Require(policy.CreateSheet))
	e.POST("/sheets/assign", sheetHandler.Assign, auth, middleware.Require(policy.AssignSheet))
	e.DELETE("/sheets/:id", sheetHandler.Delete, auth, middleware.Require(policy.DeleteSheet))

	// Ownership is decided per target inside the service.
	e.GET("/sheets/account/:id", sheetHandler.ForAccount, auth)
	e.GET("/sheets/user/:id", sheetHandler.ForAccount, auth)

	return e
}
