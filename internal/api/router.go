package api

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tuiter/tuiter-api/internal/api/handler"
	"github.com/tuiter/tuiter-api/internal/api/middleware"
	"github.com/tuiter/tuiter-api/internal/core/authorization"
	"github.com/tuiter/tuiter-api/internal/core/ports"
)

// Dependencies carries everything the router needs wired in.
type Dependencies struct {
	Users    ports.UserService
	Sessions ports.SessionService
	Tuits    ports.TuitService
	Engine   *authorization.Engine
	Gate     middleware.AdmissionGate
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	Logger   zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("tuiter"))
	auth := middleware.Auth(deps.Sessions)
	engine := deps.Engine

	// --- Health probes and metrics (no auth, never shed) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Pool, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- API routes ---
	api := e.Group("", middleware.Admission(deps.Gate), auth)

	userHandler := handler.NewUserHandler(deps.Users, engine)
	sessionHandler := handler.NewSessionHandler(deps.Sessions, engine)
	tuitHandler := handler.NewTuitHandler(deps.Tuits, engine)

	api.POST("/users", userHandler.Create, middleware.RequireFeature(engine, authorization.FeatureCreateUser))
	api.GET("/users/self", userHandler.GetSelf, middleware.RequireFeature(engine, authorization.FeatureReadUserSelf))
	api.GET("/users/:tag", userHandler.GetByTag, middleware.RequireFeature(engine, authorization.FeatureReadUser))
	api.PATCH("/users/:tag", userHandler.Update)
	api.DELETE("/users/:tag", userHandler.Ban, middleware.RequireFeature(engine, authorization.FeatureBanUser))
	api.POST("/users/:tag/features", userHandler.GrantFeatures, middleware.RequireFeature(engine, authorization.FeatureBanUser))

	api.POST("/sessions", sessionHandler.Login, middleware.RequireFeature(engine, authorization.FeatureCreateSession))
	api.GET("/sessions/self", sessionHandler.Get, middleware.RequireFeature(engine, authorization.FeatureReadSession))
	api.DELETE("/sessions/self", sessionHandler.Logout, middleware.RequireFeature(engine, authorization.FeatureReadSession))

	api.POST("/tuits", tuitHandler.Create, middleware.RequireFeature(engine, authorization.FeatureCreateTuit))
	api.GET("/tuits", tuitHandler.Feed, middleware.RequireFeature(engine, authorization.FeatureReadTuitList))
	api.GET("/tuits/:id", tuitHandler.Get, middleware.RequireFeature(engine, authorization.FeatureReadTuit))
	// Ownership-aware: the handler runs the capability check against the
	// target tuit itself.
	api.DELETE("/tuits/:id", tuitHandler.Disable)
	api.POST("/tuits/:id/comments", tuitHandler.Comments, middleware.RequireFeature(engine, authorization.FeatureReadTuitList))
	api.POST("/tuits/:id/feedback", tuitHandler.Feedback, middleware.RequireFeature(engine, authorization.FeatureCreateTuitFeedback))

	return e
}
