package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/linkhub-app/linkhub/internal/app/service"
	inthttp "github.com/linkhub-app/linkhub/internal/http/handler"
	"github.com/linkhub-app/linkhub/internal/http/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies bundles what the HTTP server needs to serve redirects and the
// analytics API.
type Dependencies struct {
	Logger    *zap.Logger
	Redis     *redis.Client
	Resolver  *service.LinkResolver
	Recorder  *service.ClickRecorder
	Analytics *service.AnalyticsService
	Links     service.LinkService
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with default routes.
func New(deps Dependencies) *Server {
	app := fiber.New()

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerRoutes()
	return s
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Recovery(s.deps.Logger))
	s.app.Use(middleware.Logger(s.deps.Logger))
	s.app.Use(middleware.CORS())
	if s.deps.Redis != nil {
		s.app.Use(middleware.RateLimit(s.deps.Redis, middleware.DefaultRateLimitConfig(), s.deps.Logger))
	}

	apiHandler := inthttp.NewAPIHandler(inthttp.APIDeps{
		Logger:    s.deps.Logger,
		Analytics: s.deps.Analytics,
		Links:     s.deps.Links,
	})
	apiHandler.Register(s.app)

	// Registered last so /api and /health win over the catch-all /:code.
	redirectHandler := inthttp.NewRedirectHandler(inthttp.RedirectDeps{
		Logger:   s.deps.Logger,
		Resolver: s.deps.Resolver,
		Recorder: s.deps.Recorder,
	})
	redirectHandler.Register(s.app)
}
