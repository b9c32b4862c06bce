package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/linkhub-app/linkhub/internal/app/repository"
	"github.com/linkhub-app/linkhub/internal/app/service"
	"go.uber.org/zap"
)

const (
	// VisitorCookieName holds the opaque visitor token on the client; it is
	// the only place the token lives.
	VisitorCookieName = "visitor_id"

	visitorCookieMaxAge = 365 * 24 * 60 * 60 // one year, in seconds
)

// RedirectDeps groups dependencies required by redirect handlers.
type RedirectDeps struct {
	Logger   *zap.Logger
	Resolver *service.LinkResolver
	Recorder *service.ClickRecorder
}

// RedirectHandler serves the public redirect surface.
type RedirectHandler struct {
	logger   *zap.Logger
	resolver *service.LinkResolver
	recorder *service.ClickRecorder
}

// NewRedirectHandler creates a redirect handler with the provided dependencies.
func NewRedirectHandler(deps RedirectDeps) *RedirectHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedirectHandler{
		logger:   logger,
		resolver: deps.Resolver,
		recorder: deps.Recorder,
	}
}

// Register wires redirect routes onto the provided router.
func (h *RedirectHandler) Register(router fiber.Router) {
	router.Get("/", h.Health)
	router.Get("/health", h.Health)
	router.Get("/:code", h.Redirect)
}

// Health is a simple root endpoint so we know the service is running.
func (h *RedirectHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "linkhub",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Redirect handles GET /:code: resolve the short code, record the click, and
// issue a 302 to the destination. A failed classification never blocks the
// redirect; a failed write does.
func (h *RedirectHandler) Redirect(c *fiber.Ctx) error {
	code := c.Params("code")

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	account, link, err := h.resolver.Resolve(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Link not found",
			})
		}
		h.logger.Error("failed to resolve link", zap.Error(err), zap.String("code", code))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	result, err := h.recorder.Record(ctx, account, link, service.RequestMeta{
		RemoteAddr:   clientAddr(c),
		UserAgent:    c.Get("User-Agent"),
		PlatformHint: c.Get("Sec-CH-UA-Platform"),
		VisitorToken: c.Cookies(VisitorCookieName),
	})
	if err != nil {
		// Fail closed: a click that was not durably recorded is not redirected.
		h.logger.Error("failed to record click", zap.Error(err), zap.String("code", code))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	if result.NewVisitor {
		c.Cookie(&fiber.Cookie{
			Name:     VisitorCookieName,
			Value:    result.VisitorToken,
			MaxAge:   visitorCookieMaxAge,
			HTTPOnly: true,
		})
	}

	return c.Redirect(result.DestinationURL, fiber.StatusFound)
}

// clientAddr prefers the first X-Forwarded-For hop over the socket address.
func clientAddr(c *fiber.Ctx) string {
	if fwd := c.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	return c.IP()
}
