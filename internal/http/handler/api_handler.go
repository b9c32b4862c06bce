package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/linkhub-app/linkhub/internal/app/repository"
	"github.com/linkhub-app/linkhub/internal/app/service"
	"go.uber.org/zap"
)

// APIDeps groups dependencies required by API handlers.
type APIDeps struct {
	Logger    *zap.Logger
	Analytics *service.AnalyticsService
	Links     service.LinkService
}

// APIHandler implements the dashboard-facing API endpoints. Caller identity
// is assumed to be established upstream; these routes carry no credential
// handling of their own.
type APIHandler struct {
	logger    *zap.Logger
	analytics *service.AnalyticsService
	links     service.LinkService
}

// NewAPIHandler creates an API handler with the provided dependencies.
func NewAPIHandler(deps APIDeps) *APIHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		logger:    logger,
		analytics: deps.Analytics,
		links:     deps.Links,
	}
}

// Register wires API routes onto the provided router.
func (h *APIHandler) Register(router fiber.Router) {
	api := router.Group("/api")
	{
		accounts := api.Group("/accounts")
		{
			accounts.Post("/", h.CreateAccount)
			accounts.Get("/:id", h.GetAccount)
			accounts.Get("/:id/analytics", h.GetAnalytics)
			accounts.Post("/:id/links", h.CreateLink)
			accounts.Get("/:id/links", h.ListLinks)
		}
	}
}

// CreateAccountRequest represents the request body for creating an account.
type CreateAccountRequest struct {
	DisplayName string `json:"display_name"`
}

// CreateAccount handles POST /api/accounts
func (h *APIHandler) CreateAccount(c *fiber.Ctx) error {
	var req CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid request body",
		})
	}
	if req.DisplayName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "display_name is required",
		})
	}

	account, err := h.links.CreateAccount(reqCtx(c), req.DisplayName)
	if err != nil {
		h.logger.Error("failed to create account", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "failed to create account",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":           account.ID,
		"display_name": account.DisplayName,
	})
}

// GetAccount handles GET /api/accounts/:id. The all-time counters here come
// from the write path; windowed numbers live on the analytics endpoint.
func (h *APIHandler) GetAccount(c *fiber.Ctx) error {
	accountID := c.Params("id")

	account, err := h.links.GetAccount(reqCtx(c), accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		h.logger.Error("failed to get account", zap.Error(err), zap.String("account_id", accountID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "failed to get account",
		})
	}

	return c.JSON(fiber.Map{
		"id":              account.ID,
		"display_name":    account.DisplayName,
		"total_clicks":    account.TotalClicks,
		"unique_visitors": account.UniqueVisitorCount,
		"links":           account.Links,
	})
}

// GetAnalytics handles GET /api/accounts/:id/analytics?days=N
func (h *APIHandler) GetAnalytics(c *fiber.Ctx) error {
	accountID := c.Params("id")

	days := 0
	if raw := c.Query("days"); raw != "" {
		days = c.QueryInt("days")
		if days <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "days must be a positive integer",
			})
		}
	}

	snapshot, err := h.analytics.Compute(reqCtx(c), accountID, days)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		h.logger.Error("failed to compute analytics", zap.Error(err), zap.String("account_id", accountID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "failed to compute analytics",
		})
	}

	return c.JSON(snapshot)
}

// CreateLinkRequest represents the request body for adding a link.
type CreateLinkRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// CreateLink handles POST /api/accounts/:id/links
func (h *APIHandler) CreateLink(c *fiber.Ctx) error {
	accountID := c.Params("id")

	var req CreateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid request body",
		})
	}
	if req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "url is required",
		})
	}

	link, err := h.links.CreateLink(reqCtx(c), accountID, req.Title, req.URL)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		h.logger.Error("failed to create link", zap.Error(err), zap.String("account_id", accountID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "failed to create link",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(link)
}

// ListLinks handles GET /api/accounts/:id/links
func (h *APIHandler) ListLinks(c *fiber.Ctx) error {
	accountID := c.Params("id")

	links, err := h.links.ListLinks(reqCtx(c), accountID)
	if err != nil {
		h.logger.Error("failed to list links", zap.Error(err), zap.String("account_id", accountID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "failed to list links",
		})
	}

	return c.JSON(fiber.Map{
		"links": links,
		"count": len(links),
	})
}

func reqCtx(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
