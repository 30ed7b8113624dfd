package portfolio

import (
	"context"
	"errors"

	"folio-backend/internal/application/portfolio"
	"folio-backend/internal/application/refresh"
	"folio-backend/internal/domain"
	"folio-backend/internal/middleware"
	"folio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Refresher is the manual price update trigger.
type Refresher interface {
	Refresh(ctx context.Context, userID uint) (*refresh.Report, error)
}

type Handlers struct {
	Refresher Refresher
	Portfolio *portfolio.Service
}

// POST /api/v1/portfolio/refresh
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	userID, _ := middleware.GetUserID(c)
	report, err := h.Refresher.Refresh(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotPersistence) {
			details := fiber.Map{}
			if report != nil {
				details["requested"] = report.Requested
				details["updated"] = report.Updated
			}
			return response.Error(c,
				"Prices were refreshed but today's snapshot could not be saved. Please try again in a moment.",
				fiber.StatusServiceUnavailable, details)
		}
		return err
	}

	meta := fiber.Map{"requested": report.Requested, "updated": report.Updated}
	if report.Requested > 0 && report.Updated == 0 {
		meta["warning"] = "No prices could be fetched. Showing the last known values."
		return response.Success(c, "Portfolio refreshed without new prices", report, meta)
	}
	return response.Success(c, "Portfolio refreshed", report, meta)
}

// GET /api/v1/portfolio/summary
func (h *Handlers) Summary(c *fiber.Ctx) error {
	userID, _ := middleware.GetUserID(c)
	sum, err := h.Portfolio.Summary(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return response.Success(c, "Portfolio summary fetched successfully", sum, nil)
}

// GET /api/v1/portfolio/history?days=30
func (h *Handlers) History(c *fiber.Ctx) error {
	userID, _ := middleware.GetUserID(c)
	days := c.QueryInt("days", portfolio.DefaultHistoryDays)
	if days <= 0 {
		return response.BadRequest(c, "days must be a positive integer")
	}
	list, err := h.Portfolio.History(c.UserContext(), userID, days)
	if err != nil {
		return err
	}
	return response.Success(c, "Portfolio history fetched successfully", list, fiber.Map{"days": min(days, portfolio.MaxHistoryDays), "count": len(list)})
}
