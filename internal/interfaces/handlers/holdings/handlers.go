package holdings

import (
	"errors"
	"strconv"

	holdsvc "folio-backend/internal/application/holdings"
	"folio-backend/internal/domain"
	"folio-backend/internal/middleware"
	"folio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *holdsvc.Service
}

// GET /api/v1/holdings
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, _ := middleware.GetUserID(c)
	list, err := h.Service.List(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return response.Success(c, "Holdings fetched successfully", list, fiber.Map{"count": len(list)})
}

// POST /api/v1/holdings returns 201; merges into an existing holding of the same symbol.
func (h *Handlers) Add(c *fiber.Ctx) error {
	userID, _ := middleware.GetUserID(c)
	var in holdsvc.AddInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	res, err := h.Service.Add(c.UserContext(), userID, in)
	if err != nil {
		return mapError(c, err)
	}
	return response.SuccessCreated(c, "Holding saved", res.Holding, refreshMeta(res))
}

// PUT /api/v1/holdings/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	userID, _ := middleware.GetUserID(c)
	id, err := holdingID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid holding id")
	}
	var in holdsvc.UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	res, err := h.Service.Update(c.UserContext(), userID, id, in)
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Holding updated", res.Holding, refreshMeta(res))
}

// DELETE /api/v1/holdings/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	userID, _ := middleware.GetUserID(c)
	id, err := holdingID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid holding id")
	}
	res, err := h.Service.Delete(c.UserContext(), userID, id)
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Holding deleted", fiber.Map{"id": id}, refreshMeta(res))
}

func holdingID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrHoldingNotFound):
		return response.NotFound(c, "Holding not found")
	case errors.Is(err, domain.ErrInvalidHolding), errors.Is(err, domain.ErrUnsupportedSymbol):
		return response.BadRequest(c, err.Error())
	}
	return err
}

// refreshMeta reports the follow-up price refresh. The holding change itself
// is already saved when the snapshot fails.
func refreshMeta(res *holdsvc.Result) fiber.Map {
	meta := fiber.Map{"prices_updated": res.Updated}
	if res.SnapshotErr != nil {
		meta["warning"] = "Saved, but today's snapshot could not be recorded. Refresh the portfolio to retry."
	}
	return meta
}
