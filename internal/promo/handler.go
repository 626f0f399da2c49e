package promo

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/api/promos", h.getCurrent)
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	adminOnly := auth.RequireRole(auth.RoleAdmin)
	app.Get("/api/admin/promos", adminOnly, h.listPromos)
	app.Post("/api/admin/promos", adminOnly, h.createPromo)
	app.Delete("/api/admin/promos/:id<guid>", adminOnly, h.deactivatePromo)
}

func (h *Handler) getCurrent(c *fiber.Ctx) error {
	vendors, err := h.service.Current(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"vendorIds": vendors})
}

func (h *Handler) listPromos(c *fiber.Ctx) error {
	promos, err := h.service.List(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(promos)
}

func (h *Handler) createPromo(c *fiber.Ctx) error {
	in := new(Input)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	created, err := h.service.Create(c.UserContext(), *in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Promo created", "promo": created})
}

func (h *Handler) deactivatePromo(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid promo id"})
	}
	p, err := h.service.Deactivate(c.UserContext(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Promo deactivated", "promo": p})
}
