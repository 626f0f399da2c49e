package admin

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/auth"
	"github.com/wichananm65/campus-market-backend/internal/product"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	g := app.Group("/api/admin", auth.RequireRole(auth.RoleAdmin))
	g.Get("/dashboard", h.getDashboard)
	g.Get("/vendors", h.getVendors)
	g.Put("/verify-vendor/:id<guid>", h.verifyVendor)
	g.Get("/users", h.getUsers)
	g.Delete("/users/:id<guid>", h.deleteUser)
	g.Patch("/products/:id<guid>/status", h.setProductStatus)
	g.Delete("/products/:id<guid>", h.removeProduct)
}

func (h *Handler) getDashboard(c *fiber.Ctx) error {
	claims, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	stats, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Welcome Admin",
		"user":    fiber.Map{"id": claims.UserID, "role": claims.Role},
		"stats":   stats,
	})
}

func (h *Handler) getVendors(c *fiber.Ctx) error {
	vendors, err := h.service.Vendors(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(vendors)
}

type verifyRequest struct {
	Verified *bool `json:"verified"`
}

func (h *Handler) verifyVendor(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid vendor id"})
	}
	req := new(verifyRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if req.Verified == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "verified is required"})
	}

	vendor, err := h.service.VerifyVendor(c.UserContext(), id, *req.Verified)
	if err != nil {
		return apperr.Respond(c, err)
	}
	state := "unverified"
	if vendor.Verified {
		state = "verified"
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("Vendor %s successfully", state), "vendor": vendor})
}

func (h *Handler) getUsers(c *fiber.Ctx) error {
	users, err := h.service.Users(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(users)
}

func (h *Handler) deleteUser(c *fiber.Ctx) error {
	actor, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid user id"})
	}
	if err := h.service.DeleteUser(c.UserContext(), actor, id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}

type productStatusRequest struct {
	Status product.Status `json:"status"`
}

func (h *Handler) setProductStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}
	req := new(productStatusRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	p, err := h.service.SetProductStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product status updated", "product": p})
}

func (h *Handler) removeProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}
	if err := h.service.RemoveProduct(c.UserContext(), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product removed"})
}
