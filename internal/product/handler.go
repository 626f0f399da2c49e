package product

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

// RegisterPublicRoutes mounts the catalog reads. The id route only matches
// UUIDs so that /api/products/mine reaches the protected group.
func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/api/products", h.getProducts)
	app.Get("/api/products/category/:category", h.getProductsByCategory)
	app.Get("/api/products/:id<guid>", h.getProduct)
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	vendorOnly := auth.RequireRole(auth.RoleVendor)
	app.Get("/api/products/mine", vendorOnly, h.getMyProducts)
	app.Post("/api/products", vendorOnly, h.createProduct)
	app.Put("/api/products/:id", vendorOnly, h.updateProduct)
	app.Delete("/api/products/:id", vendorOnly, h.deleteProduct)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(products)
}

func (h *Handler) getProductsByCategory(c *fiber.Ctx) error {
	products, err := h.service.ListByCategory(c.UserContext(), c.Params("category"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	p, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	if p.Status == StatusHidden {
		return apperr.Respond(c, ErrNotFound)
	}
	return c.JSON(p)
}

func (h *Handler) getMyProducts(c *fiber.Ctx) error {
	vendorID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	products, err := h.service.ListByVendor(c.UserContext(), vendorID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(products)
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	vendorID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	in := new(Input)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	created, err := h.service.Create(c.UserContext(), vendorID, *in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product added successfully", "product": created})
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	vendorID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	patch := new(Patch)
	if err := c.BodyParser(patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updated, err := h.service.Update(c.UserContext(), vendorID, id, *patch)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated successfully", "product": updated})
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	vendorID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	if err := h.service.Delete(c.UserContext(), vendorID, id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}
