package order

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/auth"
	"github.com/wichananm65/campus-market-backend/internal/middleware"
)

type Handler struct {
	service  *Service
	notifier Notifier
}

// NewHandler wires the order routes. A nil notifier disables fan-out.
func NewHandler(service *Service, notifier Notifier) *Handler {
	return &Handler{service: service, notifier: notifier}
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	customer := auth.RequireRole(auth.RoleCustomer)
	vendor := auth.RequireRole(auth.RoleVendor)

	app.Post("/api/orders", customer, h.createOrder)
	app.Post("/api/orders/checkout", customer, h.checkout)
	app.Get("/api/orders/mine", customer, h.getMyOrders)
	app.Get("/api/orders/vendor", vendor, h.getVendorOrders)
	app.Get("/api/orders/:id<guid>", h.getOrder)
	app.Patch("/api/orders/:id<guid>/items/:itemId<guid>/status", vendor, h.updateItemStatus)
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	buyerID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	in := new(CreateInput)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	created, err := h.service.Create(c.UserContext(), buyerID, *in)
	middleware.RecordOperation("order_create", err == nil)
	if err != nil {
		return apperr.Respond(c, err)
	}
	h.notifyCreated(created)
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	buyerID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	in := new(CheckoutInput)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	created, err := h.service.Checkout(c.UserContext(), buyerID, *in)
	middleware.RecordOperation("order_checkout", err == nil)
	if err != nil {
		return apperr.Respond(c, err)
	}
	h.notifyCreated(created)
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) getMyOrders(c *fiber.Ctx) error {
	buyerID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	orders, err := h.service.ListForBuyer(c.UserContext(), buyerID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) getVendorOrders(c *fiber.Ctx) error {
	vendorID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	views, err := h.service.ListForVendor(c.UserContext(), vendorID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(views)
}

// getOrder answers with the view the caller's role is entitled to.
func (h *Handler) getOrder(c *fiber.Ctx) error {
	claims, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	ctx := c.UserContext()
	switch claims.Role {
	case auth.RoleAdmin:
		o, err := h.service.GetByID(ctx, id)
		if err != nil {
			return apperr.Respond(c, err)
		}
		return c.JSON(o)
	case auth.RoleVendor:
		view, err := h.service.GetForVendor(ctx, id, claims.UserID)
		if err != nil {
			return apperr.Respond(c, err)
		}
		return c.JSON(view)
	default:
		o, err := h.service.GetForBuyer(ctx, id, claims.UserID)
		if err != nil {
			return apperr.Respond(c, err)
		}
		return c.JSON(o)
	}
}

type updateItemStatusRequest struct {
	Status ItemStatus `json:"status"`
}

func (h *Handler) updateItemStatus(c *fiber.Ctx) error {
	vendorID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}
	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid item id"})
	}

	req := new(updateItemStatusRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	update, err := h.service.UpdateItemStatus(c.UserContext(), orderID, itemID, vendorID, req.Status)
	middleware.RecordOperation("order_item_status", err == nil)
	if err != nil {
		return apperr.Respond(c, err)
	}
	if h.notifier != nil {
		go h.notifier.ItemStatusChanged(context.Background(), update)
	}
	return c.JSON(update)
}

// notifyCreated runs after the response is decided; the request context
// is not reused because fiber recycles it.
func (h *Handler) notifyCreated(o Order) {
	if h.notifier != nil {
		go h.notifier.OrderCreated(context.Background(), o)
	}
}
