package notification

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/auth"
	"github.com/wichananm65/campus-market-backend/internal/broadcast"
)

// Subscriber hands out realtime subscriptions.
type Subscriber interface {
	Subscribe(audiences ...string) *broadcast.Subscription
}

type Handler struct {
	service *Service
	hub     Subscriber
	issuer  *auth.Issuer
}

func NewHandler(service *Service, hub Subscriber, issuer *auth.Issuer) *Handler {
	return &Handler{service: service, hub: hub, issuer: issuer}
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	adminOnly := auth.RequireRole(auth.RoleAdmin)
	app.Post("/api/notifications", adminOnly, h.createNotification)
	app.Delete("/api/notifications/:id<guid>", adminOnly, h.deleteNotification)
	app.Get("/api/notifications", h.getNotifications)
	app.Put("/api/notifications/:id<guid>/read", h.markRead)
}

// RegisterStreamRoutes mounts the websocket. Browsers cannot set headers on
// a websocket handshake, so the access token travels in ?token=.
func (h *Handler) RegisterStreamRoutes(app fiber.Router) {
	app.Get("/ws/notifications", h.authorizeStream, websocket.New(h.stream))
}

type createNotificationRequest struct {
	Message string `json:"message"`
	Target  Target `json:"target"`
}

func (h *Handler) createNotification(c *fiber.Ctx) error {
	req := new(createNotificationRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	n, err := h.service.Create(c.UserContext(), req.Message, req.Target)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Notification sent", "notification": n})
}

func (h *Handler) deleteNotification(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid notification id"})
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification deleted"})
}

func (h *Handler) getNotifications(c *fiber.Ctx) error {
	role, err := auth.RoleOf(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	list, err := h.service.ListForRole(c.UserContext(), role)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) markRead(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid notification id"})
	}
	if err := h.service.MarkRead(c.UserContext(), id, userID); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

func (h *Handler) authorizeStream(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	token := c.Query("token")
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "No token provided"})
	}
	claims, err := h.issuer.ParseAccess(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}
	c.Locals("claims", claims)
	return c.Next()
}

// stream joins the caller's role room and personal room and forwards events
// until either side closes.
func (h *Handler) stream(conn *websocket.Conn) {
	claims, ok := conn.Locals("claims").(auth.Claims)
	if !ok {
		return
	}
	sub := h.hub.Subscribe(broadcast.RoleAudience(claims.Role), broadcast.UserAudience(claims.UserID))
	defer sub.Close()

	entry := log.WithFields(log.Fields{"user_id": claims.UserID, "role": claims.Role})
	entry.Debug("notification stream opened")
	defer entry.Debug("notification stream closed")

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				entry.WithError(err).Warn("notification stream write failed")
				return
			}
		}
	}
}
