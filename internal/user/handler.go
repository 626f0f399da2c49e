package user

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/auth"
)

type Handler struct {
	service *Service
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Post("/api/auth/register", h.register)
	app.Post("/api/auth/login", h.login)
	app.Post("/api/auth/refresh", h.refresh)
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Post("/api/auth/logout", h.logout)
	app.Get("/api/profile", h.getProfile)
	app.Patch("/api/profile", h.updateProfile)
	app.Put("/api/profile", h.updateProfile)
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(Registration)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	created, err := h.service.Register(c.UserContext(), *payload)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User registered", "user": created})
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	session, err := h.service.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{
		"message":      "Login successful",
		"user":         session.User,
		"accessToken":  session.AccessToken,
		"refreshToken": session.RefreshToken,
	})
}

func (h *Handler) refresh(c *fiber.Ctx) error {
	payload := new(refreshRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	session, err := h.service.Refresh(c.UserContext(), payload.RefreshToken)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(session.TokenPair)
}

func (h *Handler) logout(c *fiber.Ctx) error {
	id, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if err := h.service.Logout(c.UserContext(), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

func (h *Handler) getProfile(c *fiber.Ctx) error {
	id, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	u, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(u)
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	id, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	var payload Profile
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updated, err := h.service.UpdateProfile(c.UserContext(), id, payload)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(updated)
}
