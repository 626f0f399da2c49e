package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Middleware verifies the bearer access token and stores the parsed token in
// c.Locals("user"). Expired tokens answer "TokenExpired" so clients know to
// call the refresh endpoint.
func Middleware(secret []byte) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: secret,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			switch {
			case err.Error() == "Missing or malformed JWT":
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "No token provided"})
			case errors.Is(err, jwt.ErrTokenExpired):
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "TokenExpired"})
			default:
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
			}
		},
	})
}

// FromCtx extracts the claims of the token stored by Middleware.
func FromCtx(c *fiber.Ctx) (Claims, error) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok || tok == nil {
		return Claims{}, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fiber.ErrUnauthorized
	}
	parsed, err := ClaimsFromMap(claims)
	if err != nil {
		return Claims{}, fiber.ErrUnauthorized
	}
	return parsed, nil
}

func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, err := FromCtx(c)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

// RequireRole lets the request through only when the caller has one of roles.
func RequireRole(roles ...Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := FromCtx(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		}
		for _, r := range roles {
			if claims.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Access denied"})
	}
}

func RoleOf(c *fiber.Ctx) (Role, error) {
	claims, err := FromCtx(c)
	if err != nil {
		return "", err
	}
	return claims.Role, nil
}
