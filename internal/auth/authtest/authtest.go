// Package authtest injects identities into fiber requests for handler tests.
package authtest

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	HeaderUserID = "X-User-ID"
	HeaderRole   = "X-User-Role"
)

// Inject puts a *jwt.Token into c.Locals("user") when X-User-ID is present,
// standing in for the real JWT middleware.
func Inject() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := c.Get(HeaderUserID); id != "" {
			role := c.Get(HeaderRole)
			if role == "" {
				role = "customer"
			}
			c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"id": id, "role": role}, Valid: true})
		}
		return c.Next()
	}
}

// As sets the identity headers read by Inject.
func As(req *http.Request, id uuid.UUID, role string) *http.Request {
	req.Header.Set(HeaderUserID, id.String())
	req.Header.Set(HeaderRole, role)
	return req
}
