package cart

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/wichananm65/campus-market-backend/internal/auth/authtest"
	"github.com/wichananm65/campus-market-backend/internal/product"
)

func makeAppWithCartHandler(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(authtest.Inject())
	h.RegisterProtectedRoutes(app)
	return app
}

func postCart(t *testing.T, app *fiber.App, userID uuid.UUID, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/cart", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(authtest.As(req, userID, "customer"))
	if err != nil {
		t.Fatalf("cart request failed: %v", err)
	}
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(b)
}

func TestCartRoutes_Basic(t *testing.T) {
	lamp := product.Product{ID: uuid.New(), VendorID: uuid.New(), Title: "Desk Lamp", Price: 45, Category: "home", Status: product.StatusActive}
	sold := product.Product{ID: uuid.New(), VendorID: uuid.New(), Title: "Bike", Price: 400, Category: "sports", Status: product.StatusSold}
	catalog := product.NewService(product.NewInMemoryRepository([]product.Product{lamp, sold}))
	app := makeAppWithCartHandler(NewHandler(NewService(NewInMemoryRepository(), catalog)))
	buyer := uuid.New()

	// unauthenticated access is blocked
	res, _ := app.Test(httptest.NewRequest("GET", "/api/cart", nil))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated GET, got %d", res.StatusCode)
	}

	// vendors have no cart
	res, _ = app.Test(authtest.As(httptest.NewRequest("GET", "/api/cart", nil), uuid.New(), "vendor"))
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for vendor GET, got %d", res.StatusCode)
	}

	status, body := postCart(t, app, buyer, `{"productId":"`+lamp.ID.String()+`","quantity":2}`)
	if status != fiber.StatusOK || !strings.Contains(body, `"quantity":2`) {
		t.Fatalf("expected quantity 2 after first add, got %d %s", status, body)
	}

	// omitted quantity adds one
	status, body = postCart(t, app, buyer, `{"productId":"`+lamp.ID.String()+`"}`)
	if status != fiber.StatusOK || !strings.Contains(body, `"quantity":3`) {
		t.Fatalf("expected quantity 3 after second add, got %d %s", status, body)
	}
	if !strings.Contains(body, "Desk Lamp") {
		t.Fatalf("expected product details in cart, got %s", body)
	}

	status, body = postCart(t, app, buyer, `{"productId":"`+lamp.ID.String()+`","quantity":-1}`)
	if status != fiber.StatusOK || !strings.Contains(body, `"quantity":2`) {
		t.Fatalf("expected quantity 2 after decrement, got %d %s", status, body)
	}

	// reaching zero removes the line
	status, body = postCart(t, app, buyer, `{"productId":"`+lamp.ID.String()+`","quantity":-5}`)
	if status != fiber.StatusOK || strings.Contains(body, lamp.ID.String()) {
		t.Fatalf("expected line removed, got %d %s", status, body)
	}

	status, _ = postCart(t, app, buyer, `{"productId":"`+uuid.NewString()+`","quantity":1}`)
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", status)
	}

	status, _ = postCart(t, app, buyer, `{"productId":"`+sold.ID.String()+`","quantity":1}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for sold product, got %d", status)
	}

	postCart(t, app, buyer, `{"productId":"`+lamp.ID.String()+`","quantity":1}`)
	res, _ = app.Test(authtest.As(httptest.NewRequest("DELETE", "/api/cart", nil), buyer, "customer"))
	if res.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204 for clear cart, got %d", res.StatusCode)
	}
	res, _ = app.Test(authtest.As(httptest.NewRequest("GET", "/api/cart", nil), buyer, "customer"))
	b, _ := io.ReadAll(res.Body)
	if strings.TrimSpace(string(b)) != "[]" {
		t.Fatalf("expected empty cart after clear, got %s", string(b))
	}
}
