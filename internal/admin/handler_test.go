package admin

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/wichananm65/campus-market-backend/internal/auth"
	"github.com/wichananm65/campus-market-backend/internal/auth/authtest"
	"github.com/wichananm65/campus-market-backend/internal/order"
	"github.com/wichananm65/campus-market-backend/internal/product"
	"github.com/wichananm65/campus-market-backend/internal/user"
)

type adminFixture struct {
	app      *fiber.App
	admin    uuid.UUID
	vendor   uuid.UUID
	customer uuid.UUID
	listing  product.Product
	products *product.Service
}

func newAdminFixture() adminFixture {
	f := adminFixture{admin: uuid.New(), vendor: uuid.New(), customer: uuid.New()}
	users := user.NewService(user.NewInMemoryRepository([]user.User{
		{ID: f.admin, Username: "root", Email: "admin@campus.edu", Role: auth.RoleAdmin},
		{ID: f.vendor, Username: "kofi", Email: "kofi@campus.edu", Role: auth.RoleVendor, Password: "hash"},
		{ID: f.customer, Username: "ama", Email: "ama@campus.edu", Role: auth.RoleCustomer},
	}), nil)
	f.listing = product.Product{ID: uuid.New(), VendorID: f.vendor, Title: "Textbook", Price: 30, Category: "books", Status: product.StatusActive}
	f.products = product.NewService(product.NewInMemoryRepository([]product.Product{f.listing}))
	orders := order.NewService(order.NewInMemoryRepository([]order.Order{
		{ID: uuid.New(), BuyerID: f.customer, Status: order.StatusPending},
		{ID: uuid.New(), BuyerID: f.customer, Status: order.StatusDelivered},
	}), nil, nil)

	f.app = fiber.New()
	f.app.Use(authtest.Inject())
	NewHandler(NewService(users, f.products, orders)).RegisterProtectedRoutes(f.app)
	return f
}

func (f adminFixture) do(t *testing.T, method, path, body string, id uuid.UUID, role string) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	res, err := f.app.Test(authtest.As(req, id, role))
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(b)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	f := newAdminFixture()
	for _, path := range []string{"/api/admin/dashboard", "/api/admin/vendors", "/api/admin/users"} {
		if status, _ := f.do(t, "GET", path, "", f.vendor, "vendor"); status != fiber.StatusForbidden {
			t.Fatalf("%s: expected 403 for vendor, got %d", path, status)
		}
	}
	res, _ := f.app.Test(httptest.NewRequest("GET", "/api/admin/dashboard", nil))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", res.StatusCode)
	}
}

func TestAdminDashboard(t *testing.T) {
	f := newAdminFixture()
	status, body := f.do(t, "GET", "/api/admin/dashboard", "", f.admin, "admin")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d %s", status, body)
	}
	var got struct {
		Stats Dashboard `json:"stats"`
	}
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Stats.Users[auth.RoleVendor] != 1 || got.Stats.Users[auth.RoleCustomer] != 1 {
		t.Fatalf("unexpected user counts %+v", got.Stats.Users)
	}
	if got.Stats.Products != 1 {
		t.Fatalf("expected 1 product, got %d", got.Stats.Products)
	}
	if got.Stats.Orders[order.StatusPending] != 1 || got.Stats.Orders[order.StatusDelivered] != 1 {
		t.Fatalf("unexpected order counts %+v", got.Stats.Orders)
	}
}

func TestAdminVendors(t *testing.T) {
	f := newAdminFixture()

	status, body := f.do(t, "GET", "/api/admin/vendors", "", f.admin, "admin")
	if status != fiber.StatusOK || !strings.Contains(body, "kofi") || strings.Contains(body, "ama@") {
		t.Fatalf("expected vendor list, got %d %s", status, body)
	}
	if strings.Contains(body, "hash") {
		t.Fatalf("password leaked: %s", body)
	}

	status, body = f.do(t, "PUT", "/api/admin/verify-vendor/"+f.vendor.String(), `{"verified":true}`, f.admin, "admin")
	if status != fiber.StatusOK || !strings.Contains(body, "Vendor verified successfully") || !strings.Contains(body, `"verified":true`) {
		t.Fatalf("expected verified vendor, got %d %s", status, body)
	}

	status, _ = f.do(t, "PUT", "/api/admin/verify-vendor/"+f.customer.String(), `{"verified":true}`, f.admin, "admin")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 when verifying a customer, got %d", status)
	}

	status, _ = f.do(t, "PUT", "/api/admin/verify-vendor/"+f.vendor.String(), `{}`, f.admin, "admin")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 without verified flag, got %d", status)
	}
}

func TestAdminUsers(t *testing.T) {
	f := newAdminFixture()

	status, _ := f.do(t, "DELETE", "/api/admin/users/"+f.admin.String(), "", f.admin, "admin")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for self delete, got %d", status)
	}

	status, _ = f.do(t, "DELETE", "/api/admin/users/"+f.customer.String(), "", f.admin, "admin")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 for delete, got %d", status)
	}
	_, body := f.do(t, "GET", "/api/admin/users", "", f.admin, "admin")
	if strings.Contains(body, f.customer.String()) {
		t.Fatalf("deleted user still listed: %s", body)
	}

	status, _ = f.do(t, "DELETE", "/api/admin/users/"+uuid.NewString(), "", f.admin, "admin")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", status)
	}
}

func TestAdminProductModeration(t *testing.T) {
	f := newAdminFixture()
	path := "/api/admin/products/" + f.listing.ID.String()

	status, _ := f.do(t, "PATCH", path+"/status", `{"status":"archived"}`, f.admin, "admin")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", status)
	}

	status, body := f.do(t, "PATCH", path+"/status", `{"status":"hidden"}`, f.admin, "admin")
	if status != fiber.StatusOK || !strings.Contains(body, `"status":"hidden"`) {
		t.Fatalf("expected hidden product, got %d %s", status, body)
	}

	status, _ = f.do(t, "DELETE", path, "", f.admin, "admin")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 for removal, got %d", status)
	}
	status, _ = f.do(t, "DELETE", path, "", f.admin, "admin")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for second removal, got %d", status)
	}
}
