package notification

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	fws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/wichananm65/campus-market-backend/internal/auth"
	"github.com/wichananm65/campus-market-backend/internal/auth/authtest"
	"github.com/wichananm65/campus-market-backend/internal/broadcast"
)

func makeAppWithNotificationHandler(h *Handler) *fiber.App {
	app := fiber.New()
	h.RegisterStreamRoutes(app)
	app.Use(authtest.Inject())
	h.RegisterProtectedRoutes(app)
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body string, id uuid.UUID, role string) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(authtest.As(req, id, role))
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(b)
}

func TestNotificationRoutes(t *testing.T) {
	hub := broadcast.NewHub(8)
	svc := NewService(NewInMemoryRepository(), hub, time.Hour)
	app := makeAppWithNotificationHandler(NewHandler(svc, hub, auth.NewIssuer("a", "r", time.Hour, time.Hour)))
	admin, vendor, customer := uuid.New(), uuid.New(), uuid.New()

	status, _ := send(t, app, "POST", "/api/notifications", `{"message":"hi","target":"vendor"}`, vendor, "vendor")
	if status != fiber.StatusForbidden {
		t.Fatalf("expected 403 for vendor create, got %d", status)
	}

	status, body := send(t, app, "POST", "/api/notifications", `{"message":"","target":"both"}`, admin, "admin")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for empty message, got %d %s", status, body)
	}

	status, body = send(t, app, "POST", "/api/notifications", `{"message":"Vendor fair on Friday","target":"vendor"}`, admin, "admin")
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d %s", status, body)
	}
	var created struct {
		Notification Notification `json:"notification"`
	}
	if err := json.Unmarshal([]byte(body), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	id := created.Notification.ID.String()

	status, body = send(t, app, "GET", "/api/notifications", "", vendor, "vendor")
	if status != fiber.StatusOK || !strings.Contains(body, "Vendor fair") {
		t.Fatalf("vendor should see the notification, got %d %s", status, body)
	}
	status, body = send(t, app, "GET", "/api/notifications", "", customer, "customer")
	if status != fiber.StatusOK || strings.Contains(body, "Vendor fair") {
		t.Fatalf("customer should not see a vendor notification, got %d %s", status, body)
	}

	status, _ = send(t, app, "PUT", "/api/notifications/"+id+"/read", "", vendor, "vendor")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 for mark read, got %d", status)
	}
	_, body = send(t, app, "GET", "/api/notifications", "", vendor, "vendor")
	if !strings.Contains(body, vendor.String()) {
		t.Fatalf("expected reader in readBy, got %s", body)
	}

	status, _ = send(t, app, "PUT", "/api/notifications/"+uuid.NewString()+"/read", "", vendor, "vendor")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown notification, got %d", status)
	}

	status, _ = send(t, app, "DELETE", "/api/notifications/"+id, "", admin, "admin")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 for delete, got %d", status)
	}
	status, _ = send(t, app, "DELETE", "/api/notifications/"+id, "", admin, "admin")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for second delete, got %d", status)
	}
}

func TestNotificationStreamRequiresUpgradeAndToken(t *testing.T) {
	hub := broadcast.NewHub(8)
	svc := NewService(NewInMemoryRepository(), hub, time.Hour)
	app := makeAppWithNotificationHandler(NewHandler(svc, hub, auth.NewIssuer("a", "r", time.Hour, time.Hour)))

	res, err := app.Test(httptest.NewRequest("GET", "/ws/notifications", nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != fiber.StatusUpgradeRequired {
		t.Fatalf("expected 426 without upgrade, got %d", res.StatusCode)
	}

	req := httptest.NewRequest("GET", "/ws/notifications?token=garbage", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	res, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", res.StatusCode)
	}
}

func TestNotificationStreamDeliversToRoleRoom(t *testing.T) {
	hub := broadcast.NewHub(8)
	issuer := auth.NewIssuer("access-secret", "refresh-secret", time.Hour, time.Hour)
	svc := NewService(NewInMemoryRepository(), hub, time.Hour)
	app := makeAppWithNotificationHandler(NewHandler(svc, hub, issuer))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go func() { _ = app.Listener(ln) }()
	defer func() { _ = app.Shutdown() }()

	vendor := uuid.New()
	pair, err := issuer.Issue(vendor, auth.RoleVendor)
	if err != nil {
		t.Fatal(err)
	}
	conn, _, err := fws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws/notifications?token="+pair.AccessToken, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers(broadcast.AudienceVendors) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream never joined the vendors room")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if _, err := svc.Create(context.Background(), "Stall fees due", TargetVendor); err != nil {
		t.Fatal(err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev broadcast.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Name != EventNew || !strings.Contains(string(ev.Payload), "Stall fees due") {
		t.Fatalf("unexpected event %+v", ev)
	}
}
