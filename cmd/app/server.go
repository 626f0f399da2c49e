package main

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/wichananm65/campus-market-backend/internal/admin"
	"github.com/wichananm65/campus-market-backend/internal/auth"
	"github.com/wichananm65/campus-market-backend/internal/broadcast"
	"github.com/wichananm65/campus-market-backend/internal/cart"
	"github.com/wichananm65/campus-market-backend/internal/category"
	"github.com/wichananm65/campus-market-backend/internal/config"
	"github.com/wichananm65/campus-market-backend/internal/events"
	"github.com/wichananm65/campus-market-backend/internal/middleware"
	"github.com/wichananm65/campus-market-backend/internal/notification"
	"github.com/wichananm65/campus-market-backend/internal/order"
	"github.com/wichananm65/campus-market-backend/internal/product"
	"github.com/wichananm65/campus-market-backend/internal/promo"
	"github.com/wichananm65/campus-market-backend/internal/user"
)

type stores struct {
	users         user.Repository
	products      product.Repository
	categories    category.Repository
	carts         cart.Repository
	orders        order.Repository
	notifications notification.Repository
	promos        promo.Repository
}

func postgresStores(db *sql.DB) stores {
	return stores{
		users:         user.NewPostgresRepository(db),
		products:      product.NewPostgresRepository(db),
		categories:    category.NewPostgresRepository(db),
		carts:         cart.NewPostgresRepository(db),
		orders:        order.NewPostgresRepository(db),
		notifications: notification.NewPostgresRepository(db),
		promos:        promo.NewPostgresRepository(db),
	}
}

type server struct {
	app           *fiber.App
	issuer        *auth.Issuer
	notifications *notification.Service
}

func newServer(cfg config.Config, st stores, hub *broadcast.Hub, publisher broadcast.Publisher, orderEvents events.Publisher) *server {
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	userService := user.NewService(st.users, issuer)
	productService := product.NewService(st.products)
	cartService := cart.NewService(st.carts, productService)

	orderOpts := []order.Option{order.WithCart(cartService)}
	if cfg.StrictItemTransitions {
		orderOpts = append(orderOpts, order.WithStrictTransitions())
	}
	orderService := order.NewService(st.orders, userService, productService, orderOpts...)
	notificationService := notification.NewService(st.notifications, publisher, cfg.NotificationTTL)

	userHandler := user.NewHandler(userService)
	productHandler := product.NewHandler(productService)
	categoryHandler := category.NewHandler(category.NewService(st.categories))
	cartHandler := cart.NewHandler(cartService)
	orderHandler := order.NewHandler(orderService, order.NewFanoutNotifier(publisher, orderEvents))
	notificationHandler := notification.NewHandler(notificationService, hub, issuer)
	promoHandler := promo.NewHandler(promo.NewService(st.promos, userService))
	adminHandler := admin.NewHandler(admin.NewService(userService, productService, orderService))

	app := fiber.New(fiber.Config{AppName: "campus-market"})
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.Prometheus())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", middleware.MetricsHandler())

	notificationHandler.RegisterStreamRoutes(app)
	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	categoryHandler.RegisterPublicRoutes(app)
	promoHandler.RegisterPublicRoutes(app)

	app.Use(auth.Middleware(issuer.AccessSecret()))

	userHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	notificationHandler.RegisterProtectedRoutes(app)
	promoHandler.RegisterProtectedRoutes(app)
	adminHandler.RegisterProtectedRoutes(app)

	return &server{app: app, issuer: issuer, notifications: notificationService}
}
