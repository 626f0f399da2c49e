package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/wichananm65/campus-market-backend/internal/auth"
	"github.com/wichananm65/campus-market-backend/internal/broadcast"
	"github.com/wichananm65/campus-market-backend/internal/config"
	"github.com/wichananm65/campus-market-backend/internal/database"
	"github.com/wichananm65/campus-market-backend/internal/events"
	"github.com/wichananm65/campus-market-backend/internal/logger"
	"github.com/wichananm65/campus-market-backend/internal/user"
)

const broadcastChannel = "market:broadcast"

func setup(ctx context.Context) (config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, db, nil
}

func migrateDB(c *cli.Context) error {
	_, db, err := setup(c.Context)
	if err != nil {
		return err
	}
	defer db.Close()
	return database.Migrate(db)
}

func seedAdmin(c *cli.Context) error {
	cfg, db, err := setup(c.Context)
	if err != nil {
		return err
	}
	defer db.Close()

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	users := user.NewService(user.NewPostgresRepository(db), issuer)
	admin, err := users.CreateAdmin(c.Context, c.String("username"), c.String("email"), c.String("password"))
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"user_id": admin.ID, "email": admin.Email}).Info("admin ready")
	return nil
}

// serve runs the API, the cross-instance broadcast relay and the
// notification purger until SIGINT or SIGTERM.
func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, db, err := setup(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		return err
	}

	hub := broadcast.NewHub(64)
	var publisher broadcast.Publisher = hub
	relay, err := connectRelay(ctx, cfg.RedisURL, hub)
	if err != nil {
		return err
	}
	if relay != nil {
		defer relay.Close()
		publisher = relay
	}

	var orderEvents events.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.RabbitMQURL, cfg.OrderExchange)
		if err != nil {
			log.WithError(err).Warn("rabbitmq unavailable, order events disabled")
		} else {
			defer rabbit.Close()
			orderEvents = rabbit
		}
	}

	srv := newServer(cfg, postgresStores(db), hub, publisher, orderEvents)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", cfg.Addr).Info("http server listening")
		return srv.app.Listen(cfg.Addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		return srv.app.ShutdownWithTimeout(10 * time.Second)
	})
	if relay != nil {
		g.Go(func() error {
			if err := relay.Run(gctx); err != nil {
				log.WithError(err).Warn("broadcast relay stopped")
			}
			return nil
		})
	}
	g.Go(func() error {
		return srv.notifications.RunPurger(gctx, cfg.NotificationPurgeInterval)
	})
	return g.Wait()
}

// connectRelay returns nil when url is empty or Redis does not answer a
// ping, leaving the broadcast on the in-process hub. A malformed url is an
// error.
func connectRelay(ctx context.Context, url string, hub *broadcast.Hub) (*broadcast.RedisRelay, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		log.WithError(err).Warn("redis unavailable, broadcast stays in-process")
		return nil, nil
	}
	return broadcast.NewRedisRelay(client, broadcastChannel, hub), nil
}
