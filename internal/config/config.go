package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Addr        string `envconfig:"ADDR" default:":5000"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"*"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	JWTSecret        string        `envconfig:"JWT_SECRET" required:"true"`
	JWTRefreshSecret string        `envconfig:"JWT_REFRESH_SECRET" required:"true"`
	AccessTokenTTL   time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"3h"`
	RefreshTokenTTL  time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"168h"`

	// optional: when empty the broadcast stays in-process
	RedisURL string `envconfig:"REDIS_URL"`
	// optional: when empty order events are dropped
	RabbitMQURL   string `envconfig:"RABBITMQ_URL"`
	OrderExchange string `envconfig:"ORDER_EXCHANGE" default:"orders_exchange"`

	NotificationTTL           time.Duration `envconfig:"NOTIFICATION_TTL" default:"168h"`
	NotificationPurgeInterval time.Duration `envconfig:"NOTIFICATION_PURGE_INTERVAL" default:"1h"`

	StrictItemTransitions bool `envconfig:"STRICT_ITEM_TRANSITIONS" default:"false"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads a .env file when present and then decodes the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
