package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	APIPrefix string `env:"API_PREFIX, default=/api"`

	Session   SessionConfig
	HTTP      HTTPConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Reconcile ReconcileConfig
	Activity  ActivityConfig
	Seed      SeedConfig
}

type SessionConfig struct {
	Secret     string        `env:"SESSION_SECRET, required"`
	TTL        time.Duration `env:"SESSION_TTL,    default=24h"`
	CookieName string        `env:"COOKIE_NAME,    default=sid"`
}

type HTTPConfig struct {
	CORSOrigins  []string      `env:"CORS_ORIGINS,  default=http://localhost:5173"`
	BodyLimit    string        `env:"BODY_LIMIT,    default=10K"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,  default=15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT, default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,  default=60s"`
}

type MongoConfig struct {
	URI          string `env:"MONGO_URI,          default=mongodb://localhost:27017"`
	Database     string `env:"MONGO_DB,           default=project_access"`
	Transactions bool   `env:"MONGO_TRANSACTIONS, default=false"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type ReconcileConfig struct {
	Enabled  bool   `env:"RECONCILE_ENABLED,  default=true"`
	Schedule string `env:"RECONCILE_SCHEDULE, default=@every 10m"`
}

type ActivityConfig struct {
	Workers int `env:"ACTIVITY_WORKERS, default=4"`
}

type SeedConfig struct {
	AdminUsername string `env:"SEED_ADMIN_USERNAME, default=admin"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD, default=Pass@1234#"`
}

// IsProduction reports whether cookies must be Secure and cross-site.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads an optional .env file, then configuration from environment
// variables using go-envconfig. Variables already set in the environment win
// over the file.
func Load() *Config {
	cfg, err := LoadContext(context.Background())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadContext is Load without the panic.
func LoadContext(ctx context.Context, files ...string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load(files...)

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
