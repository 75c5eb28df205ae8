package config

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
)

// minProductionSecretBytes is the shortest JWT_SECRET accepted when ENV=production.
const minProductionSecretBytes = 32

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	JWT   JWTConfig
	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig

	// AdminAPIKey guards role assignment. Admin routes are not mounted when empty.
	AdminAPIKey string `env:"ADMIN_API_KEY"`
	// Policies adds named requirements, e.g. "RequirePlatinumSavingsAccount:PlatinumUser:Savings".
	Policies     map[string]string `env:"AUTHZ_POLICIES"`
	AuditWorkers int               `env:"AUDIT_WORKERS, default=4"`
}

type JWTConfig struct {
	Issuer   string `env:"JWT_ISSUER"`
	Audience string `env:"JWT_AUDIENCE"`
	Secret   string `env:"JWT_SECRET"`
}

type AuthConfig struct {
	HideFailureReason  bool          `env:"AUTH_HIDE_FAILURE_REASON, default=false"`
	LoginMaxFailures   int           `env:"LOGIN_MAX_FAILURES,       default=5"`
	LoginFailureWindow time.Duration `env:"LOGIN_FAILURE_WINDOW,     default=15m"`
	BcryptCost         int           `env:"BCRYPT_COST,              default=10"`
}

type MongoConfig struct {
	URI         string `env:"MONGO_URI,           default=mongodb://localhost:27017"`
	Database    string `env:"MONGO_DB,            default=bank_account_manager"`
	MaxPoolSize uint64 `env:"MONGO_MAX_POOL_SIZE, default=100"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Username string `env:"REDIS_USERNAME"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
	TLS      bool   `env:"REDIS_TLS,      default=false"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration from an arbitrary lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every missing or out-of-range setting at once. A non-nil
// result must abort startup.
func (c *Config) Validate() error {
	var result *multierror.Error
	if c.JWT.Issuer == "" {
		result = multierror.Append(result, fmt.Errorf("JWT_ISSUER is required"))
	}
	if c.JWT.Audience == "" {
		result = multierror.Append(result, fmt.Errorf("JWT_AUDIENCE is required"))
	}
	if c.JWT.Secret == "" {
		result = multierror.Append(result, fmt.Errorf("JWT_SECRET is required"))
	}
	if c.IsProduction() && c.JWT.Secret != "" && len(c.JWT.Secret) < minProductionSecretBytes {
		result = multierror.Append(result, fmt.Errorf("JWT_SECRET must be at least %d bytes in production", minProductionSecretBytes))
	}
	if c.Auth.BcryptCost != 0 && (c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost) {
		result = multierror.Append(result, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.Auth.LoginMaxFailures < 0 {
		result = multierror.Append(result, fmt.Errorf("LOGIN_MAX_FAILURES must not be negative"))
	}
	if c.Auth.LoginMaxFailures > 0 && c.Auth.LoginFailureWindow <= 0 {
		result = multierror.Append(result, fmt.Errorf("LOGIN_FAILURE_WINDOW must be positive"))
	}
	return result.ErrorOrNil()
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
