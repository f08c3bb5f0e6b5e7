package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

// Config is loaded once in main and handed to constructors; nothing reads the
// environment after startup.
type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
	Seed          SeedConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// validate collects every invalid setting into one error.
func (c *Config) validate() error {
	var err error
	if c.JWT.Secret == c.JWT.CustomerSecret {
		err = multierr.Append(err, errors.New(EnvCustomerJWTSecret+" must differ from "+EnvJWTSecret))
	}
	if c.JWT.AccessTTL() <= 0 {
		err = multierr.Append(err, errors.New(EnvJWTExpMins+" must be positive"))
	}
	if c.JWT.CustomerTTL() <= 0 {
		err = multierr.Append(err, errors.New("FEEDMILL_CUSTOMER_JWT_EXPIRATION_MINUTES must be positive"))
	}
	switch strings.ToLower(c.App.LogFormat) {
	case "json", "console":
	default:
		err = multierr.Append(err, fmt.Errorf("FEEDMILL_LOG_FORMAT must be json or console, got %q", c.App.LogFormat))
	}
	switch c.DB.Driver {
	case DBDriverPostgres, DBDriverSQLite:
	default:
		err = multierr.Append(err, fmt.Errorf("FEEDMILL_DB_DRIVER must be postgres or sqlite, got %q", c.DB.Driver))
	}
	if c.AuthRateLimit.LoginEmailLimit < 0 || c.AuthRateLimit.LoginIPLimit < 0 {
		err = multierr.Append(err, errors.New("login rate limits cannot be negative"))
	}
	return err
}

type AppConfig struct {
	Env          string `envconfig:"FEEDMILL_APP_ENV" required:"true"`
	Port         string `envconfig:"FEEDMILL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FEEDMILL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FEEDMILL_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"FEEDMILL_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FEEDMILL_DB_DSN"`
	Driver string `envconfig:"FEEDMILL_DB_DRIVER" default:"postgres"`

	// Used to build a postgres DSN when FEEDMILL_DB_DSN is unset.
	Host     string `envconfig:"FEEDMILL_DB_HOST"`
	Port     int    `envconfig:"FEEDMILL_DB_PORT" default:"5432"`
	User     string `envconfig:"FEEDMILL_DB_USER"`
	Password string `envconfig:"FEEDMILL_DB_PASSWORD"`
	Name     string `envconfig:"FEEDMILL_DB_NAME"`
	SSLMode  string `envconfig:"FEEDMILL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FEEDMILL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FEEDMILL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FEEDMILL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FEEDMILL_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"FEEDMILL_DB_SLOW_QUERY_THRESHOLD" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FEEDMILL_REDIS_URL"`
	Address      string        `envconfig:"FEEDMILL_REDIS_ADDR"`
	Password     string        `envconfig:"FEEDMILL_REDIS_PASSWORD"`
	DB           int           `envconfig:"FEEDMILL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FEEDMILL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FEEDMILL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FEEDMILL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FEEDMILL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FEEDMILL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig holds the signing material for both admin sessions and customer tokens.
// The two secrets are kept apart so a customer token can never pass as an admin one.
type JWTConfig struct {
	Secret                    string `envconfig:"FEEDMILL_JWT_SECRET" required:"true"`
	CustomerSecret            string `envconfig:"FEEDMILL_CUSTOMER_JWT_SECRET" required:"true"`
	Issuer                    string `envconfig:"FEEDMILL_JWT_ISSUER" default:"feedmill"`
	ExpirationMinutes         int    `envconfig:"FEEDMILL_JWT_EXPIRATION_MINUTES" default:"1440"`
	CustomerExpirationMinutes int    `envconfig:"FEEDMILL_CUSTOMER_JWT_EXPIRATION_MINUTES" default:"1440"`
	SecureCookies             bool   `envconfig:"FEEDMILL_SECURE_COOKIES" default:"true"`
}

// AccessTTL returns the admin access token lifetime.
func (j JWTConfig) AccessTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// CustomerTTL returns the customer token lifetime.
func (j JWTConfig) CustomerTTL() time.Duration {
	if j.CustomerExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.CustomerExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FEEDMILL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FEEDMILL_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FEEDMILL_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FEEDMILL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FEEDMILL_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"FEEDMILL_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"FEEDMILL_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"FEEDMILL_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FEEDMILL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FEEDMILL_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string      `envconfig:"FEEDMILL_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	MaxAge         time.Duration `envconfig:"FEEDMILL_CORS_MAX_AGE" default:"5m"`
}

type SeedConfig struct {
	AdminEmail    string `envconfig:"FEEDMILL_SEED_ADMIN_EMAIL" default:"admin@example.com"`
	AdminPassword string `envconfig:"FEEDMILL_SEED_ADMIN_PASSWORD"`
	AdminName     string `envconfig:"FEEDMILL_SEED_ADMIN_NAME" default:"Default Admin"`
	AdminPhone    string `envconfig:"FEEDMILL_SEED_ADMIN_PHONE"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	switch {
	case db.DSN != "":
		return nil
	case useSQLite:
		db.DSN = defaultSQLiteDSN
		return nil
	}

	var missing []string
	for env, value := range map[string]string{EnvDBHost: db.Host, EnvDBUser: db.User, EnvDBName: db.Name} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("set %s or all of %s", EnvDBDSN, strings.Join(missing, ", "))
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.User(db.User),
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.Password != "" {
		u.User = url.UserPassword(db.User, db.Password)
	}
	if db.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {db.SSLMode}}.Encode()
	}
	db.DSN = u.String()
	return nil
}
