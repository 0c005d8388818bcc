package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Store        StoreConfig
	DB           DBConfig
	Mongo        MongoConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	ClientStore  ClientStoreConfig
	Checkout     CheckoutConfig
	RateLimit    RateLimitConfig
	WhatsApp     WhatsAppConfig
	CORS         CORSConfig
	GCP          GCPConfig
	GCS          GCSConfig
	PubSub       PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.Store.IsValid() {
		return nil, fmt.Errorf("%s must be one of %s or %s", EnvStoreBackend, StoreBackendSQL, StoreBackendMongo)
	}
	switch cfg.Store.Backend {
	case StoreBackendSQL:
		if !cfg.FeatureFlags.UseSQLite {
			if err := cfg.DB.ensureDSN(); err != nil {
				return nil, err
			}
		}
	case StoreBackendMongo:
		if cfg.Mongo.URI == "" {
			return nil, fmt.Errorf("%s is required when %s=%s", EnvMongoURI, EnvStoreBackend, StoreBackendMongo)
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VITRINE_APP_ENV" required:"true"`
	Port         string `envconfig:"VITRINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VITRINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VITRINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StoreConfig selects the document store that backs sellers, products and orders.
type StoreConfig struct {
	Backend string `envconfig:"VITRINE_STORE_BACKEND" default:"sql"`
}

func (s StoreConfig) IsValid() bool {
	return s.Backend == StoreBackendSQL || s.Backend == StoreBackendMongo
}

type DBConfig struct {
	DSN string `envconfig:"VITRINE_DB_DSN"`

	LegacyHost     string `envconfig:"VITRINE_DB_HOST"`
	LegacyPort     int    `envconfig:"VITRINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VITRINE_DB_USER"`
	LegacyPassword string `envconfig:"VITRINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"VITRINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"VITRINE_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"VITRINE_SQLITE_PATH" default:"file:vitrine.db?cache=shared"`

	MaxOpenConns    int           `envconfig:"VITRINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VITRINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VITRINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VITRINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type MongoConfig struct {
	URI            string        `envconfig:"VITRINE_MONGO_URI"`
	Database       string        `envconfig:"VITRINE_MONGO_DATABASE" default:"vitrine"`
	ConnectTimeout time.Duration `envconfig:"VITRINE_MONGO_CONNECT_TIMEOUT" default:"10s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VITRINE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VITRINE_REDIS_ADDR"`
	Password     string        `envconfig:"VITRINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"VITRINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VITRINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VITRINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VITRINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VITRINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VITRINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"VITRINE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"VITRINE_AUTO_MIGRATE" default:"false"`
}

// ClientStoreConfig controls the per-session records that stand in for browser storage.
type ClientStoreConfig struct {
	DurableTTL time.Duration `envconfig:"VITRINE_CLIENT_DURABLE_TTL" default:"720h"`
	SessionTTL time.Duration `envconfig:"VITRINE_CLIENT_SESSION_TTL" default:"2h"`
}

type CheckoutConfig struct {
	ProcessingTTL  time.Duration `envconfig:"VITRINE_CHECKOUT_PROCESSING_TTL" default:"30s"`
	IdempotencyTTL time.Duration `envconfig:"VITRINE_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
	FinalizeRate   float64       `envconfig:"VITRINE_CHECKOUT_FINALIZE_RATE" default:"1"`
	FinalizeBurst  int           `envconfig:"VITRINE_CHECKOUT_FINALIZE_BURST" default:"3"`
}

// RateLimitConfig throttles seller signup per client IP.
type RateLimitConfig struct {
	SignupWindow  time.Duration `envconfig:"VITRINE_SIGNUP_RATE_WINDOW" default:"1h"`
	SignupIPLimit int           `envconfig:"VITRINE_SIGNUP_RATE_IP_LIMIT" default:"10"`
}

type WhatsAppConfig struct {
	DefaultNumber string        `envconfig:"VITRINE_WHATSAPP_DEFAULT_NUMBER" default:"5511970179936"`
	HandoffGrace  time.Duration `envconfig:"VITRINE_HANDOFF_GRACE" default:"1500ms"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"VITRINE_CORS_ALLOWED_ORIGINS" default:"*"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"VITRINE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"VITRINE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"VITRINE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName  string `envconfig:"VITRINE_GCS_BUCKET_NAME"`
	MaxUploadMB int    `envconfig:"VITRINE_MAX_UPLOAD_MB" default:"10"`
}

// Enabled reports whether uploads have a bucket to land in.
func (g GCSConfig) Enabled() bool {
	return strings.TrimSpace(g.BucketName) != ""
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"VITRINE_PUBSUB_ORDERS_TOPIC"`
}

// Enabled reports whether order events should be published.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.OrdersTopic) != ""
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
