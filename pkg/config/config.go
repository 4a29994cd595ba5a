package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "ecotrack"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App     AppConfig
	Service ServiceConfig
	DB      DBConfig
	Redis   RedisConfig
	Shopify ShopifyConfig
	PubSub  PubSubConfig
	GCP     GCPConfig
	Sync    SyncConfig
	Geo     GeoConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ECOTRACK_APP_ENV" required:"true"`
	Port         string `envconfig:"ECOTRACK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ECOTRACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ECOTRACK_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"ECOTRACK_CORS_ORIGINS" default:"https://admin.shopify.com"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ECOTRACK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ECOTRACK_DB_DSN"`
	Driver string `envconfig:"ECOTRACK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"ECOTRACK_DB_HOST"`
	Port     int    `envconfig:"ECOTRACK_DB_PORT" default:"5432"`
	User     string `envconfig:"ECOTRACK_DB_USER"`
	Password string `envconfig:"ECOTRACK_DB_PASSWORD"`
	Name     string `envconfig:"ECOTRACK_DB_NAME"`
	SSLMode  string `envconfig:"ECOTRACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ECOTRACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ECOTRACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ECOTRACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ECOTRACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	AutoMigrate     bool          `envconfig:"ECOTRACK_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ECOTRACK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ECOTRACK_REDIS_ADDR"`
	Password     string        `envconfig:"ECOTRACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"ECOTRACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ECOTRACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ECOTRACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ECOTRACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ECOTRACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ECOTRACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type ShopifyConfig struct {
	ShopDomain    string        `envconfig:"ECOTRACK_SHOPIFY_SHOP_DOMAIN"`
	AccessToken   string        `envconfig:"ECOTRACK_SHOPIFY_ACCESS_TOKEN" required:"true"`
	APIVersion    string        `envconfig:"ECOTRACK_SHOPIFY_API_VERSION" default:"2025-07"`
	WebhookSecret string        `envconfig:"ECOTRACK_SHOPIFY_WEBHOOK_SECRET" required:"true"`
	AppAPIKey     string        `envconfig:"ECOTRACK_SHOPIFY_APP_API_KEY"`
	AppAPISecret  string        `envconfig:"ECOTRACK_SHOPIFY_APP_API_SECRET" required:"true"`
	HTTPTimeout   time.Duration `envconfig:"ECOTRACK_SHOPIFY_HTTP_TIMEOUT" default:"30s"`
	MaxRetries    int           `envconfig:"ECOTRACK_SHOPIFY_MAX_RETRIES" default:"3"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"ECOTRACK_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	WebhookTopic        string `envconfig:"ECOTRACK_PUBSUB_WEBHOOK_TOPIC" default:"et-shopify-webhooks"`
	WebhookSubscription string `envconfig:"ECOTRACK_PUBSUB_WEBHOOK_SUBSCRIPTION"`
}

type SyncConfig struct {
	PageSize        int           `envconfig:"ECOTRACK_SYNC_PAGE_SIZE" default:"50"`
	MaxPages        int           `envconfig:"ECOTRACK_SYNC_MAX_PAGES" default:"10"`
	ImportBatchSize int           `envconfig:"ECOTRACK_IMPORT_BATCH_SIZE" default:"5"`
	ImportBatchWait time.Duration `envconfig:"ECOTRACK_IMPORT_BATCH_WAIT" default:"500ms"`
}

// GeoConfig carries the fallback warehouse coordinates used when the platform
// reports no primary location. Defaults point at central Copenhagen.
type GeoConfig struct {
	DefaultLatitude  float64 `envconfig:"ECOTRACK_GEO_DEFAULT_LAT" default:"55.6761"`
	DefaultLongitude float64 `envconfig:"ECOTRACK_GEO_DEFAULT_LNG" default:"12.5683"`
}

func (s ShopifyConfig) NormalizedShopDomain() string {
	domain := strings.TrimSpace(s.ShopDomain)
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	return strings.TrimSuffix(domain, "/")
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		"ECOTRACK_DB_HOST": db.Host,
		"ECOTRACK_DB_USER": db.User,
		"ECOTRACK_DB_NAME": db.Name,
	}
	for _, key := range []string{"ECOTRACK_DB_HOST", "ECOTRACK_DB_USER", "ECOTRACK_DB_NAME"} {
		if values[key] == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either ECOTRACK_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
