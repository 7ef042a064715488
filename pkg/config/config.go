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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Storage      StorageConfig
	Blob         BlobConfig
	Images       ImagesConfig
	Search       SearchConfig
	GoogleMaps   GoogleMapsConfig
	Cron         CronConfig
	RateLimit    RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ESTATEHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"ESTATEHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ESTATEHUB_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"ESTATEHUB_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"ESTATEHUB_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"ESTATEHUB_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	return splitList(a.CORSOrigins)
}

type ServiceConfig struct {
	Kind string `envconfig:"ESTATEHUB_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ESTATEHUB_DB_DSN"`
	Driver string `envconfig:"ESTATEHUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ESTATEHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"ESTATEHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ESTATEHUB_DB_USER"`
	LegacyPassword string `envconfig:"ESTATEHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"ESTATEHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"ESTATEHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ESTATEHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ESTATEHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ESTATEHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ESTATEHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	// SlowQuery is the duration above which statements are logged at warn.
	SlowQuery time.Duration `envconfig:"ESTATEHUB_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ESTATEHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ESTATEHUB_REDIS_ADDR"`
	Password     string        `envconfig:"ESTATEHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"ESTATEHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ESTATEHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ESTATEHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ESTATEHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ESTATEHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ESTATEHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig verifies tokens minted by the identity provider.
type JWTConfig struct {
	Secret            string `envconfig:"ESTATEHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ESTATEHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ESTATEHUB_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ESTATEHUB_AUTO_MIGRATE" default:"false"`
}

// StorageConfig selects where uploaded images are written.
type StorageConfig struct {
	Driver string `envconfig:"ESTATEHUB_STORAGE_DRIVER" default:"local"`

	LocalDir          string `envconfig:"ESTATEHUB_STORAGE_LOCAL_DIR" default:"./uploads"`
	LocalPublicPrefix string `envconfig:"ESTATEHUB_STORAGE_LOCAL_PUBLIC_PREFIX" default:"/uploads"`

	Endpoint   string `envconfig:"ESTATEHUB_STORAGE_ENDPOINT"`
	AccessKey  string `envconfig:"ESTATEHUB_STORAGE_ACCESS_KEY"`
	SecretKey  string `envconfig:"ESTATEHUB_STORAGE_SECRET_KEY"`
	Bucket     string `envconfig:"ESTATEHUB_STORAGE_BUCKET" default:"property-images"`
	PublicBase string `envconfig:"ESTATEHUB_STORAGE_PUBLIC_BASE"`
	UseSSL     bool   `envconfig:"ESTATEHUB_STORAGE_USE_SSL" default:"true"`
}

func (s StorageConfig) IsObjectStore() bool {
	return strings.EqualFold(s.Driver, StorageDriverMinio)
}

func (s StorageConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case StorageDriverLocal:
		if strings.TrimSpace(s.LocalDir) == "" {
			return fmt.Errorf("%s is required for the local storage driver", EnvStorageLocalDir)
		}
		return nil
	case StorageDriverMinio:
		missing := []string{}
		if s.Endpoint == "" {
			missing = append(missing, EnvStorageEndpoint)
		}
		if s.AccessKey == "" {
			missing = append(missing, EnvStorageAccessKey)
		}
		if s.SecretKey == "" {
			missing = append(missing, EnvStorageSecretKey)
		}
		if s.PublicBase == "" {
			missing = append(missing, EnvStoragePublicBase)
		}
		if len(missing) > 0 {
			return fmt.Errorf("minio storage driver requires %s", strings.Join(missing, ", "))
		}
		return nil
	default:
		return fmt.Errorf("unsupported storage driver %q", s.Driver)
	}
}

// BlobConfig points at the REST endpoint used when the object store cannot describe a key.
type BlobConfig struct {
	FallbackEndpoint string        `envconfig:"ESTATEHUB_BLOB_FALLBACK_ENDPOINT"`
	APIToken         string        `envconfig:"ESTATEHUB_BLOB_API_TOKEN"`
	Timeout          time.Duration `envconfig:"ESTATEHUB_BLOB_TIMEOUT" default:"5s"`
}

type ImagesConfig struct {
	PublicBaseURL    string        `envconfig:"ESTATEHUB_IMAGES_PUBLIC_BASE_URL"`
	MaxUploadMB      int           `envconfig:"ESTATEHUB_IMAGES_MAX_UPLOAD_MB" default:"10"`
	MaxFilesPerBatch int           `envconfig:"ESTATEHUB_IMAGES_MAX_FILES" default:"20"`
	ResolveCacheTTL  time.Duration `envconfig:"ESTATEHUB_IMAGES_RESOLVE_CACHE_TTL" default:"15m"`
}

// MaxUploadBytes is the strict per-file ceiling.
func (i ImagesConfig) MaxUploadBytes() int64 {
	if i.MaxUploadMB <= 0 {
		return DefaultMaxUploadMB * 1024 * 1024
	}
	return int64(i.MaxUploadMB) * 1024 * 1024
}

type SearchConfig struct {
	Host   string `envconfig:"ESTATEHUB_SEARCH_HOST"`
	APIKey string `envconfig:"ESTATEHUB_SEARCH_API_KEY"`
	Index  string `envconfig:"ESTATEHUB_SEARCH_INDEX" default:"properties"`
}

func (s SearchConfig) Enabled() bool {
	return strings.TrimSpace(s.Host) != ""
}

type GoogleMapsConfig struct {
	APIKey string `envconfig:"ESTATEHUB_GOOGLE_MAPS_API_KEY"`
}

type CronConfig struct {
	Interval       time.Duration `envconfig:"ESTATEHUB_CRON_INTERVAL" default:"1h"`
	Schedule       string        `envconfig:"ESTATEHUB_CRON_SCHEDULE"`
	LockTTL        time.Duration `envconfig:"ESTATEHUB_CRON_LOCK_TTL" default:"2h"`
	ReconcileGrace time.Duration `envconfig:"ESTATEHUB_CRON_RECONCILE_GRACE" default:"1h"`
	ReindexBatch   int           `envconfig:"ESTATEHUB_CRON_REINDEX_BATCH" default:"200"`
}

// RateLimitConfig throttles write endpoints per caller. A zero window disables it.
type RateLimitConfig struct {
	Window         time.Duration `envconfig:"ESTATEHUB_RATE_LIMIT_WINDOW" default:"1m"`
	UploadsPerUser int           `envconfig:"ESTATEHUB_RATE_LIMIT_UPLOADS_PER_USER" default:"30"`
	WritesPerIP    int           `envconfig:"ESTATEHUB_RATE_LIMIT_WRITES_PER_IP" default:"300"`
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

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
