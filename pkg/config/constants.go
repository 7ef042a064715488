package config

const EnvPrefix = "ESTATEHUB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StorageDriverLocal = "local"
	StorageDriverMinio = "minio"
)

const DefaultMaxUploadMB = 10

const (
	EnvAppEnv      = "ESTATEHUB_APP_ENV"
	EnvPort        = "ESTATEHUB_APP_PORT"
	EnvLogLevel    = "ESTATEHUB_LOG_LEVEL"
	EnvCORSOrigins = "ESTATEHUB_CORS_ORIGINS"

	EnvDBDSN  = "ESTATEHUB_DB_DSN"
	EnvDBHost = "ESTATEHUB_DB_HOST"
	EnvDBPort = "ESTATEHUB_DB_PORT"
	EnvDBUser = "ESTATEHUB_DB_USER"
	EnvDBPass = "ESTATEHUB_DB_PASSWORD"
	EnvDBName = "ESTATEHUB_DB_NAME"

	EnvRedisURL = "ESTATEHUB_REDIS_URL"

	EnvJWTSecret  = "ESTATEHUB_JWT_SECRET"
	EnvJWTIssuer  = "ESTATEHUB_JWT_ISSUER"
	EnvJWTExpMins = "ESTATEHUB_JWT_EXPIRATION_MINUTES"

	EnvStorageDriver     = "ESTATEHUB_STORAGE_DRIVER"
	EnvStorageLocalDir   = "ESTATEHUB_STORAGE_LOCAL_DIR"
	EnvStorageEndpoint   = "ESTATEHUB_STORAGE_ENDPOINT"
	EnvStorageAccessKey  = "ESTATEHUB_STORAGE_ACCESS_KEY"
	EnvStorageSecretKey  = "ESTATEHUB_STORAGE_SECRET_KEY"
	EnvStoragePublicBase = "ESTATEHUB_STORAGE_PUBLIC_BASE"

	EnvImagesMaxUploadMB = "ESTATEHUB_IMAGES_MAX_UPLOAD_MB"
	EnvSearchHost        = "ESTATEHUB_SEARCH_HOST"
	EnvCronInterval      = "ESTATEHUB_CRON_INTERVAL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
