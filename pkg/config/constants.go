package config

const (
	EnvPrefix = "VITRINE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StoreBackendSQL   = "sql"
	StoreBackendMongo = "mongo"

	EnvAppEnv       = "VITRINE_APP_ENV"
	EnvPort         = "VITRINE_APP_PORT"
	EnvLogLevel     = "VITRINE_LOG_LEVEL"
	EnvStoreBackend = "VITRINE_STORE_BACKEND"

	EnvDBDSN  = "VITRINE_DB_DSN"
	EnvDBHost = "VITRINE_DB_HOST"
	EnvDBPort = "VITRINE_DB_PORT"
	EnvDBUser = "VITRINE_DB_USER"
	EnvDBPass = "VITRINE_DB_PASSWORD"
	EnvDBName = "VITRINE_DB_NAME"

	EnvUseSQLite   = "VITRINE_USE_SQLITE"
	EnvAutoMigrate = "VITRINE_AUTO_MIGRATE"

	EnvMongoURI = "VITRINE_MONGO_URI"
	EnvRedisURL = "VITRINE_REDIS_URL"

	EnvClientDurableTTL = "VITRINE_CLIENT_DURABLE_TTL"
	EnvClientSessionTTL = "VITRINE_CLIENT_SESSION_TTL"

	EnvWhatsAppDefault = "VITRINE_WHATSAPP_DEFAULT_NUMBER"
	EnvHandoffGrace    = "VITRINE_HANDOFF_GRACE"

	EnvCORSOrigins = "VITRINE_CORS_ALLOWED_ORIGINS"

	EnvGCPProjectID      = "VITRINE_GCP_PROJECT_ID"
	EnvGCSBucket         = "VITRINE_GCS_BUCKET_NAME"
	EnvPubSubOrdersTopic = "VITRINE_PUBSUB_ORDERS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
