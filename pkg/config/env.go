package config

const (
	EnvStorageDriver = "STORAGE_DRIVER"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"
	EnvMongoTransactions = "MONGO_TRANSACTIONS"

	EnvPostgresDSN         = "POSTGRES_DSN"
	EnvPostgresConnTimeout = "POSTGRES_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvLockBackend       = "LOCK_BACKEND"
	EnvLockTTL           = "LOCK_TTL"
	EnvLockWaitTimeout   = "LOCK_WAIT_TIMEOUT"
	EnvLockRetryInterval = "LOCK_RETRY_INTERVAL"

	EnvDefaultTimeZone = "DEFAULT_TIME_ZONE"

	EnvCatalogURL          = "CATALOG_URL"
	EnvClientDirectoryURL  = "CLIENT_DIRECTORY_URL"
	EnvCollaboratorTimeout = "COLLABORATOR_TIMEOUT"

	EnvKafkaEnabled     = "KAFKA_ENABLED"
	EnvKafkaEventsTopic = "KAFKA_EVENTS_TOPIC"
	EnvKafkaDLQTopic    = "KAFKA_DLQ_TOPIC"

	EnvIdempotencyBackend = "IDEMPOTENCY_BACKEND"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
