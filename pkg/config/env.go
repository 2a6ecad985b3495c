package config

const (
	EnvAPIBaseURL     = "API_BASE_URL"
	EnvRequestTimeout = "REQUEST_TIMEOUT"

	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvStorageBackend = "STORAGE_BACKEND"
	EnvStatePath      = "STATE_PATH"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvKafkaBrokers           = "KAFKA_BROKERS"
	EnvKafkaInvalidationTopic = "KAFKA_INVALIDATION_TOPIC"
	EnvKafkaGroupID           = "KAFKA_GROUP_ID"

	EnvDefaultRedirectPath = "DEFAULT_REDIRECT_PATH"
	EnvLoginPath           = "LOGIN_PATH"
	EnvAdminPath           = "ADMIN_PATH"
	EnvOwnerPath           = "OWNER_PATH"

	EnvMaxVenueImages = "MAX_VENUE_IMAGES"
)
