package config

import "time"

const (
	DefaultAPIBaseURL = "http://localhost:3000"
	// Zero leaves requests to the transport's own timeouts.
	DefaultRequestTimeout time.Duration = 0

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	StorageFile   = "file"
	StorageMemory = "memory"
	StorageMongo  = "mongo"

	DefaultStorageBackend = StorageFile
	DefaultStateDir       = ".venuebook"
	DefaultStateFile      = "state.json"

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "venuebook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultKafkaInvalidationTopic = "venuebook.cache.invalidations"
	DefaultKafkaGroupPrefix       = "venuebook-client"

	DefaultRedirectPath = "/"
	DefaultLoginPath    = "/login"
	DefaultRegisterPath = "/register"
	DefaultAdminPath    = "/admin"
	DefaultOwnerPath    = "/venue-owner"

	HomePath   = "/"
	VenuesPath = "/venues"

	DefaultMaxVenueImages = 4
)
