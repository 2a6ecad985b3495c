package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"venuebook/pkg/logger"
)

type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration

	LogLevel  string
	LogFormat string

	StorageBackend string
	StatePath      string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	KafkaBrokers           []string
	KafkaInvalidationTopic string
	KafkaGroupID           string

	DefaultRedirectPath string
	LoginPath           string
	AdminPath           string
	OwnerPath           string

	MaxVenueImages int

	Log *logger.Logger
}

func Load(serviceName string) *Config {
	cfg := &Config{
		APIBaseURL:     strings.TrimRight(getEnvStr(EnvAPIBaseURL, DefaultAPIBaseURL), "/"),
		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),

		LogLevel:  getEnvStr(EnvLogLevel, DefaultLogLevel),
		LogFormat: getEnvStr(EnvLogFormat, DefaultLogFormat),

		StorageBackend: getEnvStr(EnvStorageBackend, DefaultStorageBackend),
		StatePath:      getEnvStr(EnvStatePath, defaultStatePath()),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		KafkaBrokers:           getEnvList(EnvKafkaBrokers),
		KafkaInvalidationTopic: getEnvStr(EnvKafkaInvalidationTopic, DefaultKafkaInvalidationTopic),
		KafkaGroupID:           getEnvStr(EnvKafkaGroupID, ""),

		DefaultRedirectPath: getEnvStr(EnvDefaultRedirectPath, DefaultRedirectPath),
		LoginPath:           getEnvStr(EnvLoginPath, DefaultLoginPath),
		AdminPath:           getEnvStr(EnvAdminPath, DefaultAdminPath),
		OwnerPath:           getEnvStr(EnvOwnerPath, DefaultOwnerPath),

		MaxVenueImages: getEnvNum(EnvMaxVenueImages, DefaultMaxVenueImages),
	}

	cfg.Log = logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// Defaults returns a configuration populated with default values and an
// in-memory storage backend. Intended for tests and embedding.
func Defaults() *Config {
	return &Config{
		APIBaseURL:             DefaultAPIBaseURL,
		RequestTimeout:         DefaultRequestTimeout,
		LogLevel:               DefaultLogLevel,
		LogFormat:              DefaultLogFormat,
		StorageBackend:         StorageMemory,
		MongoURI:               DefaultMongoURI,
		MongoDatabaseName:      DefaultMongoDatabaseName,
		MongoConnTimeout:       DefaultMongoConnTimeout,
		KafkaInvalidationTopic: DefaultKafkaInvalidationTopic,
		DefaultRedirectPath:    DefaultRedirectPath,
		LoginPath:              DefaultLoginPath,
		AdminPath:              DefaultAdminPath,
		OwnerPath:              DefaultOwnerPath,
		MaxVenueImages:         DefaultMaxVenueImages,
		Log:                    logger.Discard(),
	}
}

func (cfg *Config) BroadcastEnabled() bool {
	return len(cfg.KafkaBrokers) > 0
}

func (cfg *Config) Validate() error {
	var errors []string

	if u, err := url.Parse(cfg.APIBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, fmt.Sprintf("APIBaseURL must be an absolute http(s) URL, got: %s", cfg.APIBaseURL))
	}
	if cfg.RequestTimeout < 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout cannot be negative, got: %s", cfg.RequestTimeout))
	}

	switch cfg.StorageBackend {
	case StorageMemory:
	case StorageFile:
		if cfg.StatePath == "" {
			errors = append(errors, "StatePath cannot be empty when STORAGE_BACKEND=file")
		}
	case StorageMongo:
		if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	default:
		errors = append(errors, fmt.Sprintf("StorageBackend must be one of file, memory, mongo, got: %s", cfg.StorageBackend))
	}

	if cfg.BroadcastEnabled() && cfg.KafkaInvalidationTopic == "" {
		errors = append(errors, "KafkaInvalidationTopic cannot be empty when KAFKA_BROKERS is set")
	}

	if !strings.HasPrefix(cfg.DefaultRedirectPath, "/") || strings.ContainsAny(cfg.DefaultRedirectPath, ":*") {
		errors = append(errors, fmt.Sprintf("DefaultRedirectPath must be a plain path starting with '/', got: %q", cfg.DefaultRedirectPath))
	}
	errors = append(errors, cfg.validateRoutePaths()...)

	if cfg.MaxVenueImages < 1 {
		errors = append(errors, fmt.Sprintf("MaxVenueImages must be at least 1, got: %d", cfg.MaxVenueImages))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

// validateRoutePaths checks the configurable route prefixes. Each one is
// registered in the route table next to the fixed routes, so none may equal
// or nest inside another.
func (cfg *Config) validateRoutePaths() []string {
	var errors []string

	type routePath struct {
		name string
		path string
	}
	configured := []routePath{
		{name: "LoginPath", path: cfg.LoginPath},
		{name: "AdminPath", path: cfg.AdminPath},
		{name: "OwnerPath", path: cfg.OwnerPath},
	}
	taken := []routePath{
		{name: "home route", path: HomePath},
		{name: "venues route", path: VenuesPath},
		{name: "register route", path: DefaultRegisterPath},
	}

	for _, rp := range configured {
		switch {
		case !strings.HasPrefix(rp.path, "/"):
			errors = append(errors, fmt.Sprintf("%s must start with '/', got: %q", rp.name, rp.path))
			continue
		case len(rp.path) > 1 && strings.HasSuffix(rp.path, "/"):
			errors = append(errors, fmt.Sprintf("%s cannot end with '/', got: %q", rp.name, rp.path))
			continue
		case strings.ContainsAny(rp.path, ":*"):
			errors = append(errors, fmt.Sprintf("%s cannot contain ':' or '*', got: %q", rp.name, rp.path))
			continue
		}

		for _, other := range taken {
			if pathsCollide(rp.path, other.path) {
				errors = append(errors, fmt.Sprintf("%s %q collides with the %s %q", rp.name, rp.path, other.name, other.path))
				break
			}
		}
		taken = append(taken, rp)
	}
	return errors
}

// pathsCollide reports whether a and b are the same route or one sits under
// the other. The home route only collides with itself.
func pathsCollide(a, b string) bool {
	if a == b {
		return true
	}
	if a == "/" || b == "/" {
		return false
	}
	return strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"api_base_url", cfg.APIBaseURL,
		"request_timeout", cfg.RequestTimeout,
		"storage_backend", cfg.StorageBackend,
		"state_path", cfg.StatePath,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"kafka_brokers", strings.Join(cfg.KafkaBrokers, ","),
		"kafka_invalidation_topic", cfg.KafkaInvalidationTopic,
		"default_redirect_path", cfg.DefaultRedirectPath,
		"login_path", cfg.LoginPath,
		"admin_path", cfg.AdminPath,
		"owner_path", cfg.OwnerPath,
		"max_venue_images", cfg.MaxVenueImages,
	)
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(DefaultStateDir, DefaultStateFile)
	}
	return filepath.Join(home, DefaultStateDir, DefaultStateFile)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
