package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:    "relative base url",
			mutate:  func(cfg *Config) { cfg.APIBaseURL = "localhost:3000" },
			wantErr: "APIBaseURL",
		},
		{
			name:    "non http scheme",
			mutate:  func(cfg *Config) { cfg.APIBaseURL = "ftp://example.com" },
			wantErr: "APIBaseURL",
		},
		{
			name:    "negative timeout",
			mutate:  func(cfg *Config) { cfg.RequestTimeout = -time.Second },
			wantErr: "RequestTimeout",
		},
		{
			name:   "zero timeout leaves the transport default",
			mutate: func(cfg *Config) { cfg.RequestTimeout = 0 },
		},
		{
			name:    "unknown backend",
			mutate:  func(cfg *Config) { cfg.StorageBackend = "sqlite" },
			wantErr: "StorageBackend",
		},
		{
			name: "file backend without path",
			mutate: func(cfg *Config) {
				cfg.StorageBackend = StorageFile
				cfg.StatePath = ""
			},
			wantErr: "StatePath",
		},
		{
			name: "mongo backend with bad uri",
			mutate: func(cfg *Config) {
				cfg.StorageBackend = StorageMongo
				cfg.MongoURI = "postgres://localhost"
			},
			wantErr: "MongoURI",
		},
		{
			name: "broadcast without topic",
			mutate: func(cfg *Config) {
				cfg.KafkaBrokers = []string{"localhost:9092"}
				cfg.KafkaInvalidationTopic = ""
			},
			wantErr: "KafkaInvalidationTopic",
		},
		{
			name:    "path without slash",
			mutate:  func(cfg *Config) { cfg.LoginPath = "login" },
			wantErr: "LoginPath",
		},
		{
			name:   "venues as the default redirect",
			mutate: func(cfg *Config) { cfg.DefaultRedirectPath = "/venues" },
		},
		{
			name:    "wildcard default redirect",
			mutate:  func(cfg *Config) { cfg.DefaultRedirectPath = "/venues/:id" },
			wantErr: "DefaultRedirectPath",
		},
		{
			name:    "admin at the root",
			mutate:  func(cfg *Config) { cfg.AdminPath = "/" },
			wantErr: "AdminPath \"/\" collides with the home route",
		},
		{
			name:    "owner shares the admin path",
			mutate:  func(cfg *Config) { cfg.OwnerPath = "/admin" },
			wantErr: "OwnerPath \"/admin\" collides with the AdminPath",
		},
		{
			name:    "owner nested in admin",
			mutate:  func(cfg *Config) { cfg.OwnerPath = "/admin/owners" },
			wantErr: "OwnerPath",
		},
		{
			name:    "login under venues",
			mutate:  func(cfg *Config) { cfg.LoginPath = "/venues/login" },
			wantErr: "collides with the venues route",
		},
		{
			name:    "login on register",
			mutate:  func(cfg *Config) { cfg.LoginPath = "/register" },
			wantErr: "collides with the register route",
		},
		{
			name:    "trailing slash",
			mutate:  func(cfg *Config) { cfg.AdminPath = "/admin/" },
			wantErr: "AdminPath cannot end with '/'",
		},
		{
			name:    "wildcard prefix",
			mutate:  func(cfg *Config) { cfg.OwnerPath = "/owner/:id" },
			wantErr: "OwnerPath cannot contain",
		},
		{
			name:   "custom prefixes",
			mutate: func(cfg *Config) {
				cfg.AdminPath = "/backoffice"
				cfg.OwnerPath = "/mine"
				cfg.LoginPath = "/signin"
			},
		},
		{
			name:    "no images allowed",
			mutate:  func(cfg *Config) { cfg.MaxVenueImages = 0 },
			wantErr: "MaxVenueImages",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.RequestTimeout = -time.Second
	cfg.MaxVenueImages = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "1.") && strings.Contains(err.Error(), "2."))
}

func TestGetEnvList(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " broker-1:9092, ,broker-2:9092 ")
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, getEnvList(EnvKafkaBrokers))

	t.Setenv(EnvKafkaBrokers, "")
	assert.Nil(t, getEnvList(EnvKafkaBrokers))
}

func TestGetEnvDuration_FallsBackOnGarbage(t *testing.T) {
	t.Setenv(EnvRequestTimeout, "soon")
	assert.Equal(t, DefaultRequestTimeout, getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout))

	t.Setenv(EnvRequestTimeout, "5s")
	assert.Equal(t, 5*time.Second, getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout))
}

func TestRedactMongoURI(t *testing.T) {
	assert.Equal(t, "mongodb://***:***@db:27017", redactMongoURI("mongodb://admin:hunter2@db:27017"))
}
