package kafka

import (
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
)

const (
	DefaultMaxAttempts    = 3
	DefaultBatchTimeout   = 10 * time.Millisecond
	DefaultCompression    = "snappy"
	DefaultMaxWait        = 500 * time.Millisecond
	DefaultCommitInterval = time.Second
	DefaultMaxRetries     = 3
	DefaultFetchBackoff   = time.Second
	DefaultMaxBytes       = 1 << 20
)

// Config holds the settings for one topic's producer and consumer.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string

	MaxAttempts  int
	BatchTimeout time.Duration
	Compression  string // "none", "gzip", "snappy", "lz4", "zstd"

	// StartOffset is kafka.LastOffset (-1) or kafka.FirstOffset (-2).
	StartOffset    int64
	MaxWait        time.Duration
	MaxBytes       int
	CommitInterval time.Duration
	MaxRetries     int
	FetchBackoff   time.Duration
}

func NewConfig(brokers []string, topic, groupID string) Config {
	return Config{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MaxAttempts:    DefaultMaxAttempts,
		BatchTimeout:   DefaultBatchTimeout,
		Compression:    DefaultCompression,
		StartOffset:    kafka.LastOffset,
		MaxWait:        DefaultMaxWait,
		MaxBytes:       DefaultMaxBytes,
		CommitInterval: DefaultCommitInterval,
		MaxRetries:     DefaultMaxRetries,
		FetchBackoff:   DefaultFetchBackoff,
	}
}

func (cfg Config) Validate() error {
	var errors []string

	if len(cfg.Brokers) == 0 {
		errors = append(errors, "At least one Kafka broker is required")
	}
	for i, broker := range cfg.Brokers {
		if broker == "" {
			errors = append(errors, fmt.Sprintf("Broker %d cannot be empty", i))
		}
	}
	if cfg.Topic == "" {
		errors = append(errors, "Topic cannot be empty")
	}
	if cfg.MaxAttempts <= 0 {
		errors = append(errors, fmt.Sprintf("MaxAttempts must be positive, got: %d", cfg.MaxAttempts))
	}
	if cfg.BatchTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("BatchTimeout must be positive, got: %s", cfg.BatchTimeout))
	}
	if _, ok := compressionCodecs[cfg.Compression]; !ok {
		errors = append(errors, fmt.Sprintf("Compression must be one of [none, gzip, snappy, lz4, zstd], got: %s", cfg.Compression))
	}
	if cfg.StartOffset != kafka.LastOffset && cfg.StartOffset != kafka.FirstOffset {
		errors = append(errors, fmt.Sprintf("StartOffset must be -1 (newest) or -2 (oldest), got: %d", cfg.StartOffset))
	}
	if cfg.MaxWait <= 0 {
		errors = append(errors, fmt.Sprintf("MaxWait must be positive, got: %s", cfg.MaxWait))
	}
	if cfg.MaxBytes <= 0 {
		errors = append(errors, fmt.Sprintf("MaxBytes must be positive, got: %d", cfg.MaxBytes))
	}
	if cfg.CommitInterval <= 0 {
		errors = append(errors, fmt.Sprintf("CommitInterval must be positive, got: %s", cfg.CommitInterval))
	}
	if cfg.MaxRetries < 0 {
		errors = append(errors, fmt.Sprintf("MaxRetries cannot be negative, got: %d", cfg.MaxRetries))
	}

	if len(errors) > 0 {
		errMsg := "Kafka configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}
	return nil
}

var compressionCodecs = map[string]compress.Compression{
	"none":   compress.None,
	"gzip":   compress.Gzip,
	"snappy": compress.Snappy,
	"lz4":    compress.Lz4,
	"zstd":   compress.Zstd,
}
