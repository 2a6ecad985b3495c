package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"venuebook/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type ConsumerMiddleware func(ctx context.Context, msg Message, next MessageHandler) error

type Consumer struct {
	reader       MessageReader
	handler      MessageHandler
	log          *logger.Logger
	maxRetries   int
	fetchBackoff time.Duration
	middleware   []ConsumerMiddleware
	closed       bool
	mu           sync.RWMutex
	wg           sync.WaitGroup
}

func NewConsumer(cfg Config, handler MessageHandler, log *logger.Logger) (*Consumer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.GroupID == "" {
		return nil, errors.New("group ID cannot be empty")
	}

	log = log.Component("kafka_consumer")
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       1,
		MaxBytes:       cfg.MaxBytes,
		MaxWait:        cfg.MaxWait,
		CommitInterval: cfg.CommitInterval,
		StartOffset:    cfg.StartOffset,
		Logger:         kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger:    errorLogger(log),
	})
	return NewConsumerWithReader(reader, handler, cfg.MaxRetries, cfg.FetchBackoff, log)
}

// NewConsumerWithReader builds a consumer over an existing reader.
func NewConsumerWithReader(reader MessageReader, handler MessageHandler, maxRetries int, fetchBackoff time.Duration, log *logger.Logger) (*Consumer, error) {
	if handler == nil {
		return nil, errors.New("message handler cannot be nil")
	}
	return &Consumer{
		reader:       reader,
		handler:      handler,
		log:          log,
		maxRetries:   maxRetries,
		fetchBackoff: fetchBackoff,
	}, nil
}

func (c *Consumer) Use(middleware ConsumerMiddleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middleware = append(c.middleware, middleware)
}

// Start consumes until ctx is done. Every fetched message is committed
// once handled, whether or not the handler succeeded.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConsumerClosed
	}
	c.wg.Add(1)
	c.mu.RUnlock()
	defer c.wg.Done()

	for {
		km, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// a closed reader reports io.EOF
			if errors.Is(err, io.EOF) {
				return ErrConsumerClosed
			}
			c.log.Warn("failed to fetch message", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.fetchBackoff):
			}
			continue
		}

		msg := fromKafkaMessage(km)
		if err := c.process(ctx, msg); err != nil {
			c.log.Error("failed to process message",
				"event_id", msg.EventID(),
				"offset", msg.Offset,
				"error", err,
			)
		}

		if err := c.reader.CommitMessages(ctx, km); err != nil && ctx.Err() == nil {
			c.log.Warn("failed to commit offset", "offset", km.Offset, "error", err)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg Message) error {
	c.mu.RLock()
	middleware := append([]ConsumerMiddleware(nil), c.middleware...)
	c.mu.RUnlock()

	handler := c.handler
	for i := len(middleware) - 1; i >= 0; i-- {
		mw := middleware[i]
		next := handler
		handler = func(ctx context.Context, m Message) error {
			return mw(ctx, m, next)
		}
	}

	for {
		err := handler(ctx, msg)
		if !ShouldRetry(err, msg.RetryCount(), c.maxRetries) {
			return err
		}
		msg.IncrementRetryCount()
		c.log.Debug("retrying message", "event_id", msg.EventID(), "attempt", msg.RetryCount(), "error", err)

		// retries share the fetch backoff
		select {
		case <-ctx.Done():
			return err
		case <-time.After(c.fetchBackoff):
		}
	}
}

func (c *Consumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.reader.Close()
	c.wg.Wait()
	return err
}
