// Package invalidation shares cache invalidations between client processes
// over a Kafka topic. Local invalidations are published; invalidations from
// other processes are applied without being published again.
package invalidation

import (
	"context"
	"sync"
	"time"

	"venuebook/pkg/cache"
	"venuebook/pkg/kafka"
	"venuebook/pkg/logger"

	"github.com/google/uuid"
)

const (
	EventType = "cache.invalidated"

	defaultQueueSize      = 64
	defaultPublishTimeout = 5 * time.Second
)

type Event struct {
	EventID string      `json:"event_id"`
	Source  string      `json:"source"`
	Tags    []cache.Tag `json:"tags"`
	At      time.Time   `json:"at"`
}

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// NewSource returns an id that tells this process's events apart.
func NewSource() string {
	return uuid.NewString()
}

// Broadcaster publishes local invalidations in the background. Publishing
// never blocks or fails the invalidating caller; when the queue is full the
// event is dropped and logged.
type Broadcaster struct {
	source  string
	pub     Publisher
	log     *logger.Logger
	timeout time.Duration

	queue     chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

func NewBroadcaster(source string, pub Publisher, log *logger.Logger) *Broadcaster {
	return &Broadcaster{
		source:  source,
		pub:     pub,
		log:     log.Component("invalidation_broadcaster"),
		timeout: defaultPublishTimeout,
		queue:   make(chan Event, defaultQueueSize),
		done:    make(chan struct{}),
	}
}

// Attach registers the broadcaster as an invalidation hook of c.
func (b *Broadcaster) Attach(c *cache.Cache) {
	c.OnInvalidate(b.Enqueue)
}

func (b *Broadcaster) Enqueue(tags []cache.Tag) {
	if len(tags) == 0 {
		return
	}
	ev := Event{
		EventID: uuid.NewString(),
		Source:  b.source,
		Tags:    append([]cache.Tag(nil), tags...),
		At:      time.Now().UTC(),
	}

	select {
	case <-b.done:
		return
	default:
	}

	select {
	case b.queue <- ev:
	default:
		b.log.Warn("invalidation queue full, dropping event", "event_id", ev.EventID, "tags", len(tags))
	}
}

// Start runs the publishing loop until Stop.
func (b *Broadcaster) Start() {
	b.startOnce.Do(func() {
		b.wg.Add(1)
		go b.run()
	})
}

// Stop publishes what is already queued and stops the loop.
func (b *Broadcaster) Stop() {
	b.stopOnce.Do(func() { close(b.done) })
	b.wg.Wait()
}

func (b *Broadcaster) run() {
	defer b.wg.Done()
	for {
		select {
		case ev := <-b.queue:
			b.publish(ev)
		case <-b.done:
			for {
				select {
				case ev := <-b.queue:
					b.publish(ev)
				default:
					return
				}
			}
		}
	}
}

func (b *Broadcaster) publish(ev Event) {
	msg, err := kafka.NewMessage().
		WithKey(ev.Tags[0].Type).
		WithValue(ev).
		WithEventID(ev.EventID).
		WithEventType(EventType).
		WithSource(ev.Source).
		WithTimestamp(ev.At).
		Build()
	if err != nil {
		b.log.Error("failed to build invalidation message", "event_id", ev.EventID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	if err := b.pub.Publish(ctx, msg); err != nil {
		b.log.Warn("failed to broadcast invalidation", "event_id", ev.EventID, "error", err)
	}
}

// Listener applies invalidations published by other processes.
type Listener struct {
	source string
	cache  *cache.Cache
	log    *logger.Logger
}

func NewListener(source string, c *cache.Cache, log *logger.Logger) *Listener {
	return &Listener{
		source: source,
		cache:  c,
		log:    log.Component("invalidation_listener"),
	}
}

// Handle is a kafka.MessageHandler.
func (l *Listener) Handle(_ context.Context, msg kafka.Message) error {
	if t := msg.EventType(); t != "" && t != EventType {
		return nil
	}

	var ev Event
	if err := msg.DecodeValue(&ev); err != nil {
		return err
	}
	if ev.Source == l.source {
		return nil
	}

	tags := make([]cache.Tag, 0, len(ev.Tags))
	for _, t := range ev.Tags {
		if t.Type != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		return nil
	}

	l.cache.InvalidateFromRemote(tags...)
	l.log.Debug("applied remote invalidation", "event_id", ev.EventID, "source", ev.Source, "tags", len(tags))
	return nil
}
