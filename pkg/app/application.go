package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"venuebook/internal/forms"
	"venuebook/internal/views"
	"venuebook/pkg/cache"
	"venuebook/pkg/client"
	"venuebook/pkg/config"
	"venuebook/pkg/guard"
	"venuebook/pkg/invalidation"
	"venuebook/pkg/kafka"
	"venuebook/pkg/session"
	"venuebook/pkg/storage"
)

// Application owns every long-lived component of a client process.
type Application struct {
	cfg *config.Config

	Storage storage.Storage
	Session *session.Store
	Cache   *cache.Cache
	Client  *client.Client
	Router  *guard.Router
	Views   *views.Views

	source      string
	producer    *kafka.Producer
	consumer    *kafka.Consumer
	broadcaster *invalidation.Broadcaster
	unsubscribe func()
	cancel      context.CancelFunc
	consumerErr chan error

	closeOnce sync.Once
	closeErr  error
}

type Option func(*options)

type options struct {
	storage  storage.Storage
	notifier views.Notifier
}

// WithStorage uses st instead of opening the configured backend.
func WithStorage(st storage.Storage) Option {
	return func(o *options) { o.storage = st }
}

func WithNotifier(n views.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// NewApplication wires storage, session, cache, API client and route table
// from cfg. When Kafka brokers are configured, local invalidations are also
// broadcast and remote ones applied once Start is called.
func NewApplication(ctx context.Context, cfg *config.Config, opts ...Option) (*Application, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	router, err := guard.NewRouter(guard.OptionsFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to build route table: %w", err)
	}

	st := o.storage
	if st == nil {
		st, err = storage.Open(ctx, cfg, cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
		}
	}

	a := &Application{
		cfg:     cfg,
		Storage: st,
		Session: session.New(ctx, st, cfg.Log),
		Cache:   cache.New(cfg.Log),
		Router:  router,
		source:  invalidation.NewSource(),
	}
	a.Client = client.NewClient(cfg, a.Session, a.Cache)
	a.Views = views.New(views.Deps{
		Client:   a.Client,
		Session:  a.Session,
		Router:   a.Router,
		Forms:    forms.NewValidator(cfg.Log),
		Notifier: o.notifier,
		Log:      cfg.Log,
	})
	a.unsubscribe = a.resetOnIdentityChange()

	if cfg.BroadcastEnabled() {
		if err := a.setBroadcast(); err != nil {
			a.unsubscribe()
			_ = st.Close(ctx)
			return nil, err
		}
	}

	cfg.Log.Info("Application configured",
		"api_base_url", cfg.APIBaseURL,
		"storage_backend", cfg.StorageBackend,
		"logged_in", a.Session.CurrentUser() != nil,
		"broadcast", cfg.BroadcastEnabled(),
	)
	return a, nil
}

// resetOnIdentityChange drops every cached query when the logged-in account
// changes, so one account never sees results fetched for another.
func (a *Application) resetOnIdentityChange() func() {
	var mu sync.Mutex
	current := userID(a.Session.Snapshot())
	return a.Session.Subscribe(func(s session.Session) {
		next := userID(s)
		mu.Lock()
		previous := current
		current = next
		mu.Unlock()

		if previous != "" && previous != next {
			a.Cache.Reset()
		}
	})
}

func userID(s session.Session) string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

func (a *Application) setBroadcast() error {
	cfg := a.cfg
	log := cfg.Log

	groupID := cfg.KafkaGroupID
	if groupID == "" {
		groupID = config.DefaultKafkaGroupPrefix + "-" + a.source
	}
	kcfg := kafka.NewConfig(cfg.KafkaBrokers, cfg.KafkaInvalidationTopic, groupID)

	producer, err := kafka.NewProducer(kcfg, log)
	if err != nil {
		return fmt.Errorf("failed to create invalidation producer: %w", err)
	}
	producer.Use(kafka.LoggingProducerMiddleware(log))

	listener := invalidation.NewListener(a.source, a.Cache, log)
	consumer, err := kafka.NewConsumer(kcfg, listener.Handle, log)
	if err != nil {
		_ = producer.Close()
		return fmt.Errorf("failed to create invalidation consumer: %w", err)
	}
	consumer.Use(kafka.LoggingConsumerMiddleware(log))

	a.producer = producer
	a.consumer = consumer
	a.broadcaster = invalidation.NewBroadcaster(a.source, producer, log)
	a.broadcaster.Attach(a.Cache)
	return nil
}

func (a *Application) Config() *config.Config {
	return a.cfg
}

// Source identifies this process in invalidation events.
func (a *Application) Source() string {
	return a.source
}

// Start runs the invalidation broadcast workers. Without Kafka it is a no-op.
func (a *Application) Start(ctx context.Context) {
	if a.broadcaster == nil || a.cancel != nil {
		return
	}
	ctx, a.cancel = context.WithCancel(ctx)
	a.consumerErr = make(chan error, 1)

	a.broadcaster.Start()
	go func() {
		a.consumerErr <- a.consumer.Start(ctx)
	}()
	a.cfg.Log.Info("Invalidation broadcast started", "topic", a.producer.Topic(), "source", a.source)
}

// Close stops the broadcast workers, flushing queued invalidations, and
// closes the storage. Later calls return the first call's result.
func (a *Application) Close(ctx context.Context) error {
	a.closeOnce.Do(func() { a.closeErr = a.close(ctx) })
	return a.closeErr
}

func (a *Application) close(ctx context.Context) error {
	var errs []error

	a.unsubscribe()
	if a.broadcaster != nil {
		a.broadcaster.Stop()
		if a.cancel != nil {
			a.cancel()
		}
		if err := a.consumer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close invalidation consumer: %w", err))
		}
		if a.consumerErr != nil {
			if err := <-a.consumerErr; err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, kafka.ErrConsumerClosed) {
				errs = append(errs, err)
			}
		}
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close invalidation producer: %w", err))
		}
	}
	if err := a.Storage.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
	}
	return errors.Join(errs...)
}
