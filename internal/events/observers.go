package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/thierry260/vibewise-backend/internal/models"
	"github.com/thierry260/vibewise-backend/pkg/messagequeue"
)

const (
	defaultBuffer         = 256
	defaultPublishTimeout = 5 * time.Second
)

// LogObserver logs every auth-state change.
type LogObserver struct {
	logger *zap.Logger
}

func NewLogObserver(logger *zap.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnAuthStateChanged(_ context.Context, event models.AuthStateEvent) {
	o.logger.Info("Auth state changed",
		zap.String("type", string(event.Type)),
		zap.String("method", event.Method),
		zap.String("uid", event.UID),
		zap.Time("at", event.At),
	)
}

// QueueObserver publishes auth-state changes as JSON to a queue. Events are
// handed to a background worker; when its buffer is full they are dropped.
type QueueObserver struct {
	publisher messagequeue.Publisher
	queue     string
	logger    *zap.Logger
	timeout   time.Duration

	events    chan models.AuthStateEvent
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// QueueObserverConfig configures a QueueObserver.
type QueueObserverConfig struct {
	Publisher      messagequeue.Publisher
	Queue          string
	Buffer         int
	PublishTimeout time.Duration
}

// NewQueueObserver starts the publishing worker.
func NewQueueObserver(cfg QueueObserverConfig, logger *zap.Logger) *QueueObserver {
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultBuffer
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}
	o := &QueueObserver{
		publisher: cfg.Publisher,
		queue:     cfg.Queue,
		logger:    logger,
		timeout:   cfg.PublishTimeout,
		events:    make(chan models.AuthStateEvent, cfg.Buffer),
		done:      make(chan struct{}),
	}
	go o.run()
	return o
}

func (o *QueueObserver) OnAuthStateChanged(_ context.Context, event models.AuthStateEvent) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		return
	}
	select {
	case o.events <- event:
	default:
		o.logger.Warn("Auth event buffer full, dropping event", zap.String("uid", event.UID), zap.String("type", string(event.Type)))
	}
}

func (o *QueueObserver) run() {
	defer close(o.done)
	for event := range o.events {
		o.publish(event)
	}
}

func (o *QueueObserver) publish(event models.AuthStateEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		o.logger.Error("Failed to encode auth event", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	if err := o.publisher.Publish(ctx, o.queue, body); err != nil {
		o.logger.Error("Failed to publish auth event", zap.String("queue", o.queue), zap.String("uid", event.UID), zap.Error(err))
	}
}

// Close stops accepting events and waits until the buffered ones are published
// or ctx is done.
func (o *QueueObserver) Close(ctx context.Context) error {
	o.closeOnce.Do(func() {
		o.mu.Lock()
		o.closed = true
		close(o.events)
		o.mu.Unlock()
	})
	select {
	case <-o.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
