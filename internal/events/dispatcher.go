package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DispatcherConfig holds configuration for the notification dispatcher.
type DispatcherConfig struct {
	// QueueSize is the buffer size for pending events. Dispatch drops the
	// event (with a log line) when the buffer is full rather than blocking
	// a committed mutation.
	QueueSize int

	// WorkerCount determines how many publishes may be in flight at once.
	// Broadcast order need not match commit order.
	WorkerCount int

	// PublishTimeout bounds a single publish attempt.
	PublishTimeout time.Duration
}

// DefaultDispatcherConfig returns a DispatcherConfig with reasonable defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		QueueSize:      256,
		WorkerCount:    2,
		PublishTimeout: 5 * time.Second,
	}
}

// Dispatcher converts committed mutations into published change events.
// Dispatch never blocks the caller and never fails: by the time an event
// reaches the dispatcher the mutation is already durable, so publish
// failures are logged and swallowed, never surfaced and never retried
// synchronously. Safe for concurrent use from multiple mutation completions.
type Dispatcher struct {
	publisher Publisher
	queue     chan *ChangeEvent
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	config    DispatcherConfig
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher publishing through the given Publisher.
// If logger is nil, a default logger will be used.
func NewDispatcher(publisher Publisher, config DispatcherConfig, log *slog.Logger) *Dispatcher {
	if publisher == nil {
		panic("publisher cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	if config.QueueSize <= 0 {
		config.QueueSize = DefaultDispatcherConfig().QueueSize
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultDispatcherConfig().WorkerCount
	}
	if config.PublishTimeout <= 0 {
		config.PublishTimeout = DefaultDispatcherConfig().PublishTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		publisher: publisher,
		queue:     make(chan *ChangeEvent, config.QueueSize),
		ctx:       ctx,
		cancel:    cancel,
		config:    config,
		logger:    log.With(slog.String("component", "dispatcher")),
	}
}

// Start launches the worker goroutines that drain the queue.
func (d *Dispatcher) Start() {
	for i := 0; i < d.config.WorkerCount; i++ {
		d.wg.Add(1)
		go d.worker()
	}

	d.logger.Info("dispatcher started",
		slog.Int("workers", d.config.WorkerCount),
		slog.Int("queue_size", d.config.QueueSize))
}

// Stop signals the workers to finish and waits for in-flight publishes to
// complete. Events still sitting in the queue at shutdown are dropped; they
// are best-effort by contract.
func (d *Dispatcher) Stop() {
	d.cancel()
	d.wg.Wait()
	d.logger.Info("dispatcher stopped")
}

/// Dispatch enqueues an event for asynchronous publication. It never blocks:
// when the queue is full the event is dropped with a warning. Callers invoke
// it after commit, outside any list lock.
func (d *Dispatcher) Dispatch(event *ChangeEvent) {
	if event == nil {
		return
	}

	select {
	case d.queue <- event:
	default:
		d.logger.Warn("event queue full, dropping event",
			slog.String("event_id", event.ID.String()),
			slog.String("action", string(event.Action)),
			slog.String("list_id", event.ListID.String()))
	}
}

// worker drains the queue until Stop is called.
func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return
		case event := <-d.queue:
			d.publish(event)
		}
	}
}

// publish attempts a single bounded publish. Errors are contained here:
// logged, never returned, never retried.
func (d *Dispatcher) publish(event *ChangeEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.config.PublishTimeout)
	defer cancel()

	if err := d.publisher.Publish(ctx, event); err != nil {
		d.logger.Warn("failed to publish event",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()),
			slog.String("action", string(event.Action)),
			slog.String("list_id", event.ListID.String()))
		return
	}

	d.logger.Debug("event published",
		slog.String("event_id", event.ID.String()),
		slog.String("action", string(event.Action)),
		slog.String("list_id", event.ListID.String()))
}
