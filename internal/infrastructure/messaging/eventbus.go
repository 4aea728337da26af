// Package messaging implements the domain event bus.
// The in-memory bus serves a single process; the Redis bus fans events out
// to other instances over Pub/Sub and delivers them to the local bus as well.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEventBusClosed is returned when operations are attempted on a closed bus.
	ErrEventBusClosed = errors.New("event bus is closed")

	// ErrNilHandler is returned by Subscribe for a nil handler.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrNilEvent is returned by Publish for a nil event.
	ErrNilEvent = errors.New("event cannot be nil")
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// InMemoryEventBus delivers events to handlers registered in this process.
type InMemoryEventBus struct {
	mu          sync.RWMutex
	handlers    map[shared.EventType][]shared.EventHandler
	allHandlers []shared.EventHandler
	asyncMode   bool
	workerPool  chan struct{}
	log         *logger.Logger
	metrics     *Metrics
	closed      bool
	wg          sync.WaitGroup
}

// InMemoryEventBusConfig contains configuration for InMemoryEventBus.
type InMemoryEventBusConfig struct {
	// AsyncMode runs handlers on goroutines bounded by WorkerPoolSize.
	AsyncMode bool

	// WorkerPoolSize is the number of concurrent handler executions in async mode.
	WorkerPoolSize int

	Logger *logger.Logger
}

// DefaultInMemoryEventBusConfig returns an async bus with ten workers.
func DefaultInMemoryEventBusConfig() InMemoryEventBusConfig {
	return InMemoryEventBusConfig{
		AsyncMode:      true,
		WorkerPoolSize: 10,
	}
}

// NewInMemoryEventBus creates a new in-memory event bus.
func NewInMemoryEventBus(config InMemoryEventBusConfig) *InMemoryEventBus {
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 10
	}

	return &InMemoryEventBus{
		handlers:   make(map[shared.EventType][]shared.EventHandler),
		asyncMode:  config.AsyncMode,
		workerPool: make(chan struct{}, config.WorkerPoolSize),
		log:        config.Logger.With(logger.Component("eventbus")),
		metrics:    NewMetrics(),
	}
}

// Subscribe registers a handler for a specific event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.log.Debug("subscribed handler", logger.EventType(string(eventType)))
	return nil
}

// SubscribeAll registers a handler for all events.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	b.allHandlers = append(b.allHandlers, handler)
	return nil
}

// Publish sends an event to all subscribed handlers. Handler errors are logged,
// never returned: a failing subscriber must not fail the publishing operation.
func (b *InMemoryEventBus) Publish(event shared.Event) error {
	if event == nil {
		return ErrNilEvent
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	handlers := make([]shared.EventHandler, 0, len(b.handlers[event.EventType()])+len(b.allHandlers))
	handlers = append(handlers, b.handlers[event.EventType()]...)
	handlers = append(handlers, b.allHandlers...)
	if b.asyncMode {
		// Added under the read lock so Close cannot start waiting in between.
		b.wg.Add(len(handlers))
	}
	b.mu.RUnlock()

	b.metrics.recordPublish()

	for _, handler := range handlers {
		if b.asyncMode {
			b.executeAsync(event, handler)
			continue
		}
		if err := b.execute(event, handler); err != nil {
			b.log.Error("handler error", logger.EventType(string(event.EventType())), logger.Err(err))
		}
	}
	return nil
}

func (b *InMemoryEventBus) executeAsync(event shared.Event, handler shared.EventHandler) {
	go func() {
		defer b.wg.Done()

		b.workerPool <- struct{}{}
		defer func() { <-b.workerPool }()

		if err := b.execute(event, handler); err != nil {
			b.log.Error("async handler error", logger.EventType(string(event.EventType())), logger.Err(err))
		}
	}()
}

func (b *InMemoryEventBus) execute(event shared.Event, handler shared.EventHandler) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
		b.metrics.recordExecution(time.Since(start), err == nil)
	}()
	return handler(event)
}

// Close stops accepting events and waits until every accepted event is handled.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.wg.Wait()

	b.log.Info("event bus closed")
	return nil
}

// Metrics returns the bus counters.
func (b *InMemoryEventBus) Metrics() *Metrics {
	return b.metrics
}

// ══════════════════════════════════════════════════════════════════════════════
// REDIS EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// DefaultChannel is the Pub/Sub channel used when none is configured.
const DefaultChannel = "pathwise:events"

// PubSubClient is the subset of *redis.Client used by RedisEventBus.
type PubSubClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *goredis.PubSub
}

// RedisEventBus publishes every event to a Redis channel and to the local bus.
// Events from other instances are replayed on the local bus as RemoteEvent values.
type RedisEventBus struct {
	client     PubSubClient
	local      *InMemoryEventBus
	channel    string
	instanceID string
	log        *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
	pubsub *goredis.PubSub
}

// RedisEventBusConfig contains configuration for RedisEventBus.
type RedisEventBusConfig struct {
	Client     PubSubClient
	Channel    string
	InstanceID string
	Local      InMemoryEventBusConfig
	Logger     *logger.Logger
}

// NewRedisEventBus subscribes to the channel and starts the receive loop.
func NewRedisEventBus(config RedisEventBusConfig) (*RedisEventBus, error) {
	if config.Client == nil {
		return nil, errors.New("redis client is required")
	}
	if config.Channel == "" {
		config.Channel = DefaultChannel
	}
	if config.InstanceID == "" {
		config.InstanceID = uuid.NewString()
	}
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	if config.Local.Logger == nil {
		config.Local.Logger = config.Logger
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus := &RedisEventBus{
		client:     config.Client,
		local:      NewInMemoryEventBus(config.Local),
		channel:    config.Channel,
		instanceID: config.InstanceID,
		log:        config.Logger.With(logger.Component("redis-eventbus")),
		ctx:        ctx,
		cancel:     cancel,
	}

	bus.pubsub = config.Client.Subscribe(ctx, config.Channel)
	if _, err := bus.pubsub.Receive(ctx); err != nil {
		cancel()
		_ = bus.pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", config.Channel, err)
	}

	bus.wg.Add(1)
	go func() {
		defer bus.wg.Done()
		bus.receiveLoop(bus.pubsub.Channel())
	}()

	return bus, nil
}

// Subscribe registers a handler for a specific event type.
func (b *RedisEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	return b.local.Subscribe(eventType, handler)
}

// SubscribeAll registers a handler for all events.
func (b *RedisEventBus) SubscribeAll(handler shared.EventHandler) error {
	return b.local.SubscribeAll(handler)
}

// Publish sends the event to Redis and delivers it locally.
// A Redis failure is logged; local delivery still happens.
func (b *RedisEventBus) Publish(event shared.Event) error {
	if event == nil {
		return ErrNilEvent
	}

	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return ErrEventBusClosed
	}

	data, err := encodeEnvelope(b.instanceID, event)
	if err != nil {
		return err
	}
	if err := b.client.Publish(b.ctx, b.channel, data).Err(); err != nil {
		b.log.Warn("failed to publish to redis", logger.EventType(string(event.EventType())), logger.Err(err))
	}

	return b.local.Publish(event)
}

func (b *RedisEventBus) receiveLoop(messages <-chan *goredis.Message) {
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			b.handleMessage(msg.Payload)
		}
	}
}

func (b *RedisEventBus) handleMessage(payload string) {
	env, err := decodeEnvelope(payload)
	if err != nil {
		b.log.Error("failed to decode event", logger.Err(err))
		return
	}
	if env.InstanceID == b.instanceID {
		return
	}
	if err := b.local.Publish(env.event()); err != nil {
		b.log.Error("failed to deliver remote event", logger.Err(err))
	}
}

// Close unsubscribes and closes the local bus.
func (b *RedisEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	err := b.pubsub.Close()
	b.wg.Wait()

	if lerr := b.local.Close(); lerr != nil {
		err = errors.Join(err, lerr)
	}
	b.log.Info("redis event bus closed")
	return err
}

// Metrics returns the local bus counters.
func (b *RedisEventBus) Metrics() *Metrics {
	return b.local.Metrics()
}

// ══════════════════════════════════════════════════════════════════════════════
// ENVELOPE
// ══════════════════════════════════════════════════════════════════════════════

type envelope struct {
	InstanceID  string                 `json:"instance_id"`
	Type        shared.EventType       `json:"type"`
	AggregateID string                 `json:"aggregate_id"`
	OccurredAt  time.Time              `json:"occurred_at"`
	Payload     map[string]interface{} `json:"payload"`
}

func encodeEnvelope(instanceID string, e shared.Event) ([]byte, error) {
	data, err := json.Marshal(envelope{
		InstanceID:  instanceID,
		Type:        e.EventType(),
		AggregateID: e.AggregateID(),
		OccurredAt:  e.OccurredAt(),
		Payload:     e.Payload(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

func decodeEnvelope(payload string) (envelope, error) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return envelope{}, fmt.Errorf("unmarshal event: %w", err)
	}
	if env.Type == "" {
		return envelope{}, errors.New("event without type")
	}
	return env, nil
}

func (e envelope) event() RemoteEvent {
	return RemoteEvent{
		BaseEvent: shared.NewBaseEvent(e.Type, e.AggregateID, e.OccurredAt),
		Data:      e.Payload,
	}
}

// RemoteEvent is an event received from another instance.
type RemoteEvent struct {
	shared.BaseEvent
	Data map[string]interface{}
}

// Payload implements shared.Event.
func (e RemoteEvent) Payload() map[string]interface{} {
	return e.Data
}

// ══════════════════════════════════════════════════════════════════════════════
// METRICS
// ══════════════════════════════════════════════════════════════════════════════

// Metrics counts bus activity.
type Metrics struct {
	published     atomic.Int64
	executions    atomic.Int64
	failures      atomic.Int64
	totalDuration atomic.Int64
}

// NewMetrics creates zeroed counters.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) recordPublish() {
	m.published.Add(1)
}

func (m *Metrics) recordExecution(d time.Duration, success bool) {
	m.executions.Add(1)
	m.totalDuration.Add(int64(d))
	if !success {
		m.failures.Add(1)
	}
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Published       int64         `json:"published"`
	Executions      int64         `json:"executions"`
	Failures        int64         `json:"failures"`
	AverageDuration time.Duration `json:"average_duration"`
}

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Published:  m.published.Load(),
		Executions: m.executions.Load(),
		Failures:   m.failures.Load(),
	}
	if s.Executions > 0 {
		s.AverageDuration = time.Duration(m.totalDuration.Load() / s.Executions)
	}
	return s
}
