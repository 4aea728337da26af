package messaging

import (
	"fmt"
	"sync"
	"time"

	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// DISPATCHER
// ══════════════════════════════════════════════════════════════════════════════

// Subscriber is the registration side of an event bus.
type Subscriber interface {
	Subscribe(eventType shared.EventType, handler shared.EventHandler) error
	SubscribeAll(handler shared.EventHandler) error
}

// Middleware wraps handler execution.
type Middleware func(name string, next shared.EventHandler) shared.EventHandler

// Dispatcher registers named handlers on a bus, wrapping each with the
// configured middleware chain.
type Dispatcher struct {
	bus         Subscriber
	mu          sync.Mutex
	middlewares []Middleware
	names       []string
}

// NewDispatcher creates a dispatcher over bus.
func NewDispatcher(bus Subscriber, middlewares ...Middleware) *Dispatcher {
	return &Dispatcher{bus: bus, middlewares: middlewares}
}

// Register subscribes handler to one event type.
func (d *Dispatcher) Register(eventType shared.EventType, name string, handler shared.EventHandler) error {
	if err := d.bus.Subscribe(eventType, d.wrap(name, handler)); err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	d.track(name)
	return nil
}

// RegisterAll subscribes handler to every event.
func (d *Dispatcher) RegisterAll(name string, handler shared.EventHandler) error {
	if err := d.bus.SubscribeAll(d.wrap(name, handler)); err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	d.track(name)
	return nil
}

// Handlers lists registered handler names in registration order.
func (d *Dispatcher) Handlers() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.names...)
}

func (d *Dispatcher) wrap(name string, handler shared.EventHandler) shared.EventHandler {
	d.mu.Lock()
	defer d.mu.Unlock()
	// First middleware is outermost.
	for i := len(d.middlewares) - 1; i >= 0; i-- {
		handler = d.middlewares[i](name, handler)
	}
	return handler
}

func (d *Dispatcher) track(name string) {
	d.mu.Lock()
	d.names = append(d.names, name)
	d.mu.Unlock()
}

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// LoggingMiddleware logs failures at error level and successes at debug level.
func LoggingMiddleware(log *logger.Logger) Middleware {
	return func(name string, next shared.EventHandler) shared.EventHandler {
		return func(event shared.Event) error {
			start := time.Now()
			err := next(event)
			fields := []logger.Field{
				logger.String("handler", name),
				logger.EventType(string(event.EventType())),
				logger.Username(event.AggregateID()),
				logger.Latency(time.Since(start)),
			}
			if err != nil {
				log.Error("event handler failed", append(fields, logger.Err(err))...)
				return err
			}
			log.Debug("event handler completed", fields...)
			return nil
		}
	}
}

// TimeoutMiddleware fails a handler that runs longer than timeout.
// The handler goroutine keeps running; only the caller stops waiting.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(name string, next shared.EventHandler) shared.EventHandler {
		return func(event shared.Event) error {
			done := make(chan error, 1)
			go func() { done <- next(event) }()

			timer := time.NewTimer(timeout)
			defer timer.Stop()
			select {
			case err := <-done:
				return err
			case <-timer.C:
				return fmt.Errorf("handler %s timed out after %v", name, timeout)
			}
		}
	}
}
