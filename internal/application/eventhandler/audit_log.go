// Package eventhandler contains subscribers for domain events.
//
// Handlers only read event payloads, so they work the same for events
// published in-process and for events received from another instance.
package eventhandler

import (
	"sort"
	"sync"

	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/pkg/logger"
)

// Registrar accepts named handlers. messaging.Dispatcher implements it.
type Registrar interface {
	Register(eventType shared.EventType, name string, handler shared.EventHandler) error
	RegisterAll(name string, handler shared.EventHandler) error
}

// ══════════════════════════════════════════════════════════════════════════════
// AUDIT LOG
// Пишет каждое событие в структурированный лог и считает события по типам.
// ══════════════════════════════════════════════════════════════════════════════

// AuditLog records every event.
type AuditLog struct {
	log *logger.Logger

	mu     sync.Mutex
	counts map[shared.EventType]int64
}

// NewAuditLog creates an AuditLog.
func NewAuditLog(log *logger.Logger) *AuditLog {
	if log == nil {
		log = logger.Nop()
	}
	return &AuditLog{
		log:    log.With(logger.Component("audit")),
		counts: make(map[shared.EventType]int64),
	}
}

// Handle implements shared.EventHandler.
func (a *AuditLog) Handle(e shared.Event) error {
	a.mu.Lock()
	a.counts[e.EventType()]++
	a.mu.Unlock()

	a.log.Info("domain event",
		logger.EventType(string(e.EventType())),
		logger.Username(e.AggregateID()),
		logger.Time("occurred_at", e.OccurredAt()),
		logger.Any("payload", e.Payload()),
	)
	return nil
}

// EventCount is one row of Counts.
type EventCount struct {
	Type  shared.EventType `json:"type"`
	Count int64            `json:"count"`
}

// Counts returns the number of events seen per type, sorted by type.
func (a *AuditLog) Counts() []EventCount {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]EventCount, 0, len(a.counts))
	for t, n := range a.counts {
		out = append(out, EventCount{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
