// Package events provides an in-process domain event dispatcher.
package events

import (
	"sync"

	"go.uber.org/zap"

	"github.com/alchemorsel/planner/internal/domain/shared"
)

// Dispatcher implements shared.EventDispatcher with synchronous in-process
// delivery. Handler errors are logged and do not stop remaining handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	logger   *zap.Logger
}

// NewDispatcher creates an event dispatcher.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]shared.EventHandler),
		logger:   logger.Named("event-dispatcher"),
	}
}

// Register implements shared.EventDispatcher.
func (d *Dispatcher) Register(eventName string, handler shared.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventName] = append(d.handlers[eventName], handler)
}

// Dispatch implements shared.EventDispatcher.
func (d *Dispatcher) Dispatch(event shared.DomainEvent) error {
	d.mu.RLock()
	handlers := d.handlers[event.EventName()]
	d.mu.RUnlock()

	var firstErr error
	for _, handler := range handlers {
		if err := handler(event); err != nil {
			d.logger.Error("event handler failed",
				zap.String("event", event.EventName()),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
