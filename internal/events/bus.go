package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Rithunrajrp/0xmart-backend/pkg/logger"
)

// Bus fans events out to subscribers. Delivery is best-effort: a subscriber
// whose buffer is full misses the event rather than blocking settlement.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
	log  *logger.Logger
}

// NewBus creates an event bus.
func NewBus(log *logger.Logger) *Bus {
	if log == nil {
		log = logger.NewDefault("events")
	}
	return &Bus{
		subs: make(map[int]chan Event),
		log:  log,
	}
}

// Publish delivers an event to all current subscribers without blocking.
func (b *Bus) Publish(_ context.Context, typ Type, payload any) {
	evt := Event{
		ID:        uuid.New().String(),
		Type:      typ,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			b.log.WithField("subscriber", id).WithField("event", string(typ)).
				Warn("subscriber buffer full, dropping event")
		}
	}
}

// Subscribe registers a buffered subscriber channel. The returned cancel
// function removes the subscription and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}
