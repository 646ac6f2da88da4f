// Package events fans host UI events (menu items, shortcuts) out to
// subscribed front ends. The log decoder and config gate never use it.
package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/ksuid"
)

// Known event names emitted by the host.
const (
	Connect      = "connect"
	OpenLog      = "open_log"
	ImportConfig = "import_config"
	ExportConfig = "export_config"
)

// Names lists the known event names.
var Names = []string{Connect, OpenLog, ImportConfig, ExportConfig}

// Event is one named notification with an optional JSON payload.
type Event struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Time    time.Time       `json:"time"`
}

// Emitter is the outbound side used by whatever hosts the UI.
type Emitter interface {
	Emit(name string, payload json.RawMessage) Event
}

// Bus delivers every emitted event to every current subscriber. Slow
// subscribers drop events instead of blocking the emitter.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextID      int
	buffer      int
}

// NewBus creates a bus whose subscriber channels hold buffer events.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 16
	}
	return &Bus{
		subscribers: make(map[int]chan Event),
		buffer:      buffer,
	}
}

// Emit publishes an event and returns it with its assigned ID.
func (b *Bus) Emit(name string, payload json.RawMessage) Event {
	ev := Event{
		ID:      ksuid.New().String(),
		Name:    name,
		Payload: payload,
		Time:    time.Now().UTC(),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
	return ev
}

// Subscribe returns a channel of future events and a function that
// unsubscribes and closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, b.buffer)
	b.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subscribers, id)
			close(ch)
		})
	}
}

// Subscribers returns the number of active subscribers.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// IsKnown reports whether name is one of the host's event names.
func IsKnown(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}
