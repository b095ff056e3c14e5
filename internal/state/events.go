package state

import (
	"log/slog"
	"sync"
)

// Event types.
const (
	EventSet    = "set"
	EventDelete = "delete"
)

// Event is published to subscribers after every change.
type Event struct {
	Type  string   `json:"type"` // EventSet or EventDelete
	Key   string   `json:"key,omitempty"`
	Value string   `json:"value,omitempty"`
	Keys  []string `json:"keys,omitempty"` // delete only
}

// Notifier is implemented by stores that publish change events. Both
// FileStore and SQLiteStore do.
type Notifier interface {
	Subscribe(bufSize int) (int, <-chan Event)
	Unsubscribe(id int)
}

// hub fans events out to subscribers.
type hub struct {
	log *slog.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func newHub(log *slog.Logger) *hub {
	if log == nil {
		log = slog.Default()
	}
	return &hub{log: log, subs: make(map[int]chan Event)}
}

// Subscribe returns a channel that receives events. bufSize controls the
// channel buffer; slow consumers will have events dropped.
func (h *hub) Subscribe(bufSize int) (int, <-chan Event) {
	ch := make(chan Event, bufSize)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *hub) Unsubscribe(id int) {
	h.mu.Lock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
	h.mu.Unlock()
}

// broadcast sends an event to all subscribers non-blocking (drop on full).
func (h *hub) broadcast(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
			h.log.Debug("dropping state event for slow subscriber", "type", e.Type)
		}
	}
}

// closeAll unsubscribes every subscriber.
func (h *hub) closeAll() {
	h.mu.Lock()
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
	h.mu.Unlock()
}
