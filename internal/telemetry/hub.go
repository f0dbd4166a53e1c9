package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Event types published by the resolver.
const (
	EventResolved  = "commandResolved"
	EventRejected  = "commandRejected"
	EventHeartbeat = "heartbeat"
	EventReady     = "ready"
)

// Event is a single telemetry record with SSE framing metadata.
type Event struct {
	ID   int64                  `json:"id,omitempty"`
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// client is one subscribed SSE connection.
type client struct {
	id     string
	events chan Event
	cancel context.CancelFunc
	once   sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.events)
		c.cancel()
	})
}

// Hub distributes resolution events to SSE subscribers.
//
// A single mutex protects the client set, the replay ring, and the event ID
// counter. Client channels are buffered; a subscriber that cannot keep up
// has events dropped rather than blocking the resolver.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*client
	ring    []Event
	ringCap int
	nextID  int64

	heartbeatInterval time.Duration
	stopOnce          sync.Once
	done              chan struct{}
}

// NewHub creates a hub with the given replay buffer capacity and heartbeat
// interval. Zero values fall back to sensible defaults.
func NewHub(bufferSize int, heartbeatInterval time.Duration) *Hub {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	if heartbeatInterval <= 0 {
		heartbeatInterval = 15 * time.Second
	}
	return &Hub{
		clients:           make(map[string]*client),
		ringCap:           bufferSize,
		heartbeatInterval: heartbeatInterval,
		done:              make(chan struct{}),
	}
}

// Publish assigns the event a monotonic ID, buffers it for replay, and fans
// it out to all subscribers.
func (h *Hub) Publish(event Event) error {
	h.mu.Lock()
	h.nextID++
	event.ID = h.nextID

	h.ring = append(h.ring, event)
	if len(h.ring) > h.ringCap {
		h.ring = h.ring[len(h.ring)-h.ringCap:]
	}

	for _, c := range h.clients {
		select {
		case c.events <- event:
		default:
			// Slow subscriber; it can resume from Last-Event-ID.
		}
	}
	h.mu.Unlock()
	return nil
}

// Subscribe attaches the HTTP request as an SSE client and blocks until the
// client disconnects or the hub stops. Honors Last-Event-ID replay.
func (h *Hub) Subscribe(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	lastID := int64(0)
	if raw := r.Header.Get("Last-Event-ID"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			lastID = id
		}
	}

	clientCtx, cancel := context.WithCancel(ctx)
	c := &client{
		id:     fmt.Sprintf("client_%d", time.Now().UnixNano()),
		events: make(chan Event, 100),
		cancel: cancel,
	}

	h.mu.Lock()
	h.clients[c.id] = c
	replay := h.replayAfter(lastID)
	h.mu.Unlock()

	defer h.unregister(c.id)

	if err := writeSSE(w, Event{Type: EventReady, Data: map[string]interface{}{
		"ts": time.Now().UTC().Format(time.RFC3339),
	}}); err != nil {
		return err
	}
	for _, event := range replay {
		if err := writeSSE(w, event); err != nil {
			return err
		}
	}
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-clientCtx.Done():
			return nil
		case <-h.done:
			return nil
		case event, open := <-c.events:
			if !open {
				return nil
			}
			if err := writeSSE(w, event); err != nil {
				return err
			}
			flusher.Flush()
		case <-ticker.C:
			if err := writeSSE(w, Event{Type: EventHeartbeat, Data: map[string]interface{}{
				"ts": time.Now().UTC().Format(time.RFC3339),
			}}); err != nil {
				return err
			}
			flusher.Flush()
		}
	}
}

// Stop disconnects all clients and stops heartbeats. Safe to call more than
// once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.mu.Lock()
		for id, c := range h.clients {
			c.close()
			delete(h.clients, id)
		}
		h.mu.Unlock()
	})
}

// ClientCount returns the number of attached subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// BufferedEvents returns a copy of the replay ring, oldest first.
func (h *Hub) BufferedEvents() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Event, len(h.ring))
	copy(out, h.ring)
	return out
}

// replayAfter returns buffered events with IDs greater than lastID. Caller
// holds h.mu.
func (h *Hub) replayAfter(lastID int64) []Event {
	if lastID <= 0 {
		return nil
	}
	var replay []Event
	for _, event := range h.ring {
		if event.ID > lastID {
			replay = append(replay, event)
		}
	}
	return replay
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	if c, ok := h.clients[id]; ok {
		c.close()
		delete(h.clients, id)
	}
	h.mu.Unlock()
}

// writeSSE writes one event in SSE wire format (id, event, data lines).
func writeSSE(w http.ResponseWriter, event Event) error {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	if event.ID > 0 {
		if _, err := fmt.Fprintf(w, "id: %d\n", event.ID); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload); err != nil {
		return err
	}
	return nil
}
