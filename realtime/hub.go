package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"dailybag/core"
)

// Hub is a simple pub/sub for fanning signals out to live clients.
type Hub struct {
	mu   sync.RWMutex
	subs map[int]chan core.Signal
	next int
}

func NewHub() *Hub { return &Hub{subs: map[int]chan core.Signal{}} }

func (h *Hub) Subscribe(buffer int) (int, <-chan core.Signal) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	id := h.next
	ch := make(chan core.Signal, buffer)
	h.subs[id] = ch
	return id, ch
}

func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *Hub) Broadcast(_ context.Context, sig core.Signal) {
	h.mu.RLock()
	// copy to avoid holding lock during send
	receivers := make([]chan core.Signal, 0, len(h.subs))
	for _, ch := range h.subs {
		receivers = append(receivers, ch)
	}
	h.mu.RUnlock()
	for _, ch := range receivers {
		select {
		case ch <- sig:
		default: /* drop if full */
		}
	}
}

// MarshalJSON is a helper to convert signals to JSON bytes for WebSocket/SSE.
func MarshalJSON(sig core.Signal) []byte {
	b, _ := json.Marshal(sig)
	return b
}
