package drag

import (
	"sync"

	"OverlayEditor/internal/layer"
)

// Handler receives pointer events that happen anywhere, not only over the
// container.
type Handler interface {
	PointerMove(p layer.Point)
	PointerRelease()
}

// Subscription is a registered Handler. Close detaches it; calling it more
// than once is harmless.
type Subscription interface {
	Close()
}

// PointerSource hands out global pointer subscriptions.
type PointerSource interface {
	Subscribe(h Handler) Subscription
}

// Hub is an in-process PointerSource. Surfaces publish raw pointer events
// into it and only the currently subscribed handlers see them.
type Hub struct {
	mu       sync.Mutex
	handlers map[int]Handler
	next     int
}

// NewHub returns a hub with no subscribers.
func NewHub() *Hub {
	return &Hub{handlers: make(map[int]Handler)}
}

// Subscribe adds handler until the returned subscription is closed.
func (h *Hub) Subscribe(handler Handler) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := h.next
	h.next++
	h.handlers[key] = handler
	return &hubSubscription{hub: h, key: key}
}

// Move forwards a pointer move to every subscriber.
func (h *Hub) Move(p layer.Point) {
	for _, handler := range h.current() {
		handler.PointerMove(p)
	}
}

// Release forwards a pointer release to every subscriber.
func (h *Hub) Release() {
	for _, handler := range h.current() {
		handler.PointerRelease()
	}
}

// Listeners returns the number of live subscriptions.
func (h *Hub) Listeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handlers)
}

// current copies the handler set so handlers may unsubscribe while being
// called.
func (h *Hub) current() []Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Handler, 0, len(h.handlers))
	for _, handler := range h.handlers {
		out = append(out, handler)
	}
	return out
}

type hubSubscription struct {
	hub  *Hub
	key  int
	once sync.Once
}

func (s *hubSubscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		delete(s.hub.handlers, s.key)
	})
}
