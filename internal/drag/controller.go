package drag

import (
	"log"
	"sync"

	"OverlayEditor/internal/layer"
	"OverlayEditor/internal/state"
)

// Rendered text bounds are not measured; a fixed box keeps the layer's
// origin far enough from the right and bottom edges.
const (
	LayerWidthEstimate  = 100
	LayerHeightEstimate = 50
)

// Controller turns pointer events into position updates on one layer at a
// time. It is Idle until Press starts a session; the session subscribes to
// the PointerSource and the subscription is closed on release.
type Controller struct {
	store    *state.Store
	geometry Geometry
	source   PointerSource

	// Box is the fixed layer size used for clamping.
	Box Size

	mu      sync.Mutex
	session *session
}

type session struct {
	c      *Controller
	id     layer.ID
	offset layer.Point
	sub    Subscription
}

func (s *session) PointerMove(p layer.Point) { s.c.move(s, p) }
func (s *session) PointerRelease()           { s.c.release(s) }

// NewController wires a controller to the store it mutates, the container
// it clamps against and the source of global pointer events.
func NewController(store *state.Store, geometry Geometry, source PointerSource) *Controller {
	return &Controller{
		store:    store,
		geometry: geometry,
		source:   source,
		Box:      Size{Width: LayerWidthEstimate, Height: LayerHeightEstimate},
	}
}

// Press starts dragging the layer from the container-relative point p and
// selects it. It returns false when the container is not mounted or the
// layer does not exist. A press during another session abandons that
// session first.
func (c *Controller) Press(id layer.ID, p layer.Point) bool {
	if _, ok := c.geometry.Bounds(); !ok {
		return false
	}
	l, ok := c.store.Get(id)
	if !ok {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old := c.session; old != nil {
		log.Printf("[DRAG] Press on %d while dragging %d, abandoning old session", id, old.id)
		c.endLocked(old)
	}

	offset := p.Sub(l.Position())
	if !c.store.BeginDrag(id, offset) {
		return false
	}
	c.store.Select(id)

	s := &session{c: c, id: id, offset: offset}
	s.sub = c.source.Subscribe(s)
	c.session = s
	return true
}

// Active returns the layer being dragged.
func (c *Controller) Active() (layer.ID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return layer.None, false
	}
	return c.session.id, true
}

func (c *Controller) move(s *session, p layer.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != s {
		return
	}
	bounds, ok := c.geometry.Bounds()
	if !ok {
		return
	}
	target := Clamp(p.Sub(s.offset), c.Box, bounds)
	if !c.store.Update(s.id, layer.MoveTo(target)) {
		// The layer went away mid-drag.
		c.endLocked(s)
	}
}

func (c *Controller) release(s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != s {
		return
	}
	c.endLocked(s)
}

func (c *Controller) endLocked(s *session) {
	s.sub.Close()
	c.store.EndDrag(s.id)
	if c.session == s {
		c.session = nil
	}
}
