package state

import (
	"log"
	"sync"

	"OverlayEditor/internal/layer"
)

// DuplicateOffset is how far a duplicate is shifted from its source on
// each axis.
const DuplicateOffset = 20

// Snapshot is a consistent copy of the store taken after a mutation.
type Snapshot struct {
	Layers   []layer.TextLayer
	Selected layer.ID
	Version  uint64
}

// SelectedLayer returns the selected layer if it is in the snapshot.
func (s Snapshot) SelectedLayer() (layer.TextLayer, bool) {
	for _, l := range s.Layers {
		if l.ID == s.Selected && s.Selected != layer.None {
			return l, true
		}
	}
	return layer.TextLayer{}, false
}

// Store owns the ordered layer collection and the selection. Order is
// z-order: later layers render above earlier ones. All writes go through
// its methods; each one runs under the lock so readers never observe a
// half-applied change.
type Store struct {
	mu       sync.RWMutex
	layers   []layer.TextLayer
	selected layer.ID
	version  uint64
	clock    *Clock

	// Offset applied to duplicates on both axes.
	Offset float64

	watchMu   sync.Mutex
	watchers  map[int]func(Snapshot)
	nextWatch int
}

// NewStore creates a store that draws ids from clock.
func NewStore(clock *Clock) *Store {
	if clock == nil {
		clock = NewClock(nil)
	}
	return &Store{
		layers:   make([]layer.TextLayer, 0),
		clock:    clock,
		Offset:   DuplicateOffset,
		watchers: make(map[int]func(Snapshot)),
	}
}

// Watch registers fn to be called with a snapshot after every mutation.
// The returned func removes it.
func (s *Store) Watch(fn func(Snapshot)) (cancel func()) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	key := s.nextWatch
	s.nextWatch++
	s.watchers[key] = fn
	return func() {
		s.watchMu.Lock()
		defer s.watchMu.Unlock()
		delete(s.watchers, key)
	}
}

// mutate runs fn under the write lock. When fn reports a change the version
// is bumped and watchers get the new snapshot once the lock is released.
func (s *Store) mutate(fn func() bool) bool {
	s.mu.Lock()
	changed := fn()
	var snap Snapshot
	if changed {
		s.version++
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	if changed {
		s.notify(snap)
	}
	return changed
}

func (s *Store) notify(snap Snapshot) {
	s.watchMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.watchMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Layers:   s.copyLocked(),
		Selected: s.selected,
		Version:  s.version,
	}
}

func (s *Store) copyLocked() []layer.TextLayer {
	out := make([]layer.TextLayer, len(s.layers))
	for i, l := range s.layers {
		out[i] = l.Clone()
	}
	return out
}

func (s *Store) indexLocked(id layer.ID) int {
	if id == layer.None {
		return -1
	}
	for i := range s.layers {
		if s.layers[i].ID == id {
			return i
		}
	}
	return -1
}

// Add appends a layer with the stock style and selects it.
func (s *Store) Add() layer.TextLayer {
	var added layer.TextLayer
	s.mutate(func() bool {
		added = layer.Default(s.clock.Next())
		s.layers = append(s.layers, added)
		s.selected = added.ID
		return true
	})
	log.Printf("[STORE] Layer added: %d", added.ID)
	return added.Clone()
}

// Update merges p into the layer with the given id. A missing id is a no-op.
func (s *Store) Update(id layer.ID, p layer.Patch) bool {
	return s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		s.layers[i].Apply(p)
		return true
	})
}

// Delete removes the layer and clears the selection if it pointed at it.
func (s *Store) Delete(id layer.ID) bool {
	ok := s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		s.layers = append(s.layers[:i], s.layers[i+1:]...)
		if s.selected == id {
			s.selected = layer.None
		}
		return true
	})
	if ok {
		log.Printf("[STORE] Layer deleted: %d", id)
	}
	return ok
}

// Duplicate appends a copy of the layer under a new id, shifted by Offset,
// and selects the copy.
func (s *Store) Duplicate(id layer.ID) (layer.TextLayer, bool) {
	var dup layer.TextLayer
	ok := s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		dup = s.layers[i].Clone()
		dup.ID = s.clock.Next()
		dup.X += s.Offset
		dup.Y += s.Offset
		dup.ResetTransient()
		s.layers = append(s.layers, dup)
		s.selected = dup.ID
		return true
	})
	if ok {
		log.Printf("[STORE] Layer %d duplicated as %d", id, dup.ID)
	}
	return dup.Clone(), ok
}

// ReplaceAll discards the collection and selection and installs layers.
// Transient fields are reset, attributes normalized, and missing,
// out-of-range or repeated ids replaced with fresh ones.
func (s *Store) ReplaceAll(layers []layer.TextLayer) {
	s.mutate(func() bool {
		for _, l := range layers {
			s.clock.Observe(l.ID)
		}
		seen := make(map[layer.ID]bool, len(layers))
		next := make([]layer.TextLayer, 0, len(layers))
		for _, l := range layers {
			l = l.Clone()
			l.ResetTransient()
			l.Normalize()
			if !l.ID.Valid() || seen[l.ID] {
				l.ID = s.freshIDLocked(seen)
			}
			seen[l.ID] = true
			next = append(next, l)
		}
		s.layers = next
		s.selected = layer.None
		return true
	})
	log.Printf("[STORE] Collection replaced: %d layers", len(layers))
}

// freshIDLocked draws clock ids until one is not in seen.
func (s *Store) freshIDLocked(seen map[layer.ID]bool) layer.ID {
	id := s.clock.Next()
	for seen[id] {
		id = s.clock.Next()
	}
	return id
}

// Select points the selection at id, or clears it for layer.None. The id
// is not checked against the collection.
func (s *Store) Select(id layer.ID) {
	s.mutate(func() bool {
		if s.selected == id {
			return false
		}
		s.selected = id
		return true
	})
}

// Move places the layer at index in z-order, clamping index into range.
func (s *Store) Move(id layer.ID, index int) bool {
	return s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		if index < 0 {
			index = 0
		}
		if index >= len(s.layers) {
			index = len(s.layers) - 1
		}
		if index == i {
			return false
		}
		l := s.layers[i]
		s.layers = append(s.layers[:i], s.layers[i+1:]...)
		s.layers = append(s.layers[:index], append([]layer.TextLayer{l}, s.layers[index:]...)...)
		return true
	})
}

// BringForward swaps the layer with the one above it.
func (s *Store) BringForward(id layer.ID) bool {
	i := s.IndexOf(id)
	if i < 0 {
		return false
	}
	return s.Move(id, i+1)
}

// SendBackward swaps the layer with the one below it.
func (s *Store) SendBackward(id layer.ID) bool {
	i := s.IndexOf(id)
	if i < 0 {
		return false
	}
	return s.Move(id, i-1)
}

// BeginDrag marks the layer as the one being dragged and records offset.
// Any other layer still flagged loses the flag, so at most one layer is
// dragging at a time.
func (s *Store) BeginDrag(id layer.ID, offset layer.Point) bool {
	return s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		for j := range s.layers {
			if j != i && s.layers[j].Dragging {
				log.Printf("[STORE] Abandoning drag of layer %d", s.layers[j].ID)
				s.layers[j].ResetTransient()
			}
		}
		s.layers[i].Dragging = true
		s.layers[i].DragOffset = offset
		return true
	})
}

// EndDrag clears the drag flag and offset of the layer.
func (s *Store) EndDrag(id layer.ID) bool {
	return s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 || !s.layers[i].Dragging {
			return false
		}
		s.layers[i].ResetTransient()
		return true
	})
}

// Dragging returns the layer currently flagged as dragging.
func (s *Store) Dragging() (layer.TextLayer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.layers {
		if l.Dragging {
			return l.Clone(), true
		}
	}
	return layer.TextLayer{}, false
}

// Get returns a copy of the layer with id.
func (s *Store) Get(id layer.ID) (layer.TextLayer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return layer.TextLayer{}, false
	}
	return s.layers[i].Clone(), true
}

// IndexOf returns the z-order index of the layer, or -1.
func (s *Store) IndexOf(id layer.ID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(id)
}

// Layers returns a copy of the collection in z-order.
func (s *Store) Layers() []layer.TextLayer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Len returns the number of layers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.layers)
}

// Selected returns the selected id, or layer.None.
func (s *Store) Selected() layer.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SelectedLayer returns the selected layer when the selection matches one.
func (s *Store) SelectedLayer() (layer.TextLayer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(s.selected)
	if i < 0 {
		return layer.TextLayer{}, false
	}
	return s.layers[i].Clone(), true
}

// Version counts applied mutations.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot returns a consistent copy of the layers, selection and version.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// RenderOrder returns the layers in paint order: z-order, with the
// selected layer lifted to the top.
func (s *Store) RenderOrder() []layer.TextLayer {
	return s.Snapshot().RenderOrder()
}

// RenderOrder returns the snapshot's layers in paint order.
func (s Snapshot) RenderOrder() []layer.TextLayer {
	out := make([]layer.TextLayer, 0, len(s.Layers))
	var top *layer.TextLayer
	for i := range s.Layers {
		if s.Layers[i].ID == s.Selected && s.Selected != layer.None {
			top = &s.Layers[i]
			continue
		}
		out = append(out, s.Layers[i])
	}
	if top != nil {
		out = append(out, *top)
	}
	return out
}
