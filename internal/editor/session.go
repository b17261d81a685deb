// Package editor binds the layer store, drag controller and serializer into
// one editing session that a presentation surface drives.
package editor

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"OverlayEditor/internal/document"
	"OverlayEditor/internal/drag"
	"OverlayEditor/internal/layer"
	"OverlayEditor/internal/state"
)

// Options configures a Session. Zero values fall back to defaults.
type Options struct {
	// Initial is installed every time the session opens.
	Initial []layer.TextLayer
	// Author tags exported documents.
	Author string
	// Now is the time source for ids and export stamps.
	Now func() time.Time

	LayerWidth      float64
	LayerHeight     float64
	DuplicateOffset float64

	// OnSave receives a copy of the live layers when the user confirms. It
	// runs on its own goroutine; the session does not wait on its outcome.
	OnSave func([]layer.TextLayer)
	// OnClose is called when the session is dismissed.
	OnClose func()
}

// Session is one editor instance.
type Session struct {
	opts  Options
	clock *state.Clock
	store *state.Store
	hub   *drag.Hub
	drag  *drag.Controller

	mu      sync.Mutex
	geom    drag.Geometry
	open    bool
	preview bool
}

// New creates a closed session. Call Open to mount it.
func New(opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Author == "" {
		opts.Author = document.Author
	}
	s := &Session{opts: opts}
	s.clock = state.NewClock(opts.Now)
	s.store = state.NewStore(s.clock)
	if opts.DuplicateOffset > 0 {
		s.store.Offset = opts.DuplicateOffset
	}
	s.hub = drag.NewHub()
	s.drag = drag.NewController(s.store, drag.GeometryFunc(s.bounds), s.hub)
	if opts.LayerWidth > 0 {
		s.drag.Box.Width = opts.LayerWidth
	}
	if opts.LayerHeight > 0 {
		s.drag.Box.Height = opts.LayerHeight
	}
	return s
}

func (s *Session) Store() *state.Store    { return s.store }
func (s *Session) Drag() *drag.Controller { return s.drag }
func (s *Session) Hub() *drag.Hub         { return s.hub }
func (s *Session) Box() drag.Size         { return s.drag.Box }
func (s *Session) Author() string         { return s.opts.Author }
func (s *Session) Now() time.Time         { return s.opts.Now() }

// AttachGeometry sets the container the drag controller clamps against.
// Passing nil detaches it, after which pointer events are ignored.
func (s *Session) AttachGeometry(g drag.Geometry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geom = g
}

func (s *Session) bounds() (drag.Size, bool) {
	s.mu.Lock()
	g := s.geom
	s.mu.Unlock()
	if g == nil {
		return drag.Size{}, false
	}
	return g.Bounds()
}

// Open mounts the session with a fresh copy of the initial layers.
// Reopening discards whatever the previous mount left behind.
func (s *Session) Open() {
	s.mu.Lock()
	if s.open {
		s.mu.Unlock()
		return
	}
	s.open = true
	s.preview = false
	s.mu.Unlock()

	s.store.ReplaceAll(s.opts.Initial)
	log.Printf("[EDITOR] Session opened with %d layers", len(s.opts.Initial))
}

// Close ends any drag in progress, unmounts the session and calls OnClose.
func (s *Session) Close() {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return
	}
	s.open = false
	s.preview = false
	s.mu.Unlock()

	s.hub.Release()
	log.Println("[EDITOR] Session closed")
	if s.opts.OnClose != nil {
		s.opts.OnClose()
	}
}

func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// SetPreview toggles preview mode, in which surfaces hide the control panel.
func (s *Session) SetPreview(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preview = on
}

func (s *Session) Preview() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// ExportBytes returns the design document for the current layers.
func (s *Session) ExportBytes() ([]byte, error) {
	return document.Export(s.store.Layers(), s.opts.Now(), s.opts.Author)
}

// Export writes the design document to w.
func (s *Session) Export(w io.Writer) error {
	data, err := s.ExportBytes()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write design: %w", err)
	}
	log.Printf("[EDITOR] Exported %d bytes", len(data))
	return nil
}

// Import reads a design document from r and replaces every layer with its
// contents. On any failure the current layers and selection are kept and
// the returned error matches document.ErrImportFailed.
func (s *Session) Import(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("%w: read: %v", document.ErrImportFailed, err)
	}
	return s.ImportBytes(data)
}

// ImportBytes is Import for data already in memory.
func (s *Session) ImportBytes(data []byte) error {
	layers, err := document.Import(data)
	if err != nil {
		log.Printf("[EDITOR] Import rejected: %v", err)
		return err
	}
	s.hub.Release()
	s.store.ReplaceAll(layers)
	log.Printf("[EDITOR] Imported %d layers", len(layers))
	return nil
}

// Save hands the live layers, transient fields included, to OnSave on its
// own goroutine and returns without waiting.
func (s *Session) Save() {
	layers := s.store.Layers()
	if s.opts.OnSave == nil {
		log.Println("[EDITOR] Save requested but no save handler is set")
		return
	}
	log.Printf("[EDITOR] Saving %d layers", len(layers))
	go s.opts.OnSave(layers)
}
