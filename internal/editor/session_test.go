package editor

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"OverlayEditor/internal/document"
	"OverlayEditor/internal/drag"
	"OverlayEditor/internal/layer"
)

func fixedNow() time.Time {
	return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
}

func newSession(t *testing.T, opts Options) *Session {
	t.Helper()
	if opts.Now == nil {
		opts.Now = fixedNow
	}
	s := New(opts)
	s.AttachGeometry(drag.GeometryFunc(func() (drag.Size, bool) {
		return drag.Size{Width: 800, Height: 600}, true
	}))
	s.Open()
	return s
}

func TestOpenInstallsInitialLayers(t *testing.T) {
	title := layer.Default(1)
	title.Text = "Title"
	s := newSession(t, Options{Initial: []layer.TextLayer{title}})

	layers := s.Store().Layers()
	if len(layers) != 1 || layers[0].Text != "Title" {
		t.Fatalf("initial layers not installed: %+v", layers)
	}
	if !s.IsOpen() {
		t.Fatalf("session not open")
	}
}

func TestCloseAndReopenStartsFresh(t *testing.T) {
	closed := 0
	s := newSession(t, Options{OnClose: func() { closed++ }})
	s.Store().Add()
	s.SetPreview(true)

	s.Close()
	s.Close()
	if closed != 1 {
		t.Fatalf("OnClose called %d times, want 1", closed)
	}
	if s.IsOpen() {
		t.Fatalf("session still open")
	}

	s.Open()
	if s.Store().Len() != 0 {
		t.Fatalf("layers survived reopen: %d", s.Store().Len())
	}
	if s.Preview() {
		t.Fatalf("preview mode survived reopen")
	}
}

func TestCloseEndsDrag(t *testing.T) {
	s := newSession(t, Options{})
	l := s.Store().Add()
	s.Drag().Press(l.ID, layer.Point{X: 100, Y: 100})
	s.Close()
	if s.Hub().Listeners() != 0 {
		t.Fatalf("pointer listener survived close")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newSession(t, Options{})
	a := s.Store().Add()
	s.Store().Update(a.ID, layer.Patch{Text: layer.Ptr("hello"), FontSize: layer.Ptr(64.0)})
	s.Store().Duplicate(a.ID)
	before := s.Store().Layers()

	var buf bytes.Buffer
	if err := s.Export(&buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(buf.String(), `"exportedAt": "2026-10-17T12:00:00.000Z"`) {
		t.Fatalf("unexpected export stamp:\n%s", buf.String())
	}

	other := newSession(t, Options{})
	other.Store().Add()
	if err := other.Import(&buf); err != nil {
		t.Fatalf("import: %v", err)
	}
	after := other.Store().Layers()
	if len(after) != len(before) {
		t.Fatalf("got %d layers, want %d", len(after), len(before))
	}
	for i := range before {
		if after[i].ID != before[i].ID || after[i].Text != before[i].Text || after[i].X != before[i].X {
			t.Fatalf("layer %d differs: %+v vs %+v", i, after[i], before[i])
		}
	}
	if other.Store().Selected() != layer.None {
		t.Fatalf("selection not reset by import")
	}

	next := other.Store().Add()
	for _, l := range before {
		if next.ID == l.ID {
			t.Fatalf("new layer reused imported id %d", l.ID)
		}
	}
}

func TestFailedImportKeepsState(t *testing.T) {
	s := newSession(t, Options{})
	a := s.Store().Add()
	before := s.Store().Snapshot()

	for _, in := range []string{`{"author":"x"}`, `not json`} {
		err := s.Import(strings.NewReader(in))
		if !errors.Is(err, document.ErrImportFailed) {
			t.Fatalf("import %q: err = %v", in, err)
		}
	}
	after := s.Store().Snapshot()
	if after.Version != before.Version || len(after.Layers) != 1 || after.Selected != a.ID {
		t.Fatalf("state changed by failed import: %+v", after)
	}
}

func TestSaveHandsOverLiveLayers(t *testing.T) {
	saved := make(chan []layer.TextLayer, 1)
	release := make(chan struct{})
	s := newSession(t, Options{OnSave: func(layers []layer.TextLayer) {
		<-release
		saved <- layers
	}})
	l := s.Store().Add()
	s.Drag().Press(l.ID, layer.Point{X: 110, Y: 105})

	// Save must return while the handler is still blocked.
	s.Save()
	close(release)

	var got []layer.TextLayer
	select {
	case got = <-saved:
	case <-time.After(5 * time.Second):
		t.Fatalf("save handler not called")
	}
	if len(got) != 1 {
		t.Fatalf("OnSave got %d layers", len(got))
	}
	if !got[0].Dragging || got[0].DragOffset != (layer.Point{X: 10, Y: 5}) {
		t.Fatalf("transient fields not passed to save: %+v", got[0])
	}
}

func TestOptionsOverrideDefaults(t *testing.T) {
	s := newSession(t, Options{LayerWidth: 200, LayerHeight: 80, DuplicateOffset: 5})
	if s.Box() != (drag.Size{Width: 200, Height: 80}) {
		t.Fatalf("box = %+v", s.Box())
	}
	src := s.Store().Add()
	dup, _ := s.Store().Duplicate(src.ID)
	if dup.X != src.X+5 {
		t.Fatalf("duplicate offset not applied: %v", dup.X)
	}
	if s.Author() != document.Author {
		t.Fatalf("author = %q", s.Author())
	}
}

func TestDetachedGeometryIgnoresPointer(t *testing.T) {
	s := newSession(t, Options{})
	l := s.Store().Add()
	s.AttachGeometry(nil)
	if s.Drag().Press(l.ID, layer.Point{X: 100, Y: 100}) {
		t.Fatalf("press accepted without geometry")
	}
}
