package ui

import (
	"image/color"
	"testing"

	"OverlayEditor/internal/editor"
	"OverlayEditor/internal/layer"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
)

func TestListLabel(t *testing.T) {
	cases := map[string]string{
		"":                                 "Empty",
		"   ":                              "Empty",
		"Hello":                            "Hello",
		"two\nlines":                       "two lines",
		"a rather long caption for a card": "a rather long caption fo…",
	}
	for in, want := range cases {
		l := layer.Default(1)
		l.Text = in
		if got := listLabel(l); got != want {
			t.Errorf("listLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTextStyle(t *testing.T) {
	l := layer.Default(1)
	if s := textStyle(l); s.Bold || s.Monospace {
		t.Fatalf("default layer style = %+v", s)
	}
	l.FontWeight = layer.WeightBolder
	l.FontFamily = "Courier New"
	if s := textStyle(l); !s.Bold || !s.Monospace {
		t.Fatalf("bolder courier style = %+v", s)
	}
}

func TestFade(t *testing.T) {
	c := color.NRGBA{R: 10, A: 200}
	if got := fade(c, 0.5); got.A != 100 || got.R != 10 {
		t.Fatalf("fade = %+v", got)
	}
	if got := fade(c, 2); got.A != 200 {
		t.Fatalf("opacity above 1 not clamped: %+v", got)
	}
}

func TestParseOrFallsBack(t *testing.T) {
	if got := parseOr("red", "#000000"); got != (color.NRGBA{A: 0xff}) {
		t.Fatalf("parseOr = %+v", got)
	}
}

func TestSurfaceDrivesDrag(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	s := editor.New(editor.Options{Initial: []layer.TextLayer{layer.Default(1)}})
	sf := NewSurface(s)
	s.AttachGeometry(sf)
	s.Open()

	// Zero size means the surface is not laid out yet.
	if _, ok := sf.Bounds(); ok {
		t.Fatalf("unsized surface reported as mounted")
	}
	sf.Resize(fyne.NewSize(400, 300))

	sf.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(105, 105)},
		Button:     desktop.MouseButtonPrimary,
	})
	if id, ok := s.Drag().Active(); !ok || id != 1 {
		t.Fatalf("press did not start a drag")
	}

	sf.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(205, 155)}})
	sf.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(900, 900)}})
	sf.DragEnd()

	l, _ := s.Store().Get(1)
	if l.X != 300 || l.Y != 250 || l.Dragging {
		t.Fatalf("after drag: x=%v y=%v dragging=%v", l.X, l.Y, l.Dragging)
	}
	if s.Hub().Listeners() != 0 {
		t.Fatalf("pointer listener leaked")
	}
}

func TestSurfacePressOnEmptyAreaClearsSelection(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	s := editor.New(editor.Options{Initial: []layer.TextLayer{layer.Default(1)}})
	sf := NewSurface(s)
	s.AttachGeometry(sf)
	s.Open()
	sf.Resize(fyne.NewSize(400, 300))
	s.Store().Select(1)

	sf.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(10, 10)},
		Button:     desktop.MouseButtonPrimary,
	})
	if s.Store().Selected() != layer.None {
		t.Fatalf("selection kept after press on empty canvas")
	}
	if _, ok := s.Drag().Active(); ok {
		t.Fatalf("drag started without a layer")
	}
}

func TestSurfaceDragsInPreview(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	s := editor.New(editor.Options{Initial: []layer.TextLayer{layer.Default(1)}})
	sf := NewSurface(s)
	s.AttachGeometry(sf)
	s.Open()
	sf.Resize(fyne.NewSize(400, 300))
	s.SetPreview(true)

	sf.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(105, 105)},
		Button:     desktop.MouseButtonPrimary,
	})
	sf.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(155, 125)}})
	sf.MouseUp(&desktop.MouseEvent{Button: desktop.MouseButtonPrimary})

	l, _ := s.Store().Get(1)
	if l.X != 150 || l.Y != 120 || l.Dragging {
		t.Fatalf("preview drag: x=%v y=%v dragging=%v", l.X, l.Y, l.Dragging)
	}
}
