package ui

import (
	"image/color"
	"log"

	"OverlayEditor/internal/drag"
	"OverlayEditor/internal/editor"
	"OverlayEditor/internal/layer"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

var (
	surfaceBackground = color.NRGBA{R: 0x1e, G: 0x1f, B: 0x26, A: 0xff}
	selectionColor    = color.NRGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}
)

// shadowOffset is how far the drop shadow sits below and right of the text.
const shadowOffset = 2

// Surface is the canvas the layers are placed on. Pointer input on it
// drives the session's drag controller.
type Surface struct {
	widget.BaseWidget
	session *editor.Session
}

var _ fyne.Widget = (*Surface)(nil)
var _ fyne.Draggable = (*Surface)(nil)
var _ desktop.Mouseable = (*Surface)(nil)
var _ drag.Geometry = (*Surface)(nil)

func NewSurface(s *editor.Session) *Surface {
	sf := &Surface{session: s}
	sf.ExtendBaseWidget(sf)
	return sf
}

// Bounds reports the widget size. Until the window lays the surface out
// the size is zero and the surface counts as unmounted.
func (s *Surface) Bounds() (drag.Size, bool) {
	sz := s.Size()
	if sz.Width <= 0 || sz.Height <= 0 || !s.Visible() {
		return drag.Size{}, false
	}
	return drag.Size{Width: float64(sz.Width), Height: float64(sz.Height)}, true
}

func toPoint(p fyne.Position) layer.Point {
	return layer.Point{X: float64(p.X), Y: float64(p.Y)}
}

func (s *Surface) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	p := toPoint(e.Position)
	store := s.session.Store()
	id, ok := drag.HitTest(store.RenderOrder(), p, measure)
	if !ok {
		store.Select(layer.None)
		return
	}
	if !s.session.Drag().Press(id, p) {
		log.Printf("[UI] Press on layer %d ignored", id)
	}
}

func (s *Surface) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		s.session.Hub().Release()
	}
}

func (s *Surface) Dragged(e *fyne.DragEvent) {
	s.session.Hub().Move(toPoint(e.Position))
}

func (s *Surface) DragEnd() {
	s.session.Hub().Release()
}

func (s *Surface) MouseIn(*desktop.MouseEvent)    {}
func (s *Surface) MouseOut()                      {}
func (s *Surface) MouseMoved(*desktop.MouseEvent) {}

func (s *Surface) CreateRenderer() fyne.WidgetRenderer {
	r := &surfaceRenderer{surface: s}
	r.background = canvas.NewRectangle(surfaceBackground)
	r.rebuild()
	return r
}

type surfaceRenderer struct {
	surface    *Surface
	background *canvas.Rectangle
	objects    []fyne.CanvasObject
}

func (r *surfaceRenderer) rebuild() {
	snap := r.surface.session.Store().Snapshot()
	preview := r.surface.session.Preview()

	objects := []fyne.CanvasObject{r.background}
	for _, l := range snap.RenderOrder() {
		objects = append(objects, layerObjects(l, !preview && l.ID == snap.Selected)...)
	}
	r.objects = objects
}

func (r *surfaceRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *surfaceRenderer) Refresh() {
	r.rebuild()
	r.background.Resize(r.surface.Size())
	canvas.Refresh(r.surface)
}

func (r *surfaceRenderer) Layout(size fyne.Size) { r.background.Resize(size) }
func (r *surfaceRenderer) MinSize() fyne.Size    { return fyne.NewSize(480, 320) }
func (r *surfaceRenderer) Destroy()              {}

// layerObjects draws one layer. Rotation has no canvas equivalent here and
// only shows in the applied PDF; stroke is approximated by offset copies.
func layerObjects(l layer.TextLayer, selected bool) []fyne.CanvasObject {
	var objects []fyne.CanvasObject
	pos := fyne.NewPos(float32(l.X), float32(l.Y))
	text := l.DisplayText()

	if l.TextShadow {
		shadow := newLayerText(text, fade(color.NRGBA{A: 0x80}, l.Opacity), l)
		shadow.Move(pos.AddXY(shadowOffset, shadowOffset))
		objects = append(objects, shadow)
	}
	if l.Stroke {
		sc := fade(parseOr(l.StrokeColor, layer.DefaultStrokeColor), l.Opacity)
		w := float32(l.StrokeWidth) / 2
		for _, d := range [][2]float32{{-w, 0}, {w, 0}, {0, -w}, {0, w}} {
			t := newLayerText(text, sc, l)
			t.Move(pos.AddXY(d[0], d[1]))
			objects = append(objects, t)
		}
	}

	fill := newLayerText(text, fade(parseOr(l.Color, layer.DefaultColor), l.Opacity), l)
	fill.Move(pos)
	objects = append(objects, fill)

	if selected {
		ring := canvas.NewRectangle(color.Transparent)
		ring.StrokeColor = selectionColor
		ring.StrokeWidth = 2
		ring.Move(pos.AddXY(-4, -4))
		ring.Resize(fill.MinSize().AddWidthHeight(8, 8))
		objects = append(objects, ring)
	}
	return objects
}

func newLayerText(s string, c color.Color, l layer.TextLayer) *canvas.Text {
	t := canvas.NewText(s, c)
	t.TextSize = float32(l.FontSize)
	t.TextStyle = textStyle(l)
	t.Resize(t.MinSize())
	return t
}

// measure sizes a layer for hit-testing.
func measure(l layer.TextLayer) drag.Size {
	sz := fyne.MeasureText(l.DisplayText(), float32(l.FontSize), textStyle(l))
	return drag.Size{Width: float64(sz.Width), Height: float64(sz.Height)}
}

// textStyle maps the layer's weight and family onto the faces fyne ships.
func textStyle(l layer.TextLayer) fyne.TextStyle {
	return fyne.TextStyle{
		Bold:      l.FontWeight.Heavy() || l.FontFamily == "Arial Black" || l.FontFamily == "Impact",
		Monospace: l.FontFamily == "Courier New" || l.FontFamily == "Lucida Console",
	}
}

func fade(c color.NRGBA, opacity float64) color.NRGBA {
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	c.A = uint8(float64(c.A)*opacity + 0.5)
	return c
}

func parseOr(hex, fallback string) color.NRGBA {
	if c, err := layer.ParseHex(hex); err == nil {
		return c
	}
	c, _ := layer.ParseHex(fallback)
	return c
}
