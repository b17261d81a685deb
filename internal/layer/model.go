package layer

import (
	"encoding/json"
	"math"
	"regexp"
)

// ID identifies a layer for its whole lifetime. Zero means "no layer".
type ID int64

// None is the zero id, used for "nothing selected".
const None ID = 0

// MaxID is the largest id handed out or kept from a document: 2^53, the
// largest integer a JSON number survives as exactly.
const MaxID ID = 1 << 53

// Valid reports whether id is in (None, MaxID].
func (id ID) Valid() bool {
	return id > None && id <= MaxID
}

// Point is a position or offset in container-local coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// FontWeight is the CSS-style weight keyword of a layer.
type FontWeight string

const (
	WeightNormal  FontWeight = "normal"
	WeightBold    FontWeight = "bold"
	WeightLighter FontWeight = "lighter"
	WeightBolder  FontWeight = "bolder"
)

// Weights lists the accepted font weights in panel order.
var Weights = []FontWeight{WeightNormal, WeightBold, WeightLighter, WeightBolder}

// Valid reports whether w is one of Weights.
func (w FontWeight) Valid() bool {
	switch w {
	case WeightNormal, WeightBold, WeightLighter, WeightBolder:
		return true
	}
	return false
}

// Heavy reports whether the weight renders as a bold face.
func (w FontWeight) Heavy() bool {
	return w == WeightBold || w == WeightBolder
}

// Fonts is the allow-list of font families a layer may use.
var Fonts = []string{
	"Arial", "Helvetica", "Times New Roman", "Courier New", "Verdana",
	"Georgia", "Palatino", "Garamond", "Comic Sans MS", "Impact",
	"Trebuchet MS", "Lucida Console", "Tahoma", "Arial Black", "Roboto",
}

// IsAllowedFont reports whether name is in Fonts.
func IsAllowedFont(name string) bool {
	for _, f := range Fonts {
		if f == name {
			return true
		}
	}
	return false
}

// Attribute domains.
const (
	MinFontSize    = 12
	MaxFontSize    = 120
	MinRotation    = -180
	MaxRotation    = 180
	MinStrokeWidth = 1
	MaxStrokeWidth = 10

	DefaultFont        = "Arial"
	DefaultColor       = "#FFFFFF"
	DefaultStrokeColor = "#000000"

	// Placeholder is drawn on the canvas in place of empty text.
	Placeholder = "Enter text..."
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// IsHexColor reports whether s is a #rgb, #rgba, #rrggbb or #rrggbbaa color.
func IsHexColor(s string) bool {
	return hexColor.MatchString(s)
}

// TextLayer is one placed text element.
type TextLayer struct {
	ID          ID
	Text        string
	X           float64
	Y           float64
	FontSize    float64
	FontFamily  string
	Color       string
	Opacity     float64
	Rotation    float64
	FontWeight  FontWeight
	TextShadow  bool
	Stroke      bool
	StrokeColor string
	StrokeWidth float64

	// Transient interaction state, never exported.
	Dragging   bool
	DragOffset Point

	// Extra holds document fields this model does not know about. They are
	// carried through import and export untouched.
	Extra map[string]json.RawMessage
}

// Default returns a new layer with the stock style.
func Default(id ID) TextLayer {
	return TextLayer{
		ID:          id,
		Text:        "New Text",
		X:           100,
		Y:           100,
		FontSize:    32,
		FontFamily:  DefaultFont,
		Color:       DefaultColor,
		Opacity:     1,
		Rotation:    0,
		FontWeight:  WeightNormal,
		TextShadow:  true,
		Stroke:      false,
		StrokeColor: DefaultStrokeColor,
		StrokeWidth: 2,
	}
}

// Position returns the layer origin.
func (l TextLayer) Position() Point {
	return Point{X: l.X, Y: l.Y}
}

// DisplayText is the string drawn on the canvas.
func (l TextLayer) DisplayText() string {
	if l.Text == "" {
		return Placeholder
	}
	return l.Text
}

// Clone returns a copy that shares no mutable state with l.
func (l TextLayer) Clone() TextLayer {
	if l.Extra != nil {
		extra := make(map[string]json.RawMessage, len(l.Extra))
		for k, v := range l.Extra {
			extra[k] = append(json.RawMessage(nil), v...)
		}
		l.Extra = extra
	}
	return l
}

// Persisted returns a copy with the transient fields cleared.
func (l TextLayer) Persisted() TextLayer {
	c := l.Clone()
	c.ResetTransient()
	return c
}

// ResetTransient clears the drag state.
func (l *TextLayer) ResetTransient() {
	l.Dragging = false
	l.DragOffset = Point{}
}

// Normalize forces every attribute into its domain. Values already inside
// their domain are left as they are.
func (l *TextLayer) Normalize() {
	l.X = nonNegative(l.X)
	l.Y = nonNegative(l.Y)
	l.FontSize = clamp(l.FontSize, MinFontSize, MaxFontSize)
	l.Opacity = clamp(l.Opacity, 0, 1)
	l.Rotation = clamp(l.Rotation, MinRotation, MaxRotation)
	l.StrokeWidth = clamp(l.StrokeWidth, MinStrokeWidth, MaxStrokeWidth)
	if !IsAllowedFont(l.FontFamily) {
		l.FontFamily = DefaultFont
	}
	if !l.FontWeight.Valid() {
		l.FontWeight = WeightNormal
	}
	if !IsHexColor(l.Color) {
		l.Color = DefaultColor
	}
	if !IsHexColor(l.StrokeColor) {
		l.StrokeColor = DefaultStrokeColor
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
