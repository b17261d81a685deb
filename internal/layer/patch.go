package layer

// Patch is a partial set of layer attributes. Nil fields are left alone.
type Patch struct {
	Text        *string     `json:"text,omitempty"`
	X           *float64    `json:"x,omitempty"`
	Y           *float64    `json:"y,omitempty"`
	FontSize    *float64    `json:"fontSize,omitempty"`
	FontFamily  *string     `json:"fontFamily,omitempty"`
	Color       *string     `json:"color,omitempty"`
	Opacity     *float64    `json:"opacity,omitempty"`
	Rotation    *float64    `json:"rotation,omitempty"`
	FontWeight  *FontWeight `json:"fontWeight,omitempty"`
	TextShadow  *bool       `json:"textShadow,omitempty"`
	Stroke      *bool       `json:"stroke,omitempty"`
	StrokeColor *string     `json:"strokeColor,omitempty"`
	StrokeWidth *float64    `json:"strokeWidth,omitempty"`
}

// Ptr returns a pointer to v, for building patches inline.
func Ptr[T any](v T) *T {
	return &v
}

// MoveTo is the patch that repositions a layer.
func MoveTo(p Point) Patch {
	return Patch{X: Ptr(p.X), Y: Ptr(p.Y)}
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// Apply merges p into l and normalizes the result. Colors that are not hex
// strings are ignored so a half-typed value does not wipe the current one.
func (l *TextLayer) Apply(p Patch) {
	if p.Text != nil {
		l.Text = *p.Text
	}
	if p.X != nil {
		l.X = *p.X
	}
	if p.Y != nil {
		l.Y = *p.Y
	}
	if p.FontSize != nil {
		l.FontSize = *p.FontSize
	}
	if p.FontFamily != nil && IsAllowedFont(*p.FontFamily) {
		l.FontFamily = *p.FontFamily
	}
	if p.Color != nil && IsHexColor(*p.Color) {
		l.Color = *p.Color
	}
	if p.Opacity != nil {
		l.Opacity = *p.Opacity
	}
	if p.Rotation != nil {
		l.Rotation = *p.Rotation
	}
	if p.FontWeight != nil && p.FontWeight.Valid() {
		l.FontWeight = *p.FontWeight
	}
	if p.TextShadow != nil {
		l.TextShadow = *p.TextShadow
	}
	if p.Stroke != nil {
		l.Stroke = *p.Stroke
	}
	if p.StrokeColor != nil && IsHexColor(*p.StrokeColor) {
		l.StrokeColor = *p.StrokeColor
	}
	if p.StrokeWidth != nil {
		l.StrokeWidth = *p.StrokeWidth
	}
	l.Normalize()
}
