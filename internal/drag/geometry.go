package drag

import "OverlayEditor/internal/layer"

// Size is the container's current width and height.
type Size struct {
	Width  float64
	Height float64
}

// Geometry reports the live container size. ok is false while the
// container is not mounted.
type Geometry interface {
	Bounds() (size Size, ok bool)
}

// GeometryFunc adapts a function to Geometry.
type GeometryFunc func() (Size, bool)

func (f GeometryFunc) Bounds() (Size, bool) { return f() }

// Rect is an axis-aligned area in container coordinates.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p layer.Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Clamp keeps a box of the given size inside the container. The origin is
// held at zero when the box is larger than the container.
func Clamp(p layer.Point, box Size, container Size) layer.Point {
	return layer.Point{
		X: clampAxis(p.X, container.Width-box.Width),
		Y: clampAxis(p.Y, container.Height-box.Height),
	}
}

func clampAxis(v, limit float64) float64 {
	if v > limit {
		v = limit
	}
	if v < 0 {
		v = 0
	}
	return v
}

// HitTest returns the topmost layer whose box contains p. Boxes come from
// measure; layers are given in paint order.
func HitTest(layers []layer.TextLayer, p layer.Point, measure func(layer.TextLayer) Size) (layer.ID, bool) {
	for i := len(layers) - 1; i >= 0; i-- {
		l := layers[i]
		sz := measure(l)
		if (Rect{X: l.X, Y: l.Y, Width: sz.Width, Height: sz.Height}).Contains(p) {
			return l.ID, true
		}
	}
	return layer.None, false
}
