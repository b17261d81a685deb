package layer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// record is the wire shape of a layer. The transient pair is only filled in
// for live snapshots.
type record struct {
	ID          ID         `json:"id"`
	Text        string     `json:"text"`
	X           float64    `json:"x"`
	Y           float64    `json:"y"`
	FontSize    float64    `json:"fontSize"`
	FontFamily  string     `json:"fontFamily"`
	Color       string     `json:"color"`
	Opacity     float64    `json:"opacity"`
	Rotation    float64    `json:"rotation"`
	FontWeight  FontWeight `json:"fontWeight"`
	TextShadow  bool       `json:"textShadow"`
	Stroke      bool       `json:"stroke"`
	StrokeColor string     `json:"strokeColor"`
	StrokeWidth float64    `json:"strokeWidth"`
	IsDragging  *bool      `json:"isDragging,omitempty"`
	DragOffset  *Point     `json:"dragOffset,omitempty"`
}

// Names of the transient fields. They are dropped when decoding.
const (
	fieldIsDragging = "isDragging"
	fieldDragOffset = "dragOffset"
)

func (l TextLayer) record() record {
	return record{
		ID:          l.ID,
		Text:        l.Text,
		X:           l.X,
		Y:           l.Y,
		FontSize:    l.FontSize,
		FontFamily:  l.FontFamily,
		Color:       l.Color,
		Opacity:     l.Opacity,
		Rotation:    l.Rotation,
		FontWeight:  l.FontWeight,
		TextShadow:  l.TextShadow,
		Stroke:      l.Stroke,
		StrokeColor: l.StrokeColor,
		StrokeWidth: l.StrokeWidth,
	}
}

// MarshalJSON encodes the persisted form: known fields first in a fixed
// order, then unknown fields sorted by name.
func (l TextLayer) MarshalJSON() ([]byte, error) {
	return l.encode(l.record())
}

// MarshalLive encodes the layer including isDragging and dragOffset, for
// surfaces that render drag feedback.
func (l TextLayer) MarshalLive() ([]byte, error) {
	r := l.record()
	dragging, offset := l.Dragging, l.DragOffset
	r.IsDragging = &dragging
	r.DragOffset = &offset
	return l.encode(r)
}

func (l TextLayer) encode(r record) ([]byte, error) {
	out, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	if len(l.Extra) == 0 {
		return out, nil
	}

	keys := make([]string, 0, len(l.Extra))
	for k := range l.Extra {
		if knownField(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(out[:len(out)-1])
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		if err := json.Compact(&buf, l.Extra[k]); err != nil {
			return nil, fmt.Errorf("extra field %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON overlays the fields present in data onto l. Absent fields
// keep their current values, so decoding into Default(None) fills gaps with
// the stock style. isDragging and dragOffset are discarded; every other
// unrecognized field lands in Extra.
func (l *TextLayer) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("layer: expected an object, got %s", bytes.TrimSpace(data))
	}

	for name, raw := range fields {
		var err error
		switch name {
		case "id":
			err = decodeID(raw, &l.ID)
		case "text":
			err = json.Unmarshal(raw, &l.Text)
		case "x":
			err = json.Unmarshal(raw, &l.X)
		case "y":
			err = json.Unmarshal(raw, &l.Y)
		case "fontSize":
			err = json.Unmarshal(raw, &l.FontSize)
		case "fontFamily":
			err = json.Unmarshal(raw, &l.FontFamily)
		case "color":
			err = json.Unmarshal(raw, &l.Color)
		case "opacity":
			err = json.Unmarshal(raw, &l.Opacity)
		case "rotation":
			err = json.Unmarshal(raw, &l.Rotation)
		case "fontWeight":
			err = json.Unmarshal(raw, &l.FontWeight)
		case "textShadow":
			err = json.Unmarshal(raw, &l.TextShadow)
		case "stroke":
			err = json.Unmarshal(raw, &l.Stroke)
		case "strokeColor":
			err = json.Unmarshal(raw, &l.StrokeColor)
		case "strokeWidth":
			err = json.Unmarshal(raw, &l.StrokeWidth)
		case fieldIsDragging, fieldDragOffset:
		default:
			if l.Extra == nil {
				l.Extra = make(map[string]json.RawMessage)
			}
			l.Extra[name] = append(json.RawMessage(nil), raw...)
		}
		if err != nil {
			return fmt.Errorf("layer field %q: %w", name, err)
		}
	}
	return nil
}

// decodeID accepts integral JSON numbers. Fractional ids are truncated;
// null and out-of-range numbers leave the id unset.
func decodeID(raw json.RawMessage, id *ID) error {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		*id = None
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return err
	}
	if v, err := n.Int64(); err == nil {
		*id = ID(v)
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return err
	}
	if math.IsNaN(f) || f < 0 || f > float64(MaxID) {
		*id = None
		return nil
	}
	*id = ID(int64(f))
	return nil
}

func knownField(name string) bool {
	switch name {
	case "id", "text", "x", "y", "fontSize", "fontFamily", "color", "opacity",
		"rotation", "fontWeight", "textShadow", "stroke", "strokeColor", "strokeWidth",
		fieldIsDragging, fieldDragOffset:
		return true
	}
	return false
}
