package layer

import (
	"encoding/json"
	"image/color"
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeClampsIntoDomain(t *testing.T) {
	l := Default(1)
	l.X, l.Y = -5, -1
	l.FontSize = 300
	l.Opacity = 1.5
	l.Rotation = -720
	l.StrokeWidth = 0
	l.FontFamily = "Wingdings"
	l.FontWeight = "heavy"
	l.Color = "red"
	l.StrokeColor = "#12"
	l.Normalize()

	if l.X != 0 || l.Y != 0 {
		t.Fatalf("expected position clamped to origin, got (%v,%v)", l.X, l.Y)
	}
	if l.FontSize != MaxFontSize {
		t.Fatalf("fontSize = %v, want %v", l.FontSize, MaxFontSize)
	}
	if l.Opacity != 1 {
		t.Fatalf("opacity = %v, want 1", l.Opacity)
	}
	if l.Rotation != MinRotation {
		t.Fatalf("rotation = %v, want %v", l.Rotation, MinRotation)
	}
	if l.StrokeWidth != MinStrokeWidth {
		t.Fatalf("strokeWidth = %v, want %v", l.StrokeWidth, MinStrokeWidth)
	}
	if l.FontFamily != DefaultFont || l.FontWeight != WeightNormal {
		t.Fatalf("unexpected font %q/%q", l.FontFamily, l.FontWeight)
	}
	if l.Color != DefaultColor || l.StrokeColor != DefaultStrokeColor {
		t.Fatalf("unexpected colors %q/%q", l.Color, l.StrokeColor)
	}
}

func TestNormalizeKeepsValidLayer(t *testing.T) {
	l := Default(7)
	l.FontFamily = "Impact"
	l.FontWeight = WeightBolder
	l.Rotation = 45
	l.Opacity = 0.25
	want := l
	l.Normalize()
	if !reflect.DeepEqual(l, want) {
		t.Fatalf("normalize changed a valid layer:\n got %+v\nwant %+v", l, want)
	}
}

func TestApplyPatch(t *testing.T) {
	l := Default(1)
	l.Apply(Patch{
		FontSize:   Ptr(64.0),
		Color:      Ptr("#00CED1"),
		FontFamily: Ptr("Georgia"),
		Stroke:     Ptr(true),
	})
	if l.FontSize != 64 || l.Color != "#00CED1" || l.FontFamily != "Georgia" || !l.Stroke {
		t.Fatalf("patch not applied: %+v", l)
	}
	if l.Text != "New Text" || l.X != 100 {
		t.Fatalf("untouched fields changed: %+v", l)
	}
}

func TestApplyIgnoresInvalidEnumerations(t *testing.T) {
	l := Default(1)
	l.Apply(Patch{
		Color:      Ptr("#00C"),
		FontFamily: Ptr("Papyrus"),
		FontWeight: Ptr(FontWeight("black")),
	})
	l.Apply(Patch{Color: Ptr("#00")})
	if l.Color != "#00C" {
		t.Fatalf("color = %q, want #00C", l.Color)
	}
	if l.FontFamily != DefaultFont || l.FontWeight != WeightNormal {
		t.Fatalf("invalid enumerations were applied: %q %q", l.FontFamily, l.FontWeight)
	}
}

func TestMarshalOmitsTransientFields(t *testing.T) {
	l := Default(42)
	l.Dragging = true
	l.DragOffset = Point{X: 3, Y: 4}

	data, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	if strings.Contains(s, "isDragging") || strings.Contains(s, "dragOffset") {
		t.Fatalf("persisted form leaked transient fields: %s", s)
	}
	if !strings.HasPrefix(s, `{"id":42,"text":"New Text"`) {
		t.Fatalf("unexpected field order: %s", s)
	}

	live, err := l.MarshalLive()
	if err != nil {
		t.Fatalf("marshal live: %v", err)
	}
	if !strings.Contains(string(live), `"isDragging":true`) || !strings.Contains(string(live), `"dragOffset":{"x":3,"y":4}`) {
		t.Fatalf("live form missing transient fields: %s", live)
	}
}

func TestUnmarshalKeepsUnknownFields(t *testing.T) {
	input := `{"id":5,"text":"hi","zIndex":3,"meta":{"tag":"a"},"isDragging":true,"dragOffset":{"x":9,"y":9}}`
	l := Default(None)
	if err := json.Unmarshal([]byte(input), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if l.ID != 5 || l.Text != "hi" {
		t.Fatalf("known fields not decoded: %+v", l)
	}
	if l.FontSize != 32 {
		t.Fatalf("absent field should keep default, got fontSize %v", l.FontSize)
	}
	if l.Dragging || l.DragOffset != (Point{}) {
		t.Fatalf("transient fields must not be decoded: %+v", l)
	}
	if len(l.Extra) != 2 || string(l.Extra["zIndex"]) != "3" {
		t.Fatalf("unknown fields not kept: %v", l.Extra)
	}

	out, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.HasSuffix(string(out), `"meta":{"tag":"a"},"zIndex":3}`) {
		t.Fatalf("unknown fields not re-emitted in order: %s", out)
	}
}

func TestUnmarshalRejectsWrongTypes(t *testing.T) {
	cases := []string{
		`{"fontSize":"big"}`,
		`{"id":"abc"}`,
		`[1,2]`,
		`null`,
	}
	for _, in := range cases {
		l := Default(None)
		if err := json.Unmarshal([]byte(in), &l); err == nil {
			t.Errorf("expected error for %s", in)
		}
	}
}

func TestUnmarshalFractionalID(t *testing.T) {
	l := Default(None)
	if err := json.Unmarshal([]byte(`{"id":1700000000000.0}`), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if l.ID != 1700000000000 {
		t.Fatalf("id = %d", l.ID)
	}
}

func TestUnmarshalOutOfRangeID(t *testing.T) {
	for _, in := range []string{`{"id":1e20}`, `{"id":-5.5}`, `{"id":1e16}`} {
		l := Default(7)
		if err := json.Unmarshal([]byte(in), &l); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if l.ID != None {
			t.Errorf("%s: id = %d, want unset", in, l.ID)
		}
	}
}

func TestIDValid(t *testing.T) {
	cases := map[ID]bool{None: false, -1: false, 1: true, MaxID: true, MaxID + 1: false, math.MaxInt64: false}
	for id, want := range cases {
		if got := id.Valid(); got != want {
			t.Errorf("ID(%d).Valid() = %v, want %v", id, got, want)
		}
	}
}

func TestCloneDetachesExtra(t *testing.T) {
	l := Default(1)
	l.Extra = map[string]json.RawMessage{"k": json.RawMessage(`1`)}
	c := l.Clone()
	c.Extra["k"][0] = '2'
	c.Extra["n"] = json.RawMessage(`0`)
	if string(l.Extra["k"]) != "1" || len(l.Extra) != 1 {
		t.Fatalf("clone shares extra with original: %v", l.Extra)
	}
}

func TestParseHex(t *testing.T) {
	cases := []struct {
		in   string
		want color.NRGBA
	}{
		{"#FFFFFF", color.NRGBA{255, 255, 255, 255}},
		{"#00ced1", color.NRGBA{0, 206, 209, 255}},
		{"#f00", color.NRGBA{255, 0, 0, 255}},
		{"#f008", color.NRGBA{255, 0, 0, 0x88}},
		{"#11223344", color.NRGBA{0x11, 0x22, 0x33, 0x44}},
	}
	for _, tc := range cases {
		got, err := ParseHex(tc.in)
		if err != nil {
			t.Fatalf("ParseHex(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if _, err := ParseHex("white"); err == nil {
		t.Fatalf("expected error for named color")
	}
	if got := Hex(color.NRGBA{0, 206, 209, 255}); got != "#00CED1" {
		t.Fatalf("Hex = %q", got)
	}
}

func TestDisplayTextPlaceholder(t *testing.T) {
	l := Default(1)
	l.Text = ""
	if l.DisplayText() != Placeholder {
		t.Fatalf("empty text should render placeholder, got %q", l.DisplayText())
	}
}
