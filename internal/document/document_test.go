package document

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"OverlayEditor/internal/layer"
)

var exportTime = time.Date(2026, 10, 17, 9, 30, 0, 123_000_000, time.UTC)

func sampleLayers() []layer.TextLayer {
	a := layer.Default(1700000000001)
	a.Text = "Neon Arena"
	a.X, a.Y = 50, 50
	a.FontSize = 48
	a.Color = "#00CED1"
	a.FontWeight = layer.WeightBold
	a.Dragging = true
	a.DragOffset = layer.Point{X: 7, Y: 8}

	b := layer.Default(1700000000002)
	b.Text = ""
	b.X, b.Y = 50, 120
	b.FontSize = 24
	b.Opacity = 0.8
	b.Rotation = -30
	b.Stroke = true
	b.StrokeWidth = 4
	b.FontFamily = "Courier New"
	b.Extra = map[string]json.RawMessage{"zIndex": json.RawMessage(`3`)}
	return []layer.TextLayer{a, b}
}

func TestExportShape(t *testing.T) {
	data, err := Export(sampleLayers(), exportTime, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	s := string(data)
	if strings.Contains(s, "isDragging") || strings.Contains(s, "dragOffset") {
		t.Fatalf("export contains transient fields:\n%s", s)
	}
	if !strings.Contains(s, `"exportedAt": "2026-10-17T09:30:00.123Z"`) {
		t.Fatalf("unexpected timestamp:\n%s", s)
	}
	if !strings.Contains(s, `"author": "overlay-editor"`) {
		t.Fatalf("missing author tag:\n%s", s)
	}
	if !strings.HasPrefix(s, "{\n  \"layers\": [") {
		t.Fatalf("export not indented with two spaces:\n%s", s)
	}
}

func TestExportEmptyCollection(t *testing.T) {
	data, err := Export(nil, exportTime, "me")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(string(data), `"layers": []`) {
		t.Fatalf("empty collection should export as []:\n%s", data)
	}
}

func TestRoundTripPreservesPersistedFields(t *testing.T) {
	in := sampleLayers()
	data, err := Export(in, exportTime, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	out, err := Import(data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d layers, want %d", len(out), len(in))
	}
	for i := range in {
		want := in[i].Persisted()
		if !reflect.DeepEqual(out[i], want) {
			t.Errorf("layer %d:\n got %+v\nwant %+v", i, out[i], want)
		}
		if out[i].Dragging || out[i].DragOffset != (layer.Point{}) {
			t.Errorf("layer %d transient state not reset", i)
		}
	}
}

func TestImportResetsTransientFields(t *testing.T) {
	data := []byte(`{"layers":[{"id":9,"text":"a","isDragging":true,"dragOffset":{"x":4,"y":5}}]}`)
	out, err := Import(data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if out[0].Dragging || out[0].DragOffset != (layer.Point{}) {
		t.Fatalf("transient fields survived import: %+v", out[0])
	}
	if _, ok := out[0].Extra["isDragging"]; ok {
		t.Fatalf("isDragging kept as unknown field")
	}
}

func TestImportPassesUnknownFieldsThrough(t *testing.T) {
	data := []byte(`{"layers":[{"id":9,"text":"a","blend":"screen","shadow":{"blur":4}}],"version":2}`)
	out, err := Import(data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if string(out[0].Extra["blend"]) != `"screen"` || string(out[0].Extra["shadow"]) != `{"blur":4}` {
		t.Fatalf("unknown fields lost: %v", out[0].Extra)
	}
	again, err := Export(out, exportTime, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(string(again), `"blend": "screen"`) {
		t.Fatalf("unknown field not re-exported:\n%s", again)
	}
}

func TestImportFillsDefaults(t *testing.T) {
	out, err := Import([]byte(`{"layers":[{"text":"only text"}]}`))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	l := out[0]
	if l.ID != layer.None {
		t.Fatalf("missing id should stay unset for the store, got %d", l.ID)
	}
	if l.FontSize != 32 || l.FontFamily != "Arial" || l.Opacity != 1 {
		t.Fatalf("defaults not applied: %+v", l)
	}
}

func TestImportErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want error
	}{
		{"not json", `{layers: oops`, ErrMalformed},
		{"empty input", ``, ErrMalformed},
		{"top level array", `[{"id":1}]`, ErrMalformed},
		{"top level null", `null`, ErrMalformed},
		{"no layers", `{"exportedAt":"x","author":"y"}`, ErrMissingLayers},
		{"null layers", `{"layers":null}`, ErrMissingLayers},
		{"layers not a list", `{"layers":{"id":1}}`, ErrMalformed},
		{"null entry", `{"layers":[null]}`, ErrMalformed},
		{"bad field type", `{"layers":[{"fontSize":"huge"}]}`, ErrMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Import([]byte(tc.in))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if !errors.Is(err, ErrImportFailed) {
				t.Fatalf("err %v does not match ErrImportFailed", err)
			}
		})
	}
}

func TestDecodeReadsMetadata(t *testing.T) {
	doc, err := Decode([]byte(`{"layers":[],"exportedAt":"2025-01-01T00:00:00.000Z","author":"someone"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.ExportedAt != "2025-01-01T00:00:00.000Z" || doc.Author != "someone" || len(doc.Layers) != 0 {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestDecodeToleratesBadMetadata(t *testing.T) {
	doc, err := Decode([]byte(`{"layers":[{"id":3}],"exportedAt":1700000000000,"author":{"name":"x"}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.ExportedAt != "" || doc.Author != "" {
		t.Fatalf("wrongly typed metadata kept: %+v", doc)
	}
	if len(doc.Layers) != 1 || doc.Layers[0].ID != 3 {
		t.Fatalf("layers lost: %+v", doc.Layers)
	}
}
