package export

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"OverlayEditor/internal/layer"

	"github.com/jung-kurt/gofpdf"
)

// Compositor flattens a layer list onto a single PDF page sized like the
// editor's container, one point per pixel.
type Compositor struct {
	Dir    string
	Width  float64
	Height float64
	// Background fills the page when set; otherwise the page stays blank.
	Background string
}

// NewCompositor returns a compositor writing into dir.
func NewCompositor(dir string, width, height float64) *Compositor {
	return &Compositor{Dir: dir, Width: width, Height: height}
}

// shadow mirrors the fixed on-screen shadow: 2px down and right, half alpha.
const (
	shadowOffset = 2
	shadowAlpha  = 0.5
	// ascent approximates the baseline drop from the layer's top edge.
	ascent = 0.8
)

// Composite renders layers in order, later layers on top.
func (c *Compositor) Composite(layers []layer.TextLayer) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: c.Width, Ht: c.Height},
	})
	pdf.SetCreator("OverlayEditor", true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if c.Background != "" {
		bg, err := layer.ParseHex(c.Background)
		if err != nil {
			return nil, err
		}
		pdf.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
		pdf.Rect(0, 0, c.Width, c.Height, "F")
	}

	for _, l := range layers {
		drawLayer(pdf, tr, l)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render composite: %w", err)
	}
	return buf.Bytes(), nil
}

func drawLayer(pdf *gofpdf.Fpdf, tr func(string) string, l layer.TextLayer) {
	if l.Text == "" {
		return
	}
	style := ""
	if l.FontWeight.Heavy() {
		style = "B"
	}
	pdf.SetFont(pdfFamily(l.FontFamily), style, l.FontSize)
	text := tr(l.Text)
	x, y := l.X, l.Y+l.FontSize*ascent

	pdf.TransformBegin()
	// CSS rotates clockwise for positive angles, PDF counter-clockwise.
	pdf.TransformRotate(-l.Rotation, l.X, l.Y)

	if l.TextShadow {
		pdf.SetAlpha(l.Opacity*shadowAlpha, "Normal")
		pdf.SetTextColor(0, 0, 0)
		pdf.Text(x+shadowOffset, y+shadowOffset, text)
	}
	if l.Stroke {
		sc, _ := layer.ParseHex(l.StrokeColor)
		pdf.SetAlpha(l.Opacity*float64(sc.A)/255, "Normal")
		pdf.SetTextColor(int(sc.R), int(sc.G), int(sc.B))
		w := l.StrokeWidth / 2
		for _, d := range [][2]float64{{-w, 0}, {w, 0}, {0, -w}, {0, w}, {-w, -w}, {w, w}, {-w, w}, {w, -w}} {
			pdf.Text(x+d[0], y+d[1], text)
		}
	}

	fc, _ := layer.ParseHex(l.Color)
	pdf.SetAlpha(l.Opacity*float64(fc.A)/255, "Normal")
	pdf.SetTextColor(int(fc.R), int(fc.G), int(fc.B))
	pdf.Text(x, y, text)

	pdf.TransformEnd()
	pdf.SetAlpha(1, "Normal")
}

// pdfFamily maps the editor's font list onto the PDF core fonts.
func pdfFamily(name string) string {
	switch name {
	case "Times New Roman", "Georgia", "Palatino", "Garamond":
		return "Times"
	case "Courier New", "Lucida Console":
		return "Courier"
	default:
		return "Helvetica"
	}
}

// WriteFile composites layers into a timestamped file in Dir.
func (c *Compositor) WriteFile(layers []layer.TextLayer, now time.Time) (string, error) {
	data, err := c.Composite(layers)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(c.Dir, fmt.Sprintf("overlay-%s.pdf", now.UTC().Format("20060102-150405.000")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write composite: %w", err)
	}
	return path, nil
}

// SaveFunc adapts the compositor to the editor's save hand-off. Failures
// are logged; the caller never waits on the result.
func (c *Compositor) SaveFunc(now func() time.Time) func([]layer.TextLayer) {
	if now == nil {
		now = time.Now
	}
	return func(layers []layer.TextLayer) {
		path, err := c.WriteFile(layers, now())
		if err != nil {
			log.Printf("[EXPORT] Composite failed: %v", err)
			return
		}
		log.Printf("[EXPORT] Composited %d layers into %s", len(layers), path)
	}
}
