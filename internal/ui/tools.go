package ui

import (
	"image/color"

	"OverlayEditor/internal/layer"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// paletteColors are the quick-pick swatches under each color field.
var paletteColors = []string{
	"#FFFFFF", "#000000", "#FF0000", "#00FF00", "#0000FF",
	"#FFFF00", "#FF00FF", "#00FFFF", "#FFA500", "#808080",
}

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func(color.Color)
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(20, 20))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// newPalette lays out the swatches and reports the picked color as hex.
func newPalette(picked func(hex string)) fyne.CanvasObject {
	onTapped := func(c color.Color) { picked(layer.Hex(c)) }
	swatches := make([]fyne.CanvasObject, 0, len(paletteColors))
	for _, hex := range paletteColors {
		c, _ := layer.ParseHex(hex)
		swatches = append(swatches, newColorSwatch(c, onTapped))
	}
	return container.New(layout.NewGridWrapLayout(fyne.NewSize(20, 20)), swatches...)
}

// actions are the toolbar callbacks.
type actions struct {
	Add          func()
	BringForward func()
	SendBackward func()
	Import       func()
	Export       func()
	Apply        func()
	Preview      func()
	Close        func()
}

// --- The Main Toolbar ---
func newToolbar(a actions) fyne.CanvasObject {
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentAddIcon(), a.Add),
		widget.NewToolbarAction(theme.MoveUpIcon(), a.BringForward),
		widget.NewToolbarAction(theme.MoveDownIcon(), a.SendBackward),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.FolderOpenIcon(), a.Import),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), a.Export),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.VisibilityIcon(), a.Preview),
	)

	return container.NewHBox(
		widget.NewLabelWithStyle("Text Overlay Editor", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		tb,
		layout.NewSpacer(),
		widget.NewButtonWithIcon("Save & Apply", theme.ConfirmIcon(), a.Apply),
		widget.NewButtonWithIcon("Close", theme.CancelIcon(), a.Close),
	)
}
