package ui

import (
	"fmt"
	"strings"

	"OverlayEditor/internal/layer"
	"OverlayEditor/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// emptyLabel names a layer with no text in the layer list.
const emptyLabel = "Empty"

func listLabel(l layer.TextLayer) string {
	text := strings.TrimSpace(strings.ReplaceAll(l.Text, "\n", " "))
	if text == "" {
		return emptyLabel
	}
	if r := []rune(text); len(r) > 24 {
		return string(r[:24]) + "…"
	}
	return text
}

// panel is the side panel: the layer list above the property editor for
// the selected layer.
type panel struct {
	store *state.Store

	layers  []layer.TextLayer
	current layer.ID
	// syncing is set while widgets are filled from the store so their
	// change callbacks do not write the same values back.
	syncing bool

	list *widget.List
	hint *widget.Label
	form *fyne.Container
	Root fyne.CanvasObject

	text        *widget.Entry
	font        *widget.Select
	size        *widget.Slider
	sizeLabel   *widget.Label
	weight      *widget.Select
	color       *widget.Entry
	opacity     *widget.Slider
	rotation    *widget.Slider
	rotateLabel *widget.Label
	shadow      *widget.Check
	stroke      *widget.Check
	strokeColor *widget.Entry
	strokeWidth *widget.Slider
}

func newPanel(store *state.Store) *panel {
	p := &panel{store: store}

	p.list = widget.NewList(
		func() int { return len(p.layers) },
		func() fyne.CanvasObject {
			return container.NewBorder(nil, nil, nil,
				container.NewHBox(
					widget.NewButtonWithIcon("", theme.ContentCopyIcon(), nil),
					widget.NewButtonWithIcon("", theme.DeleteIcon(), nil),
				),
				widget.NewLabel(""))
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i >= len(p.layers) {
				return
			}
			l := p.layers[i]
			row := o.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(listLabel(l))
			buttons := row.Objects[1].(*fyne.Container)
			buttons.Objects[0].(*widget.Button).OnTapped = func() { p.store.Duplicate(l.ID) }
			buttons.Objects[1].(*widget.Button).OnTapped = func() { p.store.Delete(l.ID) }
		},
	)
	p.list.OnSelected = func(i widget.ListItemID) {
		if p.syncing || i >= len(p.layers) {
			return
		}
		p.store.Select(p.layers[i].ID)
	}

	p.buildForm()
	p.hint = widget.NewLabel("Select a layer to edit its properties")
	p.hint.Wrapping = fyne.TextWrapWord

	header := container.NewBorder(nil, nil, widget.NewLabelWithStyle("Layers", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), nil)
	props := container.NewVScroll(container.NewVBox(p.hint, p.form))
	split := container.NewVSplit(container.NewBorder(header, nil, nil, nil, p.list), props)
	split.Offset = 0.3
	p.Root = split
	p.update(store.Snapshot())
	return p
}

func (p *panel) buildForm() {
	p.text = widget.NewMultiLineEntry()
	p.text.SetPlaceHolder(layer.Placeholder)
	p.text.OnChanged = func(s string) { p.apply(layer.Patch{Text: &s}) }

	p.font = widget.NewSelect(layer.Fonts, func(s string) { p.apply(layer.Patch{FontFamily: &s}) })

	p.sizeLabel = widget.NewLabel("")
	p.size = widget.NewSlider(layer.MinFontSize, layer.MaxFontSize)
	p.size.OnChanged = func(v float64) {
		p.sizeLabel.SetText(fmt.Sprintf("%.0fpx", v))
		p.apply(layer.Patch{FontSize: &v})
	}

	weights := make([]string, len(layer.Weights))
	for i, w := range layer.Weights {
		weights[i] = string(w)
	}
	p.weight = widget.NewSelect(weights, func(s string) {
		w := layer.FontWeight(s)
		p.apply(layer.Patch{FontWeight: &w})
	})

	p.color = widget.NewEntry()
	p.color.OnChanged = func(s string) {
		if layer.IsHexColor(s) {
			p.apply(layer.Patch{Color: &s})
		}
	}

	p.opacity = widget.NewSlider(0, 1)
	p.opacity.Step = 0.01
	p.opacity.OnChanged = func(v float64) { p.apply(layer.Patch{Opacity: &v}) }

	p.rotateLabel = widget.NewLabel("")
	p.rotation = widget.NewSlider(layer.MinRotation, layer.MaxRotation)
	p.rotation.OnChanged = func(v float64) {
		p.rotateLabel.SetText(fmt.Sprintf("%.0f°", v))
		p.apply(layer.Patch{Rotation: &v})
	}

	p.shadow = widget.NewCheck("Text shadow", func(b bool) { p.apply(layer.Patch{TextShadow: &b}) })
	p.stroke = widget.NewCheck("Stroke", func(b bool) { p.apply(layer.Patch{Stroke: &b}) })

	p.strokeColor = widget.NewEntry()
	p.strokeColor.OnChanged = func(s string) {
		if layer.IsHexColor(s) {
			p.apply(layer.Patch{StrokeColor: &s})
		}
	}

	p.strokeWidth = widget.NewSlider(layer.MinStrokeWidth, layer.MaxStrokeWidth)
	p.strokeWidth.OnChanged = func(v float64) { p.apply(layer.Patch{StrokeWidth: &v}) }

	pick := func(entry *widget.Entry) fyne.CanvasObject {
		return newPalette(func(hex string) { entry.SetText(hex) })
	}

	p.form = container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Text", p.text),
			widget.NewFormItem("Font", p.font),
			widget.NewFormItem("Size", container.NewBorder(nil, nil, nil, p.sizeLabel, p.size)),
			widget.NewFormItem("Weight", p.weight),
			widget.NewFormItem("Color", container.NewVBox(p.color, pick(p.color))),
			widget.NewFormItem("Opacity", p.opacity),
			widget.NewFormItem("Rotation", container.NewBorder(nil, nil, nil, p.rotateLabel, p.rotation)),
		),
		p.shadow,
		p.stroke,
		widget.NewForm(
			widget.NewFormItem("Stroke color", container.NewVBox(p.strokeColor, pick(p.strokeColor))),
			widget.NewFormItem("Stroke width", p.strokeWidth),
		),
	)
}

func (p *panel) apply(patch layer.Patch) {
	if p.syncing || p.current == layer.None {
		return
	}
	p.store.Update(p.current, patch)
}

// update refreshes the list and the property editor from a store snapshot.
// It must run on the UI goroutine.
func (p *panel) update(snap state.Snapshot) {
	p.syncing = true
	defer func() { p.syncing = false }()

	p.layers = snap.Layers
	p.list.Refresh()

	sel, ok := snap.SelectedLayer()
	if !ok {
		p.current = layer.None
		p.list.UnselectAll()
		p.hint.Show()
		p.form.Hide()
		return
	}
	p.current = sel.ID
	for i, l := range p.layers {
		if l.ID == sel.ID {
			p.list.Select(i)
			break
		}
	}
	p.hint.Hide()
	p.form.Show()

	// Entries are only rewritten on a real change so the caret is not
	// reset while the user types.
	if p.text.Text != sel.Text {
		p.text.SetText(sel.Text)
	}
	p.font.SetSelected(sel.FontFamily)
	p.size.SetValue(sel.FontSize)
	p.sizeLabel.SetText(fmt.Sprintf("%.0fpx", sel.FontSize))
	p.weight.SetSelected(string(sel.FontWeight))
	if !strings.EqualFold(p.color.Text, sel.Color) {
		p.color.SetText(sel.Color)
	}
	p.opacity.SetValue(sel.Opacity)
	p.rotation.SetValue(sel.Rotation)
	p.rotateLabel.SetText(fmt.Sprintf("%.0f°", sel.Rotation))
	p.shadow.SetChecked(sel.TextShadow)
	p.stroke.SetChecked(sel.Stroke)
	if !strings.EqualFold(p.strokeColor.Text, sel.StrokeColor) {
		p.strokeColor.SetText(sel.StrokeColor)
	}
	p.strokeWidth.SetValue(sel.StrokeWidth)
	if sel.Stroke {
		p.strokeColor.Enable()
		p.strokeWidth.Enable()
	} else {
		p.strokeColor.Disable()
		p.strokeWidth.Disable()
	}
}
