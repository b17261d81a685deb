package ui

import (
	"fmt"
	"log"

	"OverlayEditor/internal/editor"
	"OverlayEditor/internal/layer"
	"OverlayEditor/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// RunApp opens the session in a desktop window and blocks until the window
// is closed.
func RunApp(title string, s *editor.Session) {
	myApp := app.New()
	myWindow := myApp.NewWindow(title)
	myWindow.Resize(fyne.NewSize(1280, 800))

	store := s.Store()
	surface := NewSurface(s)
	s.AttachGeometry(surface)
	s.Open()

	side := newPanel(store)
	sideBox := container.NewGridWrap(fyne.NewSize(340, 760), side.Root)
	statusBar := widget.NewLabel("Ready")
	setStatus := func(text string) { statusBar.SetText(text) }

	refresh := func(snap state.Snapshot) {
		surface.Refresh()
		side.update(snap)
		if s.Preview() {
			sideBox.Hide()
		} else {
			sideBox.Show()
		}
	}
	cancel := store.Watch(func(snap state.Snapshot) {
		fyne.Do(func() { refresh(snap) })
	})

	closeEditor := func() {
		cancel()
		s.AttachGeometry(nil)
		s.Close()
		myWindow.Close()
	}

	toolbar := newToolbar(actions{
		Add: func() { store.Add() },
		BringForward: func() {
			if id := store.Selected(); id != layer.None {
				store.BringForward(id)
			}
		},
		SendBackward: func() {
			if id := store.Selected(); id != layer.None {
				store.SendBackward(id)
			}
		},
		Import: func() { showImport(myWindow, s, setStatus) },
		Export: func() { showExport(myWindow, s, setStatus) },
		Apply: func() {
			s.Save()
			setStatus(fmt.Sprintf("Applied %d layers", store.Len()))
		},
		Preview: func() {
			s.SetPreview(!s.Preview())
			refresh(store.Snapshot())
		},
		Close: closeEditor,
	})

	content := container.NewBorder(toolbar, statusBar, nil, sideBox, surface)
	myWindow.SetContent(content)
	myWindow.SetCloseIntercept(closeEditor)
	log.Println("[UI] Window ready")
	myWindow.ShowAndRun()
}
