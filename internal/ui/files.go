package ui

import (
	"errors"
	"fmt"
	"log"

	"OverlayEditor/internal/document"
	"OverlayEditor/internal/editor"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

var jsonFilter = storage.NewExtensionFileFilter([]string{".json"})

// showExport asks for a destination and writes the design document there.
func showExport(win fyne.Window, s *editor.Session, status func(string)) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		if writer == nil {
			return
		}
		defer func() {
			if err := writer.Close(); err != nil {
				log.Printf("[UI] Error closing writer: %v", err)
			}
		}()

		if err := s.Export(writer); err != nil {
			log.Printf("[UI] Export to %s failed: %v", writer.URI(), err)
			dialog.ShowError(fmt.Errorf("could not export design: %w", err), win)
			return
		}
		status(fmt.Sprintf("Exported %d layers to %s", s.Store().Len(), writer.URI().Name()))
	}, win)
	d.SetFileName(document.FileName)
	d.SetFilter(jsonFilter)
	d.Show()
}

// showImport asks for a design file and replaces the layers with it. A
// rejected file leaves the layers alone and blocks on an error dialog.
func showImport(win fyne.Window, s *editor.Session, status func(string)) {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		if reader == nil {
			return
		}
		defer func() {
			if err := reader.Close(); err != nil {
				log.Printf("[UI] Error closing reader: %v", err)
			}
		}()

		if err := s.Import(reader); err != nil {
			log.Printf("[UI] Import of %s failed: %v", reader.URI(), err)
			dialog.ShowError(errors.New(document.ImportFailedMessage), win)
			return
		}
		status(fmt.Sprintf("Imported %d layers", s.Store().Len()))
	}, win)
	d.SetFilter(jsonFilter)
	d.Show()
}
