// Package document converts layer collections to and from the portable
// design file.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"OverlayEditor/internal/layer"
)

const (
	// FileName is the suggested name for exported designs.
	FileName = "text-overlay-design.json"
	// Author tags every exported document.
	Author = "overlay-editor"

	// TimeFormat matches ISO-8601 with millisecond precision in UTC.
	TimeFormat = "2006-01-02T15:04:05.000Z07:00"

	// ImportFailedMessage is what the user sees when an import is rejected.
	ImportFailedMessage = "Failed to import design. Please check the file format."
)

var (
	// ErrImportFailed is matched by every import error.
	ErrImportFailed = errors.New("import failed")
	// ErrMalformed means the bytes were not a well-formed design document.
	ErrMalformed = fmt.Errorf("%w: malformed document", ErrImportFailed)
	// ErrMissingLayers means the document had no layer list.
	ErrMissingLayers = fmt.Errorf("%w: document has no layers field", ErrImportFailed)
)

// Document is the exported design file.
type Document struct {
	Layers     []layer.TextLayer `json:"layers"`
	ExportedAt string            `json:"exportedAt"`
	Author     string            `json:"author"`
}

// Export encodes the persisted fields of layers, stamped with now and
// author. An empty author falls back to Author.
func Export(layers []layer.TextLayer, now time.Time, author string) ([]byte, error) {
	if author == "" {
		author = Author
	}
	doc := Document{
		Layers:     make([]layer.TextLayer, 0, len(layers)),
		ExportedAt: now.UTC().Format(TimeFormat),
		Author:     author,
	}
	for _, l := range layers {
		doc.Layers = append(doc.Layers, l.Persisted())
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode design: %w", err)
	}
	return data, nil
}

// Decode parses a design file. Each layer starts from the stock style, so
// fields missing from an entry take default values, then is normalized and
// has its transient fields reset. Ids are kept as found; zero or repeated
// ids are for the store to replace.
func Decode(data []byte) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if top == nil {
		return nil, fmt.Errorf("%w: top level is null", ErrMalformed)
	}

	rawLayers, ok := top["layers"]
	if !ok || isNull(rawLayers) {
		return nil, ErrMissingLayers
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(rawLayers, &entries); err != nil {
		return nil, fmt.Errorf("%w: layers: %v", ErrMalformed, err)
	}

	doc := &Document{Layers: make([]layer.TextLayer, 0, len(entries))}
	for i, entry := range entries {
		if isNull(entry) {
			return nil, fmt.Errorf("%w: layer %d is null", ErrMalformed, i)
		}
		l := layer.Default(layer.None)
		if err := json.Unmarshal(entry, &l); err != nil {
			return nil, fmt.Errorf("%w: layer %d: %v", ErrMalformed, i, err)
		}
		l.ResetTransient()
		l.Normalize()
		doc.Layers = append(doc.Layers, l)
	}

	// Metadata never blocks an import. A wrongly typed field stays empty.
	for name, dst := range map[string]*string{"exportedAt": &doc.ExportedAt, "author": &doc.Author} {
		raw, ok := top[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			log.Printf("[EDITOR] Ignoring document field %q: %v", name, err)
			*dst = ""
		}
	}
	return doc, nil
}

// Import returns the layers of a design file.
func Import(data []byte) ([]layer.TextLayer, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return doc.Layers, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
