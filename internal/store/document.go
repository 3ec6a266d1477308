// Package store persists diagram documents: the definition text plus the
// per-node positions and viewport needed to restore a diagram exactly.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tordrt/erdschema/internal/layout"
)

// CurrentVersion is the blob format written by Encode
const CurrentVersion = 1

var (
	// ErrNotFound is returned when no document has the requested ID
	ErrNotFound = errors.New("document not found")

	// ErrUnsupportedVersion is returned by Decode for blobs of an unknown
	// format version
	ErrUnsupportedVersion = errors.New("unsupported document version")
)

// Viewport is the pan offset and zoom of the canvas
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// Document is one saved diagram. Positions are keyed by table name or enum
// node ID, so they apply again after the text is re-extracted.
type Document struct {
	ID        string           `json:"id,omitempty"`
	Name      string           `json:"name"`
	Text      string           `json:"text"`
	Positions layout.Positions `json:"positions"`
	Viewport  Viewport         `json:"viewport"`
	Version   int              `json:"version"`
	UpdatedAt time.Time        `json:"updatedAt,omitzero"`
}

// Summary describes a stored document without its content
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is implemented by every document backend
type Store interface {
	// Save inserts or replaces a document. An empty ID is assigned a new one.
	Save(ctx context.Context, doc *Document) error
	Get(ctx context.Context, id string) (*Document, error)
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// blob is the persisted form; ID and timestamps live outside it
type blob struct {
	Version   int              `json:"version"`
	Name      string           `json:"name"`
	Text      string           `json:"text"`
	Positions layout.Positions `json:"positions"`
	Viewport  Viewport         `json:"viewport"`
}

// Encode serializes the document content as a versioned JSON blob
func Encode(doc *Document) ([]byte, error) {
	positions := doc.Positions
	if positions == nil {
		positions = layout.Positions{}
	}
	data, err := json.Marshal(blob{
		Version:   CurrentVersion,
		Name:      doc.Name,
		Text:      doc.Text,
		Positions: positions,
		Viewport:  doc.Viewport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

// Decode parses a blob written by Encode. Blobs of any other version are
// rejected with ErrUnsupportedVersion.
func Decode(data []byte) (*Document, error) {
	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if probe.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, probe.Version)
	}

	var b blob
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if b.Positions == nil {
		b.Positions = layout.Positions{}
	}

	return &Document{
		Name:      b.Name,
		Text:      b.Text,
		Positions: b.Positions,
		Viewport:  b.Viewport,
		Version:   b.Version,
	}, nil
}
