package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/tordrt/erdschema/internal/layout"
	"github.com/tordrt/erdschema/internal/route"
)

func sampleDocument() *Document {
	return &Document{
		Name: "shop",
		Text: "CREATE TABLE users (id int PRIMARY KEY);",
		Positions: layout.Positions{
			"users":     {X: 10, Y: 20},
			"enum:mood": {X: 300, Y: 20},
		},
		Viewport: Viewport{X: -40, Y: 12.5, Zoom: 1.25},
	}
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEncodeDecode(t *testing.T) {
	doc := sampleDocument()

	data, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", got.Version, CurrentVersion)
	}
	if got.Name != doc.Name || got.Text != doc.Text {
		t.Errorf("Decode() = %+v", got)
	}
	if !reflect.DeepEqual(got.Positions, doc.Positions) {
		t.Errorf("Positions = %v, want %v", got.Positions, doc.Positions)
	}
	if got.Viewport != doc.Viewport {
		t.Errorf("Viewport = %+v, want %+v", got.Viewport, doc.Viewport)
	}
}

func TestDecodeVersion(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"missing version", `{"name":"x","text":""}`, ErrUnsupportedVersion},
		{"future version", `{"version":2,"name":"x"}`, ErrUnsupportedVersion},
		{"current version", `{"version":1,"name":"x"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode([]byte(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && doc.Positions == nil {
				t.Error("Positions should never be nil")
			}
		})
	}

	if _, err := Decode([]byte("not json")); err == nil {
		t.Error("expected error for malformed blob")
	}
}

func TestSQLiteStoreSaveGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	doc := sampleDocument()
	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if doc.ID == "" {
		t.Fatal("Save() should assign an ID")
	}

	got, err := s.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != doc.ID || got.Text != doc.Text {
		t.Errorf("Get() = %+v", got)
	}
	if !reflect.DeepEqual(got.Positions, doc.Positions) {
		t.Errorf("Positions = %v, want %v", got.Positions, doc.Positions)
	}

	// saving again with the same ID replaces the content
	doc.Positions["users"] = route.Point{X: 99, Y: 99}
	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err = s.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Positions["users"] != (route.Point{X: 99, Y: 99}) {
		t.Errorf("updated position = %v", got.Positions["users"])
	}
}

func TestSQLiteStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStoreListDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first := &Document{Name: "first"}
	second := &Document{Name: "second"}
	for _, doc := range []*Document{first, second} {
		if err := s.Save(ctx, doc); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].Name != "second" || list[1].Name != "first" {
		t.Fatalf("List() = %+v", list)
	}
	if !list[0].UpdatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("UpdatedAt = %v", list[0].UpdatedAt)
	}

	if err := s.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	list, err = s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != second.ID {
		t.Errorf("List() after delete = %+v", list)
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "docs.db")

	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	doc := sampleDocument()
	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	_ = s.Close()

	// migrations must be idempotent across opens
	s, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite() reopen error = %v", err)
	}
	defer func() { _ = s.Close() }()

	got, err := s.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != doc.Name {
		t.Errorf("Name = %q, want %q", got.Name, doc.Name)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "shop.erd.json")

	doc := sampleDocument()
	if err := SaveFile(path, doc); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if !reflect.DeepEqual(got.Positions, doc.Positions) || got.Viewport != doc.Viewport {
		t.Errorf("LoadFile() = %+v", got)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
