package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// SaveFile writes a document blob to path, creating parent directories
func SaveFile(path string, doc *Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a document blob written by SaveFile
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}

	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
