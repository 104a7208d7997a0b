package iohelper

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadAll_NilReader(t *testing.T) {
	data, err := ReadAll(nil, DocumentMaxSize)
	if err != nil {
		t.Errorf("Expected no error for nil reader, got %v", err)
	}
	if len(data) != 0 {
		t.Errorf("Expected empty data for nil reader, got %d bytes", len(data))
	}
}

func TestReadAll_UnderLimit(t *testing.T) {
	data, err := ReadAll(strings.NewReader("small data"), 1024)
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if string(data) != "small data" {
		t.Errorf("Expected 'small data', got '%s'", string(data))
	}
}

func TestReadAll_ExactlyAtLimit(t *testing.T) {
	data, err := ReadAll(strings.NewReader(strings.Repeat("x", 100)), 100)
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if len(data) != 100 {
		t.Errorf("Expected 100 bytes, got %d", len(data))
	}
}

func TestReadAll_OverLimit(t *testing.T) {
	data, err := ReadAll(strings.NewReader(strings.Repeat("x", 101)), 100)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("Expected ErrTooLarge, got %v", err)
	}
	if data != nil {
		t.Errorf("Expected no data on error, got %d bytes", len(data))
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	if err := os.WriteFile(path, []byte("openapi: 3.0.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := ReadFile(path, DocumentMaxSize)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(data) != "openapi: 3.0.0\n" {
		t.Errorf("Unexpected content %q", data)
	}

	_, err = ReadFile(path, 4)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("Expected ErrTooLarge, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), path) {
		t.Errorf("Expected error to name the file, got %v", err)
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"), DocumentMaxSize)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist, got %v", err)
	}
}
