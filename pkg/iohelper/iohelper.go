// Package iohelper reads input documents with a size cap, so a wrong
// path (a log file, a disk image) fails fast instead of exhausting
// memory.
package iohelper

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Size limits for the documents the tool reads.
const (
	// TemplateMaxSize bounds report templates (1MB).
	TemplateMaxSize int64 = 1 << 20

	// DocumentMaxSize bounds OpenAPI documents, collections and variation
	// files (64MB).
	DocumentMaxSize int64 = 64 << 20
)

// ErrTooLarge is returned when input exceeds its limit.
var ErrTooLarge = errors.New("iohelper: input exceeds size limit")

// ReadAll reads r up to maxSize bytes. Input longer than maxSize is an
// error, never silently truncated. A nil reader yields an empty slice.
func ReadAll(r io.Reader, maxSize int64) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w of %d bytes", ErrTooLarge, maxSize)
	}
	return data, nil
}

// ReadFile reads the file at path up to maxSize bytes.
//
// Usage:
//
//	data, err := iohelper.ReadFile(path, iohelper.DocumentMaxSize)
func ReadFile(path string, maxSize int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Reject by stat when possible; pipes and devices report no size.
	if info, err := f.Stat(); err == nil && info.Mode().IsRegular() && info.Size() > maxSize {
		return nil, fmt.Errorf("%s: %w of %d bytes", path, ErrTooLarge, maxSize)
	}
	data, err := ReadAll(f, maxSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}
