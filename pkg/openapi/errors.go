package openapi

import "errors"

// Sentinel errors for document loading. Callers should use errors.Is().
var (
	// ErrEmptyDocument is returned for input that holds no document at all.
	ErrEmptyDocument = errors.New("openapi: empty document")

	// ErrUnsupportedVersion is returned for Swagger 2.0 and other
	// non-3.x documents.
	ErrUnsupportedVersion = errors.New("openapi: unsupported document version")

	// ErrInvalidDocument wraps JSON and YAML decoding failures.
	ErrInvalidDocument = errors.New("openapi: invalid document")
)
