package variation

import "errors"

// Sentinel errors for fuzzing configuration files. Callers should use
// errors.Is().
var (
	// ErrInvalidConfig wraps decoding and validation failures.
	ErrInvalidConfig = errors.New("variation: invalid configuration")

	// ErrUnsupportedOverwrite is returned for overwrite groups other than
	// request body, query parameter and header groups.
	ErrUnsupportedOverwrite = errors.New("variation: unsupported overwrite group")

	// ErrInvalidInstruction is returned for instructions that set both
	// remove and overwrite, or have no key.
	ErrInvalidInstruction = errors.New("variation: invalid overwrite instruction")
)
