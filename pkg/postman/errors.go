package postman

import "errors"

// Sentinel errors for collection loading. Callers should use errors.Is().
var (
	// ErrInvalidCollection wraps decoding failures and documents that are
	// not Postman v2 collections.
	ErrInvalidCollection = errors.New("postman: invalid collection")

	// ErrNoRequests is returned when a collection holds no request items.
	ErrNoRequests = errors.New("postman: collection has no requests")
)
