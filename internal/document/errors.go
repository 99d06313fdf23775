package document

import "errors"

// Sentinel errors shared by the service, storage, and transport layers.
// Wrap them with fmt.Errorf("%w: ...", err) so errors.Is keeps working
// across package boundaries.
var (
	// ErrNotFound covers documents that do not exist and documents hidden
	// by soft deletion. Callers cannot tell the two apart.
	ErrNotFound = errors.New("document not found")

	// ErrInvalid marks input the caller can fix: malformed ids, blank
	// required fields, out-of-range pagination.
	ErrInvalid = errors.New("invalid input")

	// ErrUnavailable is returned once storage retries are exhausted. The
	// backend's error text is folded into the message, never its type.
	ErrUnavailable = errors.New("storage unavailable")
)
