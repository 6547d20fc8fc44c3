package sentinel

import "errors"

// Sentinel errors for document store facts. Containers return these (optionally
// wrapped) and the registry translates them into domain errors:
//   - ErrNotFound: no document under the given key and partition
//   - ErrConflict: a document with the same key already exists
//   - ErrUnavailable: the store could not be reached
//
// Validation failures are not store facts; use pkg/domain-errors for those.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
