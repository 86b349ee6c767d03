package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Record stores return these
// (optionally wrapped) and the engine service translates them into coded
// domain errors.
//
//   - ErrNotFound: no record exists under the key
//   - ErrConflict: a concurrent transaction touched the same record; the
//     whole transaction was discarded
//   - ErrUnavailable: the backing store cannot be reached
//   - ErrReadOnly: a write was attempted inside a read-only transaction
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
	ErrReadOnly    = errors.New("read-only transaction")
)
