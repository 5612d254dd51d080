package domain

import "errors"

// ErrNotFound is returned when a train or booking id is unknown to the ledger.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. passenger age out of range, non-positive seat count).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrNoSeats is returned by the ledger when a train has no seats left.
var ErrNoSeats = errors.New("no seats available")

// ErrAlreadyCancelled is returned when a booking no longer holds a seat on its
// train, so cancelling it again would refund a seat twice.
var ErrAlreadyCancelled = errors.New("booking already cancelled")

// ErrConflict is returned when an inserted train id is already taken.
var ErrConflict = errors.New("conflict")

// ErrNotPersisted is returned when an in-memory mutation succeeded but the
// ledger could not be written to storage. The mutation is still visible to
// later reads in the same process.
var ErrNotPersisted = errors.New("ledger not persisted")
