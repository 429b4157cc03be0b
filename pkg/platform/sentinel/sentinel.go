package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into coded domain errors.
//
//   - ErrNotFound: entity does not exist in the store
//   - ErrAlreadyUsed: a unique key (username) is already taken
//   - ErrUnavailable: backing service temporarily unavailable
//
// Validation failures belong in pkg/domain-errors, not here.
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	ErrUnavailable = errors.New("unavailable")
)
