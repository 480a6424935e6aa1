package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and the backend client return
// these (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: key or record does not exist
//   - ErrCooldown: an action is blocked until a cooldown elapses
//   - ErrUnavailable: a dependency is unreachable or its circuit is open
var (
	ErrNotFound    = errors.New("not found")
	ErrCooldown    = errors.New("cooldown active")
	ErrUnavailable = errors.New("unavailable")
)
