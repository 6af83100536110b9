package optimizer

import "errors"

// Typed optimization failures. Callers match them with errors.Is; the engine
// never downgrades one of these into a best-effort squad.
var (
	ErrInfeasible           = errors.New("infeasible")
	ErrNoData               = errors.New("no data")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrInsufficientPosition = errors.New("insufficient position")
	ErrTimeout              = errors.New("timeout")
)
