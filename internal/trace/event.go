package trace

import "time"

// Event is one traced build step.
type Event struct {
	Time    time.Time
	Level   Level  // verbosity class the event belongs to
	Session string // session identity, empty outside internal/session
	Op      string // e.g. "scope.push", "emit", "module.add"
	Detail  string // human-readable payload, e.g. the bound variable name
}
