package trace

import "fmt"

// Level controls tracing verbosity.
type Level uint8

const (
	// LevelOff disables tracing.
	LevelOff     Level = iota // no tracing
	LevelSession              // session and module boundaries
	LevelBlock                // scope push/pop, block begin/end
	LevelEmit                 // every emitted binding
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelSession:
		return "session"
	case LevelBlock:
		return "block"
	case LevelEmit:
		return "emit"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "off", "OFF", "":
		return LevelOff, nil
	case "session", "SESSION":
		return LevelSession, nil
	case "block", "BLOCK":
		return LevelBlock, nil
	case "emit", "EMIT":
		return LevelEmit, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|session|block|emit)", s)
	}
}
