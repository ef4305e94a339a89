// Package trace provides leveled build-session tracing for rill. The builder
// emits events for scope transitions, bindings and symbol-table hits; the
// tracer decides which survive. The zero-cost default is Nop.
package trace

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Tracer receives build events. Implementations must be goroutine-safe: one
// builder is single-threaded, but independent sessions may share a tracer.
type Tracer interface {
	// Emit records a trace event.
	Emit(ev Event)

	// Level returns the current tracing level.
	Level() Level

	// Enabled reports whether events at l would be recorded.
	Enabled(l Level) bool
}

// nopTracer is a no-op implementation for zero overhead when tracing is disabled.
type nopTracer struct{}

func (nopTracer) Emit(Event)         {}
func (nopTracer) Level() Level       { return LevelOff }
func (nopTracer) Enabled(Level) bool { return false }

// Nop is the package-level singleton nop tracer.
var Nop Tracer = nopTracer{}

// StreamTracer writes events immediately to an io.Writer, one per line.
type StreamTracer struct {
	mu    sync.Mutex
	w     io.Writer
	level Level
}

func NewStreamTracer(w io.Writer, level Level) *StreamTracer {
	return &StreamTracer{w: w, level: level}
}

// Emit writes the event. Write errors are swallowed: tracing must never fail
// a build.
func (t *StreamTracer) Emit(ev Event) {
	if ev.Level > t.level {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if ev.Session != "" {
		_, _ = fmt.Fprintf(t.w, "%s [%s] %s %s\n", ev.Time.Format(time.RFC3339Nano), ev.Session, ev.Op, ev.Detail)
		return
	}
	_, _ = fmt.Fprintf(t.w, "%s %s %s\n", ev.Time.Format(time.RFC3339Nano), ev.Op, ev.Detail)
}

func (t *StreamTracer) Level() Level { return t.level }

func (t *StreamTracer) Enabled(l Level) bool { return l <= t.level && t.level > LevelOff }
