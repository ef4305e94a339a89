// Package diag defines the diagnostic model rill hands to operator inference
// callbacks and surfaces alongside construction errors.
//
// Diagnostic is the central record: Severity, Code, Message, a primary
// source.Span and optional Notes. Producers emit through a Reporter; a Bag
// aggregates records with a hard cap so a misbehaving inference callback
// cannot grow memory without bound.
//
// The builder allocates a fresh Bag per inference call-site. Bags are never
// shared between build sessions, which is what lets independent builders run
// in parallel goroutines without cross-talk (callbacks see only their own
// context).
//
// Rendering lives in render.go and is deliberately small: colored severity
// tags for terminals, plain text everywhere else.
package diag
