package source

import (
	"fmt"
)

// FileID identifies an input unit. Rill is fed pre-built expressions, so
// most spans carry NoFile; front ends that track source positions thread
// their own IDs through unchanged.
type FileID uint32

// NoFile marks a span with no source attribution.
const NoFile FileID = 0

// Span is a half-open byte range inside an input unit.
type Span struct {
	File  FileID
	Start uint32 // inclusive
	End   uint32 // exclusive
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover widens s to include other. Spans from different files are not
// merged; the receiver wins.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}
