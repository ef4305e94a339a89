package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Scope machinery (1xxx)
	ScopeInfo          Code = 1000
	ScopeDuplicateName Code = 1001
	ScopeStackEmpty    Code = 1002
	ScopeWrongKind     Code = 1003

	// Builder emission protocol (2xxx)
	BuildInfo           Code = 2000
	BuildDiscipline     Code = 2001
	BuildUnboundVar     Code = 2002
	BuildNoModuleScope  Code = 2003
	BuildTypeMismatch   Code = 2004
	BuildStackNotClosed Code = 2005

	// Operator inference callbacks (3xxx). Reserved range for front ends
	// and operator packages; rill itself only emits InferInfo.
	InferInfo          Code = 3000
	InferShapeFailed   Code = 3001
	InferTypeFailed    Code = 3002
	InferRankMismatch  Code = 3003
	InferDTypeConflict Code = 3004
)

// String returns the stable form used in rendered output, e.g. "R2001".
func (c Code) String() string {
	return fmt.Sprintf("R%04d", uint16(c))
}
