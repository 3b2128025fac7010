package hierarchy

import "errors"

// Rejection reasons surfaced to the user when a supervisor change is not
// admissible. These are human-readable and stable; handlers return them
// verbatim.
const (
	ReasonSelfSupervision   = "self-supervision"
	ReasonWouldCycle        = "would create a cycle"
	ReasonUnknownMember     = "unknown member"
	ReasonUnknownSupervisor = "unknown supervisor"
	ReasonDataFault         = "hierarchy data fault"
)

// Result is the outcome of a cycle-safety validation.
type Result struct {
	OK     bool
	Reason string
}

func ok() Result {
	return Result{OK: true}
}

func rejected(reason string) Result {
	return Result{OK: false, Reason: reason}
}

// Validate decides whether memberID may be reassigned to the proposed
// supervisor. It must run before any mutation, optimistic ones included.
// It is purely local-graph: no I/O, completes synchronously.
//
// Rules, in order: the member must exist; a nil supervisor (make root) is
// always admissible; a member may not supervise itself; the proposed
// supervisor must exist; and the member may not appear among the proposed
// supervisor's ancestors, which is exactly the case where the move would
// close a cycle.
func Validate(g *Graph, memberID string, proposedSupervisorID *string) Result {
	if _, exists := g.Member(memberID); !exists {
		return rejected(ReasonUnknownMember)
	}
	if proposedSupervisorID == nil || *proposedSupervisorID == "" {
		return ok()
	}
	supID := *proposedSupervisorID
	if supID == memberID {
		return rejected(ReasonSelfSupervision)
	}
	if _, exists := g.Member(supID); !exists {
		return rejected(ReasonUnknownSupervisor)
	}

	ancestors, err := g.AncestorsOf(supID)
	if err != nil {
		var fault *CycleFaultError
		if errors.As(err, &fault) {
			// A cycle already exists upstream; refuse to touch anything
			// until the data is repaired.
			return rejected(ReasonDataFault)
		}
		return rejected(ReasonUnknownSupervisor)
	}
	for _, a := range ancestors {
		if a.ID == memberID {
			return rejected(ReasonWouldCycle)
		}
	}
	return ok()
}
