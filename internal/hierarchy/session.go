package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State of one member within an edit session.
type State int

const (
	// StateClean: no pending edit; displayed values are the last confirmed
	// server values.
	StateClean State = iota
	// StatePendingLocal: an unconfirmed edit exists; display reflects the
	// overlay, not the server snapshot.
	StatePendingLocal
	// StateCommitting: a save for this member's edit is in flight.
	StateCommitting
	// StateFailed: the server rejected or errored; the edit is retained
	// until retried or rolled back.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePendingLocal:
		return "pending"
	case StateCommitting:
		return "committing"
	case StateFailed:
		return "failed"
	default:
		return "clean"
	}
}

// Edit is one pending, unconfirmed supervisor change. Prev always holds the
// last confirmed value so rollback restores the true server state, never an
// intermediate unconfirmed one.
type Edit struct {
	MemberID         string
	PrevSupervisorID *string
	NewSupervisorID  *string
	CreatedAt        time.Time
}

// SupervisorUpdater is the single write capability the session consumes
// from the surrounding system: an idempotent single-field update returning
// the updated member record.
type SupervisorUpdater interface {
	UpdateSupervisor(ctx context.Context, memberID string, supervisorID *string) (Member, error)
}

// RejectionHandler receives the human-readable reason whenever a proposed
// change fails validation, for synchronous user feedback.
type RejectionHandler func(memberID, reason string)

// CommitReport aggregates the independent per-member outcomes of a
// CommitAll. Partial success is reported, not decided, here.
type CommitReport struct {
	SuccessCount int               `json:"successCount"`
	FailureCount int               `json:"failureCount"`
	Committed    []string          `json:"committed,omitempty"`
	Failures     map[string]string `json:"failures,omitempty"`
}

// ErrNotInPreview is returned when removing a proposed subordinate that is
// not (or no longer) in the preview set.
var ErrNotInPreview = errors.New("member is not a proposed subordinate")

// Session layers pending, unconfirmed hierarchy edits over the last
// known-good roster snapshot. One session owns its overlay exclusively;
// proposals are made from a single goroutine, and only commit-result
// application runs concurrently (guarded by the internal mutex).
type Session struct {
	mu      sync.Mutex
	base    *Graph
	updater SupervisorUpdater

	edits     map[string]*Edit
	editOrder []string

	// Proposed subordinates per supervisor: preview only, no supervisor
	// pointer changes until commit converts them into validated edits.
	previews  map[string][]string
	prevOrder []string

	states map[string]State

	// Bumped by RollbackAll so results of commits dispatched before the
	// rollback are applied as no-ops instead of resurrecting overlay state.
	epoch uint64

	onRejected RejectionHandler
}

// NewSession starts an edit session over the given confirmed snapshot.
func NewSession(base *Graph, updater SupervisorUpdater) *Session {
	return &Session{
		base:     base,
		updater:  updater,
		edits:    make(map[string]*Edit),
		previews: make(map[string][]string),
		states:   make(map[string]State),
	}
}

// SetRejectionHandler installs the validation-rejection callback.
func (s *Session) SetRejectionHandler(fn RejectionHandler) {
	s.onRejected = fn
}

// BaseGraph returns the last confirmed snapshot.
func (s *Session) BaseGraph() *Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.base
}

// State returns the session state of one member.
func (s *Session) State(memberID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[memberID]
}

// HasPendingChanges reports whether any edit or preview exists. Drives the
// save/undo affordances and navigation guards in the caller.
func (s *Session) HasPendingChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.edits) > 0 {
		return true
	}
	for _, cands := range s.previews {
		if len(cands) > 0 {
			return true
		}
	}
	return false
}

// PendingEdits returns a copy of the pending edits in proposal order.
func (s *Session) PendingEdits() []Edit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Edit, 0, len(s.editOrder))
	for _, id := range s.editOrder {
		if e, ok := s.edits[id]; ok {
			out = append(out, *e)
		}
	}
	return out
}

// OverlayGraph returns the base snapshot with all pending edits applied.
// Preview-adds do not change anyone's supervisor and are not part of the
// overlay; the rendering adapter draws them as provisional edges instead.
func (s *Session) OverlayGraph() *Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlayLocked()
}

func (s *Session) overlayLocked() *Graph {
	members := s.base.Members()
	for i := range members {
		if e, ok := s.edits[members[i].ID]; ok {
			members[i].SupervisorID = cloneID(e.NewSupervisorID)
		}
	}
	g, err := BuildGraph(members)
	if err != nil {
		// Ids are unchanged from a graph that already built; unreachable.
		return s.base
	}
	return g
}

// ProposeSupervisorChange validates the change against the overlaid graph
// and, when admissible, records it as a pending edit. A rejected proposal
// leaves all state untouched and surfaces the reason. Re-proposing for a
// member with an existing edit replaces the new value but preserves the
// original previous value.
func (s *Session) ProposeSupervisorChange(memberID string, newSupervisorID *string) Result {
	s.mu.Lock()
	r := s.proposeLocked(memberID, newSupervisorID)
	s.mu.Unlock()

	if !r.OK && s.onRejected != nil {
		s.onRejected(memberID, r.Reason)
	}
	return r
}

func (s *Session) proposeLocked(memberID string, newSupervisorID *string) Result {
	r := Validate(s.overlayLocked(), memberID, newSupervisorID)
	if !r.OK {
		return r
	}

	if e, exists := s.edits[memberID]; exists {
		e.NewSupervisorID = cloneID(newSupervisorID)
	} else {
		confirmed, _ := s.base.Member(memberID)
		s.edits[memberID] = &Edit{
			MemberID:         memberID,
			PrevSupervisorID: cloneID(confirmed.SupervisorID),
			NewSupervisorID:  cloneID(newSupervisorID),
			CreatedAt:        time.Now(),
		}
		s.editOrder = append(s.editOrder, memberID)
	}
	s.states[memberID] = StatePendingLocal
	return r
}

// ProposeAddSubordinate tentatively marks candidateID as reporting to
// supervisorID, for preview only. No cycle check runs here: nothing changes
// an existing supervisor pointer until commit, where the conversion into a
// real edit is validated.
func (s *Session) ProposeAddSubordinate(supervisorID, candidateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.base.Member(supervisorID); !ok {
		return fmt.Errorf("unknown supervisor %q", supervisorID)
	}
	if _, ok := s.base.Member(candidateID); !ok {
		return fmt.Errorf("unknown member %q", candidateID)
	}
	for _, id := range s.previews[supervisorID] {
		if id == candidateID {
			return nil
		}
	}
	if _, seen := s.previews[supervisorID]; !seen {
		s.prevOrder = append(s.prevOrder, supervisorID)
	}
	s.previews[supervisorID] = append(s.previews[supervisorID], candidateID)
	return nil
}

// ProposeRemoveSubordinatePreview undoes a ProposeAddSubordinate. Only
// valid while the candidate is still preview-only.
func (s *Session) ProposeRemoveSubordinatePreview(supervisorID, candidateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cands := s.previews[supervisorID]
	for i, id := range cands {
		if id == candidateID {
			s.previews[supervisorID] = append(cands[:i:i], cands[i+1:]...)
			return nil
		}
	}
	return ErrNotInPreview
}

// previewPairs returns supervisor/candidate pairs in proposal order.
func (s *Session) previewPairs() [][2]string {
	var out [][2]string
	for _, sup := range s.prevOrder {
		for _, cand := range s.previews[sup] {
			out = append(out, [2]string{sup, cand})
		}
	}
	return out
}

// CommitAll converts every preview-add into a validated edit, then flushes
// all pending edits to the external updater: one call per member,
// dispatched concurrently with independent outcomes; a failure for one member
// never blocks the others. Successes refresh the confirmed snapshot and
// clear their overlay entry; failures stay pending for retry or rollback.
// Whether partial success is acceptable is the caller's decision.
func (s *Session) CommitAll(ctx context.Context) CommitReport {
	report := CommitReport{Failures: make(map[string]string)}

	s.mu.Lock()
	for _, pair := range s.previewPairs() {
		sup, cand := pair[0], pair[1]
		supID := sup
		if r := s.proposeLocked(cand, &supID); !r.OK {
			report.FailureCount++
			report.Failures[cand] = r.Reason
		}
	}
	s.previews = make(map[string][]string)
	s.prevOrder = nil

	pending := make([]Edit, 0, len(s.editOrder))
	for _, id := range s.editOrder {
		if e, ok := s.edits[id]; ok {
			pending = append(pending, *e)
			s.states[id] = StateCommitting
		}
	}
	epoch := s.epoch
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, e := range pending {
		wg.Add(1)
		go func(e Edit) {
			defer wg.Done()
			updated, err := s.updater.UpdateSupervisor(ctx, e.MemberID, cloneID(e.NewSupervisorID))
			s.applyCommitResult(epoch, e.MemberID, updated, err, &report)
		}(e)
	}
	wg.Wait()
	return report
}

// applyCommitResult reconciles one member's commit outcome. Results from an
// older epoch (a rollback happened while the call was in flight) clear the
// in-flight marker but never touch the snapshot: a late success must not
// resurrect removed overlay state.
func (s *Session) applyCommitResult(epoch uint64, memberID string, updated Member, err error, report *CommitReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stale := epoch != s.epoch

	if err != nil {
		report.FailureCount++
		report.Failures[memberID] = err.Error()
		if stale {
			s.dropEditLocked(memberID)
			delete(s.states, memberID)
			return
		}
		s.states[memberID] = StateFailed
		return
	}

	report.SuccessCount++
	report.Committed = append(report.Committed, memberID)
	s.dropEditLocked(memberID)
	delete(s.states, memberID)
	if stale {
		return
	}

	// Refresh the confirmed snapshot with the record the server returned.
	members := s.base.Members()
	for i := range members {
		if members[i].ID == updated.ID {
			members[i] = updated
			break
		}
	}
	if g, buildErr := BuildGraph(members); buildErr == nil {
		s.base = g
	}
}

// RollbackAll discards every pending edit and preview without contacting
// the server. Members with a commit currently in flight keep their marker;
// their late results are applied as no-ops against the bumped epoch.
func (s *Session) RollbackAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	for id, st := range s.states {
		if st == StateCommitting {
			continue
		}
		s.dropEditLocked(id)
		delete(s.states, id)
	}
	s.previews = make(map[string][]string)
	s.prevOrder = nil
}

func (s *Session) dropEditLocked(memberID string) {
	if _, ok := s.edits[memberID]; !ok {
		return
	}
	delete(s.edits, memberID)
	for i, id := range s.editOrder {
		if id == memberID {
			s.editOrder = append(s.editOrder[:i:i], s.editOrder[i+1:]...)
			break
		}
	}
}

func cloneID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
