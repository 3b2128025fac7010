package hierarchy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	waitTimeout = 2 * time.Second
	waitTick    = 5 * time.Millisecond
)

type fakeUpdater struct {
	mu      sync.Mutex
	failFor map[string]error
	gate    chan struct{}
	calls   []string
}

func (f *fakeUpdater) UpdateSupervisor(ctx context.Context, memberID string, supervisorID *string) (Member, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.calls = append(f.calls, memberID)
	err := f.failFor[memberID]
	f.mu.Unlock()
	if err != nil {
		return Member{}, err
	}
	m := member(memberID, "")
	m.SupervisorID = supervisorID
	return m, nil
}

func (f *fakeUpdater) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func supervisorOf(t *testing.T, g *Graph, id string) string {
	t.Helper()
	m, ok := g.Member(id)
	require.True(t, ok)
	if m.IsRoot() {
		return ""
	}
	return *m.SupervisorID
}

func TestSession_ProposeOverlaysWithoutTouchingBase(t *testing.T) {
	g := mustGraph(t, member("a", ""), member("b", ""), member("x", "a"))
	s := NewSession(g, &fakeUpdater{})

	require.False(t, s.HasPendingChanges())

	b := "b"
	r := s.ProposeSupervisorChange("x", &b)
	require.True(t, r.OK)
	require.True(t, s.HasPendingChanges())
	require.Equal(t, StatePendingLocal, s.State("x"))

	require.Equal(t, "b", supervisorOf(t, s.OverlayGraph(), "x"))
	require.Equal(t, "a", supervisorOf(t, s.BaseGraph(), "x"))
}

func TestSession_RejectedProposalLeavesStateUntouched(t *testing.T) {
	g := mustGraph(t, member("a", ""), member("b", "a"))
	s := NewSession(g, &fakeUpdater{})

	var gotMember, gotReason string
	s.SetRejectionHandler(func(memberID, reason string) {
		gotMember, gotReason = memberID, reason
	})

	b := "b"
	r := s.ProposeSupervisorChange("a", &b)
	require.False(t, r.OK)
	require.Equal(t, ReasonWouldCycle, r.Reason)
	require.Equal(t, "a", gotMember)
	require.Equal(t, ReasonWouldCycle, gotReason)

	require.False(t, s.HasPendingChanges())
	require.Equal(t, StateClean, s.State("a"))
	require.Equal(t, "a", supervisorOf(t, s.OverlayGraph(), "b"))
}

// Validation runs against the overlay: once x is pending under b, moving b
// under x must be rejected even though the server still has x under a.
func TestSession_ValidationSeesPendingEdits(t *testing.T) {
	g := mustGraph(t, member("a", ""), member("b", ""), member("x", "a"))
	s := NewSession(g, &fakeUpdater{})

	b := "b"
	require.True(t, s.ProposeSupervisorChange("x", &b).OK)

	x := "x"
	r := s.ProposeSupervisorChange("b", &x)
	require.False(t, r.OK)
	require.Equal(t, ReasonWouldCycle, r.Reason)
}

// Re-proposing replaces the new value but keeps the original previous
// value, so rollback always returns to the last confirmed state.
func TestSession_ReproposalKeepsOriginalPrev(t *testing.T) {
	g := mustGraph(t, member("s1", ""), member("s2", ""), member("s3", ""), member("x", "s1"))
	s := NewSession(g, &fakeUpdater{})

	s2, s3 := "s2", "s3"
	require.True(t, s.ProposeSupervisorChange("x", &s2).OK)
	require.True(t, s.ProposeSupervisorChange("x", &s3).OK)

	edits := s.PendingEdits()
	require.Len(t, edits, 1)
	require.Equal(t, "s1", *edits[0].PrevSupervisorID)
	require.Equal(t, "s3", *edits[0].NewSupervisorID)

	s.RollbackAll()
	require.Equal(t, "s1", supervisorOf(t, s.OverlayGraph(), "x"))
}

func TestSession_RollbackExactness(t *testing.T) {
	g := mustGraph(t,
		member("a", ""), member("b", "a"), member("c", "b"), member("d", ""),
	)
	s := NewSession(g, &fakeUpdater{})

	d, a := "d", "a"
	require.True(t, s.ProposeSupervisorChange("b", &d).OK)
	require.True(t, s.ProposeSupervisorChange("c", &a).OK)
	require.NoError(t, s.ProposeAddSubordinate("d", "a"))
	require.True(t, s.HasPendingChanges())

	s.RollbackAll()
	require.False(t, s.HasPendingChanges())

	before := g.Members()
	after := s.OverlayGraph().Members()
	require.Equal(t, len(before), len(after))
	for i := range before {
		require.Equal(t, before[i].ID, after[i].ID)
		require.Equal(t, before[i].IsRoot(), after[i].IsRoot())
		if !before[i].IsRoot() {
			require.Equal(t, *before[i].SupervisorID, *after[i].SupervisorID)
		}
	}
}

func TestSession_PreviewAddRemove(t *testing.T) {
	g := mustGraph(t, member("a", ""), member("b", ""))
	s := NewSession(g, &fakeUpdater{})

	require.NoError(t, s.ProposeAddSubordinate("a", "b"))
	require.True(t, s.HasPendingChanges())
	require.Empty(t, s.PendingEdits(), "preview must not create an edit")

	// Preview never changes supervisor pointers before commit.
	require.Equal(t, "", supervisorOf(t, s.OverlayGraph(), "b"))

	require.NoError(t, s.ProposeRemoveSubordinatePreview("a", "b"))
	require.False(t, s.HasPendingChanges())

	require.ErrorIs(t, s.ProposeRemoveSubordinatePreview("a", "b"), ErrNotInPreview)
	require.Error(t, s.ProposeAddSubordinate("a", "ghost"))
	require.Error(t, s.ProposeAddSubordinate("ghost", "b"))
}

func TestSession_CommitAllAppliesEditsAndPreviews(t *testing.T) {
	g := mustGraph(t, member("a", ""), member("b", ""), member("x", "a"), member("y", ""))
	up := &fakeUpdater{}
	s := NewSession(g, up)

	b := "b"
	require.True(t, s.ProposeSupervisorChange("x", &b).OK)
	require.NoError(t, s.ProposeAddSubordinate("a", "y"))

	report := s.CommitAll(context.Background())
	require.Equal(t, 2, report.SuccessCount)
	require.Equal(t, 0, report.FailureCount)
	require.ElementsMatch(t, []string{"x", "y"}, report.Committed)
	require.Equal(t, 2, up.callCount())

	require.False(t, s.HasPendingChanges())
	require.Equal(t, StateClean, s.State("x"))
	require.Equal(t, "b", supervisorOf(t, s.BaseGraph(), "x"))
	require.Equal(t, "a", supervisorOf(t, s.BaseGraph(), "y"))
}

// Partial failure: one member's call fails, the other's still runs; the
// failed member keeps its pending edit for retry.
func TestSession_CommitAllPartialFailure(t *testing.T) {
	g := mustGraph(t, member("s", ""), member("x", ""), member("y", ""))
	up := &fakeUpdater{failFor: map[string]error{"y": errors.New("backend said no")}}
	s := NewSession(g, up)

	sup := "s"
	require.True(t, s.ProposeSupervisorChange("x", &sup).OK)
	require.True(t, s.ProposeSupervisorChange("y", &sup).OK)

	report := s.CommitAll(context.Background())
	require.Equal(t, 1, report.SuccessCount)
	require.Equal(t, 1, report.FailureCount)
	require.Equal(t, []string{"x"}, report.Committed)
	require.Contains(t, report.Failures["y"], "backend said no")

	require.Equal(t, StateClean, s.State("x"))
	require.Equal(t, StateFailed, s.State("y"))
	require.True(t, s.HasPendingChanges())

	// x is confirmed; y's confirmed value is unchanged but its overlay
	// still carries the pending move.
	require.Equal(t, "s", supervisorOf(t, s.BaseGraph(), "x"))
	require.Equal(t, "", supervisorOf(t, s.BaseGraph(), "y"))
	require.Equal(t, "s", supervisorOf(t, s.OverlayGraph(), "y"))

	// Retry succeeds once the backend recovers.
	up.mu.Lock()
	delete(up.failFor, "y")
	up.mu.Unlock()
	report = s.CommitAll(context.Background())
	require.Equal(t, 1, report.SuccessCount)
	require.False(t, s.HasPendingChanges())
}

// Preview-adds are validated at commit time; an inadmissible conversion is
// reported as a failure without blocking the rest.
func TestSession_CommitAllRejectsInvalidPreview(t *testing.T) {
	g := mustGraph(t, member("a", ""), member("b", "a"))
	up := &fakeUpdater{}
	s := NewSession(g, up)

	// Proposing a as a subordinate of b would close a cycle; the preview
	// itself is allowed, the conversion is not.
	require.NoError(t, s.ProposeAddSubordinate("b", "a"))

	report := s.CommitAll(context.Background())
	require.Equal(t, 0, report.SuccessCount)
	require.Equal(t, 1, report.FailureCount)
	require.Equal(t, ReasonWouldCycle, report.Failures["a"])
	require.Zero(t, up.callCount())
	require.False(t, s.HasPendingChanges())
}

// A rollback while a commit is in flight must not cancel the call, and the
// late result must not resurrect cleared overlay state or silently mutate
// the reverted snapshot.
func TestSession_LateCommitResultAfterRollbackIsNoOp(t *testing.T) {
	g := mustGraph(t, member("s", ""), member("x", ""))
	up := &fakeUpdater{gate: make(chan struct{})}
	s := NewSession(g, up)

	sup := "s"
	require.True(t, s.ProposeSupervisorChange("x", &sup).OK)

	done := make(chan CommitReport, 1)
	go func() { done <- s.CommitAll(context.Background()) }()

	// Wait until the member is marked in flight, then roll back.
	require.Eventually(t, func() bool { return s.State("x") == StateCommitting },
		waitTimeout, waitTick)
	s.RollbackAll()

	close(up.gate)
	report := <-done

	// The call itself completed and is reported.
	require.Equal(t, 1, report.SuccessCount)

	// But the session is fully reverted: no pending state, no snapshot
	// mutation from the stale success.
	require.False(t, s.HasPendingChanges())
	require.Equal(t, StateClean, s.State("x"))
	require.Equal(t, "", supervisorOf(t, s.BaseGraph(), "x"))
}

// Any sequence of individually validated proposals keeps the overlay
// acyclic: every ancestor walk terminates.
func TestSession_AcyclicityInvariantUnderEditSequences(t *testing.T) {
	members := []Member{
		member("r", ""), member("a", "r"), member("b", "r"),
		member("c", "a"), member("d", "a"), member("e", "b"), member("f", "c"),
	}
	g := mustGraph(t, members...)
	s := NewSession(g, &fakeUpdater{})

	// Every member tries to move under every other member; only the
	// admissible moves land.
	for _, m := range members {
		for _, target := range members {
			tid := target.ID
			s.ProposeSupervisorChange(m.ID, &tid)
		}
	}

	overlay := s.OverlayGraph()
	for _, m := range overlay.Members() {
		_, err := overlay.AncestorsOf(m.ID)
		require.NoError(t, err, "cycle reached member %s", m.ID)
	}
}
