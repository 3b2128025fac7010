package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func member(id, supervisorID string) Member {
	m := Member{ID: id, Name: "Member " + id, EmployeeCode: "E-" + id, Status: "active"}
	if supervisorID != "" {
		m.SupervisorID = &supervisorID
	}
	return m
}

func mustGraph(t *testing.T, members ...Member) *Graph {
	t.Helper()
	g, err := BuildGraph(members)
	require.NoError(t, err)
	return g
}

func TestBuildGraph_DuplicateID(t *testing.T) {
	_, err := BuildGraph([]Member{member("a", ""), member("a", "")})
	require.Error(t, err)

	var dup *DuplicateIDError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "a", dup.ID)
}

func TestGraph_SubordinatesDerivedFromIndex(t *testing.T) {
	g := mustGraph(t,
		member("ceo", ""),
		member("eng", "ceo"),
		member("ops", "ceo"),
		member("dev1", "eng"),
		member("dev2", "eng"),
	)

	subs := g.SubordinatesOf("eng")
	require.Len(t, subs, 2)
	require.Equal(t, "dev1", subs[0].ID)
	require.Equal(t, "dev2", subs[1].ID)
	require.Empty(t, g.SubordinatesOf("dev1"))
	require.Empty(t, g.SubordinatesOf("nobody"))
}

// The maintained reverse index must never diverge from a naive full scan.
func TestGraph_SubordinateIndexMatchesFullScan(t *testing.T) {
	g := mustGraph(t,
		member("r1", ""),
		member("r2", ""),
		member("a", "r1"),
		member("b", "r1"),
		member("c", "a"),
		member("d", "r2"),
		member("e", "d"),
		member("f", "d"),
	)

	for _, m := range g.Members() {
		var scanned []string
		for _, other := range g.Members() {
			if !other.IsRoot() && *other.SupervisorID == m.ID {
				scanned = append(scanned, other.ID)
			}
		}
		require.Equal(t, scanned, append([]string(nil), g.SubordinateIDs(m.ID)...),
			"index diverged for %s", m.ID)
	}
}

func TestGraph_AncestorsOf(t *testing.T) {
	g := mustGraph(t,
		member("ceo", ""),
		member("vp", "ceo"),
		member("lead", "vp"),
		member("dev", "lead"),
	)

	ancestors, err := g.AncestorsOf("dev")
	require.NoError(t, err)
	require.Len(t, ancestors, 3)
	require.Equal(t, "lead", ancestors[0].ID)
	require.Equal(t, "vp", ancestors[1].ID)
	require.Equal(t, "ceo", ancestors[2].ID)

	ancestors, err = g.AncestorsOf("ceo")
	require.NoError(t, err)
	require.Empty(t, ancestors)

	_, err = g.AncestorsOf("ghost")
	require.Error(t, err)
}

func TestGraph_AncestorsOf_SupervisorOutsideSnapshot(t *testing.T) {
	g := mustGraph(t, member("a", "external"), member("b", "a"))

	ancestors, err := g.AncestorsOf("b")
	require.NoError(t, err)
	require.Len(t, ancestors, 1)
	require.Equal(t, "a", ancestors[0].ID)
}

// A cycle in stored data is a data-integrity fault: the walk must abort,
// not loop.
func TestGraph_AncestorsOf_CycleFault(t *testing.T) {
	g := mustGraph(t, member("a", "b"), member("b", "a"), member("c", "a"))

	_, err := g.AncestorsOf("c")
	require.Error(t, err)
	var fault *CycleFaultError
	require.ErrorAs(t, err, &fault)
}

func TestMember_IsRoot(t *testing.T) {
	require.True(t, member("a", "").IsRoot())
	require.False(t, member("a", "b").IsRoot())

	empty := ""
	require.True(t, Member{ID: "a", SupervisorID: &empty}.IsRoot())
}
