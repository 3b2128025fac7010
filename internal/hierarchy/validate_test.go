package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate_SelfSupervisionAlwaysRejected(t *testing.T) {
	g := mustGraph(t,
		member("ceo", ""),
		member("vp", "ceo"),
		member("dev", "vp"),
	)

	for _, m := range g.Members() {
		id := m.ID
		r := Validate(g, id, &id)
		require.False(t, r.OK)
		require.Equal(t, ReasonSelfSupervision, r.Reason)
	}
}

func TestValidate_MakeRootAlwaysOk(t *testing.T) {
	g := mustGraph(t, member("ceo", ""), member("vp", "ceo"))

	require.True(t, Validate(g, "vp", nil).OK)
	require.True(t, Validate(g, "ceo", nil).OK)

	empty := ""
	require.True(t, Validate(g, "vp", &empty).OK)
}

func TestValidate_UnknownIDs(t *testing.T) {
	g := mustGraph(t, member("a", ""))
	b := "b"

	r := Validate(g, "ghost", &b)
	require.Equal(t, ReasonUnknownMember, r.Reason)

	r = Validate(g, "a", &b)
	require.Equal(t, ReasonUnknownSupervisor, r.Reason)
}

// Moving A under B must be rejected exactly when A is an ancestor of B.
func TestValidate_TransitiveCycleRejected(t *testing.T) {
	g := mustGraph(t,
		member("a", ""),
		member("b", "a"),
		member("c", "b"),
	)

	// c reports transitively to a; a may not move under c.
	c := "c"
	r := Validate(g, "a", &c)
	require.False(t, r.OK)
	require.Equal(t, ReasonWouldCycle, r.Reason)

	// Direct child case.
	b := "b"
	r = Validate(g, "a", &b)
	require.False(t, r.OK)
	require.Equal(t, ReasonWouldCycle, r.Reason)

	// Sideways moves stay fine.
	a := "a"
	require.True(t, Validate(g, "c", &a).OK)
}

// If A may report to B, then in the resulting graph B may not report to A.
func TestValidate_CycleRejectionSymmetry(t *testing.T) {
	g := mustGraph(t,
		member("a", ""),
		member("b", ""),
		member("x", "b"),
	)

	b := "b"
	require.True(t, Validate(g, "a", &b).OK)

	moved := g.Members()
	for i := range moved {
		if moved[i].ID == "a" {
			moved[i].SupervisorID = &b
		}
	}
	g2, err := BuildGraph(moved)
	require.NoError(t, err)

	a := "a"
	r := Validate(g2, "b", &a)
	require.False(t, r.OK)
	require.Equal(t, ReasonWouldCycle, r.Reason)
}

func TestValidate_CorruptDataRejectedNotLooped(t *testing.T) {
	g := mustGraph(t, member("a", "b"), member("b", "a"), member("c", ""))

	a := "a"
	r := Validate(g, "c", &a)
	require.False(t, r.OK)
	require.Equal(t, ReasonDataFault, r.Reason)
}
