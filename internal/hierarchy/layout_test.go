package hierarchy

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func nodesByID(nodes []LayoutNode) map[string]LayoutNode {
	out := make(map[string]LayoutNode, len(nodes))
	for _, n := range nodes {
		out[n.MemberID] = n
	}
	return out
}

// No two nodes at the same depth may have overlapping horizontal spans,
// with at least SiblingGap between them.
func requireNoOverlap(t *testing.T, nodes []LayoutNode) {
	t.Helper()
	byDepth := make(map[int][]LayoutNode)
	for _, n := range nodes {
		byDepth[n.Depth] = append(byDepth[n.Depth], n)
	}
	for depth, level := range byDepth {
		sort.Slice(level, func(i, j int) bool { return level[i].X < level[j].X })
		for i := 1; i < len(level); i++ {
			gap := level[i].X - (level[i-1].X + NodeWidth)
			require.GreaterOrEqual(t, gap, SiblingGap-1e-9,
				"overlap at depth %d between %s and %s", depth, level[i-1].MemberID, level[i].MemberID)
		}
	}
}

func requireParentCentered(t *testing.T, g *Graph, nodes []LayoutNode) {
	t.Helper()
	pos := nodesByID(nodes)
	for _, m := range g.Members() {
		kids := g.SubordinateIDs(m.ID)
		if len(kids) == 0 {
			continue
		}
		first := pos[kids[0]]
		last := pos[kids[len(kids)-1]]
		want := (first.X+last.X+NodeWidth)/2 - NodeWidth/2
		require.InDelta(t, want, pos[m.ID].X, 1e-9, "parent %s not centered", m.ID)
	}
}

func TestLayout_TwoSiblingsUnderRoot(t *testing.T) {
	g := mustGraph(t, member("a", ""), member("b", "a"), member("c", "a"))

	nodes, edges := Layout(g)
	require.Len(t, nodes, 3)
	require.Len(t, edges, 2)

	pos := nodesByID(nodes)
	require.Equal(t, 0, pos["a"].Depth)
	require.Equal(t, 1, pos["b"].Depth)
	require.Equal(t, 1, pos["c"].Depth)
	require.Equal(t, pos["b"].Y, pos["c"].Y)
	require.Greater(t, pos["b"].Y, pos["a"].Y)

	requireNoOverlap(t, nodes)
	requireParentCentered(t, g, nodes)
}

func TestLayout_DepthControlsY(t *testing.T) {
	g := mustGraph(t, member("a", ""), member("b", "a"), member("c", "b"))

	pos := nodesByID(func() []LayoutNode { n, _ := Layout(g); return n }())
	require.Equal(t, BaseY, pos["a"].Y)
	require.Equal(t, BaseY+LevelGap, pos["b"].Y)
	require.Equal(t, BaseY+2*LevelGap, pos["c"].Y)
}

func TestLayout_ParentNeverNarrowerThanCard(t *testing.T) {
	// A single chain: every subtree is exactly one card wide, stacked.
	g := mustGraph(t, member("a", ""), member("b", "a"), member("c", "b"))

	pos := nodesByID(func() []LayoutNode { n, _ := Layout(g); return n }())
	require.InDelta(t, pos["a"].X, pos["b"].X, 1e-9)
	require.InDelta(t, pos["b"].X, pos["c"].X, 1e-9)
}

func TestLayout_UnevenForestProperties(t *testing.T) {
	// Two roots: one deep narrow subtree next to one wide flat subtree,
	// plus a lone root. Exercises re-centering and the root band layout.
	members := []Member{
		member("r1", ""),
		member("a", "r1"),
		member("b", "r1"),
		member("a1", "a"),
		member("a2", "a"),
		member("a3", "a"),
		member("b1", "b"),
		member("r2", ""),
		member("w1", "r2"),
		member("w2", "r2"),
		member("w3", "r2"),
		member("w4", "r2"),
		member("w5", "r2"),
		member("r3", ""),
	}
	g := mustGraph(t, members...)

	nodes, edges := Layout(g)
	require.Len(t, nodes, len(members))
	require.Len(t, edges, len(members)-3)

	requireNoOverlap(t, nodes)
	requireParentCentered(t, g, nodes)

	// Roots occupy disjoint bands left to right in supplied order.
	pos := nodesByID(nodes)
	require.Less(t, pos["r1"].X, pos["r2"].X)
	require.Less(t, pos["r2"].X, pos["r3"].X)
}

func TestLayout_WideFanOutNoOverlap(t *testing.T) {
	members := []Member{member("root", "")}
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("c%d", i)
		members = append(members, member(id, "root"))
		for j := 0; j < i%4; j++ {
			members = append(members, member(fmt.Sprintf("%s-g%d", id, j), id))
		}
	}
	g := mustGraph(t, members...)

	nodes, _ := Layout(g)
	requireNoOverlap(t, nodes)
	requireParentCentered(t, g, nodes)
}

func TestLayout_Deterministic(t *testing.T) {
	g := mustGraph(t,
		member("a", ""), member("b", "a"), member("c", "a"),
		member("d", "b"), member("e", ""), member("f", "e"),
	)

	n1, e1 := Layout(g)
	n2, e2 := Layout(g)
	require.Equal(t, n1, n2)
	require.Equal(t, e1, e2)
}

func TestLayoutFiltered_ExcludesMembersAndTheirEdges(t *testing.T) {
	g := mustGraph(t,
		member("a", ""),
		member("b", "a"),
		member("c", "b"),
		member("d", "a"),
	)

	filter := map[string]bool{"a": true, "b": true, "d": true}
	nodes, edges := LayoutFiltered(g, filter)
	require.Len(t, nodes, 3)
	for _, e := range edges {
		require.True(t, filter[e.SupervisorID], "edge references excluded supervisor")
		require.True(t, filter[e.SubordinateID], "edge references excluded subordinate")
	}
	requireNoOverlap(t, nodes)
}

// A member whose supervisor is filtered out becomes a root of its own band,
// never re-parented.
func TestLayoutFiltered_OrphanedSubtreeBecomesRoot(t *testing.T) {
	g := mustGraph(t,
		member("a", ""),
		member("b", "a"),
		member("c", "b"),
	)

	filter := map[string]bool{"a": true, "c": true}
	nodes, edges := LayoutFiltered(g, filter)
	require.Len(t, nodes, 2)
	require.Empty(t, edges)

	pos := nodesByID(nodes)
	require.Equal(t, 0, pos["a"].Depth)
	require.Equal(t, 0, pos["c"].Depth)
}

func TestLayoutNode_Handles(t *testing.T) {
	n := LayoutNode{MemberID: "a", X: 100, Y: 200}
	require.Equal(t, Point{X: 100 + NodeWidth/2, Y: 200}, n.TopHandle())
	require.Equal(t, Point{X: 100 + NodeWidth/2, Y: 200 + NodeHeight}, n.BottomHandle())
}
