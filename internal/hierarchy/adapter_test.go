package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToDrawing_OverlayOverridesStoredSupervisor(t *testing.T) {
	g := mustGraph(t, member("a", ""), member("b", ""), member("x", "a"))
	s := NewSession(g, &fakeUpdater{})

	b := "b"
	require.True(t, s.ProposeSupervisorChange("x", &b).OK)

	_, edges := ToDrawing(s, nil)
	require.Len(t, edges, 1)
	require.Equal(t, "b", edges[0].SupervisorID)
	require.Equal(t, "x", edges[0].SubordinateID)
	require.False(t, edges[0].Provisional)
}

func TestToDrawing_PreviewAddsAreProvisionalEdges(t *testing.T) {
	g := mustGraph(t, member("a", ""), member("b", ""))
	s := NewSession(g, &fakeUpdater{})

	require.NoError(t, s.ProposeAddSubordinate("a", "b"))

	nodes, edges := ToDrawing(s, nil)
	require.Len(t, nodes, 2)
	require.Len(t, edges, 1)
	require.True(t, edges[0].Provisional)
	require.Equal(t, "a", edges[0].SupervisorID)
	require.Equal(t, "b", edges[0].SubordinateID)
}

func TestToDrawing_FilterDropsEdgesToExcludedMembers(t *testing.T) {
	g := mustGraph(t, member("a", ""), member("b", "a"), member("c", "b"))
	s := NewSession(g, &fakeUpdater{})
	require.NoError(t, s.ProposeAddSubordinate("a", "c"))

	filter := map[string]bool{"a": true, "b": true}
	nodes, edges := ToDrawing(s, filter)
	require.Len(t, nodes, 2)
	require.Len(t, edges, 1, "preview edge to excluded member must be dropped")
	require.False(t, edges[0].Provisional)
}

func TestDecodeDrop_HitsNodeAndBandBelow(t *testing.T) {
	boxes := []NodeBox{
		{MemberID: "a", X: 0, Y: 0, Width: NodeWidth, Height: NodeHeight},
		{MemberID: "b", X: 400, Y: 0, Width: NodeWidth, Height: NodeHeight},
	}

	// On the card.
	got := DecodeDrop(Point{X: 110, Y: 48}, "dragged", boxes)
	require.NotNil(t, got)
	require.Equal(t, "a", *got)

	// In the band immediately below the card.
	got = DecodeDrop(Point{X: 410, Y: NodeHeight + DropBandHeight - 1}, "dragged", boxes)
	require.NotNil(t, got)
	require.Equal(t, "b", *got)

	// Below the band: no target.
	require.Nil(t, DecodeDrop(Point{X: 110, Y: NodeHeight + DropBandHeight + 10}, "dragged", boxes))

	// Between the cards: no target.
	require.Nil(t, DecodeDrop(Point{X: 300, Y: 48}, "dragged", boxes))
}

func TestDecodeDrop_IgnoresDraggedNodeOwnBox(t *testing.T) {
	boxes := []NodeBox{
		{MemberID: "x", X: 0, Y: 0, Width: NodeWidth, Height: NodeHeight},
	}
	require.Nil(t, DecodeDrop(Point{X: 10, Y: 10}, "x", boxes))
}

func TestDecodeDrop_PicksNearestWhenZonesOverlap(t *testing.T) {
	// Two cards close enough that the band of the upper one overlaps the
	// top of the lower one.
	boxes := []NodeBox{
		{MemberID: "upper", X: 0, Y: 0, Width: NodeWidth, Height: NodeHeight},
		{MemberID: "lower", X: 0, Y: NodeHeight + 20, Width: NodeWidth, Height: NodeHeight},
	}

	p := Point{X: NodeWidth / 2, Y: NodeHeight + 30}
	got := DecodeDrop(p, "dragged", boxes)
	require.NotNil(t, got)
	require.Equal(t, "lower", *got)
}
