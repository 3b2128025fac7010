package hierarchy

import "math"

// Drop-zone geometry: a release counts as targeting a node when the pointer
// is over the card itself or in a band immediately below it, and only
// within a bounded search radius of the card center.
const (
	DropBandHeight   = 48.0
	DropSearchRadius = 200.0
)

// NodeBox is the screen-space bounding box of one rendered node, supplied
// by the drawing surface at drop time.
type NodeBox struct {
	MemberID string
	X        float64
	Y        float64
	Width    float64
	Height   float64
}

// ToDrawing merges the session's base graph with its overlay and produces
// the node/edge lists for the drawing surface. Pending edits override
// stored supervisors; preview-added subordinates appear as provisional
// edges. filter, when non-nil, restricts the drawing to a subset of
// members; edges to excluded members are dropped, not redirected.
func ToDrawing(s *Session, filter map[string]bool) ([]LayoutNode, []LayoutEdge) {
	g := s.OverlayGraph()
	nodes, edges := LayoutFiltered(g, filter)

	visible := func(id string) bool {
		if filter == nil {
			return true
		}
		return filter[id]
	}

	for _, pair := range s.previewPairsSnapshot() {
		sup, cand := pair[0], pair[1]
		if !visible(sup) || !visible(cand) {
			continue
		}
		if m, ok := g.Member(cand); ok && !m.IsRoot() && *m.SupervisorID == sup {
			continue // already a confirmed edge
		}
		edges = append(edges, LayoutEdge{SupervisorID: sup, SubordinateID: cand, Provisional: true})
	}
	return nodes, edges
}

func (s *Session) previewPairsSnapshot() [][2]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previewPairs()
}

// DecodeDrop maps a pointer release back into a hierarchy-edit intent: the
// nearest node whose drop zone contains the pointer becomes the proposed
// new supervisor. Returns nil when nothing qualifies, in which case the
// caller leaves the hierarchy unchanged and restores the dragged node's
// prior position. The dragged member's own box never qualifies.
func DecodeDrop(p Point, candidateMemberID string, boxes []NodeBox) *string {
	var best *NodeBox
	bestDist := math.Inf(1)

	for i := range boxes {
		box := boxes[i]
		if box.MemberID == candidateMemberID {
			continue
		}
		if p.X < box.X || p.X > box.X+box.Width {
			continue
		}
		if p.Y < box.Y || p.Y > box.Y+box.Height+DropBandHeight {
			continue
		}
		cx := box.X + box.Width/2
		cy := box.Y + box.Height/2
		d := math.Hypot(p.X-cx, p.Y-cy)
		if d > DropSearchRadius {
			continue
		}
		if d < bestDist {
			bestDist = d
			best = &boxes[i]
		}
	}

	if best == nil {
		return nil
	}
	id := best.MemberID
	return &id
}
