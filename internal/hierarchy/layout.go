package hierarchy

import "sort"

// Card geometry and spacing constants for the rendered chart. The frontend
// draws fixed-size member cards, so the layout can reason in pixels.
const (
	NodeWidth  = 220.0
	NodeHeight = 96.0
	SiblingGap = 24.0
	LevelGap   = 140.0
	RootGap    = 48.0
	BaseX      = 40.0
	BaseY      = 40.0
)

// Point is a pixel-space coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutNode is the placed position of one member card. X/Y is the top-left
// corner of the card.
type LayoutNode struct {
	MemberID string  `json:"memberId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Depth    int     `json:"depth"`
}

// TopHandle is where the incoming edge from the supervisor attaches.
func (n LayoutNode) TopHandle() Point {
	return Point{X: n.X + NodeWidth/2, Y: n.Y}
}

// BottomHandle is where outgoing edges to subordinates attach.
func (n LayoutNode) BottomHandle() Point {
	return Point{X: n.X + NodeWidth/2, Y: n.Y + NodeHeight}
}

// LayoutEdge connects a supervisor to a direct subordinate. Provisional
// marks preview-only edges (proposed subordinates not yet committed).
type LayoutEdge struct {
	SupervisorID  string `json:"supervisorId"`
	SubordinateID string `json:"subordinateId"`
	Provisional   bool   `json:"provisional,omitempty"`
}

// Layout computes a deterministic, overlap-free placement for the whole
// graph. See LayoutFiltered.
func Layout(g *Graph) ([]LayoutNode, []LayoutEdge) {
	return LayoutFiltered(g, nil)
}

// LayoutFiltered places every member in the filter (all members when filter
// is nil) and routes edges only between included members; edges that
// reference an excluded member are dropped, not redirected.
//
// Placement is post-order width accumulation followed by pre-order position
// assignment: each subtree reserves enough horizontal room for all its
// descendants, children are laid out left-to-right in supplied order, and a
// parent is re-centered over the span of its placed children. Y is purely
// depth-based so levels never collide vertically. A final per-level sweep
// pushes any node rightward that sits too close to its left neighbour; the
// recursive placement already avoids overlap, the sweep is a guarantee.
func LayoutFiltered(g *Graph, filter map[string]bool) ([]LayoutNode, []LayoutEdge) {
	visible := func(id string) bool {
		if filter == nil {
			return true
		}
		return filter[id]
	}

	// Children and roots restricted to the current view. A member whose
	// supervisor is excluded (or missing) becomes a root of its own band.
	childIDs := make(map[string][]string)
	var roots []string
	for _, id := range g.order {
		if !visible(id) {
			continue
		}
		m := g.members[id]
		if m.IsRoot() {
			roots = append(roots, id)
			continue
		}
		sup := *m.SupervisorID
		if _, known := g.members[sup]; known && visible(sup) {
			childIDs[sup] = append(childIDs[sup], id)
		} else {
			roots = append(roots, id)
		}
	}

	// Post-order subtree widths. A leaf is as wide as its card; an internal
	// node is as wide as its children plus gaps, never narrower than its
	// own card. The visiting set keeps a corrupt (cyclic) snapshot from
	// recursing forever.
	widths := make(map[string]float64)
	visiting := make(map[string]bool)
	var subtreeWidth func(id string) float64
	subtreeWidth = func(id string) float64 {
		if w, done := widths[id]; done {
			return w
		}
		if visiting[id] {
			return NodeWidth
		}
		visiting[id] = true
		kids := childIDs[id]
		w := 0.0
		for i, kid := range kids {
			if i > 0 {
				w += SiblingGap
			}
			w += subtreeWidth(kid)
		}
		if w < NodeWidth {
			w = NodeWidth
		}
		visiting[id] = false
		widths[id] = w
		return w
	}

	nodes := make([]LayoutNode, 0, len(g.order))
	index := make(map[string]int)

	var place func(id string, left float64, depth int)
	place = func(id string, left float64, depth int) {
		n := LayoutNode{
			MemberID: id,
			X:        left + (subtreeWidth(id)-NodeWidth)/2,
			Y:        BaseY + float64(depth)*LevelGap,
			Depth:    depth,
		}
		index[id] = len(nodes)
		nodes = append(nodes, n)

		kids := childIDs[id]
		cursor := left
		for _, kid := range kids {
			place(kid, cursor, depth+1)
			cursor += subtreeWidth(kid) + SiblingGap
		}

		// Re-center the parent over its placed children rather than over
		// its allocated span; matters when one subtree is much narrower
		// than a sibling's.
		if len(kids) > 0 {
			first := nodes[index[kids[0]]]
			last := nodes[index[kids[len(kids)-1]]]
			nodes[index[id]].X = (first.X+last.X+NodeWidth)/2 - NodeWidth/2
		}
	}

	cursor := BaseX
	for _, root := range roots {
		place(root, cursor, 0)
		cursor += subtreeWidth(root) + RootGap
	}

	resolveCollisions(nodes)

	// Edges between visible members only. Supplied order keeps the output
	// stable across recomputes.
	var edges []LayoutEdge
	for _, id := range g.order {
		if !visible(id) {
			continue
		}
		for _, kid := range childIDs[id] {
			edges = append(edges, LayoutEdge{SupervisorID: id, SubordinateID: kid})
		}
	}
	return nodes, edges
}

// resolveCollisions sweeps each depth level left-to-right and pushes any
// node rightward that is closer to its left neighbour than one card width
// plus the sibling gap.
func resolveCollisions(nodes []LayoutNode) {
	byDepth := make(map[int][]int)
	for i, n := range nodes {
		byDepth[n.Depth] = append(byDepth[n.Depth], i)
	}
	for _, level := range byDepth {
		sort.SliceStable(level, func(a, b int) bool {
			return nodes[level[a]].X < nodes[level[b]].X
		})
		for i := 1; i < len(level); i++ {
			prev := nodes[level[i-1]].X
			min := prev + NodeWidth + SiblingGap
			if nodes[level[i]].X < min {
				nodes[level[i]].X = min
			}
		}
	}
}
