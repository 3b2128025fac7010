// Package hierarchy implements the organization hierarchy core: the
// supervisor/subordinate graph model, cycle-safety validation, the chart
// layout engine and the optimistic edit session. It is framework-agnostic;
// the API layer binds it through internal/service.
package hierarchy

import "fmt"

// Member is one organization participant in the hierarchy graph.
type Member struct {
	ID           string
	Name         string
	EmployeeCode string
	JobTitle     *string
	Status       string
	DepartmentID *string
	StageID      *string
	RoleIDs      []string

	// SupervisorID is the single optional parent reference. Nil (or empty)
	// means the member is a root. Subordinates are always derived from the
	// full member set, never stored.
	SupervisorID *string
}

// IsRoot reports whether the member has no supervisor.
func (m Member) IsRoot() bool {
	return m.SupervisorID == nil || *m.SupervisorID == ""
}

// DuplicateIDError is returned by BuildGraph when two members share an id.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate member id %q", e.ID)
}

// CycleFaultError reports a cycle already present in the underlying data.
// The invariant enforcement should make this impossible; it is defended
// against so ancestor walks always terminate.
type CycleFaultError struct {
	MemberID string
}

func (e *CycleFaultError) Error() string {
	return fmt.Sprintf("hierarchy data fault: cycle detected while walking ancestors of %q", e.MemberID)
}

// Graph is an immutable snapshot of the roster: a lookup by id plus a
// reverse index from supervisor id to subordinate ids. Build it once per
// roster fetch; edits are layered on top by a Session.
type Graph struct {
	members  map[string]Member
	order    []string
	children map[string][]string
}

// BuildGraph builds the lookup and the reverse index in one linear pass.
// Member order is preserved and used as the stable sibling order by the
// layout engine.
func BuildGraph(members []Member) (*Graph, error) {
	g := &Graph{
		members:  make(map[string]Member, len(members)),
		order:    make([]string, 0, len(members)),
		children: make(map[string][]string),
	}
	for _, m := range members {
		if _, exists := g.members[m.ID]; exists {
			return nil, &DuplicateIDError{ID: m.ID}
		}
		g.members[m.ID] = m
		g.order = append(g.order, m.ID)
		if !m.IsRoot() {
			sup := *m.SupervisorID
			g.children[sup] = append(g.children[sup], m.ID)
		}
	}
	return g, nil
}

// Member returns the member with the given id.
func (g *Graph) Member(id string) (Member, bool) {
	m, ok := g.members[id]
	return m, ok
}

// Members returns all members in the order they were supplied.
func (g *Graph) Members() []Member {
	out := make([]Member, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.members[id])
	}
	return out
}

// Len returns the number of members in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// SubordinateIDs returns the ids of the direct subordinates of the given
// member, in supplied order. Index lookup, not a scan.
func (g *Graph) SubordinateIDs(id string) []string {
	ids := g.children[id]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// SubordinatesOf returns the direct subordinates of the given member.
func (g *Graph) SubordinatesOf(id string) []Member {
	ids := g.children[id]
	out := make([]Member, 0, len(ids))
	for _, cid := range ids {
		out = append(out, g.members[cid])
	}
	return out
}

// AncestorsOf walks supervisor pointers from the given member up to a root,
// nearest first. A walk that revisits a member means the stored data has a
// cycle; the walk aborts with CycleFaultError instead of looping.
func (g *Graph) AncestorsOf(id string) ([]Member, error) {
	m, ok := g.members[id]
	if !ok {
		return nil, fmt.Errorf("unknown member %q", id)
	}

	seen := map[string]bool{m.ID: true}
	var out []Member
	for !m.IsRoot() {
		next, ok := g.members[*m.SupervisorID]
		if !ok {
			// Supervisor outside the snapshot; treat as root.
			break
		}
		if seen[next.ID] {
			return nil, &CycleFaultError{MemberID: id}
		}
		seen[next.ID] = true
		out = append(out, next)
		m = next
	}
	return out, nil
}
