package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Marga-Ghale/ora-hr-backend/internal/models"
	"github.com/Marga-Ghale/ora-hr-backend/internal/repository"
	"github.com/stretchr/testify/require"
)

// fakeMemberRepo is an in-memory MemberRepository for service tests.
type fakeMemberRepo struct {
	members map[string]*repository.Member
	version time.Time
}

func newFakeMemberRepo(members ...*repository.Member) *fakeMemberRepo {
	r := &fakeMemberRepo{
		members: make(map[string]*repository.Member),
		version: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	}
	for _, m := range members {
		r.members[m.ID] = m
	}
	return r
}

func (r *fakeMemberRepo) Create(ctx context.Context, member *repository.Member) error {
	r.members[member.ID] = member
	return nil
}

func (r *fakeMemberRepo) FindByID(ctx context.Context, id string) (*repository.Member, error) {
	m, ok := r.members[id]
	if !ok {
		return nil, nil
	}
	copy := *m
	return &copy, nil
}

func (r *fakeMemberRepo) FindByEmail(ctx context.Context, email string) (*repository.Member, error) {
	for _, m := range r.members {
		if m.Email == email {
			copy := *m
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *fakeMemberRepo) FindAll(ctx context.Context) ([]*repository.Member, error) {
	out := make([]*repository.Member, 0, len(r.members))
	for _, m := range r.members {
		copy := *m
		out = append(out, &copy)
	}
	return out, nil
}

func (r *fakeMemberRepo) FindByDepartment(ctx context.Context, departmentID string) ([]*repository.Member, error) {
	var out []*repository.Member
	for _, m := range r.members {
		if m.DepartmentID != nil && *m.DepartmentID == departmentID {
			copy := *m
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) Search(ctx context.Context, query string) ([]*repository.Member, error) {
	return nil, nil
}

func (r *fakeMemberRepo) Update(ctx context.Context, member *repository.Member) error {
	r.members[member.ID] = member
	return nil
}

func (r *fakeMemberRepo) UpdateSupervisor(ctx context.Context, memberID string, supervisorID *string) (*repository.Member, error) {
	m, ok := r.members[memberID]
	if !ok {
		return nil, nil
	}
	m.SupervisorID = supervisorID
	r.version = r.version.Add(time.Second)
	copy := *m
	return &copy, nil
}

func (r *fakeMemberRepo) UpdateStatus(ctx context.Context, memberID, status string) error {
	if m, ok := r.members[memberID]; ok {
		m.Status = status
	}
	return nil
}

func (r *fakeMemberRepo) RosterVersion(ctx context.Context) (time.Time, error) {
	return r.version, nil
}

func (r *fakeMemberRepo) SaveRefreshToken(ctx context.Context, token *repository.RefreshToken) error {
	return nil
}

func (r *fakeMemberRepo) FindRefreshToken(ctx context.Context, token string) (*repository.RefreshToken, error) {
	return nil, nil
}

func (r *fakeMemberRepo) DeleteRefreshToken(ctx context.Context, token string) error {
	return nil
}

func (r *fakeMemberRepo) DeleteMemberRefreshTokens(ctx context.Context, memberID string) error {
	return nil
}

func strp(s string) *string { return &s }

// ceo -> vp -> eng1, eng2; lead reports to ceo
func testRoster() *fakeMemberRepo {
	eng := "dept-eng"
	design := "dept-design"
	return newFakeMemberRepo(
		&repository.Member{ID: "ceo", Name: "CEO", EmployeeCode: "E-1", Status: "active", DepartmentID: &design},
		&repository.Member{ID: "vp", Name: "VP", EmployeeCode: "E-2", Status: "active", SupervisorID: strp("ceo"), DepartmentID: &eng},
		&repository.Member{ID: "eng1", Name: "Eng One", EmployeeCode: "E-3", Status: "active", SupervisorID: strp("vp"), DepartmentID: &eng},
		&repository.Member{ID: "eng2", Name: "Eng Two", EmployeeCode: "E-4", Status: "active", SupervisorID: strp("vp"), DepartmentID: &eng},
		&repository.Member{ID: "lead", Name: "Lead", EmployeeCode: "E-5", Status: "active", SupervisorID: strp("ceo"), DepartmentID: &design},
	)
}

func TestValidateMoveRejectsCycle(t *testing.T) {
	svc := NewOrgService(testRoster(), nil, nil, nil)

	// vp under their own subordinate would close a loop
	resp, err := svc.ValidateMove(context.Background(), "vp", strp("eng1"))
	require.NoError(t, err)
	require.False(t, resp.OK)
	require.NotEmpty(t, resp.Reason)

	// moving eng1 under lead is fine
	resp, err = svc.ValidateMove(context.Background(), "eng1", strp("lead"))
	require.NoError(t, err)
	require.True(t, resp.OK)
}

func TestChangeSupervisorPersistsValidMove(t *testing.T) {
	repo := testRoster()
	svc := NewOrgService(repo, nil, nil, nil)

	updated, err := svc.ChangeSupervisor(context.Background(), "ceo", "eng1", strp("lead"))
	require.NoError(t, err)
	require.NotNil(t, updated.SupervisorID)
	require.Equal(t, "lead", *updated.SupervisorID)

	stored, err := repo.FindByID(context.Background(), "eng1")
	require.NoError(t, err)
	require.Equal(t, "lead", *stored.SupervisorID)
}

func TestChangeSupervisorRejectsCycle(t *testing.T) {
	repo := testRoster()
	svc := NewOrgService(repo, nil, nil, nil)

	_, err := svc.ChangeSupervisor(context.Background(), "ceo", "vp", strp("eng2"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidMove))

	// nothing was written
	stored, _ := repo.FindByID(context.Background(), "vp")
	require.Equal(t, "ceo", *stored.SupervisorID)
}

func TestReassignBatchStaleRosterVersion(t *testing.T) {
	repo := testRoster()
	svc := NewOrgService(repo, nil, nil, nil)

	stale := repo.version.Add(-time.Hour)
	_, err := svc.ReassignBatch(context.Background(), "ceo", &models.ReassignBatchRequest{
		Changes:       []models.ReassignmentDTO{{MemberID: "eng1", SupervisorID: strp("lead")}},
		RosterVersion: &stale,
	})
	require.ErrorIs(t, err, ErrRosterChanged)
}

func TestReassignBatchPartialSuccess(t *testing.T) {
	repo := testRoster()
	svc := NewOrgService(repo, nil, nil, nil)

	resp, err := svc.ReassignBatch(context.Background(), "ceo", &models.ReassignBatchRequest{
		Changes: []models.ReassignmentDTO{
			{MemberID: "eng1", SupervisorID: strp("lead")}, // fine
			{MemberID: "vp", SupervisorID: strp("eng2")},   // closes a loop
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, resp.SuccessCount)
	require.Equal(t, 1, resp.FailureCount)
	require.Equal(t, []string{"eng1"}, resp.Committed)
	require.Len(t, resp.Failures, 1)
	require.Equal(t, "vp", resp.Failures[0].MemberID)

	stored, _ := repo.FindByID(context.Background(), "eng1")
	require.Equal(t, "lead", *stored.SupervisorID)
}

func TestReassignBatchSeesEarlierChangesInBatch(t *testing.T) {
	repo := testRoster()
	svc := NewOrgService(repo, nil, nil, nil)

	// Moving vp under lead first makes eng1 -> vp still legal, but
	// eng1 -> lead -> vp must not then accept vp -> eng1.
	resp, err := svc.ReassignBatch(context.Background(), "ceo", &models.ReassignBatchRequest{
		Changes: []models.ReassignmentDTO{
			{MemberID: "vp", SupervisorID: strp("lead")},
			{MemberID: "lead", SupervisorID: strp("vp")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, resp.SuccessCount)
	require.Equal(t, 1, resp.FailureCount)
}

func TestChartDepartmentFilter(t *testing.T) {
	svc := NewOrgService(testRoster(), nil, nil, nil)

	full, err := svc.Chart(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, full.Nodes, 5)
	require.Len(t, full.Edges, 4)

	eng := "dept-eng"
	scoped, err := svc.Chart(context.Background(), &eng)
	require.NoError(t, err)
	require.Len(t, scoped.Nodes, 3)
	for _, n := range scoped.Nodes {
		require.Contains(t, []string{"vp", "eng1", "eng2"}, n.MemberID)
	}
}

func TestHierarchyStats(t *testing.T) {
	svc := NewOrgService(testRoster(), nil, nil, nil)

	stats, err := svc.HierarchyStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, stats.TotalMembers)
	require.Equal(t, 1, stats.RootCount)
	require.Equal(t, 3, stats.MaxDepth)
	require.Equal(t, 2, stats.WidestLevel)
}

func TestIsDirectSubordinate(t *testing.T) {
	svc := NewOrgService(testRoster(), nil, nil, nil)

	ok, err := svc.IsDirectSubordinate(context.Background(), "vp", "eng1")
	require.NoError(t, err)
	require.True(t, ok)

	// grandchildren are not direct reports
	ok, err = svc.IsDirectSubordinate(context.Background(), "ceo", "eng1")
	require.NoError(t, err)
	require.False(t, ok)
}
