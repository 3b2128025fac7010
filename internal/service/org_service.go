package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Marga-Ghale/ora-hr-backend/internal/db"
	"github.com/Marga-Ghale/ora-hr-backend/internal/hierarchy"
	"github.com/Marga-Ghale/ora-hr-backend/internal/models"
	"github.com/Marga-Ghale/ora-hr-backend/internal/notification"
	"github.com/Marga-Ghale/ora-hr-backend/internal/repository"
	"github.com/Marga-Ghale/ora-hr-backend/internal/socket"
)

// ============================================
// Org Service
// ============================================

// OrgService exposes the hierarchy core over the live roster: the chart
// drawing, dry-run validation, single supervisor changes and batch
// reassignments through an edit session.
type OrgService interface {
	RosterGraph(ctx context.Context) (*hierarchy.Graph, error)
	Chart(ctx context.Context, departmentID *string) (*models.ChartResponse, error)
	ValidateMove(ctx context.Context, memberID string, supervisorID *string) (models.ValidateMoveResponse, error)
	ChangeSupervisor(ctx context.Context, actorID, memberID string, supervisorID *string) (*repository.Member, error)
	ReassignBatch(ctx context.Context, actorID string, req *models.ReassignBatchRequest) (*models.ReassignBatchResponse, error)
	HierarchyStats(ctx context.Context) (models.HierarchyStatsDTO, error)
	IsDirectSubordinate(ctx context.Context, supervisorID, memberID string) (bool, error)
}

type orgService struct {
	memberRepo  repository.MemberRepository
	notifSvc    *notification.Service
	broadcaster *socket.Broadcaster
	redis       *db.RedisDB
}

func NewOrgService(
	memberRepo repository.MemberRepository,
	notifSvc *notification.Service,
	broadcaster *socket.Broadcaster,
	redis *db.RedisDB,
) OrgService {
	return &orgService{
		memberRepo:  memberRepo,
		notifSvc:    notifSvc,
		broadcaster: broadcaster,
		redis:       redis,
	}
}

// toCoreMember maps a roster record into the hierarchy graph's member type.
func toCoreMember(m *repository.Member) hierarchy.Member {
	return hierarchy.Member{
		ID:           m.ID,
		Name:         m.Name,
		EmployeeCode: m.EmployeeCode,
		JobTitle:     m.JobTitle,
		Status:       m.Status,
		DepartmentID: m.DepartmentID,
		StageID:      m.StageID,
		RoleIDs:      m.RoleIDs,
		SupervisorID: m.SupervisorID,
	}
}

// repoUpdater adapts the member repository to the session's commit
// collaborator.
type repoUpdater struct {
	repo repository.MemberRepository
}

func (u repoUpdater) UpdateSupervisor(ctx context.Context, memberID string, supervisorID *string) (hierarchy.Member, error) {
	updated, err := u.repo.UpdateSupervisor(ctx, memberID, supervisorID)
	if err != nil {
		return hierarchy.Member{}, err
	}
	if updated == nil {
		return hierarchy.Member{}, ErrMemberNotFound
	}
	return toCoreMember(updated), nil
}

// RosterGraph fetches the full roster and builds the immutable snapshot.
func (s *orgService) RosterGraph(ctx context.Context) (*hierarchy.Graph, error) {
	members, err := s.memberRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	core := make([]hierarchy.Member, 0, len(members))
	for _, m := range members {
		core = append(core, toCoreMember(m))
	}

	graph, err := hierarchy.BuildGraph(core)
	if err != nil {
		return nil, fmt.Errorf("failed to build hierarchy graph: %w", err)
	}
	return graph, nil
}

func chartCacheKey(departmentID *string) string {
	if departmentID == nil || *departmentID == "" {
		return "orgchart:all"
	}
	return "orgchart:dept:" + *departmentID
}

// Chart returns the positioned drawing of the current roster, optionally
// scoped to one department. Cached until the roster changes.
func (s *orgService) Chart(ctx context.Context, departmentID *string) (*models.ChartResponse, error) {
	cacheKey := chartCacheKey(departmentID)
	if s.redis != nil {
		var cached models.ChartResponse
		if err := s.redis.GetCache(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	graph, err := s.RosterGraph(ctx)
	if err != nil {
		return nil, err
	}

	var filter map[string]bool
	if departmentID != nil && *departmentID != "" {
		filter = make(map[string]bool)
		for _, m := range graph.Members() {
			if m.DepartmentID != nil && *m.DepartmentID == *departmentID {
				filter[m.ID] = true
			}
		}
	}

	nodes, edges := hierarchy.LayoutFiltered(graph, filter)

	version, err := s.memberRepo.RosterVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster version: %w", err)
	}

	resp := &models.ChartResponse{
		Nodes:         make([]models.ChartNodeResponse, 0, len(nodes)),
		Edges:         make([]models.ChartEdgeResponse, 0, len(edges)),
		RosterVersion: version,
	}
	for _, n := range nodes {
		m, _ := graph.Member(n.MemberID)
		top := n.TopHandle()
		bottom := n.BottomHandle()
		resp.Nodes = append(resp.Nodes, models.ChartNodeResponse{
			MemberID:     n.MemberID,
			Name:         m.Name,
			JobTitle:     m.JobTitle,
			EmployeeCode: m.EmployeeCode,
			Depth:        n.Depth,
			X:            n.X,
			Y:            n.Y,
			TopHandle:    models.PointDTO{X: top.X, Y: top.Y},
			BottomHandle: models.PointDTO{X: bottom.X, Y: bottom.Y},
		})
	}
	for _, e := range edges {
		resp.Edges = append(resp.Edges, models.ChartEdgeResponse{
			SupervisorID:  e.SupervisorID,
			SubordinateID: e.SubordinateID,
			Provisional:   e.Provisional,
		})
	}

	if s.redis != nil {
		if err := s.redis.SetCache(ctx, cacheKey, resp, 10*time.Minute); err != nil {
			log.Printf("[Org] Failed to cache chart: %v", err)
		}
	}

	return resp, nil
}

// ValidateMove is the dry-run cycle check; it never mutates anything.
func (s *orgService) ValidateMove(ctx context.Context, memberID string, supervisorID *string) (models.ValidateMoveResponse, error) {
	graph, err := s.RosterGraph(ctx)
	if err != nil {
		return models.ValidateMoveResponse{}, err
	}

	result := hierarchy.Validate(graph, memberID, supervisorID)
	return models.ValidateMoveResponse{OK: result.OK, Reason: result.Reason}, nil
}

// ChangeSupervisor re-validates against the current roster before
// persisting. Optimistic client state never bypasses the server check.
func (s *orgService) ChangeSupervisor(ctx context.Context, actorID, memberID string, supervisorID *string) (*repository.Member, error) {
	graph, err := s.RosterGraph(ctx)
	if err != nil {
		return nil, err
	}

	if result := hierarchy.Validate(graph, memberID, supervisorID); !result.OK {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMove, result.Reason)
	}

	updated, err := s.memberRepo.UpdateSupervisor(ctx, memberID, supervisorID)
	if err != nil {
		return nil, fmt.Errorf("failed to update supervisor: %w", err)
	}
	if updated == nil {
		return nil, ErrMemberNotFound
	}

	s.invalidateRoster(ctx)
	s.notifySupervisorChanged(ctx, graph, updated, actorID)

	return updated, nil
}

// ReassignBatch applies a set of supervisor changes through one edit
// session: every change is validated against the overlay (so earlier
// changes in the batch are visible to later ones), then all admissible
// edits are committed concurrently. Partial success is reported, not
// rolled back.
func (s *orgService) ReassignBatch(ctx context.Context, actorID string, req *models.ReassignBatchRequest) (*models.ReassignBatchResponse, error) {
	if req.RosterVersion != nil {
		current, err := s.memberRepo.RosterVersion(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read roster version: %w", err)
		}
		if !current.Equal(*req.RosterVersion) {
			return nil, ErrRosterChanged
		}
	}

	graph, err := s.RosterGraph(ctx)
	if err != nil {
		return nil, err
	}

	session := hierarchy.NewSession(graph, repoUpdater{repo: s.memberRepo})

	rejected := make(map[string]string)
	for _, change := range req.Changes {
		if result := session.ProposeSupervisorChange(change.MemberID, change.SupervisorID); !result.OK {
			rejected[change.MemberID] = result.Reason
		}
	}

	report := session.CommitAll(ctx)

	resp := &models.ReassignBatchResponse{
		SuccessCount: report.SuccessCount,
		FailureCount: report.FailureCount + len(rejected),
		Committed:    report.Committed,
	}
	for memberID, reason := range rejected {
		resp.Failures = append(resp.Failures, models.ReassignFailureDTO{MemberID: memberID, Reason: reason})
	}
	for memberID, reason := range report.Failures {
		resp.Failures = append(resp.Failures, models.ReassignFailureDTO{MemberID: memberID, Reason: reason})
	}

	if report.SuccessCount > 0 {
		s.invalidateRoster(ctx)

		if s.broadcaster != nil {
			s.broadcaster.BroadcastOrgChartUpdated(report.SuccessCount, actorID)
		}
		for _, memberID := range report.Committed {
			if updated, err := s.memberRepo.FindByID(ctx, memberID); err == nil && updated != nil {
				s.notifySupervisorChanged(ctx, graph, updated, actorID)
			}
		}
	}

	version, err := s.memberRepo.RosterVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster version: %w", err)
	}
	resp.RosterVersion = version

	return resp, nil
}

// HierarchyStats derives structure aggregates from the placed chart.
func (s *orgService) HierarchyStats(ctx context.Context) (models.HierarchyStatsDTO, error) {
	graph, err := s.RosterGraph(ctx)
	if err != nil {
		return models.HierarchyStatsDTO{}, err
	}

	nodes, _ := hierarchy.Layout(graph)

	stats := models.HierarchyStatsDTO{TotalMembers: graph.Len()}
	levelCounts := make(map[int]int)
	for _, n := range nodes {
		levelCounts[n.Depth]++
		if n.Depth == 0 {
			stats.RootCount++
		}
		if n.Depth+1 > stats.MaxDepth {
			stats.MaxDepth = n.Depth + 1
		}
	}
	for _, count := range levelCounts {
		if count > stats.WidestLevel {
			stats.WidestLevel = count
		}
	}
	return stats, nil
}

// IsDirectSubordinate reports whether memberID directly reports to
// supervisorID in the current roster.
func (s *orgService) IsDirectSubordinate(ctx context.Context, supervisorID, memberID string) (bool, error) {
	graph, err := s.RosterGraph(ctx)
	if err != nil {
		return false, err
	}
	for _, id := range graph.SubordinateIDs(supervisorID) {
		if id == memberID {
			return true, nil
		}
	}
	return false, nil
}

func (s *orgService) invalidateRoster(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.InvalidateRoster(ctx); err != nil {
		log.Printf("[Org] Failed to invalidate roster caches: %v", err)
	}
}

// notifySupervisorChanged fans out the realtime and stored notifications
// for one committed move. The pre-move graph supplies the old supervisor.
func (s *orgService) notifySupervisorChanged(ctx context.Context, before *hierarchy.Graph, updated *repository.Member, actorID string) {
	supervisorName := ""
	var supervisorID *string
	if updated.SupervisorID != nil {
		supervisorID = updated.SupervisorID
		if sup, ok := before.Member(*updated.SupervisorID); ok {
			supervisorName = sup.Name
		} else if sup, err := s.memberRepo.FindByID(ctx, *updated.SupervisorID); err == nil && sup != nil {
			supervisorName = sup.Name
		}
	}

	if s.notifSvc != nil {
		if err := s.notifSvc.SendSupervisorChanged(ctx, updated.ID, supervisorName); err != nil {
			log.Printf("[Org] Failed to notify member %s: %v", updated.ID, err)
		}
		if supervisorID != nil {
			if err := s.notifSvc.SendSubordinateAssigned(ctx, *supervisorID, updated.Name, updated.ID); err != nil {
				log.Printf("[Org] Failed to notify supervisor %s: %v", *supervisorID, err)
			}
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastSupervisorChanged(updated.ID, supervisorID, actorID)
	}
}
