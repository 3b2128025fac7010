package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Marga-Ghale/ora-hr-backend/internal/models"
	"github.com/Marga-Ghale/ora-hr-backend/internal/notification"
	"github.com/Marga-Ghale/ora-hr-backend/internal/repository"
	"github.com/Marga-Ghale/ora-hr-backend/internal/socket"
	"github.com/Marga-Ghale/ora-hr-backend/internal/types"
	"github.com/shopspring/decimal"
)

// ============================================
// Assessment Service
// ============================================

type AssessmentService interface {
	CreateCycle(ctx context.Context, req *models.CreateCycleRequest) (*repository.ReviewCycle, error)
	GetCycles(ctx context.Context) ([]*repository.ReviewCycle, error)
	GetOpenCycle(ctx context.Context) (*repository.ReviewCycle, error)
	UpdateCycleStatus(ctx context.Context, cycleID, status string) (*repository.ReviewCycle, error)

	SaveDraft(ctx context.Context, memberID string, req *models.SaveAssessmentRequest) (*repository.Assessment, []*repository.AssessmentItem, error)
	Submit(ctx context.Context, memberID, cycleID string) (*repository.Assessment, error)
	GetOwn(ctx context.Context, memberID, cycleID string) (*repository.Assessment, []*repository.AssessmentItem, error)
	GetByID(ctx context.Context, requesterID, assessmentID string) (*repository.Assessment, []*repository.AssessmentItem, error)
	MarkReviewed(ctx context.Context, supervisorID, assessmentID string) (*repository.Assessment, error)
}

type assessmentService struct {
	assessmentRepo repository.AssessmentRepository
	memberRepo     repository.MemberRepository
	org            OrgService
	notifSvc       *notification.Service
	broadcaster    *socket.Broadcaster
}

func NewAssessmentService(
	assessmentRepo repository.AssessmentRepository,
	memberRepo repository.MemberRepository,
	org OrgService,
	notifSvc *notification.Service,
	broadcaster *socket.Broadcaster,
) AssessmentService {
	return &assessmentService{
		assessmentRepo: assessmentRepo,
		memberRepo:     memberRepo,
		org:            org,
		notifSvc:       notifSvc,
		broadcaster:    broadcaster,
	}
}

var (
	scoreMin = decimal.Zero
	scoreMax = decimal.NewFromInt(5)
)

// validateScore parses and range-checks one item score.
func validateScore(raw string) error {
	score, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("%w: score %q is not a number", ErrInvalidInput, raw)
	}
	if score.LessThan(scoreMin) || score.GreaterThan(scoreMax) {
		return fmt.Errorf("%w: score %s out of range [0, 5]", ErrInvalidInput, score)
	}
	return nil
}

func (s *assessmentService) CreateCycle(ctx context.Context, req *models.CreateCycleRequest) (*repository.ReviewCycle, error) {
	if !req.ClosesAt.After(req.OpensAt) {
		return nil, fmt.Errorf("%w: cycle must close after it opens", ErrInvalidInput)
	}

	cycle := &repository.ReviewCycle{
		Name:     req.Name,
		Status:   types.CyclePlanned,
		OpensAt:  req.OpensAt,
		ClosesAt: req.ClosesAt,
	}
	if err := s.assessmentRepo.CreateCycle(ctx, cycle); err != nil {
		return nil, fmt.Errorf("failed to create cycle: %w", err)
	}
	return cycle, nil
}

func (s *assessmentService) GetCycles(ctx context.Context) ([]*repository.ReviewCycle, error) {
	return s.assessmentRepo.FindAllCycles(ctx)
}

func (s *assessmentService) GetOpenCycle(ctx context.Context) (*repository.ReviewCycle, error) {
	cycle, err := s.assessmentRepo.FindOpenCycle(ctx)
	if err != nil {
		return nil, err
	}
	if cycle == nil {
		return nil, ErrNotFound
	}
	return cycle, nil
}

// UpdateCycleStatus transitions a cycle; opening fans out notifications to
// every active member.
func (s *assessmentService) UpdateCycleStatus(ctx context.Context, cycleID, status string) (*repository.ReviewCycle, error) {
	if !types.IsValidCycleStatus(status) {
		return nil, ErrInvalidInput
	}

	cycle, err := s.assessmentRepo.FindCycleByID(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	if cycle == nil {
		return nil, ErrNotFound
	}

	if err := s.assessmentRepo.UpdateCycleStatus(ctx, cycleID, status); err != nil {
		return nil, fmt.Errorf("failed to update cycle: %w", err)
	}
	cycle.Status = status

	payload := map[string]interface{}{
		"cycleId": cycle.ID,
		"name":    cycle.Name,
		"status":  cycle.Status,
	}

	switch status {
	case types.CycleOpen:
		if s.broadcaster != nil {
			s.broadcaster.BroadcastCycleOpened(payload)
		}
		if s.notifSvc != nil {
			go s.notifyCycleOpened(cycle)
		}
	case types.CycleClosed:
		if s.broadcaster != nil {
			s.broadcaster.BroadcastCycleClosed(payload)
		}
	}

	return cycle, nil
}

func (s *assessmentService) notifyCycleOpened(cycle *repository.ReviewCycle) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	members, err := s.memberRepo.FindAll(ctx)
	if err != nil {
		log.Printf("[Assessment] Failed to load roster for cycle notifications: %v", err)
		return
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		if m.Status == types.MemberActive {
			ids = append(ids, m.ID)
		}
	}
	if err := s.notifSvc.SendCycleOpened(ctx, ids, cycle.Name, cycle.ID); err != nil {
		log.Printf("[Assessment] Cycle notifications incomplete: %v", err)
	}
}

// SaveDraft creates or updates the member's draft for the cycle. Submitted
// assessments are immutable.
func (s *assessmentService) SaveDraft(ctx context.Context, memberID string, req *models.SaveAssessmentRequest) (*repository.Assessment, []*repository.AssessmentItem, error) {
	cycle, err := s.assessmentRepo.FindCycleByID(ctx, req.CycleID)
	if err != nil {
		return nil, nil, err
	}
	if cycle == nil {
		return nil, nil, ErrNotFound
	}
	if cycle.Status != types.CycleOpen {
		return nil, nil, ErrCycleNotOpen
	}

	for _, item := range req.Items {
		if err := validateScore(item.Score); err != nil {
			return nil, nil, err
		}
	}

	assessment, err := s.assessmentRepo.FindByMemberAndCycle(ctx, memberID, req.CycleID)
	if err != nil {
		return nil, nil, err
	}

	if assessment == nil {
		assessment = &repository.Assessment{
			MemberID: memberID,
			CycleID:  req.CycleID,
			Status:   types.AssessmentDraft,
			Summary:  req.Summary,
		}
		if err := s.assessmentRepo.Create(ctx, assessment); err != nil {
			return nil, nil, fmt.Errorf("failed to create assessment: %w", err)
		}
	} else {
		if assessment.Status != types.AssessmentDraft {
			return nil, nil, ErrAlreadySubmitted
		}
		assessment.Summary = req.Summary
		if err := s.assessmentRepo.Update(ctx, assessment); err != nil {
			return nil, nil, fmt.Errorf("failed to update assessment: %w", err)
		}
	}

	items := make([]*repository.AssessmentItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, &repository.AssessmentItem{
			Criterion: item.Criterion,
			Score:     item.Score,
			Comment:   item.Comment,
		})
	}
	if err := s.assessmentRepo.ReplaceItems(ctx, assessment.ID, items); err != nil {
		return nil, nil, fmt.Errorf("failed to save assessment items: %w", err)
	}

	return assessment, items, nil
}

// Submit finalizes the draft and notifies the member's supervisor.
func (s *assessmentService) Submit(ctx context.Context, memberID, cycleID string) (*repository.Assessment, error) {
	assessment, err := s.assessmentRepo.FindByMemberAndCycle(ctx, memberID, cycleID)
	if err != nil {
		return nil, err
	}
	if assessment == nil {
		return nil, ErrNotFound
	}
	if assessment.Status != types.AssessmentDraft {
		return nil, ErrAlreadySubmitted
	}

	items, err := s.assessmentRepo.FindItems(ctx, assessment.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cannot submit an assessment without items", ErrInvalidInput)
	}

	now := time.Now()
	assessment.Status = types.AssessmentSubmitted
	assessment.SubmittedAt = &now
	if err := s.assessmentRepo.Update(ctx, assessment); err != nil {
		return nil, fmt.Errorf("failed to submit assessment: %w", err)
	}

	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err == nil && member != nil && member.SupervisorID != nil {
		if s.notifSvc != nil {
			if err := s.notifSvc.SendAssessmentSubmitted(ctx, *member.SupervisorID, member.Name, assessment.ID); err != nil {
				log.Printf("[Assessment] Failed to notify supervisor: %v", err)
			}
		}
		if s.broadcaster != nil {
			s.broadcaster.NotifyAssessmentSubmitted(*member.SupervisorID, map[string]interface{}{
				"assessmentId": assessment.ID,
				"memberId":     memberID,
				"memberName":   member.Name,
				"cycleId":      cycleID,
			})
		}
	}

	return assessment, nil
}

func (s *assessmentService) GetOwn(ctx context.Context, memberID, cycleID string) (*repository.Assessment, []*repository.AssessmentItem, error) {
	assessment, err := s.assessmentRepo.FindByMemberAndCycle(ctx, memberID, cycleID)
	if err != nil {
		return nil, nil, err
	}
	if assessment == nil {
		return nil, nil, ErrNotFound
	}
	items, err := s.assessmentRepo.FindItems(ctx, assessment.ID)
	if err != nil {
		return nil, nil, err
	}
	return assessment, items, nil
}

// GetByID enforces visibility: the owner and their direct supervisor may
// read an assessment. Broader access goes through review.manage at the
// handler layer.
func (s *assessmentService) GetByID(ctx context.Context, requesterID, assessmentID string) (*repository.Assessment, []*repository.AssessmentItem, error) {
	assessment, err := s.assessmentRepo.FindByID(ctx, assessmentID)
	if err != nil {
		return nil, nil, err
	}
	if assessment == nil {
		return nil, nil, ErrNotFound
	}

	if assessment.MemberID != requesterID {
		isSupervisor, err := s.org.IsDirectSubordinate(ctx, requesterID, assessment.MemberID)
		if err != nil {
			return nil, nil, err
		}
		if !isSupervisor {
			return nil, nil, ErrForbidden
		}
	}

	items, err := s.assessmentRepo.FindItems(ctx, assessment.ID)
	if err != nil {
		return nil, nil, err
	}
	return assessment, items, nil
}

// MarkReviewed lets the direct supervisor close out a submitted assessment.
func (s *assessmentService) MarkReviewed(ctx context.Context, supervisorID, assessmentID string) (*repository.Assessment, error) {
	assessment, err := s.assessmentRepo.FindByID(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if assessment == nil {
		return nil, ErrNotFound
	}
	if assessment.Status != types.AssessmentSubmitted {
		return nil, fmt.Errorf("%w: only submitted assessments can be reviewed", ErrInvalidInput)
	}

	isSupervisor, err := s.org.IsDirectSubordinate(ctx, supervisorID, assessment.MemberID)
	if err != nil {
		return nil, err
	}
	if !isSupervisor {
		return nil, ErrNotSubordinate
	}

	assessment.Status = types.AssessmentReviewed
	if err := s.assessmentRepo.Update(ctx, assessment); err != nil {
		return nil, fmt.Errorf("failed to mark assessment reviewed: %w", err)
	}
	return assessment, nil
}
