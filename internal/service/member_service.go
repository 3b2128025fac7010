package service

import (
	"context"
	"fmt"
	"log"

	"github.com/Marga-Ghale/ora-hr-backend/internal/config"
	"github.com/Marga-Ghale/ora-hr-backend/internal/db"
	"github.com/Marga-Ghale/ora-hr-backend/internal/email"
	"github.com/Marga-Ghale/ora-hr-backend/internal/models"
	"github.com/Marga-Ghale/ora-hr-backend/internal/notification"
	"github.com/Marga-Ghale/ora-hr-backend/internal/repository"
	"github.com/Marga-Ghale/ora-hr-backend/internal/socket"
	"github.com/Marga-Ghale/ora-hr-backend/internal/types"
)

// ============================================
// Member Service
// ============================================

type MemberService interface {
	GetByID(ctx context.Context, id string) (*repository.Member, error)
	GetAll(ctx context.Context) ([]*repository.Member, error)
	GetByDepartment(ctx context.Context, departmentID string) ([]*repository.Member, error)
	Search(ctx context.Context, query string) ([]*repository.Member, error)
	UpdateProfile(ctx context.Context, memberID string, req *models.UpdateMemberRequest) (*repository.Member, error)
	UpdateMember(ctx context.Context, memberID string, req *models.UpdateMemberRequest) (*repository.Member, error)
	Approve(ctx context.Context, memberID string) (*repository.Member, error)
	Deactivate(ctx context.Context, memberID string) error

	GetDepartments(ctx context.Context) ([]*repository.Department, error)
	CreateDepartment(ctx context.Context, name string) (*repository.Department, error)
	GetStages(ctx context.Context) ([]*repository.Stage, error)
}

type memberService struct {
	memberRepo     repository.MemberRepository
	departmentRepo repository.DepartmentRepository
	notifSvc       *notification.Service
	emailSvc       *email.Service
	broadcaster    *socket.Broadcaster
	redis          *db.RedisDB
	cfg            *config.Config
}

func NewMemberService(
	memberRepo repository.MemberRepository,
	departmentRepo repository.DepartmentRepository,
	notifSvc *notification.Service,
	emailSvc *email.Service,
	broadcaster *socket.Broadcaster,
	redis *db.RedisDB,
	cfg *config.Config,
) MemberService {
	return &memberService{
		memberRepo:     memberRepo,
		departmentRepo: departmentRepo,
		notifSvc:       notifSvc,
		emailSvc:       emailSvc,
		broadcaster:    broadcaster,
		redis:          redis,
		cfg:            cfg,
	}
}

func (s *memberService) GetByID(ctx context.Context, id string) (*repository.Member, error) {
	member, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

func (s *memberService) GetAll(ctx context.Context) ([]*repository.Member, error) {
	return s.memberRepo.FindAll(ctx)
}

func (s *memberService) GetByDepartment(ctx context.Context, departmentID string) ([]*repository.Member, error) {
	return s.memberRepo.FindByDepartment(ctx, departmentID)
}

func (s *memberService) Search(ctx context.Context, query string) ([]*repository.Member, error) {
	if query == "" {
		return nil, ErrInvalidInput
	}
	return s.memberRepo.Search(ctx, query)
}

// UpdateProfile lets a member change their own display fields. Status is
// not self-service.
func (s *memberService) UpdateProfile(ctx context.Context, memberID string, req *models.UpdateMemberRequest) (*repository.Member, error) {
	if req.Status != nil {
		return nil, ErrForbidden
	}
	return s.applyUpdate(ctx, memberID, req)
}

// UpdateMember is the admin variant; it may also change status.
func (s *memberService) UpdateMember(ctx context.Context, memberID string, req *models.UpdateMemberRequest) (*repository.Member, error) {
	if req.Status != nil && !types.IsValidMemberStatus(*req.Status) {
		return nil, ErrInvalidInput
	}
	return s.applyUpdate(ctx, memberID, req)
}

func (s *memberService) applyUpdate(ctx context.Context, memberID string, req *models.UpdateMemberRequest) (*repository.Member, error) {
	member, err := s.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		member.Name = *req.Name
	}
	if req.JobTitle != nil {
		member.JobTitle = req.JobTitle
	}
	if req.Status != nil {
		member.Status = *req.Status
	}
	if req.DepartmentID != nil {
		member.DepartmentID = req.DepartmentID
	}
	if req.StageID != nil {
		member.StageID = req.StageID
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	s.invalidateRoster(ctx)
	return member, nil
}

// Approve activates a pending registration and welcomes the member.
func (s *memberService) Approve(ctx context.Context, memberID string) (*repository.Member, error) {
	member, err := s.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member.Status != types.MemberPendingApproval {
		return nil, ErrConflict
	}

	if err := s.memberRepo.UpdateStatus(ctx, memberID, types.MemberActive); err != nil {
		return nil, fmt.Errorf("failed to approve member: %w", err)
	}
	member.Status = types.MemberActive

	s.invalidateRoster(ctx)

	if s.notifSvc != nil {
		if err := s.notifSvc.SendMemberApproved(ctx, memberID); err != nil {
			log.Printf("[Member] Failed to notify approved member %s: %v", memberID, err)
		}
	}
	if s.emailSvc != nil {
		go func() {
			if err := s.emailSvc.SendAccountApproved(member.Email, email.AccountApprovedData{
				Name:     member.Name,
				LoginURL: s.cfg.FrontendURL + "/login",
			}); err != nil {
				log.Printf("[Member] Failed to email approved member %s: %v", memberID, err)
			}
		}()
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastMemberStatusChanged(memberID, types.MemberActive)
	}

	return member, nil
}

// Deactivate marks a member inactive and revokes their sessions. Their
// subordinates keep their supervisor pointer; reassignment is an explicit
// org-edit decision, not a side effect.
func (s *memberService) Deactivate(ctx context.Context, memberID string) error {
	member, err := s.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if member.Status == types.MemberInactive {
		return nil
	}

	if err := s.memberRepo.UpdateStatus(ctx, memberID, types.MemberInactive); err != nil {
		return fmt.Errorf("failed to deactivate member: %w", err)
	}
	if err := s.memberRepo.DeleteMemberRefreshTokens(ctx, memberID); err != nil {
		log.Printf("[Member] Failed to revoke tokens for %s: %v", memberID, err)
	}

	s.invalidateRoster(ctx)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMemberStatusChanged(memberID, types.MemberInactive)
	}
	return nil
}

func (s *memberService) GetDepartments(ctx context.Context) ([]*repository.Department, error) {
	return s.departmentRepo.FindAll(ctx)
}

func (s *memberService) CreateDepartment(ctx context.Context, name string) (*repository.Department, error) {
	department := &repository.Department{Name: name}
	if err := s.departmentRepo.Create(ctx, department); err != nil {
		return nil, fmt.Errorf("failed to create department: %w", err)
	}
	return department, nil
}

func (s *memberService) GetStages(ctx context.Context) ([]*repository.Stage, error) {
	return s.departmentRepo.FindAllStages(ctx)
}

func (s *memberService) invalidateRoster(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.InvalidateRoster(ctx); err != nil {
		log.Printf("[Member] Failed to invalidate roster caches: %v", err)
	}
}
