package service

import (
	"context"
	"fmt"

	"github.com/Marga-Ghale/ora-hr-backend/internal/models"
	"github.com/Marga-Ghale/ora-hr-backend/internal/repository"
	"github.com/Marga-Ghale/ora-hr-backend/internal/types"
)

// ============================================
// Role Service
// ============================================

type RoleService interface {
	Create(ctx context.Context, req *models.CreateRoleRequest) (*repository.Role, error)
	GetAll(ctx context.Context) ([]*repository.Role, error)
	GetByID(ctx context.Context, id string) (*repository.Role, error)
	Update(ctx context.Context, id string, req *models.UpdateRoleRequest) (*repository.Role, error)
	Delete(ctx context.Context, id string) error
	Assign(ctx context.Context, memberID, roleID string) error
	Unassign(ctx context.Context, memberID, roleID string) error
	GetMemberRoles(ctx context.Context, memberID string) ([]*repository.Role, error)
	HasPermission(ctx context.Context, memberID, permission string) (bool, error)
}

type roleService struct {
	roleRepo   repository.RoleRepository
	memberRepo repository.MemberRepository
}

func NewRoleService(roleRepo repository.RoleRepository, memberRepo repository.MemberRepository) RoleService {
	return &roleService{roleRepo: roleRepo, memberRepo: memberRepo}
}

func validatePermissions(permissions []string) error {
	for _, p := range permissions {
		if !types.IsValidPermission(p) {
			return fmt.Errorf("%w: unknown permission %q", ErrInvalidInput, p)
		}
	}
	return nil
}

func (s *roleService) Create(ctx context.Context, req *models.CreateRoleRequest) (*repository.Role, error) {
	if err := validatePermissions(req.Permissions); err != nil {
		return nil, err
	}

	existing, _ := s.roleRepo.FindByName(ctx, req.Name)
	if existing != nil {
		return nil, ErrConflict
	}

	role := &repository.Role{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}
	return role, nil
}

func (s *roleService) GetAll(ctx context.Context) ([]*repository.Role, error) {
	return s.roleRepo.FindAll(ctx)
}

func (s *roleService) GetByID(ctx context.Context, id string) (*repository.Role, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrNotFound
	}
	return role, nil
}

func (s *roleService) Update(ctx context.Context, id string, req *models.UpdateRoleRequest) (*repository.Role, error) {
	role, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		role.Name = *req.Name
	}
	if req.Description != nil {
		role.Description = req.Description
	}
	if req.Permissions != nil {
		if err := validatePermissions(req.Permissions); err != nil {
			return nil, err
		}
		role.Permissions = req.Permissions
	}

	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return role, nil
}

func (s *roleService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.roleRepo.Delete(ctx, id)
}

func (s *roleService) Assign(ctx context.Context, memberID, roleID string) error {
	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrMemberNotFound
	}
	if _, err := s.GetByID(ctx, roleID); err != nil {
		return err
	}
	return s.roleRepo.Assign(ctx, memberID, roleID)
}

func (s *roleService) Unassign(ctx context.Context, memberID, roleID string) error {
	return s.roleRepo.Unassign(ctx, memberID, roleID)
}

func (s *roleService) GetMemberRoles(ctx context.Context, memberID string) ([]*repository.Role, error) {
	return s.roleRepo.FindByMember(ctx, memberID)
}

func (s *roleService) HasPermission(ctx context.Context, memberID, permission string) (bool, error) {
	return s.roleRepo.MemberHasPermission(ctx, memberID, permission)
}
