package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
)

var (
	ErrInvalidRole    = errors.New("invalid role")
	ErrMemberNotFound = errors.New("project member not found")
)

// MembershipService manages the roles users hold in projects.
type MembershipService struct {
	projectRepo    repository.ProjectRepository
	membershipRepo repository.MembershipRepository
	userRepo       repository.UserRepository
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(projectRepo repository.ProjectRepository, membershipRepo repository.MembershipRepository, userRepo repository.UserRepository) *MembershipService {
	return &MembershipService{
		projectRepo:    projectRepo,
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
	}
}

// GetMembership returns the caller's membership in a project.
func (s *MembershipService) GetMembership(ctx context.Context, projectID, userID uint64) (*models.ProjectMember, error) {
	member, err := s.membershipRepo.Find(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}
	return member, nil
}

// ListMembers lists the members of an existing project.
func (s *MembershipService) ListMembers(ctx context.Context, projectID uint64) ([]models.ProjectMember, error) {
	if err := s.ensureProject(ctx, projectID); err != nil {
		return nil, err
	}

	members, err := s.membershipRepo.ListForProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	return members, nil
}

// AddMember adds the user with the given email to the project, or updates
// the role if the user is already a member.
func (s *MembershipService) AddMember(ctx context.Context, projectID uint64, email string, role models.ProjectRole) (*models.ProjectMember, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	if err := s.ensureProject(ctx, projectID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	member := &models.ProjectMember{
		ProjectID: projectID,
		UserID:    user.ID,
		Role:      role,
	}
	if err := s.membershipRepo.Upsert(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add project member: %w", err)
	}
	member.User = *user

	return member, nil
}

// UpdateMemberRole changes the role of an existing member.
func (s *MembershipService) UpdateMemberRole(ctx context.Context, projectID, userID uint64, role models.ProjectRole) (*models.ProjectMember, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	if err := s.membershipRepo.UpdateRole(ctx, projectID, userID, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to update member role: %w", err)
	}

	return s.GetMembership(ctx, projectID, userID)
}

// RemoveMember removes a user from a project.
func (s *MembershipService) RemoveMember(ctx context.Context, projectID, userID uint64) error {
	if err := s.membershipRepo.Remove(ctx, projectID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to remove project member: %w", err)
	}
	return nil
}

func (s *MembershipService) ensureProject(ctx context.Context, projectID uint64) error {
	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}
	return nil
}
