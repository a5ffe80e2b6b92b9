package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shirayuki/taskboard/internal/constants"
	"github.com/shirayuki/taskboard/internal/models"
	"github.com/shirayuki/taskboard/internal/repository"
	"github.com/shirayuki/taskboard/internal/utils"
	"gorm.io/gorm"
)

var (
	// ErrInviteCodeGenerationFailed is returned when no invitation code
	// could be generated.
	ErrInviteCodeGenerationFailed = errors.New("failed to generate invitation code")

	// ErrInvalidRedeemLimit is returned when an invitation is requested
	// with a zero or negative redeem limit.
	ErrInvalidRedeemLimit = errors.New("redeem limit must be positive")
)

// ProjectService provides business logic for projects, memberships and
// invitation codes.
type ProjectService struct {
	projectRepo repository.ProjectRepository

	// now is swappable in tests to control invitation expiry.
	now func() int64
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		now:         func() int64 { return time.Now().Unix() },
	}
}

// CreateProject creates a project owned by the given user. Project names
// are unique among the projects the user is a member of.
func (s *ProjectService) CreateProject(userID, name string) (*models.Project, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if len(strings.TrimSpace(name)) < constants.MinProjectNameLength {
		return nil, ErrProjectNameTooShort
	}

	exists, err := s.projectRepo.NameExistsForUser(userID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check project name: %w", err)
	}
	if exists {
		return nil, &DuplicateNameError{Kind: "project", Name: name}
	}

	now := s.now()
	project := &models.Project{
		Name:         name,
		CreatedAt:    now,
		StartingDate: now,
	}
	owner := &models.ProjectMember{
		UserID:   userID,
		Role:     models.RoleOwner,
		JoinedAt: now,
	}

	if err := s.projectRepo.CreateWithOwner(project, owner); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// ListProjects returns all projects the user is a member of.
func (s *ProjectService) ListProjects(userID string) ([]models.Project, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	projects, err := s.projectRepo.ListByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns a project by ID.
func (s *ProjectService) GetProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &InvalidReferenceError{Kind: "project", ID: projectID}
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// IsMember reports whether the user is a member of the project.
func (s *ProjectService) IsMember(projectID uint64, userID string) (bool, error) {
	_, err := s.projectRepo.FindMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to verify membership: %w", err)
	}
	return true, nil
}

// ListMembers returns all members of the project.
func (s *ProjectService) ListMembers(projectID uint64) ([]models.ProjectMember, error) {
	members, err := s.projectRepo.ListMembers(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// GetInvitationCode returns an invitation code for the project, reusing an
// unexpired one when present. Only the project owner may issue codes.
// Expired codes are purged before anything else happens.
func (s *ProjectService) GetInvitationCode(userID string, projectID uint64, durationSeconds int64, redeemLimit *int) (string, error) {
	if userID == "" {
		return "", ErrUnauthenticated
	}
	if durationSeconds <= 0 {
		durationSeconds = constants.DefaultInviteDurationSeconds
	}
	if redeemLimit != nil && *redeemLimit <= 0 {
		return "", ErrInvalidRedeemLimit
	}

	now := s.now()

	if err := s.projectRepo.DeleteExpiredInvitationCodes(now); err != nil {
		return "", fmt.Errorf("failed to purge expired codes: %w", err)
	}

	member, err := s.projectRepo.FindMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", &UnauthorizedError{Required: models.RoleOwner}
		}
		return "", fmt.Errorf("failed to verify membership: %w", err)
	}
	if member.Role != models.RoleOwner {
		return "", &UnauthorizedError{Required: models.RoleOwner}
	}

	if existing, err := s.projectRepo.FindActiveInvitationCode(projectID, now); err == nil {
		return existing.InvitationCode, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to look up invitation code: %w", err)
	}

	code, err := s.mintUniqueCode()
	if err != nil {
		return "", err
	}

	invitation := &models.InvitationCode{
		InvitationCode: code,
		ProjectID:      projectID,
		CreatedAt:      now,
		ExpiredAt:      now + durationSeconds,
		RedeemLimit:    redeemLimit,
	}

	if err := s.projectRepo.CreateInvitationCode(invitation); err != nil {
		return "", fmt.Errorf("failed to store invitation code: %w", err)
	}

	return code, nil
}

// FindProjectByInvitationCode resolves an invitation code to its project.
// Returns nil without error when the code is unknown or expired.
func (s *ProjectService) FindProjectByInvitationCode(code string) (*models.Project, error) {
	invitation, err := s.projectRepo.FindInvitationCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up invitation code: %w", err)
	}

	if invitation.ExpiredAt <= s.now() {
		return nil, nil
	}

	project, err := s.projectRepo.FindByID(invitation.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	return project, nil
}

// RedeemInvitationCode joins the user to the code's project as a
// COLLABORATOR. Returns false when the code is unknown or expired. A user
// who is already a member redeems successfully as a no-op. Finite redeem
// limits are decremented and the code is deleted when the limit hits zero.
func (s *ProjectService) RedeemInvitationCode(code, userID string) (bool, error) {
	if userID == "" {
		return false, ErrUnauthenticated
	}

	now := s.now()

	if err := s.projectRepo.DeleteExpiredInvitationCodes(now); err != nil {
		return false, fmt.Errorf("failed to purge expired codes: %w", err)
	}

	invitation, err := s.projectRepo.FindInvitationCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up invitation code: %w", err)
	}

	// The purge only removes codes strictly past their expiry; a code is
	// already unusable at the exact expiry second.
	if invitation.ExpiredAt <= now {
		return false, nil
	}

	if _, err := s.projectRepo.FindMember(invitation.ProjectID, userID); err == nil {
		return true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.ProjectMember{
		ProjectID: invitation.ProjectID,
		UserID:    userID,
		Role:      models.RoleCollaborator,
		JoinedAt:  now,
	}

	if err := s.projectRepo.AddMember(member); err != nil {
		return false, fmt.Errorf("failed to add member: %w", err)
	}

	if invitation.RedeemLimit != nil {
		remaining := *invitation.RedeemLimit - 1
		if remaining <= 0 {
			if err := s.projectRepo.DeleteInvitationCode(invitation.InvitationCode); err != nil {
				return false, fmt.Errorf("failed to delete spent invitation code: %w", err)
			}
		} else {
			invitation.RedeemLimit = &remaining
			if err := s.projectRepo.SaveInvitationCode(invitation); err != nil {
				return false, fmt.Errorf("failed to update redeem limit: %w", err)
			}
		}
	}

	return true, nil
}

// mintUniqueCode generates a code and retries on the unlikely collision
// with an existing row.
func (s *ProjectService) mintUniqueCode() (string, error) {
	for {
		code, err := utils.GenerateInviteCode()
		if err != nil {
			return "", ErrInviteCodeGenerationFailed
		}

		_, err = s.projectRepo.FindInvitationCode(code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check invitation code: %w", err)
		}
	}
}
