package services

import (
	"errors"
	"fmt"

	"github.com/shirayuki/taskboard/internal/models"
	"github.com/shirayuki/taskboard/internal/repository"
	"gorm.io/gorm"
)

// StatusService provides business logic for kanban columns.
type StatusService struct {
	statusRepo repository.StatusRepository
}

// NewStatusService creates a new StatusService.
func NewStatusService(statusRepo repository.StatusRepository) *StatusService {
	return &StatusService{statusRepo: statusRepo}
}

// CreateStatus creates a status in the project. The name must be unique
// within the project.
func (s *StatusService) CreateStatus(name, description string, projectID uint64) (*models.Status, error) {
	exists, err := s.statusRepo.NameExists(projectID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check status name: %w", err)
	}
	if exists {
		return nil, &DuplicateNameError{Kind: "status", Name: name}
	}

	status := &models.Status{
		ProjectID:   projectID,
		Name:        name,
		Description: description,
	}

	if err := s.statusRepo.Create(status); err != nil {
		return nil, fmt.Errorf("failed to create status: %w", err)
	}

	return status, nil
}

// RenameStatus renames a status, keeping names unique within the project.
func (s *StatusService) RenameStatus(statusID uint64, newName string) (*models.Status, error) {
	status, err := s.statusRepo.FindByID(statusID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &InvalidReferenceError{Kind: "status", ID: statusID}
		}
		return nil, fmt.Errorf("failed to find status: %w", err)
	}

	exists, err := s.statusRepo.NameExists(status.ProjectID, newName)
	if err != nil {
		return nil, fmt.Errorf("failed to check status name: %w", err)
	}
	if exists {
		return nil, &DuplicateNameError{Kind: "status", Name: newName}
	}

	status.Name = newName
	if err := s.statusRepo.Update(status); err != nil {
		return nil, fmt.Errorf("failed to rename status: %w", err)
	}

	return status, nil
}

// ListStatuses returns all statuses in the project.
func (s *StatusService) ListStatuses(projectID uint64) ([]models.Status, error) {
	statuses, err := s.statusRepo.ListByProjectID(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}
	return statuses, nil
}

// DeleteStatus deletes a status after migrating every one of its tasks to
// the migration status. Returns the migrated tasks so the caller can patch
// its projection without re-querying. Atomic: either all tasks move and
// the status is gone, or nothing changed.
func (s *StatusService) DeleteStatus(statusID, migrationStatusID uint64) ([]models.Task, error) {
	if _, err := s.statusRepo.FindByID(statusID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &InvalidReferenceError{Kind: "status", ID: statusID}
		}
		return nil, fmt.Errorf("failed to find status: %w", err)
	}

	if _, err := s.statusRepo.FindByID(migrationStatusID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &InvalidReferenceError{Kind: "status", ID: migrationStatusID}
		}
		return nil, fmt.Errorf("failed to find migration status: %w", err)
	}

	moved, err := s.statusRepo.DeleteMigratingTasks(statusID, migrationStatusID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete status: %w", err)
	}

	return moved, nil
}
