package services

import (
	"errors"
	"fmt"

	"github.com/shirayuki/taskboard/internal/models"
	"github.com/shirayuki/taskboard/internal/repository"
	"gorm.io/gorm"
)

// MilestoneService provides business logic for milestones.
type MilestoneService struct {
	milestoneRepo repository.MilestoneRepository
	taskRepo      repository.TaskRepository
}

// NewMilestoneService creates a new MilestoneService.
func NewMilestoneService(milestoneRepo repository.MilestoneRepository, taskRepo repository.TaskRepository) *MilestoneService {
	return &MilestoneService{
		milestoneRepo: milestoneRepo,
		taskRepo:      taskRepo,
	}
}

// CreateMilestone creates a milestone in the project. The name must be
// unique within the project.
func (s *MilestoneService) CreateMilestone(name, description string, projectID uint64) (*models.Milestone, error) {
	exists, err := s.milestoneRepo.NameExists(projectID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check milestone name: %w", err)
	}
	if exists {
		return nil, &DuplicateNameError{Kind: "milestone", Name: name}
	}

	milestone := &models.Milestone{
		ProjectID:   projectID,
		Name:        name,
		Description: description,
	}

	if err := s.milestoneRepo.Create(milestone); err != nil {
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}

	return milestone, nil
}

// ListMilestones returns all milestones in the project.
func (s *MilestoneService) ListMilestones(projectID uint64) ([]models.Milestone, error) {
	milestones, err := s.milestoneRepo.ListByProjectID(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	return milestones, nil
}

// AssignMilestone sets or clears a task's milestone. A nil milestoneID
// unassigns; unassigning an unassigned task is a no-op. Returns the task
// with its milestone updated.
func (s *MilestoneService) AssignMilestone(milestoneID *uint64, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &InvalidReferenceError{Kind: "task", ID: taskID}
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if milestoneID != nil {
		if _, err := s.milestoneRepo.FindByID(*milestoneID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &InvalidReferenceError{Kind: "milestone", ID: *milestoneID}
			}
			return nil, fmt.Errorf("failed to find milestone: %w", err)
		}
	}

	task.MilestoneID = milestoneID
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to assign milestone: %w", err)
	}

	return task, nil
}

// DeleteMilestone deletes the milestone and every task belonging to it.
// Silently no-ops when the milestone does not exist.
func (s *MilestoneService) DeleteMilestone(milestoneID uint64) error {
	if _, err := s.milestoneRepo.FindByID(milestoneID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find milestone: %w", err)
	}

	if err := s.milestoneRepo.DeleteCascade(milestoneID); err != nil {
		return fmt.Errorf("failed to delete milestone: %w", err)
	}

	return nil
}

// MilestoneByTask returns the milestone a task belongs to, or nil when the
// task has none.
func (s *MilestoneService) MilestoneByTask(taskID uint64) (*models.Milestone, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &InvalidReferenceError{Kind: "task", ID: taskID}
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.MilestoneID == nil {
		return nil, nil
	}

	milestone, err := s.milestoneRepo.FindByID(*task.MilestoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to find milestone: %w", err)
	}
	return milestone, nil
}
