package dto

import (
	"github.com/shirayuki/taskboard/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	StatusID    uint64          `json:"status_id"`
	MilestoneID *uint64         `json:"milestone_id"`
	StartDate   *int64          `json:"start_date"`
	EndDate     *int64          `json:"end_date"`
}

// TaskDependencyDTO represents a dependency edge in API responses
type TaskDependencyDTO struct {
	DependencyID uint64 `json:"dependency_id"`
	DependantID  uint64 `json:"dependant_id"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		Name:        task.Name,
		Description: task.Description,
		Priority:    task.Priority,
		StatusID:    task.StatusID,
		MilestoneID: task.MilestoneID,
		StartDate:   task.StartDate,
		EndDate:     task.EndDate,
	}
}

// ToTaskDependencyDTO converts a TaskDependency model to DTO
func ToTaskDependencyDTO(dep models.TaskDependency) TaskDependencyDTO {
	return TaskDependencyDTO{
		DependencyID: dep.DependencyID,
		DependantID:  dep.DependantID,
	}
}
