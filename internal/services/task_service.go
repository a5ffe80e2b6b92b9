package services

import (
	"errors"
	"fmt"

	"github.com/shirayuki/taskboard/internal/models"
	"github.com/shirayuki/taskboard/internal/repository"
	"gorm.io/gorm"
)

// ErrTaskAlreadyAssigned is returned when a user is assigned to a task twice.
var ErrTaskAlreadyAssigned = errors.New("user is already assigned to this task")

// TaskService provides business logic for tasks, assignments and
// dependencies.
type TaskService struct {
	taskRepo      repository.TaskRepository
	statusRepo    repository.StatusRepository
	milestoneRepo repository.MilestoneRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, statusRepo repository.StatusRepository, milestoneRepo repository.MilestoneRepository) *TaskService {
	return &TaskService{
		taskRepo:      taskRepo,
		statusRepo:    statusRepo,
		milestoneRepo: milestoneRepo,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Name        string
	Description string
	Priority    models.Priority
	StatusID    uint64
	MilestoneID *uint64
	StartDate   *int64
	EndDate     *int64
}

// CreateTask creates a task in the column identified by StatusID. Task
// names are unique across the whole project, which is resolved through the
// status. Both dates, when present, must form a valid range.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	status, err := s.statusRepo.FindByID(input.StatusID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &InvalidReferenceError{Kind: "status", ID: input.StatusID}
		}
		return nil, fmt.Errorf("failed to find status: %w", err)
	}

	if err := validateDateRange(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	if input.MilestoneID != nil {
		milestone, err := s.milestoneRepo.FindByID(*input.MilestoneID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &InvalidReferenceError{Kind: "milestone", ID: *input.MilestoneID}
			}
			return nil, fmt.Errorf("failed to find milestone: %w", err)
		}
		// A milestone from another project is as invalid as a missing one.
		if milestone.ProjectID != status.ProjectID {
			return nil, &InvalidReferenceError{Kind: "milestone", ID: *input.MilestoneID}
		}
	}

	exists, err := s.taskRepo.NameExistsInProject(status.ProjectID, input.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check task name: %w", err)
	}
	if exists {
		return nil, &DuplicateNameError{Kind: "task", Name: input.Name}
	}

	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}

	task := &models.Task{
		Name:        input.Name,
		Description: input.Description,
		Priority:    input.Priority,
		StatusID:    input.StatusID,
		MilestoneID: input.MilestoneID,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// TasksByStatus returns all tasks in the given column.
func (s *TaskService) TasksByStatus(statusID uint64) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListByStatusID(statusID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// RenameTask renames a task, keeping names unique across the project.
func (s *TaskService) RenameTask(taskID uint64, newName string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &InvalidReferenceError{Kind: "task", ID: taskID}
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	status, err := s.statusRepo.FindByID(task.StatusID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task's status: %w", err)
	}

	exists, err := s.taskRepo.NameExistsInProject(status.ProjectID, newName)
	if err != nil {
		return nil, fmt.Errorf("failed to check task name: %w", err)
	}
	if exists {
		return nil, &DuplicateNameError{Kind: "task", Name: newName}
	}

	task.Name = newName
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to rename task: %w", err)
	}

	return task, nil
}

// SetTaskDescription replaces a task's description.
func (s *TaskService) SetTaskDescription(taskID uint64, description string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &InvalidReferenceError{Kind: "task", ID: taskID}
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	task.Description = description
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update description: %w", err)
	}

	return task, nil
}

// UpdateTaskDates sets a task's start and end dates. Nil clears a date.
func (s *TaskService) UpdateTaskDates(taskID uint64, startDate, endDate *int64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &InvalidReferenceError{Kind: "task", ID: taskID}
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if err := validateDateRange(startDate, endDate); err != nil {
		return nil, err
	}

	task.StartDate = startDate
	task.EndDate = endDate
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update dates: %w", err)
	}

	return task, nil
}

// SetStatus moves a task to another column and returns the previous status
// ID, which the caller needs to patch its ordered task lists.
func (s *TaskService) SetStatus(taskID, newStatusID uint64) (uint64, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &InvalidReferenceError{Kind: "task", ID: taskID}
		}
		return 0, fmt.Errorf("failed to find task: %w", err)
	}

	if _, err := s.statusRepo.FindByID(newStatusID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &InvalidReferenceError{Kind: "status", ID: newStatusID}
		}
		return 0, fmt.Errorf("failed to find status: %w", err)
	}

	previousStatusID := task.StatusID
	task.StatusID = newStatusID
	if err := s.taskRepo.Update(task); err != nil {
		return 0, fmt.Errorf("failed to set status: %w", err)
	}

	return previousStatusID, nil
}

// DeleteTask deletes a task and everything referencing it. Silently no-ops
// when the task does not exist.
func (s *TaskService) DeleteTask(taskID uint64) error {
	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.DeleteCascade(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// AssignUser assigns a user to a task. Assigning the same pair twice fails.
func (s *TaskService) AssignUser(taskID uint64, userID string) (*models.TaskAssignment, error) {
	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &InvalidReferenceError{Kind: "task", ID: taskID}
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if _, err := s.taskRepo.FindAssignment(taskID, userID); err == nil {
		return nil, ErrTaskAlreadyAssigned
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check assignment: %w", err)
	}

	assignment := &models.TaskAssignment{
		TaskID: taskID,
		UserID: userID,
	}

	if err := s.taskRepo.CreateAssignment(assignment); err != nil {
		return nil, fmt.Errorf("failed to assign user: %w", err)
	}

	return assignment, nil
}

// UnassignUser removes a user's assignment from a task. Silently no-ops
// when the assignment does not exist.
func (s *TaskService) UnassignUser(taskID uint64, userID string) error {
	if _, err := s.taskRepo.FindAssignment(taskID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check assignment: %w", err)
	}

	if err := s.taskRepo.DeleteAssignment(taskID, userID); err != nil {
		return fmt.Errorf("failed to unassign user: %w", err)
	}

	return nil
}

// Assignees returns the user IDs assigned to a task.
func (s *TaskService) Assignees(taskID uint64) ([]string, error) {
	assignees, err := s.taskRepo.ListAssignees(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignees: %w", err)
	}
	return assignees, nil
}

// CreateDependency records that dependant depends on dependency. The edge
// is rejected when it would make either task transitively depend on
// itself, checked by walking the dependency graph.
func (s *TaskService) CreateDependency(dependantID, dependencyID uint64) (*models.TaskDependency, error) {
	for _, id := range []uint64{dependantID, dependencyID} {
		if _, err := s.taskRepo.FindByID(id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &InvalidReferenceError{Kind: "task", ID: id}
			}
			return nil, fmt.Errorf("failed to find task: %w", err)
		}
	}

	cyclic, err := s.wouldCycle(dependantID, dependencyID)
	if err != nil {
		return nil, err
	}
	if cyclic {
		return nil, &CyclicDependencyError{DependantID: dependantID, DependencyID: dependencyID}
	}

	dep := &models.TaskDependency{
		DependencyID: dependencyID,
		DependantID:  dependantID,
	}

	if err := s.taskRepo.CreateDependency(dep); err != nil {
		return nil, fmt.Errorf("failed to create dependency: %w", err)
	}

	return dep, nil
}

// RemoveDependency removes a dependency edge. Silently no-ops when the
// edge does not exist.
func (s *TaskService) RemoveDependency(dependantID, dependencyID uint64) error {
	if _, err := s.taskRepo.FindDependency(dependencyID, dependantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check dependency: %w", err)
	}

	if err := s.taskRepo.DeleteDependency(dependencyID, dependantID); err != nil {
		return fmt.Errorf("failed to remove dependency: %w", err)
	}

	return nil
}

// wouldCycle reports whether adding dependant -> dependency closes a cycle,
// i.e. whether dependant is already reachable from dependency along
// existing depends-on edges. Depth-first over the persisted graph; the
// trivial self-edge falls out of the same check.
func (s *TaskService) wouldCycle(dependantID, dependencyID uint64) (bool, error) {
	if dependantID == dependencyID {
		return true, nil
	}

	visited := map[uint64]struct{}{}
	stack := []uint64{dependencyID}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current == dependantID {
			return true, nil
		}
		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}

		next, err := s.taskRepo.DependencyIDs(current)
		if err != nil {
			return false, fmt.Errorf("failed to walk dependencies: %w", err)
		}
		stack = append(stack, next...)
	}

	return false, nil
}

// validateDateRange rejects a start date at or after the end date when
// both are present.
func validateDateRange(startDate, endDate *int64) error {
	if startDate != nil && endDate != nil && *startDate >= *endDate {
		return &InvalidDateRangeError{Start: *startDate, End: *endDate}
	}
	return nil
}
