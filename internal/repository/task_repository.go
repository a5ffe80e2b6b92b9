package repository

import (
	"github.com/shirayuki/taskboard/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByStatusID lists all tasks in a status
func (r *GormTaskRepository) ListByStatusID(statusID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("status_id = ?", statusID).
		Order("id").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByMilestoneID lists all tasks in a milestone
func (r *GormTaskRepository) ListByMilestoneID(milestoneID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("milestone_id = ?", milestoneID).
		Order("id").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// NameExistsInProject reports whether any task in the project has the name.
// The project is reached by joining through the task's status.
func (r *GormTaskRepository) NameExistsInProject(projectID uint64, name string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Joins("JOIN statuses ON statuses.id = tasks.status_id").
		Where("tasks.name = ? AND statuses.project_id = ?", name, projectID).
		Count(&count).Error
	return count > 0, err
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// DeleteCascade deletes the task, its assignments, and every dependency
// edge that references it, in one transaction
func (r *GormTaskRepository) DeleteCascade(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).
			Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("dependency_id = ? OR dependant_id = ?", id, id).
			Delete(&models.TaskDependency{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// CreateAssignment assigns a user to a task
func (r *GormTaskRepository) CreateAssignment(assignment *models.TaskAssignment) error {
	return r.db.Create(assignment).Error
}

// FindAssignment finds a specific task assignment
func (r *GormTaskRepository) FindAssignment(taskID uint64, userID string) (*models.TaskAssignment, error) {
	var assignment models.TaskAssignment
	if err := r.db.Where("task_id = ? AND user_id = ?", taskID, userID).
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// DeleteAssignment removes a user's assignment from a task
func (r *GormTaskRepository) DeleteAssignment(taskID uint64, userID string) error {
	return r.db.Where("task_id = ? AND user_id = ?", taskID, userID).
		Delete(&models.TaskAssignment{}).Error
}

// ListAssignees lists the user IDs assigned to a task
func (r *GormTaskRepository) ListAssignees(taskID uint64) ([]string, error) {
	var userIDs []string
	if err := r.db.Model(&models.TaskAssignment{}).
		Where("task_id = ?", taskID).
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, err
	}
	return userIDs, nil
}

// CreateDependency inserts a dependency edge
func (r *GormTaskRepository) CreateDependency(dep *models.TaskDependency) error {
	return r.db.Create(dep).Error
}

// FindDependency finds a specific dependency edge
func (r *GormTaskRepository) FindDependency(dependencyID, dependantID uint64) (*models.TaskDependency, error) {
	var dep models.TaskDependency
	if err := r.db.Where("dependency_id = ? AND dependant_id = ?", dependencyID, dependantID).
		First(&dep).Error; err != nil {
		return nil, err
	}
	return &dep, nil
}

// DeleteDependency removes a dependency edge
func (r *GormTaskRepository) DeleteDependency(dependencyID, dependantID uint64) error {
	return r.db.Where("dependency_id = ? AND dependant_id = ?", dependencyID, dependantID).
		Delete(&models.TaskDependency{}).Error
}

// DependencyIDs returns the IDs of the tasks the given task depends on
func (r *GormTaskRepository) DependencyIDs(dependantID uint64) ([]uint64, error) {
	var ids []uint64
	if err := r.db.Model(&models.TaskDependency{}).
		Where("dependant_id = ?", dependantID).
		Pluck("dependency_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
