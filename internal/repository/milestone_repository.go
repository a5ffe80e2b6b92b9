package repository

import (
	"github.com/shirayuki/taskboard/internal/models"
	"gorm.io/gorm"
)

// GormMilestoneRepository is a GORM implementation of MilestoneRepository
type GormMilestoneRepository struct {
	db *gorm.DB
}

// NewMilestoneRepository creates a new MilestoneRepository
func NewMilestoneRepository(db *gorm.DB) MilestoneRepository {
	return &GormMilestoneRepository{db: db}
}

// Create creates a new milestone
func (r *GormMilestoneRepository) Create(milestone *models.Milestone) error {
	return r.db.Create(milestone).Error
}

// FindByID finds a milestone by ID
func (r *GormMilestoneRepository) FindByID(id uint64) (*models.Milestone, error) {
	var milestone models.Milestone
	if err := r.db.First(&milestone, id).Error; err != nil {
		return nil, err
	}
	return &milestone, nil
}

// ListByProjectID lists all milestones in a project
func (r *GormMilestoneRepository) ListByProjectID(projectID uint64) ([]models.Milestone, error) {
	var milestones []models.Milestone
	if err := r.db.Where("project_id = ?", projectID).
		Order("id").
		Find(&milestones).Error; err != nil {
		return nil, err
	}
	return milestones, nil
}

// NameExists reports whether the project already has a milestone with the name
func (r *GormMilestoneRepository) NameExists(projectID uint64, name string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Milestone{}).
		Where("project_id = ? AND name = ?", projectID, name).
		Count(&count).Error
	return count > 0, err
}

// Update updates a milestone
func (r *GormMilestoneRepository) Update(milestone *models.Milestone) error {
	return r.db.Save(milestone).Error
}

// DeleteCascade deletes the milestone and every task belonging to it in one
// transaction. The tasks' assignments and dependency edges go with them.
func (r *GormMilestoneRepository) DeleteCascade(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint64
		if err := tx.Model(&models.Task{}).
			Where("milestone_id = ?", id).
			Pluck("id", &taskIDs).Error; err != nil {
			return err
		}

		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).
				Delete(&models.TaskAssignment{}).Error; err != nil {
				return err
			}

			if err := tx.Where("dependency_id IN ? OR dependant_id IN ?", taskIDs, taskIDs).
				Delete(&models.TaskDependency{}).Error; err != nil {
				return err
			}

			if err := tx.Where("id IN ?", taskIDs).
				Delete(&models.Task{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.Milestone{}, id).Error
	})
}
