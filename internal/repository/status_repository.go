package repository

import (
	"github.com/shirayuki/taskboard/internal/models"
	"gorm.io/gorm"
)

// GormStatusRepository is a GORM implementation of StatusRepository
type GormStatusRepository struct {
	db *gorm.DB
}

// NewStatusRepository creates a new StatusRepository
func NewStatusRepository(db *gorm.DB) StatusRepository {
	return &GormStatusRepository{db: db}
}

// Create creates a new status
func (r *GormStatusRepository) Create(status *models.Status) error {
	return r.db.Create(status).Error
}

// FindByID finds a status by ID
func (r *GormStatusRepository) FindByID(id uint64) (*models.Status, error) {
	var status models.Status
	if err := r.db.First(&status, id).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

// ListByProjectID lists all statuses in a project
func (r *GormStatusRepository) ListByProjectID(projectID uint64) ([]models.Status, error) {
	var statuses []models.Status
	if err := r.db.Where("project_id = ?", projectID).
		Order("id").
		Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

// NameExists reports whether the project already has a status with the name
func (r *GormStatusRepository) NameExists(projectID uint64, name string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Status{}).
		Where("project_id = ? AND name = ?", projectID, name).
		Count(&count).Error
	return count > 0, err
}

// Update updates a status
func (r *GormStatusRepository) Update(status *models.Status) error {
	return r.db.Save(status).Error
}

// DeleteMigratingTasks retargets every task of the status to the migration
// status and deletes the status in one transaction, so a failure partway
// never leaves orphaned tasks.
func (r *GormStatusRepository) DeleteMigratingTasks(statusID, toStatusID uint64) ([]models.Task, error) {
	var moved []models.Task

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("status_id = ?", statusID).
			Find(&moved).Error; err != nil {
			return err
		}

		if len(moved) > 0 {
			if err := tx.Model(&models.Task{}).
				Where("status_id = ?", statusID).
				Update("status_id", toStatusID).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.Status{}, statusID).Error
	})
	if err != nil {
		return nil, err
	}

	for i := range moved {
		moved[i].StatusID = toStatusID
	}

	return moved, nil
}
