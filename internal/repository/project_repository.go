package repository

import (
	"github.com/shirayuki/taskboard/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// CreateWithOwner creates a project and its OWNER membership atomically
func (r *GormProjectRepository) CreateWithOwner(project *models.Project, owner *models.ProjectMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		owner.ProjectID = project.ID

		return tx.Create(owner).Error
	})
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// NameExistsForUser reports whether the user already has a project with the name
func (r *GormProjectRepository) NameExistsForUser(userID, name string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Project{}).
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("projects.name = ? AND project_members.user_id = ?", name, userID).
		Count(&count).Error
	return count > 0, err
}

// ListByUserID lists all projects the user is a member of
func (r *GormProjectRepository) ListByUserID(userID string) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ?", userID).
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// AddMember adds a member to a project
func (r *GormProjectRepository) AddMember(member *models.ProjectMember) error {
	return r.db.Create(member).Error
}

// FindMember finds a specific project member
func (r *GormProjectRepository) FindMember(projectID uint64, userID string) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a project
func (r *GormProjectRepository) ListMembers(projectID uint64) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if err := r.db.Where("project_id = ?", projectID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// CreateInvitationCode inserts a new invitation code
func (r *GormProjectRepository) CreateInvitationCode(code *models.InvitationCode) error {
	return r.db.Create(code).Error
}

// FindInvitationCode finds an invitation code by its code string
func (r *GormProjectRepository) FindInvitationCode(code string) (*models.InvitationCode, error) {
	var invitation models.InvitationCode
	if err := r.db.Where("invitation_code = ?", code).
		First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// FindActiveInvitationCode finds an unexpired code for the project, if any
func (r *GormProjectRepository) FindActiveInvitationCode(projectID uint64, now int64) (*models.InvitationCode, error) {
	var invitation models.InvitationCode
	if err := r.db.Where("project_id = ? AND expired_at > ?", projectID, now).
		First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// SaveInvitationCode persists changes to an invitation code
func (r *GormProjectRepository) SaveInvitationCode(code *models.InvitationCode) error {
	return r.db.Save(code).Error
}

// DeleteInvitationCode deletes an invitation code
func (r *GormProjectRepository) DeleteInvitationCode(code string) error {
	return r.db.Where("invitation_code = ?", code).
		Delete(&models.InvitationCode{}).Error
}

// DeleteExpiredInvitationCodes purges every code whose expiry is before now
func (r *GormProjectRepository) DeleteExpiredInvitationCodes(now int64) error {
	return r.db.Where("expired_at < ?", now).
		Delete(&models.InvitationCode{}).Error
}
