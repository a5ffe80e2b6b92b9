package dto

import (
	"github.com/shirayuki/taskboard/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	CreatedAt    int64  `json:"created_at"`
	StartingDate int64  `json:"starting_date"`
}

// ProjectMemberDTO represents a member in a project
type ProjectMemberDTO struct {
	UserID   string             `json:"user_id"`
	Role     models.ProjectRole `json:"role"`
	JoinedAt int64              `json:"joined_at"`
}

// ProjectDetailDTO represents a project with its members and the caller's role
type ProjectDetailDTO struct {
	ProjectDTO
	Members  []ProjectMemberDTO `json:"members"`
	YourRole models.ProjectRole `json:"your_role"`
}

// InvitationDTO represents an issued invitation code
type InvitationDTO struct {
	Code string `json:"code"`
}

// InvitedProjectDTO represents the project an invitation code points at
type InvitedProjectDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:           project.ID,
		Name:         project.Name,
		CreatedAt:    project.CreatedAt,
		StartingDate: project.StartingDate,
	}
}

// ToProjectMemberDTO converts a member to DTO
func ToProjectMemberDTO(member models.ProjectMember) ProjectMemberDTO {
	return ProjectMemberDTO{
		UserID:   member.UserID,
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
}

// ToProjectDetailDTO converts a project and its members to a detail DTO
func ToProjectDetailDTO(project models.Project, members []models.ProjectMember, yourRole models.ProjectRole) ProjectDetailDTO {
	memberDTOs := make([]ProjectMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToProjectMemberDTO(member)
	}

	return ProjectDetailDTO{
		ProjectDTO: ToProjectDTO(project),
		Members:    memberDTOs,
		YourRole:   yourRole,
	}
}
