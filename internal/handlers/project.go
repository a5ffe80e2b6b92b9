package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shirayuki/taskboard/internal/constants"
	"github.com/shirayuki/taskboard/internal/database"
	"github.com/shirayuki/taskboard/internal/dto"
	apierrors "github.com/shirayuki/taskboard/internal/errors"
	"github.com/shirayuki/taskboard/internal/middleware"
	"github.com/shirayuki/taskboard/internal/models"
	"github.com/shirayuki/taskboard/internal/services"
	"github.com/shirayuki/taskboard/internal/utils"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// CreateProject creates a project owned by the current user
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateProjectRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	project, err := h.projectService.CreateProject(userID, req.Name)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns the current user's projects with pagination
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	query := database.GetDB().Model(&models.Project{}).
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		apierrors.InternalError(c, "Failed to count projects")
		return
	}

	var projects []models.Project
	if err := query.Scopes(database.Paginate(params)).
		Order("projects.created_at DESC").
		Find(&projects).Error; err != nil {
		apierrors.InternalError(c, "Failed to fetch projects")
		return
	}

	projectDTOs := make([]dto.ProjectDTO, len(projects))
	for i, project := range projects {
		projectDTOs[i] = dto.ToProjectDTO(project)
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projectDTOs,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetProject returns a project with its members.
// Membership is already verified by RequireProjectAccess.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectInterface, exists := c.Get(constants.ContextKeyProject)
	if !exists {
		apierrors.InternalError(c, "Project not found in context")
		return
	}
	project, ok := projectInterface.(models.Project)
	if !ok {
		apierrors.InternalError(c, "Invalid project data")
		return
	}

	memberInterface, _ := c.Get(constants.ContextKeyProjectMember)
	member, ok := memberInterface.(models.ProjectMember)
	if !ok {
		apierrors.InternalError(c, "Invalid project member data")
		return
	}

	members, err := h.projectService.ListMembers(project.ID)
	if err != nil {
		apierrors.InternalError(c, "Failed to list members")
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDetailDTO(project, members, member.Role))
}

// CreateInvitation issues (or reuses) an invitation code for the project.
// Owner-only, enforced by RequireProjectOwner on the route.
func (h *ProjectHandler) CreateInvitation(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	projectInterface, _ := c.Get(constants.ContextKeyProject)
	project, ok := projectInterface.(models.Project)
	if !ok {
		apierrors.InternalError(c, "Invalid project data")
		return
	}

	type CreateInvitationRequest struct {
		DurationSeconds int64 `json:"duration_seconds"`
		RedeemLimit     *int  `json:"redeem_limit"`
	}

	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	code, err := h.projectService.GetInvitationCode(userID, project.ID, req.DurationSeconds, req.RedeemLimit)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.InvitationDTO{Code: code})
}

// LookupInvitation resolves an invitation code to the project it invites to
func (h *ProjectHandler) LookupInvitation(c *gin.Context) {
	code := c.Param("code")

	project, err := h.projectService.FindProjectByInvitationCode(code)
	if err != nil {
		apierrors.InternalError(c, "Failed to look up invitation")
		return
	}
	if project == nil {
		apierrors.NotFound(c, "Invitation code is invalid or expired")
		return
	}

	c.JSON(http.StatusOK, dto.InvitedProjectDTO{
		ID:   project.ID,
		Name: project.Name,
		Code: code,
	})
}

// RedeemInvitation joins the current user to the invitation's project
func (h *ProjectHandler) RedeemInvitation(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	code := c.Param("code")

	joined, err := h.projectService.RedeemInvitationCode(code, userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if !joined {
		apierrors.NotFound(c, "Invitation code is invalid or expired")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Joined project"})
}
