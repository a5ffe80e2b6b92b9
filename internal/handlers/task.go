package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shirayuki/taskboard/internal/dto"
	apierrors "github.com/shirayuki/taskboard/internal/errors"
	"github.com/shirayuki/taskboard/internal/services"
)

// TaskHandler covers the task relations the board projection does not
// track: per-user assignments and dependency edges.
type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListAssignees returns the user ids assigned to a task
func (h *TaskHandler) ListAssignees(c *gin.Context) {
	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	assignees, err := h.taskService.Assignees(taskID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignees": assignees})
}

// AssignUser assigns a user to a task
func (h *TaskHandler) AssignUser(c *gin.Context) {
	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	type AssignUserRequest struct {
		UserID string `json:"user_id" binding:"required"`
	}

	var req AssignUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	assignment, err := h.taskService.AssignUser(taskID, req.UserID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// UnassignUser removes a user's assignment from a task
func (h *TaskHandler) UnassignUser(c *gin.Context) {
	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	userID := c.Param("user_id")
	if userID == "" {
		apierrors.BadRequest(c, "Invalid user_id")
		return
	}

	if err := h.taskService.UnassignUser(taskID, userID); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User unassigned"})
}

// CreateDependency records that the task depends on another task
func (h *TaskHandler) CreateDependency(c *gin.Context) {
	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	type CreateDependencyRequest struct {
		DependencyID uint64 `json:"dependency_id" binding:"required"`
	}

	var req CreateDependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	dep, err := h.taskService.CreateDependency(taskID, req.DependencyID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDependencyDTO(*dep))
}

// DeleteDependency removes a dependency edge
func (h *TaskHandler) DeleteDependency(c *gin.Context) {
	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	dependencyID, ok := parseIDParam(c, "dependency_id")
	if !ok {
		return
	}

	if err := h.taskService.RemoveDependency(taskID, dependencyID); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Dependency removed"})
}
