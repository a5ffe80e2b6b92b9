package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/shirayuki/taskboard/internal/board"
	"github.com/shirayuki/taskboard/internal/constants"
	apierrors "github.com/shirayuki/taskboard/internal/errors"
	"github.com/shirayuki/taskboard/internal/middleware"
	"github.com/shirayuki/taskboard/internal/models"
	"github.com/shirayuki/taskboard/internal/services"
)

// BoardHandler exposes the per-session board projection. Every mutation
// goes through the session's Store so the projection stays the single
// write path for the client's view.
type BoardHandler struct {
	manager *board.Manager
}

func NewBoardHandler(manager *board.Manager) *BoardHandler {
	return &BoardHandler{
		manager: manager,
	}
}

// sessionStore returns the board store bound to this session, creating
// one when create is set. Writes the error response itself on failure.
func (h *BoardHandler) sessionStore(c *gin.Context, create bool) (*board.Store, bool) {
	session := sessions.Default(c)

	if id, ok := session.Get(constants.SessionKeyBoardID).(string); ok {
		if store, found := h.manager.Get(id); found {
			return store, true
		}
	}

	if !create {
		apierrors.BadRequest(c, "Project board is not loaded")
		return nil, false
	}

	id, store := h.manager.Create()
	session.Set(constants.SessionKeyBoardID, id)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return nil, false
	}

	return store, true
}

// LoadBoard performs the full rebuild of the session's projection and
// returns the snapshot. Membership is checked again inside Load; the
// route also carries RequireProjectAccess.
func (h *BoardHandler) LoadBoard(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	projectID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	store, ok := h.sessionStore(c, true)
	if !ok {
		return
	}

	if err := store.Load(projectID, userID); err != nil {
		respondDomainError(c, err)
		return
	}

	snapshot, err := store.Snapshot()
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetBoard returns the current snapshot without reloading
func (h *BoardHandler) GetBoard(c *gin.Context) {
	store, ok := h.sessionStore(c, false)
	if !ok {
		return
	}

	snapshot, err := store.Snapshot()
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// CreateStatus adds a kanban column
func (h *BoardHandler) CreateStatus(c *gin.Context) {
	store, ok := h.sessionStore(c, false)
	if !ok {
		return
	}

	type CreateStatusRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req CreateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	view, err := store.CreateStatus(req.Name)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// RenameStatus renames a kanban column
func (h *BoardHandler) RenameStatus(c *gin.Context) {
	store, ok := h.sessionStore(c, false)
	if !ok {
		return
	}

	statusID, ok := parseIDParam(c, "status_id")
	if !ok {
		return
	}

	type RenameStatusRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req RenameStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	if err := store.RenameStatus(statusID, req.Name); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status renamed"})
}

// DeleteStatus deletes a column, migrating its tasks to the column named
// by the migrate_to query parameter
func (h *BoardHandler) DeleteStatus(c *gin.Context) {
	store, ok := h.sessionStore(c, false)
	if !ok {
		return
	}

	statusID, ok := parseIDParam(c, "status_id")
	if !ok {
		return
	}

	migrationID, err := strconv.ParseUint(c.Query("migrate_to"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid migration status ID")
		return
	}

	if err := store.DeleteStatus(statusID, migrationID); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status deleted"})
}

// CreateTask adds a task to a column
func (h *BoardHandler) CreateTask(c *gin.Context) {
	store, ok := h.sessionStore(c, false)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Name        string          `json:"name" binding:"required"`
		Description string          `json:"description"`
		Priority    models.Priority `json:"priority"`
		StatusID    uint64          `json:"status_id" binding:"required"`
		MilestoneID *uint64         `json:"milestone_id"`
		StartDate   *int64          `json:"start_date"`
		EndDate     *int64          `json:"end_date"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	view, err := store.CreateTask(services.CreateTaskInput{
		Name:        req.Name,
		Description: req.Description,
		Priority:    req.Priority,
		StatusID:    req.StatusID,
		MilestoneID: req.MilestoneID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// RenameTask renames a task
func (h *BoardHandler) RenameTask(c *gin.Context) {
	store, ok := h.sessionStore(c, false)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	type RenameTaskRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req RenameTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	if err := store.RenameTask(taskID, req.Name); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task renamed"})
}

// SetTaskDescription replaces a task's description
func (h *BoardHandler) SetTaskDescription(c *gin.Context) {
	store, ok := h.sessionStore(c, false)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	type SetDescriptionRequest struct {
		Description string `json:"description"`
	}

	var req SetDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	if err := store.SetTaskDescription(taskID, req.Description); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Description updated"})
}

// UpdateTaskDates sets a task's start/end dates
func (h *BoardHandler) UpdateTaskDates(c *gin.Context) {
	store, ok := h.sessionStore(c, false)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	type UpdateDatesRequest struct {
		StartDate *int64 `json:"start_date"`
		EndDate   *int64 `json:"end_date"`
	}

	var req UpdateDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	if err := store.UpdateTaskDates(taskID, req.StartDate, req.EndDate); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Dates updated"})
}

// MoveTask drags a task to another column
func (h *BoardHandler) MoveTask(c *gin.Context) {
	store, ok := h.sessionStore(c, false)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	type MoveTaskRequest struct {
		StatusID uint64 `json:"status_id" binding:"required"`
	}

	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	if err := store.MoveTask(taskID, req.StatusID); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task moved"})
}

// DeleteTask deletes a task
func (h *BoardHandler) DeleteTask(c *gin.Context) {
	store, ok := h.sessionStore(c, false)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	if err := store.DeleteTask(taskID); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// AssignMilestone sets or clears a task's milestone (null unassigns)
func (h *BoardHandler) AssignMilestone(c *gin.Context) {
	store, ok := h.sessionStore(c, false)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	type AssignMilestoneRequest struct {
		MilestoneID *uint64 `json:"milestone_id"`
	}

	var req AssignMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	if err := store.AssignMilestone(taskID, req.MilestoneID); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Milestone updated"})
}

// CreateMilestone adds a milestone
func (h *BoardHandler) CreateMilestone(c *gin.Context) {
	store, ok := h.sessionStore(c, false)
	if !ok {
		return
	}

	type CreateMilestoneRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	view, err := store.CreateMilestone(req.Name, req.Description)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// DeleteMilestone deletes a milestone together with its tasks
func (h *BoardHandler) DeleteMilestone(c *gin.Context) {
	store, ok := h.sessionStore(c, false)
	if !ok {
		return
	}

	milestoneID, ok := parseIDParam(c, "milestone_id")
	if !ok {
		return
	}

	if err := store.DeleteMilestone(milestoneID); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Milestone deleted"})
}

// parseIDParam parses a numeric URL parameter, writing a 400 on failure
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}
