package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shirayuki/taskboard/internal/constants"
	"github.com/shirayuki/taskboard/internal/database"
	"github.com/shirayuki/taskboard/internal/models"
)

// RequireProjectAccess checks if the user is a member of the project
func RequireProjectAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get project ID from URL parameter
		projectIDStr := c.Param("id")
		projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid project ID",
			})
			c.Abort()
			return
		}

		// Get current user ID
		userID, exists := GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		// Check if project exists
		var project models.Project
		if err := database.GetDB().First(&project, projectID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Project not found",
			})
			c.Abort()
			return
		}

		// Check if user is a member
		var member models.ProjectMember
		err = database.GetDB().Where("project_id = ? AND user_id = ?", projectID, userID).First(&member).Error
		if err != nil {
			// Return 404 instead of 403 to avoid leaking project existence
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Project not found",
			})
			c.Abort()
			return
		}

		// Store project and membership in context
		c.Set(constants.ContextKeyProject, project)
		c.Set(constants.ContextKeyProjectMember, member)
		c.Next()
	}
}

// RequireProjectOwner checks if the user is the owner of the project
func RequireProjectOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get project member from context (set by RequireProjectAccess)
		memberInterface, exists := c.Get(constants.ContextKeyProjectMember)
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Project access required",
			})
			c.Abort()
			return
		}

		member, ok := memberInterface.(models.ProjectMember)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Invalid project member data",
			})
			c.Abort()
			return
		}

		// Check if user is owner
		if member.Role != models.RoleOwner {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Only project owners can perform this action",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
