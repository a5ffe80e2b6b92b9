package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/shirayuki/taskboard/internal/board"
	"github.com/shirayuki/taskboard/internal/constants"
	apierrors "github.com/shirayuki/taskboard/internal/errors"
	"github.com/shirayuki/taskboard/internal/middleware"
)

// identityHeader carries the user id verified by the identity-aware proxy
// in front of this service. The service itself never sees credentials.
const identityHeader = "X-Auth-User"

type AuthHandler struct {
	manager *board.Manager
}

func NewAuthHandler(manager *board.Manager) *AuthHandler {
	return &AuthHandler{
		manager: manager,
	}
}

// CreateSession stores the provider-verified user id in the session.
func (h *AuthHandler) CreateSession(c *gin.Context) {
	userID := c.GetHeader(identityHeader)
	if userID == "" {
		apierrors.Unauthorized(c, "Missing identity")
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, userID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID})
}

// DeleteSession signs the user out and discards the session's board store.
func (h *AuthHandler) DeleteSession(c *gin.Context) {
	session := sessions.Default(c)

	if boardID, ok := session.Get(constants.SessionKeyBoardID).(string); ok {
		h.manager.Drop(boardID)
	}

	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// GetCurrentUser returns the authenticated user's id.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID})
}
