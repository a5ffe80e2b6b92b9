package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shirayuki/taskboard/internal/board"
	apierrors "github.com/shirayuki/taskboard/internal/errors"
	"github.com/shirayuki/taskboard/internal/services"
)

// respondDomainError maps the domain error taxonomy onto HTTP responses.
// Anything unrecognized is treated as fatal to the request; the projection
// is never patched in that case, so the client can simply retry or reload.
func respondDomainError(c *gin.Context, err error) {
	var duplicate *services.DuplicateNameError
	var invalidRef *services.InvalidReferenceError
	var invalidDates *services.InvalidDateRangeError
	var unauthorized *services.UnauthorizedError
	var cyclic *services.CyclicDependencyError

	switch {
	case errors.As(err, &duplicate):
		apierrors.Conflict(c, duplicate.Error())
	case errors.As(err, &invalidRef):
		// Stale client state: the caller should reload the project view.
		apierrors.NotFound(c, invalidRef.Error())
	case errors.As(err, &invalidDates):
		apierrors.BadRequest(c, invalidDates.Error())
	case errors.As(err, &cyclic):
		apierrors.BadRequest(c, cyclic.Error())
	case errors.As(err, &unauthorized):
		apierrors.Forbidden(c, unauthorized.Error())
	case errors.Is(err, services.ErrUnauthenticated):
		apierrors.Unauthorized(c, "")
	case errors.Is(err, services.ErrProjectNameTooShort):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidRedeemLimit):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskAlreadyAssigned):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, board.ErrNotLoaded):
		apierrors.BadRequest(c, "project board is not loaded")
	case errors.Is(err, board.ErrNotProjectMember):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
