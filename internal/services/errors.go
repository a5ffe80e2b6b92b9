package services

import (
	"errors"
	"fmt"

	"github.com/shirayuki/taskboard/internal/models"
)

var (
	// ErrUnauthenticated is returned when an operation requiring an
	// authenticated actor is called without one.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrProjectNameTooShort is returned when a project name has fewer
	// than the minimum number of characters.
	ErrProjectNameTooShort = errors.New("project name is too short")
)

// DuplicateNameError is returned when a name-uniqueness constraint within a
// project (or, for projects, within a user's projects) would be violated.
type DuplicateNameError struct {
	Kind string
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.Name)
}

// InvalidReferenceError is returned when a caller-supplied ID does not
// reference an existing entity. It usually means the caller's view of the
// data is stale and should be reloaded.
type InvalidReferenceError struct {
	Kind string
	ID   uint64
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("%s %d does not exist", e.Kind, e.ID)
}

// InvalidDateRangeError is returned when a task's start date is not
// strictly before its end date.
type InvalidDateRangeError struct {
	Start int64
	End   int64
}

func (e *InvalidDateRangeError) Error() string {
	return fmt.Sprintf("start date %d must be before end date %d", e.Start, e.End)
}

// UnauthorizedError is returned when the actor lacks the required project role.
type UnauthorizedError struct {
	Required models.ProjectRole
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("requires %s role", e.Required)
}

// CyclicDependencyError is returned when adding a dependency edge would
// make a task transitively depend on itself.
type CyclicDependencyError struct {
	DependantID  uint64
	DependencyID uint64
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("task %d -> %d would create a dependency cycle", e.DependantID, e.DependencyID)
}
