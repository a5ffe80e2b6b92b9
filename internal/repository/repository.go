package repository

import (
	"github.com/shirayuki/taskboard/internal/models"
)

// ProjectRepository defines the interface for project, membership and
// invitation-code data access
type ProjectRepository interface {
	// CreateWithOwner creates a project and its OWNER membership atomically
	CreateWithOwner(project *models.Project, owner *models.ProjectMember) error

	// FindByID finds a project by ID
	FindByID(id uint64) (*models.Project, error)

	// NameExistsForUser reports whether the user already has a project with the name
	NameExistsForUser(userID, name string) (bool, error)

	// ListByUserID lists all projects the user is a member of
	ListByUserID(userID string) ([]models.Project, error)

	// AddMember adds a member to a project
	AddMember(member *models.ProjectMember) error

	// FindMember finds a specific project member
	FindMember(projectID uint64, userID string) (*models.ProjectMember, error)

	// ListMembers lists all members of a project
	ListMembers(projectID uint64) ([]models.ProjectMember, error)

	// CreateInvitationCode inserts a new invitation code
	CreateInvitationCode(code *models.InvitationCode) error

	// FindInvitationCode finds an invitation code by its code string
	FindInvitationCode(code string) (*models.InvitationCode, error)

	// FindActiveInvitationCode finds an unexpired code for the project, if any
	FindActiveInvitationCode(projectID uint64, now int64) (*models.InvitationCode, error)

	// SaveInvitationCode persists changes to an invitation code
	SaveInvitationCode(code *models.InvitationCode) error

	// DeleteInvitationCode deletes an invitation code
	DeleteInvitationCode(code string) error

	// DeleteExpiredInvitationCodes purges every code whose expiry is before now
	DeleteExpiredInvitationCodes(now int64) error
}

// StatusRepository defines the interface for kanban column data access
type StatusRepository interface {
	// Create creates a new status
	Create(status *models.Status) error

	// FindByID finds a status by ID
	FindByID(id uint64) (*models.Status, error)

	// ListByProjectID lists all statuses in a project
	ListByProjectID(projectID uint64) ([]models.Status, error)

	// NameExists reports whether the project already has a status with the name
	NameExists(projectID uint64, name string) (bool, error)

	// Update updates a status
	Update(status *models.Status) error

	// DeleteMigratingTasks retargets every task of the status to the
	// migration status and deletes the status, all in one transaction.
	// Returns the tasks that were moved.
	DeleteMigratingTasks(statusID, toStatusID uint64) ([]models.Task, error)
}

// MilestoneRepository defines the interface for milestone data access
type MilestoneRepository interface {
	// Create creates a new milestone
	Create(milestone *models.Milestone) error

	// FindByID finds a milestone by ID
	FindByID(id uint64) (*models.Milestone, error)

	// ListByProjectID lists all milestones in a project
	ListByProjectID(projectID uint64) ([]models.Milestone, error)

	// NameExists reports whether the project already has a milestone with the name
	NameExists(projectID uint64, name string) (bool, error)

	// Update updates a milestone
	Update(milestone *models.Milestone) error

	// DeleteCascade deletes the milestone and every task belonging to it,
	// including the tasks' assignments and dependency edges, in one
	// transaction
	DeleteCascade(id uint64) error
}

// TaskRepository defines the interface for task, assignment and dependency
// data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID
	FindByID(id uint64) (*models.Task, error)

	// ListByStatusID lists all tasks in a status
	ListByStatusID(statusID uint64) ([]models.Task, error)

	// ListByMilestoneID lists all tasks in a milestone
	ListByMilestoneID(milestoneID uint64) ([]models.Task, error)

	// NameExistsInProject reports whether any task in the project has the
	// name. Task names are unique project-wide, resolved by joining
	// through the task's status.
	NameExistsInProject(projectID uint64, name string) (bool, error)

	// Update updates a task
	Update(task *models.Task) error

	// DeleteCascade deletes the task together with its assignments and
	// dependency edges in one transaction
	DeleteCascade(id uint64) error

	// CreateAssignment assigns a user to a task
	CreateAssignment(assignment *models.TaskAssignment) error

	// FindAssignment finds a specific task assignment
	FindAssignment(taskID uint64, userID string) (*models.TaskAssignment, error)

	// DeleteAssignment removes a user's assignment from a task
	DeleteAssignment(taskID uint64, userID string) error

	// ListAssignees lists the user IDs assigned to a task
	ListAssignees(taskID uint64) ([]string, error)

	// CreateDependency inserts a dependency edge
	CreateDependency(dep *models.TaskDependency) error

	// FindDependency finds a specific dependency edge
	FindDependency(dependencyID, dependantID uint64) (*models.TaskDependency, error)

	// DeleteDependency removes a dependency edge
	DeleteDependency(dependencyID, dependantID uint64) error

	// DependencyIDs returns the IDs of the tasks the given task depends on
	DependencyIDs(dependantID uint64) ([]uint64, error)
}
