package services

import (
	"testing"

	"github.com/shirayuki/taskboard/internal/models"
	"github.com/shirayuki/taskboard/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db               *gorm.DB
	projectService   *ProjectService
	statusService    *StatusService
	milestoneService *MilestoneService
	taskService      *TaskService
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Project{},
		&models.ProjectMember{},
		&models.InvitationCode{},
		&models.Milestone{},
		&models.Status{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.TaskDependency{},
	)
	require.NoError(t, err)

	projectRepo := repository.NewProjectRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return serviceTestEnv{
		db:               db,
		projectService:   NewProjectService(projectRepo),
		statusService:    NewStatusService(statusRepo),
		milestoneService: NewMilestoneService(milestoneRepo, taskRepo),
		taskService:      NewTaskService(taskRepo, statusRepo, milestoneRepo),
	}
}

func (env serviceTestEnv) createProject(t *testing.T, userID, name string) *models.Project {
	t.Helper()

	project, err := env.projectService.CreateProject(userID, name)
	require.NoError(t, err)
	return project
}

func (env serviceTestEnv) createStatus(t *testing.T, projectID uint64, name string) *models.Status {
	t.Helper()

	status, err := env.statusService.CreateStatus(name, "", projectID)
	require.NoError(t, err)
	return status
}

func (env serviceTestEnv) createTask(t *testing.T, statusID uint64, name string) *models.Task {
	t.Helper()

	task, err := env.taskService.CreateTask(CreateTaskInput{
		Name:     name,
		Priority: models.PriorityMedium,
		StatusID: statusID,
	})
	require.NoError(t, err)
	return task
}

func (env serviceTestEnv) createMilestone(t *testing.T, projectID uint64, name string) *models.Milestone {
	t.Helper()

	milestone, err := env.milestoneService.CreateMilestone(name, "", projectID)
	require.NoError(t, err)
	return milestone
}
