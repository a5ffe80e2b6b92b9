package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/shirayuki/taskboard/internal/board"
	"github.com/shirayuki/taskboard/internal/database"
	"github.com/shirayuki/taskboard/internal/middleware"
	"github.com/shirayuki/taskboard/internal/models"
	"github.com/shirayuki/taskboard/internal/repository"
	"github.com/shirayuki/taskboard/internal/services"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// BoardHandlerTestSuite drives the board routes through a real router with
// cookie-backed sessions, so the per-session store wiring is what runs in
// production minus Redis.
type BoardHandlerTestSuite struct {
	suite.Suite
	db             *gorm.DB
	router         *gin.Engine
	manager        *board.Manager
	cookies        map[string]*http.Cookie
	project        *models.Project
	projectService *services.ProjectService
	statusService  *services.StatusService
	taskService    *services.TaskService
}

func (s *BoardHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)

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
	s.Require().NoError(err)

	s.db = db
	database.SetDB(db)

	projectRepo := repository.NewProjectRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	projectService := services.NewProjectService(projectRepo)
	statusService := services.NewStatusService(statusRepo)
	milestoneService := services.NewMilestoneService(milestoneRepo, taskRepo)
	taskService := services.NewTaskService(taskRepo, statusRepo, milestoneRepo)

	manager := board.NewManager(func() *board.Store {
		return board.NewStore(projectService, statusService, milestoneService, taskService)
	})
	s.manager = manager

	authHandler := NewAuthHandler(manager)
	boardHandler := NewBoardHandler(manager)
	taskHandler := NewTaskHandler(taskService)

	r := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("taskboard_session", store))

	api := r.Group("/api")
	api.POST("/auth/session", authHandler.CreateSession)
	api.DELETE("/auth/session", authHandler.DeleteSession)

	projects := api.Group("/projects", middleware.RequireAuth())
	projects.GET("/:id/board", middleware.RequireProjectAccess(), boardHandler.LoadBoard)

	boardRoutes := api.Group("/board", middleware.RequireAuth())
	boardRoutes.GET("", boardHandler.GetBoard)
	boardRoutes.POST("/statuses", boardHandler.CreateStatus)
	boardRoutes.PATCH("/statuses/:status_id", boardHandler.RenameStatus)
	boardRoutes.DELETE("/statuses/:status_id", boardHandler.DeleteStatus)
	boardRoutes.POST("/tasks", boardHandler.CreateTask)
	boardRoutes.PATCH("/tasks/:task_id/name", boardHandler.RenameTask)
	boardRoutes.PATCH("/tasks/:task_id/description", boardHandler.SetTaskDescription)
	boardRoutes.PATCH("/tasks/:task_id/dates", boardHandler.UpdateTaskDates)
	boardRoutes.POST("/tasks/:task_id/move", boardHandler.MoveTask)
	boardRoutes.POST("/tasks/:task_id/milestone", boardHandler.AssignMilestone)
	boardRoutes.DELETE("/tasks/:task_id", boardHandler.DeleteTask)
	boardRoutes.POST("/milestones", boardHandler.CreateMilestone)
	boardRoutes.DELETE("/milestones/:milestone_id", boardHandler.DeleteMilestone)

	tasks := api.Group("/tasks", middleware.RequireAuth(), middleware.RequireTaskAccess())
	tasks.GET("/:task_id/assignees", taskHandler.ListAssignees)
	tasks.POST("/:task_id/assignees", taskHandler.AssignUser)
	tasks.DELETE("/:task_id/assignees/:user_id", taskHandler.UnassignUser)
	tasks.POST("/:task_id/dependencies", taskHandler.CreateDependency)
	tasks.DELETE("/:task_id/dependencies/:dependency_id", taskHandler.DeleteDependency)

	s.router = r
	s.cookies = map[string]*http.Cookie{}
	s.projectService = projectService
	s.statusService = statusService
	s.taskService = taskService

	s.project, err = projectService.CreateProject("user_1", "Alpha Launch")
	s.Require().NoError(err)

	s.signIn("user_1")
}

func (s *BoardHandlerTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

// do performs a request, carrying the session cookie across calls the way
// a browser would.
func (s *BoardHandlerTestSuite) do(method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		s.Require().NoError(err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	for _, c := range s.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		s.cookies[c.Name] = c
	}

	return w
}

func (s *BoardHandlerTestSuite) signIn(userID string) {
	w := s.do(http.MethodPost, "/api/auth/session", nil, map[string]string{"X-Auth-User": userID})
	s.Require().Equal(http.StatusOK, w.Code)
}

func (s *BoardHandlerTestSuite) loadBoard() {
	w := s.do(http.MethodGet, fmt.Sprintf("/api/projects/%d/board", s.project.ID), nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)
}

func (s *BoardHandlerTestSuite) body(w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// created parses the id out of a 201 response.
func (s *BoardHandlerTestSuite) created(w *httptest.ResponseRecorder) uint64 {
	s.Require().Equal(http.StatusCreated, w.Code)
	return uint64(s.body(w)["id"].(float64))
}

func (s *BoardHandlerTestSuite) TestBoardRequiresAuth() {
	s.cookies = map[string]*http.Cookie{}

	w := s.do(http.MethodGet, "/api/board", nil, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *BoardHandlerTestSuite) TestBoardRequiresLoad() {
	w := s.do(http.MethodGet, "/api/board", nil, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/board/statuses", gin.H{"name": "Todo"}, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *BoardHandlerTestSuite) TestLoadBoardNotMember() {
	s.cookies = map[string]*http.Cookie{}
	s.signIn("stranger")

	w := s.do(http.MethodGet, fmt.Sprintf("/api/projects/%d/board", s.project.ID), nil, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *BoardHandlerTestSuite) TestLoadReturnsSnapshot() {
	s.loadBoard()

	w := s.do(http.MethodGet, "/api/board", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	body := s.body(w)
	s.Equal("Alpha Launch", body["project_name"])
	s.EqualValues(s.project.ID, body["project_id"])
	s.Empty(body["tasks"])
}

func (s *BoardHandlerTestSuite) TestStatusAndTaskFlow() {
	s.loadBoard()

	todoID := s.created(s.do(http.MethodPost, "/api/board/statuses", gin.H{"name": "Todo"}, nil))
	doingID := s.created(s.do(http.MethodPost, "/api/board/statuses", gin.H{"name": "Doing"}, nil))

	// Duplicate column name conflicts.
	w := s.do(http.MethodPost, "/api/board/statuses", gin.H{"name": "Todo"}, nil)
	s.Equal(http.StatusConflict, w.Code)

	taskID := s.created(s.do(http.MethodPost, "/api/board/tasks", gin.H{
		"name":      "Design landing page",
		"status_id": todoID,
	}, nil))

	w = s.do(http.MethodPost, fmt.Sprintf("/api/board/tasks/%d/move", taskID), gin.H{"status_id": doingID}, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPatch, fmt.Sprintf("/api/board/tasks/%d/name", taskID), gin.H{"name": "Design hero"}, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/board", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	body := s.body(w)

	statuses := body["statuses"].(map[string]any)
	todoColumn := statuses[fmt.Sprint(todoID)].(map[string]any)
	doingColumn := statuses[fmt.Sprint(doingID)].(map[string]any)
	s.Empty(todoColumn["task_ids"])
	s.Len(doingColumn["task_ids"], 1)

	task := body["tasks"].(map[string]any)[fmt.Sprint(taskID)].(map[string]any)
	s.Equal("Design hero", task["name"])
	s.EqualValues(doingID, task["status_id"])

	// Deleting Doing migrates the task back to Todo.
	w = s.do(http.MethodDelete, fmt.Sprintf("/api/board/statuses/%d?migrate_to=%d", doingID, todoID), nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/board", nil, nil)
	body = s.body(w)
	statuses = body["statuses"].(map[string]any)
	s.NotContains(statuses, fmt.Sprint(doingID))
	s.Len(statuses[fmt.Sprint(todoID)].(map[string]any)["task_ids"], 1)
}

func (s *BoardHandlerTestSuite) TestMilestoneFlow() {
	s.loadBoard()

	todoID := s.created(s.do(http.MethodPost, "/api/board/statuses", gin.H{"name": "Todo"}, nil))
	milestoneID := s.created(s.do(http.MethodPost, "/api/board/milestones", gin.H{"name": "v1.0"}, nil))

	taskID := s.created(s.do(http.MethodPost, "/api/board/tasks", gin.H{
		"name":         "Design landing page",
		"status_id":    todoID,
		"milestone_id": milestoneID,
	}, nil))

	// Clearing the milestone with null.
	w := s.do(http.MethodPost, fmt.Sprintf("/api/board/tasks/%d/milestone", taskID), gin.H{"milestone_id": nil}, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/board", nil, nil)
	body := s.body(w)
	task := body["tasks"].(map[string]any)[fmt.Sprint(taskID)].(map[string]any)
	s.Nil(task["milestone_id"])

	// Re-assign, then delete the milestone; its task goes with it.
	w = s.do(http.MethodPost, fmt.Sprintf("/api/board/tasks/%d/milestone", taskID), gin.H{"milestone_id": milestoneID}, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/board/milestones/%d", milestoneID), nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/board", nil, nil)
	body = s.body(w)
	s.NotContains(body["tasks"].(map[string]any), fmt.Sprint(taskID))
	s.NotContains(body["milestones"].(map[string]any), fmt.Sprint(milestoneID))
}

func (s *BoardHandlerTestSuite) TestTaskRelationRoutes() {
	s.loadBoard()

	todoID := s.created(s.do(http.MethodPost, "/api/board/statuses", gin.H{"name": "Todo"}, nil))
	designID := s.created(s.do(http.MethodPost, "/api/board/tasks", gin.H{
		"name":      "Design landing page",
		"status_id": todoID,
	}, nil))
	buildID := s.created(s.do(http.MethodPost, "/api/board/tasks", gin.H{
		"name":      "Build landing page",
		"status_id": todoID,
	}, nil))

	// Assignments.
	w := s.do(http.MethodPost, fmt.Sprintf("/api/tasks/%d/assignees", designID), gin.H{"user_id": "user_2"}, nil)
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/tasks/%d/assignees", designID), gin.H{"user_id": "user_2"}, nil)
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/tasks/%d/assignees", designID), nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Len(s.body(w)["assignees"], 1)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/tasks/%d/assignees/user_2", designID), nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	// Dependencies: build depends on design, and the reverse edge is a cycle.
	w = s.do(http.MethodPost, fmt.Sprintf("/api/tasks/%d/dependencies", buildID), gin.H{"dependency_id": designID}, nil)
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/tasks/%d/dependencies", designID), gin.H{"dependency_id": buildID}, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/tasks/%d/dependencies/%d", buildID, designID), nil, nil)
	s.Equal(http.StatusOK, w.Code)
}

// TestTaskRoutesRejectNonMembers signs in a user who belongs to no
// project and aims the task and board mutation routes at another
// project's task. Every attempt must 404 and leave the rows alone.
func (s *BoardHandlerTestSuite) TestTaskRoutesRejectNonMembers() {
	victimStatus, err := s.statusService.CreateStatus("Todo", "", s.project.ID)
	s.Require().NoError(err)
	victimTask, err := s.taskService.CreateTask(services.CreateTaskInput{
		Name:     "Confidential work",
		StatusID: victimStatus.ID,
	})
	s.Require().NoError(err)

	s.cookies = map[string]*http.Cookie{}
	s.signIn("intruder")

	w := s.do(http.MethodPost, fmt.Sprintf("/api/tasks/%d/assignees", victimTask.ID), gin.H{"user_id": "intruder"}, nil)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/tasks/%d/assignees", victimTask.ID), nil, nil)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/tasks/%d/dependencies", victimTask.ID), gin.H{"dependency_id": victimTask.ID}, nil)
	s.Equal(http.StatusNotFound, w.Code)

	var assignments int64
	s.Require().NoError(s.db.Model(&models.TaskAssignment{}).Count(&assignments).Error)
	s.Zero(assignments)

	// A board loaded for the intruder's own project cannot reach the
	// foreign task either.
	own, err := s.projectService.CreateProject("intruder", "Own Project")
	s.Require().NoError(err)
	w = s.do(http.MethodGet, fmt.Sprintf("/api/projects/%d/board", own.ID), nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/board/tasks/%d", victimTask.ID), nil, nil)
	s.Equal(http.StatusNotFound, w.Code)

	survivors, err := s.taskService.TasksByStatus(victimStatus.ID)
	s.Require().NoError(err)
	s.Len(survivors, 1)
}

func (s *BoardHandlerTestSuite) TestSignOutDropsBoardStore() {
	s.loadBoard()
	s.Require().Equal(1, s.manager.Len())

	w := s.do(http.MethodDelete, "/api/auth/session", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(0, s.manager.Len())

	// A fresh sign-in starts without a projection.
	s.signIn("user_1")
	w = s.do(http.MethodGet, "/api/board", nil, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *BoardHandlerTestSuite) TestStaleReferenceAfterConcurrentDelete() {
	s.loadBoard()

	todoID := s.created(s.do(http.MethodPost, "/api/board/statuses", gin.H{"name": "Todo"}, nil))
	taskID := s.created(s.do(http.MethodPost, "/api/board/tasks", gin.H{
		"name":      "Design landing page",
		"status_id": todoID,
	}, nil))

	// Another session deletes the task behind this projection's back.
	s.Require().NoError(s.db.Where("id = ?", taskID).Delete(&models.Task{}).Error)

	w := s.do(http.MethodPatch, fmt.Sprintf("/api/board/tasks/%d/name", taskID), gin.H{"name": "New name"}, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func TestBoardHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(BoardHandlerTestSuite))
}
