package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shirayuki/taskboard/internal/constants"
	"github.com/shirayuki/taskboard/internal/database"
	"github.com/shirayuki/taskboard/internal/middleware"
	"github.com/shirayuki/taskboard/internal/models"
	"github.com/shirayuki/taskboard/internal/repository"
	"github.com/shirayuki/taskboard/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type projectHandlerTestEnv struct {
	projectService *services.ProjectService
	handler        *ProjectHandler
}

func setupProjectHandlerTest(t *testing.T) projectHandlerTestEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Project{},
		&models.ProjectMember{},
		&models.InvitationCode{},
	)
	require.NoError(t, err)

	database.SetDB(db)
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		require.NoError(t, err)
		sqlDB.Close()
	})

	projectService := services.NewProjectService(repository.NewProjectRepository(db))

	return projectHandlerTestEnv{
		projectService: projectService,
		handler:        NewProjectHandler(projectService),
	}
}

// asUser stands in for the session middleware and injects the user id the
// way RequireAuth would.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

func (env projectHandlerTestEnv) router(userID string) *gin.Engine {
	r := gin.New()

	api := r.Group("/api", asUser(userID))
	api.POST("/projects", env.handler.CreateProject)
	api.GET("/projects", env.handler.ListProjects)

	project := api.Group("/projects/:id", middleware.RequireProjectAccess())
	project.GET("", env.handler.GetProject)
	project.POST("/invitation", middleware.RequireProjectOwner(), env.handler.CreateInvitation)

	api.GET("/invitations/:code", env.handler.LookupInvitation)
	api.POST("/invitations/:code/redeem", env.handler.RedeemInvitation)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCreateProjectEndpoint(t *testing.T) {
	env := setupProjectHandlerTest(t)
	r := env.router("user_1")

	w := doJSON(t, r, http.MethodPost, "/api/projects", gin.H{"name": "Website Redesign"})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "Website Redesign", body["name"])
	assert.NotZero(t, body["id"])

	// Same name again conflicts.
	w = doJSON(t, r, http.MethodPost, "/api/projects", gin.H{"name": "Website Redesign"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Missing name fails binding.
	w = doJSON(t, r, http.MethodPost, "/api/projects", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Too-short name is rejected by the service.
	w = doJSON(t, r, http.MethodPost, "/api/projects", gin.H{"name": "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListProjectsEndpoint(t *testing.T) {
	env := setupProjectHandlerTest(t)

	for i := 0; i < 3; i++ {
		_, err := env.projectService.CreateProject("user_1", fmt.Sprintf("Project %d", i))
		require.NoError(t, err)
	}
	_, err := env.projectService.CreateProject("user_2", "Someone else's")
	require.NoError(t, err)

	w := doJSON(t, env.router("user_1"), http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	projects := body["projects"].([]any)
	assert.Len(t, projects, 3)

	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 1, pagination["page"])
	assert.EqualValues(t, 3, pagination["total"])

	// Pagination caps the page size.
	w = doJSON(t, env.router("user_1"), http.MethodGet, "/api/projects?page=1&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Len(t, body["projects"].([]any), 2)
}

func TestGetProjectEndpoint(t *testing.T) {
	env := setupProjectHandlerTest(t)

	project, err := env.projectService.CreateProject("user_1", "Website Redesign")
	require.NoError(t, err)

	path := fmt.Sprintf("/api/projects/%d", project.ID)

	w := doJSON(t, env.router("user_1"), http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "Website Redesign", body["name"])
	assert.Equal(t, string(models.RoleOwner), body["your_role"])
	assert.Len(t, body["members"].([]any), 1)

	// Non-members see a 404, not a 403.
	w = doJSON(t, env.router("stranger"), http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, env.router("user_1"), http.MethodGet, "/api/projects/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvitationEndpoints(t *testing.T) {
	env := setupProjectHandlerTest(t)

	project, err := env.projectService.CreateProject("owner", "Website Redesign")
	require.NoError(t, err)

	invitePath := fmt.Sprintf("/api/projects/%d/invitation", project.ID)

	w := doJSON(t, env.router("owner"), http.MethodPost, invitePath, gin.H{"duration_seconds": 600})
	require.Equal(t, http.StatusOK, w.Code)

	code := decodeBody(t, w)["code"].(string)
	require.Len(t, code, 10)

	// The code resolves to the project.
	w = doJSON(t, env.router("anyone"), http.MethodGet, "/api/invitations/"+code, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Website Redesign", body["name"])
	assert.Equal(t, code, body["code"])

	w = doJSON(t, env.router("anyone"), http.MethodGet, "/api/invitations/UNKNOWN123", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Redeeming joins the project.
	w = doJSON(t, env.router("collab"), http.MethodPost, "/api/invitations/"+code+"/redeem", nil)
	require.Equal(t, http.StatusOK, w.Code)

	member, err := env.projectService.IsMember(project.ID, "collab")
	require.NoError(t, err)
	assert.True(t, member)

	// Collaborators cannot issue codes.
	w = doJSON(t, env.router("collab"), http.MethodPost, invitePath, gin.H{"duration_seconds": 600})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, env.router("collab"), http.MethodPost, "/api/invitations/UNKNOWN123/redeem", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
