package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yukikurage/project-management-api/internal/auth"
	"github.com/yukikurage/project-management-api/internal/config"
	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/database"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
)

type envelope struct {
	Success    bool          `json:"success"`
	StatusCode int           `json:"statusCode"`
	Message    string        `json:"message"`
	Data       interface{}   `json:"data"`
	Errors     []interface{} `json:"errors"`
}

type testEnv struct {
	db          *gorm.DB
	now         time.Time
	tokens      *auth.TokenService
	users       repository.UserRepository
	memberships repository.MembershipRepository
	tasks       repository.TaskRepository
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, "test")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	env := &testEnv{
		db:          db,
		now:         time.Now(),
		users:       repository.NewUserRepository(db),
		memberships: repository.NewMembershipRepository(db),
		tasks:       repository.NewTaskRepository(db),
	}
	env.tokens = auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     15 * time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    time.Hour,
		OneTimeTTL:    auth.DefaultOneTimeTTL,
	}, env.users).WithClock(func() time.Time { return env.now })

	return env
}

func (e *testEnv) createUser(t *testing.T, username string) (*models.User, string) {
	t.Helper()

	user := &models.User{Username: username, Email: username + "@x.com", PasswordHash: "hash"}
	require.NoError(t, e.users.Create(context.Background(), user))

	token, err := e.tokens.IssueAccessToken(user)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) createProject(t *testing.T, owner *models.User) *models.Project {
	t.Helper()

	project := &models.Project{Name: "P1", CreatedByID: owner.ID}
	require.NoError(t, repository.NewProjectRepository(e.db).CreateWithAdmin(context.Background(), project))
	return project
}

func perform(t *testing.T, r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func bearer(method, path, token string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func (e *testEnv) authRouter() *gin.Engine {
	r := gin.New()
	r.Use(apierrors.Handler())
	r.GET("/me", RequireAuth(e.tokens, e.users), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		user, ok := GetUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": userID, "username": user.Username}})
	})
	return r
}

func TestRequireAuth_BearerHeader(t *testing.T) {
	env := setupTestEnv(t)
	user, token := env.createUser(t, "alice")

	w, body := perform(t, env.authRouter(), bearer(http.MethodGet, "/me", token))

	require.Equal(t, http.StatusOK, w.Code)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, float64(user.ID), data["id"])
	assert.Equal(t, "alice", data["username"])
}

func TestRequireAuth_Cookie(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.createUser(t, "alice")

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: constants.AccessTokenCookie, Value: token})
	w, _ := perform(t, env.authRouter(), req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth_Failures(t *testing.T) {
	env := setupTestEnv(t)
	user, token := env.createUser(t, "alice")

	w, body := perform(t, env.authRouter(), bearer(http.MethodGet, "/me", ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, body.Success)
	assert.Equal(t, []interface{}{"missing token"}, body.Errors)

	w, body = perform(t, env.authRouter(), bearer(http.MethodGet, "/me", "not-a-token"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, []interface{}{"invalid token"}, body.Errors)

	refresh, err := env.tokens.IssueRefreshToken(context.Background(), user)
	require.NoError(t, err)
	w, body = perform(t, env.authRouter(), bearer(http.MethodGet, "/me", refresh))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, []interface{}{"invalid token"}, body.Errors)

	env.now = env.now.Add(16 * time.Minute)
	w, body = perform(t, env.authRouter(), bearer(http.MethodGet, "/me", token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, []interface{}{"token expired"}, body.Errors)
}

func TestRequireAuth_DeletedUser(t *testing.T) {
	env := setupTestEnv(t)
	user, token := env.createUser(t, "alice")
	require.NoError(t, env.db.Delete(&models.User{}, user.ID).Error)

	w, body := perform(t, env.authRouter(), bearer(http.MethodGet, "/me", token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, []interface{}{"user not found"}, body.Errors)
}

func (e *testEnv) projectRouter(roles ...models.ProjectRole) *gin.Engine {
	r := gin.New()
	r.Use(apierrors.Handler())
	r.GET("/projects/:projectId",
		RequireAuth(e.tokens, e.users),
		RequireProjectRole(e.memberships, roles...),
		func(c *gin.Context) {
			projectID, _ := GetProjectID(c)
			role, _ := GetProjectRole(c)
			c.JSON(http.StatusOK, gin.H{"data": gin.H{"project_id": projectID, "role": role}})
		},
	)
	return r
}

func TestRequireProjectRole(t *testing.T) {
	env := setupTestEnv(t)
	alice, aliceToken := env.createUser(t, "alice")
	bob, bobToken := env.createUser(t, "bob")
	_, carolToken := env.createUser(t, "carol")
	project := env.createProject(t, alice)
	require.NoError(t, env.memberships.Upsert(context.Background(), &models.ProjectMember{
		ProjectID: project.ID, UserID: bob.ID, Role: models.RoleMember,
	}))

	path := "/projects/" + itoa(project.ID)
	anyMember := env.projectRouter()
	adminOnly := env.projectRouter(models.RoleAdmin)

	w, body := perform(t, anyMember, bearer(http.MethodGet, path, bobToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "member", body.Data.(map[string]interface{})["role"])

	w, _ = perform(t, adminOnly, bearer(http.MethodGet, path, aliceToken))
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = perform(t, adminOnly, bearer(http.MethodGet, path, bobToken))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, body.Success)

	w, _ = perform(t, anyMember, bearer(http.MethodGet, path, carolToken))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = perform(t, anyMember, bearer(http.MethodGet, "/projects/abc", aliceToken))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireTask(t *testing.T) {
	env := setupTestEnv(t)
	alice, token := env.createUser(t, "alice")
	project := env.createProject(t, alice)
	other := env.createProject(t, alice)

	task := &models.Task{Title: "Plan", ProjectID: project.ID, AssignedToID: alice.ID, AssignedByID: alice.ID}
	require.NoError(t, env.tasks.Create(context.Background(), task))

	r := gin.New()
	r.Use(apierrors.Handler())
	r.GET("/projects/:projectId/tasks/:taskId",
		RequireAuth(env.tokens, env.users),
		RequireProjectRole(env.memberships),
		RequireTask(env.tasks),
		func(c *gin.Context) {
			loaded, _ := GetTask(c)
			c.JSON(http.StatusOK, gin.H{"data": gin.H{"title": loaded.Title}})
		},
	)

	w, body := perform(t, r, bearer(http.MethodGet, "/projects/"+itoa(project.ID)+"/tasks/"+itoa(task.ID), token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Plan", body.Data.(map[string]interface{})["title"])

	w, _ = perform(t, r, bearer(http.MethodGet, "/projects/"+itoa(other.ID)+"/tasks/"+itoa(task.ID), token))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = perform(t, r, bearer(http.MethodGet, "/projects/"+itoa(project.ID)+"/tasks/x", token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logging())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "client-id", w.Header().Get("X-Request-ID"))
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(apierrors.Handler(), BodyLimit(16))
	r.POST("/", func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			apierrors.Abort(c, apierrors.New(http.StatusRequestEntityTooLarge, ""))
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"b"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"`+strings.Repeat("b", 64)+`"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(apierrors.Handler(), NewRateLimiter(2).Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1"))
	assert.Equal(t, http.StatusOK, request("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1"))
	assert.Equal(t, http.StatusOK, request("10.0.0.2"))
}

func TestRateLimiter_Prune(t *testing.T) {
	now := time.Now()
	limiter := NewRateLimiter(2)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.allow("10.0.0.1"))
	assert.True(t, limiter.allow("10.0.0.1"))
	assert.False(t, limiter.allow("10.0.0.1"))

	now = now.Add(30 * time.Second)
	assert.True(t, limiter.allow("10.0.0.2"))
	assert.Equal(t, 2, limiter.Len())

	now = now.Add(45 * time.Second)
	assert.Equal(t, 1, limiter.Prune(time.Minute))
	assert.Equal(t, 1, limiter.Len())

	// A forgotten client starts again with a full bucket.
	assert.True(t, limiter.allow("10.0.0.1"))
	assert.Equal(t, 2, limiter.Len())
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}
