package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yukikurage/project-management-api/internal/auth"
	"github.com/yukikurage/project-management-api/internal/config"
	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/mail"
	"github.com/yukikurage/project-management-api/internal/mail/mailtest"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
)

type testEnv struct {
	db             *gorm.DB
	now            *time.Time
	mailer         *mailtest.Recorder
	userRepo       repository.UserRepository
	projectRepo    repository.ProjectRepository
	membershipRepo repository.MembershipRepository
	tokens         *auth.TokenService
	authService    *AuthService
	projectService *ProjectService
	members        *MembershipService
	taskService    *TaskService
	subTaskService *SubTaskService
}

var testMailConfig = config.MailConfig{
	ProductName:      "Task Manager",
	PublicBaseURL:    "http://localhost:8080",
	ResetRedirectURL: "http://localhost:3000/reset-password",
}

func setupTestEnv(t *testing.T, generator TaskGenerator) *testEnv {
	t.Helper()

	db, err := database.Connect(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, "test")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	now := time.Now().UTC()
	env := &testEnv{
		db:             db,
		now:            &now,
		mailer:         &mailtest.Recorder{},
		userRepo:       repository.NewUserRepository(db),
		projectRepo:    repository.NewProjectRepository(db),
		membershipRepo: repository.NewMembershipRepository(db),
	}

	env.tokens = auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     15 * time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    24 * time.Hour,
		OneTimeTTL:    auth.DefaultOneTimeTTL,
	}, env.userRepo).WithClock(func() time.Time { return *env.now })

	env.authService = NewAuthService(env.userRepo, env.tokens, env.mailer, testMailConfig)
	env.projectService = NewProjectService(env.projectRepo, env.membershipRepo)
	env.members = NewMembershipService(env.projectRepo, env.membershipRepo, env.userRepo)
	env.taskService = NewTaskService(repository.NewTaskRepository(db), repository.NewSubTaskRepository(db), env.membershipRepo, generator)
	env.subTaskService = NewSubTaskService(repository.NewSubTaskRepository(db))

	return env
}

var mailTokenPattern = regexp.MustCompile(`/([0-9a-f]{40})\b`)

func tokenFromMail(t *testing.T, msg mail.Message) string {
	t.Helper()

	match := mailTokenPattern.FindStringSubmatch(msg.Text)
	require.Len(t, match, 2, "no token link in mail body")
	return match[1]
}

func createTestUser(t *testing.T, env *testEnv, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@x.com",
		PasswordHash: "hashed",
	}
	require.NoError(t, env.userRepo.Create(context.Background(), user))
	return user
}

func createTestProject(t *testing.T, env *testEnv, creator *models.User) *models.Project {
	t.Helper()

	project, err := env.projectService.CreateProject(context.Background(), CreateProjectInput{
		Name:      "Apollo",
		CreatorID: creator.ID,
	})
	require.NoError(t, err)
	return project
}
