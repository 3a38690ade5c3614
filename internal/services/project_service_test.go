package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/project-management-api/internal/models"
)

func TestProjectService_CreateProject(t *testing.T) {
	env := setupTestEnv(t, nil)
	ctx := context.Background()
	alice := createTestUser(t, env, "alice")

	project, err := env.projectService.CreateProject(ctx, CreateProjectInput{
		Name:        "  Apollo  ",
		Description: "Moon",
		CreatorID:   alice.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Apollo", project.Name)
	assert.Equal(t, alice.ID, project.CreatedByID)

	member, err := env.members.GetMembership(ctx, project.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, member.Role)

	summaries, err := env.projectService.ListProjectsForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, project.ID, summaries[0].ProjectID)
	assert.Equal(t, models.RoleAdmin, summaries[0].Role)
	assert.Equal(t, int64(1), summaries[0].MemberCount)
}

func TestProjectService_CreateProjectEmptyName(t *testing.T) {
	env := setupTestEnv(t, nil)
	alice := createTestUser(t, env, "alice")

	_, err := env.projectService.CreateProject(context.Background(), CreateProjectInput{Name: "   ", CreatorID: alice.ID})
	assert.ErrorIs(t, err, ErrInvalidProjectName)

	var count int64
	require.NoError(t, env.db.Model(&models.Project{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestProjectService_UpdateProject(t *testing.T) {
	env := setupTestEnv(t, nil)
	ctx := context.Background()
	alice := createTestUser(t, env, "alice")
	project := createTestProject(t, env, alice)

	updated, err := env.projectService.UpdateProject(ctx, project.ID, UpdateProjectInput{Name: "Gemini", Description: "Orbit"})
	require.NoError(t, err)
	assert.Equal(t, "Gemini", updated.Name)

	stored, err := env.projectService.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gemini", stored.Name)
	assert.Equal(t, "Orbit", stored.Description)

	_, err = env.projectService.UpdateProject(ctx, 9999, UpdateProjectInput{Name: "x"})
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectService_DeleteProjectRemovesMemberships(t *testing.T) {
	env := setupTestEnv(t, nil)
	ctx := context.Background()
	alice := createTestUser(t, env, "alice")
	bob := createTestUser(t, env, "bob")
	project := createTestProject(t, env, alice)

	_, err := env.members.AddMember(ctx, project.ID, bob.Email, models.RoleMember)
	require.NoError(t, err)

	task, err := env.taskService.CreateTask(ctx, CreateTaskInput{ProjectID: project.ID, Title: "Design", AssignedBy: alice.ID})
	require.NoError(t, err)

	deleted, err := env.projectService.DeleteProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, deleted.ID)

	_, err = env.projectService.GetProject(ctx, project.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	var members int64
	require.NoError(t, env.db.Model(&models.ProjectMember{}).Where("project_id = ?", project.ID).Count(&members).Error)
	assert.Zero(t, members)

	// Tasks are not cascaded.
	var tasks int64
	require.NoError(t, env.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&tasks).Error)
	assert.Equal(t, int64(1), tasks)

	summaries, err := env.projectService.ListProjectsForUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, summaries)

	_, err = env.projectService.DeleteProject(ctx, project.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}
