package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/project-management-api/internal/models"
)

func TestSubTaskService_Lifecycle(t *testing.T) {
	env := setupTestEnv(t, nil)
	ctx := context.Background()
	alice := createTestUser(t, env, "alice")
	project := createTestProject(t, env, alice)
	task, err := env.taskService.CreateTask(ctx, CreateTaskInput{ProjectID: project.ID, Title: "Plan", AssignedBy: alice.ID})
	require.NoError(t, err)

	_, err = env.subTaskService.CreateSubTask(ctx, CreateSubTaskInput{TaskID: task.ID, Title: " ", CreatedBy: alice.ID})
	assert.ErrorIs(t, err, ErrTitleRequired)

	subTask, err := env.subTaskService.CreateSubTask(ctx, CreateSubTaskInput{TaskID: task.ID, Title: "Draft", CreatedBy: alice.ID})
	require.NoError(t, err)
	assert.False(t, subTask.IsCompleted)
	assert.Equal(t, alice.ID, subTask.CreatedByID)

	done := true
	updated, err := env.subTaskService.UpdateSubTask(ctx, task.ID, subTask.ID, UpdateSubTaskInput{IsCompleted: &done})
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)
	assert.Equal(t, "Draft", updated.Title)

	stored, err := env.taskService.GetTask(ctx, project.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, stored.SubTasks, 1)
	assert.True(t, stored.SubTasks[0].IsCompleted)

	empty := ""
	_, err = env.subTaskService.UpdateSubTask(ctx, task.ID, subTask.ID, UpdateSubTaskInput{Title: &empty})
	assert.ErrorIs(t, err, ErrTitleEmpty)

	deleted, err := env.subTaskService.DeleteSubTask(ctx, task.ID, subTask.ID)
	require.NoError(t, err)
	assert.Equal(t, subTask.ID, deleted.ID)

	_, err = env.subTaskService.DeleteSubTask(ctx, task.ID, subTask.ID)
	assert.ErrorIs(t, err, ErrSubTaskNotFound)
}

func TestSubTaskService_SubTaskOfAnotherTaskIsNotFound(t *testing.T) {
	env := setupTestEnv(t, nil)
	ctx := context.Background()
	alice := createTestUser(t, env, "alice")
	project := createTestProject(t, env, alice)

	first, err := env.taskService.CreateTask(ctx, CreateTaskInput{ProjectID: project.ID, Title: "First", AssignedBy: alice.ID})
	require.NoError(t, err)
	second, err := env.taskService.CreateTask(ctx, CreateTaskInput{ProjectID: project.ID, Title: "Second", AssignedBy: alice.ID})
	require.NoError(t, err)

	subTask, err := env.subTaskService.CreateSubTask(ctx, CreateSubTaskInput{TaskID: first.ID, Title: "Step", CreatedBy: alice.ID})
	require.NoError(t, err)

	done := true
	_, err = env.subTaskService.UpdateSubTask(ctx, second.ID, subTask.ID, UpdateSubTaskInput{IsCompleted: &done})
	assert.ErrorIs(t, err, ErrSubTaskNotFound)

	_, err = env.subTaskService.DeleteSubTask(ctx, second.ID, subTask.ID)
	assert.ErrorIs(t, err, ErrSubTaskNotFound)

	var count int64
	require.NoError(t, env.db.Model(&models.SubTask{}).Where("id = ? AND is_completed = ?", subTask.ID, false).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
