package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerService_SweepExpiredTokens(t *testing.T) {
	env := setupTestEnv(t, nil)
	ctx := context.Background()

	registerAlice(t, env)
	require.NoError(t, env.authService.ForgotPassword(ctx, "alice@x.com"))

	scheduler := NewSchedulerService(env.userRepo)
	scheduler.now = func() time.Time { return *env.now }

	cleared, err := scheduler.SweepExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Zero(t, cleared)

	scheduler.now = func() time.Time { return env.now.Add(time.Hour) }
	cleared, err = scheduler.SweepExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)

	user, err := env.userRepo.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Nil(t, user.EmailVerificationToken)
	assert.Nil(t, user.EmailVerificationTokenExpiry)
	assert.Nil(t, user.ForgotPasswordToken)
	assert.Nil(t, user.ForgotPasswordTokenExpiry)
}

func TestSchedulerService_ScheduleInterval(t *testing.T) {
	scheduler := NewSchedulerService(nil)

	_, err := scheduler.ScheduleInterval(0, func() {})
	assert.Error(t, err)

	ran := make(chan struct{}, 1)
	_, err = scheduler.ScheduleInterval(time.Second, func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)

	scheduler.Start()
	defer scheduler.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled job did not run")
	}
}
