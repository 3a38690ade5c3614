package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yukikurage/project-management-api/internal/logger"
	"github.com/yukikurage/project-management-api/internal/repository"
)

// SchedulerService wraps cron-based jobs.
type SchedulerService struct {
	cron     *cron.Cron
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewSchedulerService(userRepo repository.UserRepository) *SchedulerService {
	return &SchedulerService{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		userRepo: userRepo,
		now:      time.Now,
	}
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// ScheduleInterval registers a periodic job every given duration.
func (s *SchedulerService) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	spec := fmt.Sprintf("@every %ds", seconds)
	return s.cron.AddFunc(spec, job)
}

// ScheduleTokenSweep clears expired one-time token hashes every interval.
func (s *SchedulerService) ScheduleTokenSweep(interval time.Duration) (cron.EntryID, error) {
	return s.ScheduleInterval(interval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, err := s.SweepExpiredTokens(ctx); err != nil {
			logger.Error("Expired token sweep failed", "error", err)
		}
	})
}

// SweepExpiredTokens clears verification and reset hashes whose expiry has
// passed. Such tokens are already rejected on use.
func (s *SchedulerService) SweepExpiredTokens(ctx context.Context) (int64, error) {
	cleared, err := s.userRepo.ClearExpiredTokens(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired tokens: %w", err)
	}
	if cleared > 0 {
		logger.Info("Cleared expired one-time tokens", "count", cleared)
	}
	return cleared, nil
}
