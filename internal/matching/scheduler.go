// internal/matching/scheduler.go
// Daily candidate generation scheduler

package matching

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zawajhub/zawaj-backend/internal/common/utils"
)

// Scheduler runs the candidate generation batch once a day at a fixed
// hour. Operational scheduling lives here, outside the lifecycle core.
type Scheduler struct {
	service Service
	hour    int
	logger  *zap.Logger
}

func NewScheduler(service Service, hour int) *Scheduler {
	return &Scheduler{
		service: service,
		hour:    hour,
		logger:  utils.GetLogger(),
	}
}

// Start blocks until the context is cancelled. Run it in its own
// goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("generation scheduler started", zap.Int("hour", s.hour))

	for {
		next := s.nextRun(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("generation scheduler stopped")
			return
		case <-timer.C:
		}

		if _, err := s.service.RunGeneration(ctx, nil); err != nil {
			s.logger.Error("scheduled generation run failed", zap.Error(err))
		}
	}
}

func (s *Scheduler) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
