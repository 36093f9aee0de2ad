package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerNextRun(t *testing.T) {
	s := NewScheduler(nil, 4)

	// Before the scheduled hour: same day.
	now := time.Date(2026, 3, 10, 2, 30, 0, 0, time.UTC)
	next := s.nextRun(now)
	assert.Equal(t, time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC), next)

	// After the scheduled hour: next day.
	now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	next = s.nextRun(now)
	assert.Equal(t, time.Date(2026, 3, 11, 4, 0, 0, 0, time.UTC), next)

	// Exactly at the hour: next day, not an immediate re-run.
	now = time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC)
	next = s.nextRun(now)
	assert.Equal(t, time.Date(2026, 3, 11, 4, 0, 0, 0, time.UTC), next)
}
