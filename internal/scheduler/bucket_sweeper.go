package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sticctape/barkeep-backend/internal/middleware"
	"github.com/sticctape/barkeep-backend/pkg/logger"
)

// bucketIdleAge: buckets untouched this long refill to capacity on the
// next request anyway, so dropping them is free.
const bucketIdleAge = 10 * time.Minute

// BucketSweeper periodically prunes idle rate-limit buckets so the
// per-address map does not grow with every client ever seen.
type BucketSweeper struct {
	cron    *cron.Cron
	limiter *middleware.MemoryRateLimiter
}

func NewBucketSweeper(limiter *middleware.MemoryRateLimiter) *BucketSweeper {
	return &BucketSweeper{
		cron:    cron.New(),
		limiter: limiter,
	}
}

// Start schedules the sweep every 15 minutes.
func (s *BucketSweeper) Start() error {
	_, err := s.cron.AddFunc("*/15 * * * *", func() {
		removed := s.limiter.Prune(bucketIdleAge)
		if removed > 0 {
			logger.Debug("Pruned idle rate-limit buckets", map[string]interface{}{
				"removed": removed,
			})
		}
	})
	if err != nil {
		logger.Error("Failed to schedule rate-limit bucket sweep", err)
		return err
	}

	s.cron.Start()
	logger.Info("Rate-limit bucket sweeper started", nil)
	return nil
}

// Stop halts the scheduler.
func (s *BucketSweeper) Stop() {
	s.cron.Stop()
}
