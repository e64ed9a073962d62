// Package scheduler runs periodic background jobs of the notification hub
package scheduler

import (
	"context"
	"log"
	"time"
)

// NotificationExpirer deactivates notifications whose expiry has passed.
// business_flow.NotificationFlow satisfies it.
type NotificationExpirer interface {
	ExpireNotifications(ctx context.Context) (int64, error)
}

// ExpiryScheduler periodically flips expired notifications to inactive
type ExpiryScheduler struct {
	expirer  NotificationExpirer
	logger   *log.Logger
	interval time.Duration
	timeout  time.Duration
}

// NewExpiryScheduler creates a scheduler ticking every interval (one minute when unset)
func NewExpiryScheduler(expirer NotificationExpirer, logger *log.Logger, interval time.Duration) *ExpiryScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = log.New(log.Writer(), "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
	}

	timeout := 30 * time.Second
	if interval < timeout {
		timeout = interval
	}

	return &ExpiryScheduler{
		expirer:  expirer,
		logger:   logger,
		interval: interval,
		timeout:  timeout,
	}
}

// Start runs one pass immediately and then on every tick. The returned func stops the loop.
func (s *ExpiryScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *ExpiryScheduler) runOnce(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	n, err := s.expirer.ExpireNotifications(ctx)
	if err != nil {
		s.logger.Printf("scheduler: expire notifications failed: %v", err)
		return
	}
	if n > 0 {
		s.logger.Printf("scheduler: deactivated %d expired notifications", n)
	}
}
