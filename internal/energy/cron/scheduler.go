package cronjob

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// RefreshFunc reloads a cached resource
type RefreshFunc func(ctx context.Context) error

// Scheduler runs periodic background jobs
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

// NewScheduler creates a scheduler. Each job run is bounded by timeout.
func NewScheduler(timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		timeout: timeout,
	}
}

// AddRefresh registers fn on a cron spec such as "@every 10m" or "0 */10 * * * *"
func (s *Scheduler) AddRefresh(name, spec string, fn RefreshFunc) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.run(name, fn)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	log.Printf("Cron job %s scheduled (%s)", name, spec)
	return nil
}

// Start starts the scheduler in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("Cron scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) run(name string, fn RefreshFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := fn(ctx); err != nil {
		log.Printf("Cron job %s failed: %v", name, err)
		return
	}
	log.Printf("Cron job %s completed in %s", name, time.Since(start).Round(time.Millisecond))
}
