package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper removes expired entries from one in-memory table and reports
// how many it dropped.
type Sweeper func(context.Context) (int64, error)

// CleanupJob periodically sweeps the in-memory stores (sessions,
// consumed authorization codes). Redis-backed stores expire on their own
// and register no sweeper.
type CleanupJob struct {
	sweepers map[string]Sweeper
	interval time.Duration
	done     chan struct{}
}

func NewCleanupJob(interval time.Duration) *CleanupJob {
	return &CleanupJob{
		sweepers: make(map[string]Sweeper),
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Register adds a named sweeper. Must be called before Start.
func (j *CleanupJob) Register(name string, sweeper Sweeper) {
	j.sweepers[name] = sweeper
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Int("sweepers", len(j.sweepers)).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for name, sweeper := range j.sweepers {
		count, err := sweeper(ctx)
		if err != nil {
			log.Error().Err(err).Msgf("failed to cleanup %s", name)
		} else if count > 0 {
			log.Info().Int64("count", count).Msgf("cleaned up %s", name)
		}
	}
}
