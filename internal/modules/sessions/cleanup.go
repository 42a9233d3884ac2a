package sessions

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// CleanupJob prunes expired sessions on a fixed schedule and keeps the
// session database compact with periodic WAL checkpoints.
type CleanupJob struct {
	repo *Repository
	ttl  time.Duration
	cron *cron.Cron
	wg   sync.WaitGroup
	log  zerolog.Logger
}

// NewCleanupJob creates an hourly session cleanup job.
func NewCleanupJob(repo *Repository, ttl time.Duration, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo: repo,
		ttl:  ttl,
		cron: cron.New(),
		log:  log.With().Str("job", "session_cleanup").Logger(),
	}
}

// Start schedules the job. Runs once immediately so a restart never leaves
// stale sessions lingering for a full hour.
func (j *CleanupJob) Start() error {
	if _, err := j.cron.AddFunc("@hourly", j.runOnce); err != nil {
		return err
	}
	j.cron.Start()

	// The startup run is tracked so Stop does not return while it still
	// holds the database.
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.runOnce()
	}()
	return nil
}

// Stop halts the schedule. Waits for in-flight runs, including the startup
// run, to finish before returning.
func (j *CleanupJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.wg.Wait()
}

func (j *CleanupJob) runOnce() {
	pruned, err := j.repo.DeleteExpired(j.ttl)
	if err != nil {
		j.log.Error().Err(err).Msg("Session cleanup failed")
		return
	}

	if pruned > 0 {
		j.log.Info().Int64("pruned", pruned).Msg("Expired sessions removed")

		if err := j.repo.db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().Err(err).Msg("WAL checkpoint after cleanup failed")
		}
	}
}
