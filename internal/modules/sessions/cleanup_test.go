package sessions

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupJobPrunesOnStart(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.GetOrCreate("stale")
	require.NoError(t, err)
	_, err = repo.db.Exec(`UPDATE sessions SET updated_at = ? WHERE id = ?`,
		time.Now().UTC().Add(-48*time.Hour), "stale")
	require.NoError(t, err)

	job := NewCleanupJob(repo, 24*time.Hour, zerolog.Nop())
	require.NoError(t, job.Start())

	// Stop blocks until the startup run finishes, so the prune is visible
	// afterwards and the caller can safely close the database.
	job.Stop()

	s, err := repo.Get("stale")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestCleanupJobStopBeforeRunCompletes(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.GetOrCreate("stale")
	require.NoError(t, err)
	_, err = repo.db.Exec(`UPDATE sessions SET updated_at = ? WHERE id = ?`,
		time.Now().UTC().Add(-48*time.Hour), "stale")
	require.NoError(t, err)

	// Stop immediately after Start; the startup run must still land before
	// Stop returns rather than racing a database shutdown.
	job := NewCleanupJob(repo, 24*time.Hour, zerolog.Nop())
	require.NoError(t, job.Start())
	job.Stop()

	pruned, err := repo.DeleteExpired(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pruned, "startup run already pruned the stale session")
}
