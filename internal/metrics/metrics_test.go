package metrics_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/ecohub/internal/errors"
	"codeberg.org/mutker/ecohub/internal/logger"
	"codeberg.org/mutker/ecohub/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(i int) *metrics.BatchSnapshot {
	return &metrics.BatchSnapshot{
		ID:             fmt.Sprintf("batch-%d", i),
		Timestamp:      time.Now(),
		Size:           3,
		Critical:       1,
		AverageTemp:    27.5,
		CoolingActions: 1,
	}
}

func countBatches(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM batches").Scan(&n))
	return n
}

func TestRecorderDisabled(t *testing.T) {
	rec, err := metrics.NewRecorder(metrics.DefaultConfig(), logger.Nop())
	require.NoError(t, err)

	assert.NoError(t, rec.Record(context.Background(), snapshot(1)))
	assert.NoError(t, rec.Close())
}

func TestRecorderValidation(t *testing.T) {
	cfg := metrics.DefaultConfig()
	cfg.Enabled = true
	cfg.DBPath = ""

	_, err := metrics.NewRecorder(cfg, logger.Nop())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, metrics.ErrInvalidConfig))
}

func TestRecorderPersistsSnapshots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "metrics.db")
	cfg := metrics.Config{
		DBPath:    path,
		BatchSize: 2,
		Enabled:   true,
	}

	rec, err := metrics.NewRecorder(cfg, logger.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, rec.Record(ctx, snapshot(i)))
	}

	// Two snapshots hit the batch size; the third waits for Close.
	assert.Equal(t, 2, countBatches(t, path))

	require.NoError(t, rec.Close())
	assert.Equal(t, 3, countBatches(t, path))
	assert.NoError(t, rec.Close())
}

func TestRecorderRejectsNilSnapshot(t *testing.T) {
	cfg := metrics.Config{
		DBPath:    filepath.Join(t.TempDir(), "metrics.db"),
		BatchSize: 1,
		Enabled:   true,
	}

	rec, err := metrics.NewRecorder(cfg, logger.Nop())
	require.NoError(t, err)
	defer rec.Close()

	err = rec.Record(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, metrics.ErrInvalidSnapshot))
}

func TestRecorderCanceledContext(t *testing.T) {
	cfg := metrics.Config{
		DBPath:    filepath.Join(t.TempDir(), "metrics.db"),
		BatchSize: 1,
		Enabled:   true,
	}

	rec, err := metrics.NewRecorder(cfg, logger.Nop())
	require.NoError(t, err)
	defer rec.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = rec.Record(ctx, snapshot(1))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, metrics.ErrOperationTimeout))
}

func TestSchemaRecreatedOnVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	require.NoError(t, metrics.InitSchema(db, logger.Nop()))
	_, err = db.Exec("UPDATE schema_versions SET version = 99")
	require.NoError(t, err)

	require.NoError(t, metrics.ValidateAndUpdateSchema(db, logger.Nop()))
	version, err := metrics.GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, metrics.SchemaVersion, version)
	require.NoError(t, db.Close())
}

func TestStats(t *testing.T) {
	reg := prometheus.NewRegistry()
	stats, err := metrics.NewStats(reg)
	require.NoError(t, err)

	stats.UpdateProduced()
	stats.UpdateProduced()
	stats.BatchProcessed(2)
	stats.CriticalRecord("THERMOSTAT")
	stats.Action(metrics.ActionCooling)
	stats.Action(metrics.ActionLowBattery)
	stats.Action("none")
	stats.Persisted(nil)
	stats.Persisted(assert.AnError)
	stats.SetAverageTemperature(26.5)
	stats.SetQueueDepth(4)

	summary := stats.Summary()
	assert.Equal(t, metrics.Summary{
		Produced:        2,
		Processed:       2,
		Batches:         1,
		Critical:        1,
		CoolingActions:  1,
		LowBattery:      1,
		Persisted:       1,
		PersistFailures: 1,
		AverageTemp:     26.5,
	}, summary)

	count, err := testutil.GatherAndCount(reg, "ecohub_reactive_actions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStatsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.NewStats(reg)
	require.NoError(t, err)

	_, err = metrics.NewStats(reg)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, metrics.ErrRegisterFailed))
}

func TestStatsPrivateRegistry(t *testing.T) {
	stats, err := metrics.NewStats(nil)
	require.NoError(t, err)
	stats.UpdateProduced()
	assert.Equal(t, int64(1), stats.Summary().Produced)
}
