package hub_test

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/ecohub/internal/config"
	"codeberg.org/mutker/ecohub/internal/device"
	"codeberg.org/mutker/ecohub/internal/errors"
	"codeberg.org/mutker/ecohub/internal/hub"
	"codeberg.org/mutker/ecohub/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		LogLevel:         "debug",
		HistoryFile:      filepath.Join(dir, "history.log"),
		BatchSize:        config.DefaultBatchSize,
		IdleDelay:        2 * time.Millisecond,
		MinUpdateDelay:   time.Millisecond,
		MaxUpdateDelay:   3 * time.Millisecond,
		TempThreshold:    config.DefaultTempThreshold,
		CoolingTarget:    config.DefaultCoolingTarget,
		BatteryThreshold: config.DefaultBatteryThreshold,
		Metrics:          true,
		MetricsDB:        filepath.Join(dir, "metrics.db"),
		Devices:          config.DefaultDevices(),
	}
}

type historyLine struct {
	Timestamp string         `json:"timestamp"`
	Update    map[string]any `json:"update"`
}

func readHistory(t *testing.T, path string) []historyLine {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []historyLine
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var line historyLine
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestRunPersistsEveryUpdate(t *testing.T) {
	cfg := testConfig(t)
	h, err := hub.New(cfg, logger.Nop(), hub.WithSeed(42), hub.WithRegistry(prometheus.NewRegistry()))
	require.NoError(t, err)
	assert.Equal(t, 6, h.Fleet().Len())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	assert.Eventually(t, func() bool { return h.Stats().Produced >= 30 }, 5*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("hub did not shut down")
	}

	summary := h.Stats()
	assert.Equal(t, summary.Produced, summary.Processed)
	assert.Equal(t, summary.Produced, summary.Persisted)
	assert.Zero(t, summary.PersistFailures)
	// cam_02 starts at 5% battery and never recharges.
	assert.Positive(t, summary.LowBattery)

	lines := readHistory(t, cfg.HistoryFile)
	require.Len(t, lines, int(summary.Produced))
	for _, line := range lines {
		_, err := time.Parse(time.RFC3339Nano, line.Timestamp)
		assert.NoError(t, err)
		assert.NotEmpty(t, line.Update[device.FieldDeviceID])
		assert.NotEmpty(t, line.Update[device.FieldTimestamp])
	}

	db, err := sql.Open("sqlite3", cfg.MetricsDB)
	require.NoError(t, err)
	defer db.Close()
	var batches int64
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM batches").Scan(&batches))
	assert.Equal(t, summary.Batches, batches)
}

func TestRunCoolsThermostats(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics = false
	cfg.Devices = []config.DeviceConfig{
		{ID: "thermo_01", Name: "Main Thermostat", Location: "Living Room", Type: "THERMOSTAT"},
	}
	hot := 45.0
	cfg.Devices[0].CurrentTemp = &hot

	h, err := hub.New(cfg, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	assert.Eventually(t, func() bool { return h.Stats().CoolingActions >= 1 }, 5*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestNewRejectsBadHistoryPath(t *testing.T) {
	cfg := testConfig(t)
	cfg.HistoryFile = ""

	_, err := hub.New(cfg, logger.Nop())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, hub.ErrInitApp))
}

func TestNewRejectsDuplicateDevices(t *testing.T) {
	cfg := testConfig(t)
	cfg.Devices = append(cfg.Devices, cfg.Devices[0])

	_, err := hub.New(cfg, logger.Nop())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, hub.ErrInitApp))
}
