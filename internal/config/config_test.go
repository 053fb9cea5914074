package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cosmos-bridge/orchestrator/internal/config"
)

func TestLoad_MissingPathReturnsDefault(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestWriteThenLoad_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orchestrator.toml")

	want := &config.Config{
		Relayer: config.RelayerConfig{
			BatchRequestMode: "ProfitableOnly",
			RelayerLoopSpeed: 30,
		},
		Orchestrator: config.OrchestratorConfig{RelayerEnabled: true},
		Metrics:      config.MetricsConfig{MetricsEnabled: true, MetricsBind: "0.0.0.0:9191"},
	}

	require.NoError(t, config.Write(want, path))

	got, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLoad_NonexistentFileErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
