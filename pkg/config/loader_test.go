package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsProducesValidConfig(t *testing.T) {
	l := NewLoader(WithConfigPaths(), WithEnvPrefix("FLOWSCHED_TEST_NOPE_"))
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "flowsched", cfg.App.Name)
	assert.Equal(t, "dr", cfg.Scheduler.Algorithm)
	assert.Equal(t, 4, cfg.Topology.FatTreeK)
}

func TestEnvOverridesDefault(t *testing.T) {
	t.Setenv("FLOWSCHED_TEST_SCHEDULER_ALGORITHM", "ecmp")
	l := NewLoader(WithConfigPaths(), WithEnvPrefix("FLOWSCHED_TEST_"))
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "ecmp", cfg.Scheduler.Algorithm)
}

func TestConfigFileOverridesDefault(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	require.NoError(t, os.WriteFile(path, []byte("topology:\n  fattree_k: 8\n"), 0o644))

	l := NewLoader(WithConfigPaths(path), WithEnvPrefix("FLOWSCHED_TEST_NOPE_"))
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Topology.FatTreeK)
}
