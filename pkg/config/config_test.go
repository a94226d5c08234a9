package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:       AppConfig{Name: "flowsched"},
		Log:       LogConfig{Level: "info"},
		Scheduler: SchedulerConfig{Algorithm: "dr", Order: "size"},
		Topology:  TopologyConfig{Source: "fattree", FatTreeK: 4},
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsMissingAppName(t *testing.T) {
	cfg := validConfig()
	cfg.App.Name = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownAlgorithm(t *testing.T) {
	cfg := validConfig()
	cfg.Scheduler.Algorithm = "greedy"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsOddFatTreeK(t *testing.T) {
	cfg := validConfig()
	cfg.Topology.FatTreeK = 5
	assert.Error(t, cfg.Validate())
}

func TestCacheAddress(t *testing.T) {
	c := CacheConfig{Host: "localhost", Port: 6379}
	assert.Equal(t, "localhost:6379", c.Address())
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := validConfig()
	cfg.App.Environment = "production"
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
}
