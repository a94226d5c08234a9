// Package config defines and loads flowsched's configuration, layered from
// defaults, an optional YAML file, and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the top-level configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Tracing   TracingConfig   `koanf:"tracing"`
	Cache     CacheConfig     `koanf:"cache"`
	Topology  TopologyConfig  `koanf:"topology"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Workload  WorkloadConfig  `koanf:"workload"`
	Report    ReportConfig    `koanf:"report"`
}

// AppConfig holds general application metadata.
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// LogConfig configures structured logging and file rotation.
type LogConfig struct {
	Level      string `koanf:"level"`  // debug, info, warn, error
	Format     string `koanf:"format"` // json, text
	Output     string `koanf:"output"` // stdout, stderr, file
	FilePath   string `koanf:"file_path"`
	MaxSize    int  `koanf:"max_size"`    // MB
	MaxBackups int  `koanf:"max_backups"` // rotated file count
	MaxAge     int  `koanf:"max_age"`     // days
	Compress   bool `koanf:"compress"`
}

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// CacheConfig configures the schedule-result cache.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // redis, memory
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"` // for the in-memory backend
}

// Address returns the cache's host:port dial address.
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TopologyConfig selects how the scheduler's graph is built: either a
// k-ary fat-tree generated in-process, or a topology file in the
// bracket-section text format.
type TopologyConfig struct {
	Source         string  `koanf:"source"` // "fattree" or "file"
	FatTreeK       int     `koanf:"fattree_k"`
	FilePath       string  `koanf:"file_path"`
	DefaultBandwidthGbps float64 `koanf:"default_bandwidth_gbps"`
}

// SchedulerConfig configures the batch admission loop.
type SchedulerConfig struct {
	Algorithm string        `koanf:"algorithm"` // dr, ecmp
	Order     string        `koanf:"order"`     // size, arrival, arrival_size, none
	Timeout   time.Duration `koanf:"timeout"`
	Seed      int64         `koanf:"seed"`
}

// WorkloadConfig configures synthetic query-aggregation batch generation.
type WorkloadConfig struct {
	MinFlowNum       int     `koanf:"min_flow_num"`
	MaxFlowNum       int     `koanf:"max_flow_num"`
	AverageDeadlineMs float64 `koanf:"average_deadline_ms"`
	MinFlowSizeKB    float64 `koanf:"min_flow_size_kb"`
	MaxFlowSizeKB    float64 `koanf:"max_flow_size_kb"`
	Runs             int     `koanf:"runs"`
}

// ReportConfig configures the optional spreadsheet export of a batch run.
type ReportConfig struct {
	Enabled       bool   `koanf:"enabled"`
	OutputPath    string `koanf:"output_path"`
	SheetName     string `koanf:"sheet_name"`
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	validAlgorithms := map[string]bool{"dr": true, "ecmp": true}
	if !validAlgorithms[strings.ToLower(c.Scheduler.Algorithm)] {
		errs = append(errs, fmt.Sprintf("scheduler.algorithm must be one of: dr, ecmp, got %s", c.Scheduler.Algorithm))
	}

	validOrders := map[string]bool{"size": true, "arrival": true, "arrival_size": true, "none": true}
	if !validOrders[strings.ToLower(c.Scheduler.Order)] {
		errs = append(errs, fmt.Sprintf("scheduler.order must be one of: size, arrival, arrival_size, none, got %s", c.Scheduler.Order))
	}

	validSources := map[string]bool{"fattree": true, "file": true}
	if !validSources[strings.ToLower(c.Topology.Source)] {
		errs = append(errs, fmt.Sprintf("topology.source must be one of: fattree, file, got %s", c.Topology.Source))
	}
	if strings.ToLower(c.Topology.Source) == "fattree" && (c.Topology.FatTreeK <= 0 || c.Topology.FatTreeK%2 != 0) {
		errs = append(errs, fmt.Sprintf("topology.fattree_k must be a positive even number, got %d", c.Topology.FatTreeK))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// IsDevelopment reports whether App.Environment names a development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction reports whether App.Environment names a production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
