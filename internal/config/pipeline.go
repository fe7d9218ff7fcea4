package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"
)

const (
	EnvPipelineWorkers          = "INSPECTOR_PIPELINE_WORKERS"
	EnvPipelineMaxBatch         = "INSPECTOR_PIPELINE_MAX_BATCH"
	EnvPipelineClassifyTimeout  = "INSPECTOR_PIPELINE_CLASSIFY_TIMEOUT"
	EnvPipelineSummarizeTimeout = "INSPECTOR_PIPELINE_SUMMARIZE_TIMEOUT"
	EnvPipelineSummaryCacheTTL  = "INSPECTOR_PIPELINE_SUMMARY_CACHE_TTL"
)

// PipelineConfig bounds the classification and summarization pipeline.
type PipelineConfig struct {
	Workers          int    `toml:"workers"`
	MaxBatch         int    `toml:"max_batch"`
	ClassifyTimeout  string `toml:"classify_timeout"`
	SummarizeTimeout string `toml:"summarize_timeout"`
	SummaryCacheTTL  string `toml:"summary_cache_ttl"`
}

// ClassifyTimeoutDuration returns ClassifyTimeout as a time.Duration.
func (c *PipelineConfig) ClassifyTimeoutDuration() time.Duration {
	return duration(c.ClassifyTimeout)
}

// SummarizeTimeoutDuration returns SummarizeTimeout as a time.Duration.
func (c *PipelineConfig) SummarizeTimeoutDuration() time.Duration {
	return duration(c.SummarizeTimeout)
}

// SummaryCacheTTLDuration returns SummaryCacheTTL as a time.Duration.
func (c *PipelineConfig) SummaryCacheTTLDuration() time.Duration {
	return duration(c.SummaryCacheTTL)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.MaxBatch != 0 {
		c.MaxBatch = overlay.MaxBatch
	}
	if overlay.ClassifyTimeout != "" {
		c.ClassifyTimeout = overlay.ClassifyTimeout
	}
	if overlay.SummarizeTimeout != "" {
		c.SummarizeTimeout = overlay.SummarizeTimeout
	}
	if overlay.SummaryCacheTTL != "" {
		c.SummaryCacheTTL = overlay.SummaryCacheTTL
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.Workers == 0 {
		c.Workers = max(min(runtime.NumCPU(), 4), 1)
	}
	if c.MaxBatch == 0 {
		c.MaxBatch = 100
	}
	if c.ClassifyTimeout == "" {
		c.ClassifyTimeout = "30s"
	}
	if c.SummarizeTimeout == "" {
		c.SummarizeTimeout = "30s"
	}
	if c.SummaryCacheTTL == "" {
		c.SummaryCacheTTL = "10m"
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv(EnvPipelineMaxBatch); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxBatch = n
		}
	}
	if v := os.Getenv(EnvPipelineClassifyTimeout); v != "" {
		c.ClassifyTimeout = v
	}
	if v := os.Getenv(EnvPipelineSummarizeTimeout); v != "" {
		c.SummarizeTimeout = v
	}
	if v := os.Getenv(EnvPipelineSummaryCacheTTL); v != "" {
		c.SummaryCacheTTL = v
	}
}

func (c *PipelineConfig) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	if c.MaxBatch < 1 {
		return fmt.Errorf("max_batch must be positive")
	}
	for name, v := range map[string]string{
		"classify_timeout":  c.ClassifyTimeout,
		"summarize_timeout": c.SummarizeTimeout,
		"summary_cache_ttl": c.SummaryCacheTTL,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
