package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/inspector/internal/config"
)

const azurite = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=key;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

const baseConfig = `
shutdown_timeout = "20s"

[server]
port = 8080

[database]
host = "localhost"
name = "inspector"
user = "inspector"
password = "inspector"

[storage]
connection_string = "` + azurite + `"

[api.pagination]
default_page_size = 10
max_page_size = 40

[agent]
provider = "keyword"

[pipeline]
workers = 2
classify_timeout = "15s"
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "db.internal"

[pipeline]
summarize_timeout = "45s"
`

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("INSPECTOR_DB_NAME", "inspector")
	t.Setenv("INSPECTOR_DB_USER", "inspector")
	t.Setenv("INSPECTOR_STORAGE_CONNECTION_STRING", azurite)
}

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadBase(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	t.Chdir(dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Env() != "local" {
		t.Errorf("Env() = %q, want local", cfg.Env())
	}
	if cfg.ShutdownTimeoutDuration() != 20*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 20s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q", cfg.Server.Addr())
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("BasePath = %q, want /api", cfg.API.BasePath)
	}
	if cfg.API.Pagination.DefaultPageSize != 10 || cfg.API.Pagination.MaxPageSize != 40 {
		t.Errorf("Pagination = %+v", cfg.API.Pagination)
	}
	if cfg.API.MaxUploadSizeBytes() != 10<<20 {
		t.Errorf("MaxUploadSizeBytes() = %d, want %d", cfg.API.MaxUploadSizeBytes(), 10<<20)
	}
	if cfg.Storage.ContainerName != "inspections" {
		t.Errorf("ContainerName = %q, want inspections", cfg.Storage.ContainerName)
	}
	if cfg.Pipeline.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.ClassifyTimeoutDuration() != 15*time.Second {
		t.Errorf("ClassifyTimeout = %v, want 15s", cfg.Pipeline.ClassifyTimeoutDuration())
	}
	if cfg.Pipeline.SummarizeTimeoutDuration() != 30*time.Second {
		t.Errorf("SummarizeTimeout = %v, want 30s default", cfg.Pipeline.SummarizeTimeoutDuration())
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	t.Chdir(dir)
	t.Setenv(config.EnvInspectorEnv, "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Database.Host = %q, want db.internal", cfg.Database.Host)
	}
	if cfg.Database.Name != "inspector" {
		t.Errorf("Database.Name = %q, want inspector (from base)", cfg.Database.Name)
	}
	if cfg.Pipeline.SummarizeTimeoutDuration() != 45*time.Second {
		t.Errorf("SummarizeTimeout = %v, want 45s", cfg.Pipeline.SummarizeTimeoutDuration())
	}
	if cfg.Pipeline.Workers != 2 {
		t.Errorf("Workers = %d, want 2 (from base)", cfg.Pipeline.Workers)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	t.Chdir(dir)

	t.Setenv(config.EnvServerPort, "7070")
	t.Setenv(config.EnvPipelineWorkers, "6")
	t.Setenv(config.EnvPipelineSummaryCacheTTL, "1m")
	t.Setenv("INSPECTOR_DB_HOST", "envhost")
	t.Setenv("INSPECTOR_PAGINATION_DEFAULT_PAGE_SIZE", "5")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Pipeline.Workers != 6 {
		t.Errorf("Workers = %d, want 6", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.SummaryCacheTTLDuration() != time.Minute {
		t.Errorf("SummaryCacheTTL = %v, want 1m", cfg.Pipeline.SummaryCacheTTLDuration())
	}
	if cfg.Database.Host != "envhost" {
		t.Errorf("Database.Host = %q, want envhost", cfg.Database.Host)
	}
	if cfg.API.Pagination.DefaultPageSize != 5 {
		t.Errorf("DefaultPageSize = %d, want 5", cfg.API.Pagination.DefaultPageSize)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequiredEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Agent.Provider != config.ProviderKeyword {
		t.Errorf("Provider = %q, want keyword", cfg.Agent.Provider)
	}
	if cfg.Pipeline.Workers < 1 {
		t.Errorf("Workers = %d, want positive default", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.MaxBatch != 100 {
		t.Errorf("MaxBatch = %d, want 100", cfg.Pipeline.MaxBatch)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing storage endpoint",
			env:     map[string]string{"INSPECTOR_STORAGE_CONNECTION_STRING": ""},
			wantErr: "storage: connection_string or account_url required",
		},
		{
			name:    "missing database name",
			env:     map[string]string{"INSPECTOR_DB_NAME": ""},
			wantErr: "database: name required",
		},
		{
			name: "openai without token",
			env: map[string]string{
				config.EnvAgentProvider: config.ProviderOpenAI,
				config.EnvAgentToken:    "",
			},
			wantErr: "token required",
		},
		{
			name: "unknown provider",
			env: map[string]string{
				config.EnvAgentProvider: "carrier-pigeon",
			},
			wantErr: "unknown provider",
		},
		{
			name: "negative workers",
			env: map[string]string{
				config.EnvPipelineWorkers: "-1",
			},
			wantErr: "workers must be positive",
		},
		{
			name: "bad classify timeout",
			env: map[string]string{
				config.EnvPipelineClassifyTimeout: "soon",
			},
			wantErr: "invalid classify_timeout",
		},
		{
			name:    "nested base path",
			env:     map[string]string{config.EnvAPIBasePath: "/api/v1"},
			wantErr: "base_path must be a single path segment",
		},
		{
			name:    "bad upload size",
			env:     map[string]string{config.EnvAPIMaxUploadSize: "lots"},
			wantErr: "invalid max_upload_size",
		},
		{
			name: "bad shutdown timeout",
			env: map[string]string{
				config.EnvInspectorShutdownTimeout: "never",
			},
			wantErr: "invalid shutdown_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, "[server\nport = ")
	t.Chdir(dir)

	if _, err := config.Load(); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Errorf("Load() error = %v, want parse failure", err)
	}
}

func TestAgentConfigMerge(t *testing.T) {
	base := config.AgentConfig{Provider: config.ProviderKeyword, Model: "gpt-4o-mini", MaxRetries: 3}
	base.Merge(&config.AgentConfig{Provider: config.ProviderOpenAI, Token: "sk-test"})

	if base.Provider != config.ProviderOpenAI || base.Token != "sk-test" {
		t.Errorf("merged = %+v", base)
	}
	if base.Model != "gpt-4o-mini" || base.MaxRetries != 3 {
		t.Errorf("unset overlay fields should keep base values, got %+v", base)
	}
}

func TestServerConfigDefaults(t *testing.T) {
	var cfg config.ServerConfig
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"read", cfg.ReadTimeoutDuration(), time.Minute},
		{"read header", cfg.ReadHeaderTimeoutDuration(), 10 * time.Second},
		{"write", cfg.WriteTimeoutDuration(), 5 * time.Minute},
		{"idle", cfg.IdleTimeoutDuration(), 2 * time.Minute},
		{"shutdown", cfg.ShutdownTimeoutDuration(), 30 * time.Second},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s timeout = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestServerConfigMergeAndValidate(t *testing.T) {
	cfg := config.ServerConfig{Port: 8080, WriteTimeout: "5m"}
	cfg.Merge(&config.ServerConfig{Host: "::1", WriteTimeout: "10m"})

	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if cfg.Addr() != "[::1]:8080" {
		t.Errorf("Addr() = %q, want [::1]:8080", cfg.Addr())
	}
	if cfg.WriteTimeoutDuration() != 10*time.Minute {
		t.Errorf("WriteTimeout = %v, want 10m", cfg.WriteTimeoutDuration())
	}

	bad := config.ServerConfig{IdleTimeout: "-1s"}
	if err := bad.Finalize(); err == nil || !strings.Contains(err.Error(), "idle_timeout must be positive") {
		t.Errorf("Finalize() error = %v, want idle_timeout failure", err)
	}
}
