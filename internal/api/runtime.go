package api

import (
	"fmt"

	"github.com/JaimeStill/inspector/internal/agent"
	"github.com/JaimeStill/inspector/internal/config"
	"github.com/JaimeStill/inspector/internal/infrastructure"
	"github.com/JaimeStill/inspector/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration and the model
// provider backing the classification and summary capabilities.
type Runtime struct {
	*infrastructure.Infrastructure
	Agent         agent.Provider
	Pagination    pagination.Config
	Pipeline      config.PipelineConfig
	MaxUploadSize int64
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) (*Runtime, error) {
	logger := infra.Logger.With("module", "api")

	provider, err := agent.New(&cfg.Agent, logger)
	if err != nil {
		return nil, fmt.Errorf("agent init failed: %w", err)
	}

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Database:  infra.Database,
			Storage:   infra.Storage,
			Registry:  infra.Registry,
			Metrics:   infra.Metrics,
		},
		Agent:         provider,
		Pagination:    cfg.API.Pagination,
		Pipeline:      cfg.Pipeline,
		MaxUploadSize: cfg.API.MaxUploadSizeBytes(),
	}, nil
}
