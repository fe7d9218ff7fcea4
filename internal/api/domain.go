package api

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/audit"
	"github.com/JaimeStill/inspector/internal/classifications"
	"github.com/JaimeStill/inspector/internal/findings"
	"github.com/JaimeStill/inspector/internal/properties"
	"github.com/JaimeStill/inspector/internal/risk"
	"github.com/JaimeStill/inspector/internal/summaries"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Audit           audit.System
	Properties      properties.System
	Findings        findings.System
	Risk            risk.System
	Summaries       summaries.System
	Classifications classifications.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	auditSystem := audit.New(db, runtime.Logger, runtime.Pagination)

	propertiesSystem := properties.New(db, runtime.Logger, runtime.Pagination)

	findingsSystem := findings.New(db, runtime.Storage, runtime.Logger)

	riskSystem := risk.New(
		risk.NewStore(db),
		runtime.Metrics,
		runtime.Logger,
	)

	summariesSystem := summaries.New(
		summaries.NewStore(db),
		runtime.Agent,
		auditSystem,
		runtime.Metrics,
		summaries.Config{
			Timeout:  runtime.Pipeline.SummarizeTimeoutDuration(),
			CacheTTL: runtime.Pipeline.SummaryCacheTTLDuration(),
		},
		runtime.Logger,
	)

	classificationsSystem := classifications.New(
		classifications.NewStore(db),
		classifications.Capabilities{
			Text:  runtime.Agent,
			Image: runtime.Agent,
		},
		runtime.Storage,
		refresher(riskSystem, summariesSystem),
		auditSystem,
		runtime.Metrics,
		classifications.Config{
			Workers:  runtime.Pipeline.Workers,
			MaxBatch: runtime.Pipeline.MaxBatch,
			Timeout:  runtime.Pipeline.ClassifyTimeoutDuration(),
		},
		runtime.Logger,
	)

	return &Domain{
		Audit:           auditSystem,
		Properties:      propertiesSystem,
		Findings:        findingsSystem,
		Risk:            riskSystem,
		Summaries:       summariesSystem,
		Classifications: classificationsSystem,
	}
}

// refresher recomputes the risk of a property and then regenerates its summary so the
// summary always reflects the freshly written score.
func refresher(r risk.System, s summaries.System) classifications.AggregatorFunc {
	return func(ctx context.Context, propertyID uuid.UUID) error {
		if _, err := r.Recompute(ctx, propertyID); err != nil {
			return fmt.Errorf("recompute risk: %w", err)
		}
		if _, err := s.Summarize(ctx, propertyID); err != nil {
			return fmt.Errorf("summarize: %w", err)
		}
		return nil
	}
}
