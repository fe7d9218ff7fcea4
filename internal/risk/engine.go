package risk

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/metrics"
	"github.com/JaimeStill/inspector/pkg/repository"
)

type engine struct {
	store   Store
	metrics *metrics.Pipeline
	logger  *slog.Logger
}

// New creates the risk aggregation engine over store.
func New(store Store, m *metrics.Pipeline, logger *slog.Logger) System {
	return &engine{
		store:   store,
		metrics: m,
		logger:  logger.With("system", "risk"),
	}
}

func (e *engine) Handler() *Handler {
	return NewHandler(e, e.logger)
}

func (e *engine) Recompute(ctx context.Context, propertyID uuid.UUID) (*Assessment, error) {
	start := time.Now()

	a, err := e.store.Aggregate(ctx, propertyID, Assess)
	if err != nil {
		e.metrics.ObserveAggregation(metrics.StatusFailure, time.Since(start))
		if errors.Is(err, repository.ErrInvariantViolation) {
			e.logger.Error("risk aggregation aborted", "property_id", propertyID, "error", err)
		}
		return nil, err
	}

	e.metrics.ObserveAggregation(metrics.StatusSuccess, time.Since(start))
	e.logger.Info(
		"risk recomputed",
		"property_id", propertyID,
		"score", a.Score,
		"category", a.Level,
		"rooms", len(a.Rooms),
	)
	return &a, nil
}

func (e *engine) RecomputeRoom(ctx context.Context, roomID uuid.UUID) (*Assessment, error) {
	propertyID, err := e.store.PropertyOf(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return e.Recompute(ctx, propertyID)
}

func (e *engine) Breakdown(ctx context.Context, propertyID uuid.UUID) (*Assessment, error) {
	snap, err := e.store.Snapshot(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	a, err := Assess(snap)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
