package classifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/inspector/internal/audit"
	"github.com/JaimeStill/inspector/internal/defects"
	"github.com/JaimeStill/inspector/internal/findings"
	"github.com/JaimeStill/inspector/internal/metrics"
	"github.com/JaimeStill/inspector/pkg/repository"
	"github.com/JaimeStill/inspector/pkg/storage"
)

// Config bounds orchestrator concurrency and capability latency.
type Config struct {
	Workers  int
	MaxBatch int
	Timeout  time.Duration
}

// Capabilities groups the classifier capabilities the orchestrator invokes.
type Capabilities struct {
	Text  TextClassifier
	Image ImageClassifier
}

type orchestrator struct {
	store      Store
	caps       Capabilities
	blobs      storage.System
	aggregator Aggregator
	recorder   audit.Recorder
	metrics    *metrics.Pipeline
	cfg        Config
	logger     *slog.Logger
}

// New creates the classification orchestrator.
func New(
	store Store,
	caps Capabilities,
	blobs storage.System,
	aggregator Aggregator,
	recorder audit.Recorder,
	m *metrics.Pipeline,
	cfg Config,
	logger *slog.Logger,
) System {
	if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.MaxBatch < 1 {
		cfg.MaxBatch = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &orchestrator{
		store:      store,
		caps:       caps,
		blobs:      blobs,
		aggregator: aggregator,
		recorder:   recorder,
		metrics:    m,
		cfg:        cfg,
		logger:     logger.With("system", "classifications"),
	}
}

func (o *orchestrator) Handler() *Handler {
	return NewHandler(o, o.logger)
}

func (o *orchestrator) Classify(ctx context.Context, findingID uuid.UUID) (*Outcome, error) {
	outcomes, err := o.ClassifyBatch(ctx, []uuid.UUID{findingID})
	if err != nil {
		return nil, err
	}

	out := outcomes[findingID]
	if errors.Is(out.Err, ErrFindingNotFound) {
		return nil, out.Err
	}
	return &out, nil
}

func (o *orchestrator) ClassifyBatch(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Outcome, error) {
	unique := dedupe(ids)
	if len(unique) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(unique) > o.cfg.MaxBatch {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(unique), o.cfg.MaxBatch)
	}

	o.metrics.ObserveBatch(len(unique))
	results := make([]Outcome, len(unique))

	var g errgroup.Group
	g.SetLimit(workerCount(o.cfg.Workers, len(unique)))

	for i, id := range unique {
		g.Go(func() error {
			results[i] = o.process(ctx, id)
			return nil
		})
	}
	g.Wait()

	o.refresh(ctx, results)

	outcomes := make(map[uuid.UUID]Outcome, len(results))
	var succeeded int
	for _, r := range results {
		outcomes[r.FindingID] = r
		if r.Status == Classified {
			succeeded++
		}
	}

	o.logger.Info(
		"batch classified",
		"findings", len(unique),
		"classified", succeeded,
		"failed", len(unique)-succeeded,
	)

	return outcomes, nil
}

func (o *orchestrator) process(ctx context.Context, id uuid.UUID) Outcome {
	if err := ctx.Err(); err != nil {
		return cancelled(id, err)
	}

	f, err := o.store.Target(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return cancelled(id, ctx.Err())
		}
		if errors.Is(err, ErrFindingNotFound) {
			o.record(ctx, audit.TypeClassificationFailure, id, err)
			return failed(id, err)
		}
		return o.fail(ctx, findings.Finding{ID: id}, err)
	}

	tags, err := o.classify(ctx, f)
	if err != nil {
		if ctx.Err() != nil {
			o.logger.Info("classification cancelled", "finding_id", id)
			return cancelled(id, ctx.Err())
		}
		return o.fail(ctx, f, err)
	}

	persistCtx := context.WithoutCancel(ctx)
	superseded, err := o.store.Apply(persistCtx, f.ID, f.Kind.Method(), tags)
	if err != nil {
		return o.fail(ctx, f, err)
	}

	o.metrics.ObserveClassification(string(f.Kind), metrics.StatusSuccess)
	o.logger.Info(
		"finding classified",
		"finding_id", f.ID,
		"kind", f.Kind,
		"tags", len(tags),
		"superseded", superseded,
	)
	return classified(f, tags)
}

func (o *orchestrator) classify(ctx context.Context, f findings.Finding) ([]findings.DefectTag, error) {
	vocabulary := defects.Vocabulary(f.Kind)
	if vocabulary == nil {
		return nil, fmt.Errorf("%w: finding %s has unknown kind %q", repository.ErrInvariantViolation, f.ID, f.Kind)
	}

	var img Image
	if f.Kind == defects.KindImage {
		var err error
		if img, err = o.readImage(ctx, f.Content); err != nil {
			return nil, err
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	start := time.Now()
	labels, err := o.invoke(callCtx, f, img, vocabulary)
	o.metrics.ObserveClassifier(string(f.Kind), time.Since(start))

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}
	if len(labels) == 0 {
		if f.Kind != defects.KindImage {
			return nil, fmt.Errorf("%w: capability returned no labels", ErrClassificationFailed)
		}
		labels = []Label{{Category: string(defects.None), Confidence: 0}}
	}

	return o.weigh(ctx, f, labels)
}

func (o *orchestrator) invoke(ctx context.Context, f findings.Finding, img Image, vocabulary []defects.Category) ([]Label, error) {
	switch f.Kind {
	case defects.KindText:
		if o.caps.Text == nil {
			return nil, errors.New("no text classifier configured")
		}
		label, err := o.caps.Text.ClassifyText(ctx, f.Content, vocabulary)
		if err != nil {
			return nil, err
		}
		return []Label{label}, nil
	default:
		if o.caps.Image == nil {
			return nil, errors.New("no image classifier configured")
		}
		return o.caps.Image.ClassifyImage(ctx, img, vocabulary)
	}
}

func (o *orchestrator) readImage(ctx context.Context, key string) (Image, error) {
	if o.blobs == nil {
		return Image{}, fmt.Errorf("%w: no image storage configured", ErrUnreadableSource)
	}

	data, err := storage.ReadAll(ctx, o.blobs, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) ||
			errors.Is(err, storage.ErrEmptyKey) ||
			errors.Is(err, storage.ErrInvalidKey) ||
			errors.Is(err, storage.ErrTooLarge) {
			return Image{}, fmt.Errorf("%w: %w", ErrUnreadableSource, err)
		}
		return Image{}, fmt.Errorf("%w: read %s: %w", ErrClassificationFailed, key, err)
	}

	contentType := http.DetectContentType(data)
	if len(data) == 0 || !strings.HasPrefix(contentType, "image/") {
		return Image{}, fmt.Errorf("%w: %s is not a readable image", ErrUnreadableSource, key)
	}

	return Image{Key: key, Data: data, ContentType: contentType}, nil
}

// weigh validates labels against the vocabulary and builds tags. Out-of-vocabulary
// labels become none with zero confidence. Duplicate categories keep their first
// occurrence and none is dropped when any other category is present.
func (o *orchestrator) weigh(ctx context.Context, f findings.Finding, labels []Label) ([]findings.DefectTag, error) {
	now := time.Now().UTC()
	tags := make([]findings.DefectTag, 0, len(labels))
	seen := make(map[defects.Category]bool, len(labels))

	for _, l := range labels {
		if math.IsNaN(l.Confidence) || l.Confidence < 0 || l.Confidence > 1 {
			return nil, fmt.Errorf("%w: confidence %v outside [0, 1]", ErrClassificationFailed, l.Confidence)
		}

		category, err := defects.Validate(l.Category, f.Kind)
		confidence := l.Confidence
		if err != nil {
			confidence = 0
			o.metrics.ObserveMismatch(string(f.Kind))
			o.logger.Warn("label outside vocabulary", "finding_id", f.ID, "label", l.Category)
			o.record(ctx, audit.TypeCategoryMismatch, f.ID, err)
		}

		if seen[category] {
			continue
		}
		seen[category] = true

		weight, ok := defects.Weight(category)
		if !ok {
			o.logger.Warn("category has no severity weight", "finding_id", f.ID, "category", category)
		}

		tags = append(tags, findings.DefectTag{
			ID:             uuid.New(),
			FindingID:      f.ID,
			Category:       category,
			Confidence:     confidence,
			SeverityWeight: weight,
			ClassifiedAt:   now,
		})
	}

	if len(tags) > 1 && seen[defects.None] {
		tags = slices.DeleteFunc(tags, func(t findings.DefectTag) bool {
			return t.Category == defects.None
		})
	}

	return tags, nil
}

func (o *orchestrator) fail(ctx context.Context, f findings.Finding, cause error) Outcome {
	persistCtx := context.WithoutCancel(ctx)

	if err := o.store.Fail(persistCtx, f.ID); err != nil {
		o.logger.Error("mark finding failed", "finding_id", f.ID, "error", err)
	}

	errorType := audit.TypeClassificationFailure
	switch {
	case errors.Is(cause, ErrUnreadableSource):
		errorType = audit.TypeUnreadableSource
	case errors.Is(cause, repository.ErrInvariantViolation):
		errorType = audit.TypeInvariantViolation
		o.logger.Error("invariant violation", "finding_id", f.ID, "error", cause)
	}
	o.record(persistCtx, errorType, f.ID, cause)

	o.metrics.ObserveClassification(string(f.Kind), metrics.StatusFailure)
	o.logger.Warn("finding classification failed", "finding_id", f.ID, "kind", f.Kind, "error", cause)

	return failed(f.ID, cause)
}

// refresh aggregates each property with at least one newly classified finding, once.
func (o *orchestrator) refresh(ctx context.Context, results []Outcome) {
	if o.aggregator == nil {
		return
	}

	var properties []uuid.UUID
	for _, r := range results {
		if r.Status == Classified && !slices.Contains(properties, r.propertyID) {
			properties = append(properties, r.propertyID)
		}
	}

	aggCtx := context.WithoutCancel(ctx)
	for _, id := range properties {
		if err := o.aggregator.Refresh(aggCtx, id); err != nil {
			o.logger.Error("property refresh failed", "property_id", id, "error", err)
			entry := audit.NewEntry(audit.TypeAggregationFailure, audit.EntityProperty, id, err)
			o.append(aggCtx, entry)
		}
	}
}

func (o *orchestrator) record(ctx context.Context, errorType string, findingID uuid.UUID, err error) {
	o.append(context.WithoutCancel(ctx), audit.NewEntry(errorType, audit.EntityFinding, findingID, err))
}

func (o *orchestrator) append(ctx context.Context, entry audit.Entry) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Log(ctx, entry); err != nil {
		o.logger.Error("error log append failed", "entity_id", entry.EntityID, "error", err)
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(unique, id) {
			unique = append(unique, id)
		}
	}
	return unique
}

func workerCount(workers, n int) int {
	return max(min(workers, n), 1)
}
