package summaries

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/JaimeStill/inspector/internal/audit"
	"github.com/JaimeStill/inspector/internal/metrics"
)

// Config bounds summarizer calls and memoization of their results.
type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

type assembler struct {
	store      Store
	summarizer Summarizer
	recorder   audit.Recorder
	metrics    *metrics.Pipeline
	cache      *cache.Cache
	timeout    time.Duration
	logger     *slog.Logger
}

// New creates the summary assembler. A nil summarizer always yields the fallback text.
func New(
	store Store,
	summarizer Summarizer,
	recorder audit.Recorder,
	m *metrics.Pipeline,
	cfg Config,
	logger *slog.Logger,
) System {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}

	return &assembler{
		store:      store,
		summarizer: summarizer,
		recorder:   recorder,
		metrics:    m,
		cache:      cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		timeout:    cfg.Timeout,
		logger:     logger.With("system", "summaries"),
	}
}

func (a *assembler) Handler() *Handler {
	return NewHandler(a, a.logger)
}

func (a *assembler) Summarize(ctx context.Context, propertyID uuid.UUID) (*Summary, error) {
	facts, err := a.store.Facts(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if err := facts.Validate(); err != nil {
		a.logger.Error("summary aborted", "property_id", propertyID, "error", err)
		return nil, err
	}

	text, source := a.compose(ctx, facts)

	if err := a.store.SetSummary(ctx, propertyID, text); err != nil {
		return nil, err
	}

	a.metrics.ObserveSummary(source)
	a.logger.Info("summary persisted", "property_id", propertyID, "source", source)

	return &Summary{PropertyID: propertyID, Text: text, Source: source}, nil
}

func (a *assembler) compose(ctx context.Context, facts Facts) (string, string) {
	if a.summarizer == nil {
		return Fallback(facts), SourceFallback
	}

	prompt := Prompt(facts)
	key := cacheKey(prompt)

	if cached, ok := a.cache.Get(key); ok {
		return cached.(string), SourceCache
	}

	text, err := a.call(ctx, prompt)
	if err == nil && !Conforms(text, facts) {
		err = fmt.Errorf("%w: output omits risk category or severe defects", ErrSummarizationFailed)
	}
	if err != nil {
		a.record(ctx, facts.PropertyID, err)
		return Fallback(facts), SourceFallback
	}

	a.cache.Set(key, text, cache.DefaultExpiration)
	return text, SourceModel
}

func (a *assembler) call(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.summarizer.Summarize(callCtx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSummarizationFailed, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty output", ErrSummarizationFailed)
	}
	return text, nil
}

func (a *assembler) record(ctx context.Context, propertyID uuid.UUID, err error) {
	a.logger.Warn("summarizer output discarded", "property_id", propertyID, "error", err)

	if a.recorder == nil {
		return
	}

	entry := audit.NewEntry(audit.TypeSummarizationFailure, audit.EntityProperty, propertyID, err)
	if logErr := a.recorder.Log(context.WithoutCancel(ctx), entry); logErr != nil && !errors.Is(logErr, context.Canceled) {
		a.logger.Error("error log append failed", "property_id", propertyID, "error", logErr)
	}
}

func cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
