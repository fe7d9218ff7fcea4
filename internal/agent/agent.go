// Package agent provides the model-backed capabilities used by the pipeline: the text
// classifier, the image classifier, and the summarizer.
package agent

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/inspector/internal/classifications"
	"github.com/JaimeStill/inspector/internal/config"
	"github.com/JaimeStill/inspector/internal/summaries"
)

// DefaultConfidence is assigned when a model omits the confidence of a label.
const DefaultConfidence = 0.85

// KeywordConfidence is assigned to every keyword match.
const KeywordConfidence = 0.5

// ErrMalformedResponse is returned when a model response cannot be interpreted.
var ErrMalformedResponse = errors.New("malformed model response")

// Provider bundles every capability backed by a single model provider.
type Provider interface {
	classifications.TextClassifier
	classifications.ImageClassifier
	summaries.Summarizer

	Name() string
}

// New creates the Provider selected by cfg.Provider.
func New(cfg *config.AgentConfig, logger *slog.Logger) (Provider, error) {
	logger = logger.With("provider", cfg.Provider)

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAI(cfg, logger), nil
	case config.ProviderKeyword:
		return NewKeyword(logger), nil
	default:
		return nil, fmt.Errorf("unknown agent provider %q", cfg.Provider)
	}
}
