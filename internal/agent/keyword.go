package agent

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/JaimeStill/inspector/internal/classifications"
	"github.com/JaimeStill/inspector/internal/config"
	"github.com/JaimeStill/inspector/internal/defects"
)

type rule struct {
	category defects.Category
	keywords []string
}

// Text rules are checked in order; the first match wins.
var textRules = []rule{
	{defects.ExposedWiring, []string{"exposed wire", "exposed wiring", "live wire", "electrical hazard"}},
	{defects.DampWall, []string{"damp", "wet wall", "moisture", "humid"}},
	{defects.Mold, []string{"mold", "mould", "fungus", "mildew"}},
	{defects.WaterLeak, []string{"leak", "leaking", "water damage", "drip"}},
	{defects.Crack, []string{"crack", "fissure", "split", "fracture"}},
}

// Image rules match against the image file name; every matching rule contributes a label.
var imageRules = []rule{
	{defects.Crack, []string{"crack", "fissure"}},
	{defects.WaterLeak, []string{"leak", "water"}},
	{defects.Mold, []string{"mold", "mould"}},
	{defects.ElectricalWiring, []string{"wire", "wiring", "electrical"}},
}

type keywordProvider struct {
	logger *slog.Logger
}

// NewKeyword creates a deterministic Provider that classifies by keyword matching and
// summarizes by restating the facts it is given.
func NewKeyword(logger *slog.Logger) Provider {
	return &keywordProvider{logger: logger}
}

func (p *keywordProvider) Name() string {
	return config.ProviderKeyword
}

func (p *keywordProvider) ClassifyText(
	ctx context.Context,
	note string,
	vocabulary []defects.Category,
) (classifications.Label, error) {
	if err := ctx.Err(); err != nil {
		return classifications.Label{}, err
	}

	lower := strings.ToLower(note)
	for _, r := range textRules {
		if slices.Contains(vocabulary, r.category) && r.matches(lower) {
			return classifications.Label{Category: string(r.category), Confidence: KeywordConfidence}, nil
		}
	}

	return classifications.Label{Category: string(defects.None), Confidence: KeywordConfidence}, nil
}

func (p *keywordProvider) ClassifyImage(
	ctx context.Context,
	img classifications.Image,
	vocabulary []defects.Category,
) ([]classifications.Label, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.ToLower(path.Base(img.Key))

	var labels []classifications.Label
	for _, r := range imageRules {
		if slices.Contains(vocabulary, r.category) && r.matches(name) {
			labels = append(labels, classifications.Label{Category: string(r.category), Confidence: KeywordConfidence})
		}
	}

	if len(labels) == 0 {
		labels = append(labels, classifications.Label{Category: string(defects.None), Confidence: KeywordConfidence})
	}
	return labels, nil
}

// Summarize restates the "key: value" facts that follow the first blank line of prompt.
func (p *keywordProvider) Summarize(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	_, block, ok := strings.Cut(prompt, "\n\n")
	if !ok {
		return "", fmt.Errorf("%w: prompt has no facts block", ErrMalformedResponse)
	}

	var sentences []string
	for line := range strings.SplitSeq(block, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		sentences = append(sentences, fmt.Sprintf("%s: %s.", strings.TrimSpace(key), strings.TrimSpace(value)))
	}

	if len(sentences) == 0 {
		return "", fmt.Errorf("%w: prompt has no facts", ErrMalformedResponse)
	}
	return strings.Join(sentences, " "), nil
}

func (r rule) matches(text string) bool {
	for _, k := range r.keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
