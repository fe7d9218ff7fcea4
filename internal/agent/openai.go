package agent

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/JaimeStill/inspector/internal/classifications"
	"github.com/JaimeStill/inspector/internal/config"
	"github.com/JaimeStill/inspector/internal/defects"
	"github.com/JaimeStill/inspector/pkg/formatting"
)

type textResponse struct {
	Category   string   `json:"category"`
	Confidence *float64 `json:"confidence"`
}

type imageResponse struct {
	Labels []textResponse `json:"labels"`
}

type openAIProvider struct {
	client openai.Client
	model  openai.ChatModel
	logger *slog.Logger
}

// NewOpenAI creates a Provider backed by an OpenAI-compatible chat completions endpoint.
func NewOpenAI(cfg *config.AgentConfig, logger *slog.Logger) Provider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.Token),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &openAIProvider{
		client: openai.NewClient(opts...),
		model:  openai.ChatModel(cfg.Model),
		logger: logger,
	}
}

func (p *openAIProvider) Name() string {
	return config.ProviderOpenAI
}

func (p *openAIProvider) ClassifyText(
	ctx context.Context,
	note string,
	vocabulary []defects.Category,
) (classifications.Label, error) {
	system, err := SystemPrompt(StageClassifyText, vocabulary)
	if err != nil {
		return classifications.Label{}, err
	}

	content, err := p.complete(ctx,
		openai.SystemMessage(system),
		openai.UserMessage(note),
	)
	if err != nil {
		return classifications.Label{}, err
	}

	parsed, err := formatting.Parse[textResponse](content)
	if err != nil {
		return classifications.Label{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return toLabel(parsed), nil
}

func (p *openAIProvider) ClassifyImage(
	ctx context.Context,
	img classifications.Image,
	vocabulary []defects.Category,
) ([]classifications.Label, error) {
	system, err := SystemPrompt(StageClassifyImage, vocabulary)
	if err != nil {
		return nil, err
	}

	content, err := p.complete(ctx,
		openai.SystemMessage(system),
		openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart("Classify the defects visible in this inspection photograph."),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: dataURI(img),
			}),
		}),
	)
	if err != nil {
		return nil, err
	}

	parsed, err := formatting.Parse[imageResponse](content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	labels := make([]classifications.Label, len(parsed.Labels))
	for i, l := range parsed.Labels {
		labels[i] = toLabel(l)
	}
	return labels, nil
}

func (p *openAIProvider) Summarize(ctx context.Context, prompt string) (string, error) {
	system, err := SystemPrompt(StageSummarize, nil)
	if err != nil {
		return "", err
	}

	content, err := p.complete(ctx,
		openai.SystemMessage(system),
		openai.UserMessage(prompt),
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (p *openAIProvider) complete(ctx context.Context, messages ...openai.ChatCompletionMessageParamUnion) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       p.model,
		Messages:    messages,
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}

	p.logger.Debug(
		"chat completion",
		"model", resp.Model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)

	return resp.Choices[0].Message.Content, nil
}

func toLabel(r textResponse) classifications.Label {
	confidence := DefaultConfidence
	if r.Confidence != nil {
		confidence = *r.Confidence
	}
	return classifications.Label{Category: r.Category, Confidence: confidence}
}

func dataURI(img classifications.Image) string {
	contentType := img.ContentType
	if contentType == "" {
		contentType = "image/png"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
