// Package classifications orchestrates classification of inspection findings: it invokes
// the text or image classifier capability, validates and weighs the labels, persists tags
// and status atomically per finding, and triggers risk aggregation once per affected property.
package classifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/defects"
	"github.com/JaimeStill/inspector/internal/findings"
	"github.com/JaimeStill/inspector/pkg/repository"
)

// Label is one raw classifier result before validation.
type Label struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Image is the resolved content of an image finding.
type Image struct {
	Key         string
	Data        []byte
	ContentType string
}

// TextClassifier assigns one label from vocabulary to a note.
type TextClassifier interface {
	ClassifyText(ctx context.Context, note string, vocabulary []defects.Category) (Label, error)
}

// ImageClassifier assigns one or more labels from vocabulary to an image.
type ImageClassifier interface {
	ClassifyImage(ctx context.Context, img Image, vocabulary []defects.Category) ([]Label, error)
}

// Aggregator refreshes derived property state after the tags of its findings change.
type Aggregator interface {
	Refresh(ctx context.Context, propertyID uuid.UUID) error
}

// AggregatorFunc adapts a function to the Aggregator interface.
type AggregatorFunc func(ctx context.Context, propertyID uuid.UUID) error

// Refresh calls f(ctx, propertyID).
func (f AggregatorFunc) Refresh(ctx context.Context, propertyID uuid.UUID) error {
	return f(ctx, propertyID)
}

// OutcomeStatus is the result of classifying a single finding.
type OutcomeStatus string

// Outcome states.
const (
	Classified OutcomeStatus = "classified"
	Failed     OutcomeStatus = "failed"
)

// Outcome reports the result for one finding of a batch. Reason is a client-safe
// description of a failure; Err carries the underlying error.
type Outcome struct {
	FindingID uuid.UUID            `json:"finding_id"`
	Status    OutcomeStatus        `json:"status"`
	Tags      []findings.DefectTag `json:"tags,omitempty"`
	Reason    string               `json:"reason,omitempty"`
	Err       error                `json:"-"`

	propertyID uuid.UUID
}

func classified(f findings.Finding, tags []findings.DefectTag) Outcome {
	return Outcome{
		FindingID:  f.ID,
		Status:     Classified,
		Tags:       tags,
		propertyID: f.PropertyID,
	}
}

func failed(id uuid.UUID, err error) Outcome {
	return Outcome{
		FindingID: id,
		Status:    Failed,
		Reason:    reason(err),
		Err:       err,
	}
}

// BatchRequest is the body of a batch classification request.
type BatchRequest struct {
	FindingIDs []uuid.UUID `json:"finding_ids"`
}

// BatchResult maps every distinct submitted finding id to its outcome.
type BatchResult struct {
	Outcomes map[uuid.UUID]Outcome `json:"outcomes"`
}

// cancelled reports a finding left untouched because the caller's context ended.
func cancelled(id uuid.UUID, cause error) Outcome {
	return failed(id, fmt.Errorf("%w: %w", ErrCancelled, cause))
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return ErrCancelled.Error()
	case errors.Is(err, ErrFindingNotFound):
		return ErrFindingNotFound.Error()
	case errors.Is(err, ErrUnreadableSource):
		return ErrUnreadableSource.Error()
	case errors.Is(err, repository.ErrInvariantViolation):
		return repository.ErrInvariantViolation.Error()
	default:
		return ErrClassificationFailed.Error()
	}
}
