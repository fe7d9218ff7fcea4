// Package audit records the append-only trail of the classification pipeline:
// superseded classifications and non-fatal processing errors.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/defects"
)

// Record is a superseded classification. Records are inserted only when a finding is
// reclassified and are never updated or deleted.
type Record struct {
	ID           uuid.UUID        `json:"id"`
	FindingID    uuid.UUID        `json:"finding_id"`
	Category     defects.Category `json:"defect_category"`
	Confidence   float64          `json:"confidence_score"`
	Method       string           `json:"classification_method"`
	ClassifiedAt time.Time        `json:"classified_at"`
}

// Error types written to the error log.
const (
	TypeCategoryMismatch      = "category_mismatch"
	TypeClassificationFailure = "classification_failure"
	TypeUnreadableSource      = "unreadable_source"
	TypeAggregationFailure    = "aggregation_failure"
	TypeSummarizationFailure  = "summarization_failure"
	TypeInvariantViolation    = "invariant_violation"
)

// Entity types referenced by error log entries.
const (
	EntityFinding  = "finding"
	EntityProperty = "property"
)

// Entry is one error log row.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	ErrorType  string    `json:"error_type"`
	Message    string    `json:"message"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEntry builds an entry for an error concerning the given entity.
func NewEntry(errorType, entityType string, entityID uuid.UUID, err error) Entry {
	return Entry{
		ErrorType:  errorType,
		Message:    err.Error(),
		EntityType: entityType,
		EntityID:   entityID.String(),
	}
}

// Recorder appends entries to the error log.
type Recorder interface {
	Log(ctx context.Context, entry Entry) error
}
