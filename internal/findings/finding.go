// Package findings implements the finding domain: text notes and images recorded
// against a room, their processing status, and the defect tags attached to them.
package findings

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/defects"
)

// Status is the processing state of a finding. Transitions are owned by the
// classification orchestrator.
type Status string

// Processing states.
const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

var statuses = []Status{StatusPending, StatusProcessed, StatusFailed}

// UnmarshalJSON validates that the decoded string is a known status.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v := Status(raw)
	if !slices.Contains(statuses, v) {
		return ErrInvalidStatus
	}
	*s = v
	return nil
}

// Terminal reports whether s ends a classification attempt.
func (s Status) Terminal() bool {
	return s == StatusProcessed || s == StatusFailed
}

// Finding is a single observation recorded against a room. Content holds the note
// text for text findings and the blob storage key for image findings.
// PropertyID is resolved through the owning room.
type Finding struct {
	ID         uuid.UUID    `json:"id"`
	RoomID     uuid.UUID    `json:"room_id"`
	PropertyID uuid.UUID    `json:"property_id"`
	Kind       defects.Kind `json:"kind"`
	Content    string       `json:"content"`
	Status     Status       `json:"processing_status"`
}

// DefectTag is one classification label attached to a finding. SeverityWeight is
// the weight of Category at the time the tag was produced.
type DefectTag struct {
	ID             uuid.UUID        `json:"id"`
	FindingID      uuid.UUID        `json:"finding_id"`
	Category       defects.Category `json:"defect_category"`
	Confidence     float64          `json:"confidence_score"`
	SeverityWeight int              `json:"severity_weight"`
	ClassifiedAt   time.Time        `json:"classified_at"`
}

// Detail is a finding together with its current tags.
type Detail struct {
	Finding
	Tags []DefectTag `json:"tags"`
}

// CreateTextCommand carries the note for a new text finding.
type CreateTextCommand struct {
	Note string `json:"note"`
}

// CreateImageCommand carries the raw bytes of a new image finding.
type CreateImageCommand struct {
	Data        []byte
	Filename    string
	ContentType string
}
