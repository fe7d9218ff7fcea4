package classifications

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for the classification orchestrator.
type System interface {
	Handler() *Handler

	// Classify classifies a single finding. A finding that cannot be classified yields a
	// Failed outcome, not an error; errors report only a missing finding.
	Classify(ctx context.Context, findingID uuid.UUID) (*Outcome, error)

	// ClassifyBatch classifies every distinct finding in ids with bounded concurrency and
	// returns exactly one outcome per distinct id. A failure never affects its siblings.
	ClassifyBatch(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Outcome, error)
}
