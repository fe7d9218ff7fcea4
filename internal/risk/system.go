package risk

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for risk aggregation.
type System interface {
	Handler() *Handler

	// Recompute rebuilds every room score and the property score and level from the
	// current tags. At most one recomputation per property is in flight at a time.
	Recompute(ctx context.Context, propertyID uuid.UUID) (*Assessment, error)

	// RecomputeRoom recomputes the property that owns roomID.
	RecomputeRoom(ctx context.Context, roomID uuid.UUID) (*Assessment, error)

	// Breakdown computes the current assessment without persisting it.
	Breakdown(ctx context.Context, propertyID uuid.UUID) (*Assessment, error)
}
