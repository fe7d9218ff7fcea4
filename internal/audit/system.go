package audit

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/pkg/pagination"
)

// System defines the public contract for reading and appending the audit trail.
// There are no update or delete operations.
type System interface {
	Recorder

	Handler() *Handler

	// History returns the superseded classifications of a finding, oldest first.
	History(ctx context.Context, findingID uuid.UUID) ([]Record, error)

	Errors(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Entry], error)
}
