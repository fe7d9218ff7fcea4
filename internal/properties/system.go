package properties

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/pkg/pagination"
)

// System defines the public contract for property and room operations.
type System interface {
	Handler() *Handler

	// List returns a page of properties matching every present filter and the page's
	// search term, ordered by location then id unless the page requests another order.
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Property], error)

	Find(ctx context.Context, id uuid.UUID) (*Property, error)
	Details(ctx context.Context, id uuid.UUID) (*Details, error)
	RoomDetails(ctx context.Context, roomID uuid.UUID) (*RoomDetails, error)

	Create(ctx context.Context, cmd CreateCommand) (*Property, error)
	CreateRoom(ctx context.Context, propertyID uuid.UUID, cmd CreateRoomCommand) (*Room, error)
}
