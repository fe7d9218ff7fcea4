package findings

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// System defines the public contract for finding domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	Find(ctx context.Context, id uuid.UUID) (*Detail, error)
	CreateText(ctx context.Context, roomID uuid.UUID, cmd CreateTextCommand) (*Finding, error)
	CreateImage(ctx context.Context, roomID uuid.UUID, cmd CreateImageCommand) (*Finding, error)

	// Image streams the stored image of an image finding. The caller must close the reader.
	Image(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, error)
}
