package summaries

import (
	"context"

	"github.com/google/uuid"
)

// Summarizer is the capability that turns a prompt into summary text.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// System defines the public contract for summary assembly.
type System interface {
	Handler() *Handler

	// Summarize regenerates and persists the summary of a property. Summarizer failures
	// never surface here; they produce the fallback text instead.
	Summarize(ctx context.Context, propertyID uuid.UUID) (*Summary, error)
}
