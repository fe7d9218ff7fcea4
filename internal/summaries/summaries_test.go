package summaries_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/inspector/internal/audit"
	"github.com/JaimeStill/inspector/internal/defects"
	"github.com/JaimeStill/inspector/internal/memstore"
	"github.com/JaimeStill/inspector/internal/risk"
	"github.com/JaimeStill/inspector/internal/summaries"
	"github.com/JaimeStill/inspector/pkg/repository"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type summarizerFunc func(ctx context.Context, prompt string) (string, error)

func (f summarizerFunc) Summarize(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func highFacts() summaries.Facts {
	return summaries.NewFacts(uuid.New(), "12 Elm St", risk.High, 12, 2, map[defects.Category]int{
		defects.Crack: 1,
		defects.Mold:  2,
		defects.None:  4,
	})
}

func TestNewFactsPrioritizes(t *testing.T) {
	f := summaries.NewFacts(uuid.New(), "x", risk.Medium, 7, 3, map[defects.Category]int{
		defects.Crack:         1,
		defects.WaterLeak:     2,
		defects.Mold:          1,
		defects.ExposedWiring: 1,
		defects.None:          9,
	})

	var order []defects.Category
	for _, c := range f.Defects {
		order = append(order, c.Category)
	}
	assert.Equal(t, []defects.Category{defects.ExposedWiring, defects.Mold, defects.Crack, defects.WaterLeak}, order)
}

func TestFallback(t *testing.T) {
	text := summaries.Fallback(highFacts())
	assert.Equal(t, "Risk: High. Found 2 rooms with issues including mold.", text)
	assert.Contains(t, text, "High")
	assert.Contains(t, text, "mold")

	clean := summaries.NewFacts(uuid.New(), "x", risk.Low, 0, 3, map[defects.Category]int{defects.None: 2})
	assert.Equal(t, "Risk: Low. Found 0 rooms with issues including no significant defects.", summaries.Fallback(clean))
}

func TestPrompt(t *testing.T) {
	prompt := summaries.Prompt(highFacts())
	assert.Contains(t, prompt, "Risk category: High")
	assert.Contains(t, prompt, "Risk score: 12")
	assert.Contains(t, prompt, "Rooms with issues: 2")
	assert.Contains(t, prompt, "Defects (most severe first): 2 mold and 1 crack")
}

func TestConforms(t *testing.T) {
	f := highFacts()

	assert.True(t, summaries.Conforms("High risk property: mold in two rooms and a crack.", f))
	assert.False(t, summaries.Conforms("Mold in two rooms and a crack.", f))
	assert.False(t, summaries.Conforms("High risk property with a crack.", f))

	mild := summaries.NewFacts(uuid.New(), "x", risk.Low, 2, 1, map[defects.Category]int{defects.Crack: 1})
	assert.True(t, summaries.Conforms("Low risk overall.", mild))
	assert.True(t, summaries.Conforms("Overall risk is LOW.", mild))
}

func TestConformsRequiresWholeWords(t *testing.T) {
	mild := summaries.NewFacts(uuid.New(), "x", risk.Low, 2, 1, map[defects.Category]int{defects.Crack: 1})
	severe := summaries.NewFacts(uuid.New(), "x", risk.Medium, 3, 1, map[defects.Category]int{defects.DampWall: 1})

	tests := []struct {
		name  string
		text  string
		facts summaries.Facts
		want  bool
	}{
		{"level inside following", "Following the walkthrough, one crack was noted; it is a High priority.", mild, false},
		{"level inside below", "Moisture readings were below threshold.", mild, false},
		{"level inside allow", "Allow time to repair the crack.", mild, false},
		{"high inside highly", "Highly recommended: fix the mold.", highFacts(), false},
		{"category inside longer word", "Medium risk from dampwalls.", severe, false},
		{"multi-word category across a line break", "Medium risk: a damp\nwall in the cellar.", severe, true},
		{"level followed by punctuation", "Risk: High. Mold found in two rooms.", highFacts(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, summaries.Conforms(tt.text, tt.facts))
		})
	}
}

func TestValidate(t *testing.T) {
	f := highFacts()
	require.NoError(t, f.Validate())

	f.Level = "Severe"
	assert.ErrorIs(t, f.Validate(), repository.ErrInvariantViolation)
}

type fixture struct {
	store *memstore.Store
	pid   uuid.UUID
}

func seed(t *testing.T) fixture {
	t.Helper()
	store := memstore.New()
	pid := store.AddProperty("12 Elm St")
	kitchen := store.AddRoom(pid, "kitchen")
	bath := store.AddRoom(pid, "bathroom")
	store.AddTag(store.AddFinding(kitchen, defects.KindText, "mold"), defects.Mold, 0.9)
	store.AddTag(store.AddFinding(bath, defects.KindText, "mold"), defects.Mold, 0.9)
	store.AddTag(store.AddFinding(bath, defects.KindText, "crack"), defects.Crack, 0.9)
	store.AddTag(store.AddFinding(bath, defects.KindText, "fine"), defects.None, 0.5)

	_, err := risk.New(store, nil, discard()).Recompute(context.Background(), pid)
	require.NoError(t, err)

	return fixture{store: store, pid: pid}
}

func newAssembler(fx fixture, s summaries.Summarizer) summaries.System {
	return summaries.New(fx.store, s, fx.store, nil, summaries.Config{
		Timeout:  50 * time.Millisecond,
		CacheTTL: time.Minute,
	}, discard())
}

func TestSummarizeModel(t *testing.T) {
	fx := seed(t)
	var calls atomic.Int32
	sys := newAssembler(fx, summarizerFunc(func(context.Context, string) (string, error) {
		calls.Add(1)
		return "Medium risk: mold found in two rooms, plus a crack.", nil
	}))

	s, err := sys.Summarize(context.Background(), fx.pid)
	require.NoError(t, err)
	assert.Equal(t, summaries.SourceModel, s.Source)

	p, _ := fx.store.Property(fx.pid)
	assert.Equal(t, s.Text, p.Summary)

	s, err = sys.Summarize(context.Background(), fx.pid)
	require.NoError(t, err)
	assert.Equal(t, summaries.SourceCache, s.Source)
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, fx.store.Entries())
}

func TestSummarizeFallback(t *testing.T) {
	tests := []struct {
		name       string
		summarizer summaries.Summarizer
		logged     bool
	}{
		{"nil summarizer", nil, false},
		{"error", summarizerFunc(func(context.Context, string) (string, error) {
			return "", errors.New("quota exceeded")
		}), true},
		{"empty", summarizerFunc(func(context.Context, string) (string, error) {
			return "   ", nil
		}), true},
		{"omits risk category", summarizerFunc(func(context.Context, string) (string, error) {
			return "There is mold in the kitchen.", nil
		}), true},
		{"timeout", summarizerFunc(func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := seed(t)
			sys := newAssembler(fx, tt.summarizer)

			s, err := sys.Summarize(context.Background(), fx.pid)
			require.NoError(t, err)
			assert.Equal(t, summaries.SourceFallback, s.Source)
			assert.Equal(t, "Risk: Medium. Found 2 rooms with issues including mold.", s.Text)

			p, _ := fx.store.Property(fx.pid)
			assert.Equal(t, s.Text, p.Summary)

			entries := fx.store.Entries()
			if !tt.logged {
				assert.Empty(t, entries)
				return
			}
			require.Len(t, entries, 1)
			assert.Equal(t, audit.TypeSummarizationFailure, entries[0].ErrorType)
			assert.Equal(t, audit.EntityProperty, entries[0].EntityType)
			assert.Equal(t, fx.pid.String(), entries[0].EntityID)
		})
	}
}

func TestZeroConfigUsesDefaultTimeout(t *testing.T) {
	fx := seed(t)
	sys := summaries.New(fx.store, summarizerFunc(func(ctx context.Context, _ string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "Medium risk: mold found in two rooms, plus a crack.", nil
	}), fx.store, nil, summaries.Config{}, discard())

	s, err := sys.Summarize(context.Background(), fx.pid)
	require.NoError(t, err)
	assert.Equal(t, summaries.SourceModel, s.Source)
	assert.Empty(t, fx.store.Entries())
}

func TestSummarizeMissingProperty(t *testing.T) {
	fx := seed(t)
	sys := newAssembler(fx, nil)

	_, err := sys.Summarize(context.Background(), uuid.New())
	assert.ErrorIs(t, err, summaries.ErrPropertyNotFound)
}
