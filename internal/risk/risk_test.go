package risk_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/inspector/internal/defects"
	"github.com/JaimeStill/inspector/internal/memstore"
	"github.com/JaimeStill/inspector/internal/metrics"
	"github.com/JaimeStill/inspector/internal/risk"
	"github.com/JaimeStill/inspector/pkg/repository"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		score int
		want  risk.Level
	}{
		{0, risk.Low},
		{4, risk.Low},
		{5, risk.Medium},
		{9, risk.Medium},
		{10, risk.High},
		{42, risk.High},
		{-3, risk.Low},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, risk.Categorize(tt.score), "score %d", tt.score)
	}
}

func TestParseLevel(t *testing.T) {
	l, err := risk.ParseLevel("Medium")
	require.NoError(t, err)
	assert.Equal(t, risk.Medium, l)

	_, err = risk.ParseLevel("medium")
	assert.ErrorIs(t, err, risk.ErrInvalidLevel)
}

func TestAssess(t *testing.T) {
	kitchen := uuid.New()
	hall := uuid.New()
	empty := uuid.New()

	snap := risk.Snapshot{
		PropertyID: uuid.New(),
		Rooms: []risk.Room{
			{ID: kitchen, RoomType: "kitchen", Tags: []risk.Tag{
				{ID: uuid.New(), Category: defects.Mold, Weight: 3},
				{ID: uuid.New(), Category: defects.Crack, Weight: 2},
			}},
			{ID: hall, RoomType: "hall", Tags: []risk.Tag{
				{ID: uuid.New(), Category: defects.ExposedWiring, Weight: 3},
				{ID: uuid.New(), Category: defects.None, Weight: 0},
			}},
			{ID: empty, RoomType: "loft"},
		},
	}

	a, err := risk.Assess(snap)
	require.NoError(t, err)

	require.Len(t, a.Rooms, 3)
	assert.Equal(t, 5, a.Rooms[0].Score)
	assert.Equal(t, 3, a.Rooms[1].Score)
	assert.Equal(t, 0, a.Rooms[2].Score)
	assert.NotNil(t, a.Rooms[2].Tags)
	assert.Equal(t, 8, a.Score)
	assert.Equal(t, risk.Medium, a.Level)

	again, err := risk.Assess(snap)
	require.NoError(t, err)
	assert.Equal(t, a, again)
}

func TestAssessInvariants(t *testing.T) {
	room := uuid.New()

	_, err := risk.Assess(risk.Snapshot{Rooms: []risk.Room{
		{ID: room, Tags: []risk.Tag{{ID: uuid.New(), Weight: -1}}},
	}})
	assert.ErrorIs(t, err, repository.ErrInvariantViolation)

	_, err = risk.Assess(risk.Snapshot{Rooms: []risk.Room{{ID: room}, {ID: room}}})
	assert.ErrorIs(t, err, repository.ErrInvariantViolation)
}

func TestRecompute(t *testing.T) {
	store := memstore.New()
	registry := prometheus.NewRegistry()
	m, err := metrics.NewPipeline(registry)
	require.NoError(t, err)

	engine := risk.New(store, m, discard())

	pid := store.AddProperty("12 Elm St")
	kitchen := store.AddRoom(pid, "kitchen")
	bath := store.AddRoom(pid, "bathroom")
	store.AddTag(store.AddFinding(kitchen, defects.KindText, "wires"), defects.ExposedWiring, 0.9)
	store.AddTag(store.AddFinding(kitchen, defects.KindText, "damp"), defects.DampWall, 0.9)
	store.AddTag(store.AddFinding(bath, defects.KindText, "leak"), defects.WaterLeak, 0.9)
	store.AddTag(store.AddFinding(bath, defects.KindText, "crack"), defects.Crack, 0.9)

	a, err := engine.Recompute(context.Background(), pid)
	require.NoError(t, err)
	assert.Equal(t, 10, a.Score)
	assert.Equal(t, risk.High, a.Level)

	p, _ := store.Property(pid)
	assert.Equal(t, 10, p.Score)
	assert.Equal(t, risk.High, p.Level)

	k, _ := store.Room(kitchen)
	b, _ := store.Room(bath)
	assert.Equal(t, 6, k.Score)
	assert.Equal(t, 4, b.Score)

	again, err := engine.Recompute(context.Background(), pid)
	require.NoError(t, err)
	assert.Equal(t, a, again)

	count, err := testutil.GatherAndCount(registry, "inspector_risk_aggregations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecomputeRoom(t *testing.T) {
	store := memstore.New()
	engine := risk.New(store, nil, discard())

	pid := store.AddProperty("12 Elm St")
	room := store.AddRoom(pid, "kitchen")
	store.AddTag(store.AddFinding(room, defects.KindText, "mold"), defects.Mold, 0.9)

	a, err := engine.RecomputeRoom(context.Background(), room)
	require.NoError(t, err)
	assert.Equal(t, pid, a.PropertyID)
	assert.Equal(t, 3, a.Score)

	_, err = engine.RecomputeRoom(context.Background(), uuid.New())
	assert.ErrorIs(t, err, risk.ErrRoomNotFound)

	_, err = engine.Recompute(context.Background(), uuid.New())
	assert.ErrorIs(t, err, risk.ErrPropertyNotFound)
}

func TestBreakdownDoesNotPersist(t *testing.T) {
	store := memstore.New()
	engine := risk.New(store, nil, discard())

	pid := store.AddProperty("12 Elm St")
	room := store.AddRoom(pid, "kitchen")
	store.AddTag(store.AddFinding(room, defects.KindText, "mold"), defects.Mold, 0.9)

	a, err := engine.Breakdown(context.Background(), pid)
	require.NoError(t, err)
	assert.Equal(t, 3, a.Score)

	p, _ := store.Property(pid)
	assert.Zero(t, p.Score)
}

func TestConcurrentRecompute(t *testing.T) {
	store := memstore.New()
	engine := risk.New(store, nil, discard())

	pid := store.AddProperty("12 Elm St")
	for range 5 {
		room := store.AddRoom(pid, "room")
		store.AddTag(store.AddFinding(room, defects.KindText, "crack"), defects.Crack, 0.9)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			_, err := engine.Recompute(context.Background(), pid)
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	p, _ := store.Property(pid)
	assert.Equal(t, 10, p.Score)
	assert.Equal(t, risk.High, p.Level)
}
