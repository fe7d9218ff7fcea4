package risk

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/pkg/repository"
)

// Store loads aggregation snapshots and persists assessments.
type Store interface {
	// Aggregate takes an exclusive lock on the property, loads a fresh snapshot, passes it
	// to assess, and persists the resulting scores before the lock is released.
	Aggregate(ctx context.Context, propertyID uuid.UUID, assess func(Snapshot) (Assessment, error)) (Assessment, error)

	// Snapshot loads the current aggregation input without locking or writing.
	Snapshot(ctx context.Context, propertyID uuid.UUID) (Snapshot, error)

	// PropertyOf resolves the property owning roomID.
	PropertyOf(ctx context.Context, roomID uuid.UUID) (uuid.UUID, error)
}

type pgStore struct {
	db *sql.DB
}

// NewStore creates a PostgreSQL-backed Store.
func NewStore(db *sql.DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Aggregate(
	ctx context.Context,
	propertyID uuid.UUID,
	assess func(Snapshot) (Assessment, error),
) (Assessment, error) {
	return repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Assessment, error) {
		var locked uuid.UUID
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM properties WHERE id = $1 FOR UPDATE",
			propertyID,
		).Scan(&locked)
		if err != nil {
			return Assessment{}, repository.MapError(err, ErrPropertyNotFound, ErrPropertyNotFound)
		}

		snap, err := loadSnapshot(ctx, tx, propertyID)
		if err != nil {
			return Assessment{}, err
		}

		a, err := assess(snap)
		if err != nil {
			return Assessment{}, err
		}

		for _, room := range a.Rooms {
			if err := repository.ExecExpectOne(ctx, tx,
				"UPDATE rooms SET risk_score = $1 WHERE id = $2 AND property_id = $3",
				room.Score, room.ID, propertyID,
			); err != nil {
				return Assessment{}, repository.MapError(err, ErrRoomNotFound, ErrRoomNotFound)
			}
		}

		if err := repository.ExecExpectOne(ctx, tx,
			"UPDATE properties SET risk_score = $1, risk_category = $2 WHERE id = $3",
			a.Score, a.Level, propertyID,
		); err != nil {
			return Assessment{}, repository.MapError(err, ErrPropertyNotFound, ErrPropertyNotFound)
		}

		return a, nil
	})
}

func (s *pgStore) Snapshot(ctx context.Context, propertyID uuid.UUID) (Snapshot, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM properties WHERE id = $1)",
		propertyID,
	).Scan(&exists); err != nil {
		return Snapshot{}, fmt.Errorf("check property: %w", err)
	}
	if !exists {
		return Snapshot{}, ErrPropertyNotFound
	}

	return loadSnapshot(ctx, s.db, propertyID)
}

func (s *pgStore) PropertyOf(ctx context.Context, roomID uuid.UUID) (uuid.UUID, error) {
	var propertyID uuid.UUID
	err := s.db.QueryRowContext(ctx,
		"SELECT property_id FROM rooms WHERE id = $1",
		roomID,
	).Scan(&propertyID)
	if err != nil {
		return uuid.Nil, repository.MapError(err, ErrRoomNotFound, ErrRoomNotFound)
	}
	return propertyID, nil
}

type roomTag struct {
	roomID uuid.UUID
	tag    Tag
}

func scanRoom(s repository.Scanner) (Room, error) {
	var r Room
	err := s.Scan(&r.ID, &r.RoomType)
	return r, err
}

func scanRoomTag(s repository.Scanner) (roomTag, error) {
	var rt roomTag
	err := s.Scan(&rt.roomID, &rt.tag.ID, &rt.tag.Category, &rt.tag.Weight)
	return rt, err
}

func loadSnapshot(ctx context.Context, q repository.Querier, propertyID uuid.UUID) (Snapshot, error) {
	rooms, err := repository.QueryMany(ctx, q,
		"SELECT id, room_type FROM rooms WHERE property_id = $1 ORDER BY room_type, id",
		[]any{propertyID},
		scanRoom,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load rooms: %w", err)
	}

	tags, err := repository.QueryMany(ctx, q,
		`SELECT f.room_id, t.id, t.defect_category, t.severity_weight
		FROM defect_tags t
		JOIN findings f ON f.id = t.finding_id
		JOIN rooms r ON r.id = f.room_id
		WHERE r.property_id = $1
		ORDER BY t.severity_weight DESC, t.defect_category, t.id`,
		[]any{propertyID},
		scanRoomTag,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load tags: %w", err)
	}

	return buildSnapshot(propertyID, rooms, tags)
}

func buildSnapshot(propertyID uuid.UUID, rooms []Room, tags []roomTag) (Snapshot, error) {
	index := make(map[uuid.UUID]int, len(rooms))
	for i, r := range rooms {
		rooms[i].Tags = []Tag{}
		index[r.ID] = i
	}

	for _, rt := range tags {
		i, ok := index[rt.roomID]
		if !ok {
			return Snapshot{}, fmt.Errorf("%w: tag %s references room %s outside property %s",
				repository.ErrInvariantViolation, rt.tag.ID, rt.roomID, propertyID)
		}
		rooms[i].Tags = append(rooms[i].Tags, rt.tag)
	}

	return Snapshot{PropertyID: propertyID, Rooms: rooms}, nil
}
