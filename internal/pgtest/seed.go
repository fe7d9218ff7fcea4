package pgtest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
)

// Property inserts a property inspected today and returns its id.
func Property(t testing.TB, db *sql.DB, location string) uuid.UUID {
	t.Helper()
	return insert(t, db,
		"INSERT INTO properties(id, location, inspection_date) VALUES ($1, $2, CURRENT_DATE)",
		location,
	)
}

// Room inserts a room of propertyID and returns its id.
func Room(t testing.TB, db *sql.DB, propertyID uuid.UUID, roomType string) uuid.UUID {
	t.Helper()
	return insert(t, db,
		"INSERT INTO rooms(id, property_id, room_type) VALUES ($1, $2, $3)",
		propertyID, roomType,
	)
}

// Finding inserts a pending finding of roomID and returns its id.
func Finding(t testing.TB, db *sql.DB, roomID uuid.UUID, kind, content string) uuid.UUID {
	t.Helper()
	return insert(t, db,
		"INSERT INTO findings(id, room_id, kind, content) VALUES ($1, $2, $3, $4)",
		roomID, kind, content,
	)
}

// Tag inserts a current defect tag of findingID classified at the given time.
func Tag(t testing.TB, db *sql.DB, findingID uuid.UUID, category string, weight int, at time.Time) uuid.UUID {
	t.Helper()
	return insert(t, db,
		`INSERT INTO defect_tags(id, finding_id, defect_category, confidence_score, severity_weight, classified_at)
		VALUES ($1, $2, $3, 0.9, $4, $5)`,
		findingID, category, weight, at,
	)
}

func insert(t testing.TB, db *sql.DB, stmt string, args ...any) uuid.UUID {
	t.Helper()
	id := uuid.New()
	if _, err := db.ExecContext(context.Background(), stmt, append([]any{id}, args...)...); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return id
}
