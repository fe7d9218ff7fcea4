package summaries

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/defects"
	"github.com/JaimeStill/inspector/internal/risk"
	"github.com/JaimeStill/inspector/pkg/repository"
)

// Store loads summary facts and persists summary text.
type Store interface {
	Facts(ctx context.Context, propertyID uuid.UUID) (Facts, error)
	SetSummary(ctx context.Context, propertyID uuid.UUID, text string) error
}

type pgStore struct {
	db *sql.DB
}

// NewStore creates a PostgreSQL-backed Store.
func NewStore(db *sql.DB) Store {
	return &pgStore{db: db}
}

type categoryCount struct {
	category defects.Category
	count    int
}

func scanCategoryCount(s repository.Scanner) (categoryCount, error) {
	var c categoryCount
	err := s.Scan(&c.category, &c.count)
	return c, err
}

func (s *pgStore) Facts(ctx context.Context, propertyID uuid.UUID) (Facts, error) {
	var (
		location string
		level    risk.Level
		score    int
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT location, risk_category, risk_score FROM properties WHERE id = $1",
		propertyID,
	).Scan(&location, &level, &score)
	if err != nil {
		return Facts{}, repository.MapError(err, ErrPropertyNotFound, ErrPropertyNotFound)
	}

	rows, err := repository.QueryMany(ctx, s.db,
		`SELECT t.defect_category, COUNT(*)
		FROM defect_tags t
		JOIN findings f ON f.id = t.finding_id
		JOIN rooms r ON r.id = f.room_id
		WHERE r.property_id = $1 AND t.defect_category <> $2
		GROUP BY t.defect_category`,
		[]any{propertyID, defects.None},
		scanCategoryCount,
	)
	if err != nil {
		return Facts{}, fmt.Errorf("count defects: %w", err)
	}

	var affected int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT f.room_id)
		FROM defect_tags t
		JOIN findings f ON f.id = t.finding_id
		JOIN rooms r ON r.id = f.room_id
		WHERE r.property_id = $1 AND t.defect_category <> $2`,
		propertyID, defects.None,
	).Scan(&affected); err != nil {
		return Facts{}, fmt.Errorf("count affected rooms: %w", err)
	}

	counts := make(map[defects.Category]int, len(rows))
	for _, r := range rows {
		counts[r.category] = r.count
	}

	return NewFacts(propertyID, location, level, score, affected, counts), nil
}

func (s *pgStore) SetSummary(ctx context.Context, propertyID uuid.UUID, text string) error {
	err := repository.ExecExpectOne(ctx, s.db,
		"UPDATE properties SET summary_text = $1 WHERE id = $2",
		text, propertyID,
	)
	return repository.MapError(err, ErrPropertyNotFound, ErrPropertyNotFound)
}
