package classifications

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/audit"
	"github.com/JaimeStill/inspector/internal/findings"
	"github.com/JaimeStill/inspector/pkg/repository"
)

// Store loads classification targets and persists their results.
type Store interface {
	// Target loads a finding with its owning property.
	Target(ctx context.Context, findingID uuid.UUID) (findings.Finding, error)

	// Apply atomically moves the current tags of a finding into the history under
	// method, replaces them with tags, and marks the finding processed. It returns
	// the number of superseded tags.
	Apply(ctx context.Context, findingID uuid.UUID, method string, tags []findings.DefectTag) (int64, error)

	// Fail marks a finding failed and leaves its current tags untouched.
	Fail(ctx context.Context, findingID uuid.UUID) error
}

type pgStore struct {
	db *sql.DB
}

// NewStore creates a PostgreSQL-backed Store.
func NewStore(db *sql.DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Target(ctx context.Context, findingID uuid.UUID) (findings.Finding, error) {
	found, err := findings.List(ctx, s.db, findings.Scope{FindingID: &findingID})
	if err != nil {
		return findings.Finding{}, fmt.Errorf("load finding: %w", err)
	}
	if len(found) == 0 {
		return findings.Finding{}, ErrFindingNotFound
	}
	return found[0], nil
}

func (s *pgStore) Apply(
	ctx context.Context,
	findingID uuid.UUID,
	method string,
	tags []findings.DefectTag,
) (int64, error) {
	return repository.WithTx(ctx, s.db, func(tx *sql.Tx) (int64, error) {
		var status findings.Status
		err := tx.QueryRowContext(ctx,
			"SELECT processing_status FROM findings WHERE id = $1 FOR UPDATE",
			findingID,
		).Scan(&status)
		if err != nil {
			return 0, repository.MapError(err, ErrFindingNotFound, ErrFindingNotFound)
		}

		superseded, err := audit.Supersede(ctx, tx, findingID, method)
		if err != nil {
			return 0, err
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM defect_tags WHERE finding_id = $1",
			findingID,
		); err != nil {
			return 0, fmt.Errorf("clear tags: %w", err)
		}

		for _, t := range tags {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO defect_tags(id, finding_id, defect_category, confidence_score, severity_weight, classified_at)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				t.ID, findingID, t.Category, t.Confidence, t.SeverityWeight, t.ClassifiedAt,
			); err != nil {
				return 0, repository.MapError(err, ErrFindingNotFound, ErrFindingNotFound)
			}
		}

		if err := repository.ExecExpectOne(ctx, tx,
			"UPDATE findings SET processing_status = $1 WHERE id = $2",
			findings.StatusProcessed, findingID,
		); err != nil {
			return 0, repository.MapError(err, ErrFindingNotFound, ErrFindingNotFound)
		}

		return superseded, nil
	})
}

func (s *pgStore) Fail(ctx context.Context, findingID uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, s.db,
		"UPDATE findings SET processing_status = $1 WHERE id = $2",
		findings.StatusFailed, findingID,
	)
	return repository.MapError(err, ErrFindingNotFound, ErrFindingNotFound)
}
