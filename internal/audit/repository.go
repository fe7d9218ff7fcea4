package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/pkg/pagination"
	"github.com/JaimeStill/inspector/pkg/query"
	"github.com/JaimeStill/inspector/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an audit repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "audit"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) History(ctx context.Context, findingID uuid.UUID) ([]Record, error) {
	q, args := query.
		NewBuilder(historyProjection, historySort...).
		WhereEquals("FindingID", findingID).
		Build()

	records, err := repository.QueryMany(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return records, nil
}

func (r *repo) Log(ctx context.Context, entry Entry) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO error_log(error_type, message, entity_type, entity_id)
		VALUES ($1, $2, $3, $4)`,
		entry.ErrorType, entry.Message, entry.EntityType, entry.EntityID,
	); err != nil {
		return fmt.Errorf("append error log: %w", err)
	}
	return nil
}

func (r *repo) Errors(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Entry], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(entryProjection, entrySort).
		WhereSearch(page.Search, "Message", "ErrorType")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count error log: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	entries, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("query error log: %w", err)
	}

	result := pagination.NewPageResult(entries, total, page.Page, page.PageSize)
	return &result, nil
}

// Supersede copies the current tags of a finding into the history within tx,
// preserving each tag's original classification time, and returns the number of
// records written. It must run in the same transaction that replaces the tags.
func Supersede(ctx context.Context, tx repository.Transactor, findingID uuid.UUID, method string) (int64, error) {
	n, err := repository.ExecCount(ctx, tx,
		`INSERT INTO classification_history(finding_id, defect_category, confidence_score, classification_method, classified_at)
		SELECT finding_id, defect_category, confidence_score, $2, classified_at
		FROM defect_tags
		WHERE finding_id = $1`,
		findingID, method,
	)
	if err != nil {
		return 0, fmt.Errorf("supersede tags of %s: %w", findingID, err)
	}
	return n, nil
}
