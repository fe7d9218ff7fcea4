package properties

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/findings"
	"github.com/JaimeStill/inspector/internal/risk"
	"github.com/JaimeStill/inspector/pkg/pagination"
	"github.com/JaimeStill/inspector/pkg/query"
	"github.com/JaimeStill/inspector/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a property repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "properties"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Property], error) {
	page.Normalize(r.pagination)

	qb := listQuery(page, filters)

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count properties: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	props, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanProperty)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}

	result := pagination.NewPageResult(props, total, page.Page, page.PageSize)
	return &result, nil
}

func listQuery(page pagination.PageRequest, filters Filters) *query.Builder {
	qb := query.
		NewBuilder(projection, defaultSort...).
		WhereSearch(page.Search, searchFields...)

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		sort := make([]query.SortField, 0, len(page.Sort)+1)
		sort = append(sort, page.Sort...)
		qb.OrderByFields(append(sort, query.SortField{Field: "ID"}))
	}

	return qb
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Property, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)
	p, err := repository.QueryOne(ctx, r.db, q, args, scanProperty)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) Details(ctx context.Context, id uuid.UUID) (*Details, error) {
	p, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	q, args := query.
		NewBuilder(roomProjection, roomSort...).
		WhereEquals("PropertyID", id).
		Build()

	rooms, err := repository.QueryMany(ctx, r.db, q, args, scanRoom)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}

	scope := findings.Scope{PropertyID: &id}

	found, err := findings.List(ctx, r.db, scope)
	if err != nil {
		return nil, fmt.Errorf("query findings: %w", err)
	}

	tags, err := findings.ListTags(ctx, r.db, scope)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}

	return &Details{
		Property: *p,
		Rooms:    nonNil(rooms),
		Findings: nonNil(found),
		Tags:     nonNil(tags),
	}, nil
}

func (r *repo) RoomDetails(ctx context.Context, roomID uuid.UUID) (*RoomDetails, error) {
	q, args := query.NewBuilder(roomProjection).BuildSingle("ID", roomID)
	room, err := repository.QueryOne(ctx, r.db, q, args, scanRoom)
	if err != nil {
		return nil, repository.MapError(err, ErrRoomNotFound, ErrDuplicate)
	}

	scope := findings.Scope{RoomID: &roomID}

	found, err := findings.List(ctx, r.db, scope)
	if err != nil {
		return nil, fmt.Errorf("query findings: %w", err)
	}

	tags, err := findings.ListTags(ctx, r.db, scope)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}

	return &RoomDetails{
		Room:     room,
		Findings: nonNil(found),
		Tags:     nonNil(tags),
	}, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Property, error) {
	location := strings.TrimSpace(cmd.Location)
	if location == "" {
		return nil, ErrInvalidLocation
	}

	date, err := time.Parse(time.DateOnly, cmd.InspectionDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	p := Property{
		ID:             uuid.New(),
		Location:       location,
		InspectionDate: date,
		RiskCategory:   risk.Low,
	}

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO properties(id, location, inspection_date, risk_score, risk_category)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Location, p.InspectionDate, p.RiskScore, p.RiskCategory,
	); err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("property created", "id", p.ID, "location", p.Location)
	return &p, nil
}

func (r *repo) CreateRoom(ctx context.Context, propertyID uuid.UUID, cmd CreateRoomCommand) (*Room, error) {
	roomType := strings.TrimSpace(cmd.RoomType)
	if roomType == "" {
		return nil, ErrInvalidRoomType
	}

	room, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Room, error) {
		var locked uuid.UUID
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM properties WHERE id = $1 FOR SHARE",
			propertyID,
		).Scan(&locked)
		if err != nil {
			return Room{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		room := Room{ID: uuid.New(), PropertyID: propertyID, RoomType: roomType}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO rooms(id, property_id, room_type) VALUES ($1, $2, $3)",
			room.ID, room.PropertyID, room.RoomType,
		); err != nil {
			return Room{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}
		return room, nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("room created", "id", room.ID, "property_id", propertyID, "room_type", roomType)
	return &room, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
