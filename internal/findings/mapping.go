package findings

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/pkg/query"
	"github.com/JaimeStill/inspector/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "findings", "f").
	Project("id", "ID").
	Project("room_id", "RoomID").
	Project("kind", "Kind").
	Project("content", "Content").
	Project("processing_status", "Status").
	Join("public", "rooms", "r", "JOIN", "r.id = f.room_id").
	Project("property_id", "PropertyID")

var tagProjection = query.
	NewProjectionMap("public", "defect_tags", "t").
	Project("id", "ID").
	Project("finding_id", "FindingID").
	Project("defect_category", "Category").
	Project("confidence_score", "Confidence").
	Project("severity_weight", "SeverityWeight").
	Project("classified_at", "ClassifiedAt").
	Join("public", "findings", "f", "JOIN", "f.id = t.finding_id").
	Join("public", "rooms", "r", "JOIN", "r.id = f.room_id")

// ScanFinding scans a row produced by the finding projection.
func ScanFinding(s repository.Scanner) (Finding, error) {
	var f Finding
	err := s.Scan(
		&f.ID,
		&f.RoomID,
		&f.Kind,
		&f.Content,
		&f.Status,
		&f.PropertyID,
	)
	return f, err
}

// ScanTag scans a row produced by the defect tag projection.
func ScanTag(s repository.Scanner) (DefectTag, error) {
	var t DefectTag
	err := s.Scan(
		&t.ID,
		&t.FindingID,
		&t.Category,
		&t.Confidence,
		&t.SeverityWeight,
		&t.ClassifiedAt,
	)
	return t, err
}

// Scope selects the findings and tags belonging to a finding, room, or property.
type Scope struct {
	FindingID  *uuid.UUID
	RoomID     *uuid.UUID
	PropertyID *uuid.UUID
}

func (s Scope) apply(b *query.Builder, findingCol, roomCol, propertyCol string) *query.Builder {
	return b.
		WhereEquals(findingCol, s.FindingID).
		WhereEquals(roomCol, s.RoomID).
		WhereEquals(propertyCol, s.PropertyID)
}

// List returns the findings in scope ordered by room then id.
func List(ctx context.Context, q repository.Querier, scope Scope) ([]Finding, error) {
	b := query.NewBuilder(
		projection,
		query.SortField{Field: "RoomID"},
		query.SortField{Field: "ID"},
	)
	scope.apply(b, "ID", "RoomID", "PropertyID")

	sql, args := b.Build()
	return repository.QueryMany(ctx, q, sql, args, ScanFinding)
}

// ListTags returns the tags in scope ordered by severity weight descending, then category.
func ListTags(ctx context.Context, q repository.Querier, scope Scope) ([]DefectTag, error) {
	b := query.NewBuilder(
		tagProjection,
		query.SortField{Field: "SeverityWeight", Descending: true},
		query.SortField{Field: "Category"},
		query.SortField{Field: "ID"},
	)
	scope.apply(b, "t.finding_id", "f.room_id", "r.property_id")

	sql, args := b.Build()
	return repository.QueryMany(ctx, q, sql, args, ScanTag)
}
