package audit

import (
	"net/url"

	"github.com/JaimeStill/inspector/pkg/query"
	"github.com/JaimeStill/inspector/pkg/repository"
)

var historyProjection = query.
	NewProjectionMap("public", "classification_history", "h").
	Project("id", "ID").
	Project("finding_id", "FindingID").
	Project("defect_category", "Category").
	Project("confidence_score", "Confidence").
	Project("classification_method", "Method").
	Project("classified_at", "ClassifiedAt")

var historySort = []query.SortField{
	{Field: "ClassifiedAt"},
	{Field: "Category"},
	{Field: "ID"},
}

var entryProjection = query.
	NewProjectionMap("public", "error_log", "e").
	Project("id", "ID").
	Project("error_type", "ErrorType").
	Project("message", "Message").
	Project("entity_type", "EntityType").
	Project("entity_id", "EntityID").
	Project("occurred_at", "OccurredAt")

var entrySort = query.SortField{
	Field:      "OccurredAt",
	Descending: true,
}

// Filters contains optional filtering criteria for error log queries.
// Nil fields are ignored; all fields use exact matching.
type Filters struct {
	ErrorType  *string `json:"error_type,omitempty"`
	EntityType *string `json:"entity_type,omitempty"`
	EntityID   *string `json:"entity_id,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("ErrorType", f.ErrorType).
		WhereEquals("EntityType", f.EntityType).
		WhereEquals("EntityID", f.EntityID)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("error_type"); v != "" {
		f.ErrorType = &v
	}
	if v := values.Get("entity_type"); v != "" {
		f.EntityType = &v
	}
	if v := values.Get("entity_id"); v != "" {
		f.EntityID = &v
	}

	return f
}

func scanRecord(s repository.Scanner) (Record, error) {
	var r Record
	err := s.Scan(
		&r.ID,
		&r.FindingID,
		&r.Category,
		&r.Confidence,
		&r.Method,
		&r.ClassifiedAt,
	)
	return r, err
}

func scanEntry(s repository.Scanner) (Entry, error) {
	var e Entry
	err := s.Scan(
		&e.ID,
		&e.ErrorType,
		&e.Message,
		&e.EntityType,
		&e.EntityID,
		&e.OccurredAt,
	)
	return e, err
}
