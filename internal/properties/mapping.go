package properties

import (
	"fmt"
	"net/url"

	"github.com/JaimeStill/inspector/internal/defects"
	"github.com/JaimeStill/inspector/internal/risk"
	"github.com/JaimeStill/inspector/pkg/query"
	"github.com/JaimeStill/inspector/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "properties", "p").
	Project("id", "ID").
	Project("location", "Location").
	Project("inspection_date", "InspectionDate").
	Project("risk_score", "RiskScore").
	Project("risk_category", "RiskCategory").
	Project("summary_text", "SummaryText")

var defaultSort = []query.SortField{
	{Field: "Location"},
	{Field: "ID"},
}

// searchFields are matched case-insensitively by the search term. The id is cast so
// partial identifiers match.
var searchFields = []string{"Location", "p.id::text", "SummaryText"}

var roomProjection = query.
	NewProjectionMap("public", "rooms", "r").
	Project("id", "ID").
	Project("property_id", "PropertyID").
	Project("room_type", "RoomType").
	Project("risk_score", "RiskScore")

var roomSort = []query.SortField{
	{Field: "RoomType"},
	{Field: "ID"},
}

const defectExists = `SELECT 1
	FROM public.rooms dr
	JOIN public.findings df ON df.room_id = dr.id
	JOIN public.defect_tags dt ON dt.finding_id = df.id
	WHERE dr.property_id = p.id AND dt.defect_category = %s`

// Filters contains optional filtering criteria for property queries. Nil fields are
// ignored; present fields are combined with AND. DefectCategory matches properties
// with at least one current tag of that category.
type Filters struct {
	RiskCategory   *risk.Level       `json:"risk_category,omitempty"`
	DefectCategory *defects.Category `json:"defect_category,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("RiskCategory", f.RiskCategory).
		WhereExists(defectExists, f.DefectCategory)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Unknown risk or defect categories yield ErrInvalidFilter.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if v := values.Get("risk_category"); v != "" {
		level, err := risk.ParseLevel(v)
		if err != nil {
			return Filters{}, fmt.Errorf("%w: risk_category %q", ErrInvalidFilter, v)
		}
		f.RiskCategory = &level
	}

	if v := values.Get("defect_category"); v != "" {
		c, err := defects.ParseCategory(v)
		if err != nil {
			return Filters{}, fmt.Errorf("%w: defect_category %q", ErrInvalidFilter, v)
		}
		f.DefectCategory = &c
	}

	return f, nil
}

func scanProperty(s repository.Scanner) (Property, error) {
	var p Property
	err := s.Scan(
		&p.ID,
		&p.Location,
		&p.InspectionDate,
		&p.RiskScore,
		&p.RiskCategory,
		&p.SummaryText,
	)
	return p, err
}

func scanRoom(s repository.Scanner) (Room, error) {
	var r Room
	err := s.Scan(
		&r.ID,
		&r.PropertyID,
		&r.RoomType,
		&r.RiskScore,
	)
	return r, err
}
