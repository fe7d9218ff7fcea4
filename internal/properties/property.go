// Package properties owns inspected properties and their rooms and serves the read side
// of the pipeline: filtered property listings and property and room details.
package properties

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/findings"
	"github.com/JaimeStill/inspector/internal/risk"
)

// Property is an inspected property with its derived risk assessment and summary.
type Property struct {
	ID             uuid.UUID  `json:"id"`
	Location       string     `json:"location"`
	InspectionDate time.Time  `json:"inspection_date"`
	RiskScore      int        `json:"risk_score"`
	RiskCategory   risk.Level `json:"risk_category"`
	SummaryText    string     `json:"summary_text"`
}

// Room is a room within a property.
type Room struct {
	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"property_id"`
	RoomType   string    `json:"room_type"`
	RiskScore  int       `json:"risk_score"`
}

// Details is a property with every room, finding, and current tag beneath it.
type Details struct {
	Property Property             `json:"property"`
	Rooms    []Room               `json:"rooms"`
	Findings []findings.Finding   `json:"findings"`
	Tags     []findings.DefectTag `json:"tags"`
}

// RoomDetails is a room with its findings and their current tags.
type RoomDetails struct {
	Room     Room                 `json:"room"`
	Findings []findings.Finding   `json:"findings"`
	Tags     []findings.DefectTag `json:"tags"`
}

// CreateCommand registers a property. InspectionDate uses the YYYY-MM-DD layout.
type CreateCommand struct {
	Location       string `json:"location"`
	InspectionDate string `json:"inspection_date"`
}

// CreateRoomCommand registers a room within a property.
type CreateRoomCommand struct {
	RoomType string `json:"room_type"`
}
