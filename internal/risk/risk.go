// Package risk aggregates defect tag weights into room and property risk scores.
// Scores are always recomputed from the tags; stored scores are never read as input.
package risk

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/defects"
	"github.com/JaimeStill/inspector/pkg/repository"
)

// Level is the categorical property risk derived from the numeric score.
type Level string

// Risk levels.
const (
	Low    Level = "Low"
	Medium Level = "Medium"
	High   Level = "High"
)

// Score thresholds: scores below MediumThreshold are Low, scores at or above
// HighThreshold are High.
const (
	MediumThreshold = 5
	HighThreshold   = 10
)

var levels = []Level{Low, Medium, High}

// UnmarshalJSON validates that the decoded string is a known level.
func (l *Level) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseLevel(raw)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// ParseLevel validates a string as a known risk level.
func ParseLevel(s string) (Level, error) {
	v := Level(s)
	if !slices.Contains(levels, v) {
		return "", ErrInvalidLevel
	}
	return v, nil
}

// Categorize maps a non-negative score to its level. Negative scores are treated as 0.
func Categorize(score int) Level {
	switch {
	case score >= HighThreshold:
		return High
	case score >= MediumThreshold:
		return Medium
	default:
		return Low
	}
}

// Tag is the aggregation view of a defect tag.
type Tag struct {
	ID       uuid.UUID        `json:"id"`
	Category defects.Category `json:"defect_category"`
	Weight   int              `json:"severity_weight"`
}

// Room is the aggregation input for one room: every current tag of every finding in it.
type Room struct {
	ID       uuid.UUID `json:"id"`
	RoomType string    `json:"room_type"`
	Tags     []Tag     `json:"tags"`
}

// Snapshot is the full aggregation input for a property.
type Snapshot struct {
	PropertyID uuid.UUID `json:"property_id"`
	Rooms      []Room    `json:"rooms"`
}

// RoomScore is the computed score of one room.
type RoomScore struct {
	ID       uuid.UUID `json:"id"`
	RoomType string    `json:"room_type"`
	Score    int       `json:"risk_score"`
	Tags     []Tag     `json:"tags"`
}

// Assessment is the computed risk of a property and each of its rooms.
type Assessment struct {
	PropertyID uuid.UUID   `json:"property_id"`
	Score      int         `json:"risk_score"`
	Level      Level       `json:"risk_category"`
	Rooms      []RoomScore `json:"rooms"`
}

// Score sums tag weights. A negative weight violates the data model.
func Score(tags []Tag) (int, error) {
	total := 0
	for _, t := range tags {
		if t.Weight < 0 {
			return 0, fmt.Errorf("%w: tag %s has negative weight %d", repository.ErrInvariantViolation, t.ID, t.Weight)
		}
		total += t.Weight
	}
	return total, nil
}

// Assess computes room scores, the property score, and the property level from s.
// It is pure: the same snapshot always yields the same assessment.
func Assess(s Snapshot) (Assessment, error) {
	a := Assessment{
		PropertyID: s.PropertyID,
		Rooms:      make([]RoomScore, 0, len(s.Rooms)),
	}

	seen := make(map[uuid.UUID]bool, len(s.Rooms))
	for _, room := range s.Rooms {
		if seen[room.ID] {
			return Assessment{}, fmt.Errorf("%w: room %s appears twice in snapshot", repository.ErrInvariantViolation, room.ID)
		}
		seen[room.ID] = true

		score, err := Score(room.Tags)
		if err != nil {
			return Assessment{}, err
		}

		tags := room.Tags
		if tags == nil {
			tags = []Tag{}
		}

		a.Rooms = append(a.Rooms, RoomScore{
			ID:       room.ID,
			RoomType: room.RoomType,
			Score:    score,
			Tags:     tags,
		})
		a.Score += score
	}

	a.Level = Categorize(a.Score)
	return a, nil
}
