// Package summaries assembles the natural-language risk summary of a property from
// its aggregated facts, falling back to a deterministic template when the summarizer
// capability fails or returns text that does not reflect the facts.
package summaries

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/defects"
	"github.com/JaimeStill/inspector/internal/risk"
	"github.com/JaimeStill/inspector/pkg/repository"
)

// NoDefects names the top category when a property has no defects other than none.
const NoDefects = "no significant defects"

// Count is the number of tags of one category across a property.
type Count struct {
	Category defects.Category `json:"defect_category"`
	Count    int              `json:"count"`
}

// Facts is the input to summary assembly. Defects excludes none and is ordered by
// weight descending, then name ascending.
type Facts struct {
	PropertyID    uuid.UUID  `json:"property_id"`
	Location      string     `json:"location"`
	Level         risk.Level `json:"risk_category"`
	Score         int        `json:"risk_score"`
	AffectedRooms int        `json:"affected_rooms"`
	Defects       []Count    `json:"defects"`
}

// Source label values for where a summary's text came from.
const (
	SourceModel    = "model"
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

// Summary is the persisted summary text of a property.
type Summary struct {
	PropertyID uuid.UUID `json:"property_id"`
	Text       string    `json:"summary_text"`
	Source     string    `json:"source"`
}

// NewFacts builds facts from raw per-category counts, dropping none and zero counts
// and ordering the rest by priority.
func NewFacts(propertyID uuid.UUID, location string, level risk.Level, score, affectedRooms int, counts map[defects.Category]int) Facts {
	categories := make([]defects.Category, 0, len(counts))
	for c, n := range counts {
		if c == defects.None || n == 0 {
			continue
		}
		categories = append(categories, c)
	}

	ordered := make([]Count, 0, len(categories))
	for _, c := range defects.Prioritize(categories) {
		ordered = append(ordered, Count{Category: c, Count: counts[c]})
	}

	return Facts{
		PropertyID:    propertyID,
		Location:      location,
		Level:         level,
		Score:         score,
		AffectedRooms: affectedRooms,
		Defects:       ordered,
	}
}

// Validate reports facts that contradict the data model.
func (f Facts) Validate() error {
	if _, err := risk.ParseLevel(string(f.Level)); err != nil {
		return fmt.Errorf("%w: property %s has risk category %q", repository.ErrInvariantViolation, f.PropertyID, f.Level)
	}
	if f.Score < 0 || f.AffectedRooms < 0 {
		return fmt.Errorf("%w: property %s has negative score or room count", repository.ErrInvariantViolation, f.PropertyID)
	}
	for _, c := range f.Defects {
		if c.Count < 0 {
			return fmt.Errorf("%w: property %s has negative %s count", repository.ErrInvariantViolation, f.PropertyID, c.Category)
		}
	}
	return nil
}

// Top returns the highest priority defect category, or NoDefects.
func (f Facts) Top() string {
	if len(f.Defects) == 0 {
		return NoDefects
	}
	return string(f.Defects[0].Category)
}

// Describe renders the defect counts in priority order, e.g. "2 mold and 1 crack".
func (f Facts) Describe() string {
	if len(f.Defects) == 0 {
		return NoDefects
	}

	parts := make([]string, len(f.Defects))
	for i, c := range f.Defects {
		parts[i] = fmt.Sprintf("%d %s", c.Count, c.Category)
	}

	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}

// Fallback renders the deterministic summary used whenever the summarizer cannot be trusted.
func Fallback(f Facts) string {
	rooms := f.AffectedRooms
	if len(f.Defects) == 0 {
		rooms = 0
	}
	return fmt.Sprintf("Risk: %s. Found %d rooms with issues including %s.", f.Level, rooms, f.Top())
}

// Prompt renders the summarizer instructions followed by a facts block.
func Prompt(f Facts) string {
	var b strings.Builder
	b.WriteString("Write a concise property inspection summary in two or three sentences. ")
	b.WriteString("State the risk category and name the most severe defects first. ")
	b.WriteString("Do not invent defects that are not listed.\n\n")
	fmt.Fprintf(&b, "Risk category: %s\n", f.Level)
	fmt.Fprintf(&b, "Risk score: %d\n", f.Score)
	fmt.Fprintf(&b, "Rooms with issues: %d\n", f.AffectedRooms)
	fmt.Fprintf(&b, "Defects (most severe first): %s", f.Describe())
	return b.String()
}

// Conforms reports whether text mentions the risk category and, when any high severity
// category is present, at least one of them. Mentions must be whole words, so "low"
// inside "following" does not count.
func Conforms(text string, f Facts) bool {
	if !mentions(text, string(f.Level)) {
		return false
	}

	var severe []string
	for _, c := range f.Defects {
		if defects.HighSeverity(c.Category) {
			severe = append(severe, string(c.Category))
		}
	}
	if len(severe) == 0 {
		return true
	}

	return slices.ContainsFunc(severe, func(s string) bool {
		return mentions(text, s)
	})
}

// mentions matches phrase in text case-insensitively on word boundaries, allowing any
// whitespace between the words of a multi-word phrase.
func mentions(text, phrase string) bool {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return false
	}
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	pattern := `(?i)\b` + strings.Join(words, `\s+`) + `\b`
	return regexp.MustCompile(pattern).MatchString(text)
}
