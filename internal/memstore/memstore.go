// Package memstore provides in-memory implementations of the pipeline store seams and
// blob storage for tests and local runs without PostgreSQL or Azure.
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/audit"
	"github.com/JaimeStill/inspector/internal/classifications"
	"github.com/JaimeStill/inspector/internal/defects"
	"github.com/JaimeStill/inspector/internal/findings"
	"github.com/JaimeStill/inspector/internal/risk"
	"github.com/JaimeStill/inspector/internal/summaries"
)

// Property is the stored state of a property.
type Property struct {
	ID       uuid.UUID
	Location string
	Score    int
	Level    risk.Level
	Summary  string
}

// Room is the stored state of a room.
type Room struct {
	ID         uuid.UUID
	PropertyID uuid.UUID
	RoomType   string
	Score      int
}

// Store holds properties, rooms, findings, tags, and the audit trail in memory.
type Store struct {
	mu         sync.Mutex
	properties map[uuid.UUID]*Property
	rooms      map[uuid.UUID]*Room
	findings   map[uuid.UUID]*findings.Finding
	tags       map[uuid.UUID][]findings.DefectTag
	history    []audit.Record
	entries    []audit.Entry

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		properties: make(map[uuid.UUID]*Property),
		rooms:      make(map[uuid.UUID]*Room),
		findings:   make(map[uuid.UUID]*findings.Finding),
		tags:       make(map[uuid.UUID][]findings.DefectTag),
		locks:      make(map[uuid.UUID]*sync.Mutex),
	}
}

// AddProperty seeds a property with a Low assessment.
func (s *Store) AddProperty(location string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	s.properties[id] = &Property{ID: id, Location: location, Level: risk.Low}
	return id
}

// AddRoom seeds a room under propertyID.
func (s *Store) AddRoom(propertyID uuid.UUID, roomType string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	s.rooms[id] = &Room{ID: id, PropertyID: propertyID, RoomType: roomType}
	return id
}

// AddFinding seeds a pending finding under roomID.
func (s *Store) AddFinding(roomID uuid.UUID, kind defects.Kind, content string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	var propertyID uuid.UUID
	if r, ok := s.rooms[roomID]; ok {
		propertyID = r.PropertyID
	}
	s.findings[id] = &findings.Finding{
		ID:         id,
		RoomID:     roomID,
		PropertyID: propertyID,
		Kind:       kind,
		Content:    content,
		Status:     findings.StatusPending,
	}
	return id
}

// AddTag seeds a tag on findingID with the table weight of category.
func (s *Store) AddTag(findingID uuid.UUID, category defects.Category, confidence float64) findings.DefectTag {
	s.mu.Lock()
	defer s.mu.Unlock()

	weight, _ := defects.Weight(category)
	tag := findings.DefectTag{
		ID:             uuid.New(),
		FindingID:      findingID,
		Category:       category,
		Confidence:     confidence,
		SeverityWeight: weight,
		ClassifiedAt:   time.Now().UTC(),
	}
	s.tags[findingID] = append(s.tags[findingID], tag)
	return tag
}

// Property returns a copy of the stored property.
func (s *Store) Property(id uuid.UUID) (Property, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.properties[id]
	if !ok {
		return Property{}, false
	}
	return *p, true
}

// Room returns a copy of the stored room.
func (s *Store) Room(id uuid.UUID) (Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[id]
	if !ok {
		return Room{}, false
	}
	return *r, true
}

// Finding returns a copy of the stored finding.
func (s *Store) Finding(id uuid.UUID) (findings.Finding, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.findings[id]
	if !ok {
		return findings.Finding{}, false
	}
	return *f, true
}

// Tags returns the current tags of a finding.
func (s *Store) Tags(findingID uuid.UUID) []findings.DefectTag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tags[findingID])
}

// History returns the superseded classifications of a finding, oldest first.
func (s *Store) History(_ context.Context, findingID uuid.UUID) ([]audit.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []audit.Record
	for _, r := range s.history {
		if r.FindingID == findingID {
			records = append(records, r)
		}
	}
	return records, nil
}

// Entries returns every error log entry in append order.
func (s *Store) Entries() []audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Log appends entry to the error log.
func (s *Store) Log(ctx context.Context, entry audit.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = uuid.New()
	entry.OccurredAt = time.Now().UTC()
	s.entries = append(s.entries, entry)
	return nil
}

// Target implements classifications.Store.
func (s *Store) Target(ctx context.Context, findingID uuid.UUID) (findings.Finding, error) {
	if err := ctx.Err(); err != nil {
		return findings.Finding{}, err
	}

	f, ok := s.Finding(findingID)
	if !ok {
		return findings.Finding{}, classifications.ErrFindingNotFound
	}
	return f, nil
}

// Apply implements classifications.Store.
func (s *Store) Apply(ctx context.Context, findingID uuid.UUID, method string, tags []findings.DefectTag) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.findings[findingID]
	if !ok {
		return 0, classifications.ErrFindingNotFound
	}

	superseded := s.tags[findingID]
	for _, t := range superseded {
		s.history = append(s.history, audit.Record{
			ID:           uuid.New(),
			FindingID:    findingID,
			Category:     t.Category,
			Confidence:   t.Confidence,
			Method:       method,
			ClassifiedAt: t.ClassifiedAt,
		})
	}

	s.tags[findingID] = slices.Clone(tags)
	f.Status = findings.StatusProcessed
	return int64(len(superseded)), nil
}

// Fail implements classifications.Store.
func (s *Store) Fail(ctx context.Context, findingID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.findings[findingID]
	if !ok {
		return classifications.ErrFindingNotFound
	}
	f.Status = findings.StatusFailed
	return nil
}

// Aggregate implements risk.Store. Aggregations of the same property are serialized.
func (s *Store) Aggregate(
	ctx context.Context,
	propertyID uuid.UUID,
	assess func(risk.Snapshot) (risk.Assessment, error),
) (risk.Assessment, error) {
	lock := s.lock(propertyID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.Snapshot(ctx, propertyID)
	if err != nil {
		return risk.Assessment{}, err
	}

	a, err := assess(snap)
	if err != nil {
		return risk.Assessment{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rs := range a.Rooms {
		room, ok := s.rooms[rs.ID]
		if !ok || room.PropertyID != propertyID {
			return risk.Assessment{}, risk.ErrRoomNotFound
		}
		room.Score = rs.Score
	}

	p := s.properties[propertyID]
	p.Score = a.Score
	p.Level = a.Level
	return a, nil
}

// Snapshot implements risk.Store.
func (s *Store) Snapshot(ctx context.Context, propertyID uuid.UUID) (risk.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return risk.Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.properties[propertyID]; !ok {
		return risk.Snapshot{}, risk.ErrPropertyNotFound
	}

	var rooms []risk.Room
	for _, r := range s.rooms {
		if r.PropertyID == propertyID {
			rooms = append(rooms, risk.Room{ID: r.ID, RoomType: r.RoomType, Tags: []risk.Tag{}})
		}
	}
	slices.SortFunc(rooms, func(a, b risk.Room) int {
		return cmp.Or(cmp.Compare(a.RoomType, b.RoomType), cmp.Compare(a.ID.String(), b.ID.String()))
	})

	for i := range rooms {
		for _, f := range s.findings {
			if f.RoomID != rooms[i].ID {
				continue
			}
			for _, t := range s.tags[f.ID] {
				rooms[i].Tags = append(rooms[i].Tags, risk.Tag{ID: t.ID, Category: t.Category, Weight: t.SeverityWeight})
			}
		}
		slices.SortFunc(rooms[i].Tags, func(a, b risk.Tag) int {
			return cmp.Or(
				cmp.Compare(b.Weight, a.Weight),
				cmp.Compare(a.Category, b.Category),
				cmp.Compare(a.ID.String(), b.ID.String()),
			)
		})
	}

	return risk.Snapshot{PropertyID: propertyID, Rooms: rooms}, nil
}

// PropertyOf implements risk.Store.
func (s *Store) PropertyOf(ctx context.Context, roomID uuid.UUID) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}

	r, ok := s.Room(roomID)
	if !ok {
		return uuid.Nil, risk.ErrRoomNotFound
	}
	return r.PropertyID, nil
}

// Facts implements summaries.Store.
func (s *Store) Facts(ctx context.Context, propertyID uuid.UUID) (summaries.Facts, error) {
	if err := ctx.Err(); err != nil {
		return summaries.Facts{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.properties[propertyID]
	if !ok {
		return summaries.Facts{}, summaries.ErrPropertyNotFound
	}

	counts := make(map[defects.Category]int)
	affected := make(map[uuid.UUID]bool)
	for _, f := range s.findings {
		if f.PropertyID != propertyID {
			continue
		}
		for _, t := range s.tags[f.ID] {
			if t.Category == defects.None {
				continue
			}
			counts[t.Category]++
			affected[f.RoomID] = true
		}
	}

	return summaries.NewFacts(propertyID, p.Location, p.Level, p.Score, len(affected), counts), nil
}

// SetSummary implements summaries.Store.
func (s *Store) SetSummary(ctx context.Context, propertyID uuid.UUID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.properties[propertyID]
	if !ok {
		return fmt.Errorf("set summary: %w", summaries.ErrPropertyNotFound)
	}
	p.Summary = text
	return nil
}

func (s *Store) lock(propertyID uuid.UUID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[propertyID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[propertyID] = l
	}
	return l
}
