// Package roster loads and organizes the entity and participant records
// that badge sheets are generated from.
//
// Records come from two tabular inputs: an entities table (delegations
// and private-delegate groups) and a participants table (individual
// attendees, each belonging to exactly one entity). Sources are
// pluggable: [CSVSource] reads the standard CSV upload files and
// [MongoSource] reads the same records from MongoDB collections.
//
// Participant ordering is load-bearing: badges are placed in input
// order, so participants are kept in an insertion-ordered mapping
// ([ParticipantsByEntity]) rather than a plain map.
package roster

import (
	"context"
	"strings"
)

// Entity is a delegation or private-delegate group.
type Entity struct {
	ID          string // unique key (entity_id)
	Type        string // free-form type, e.g. "Delegation", "Private Delegate"
	DisplayName string // team name, falling back to institution name
}

// Participant is an individual attendee belonging to one entity.
type Participant struct {
	ID   string // participant_id, the QR payload; may be empty
	Name string // printed on the badge label
}

// Source provides entity and participant records.
type Source interface {
	Entities(ctx context.Context) (map[string]Entity, error)
	Participants(ctx context.Context) (*ParticipantsByEntity, error)
}

// ParticipantsByEntity maps entity IDs to their participants while
// preserving the order in which entity IDs were first seen. Iteration
// order drives per-entity page breaks, so it must be stable across runs.
type ParticipantsByEntity struct {
	order []string
	byID  map[string][]Participant
}

// NewParticipantsByEntity returns an empty ordered mapping.
func NewParticipantsByEntity() *ParticipantsByEntity {
	return &ParticipantsByEntity{byID: make(map[string][]Participant)}
}

// Add appends p to the entity's participant list, registering the entity
// ID on first sight. Duplicate participants are kept; there is no
// de-duplication.
func (m *ParticipantsByEntity) Add(entityID string, p Participant) {
	if _, ok := m.byID[entityID]; !ok {
		m.order = append(m.order, entityID)
	}
	m.byID[entityID] = append(m.byID[entityID], p)
}

// EntityIDs returns the entity IDs in insertion order.
func (m *ParticipantsByEntity) EntityIDs() []string {
	return m.order
}

// Of returns the participants of one entity in input order.
func (m *ParticipantsByEntity) Of(entityID string) []Participant {
	return m.byID[entityID]
}

// Len returns the number of entities with at least one participant.
func (m *ParticipantsByEntity) Len() int {
	return len(m.order)
}

// Total returns the number of participants across all entities.
func (m *ParticipantsByEntity) Total() int {
	n := 0
	for _, ps := range m.byID {
		n += len(ps)
	}
	return n
}

// IsPrivateDelegate reports whether an entity type routes to the
// private-delegates stream. The rule is a case-insensitive substring
// match on "private delegate", not exact equality, so variants like
// "Private Delegate (Senior)" match too.
func IsPrivateDelegate(entityType string) bool {
	return strings.Contains(strings.ToLower(entityType), "private delegate")
}

// Classify splits entity IDs into the private-delegate stream and the
// delegation stream. Every entity lands in exactly one of the two.
func Classify(entities map[string]Entity) (private, delegations map[string]bool) {
	private = make(map[string]bool)
	delegations = make(map[string]bool)
	for id, e := range entities {
		if IsPrivateDelegate(e.Type) {
			private[id] = true
		} else {
			delegations[id] = true
		}
	}
	return private, delegations
}

// Partition projects parts into two disjoint sub-mappings along the
// entity classification, preserving insertion order within each stream.
// Participants referencing an entity absent from entities fall into the
// delegation stream; the renderer substitutes a placeholder identity for
// them later.
func Partition(entities map[string]Entity, parts *ParticipantsByEntity) (private, delegations *ParticipantsByEntity) {
	private = NewParticipantsByEntity()
	delegations = NewParticipantsByEntity()
	for _, id := range parts.EntityIDs() {
		dst := delegations
		if IsPrivateDelegate(entities[id].Type) {
			dst = private
		}
		for _, p := range parts.Of(id) {
			dst.Add(id, p)
		}
	}
	return private, delegations
}

// resolveDisplayName picks the printed name for an entity: the team name
// when present, otherwise the institution name, otherwise empty.
func resolveDisplayName(teamName, institutionName string) string {
	if teamName != "" {
		return teamName
	}
	return institutionName
}
