package releases

import (
	"strings"

	"dropwatch/internal/catalog"
)

// Mention is one (artist, title) announcement extracted from a single source.
type Mention struct {
	Artist string
	Title  string
	Source string
}

// Key is the normalized identity of an announced release.
type Key struct {
	Artist string
	Title  string
}

// KeyOf normalizes an artist/title pair into its identity key.
func KeyOf(artist, title string) Key {
	return Key{
		Artist: strings.ToLower(strings.TrimSpace(artist)),
		Title:  strings.ToLower(strings.TrimSpace(title)),
	}
}

// Entity is the canonical merged form of one announced release. Artist and
// Title keep the first-encountered spelling; Sources is the ordered union of
// contributing source IDs.
type Entity struct {
	Artist  string
	Title   string
	Sources []string

	// Record is the resolved catalog release. nil means the catalog could not
	// confirm the announcement; consumers render that state distinctly.
	Record *catalog.Record
	// Subject is the artist profile enrichment. A zero-value record marks a
	// failed lookup.
	Subject *catalog.SubjectRecord
}

// Key returns the entity's normalized identity key.
func (e *Entity) Key() Key {
	return KeyOf(e.Artist, e.Title)
}

// HasSource reports whether the entity already credits the source.
func (e *Entity) HasSource(id string) bool {
	for _, existing := range e.Sources {
		if existing == id {
			return true
		}
	}
	return false
}

func (e *Entity) addSource(id string) {
	if id == "" || e.HasSource(id) {
		return
	}
	e.Sources = append(e.Sources, id)
}

// Set holds deduplicated entities keyed by normalized identity, preserving
// first-seen order for iteration.
type Set struct {
	order    []Key
	entities map[Key]*Entity
}

// NewSet returns an empty entity set.
func NewSet() *Set {
	return &Set{entities: make(map[Key]*Entity)}
}

// Reduce groups mentions by normalized identity key, unioning source IDs.
// The first-encountered spelling of artist and title is kept for display.
// Deterministic in input order, and idempotent: reducing a set's own
// mentions reproduces the set.
func Reduce(mentions []Mention) *Set {
	set := NewSet()
	for _, mention := range mentions {
		set.add(mention)
	}
	return set
}

func (s *Set) add(m Mention) {
	key := KeyOf(m.Artist, m.Title)
	if key.Artist == "" || key.Title == "" {
		return
	}
	if entity, ok := s.entities[key]; ok {
		entity.addSource(m.Source)
		return
	}
	entity := &Entity{
		Artist: strings.TrimSpace(m.Artist),
		Title:  strings.TrimSpace(m.Title),
	}
	entity.addSource(m.Source)
	s.entities[key] = entity
	s.order = append(s.order, key)
}

// Len returns the number of entities in the set.
func (s *Set) Len() int {
	return len(s.entities)
}

// Lookup returns the entity for an artist/title pair, matching by
// normalized key.
func (s *Set) Lookup(artist, title string) (*Entity, bool) {
	entity, ok := s.entities[KeyOf(artist, title)]
	return entity, ok
}

// Entities returns the set's entities in first-seen order.
func (s *Set) Entities() []*Entity {
	out := make([]*Entity, 0, len(s.order))
	for _, key := range s.order {
		if entity, ok := s.entities[key]; ok {
			out = append(out, entity)
		}
	}
	return out
}

// MergeByCatalog is the post-enrichment pass: entities whose resolved catalog
// records share a record ID are merged. The entity with the strictly greater
// track count survives; ties keep the first encountered. The loser's sources
// union into the survivor, and the survivor takes the earliest position of
// the group. Entities without a resolved record never merge. Returns the
// number of entities merged away.
func (s *Set) MergeByCatalog() int {
	merged := 0
	survivors := make(map[string]Key)
	snapshot := append([]Key(nil), s.order...)

	for _, key := range snapshot {
		entity, ok := s.entities[key]
		if !ok || entity.Record == nil || entity.Record.ID == "" {
			continue
		}
		survivorKey, seen := survivors[entity.Record.ID]
		if !seen {
			survivors[entity.Record.ID] = key
			continue
		}

		survivor := s.entities[survivorKey]
		if entity.Record.TrackCount > survivor.Record.TrackCount {
			for _, src := range survivor.Sources {
				entity.addSource(src)
			}
			s.replace(survivorKey, key, entity)
			survivors[entity.Record.ID] = key
		} else {
			for _, src := range entity.Sources {
				survivor.addSource(src)
			}
			s.remove(key)
		}
		merged++
	}
	return merged
}

// replace puts winner (currently stored under winnerKey) into the order slot
// held by loserKey and drops the loser entirely.
func (s *Set) replace(loserKey, winnerKey Key, winner *Entity) {
	delete(s.entities, loserKey)
	for i, key := range s.order {
		if key == loserKey {
			s.order[i] = winnerKey
			break
		}
	}
	s.removeOrderSlot(winnerKey, true)
}

func (s *Set) remove(key Key) {
	delete(s.entities, key)
	s.removeOrderSlot(key, false)
}

// removeOrderSlot deletes one order slot for key. When skipFirst is set the
// first occurrence is kept (it was just claimed by a replace) and the
// duplicate later slot is dropped.
func (s *Set) removeOrderSlot(key Key, skipFirst bool) {
	seen := false
	for i, existing := range s.order {
		if existing != key {
			continue
		}
		if skipFirst && !seen {
			seen = true
			continue
		}
		s.order = append(s.order[:i], s.order[i+1:]...)
		return
	}
}
