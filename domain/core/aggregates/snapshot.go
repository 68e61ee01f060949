package aggregates

import (
	"sort"

	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
)

// Snapshot is a consistent, read-only view of the graph at one version.
// Analytics run against snapshots so they never observe a half-applied write.
// Values returned by Snapshot methods must not be mutated.
type Snapshot struct {
	version  uint64
	entities map[string]*entities.Entity
	ids      []string
	rels     []*entities.Relationship
	out      map[string][]*entities.Relationship
	in       map[string][]*entities.Relationship
}

// NewSnapshot copies the given state into a snapshot. Relationships with a
// missing endpoint are dropped.
func NewSnapshot(version uint64, ents []*entities.Entity, rels []*entities.Relationship) *Snapshot {
	s := &Snapshot{
		version:  version,
		entities: make(map[string]*entities.Entity, len(ents)),
		ids:      make([]string, 0, len(ents)),
		rels:     make([]*entities.Relationship, 0, len(rels)),
		out:      make(map[string][]*entities.Relationship),
		in:       make(map[string][]*entities.Relationship),
	}
	for _, e := range ents {
		if _, dup := s.entities[e.ID]; dup {
			continue
		}
		s.entities[e.ID] = e.Clone()
		s.ids = append(s.ids, e.ID)
	}
	sort.Strings(s.ids)

	for _, r := range rels {
		if s.entities[r.SourceID] == nil || s.entities[r.TargetID] == nil {
			continue
		}
		s.rels = append(s.rels, r.Clone())
	}
	sort.Slice(s.rels, func(i, j int) bool {
		return lessKey(s.rels[i].Key(), s.rels[j].Key())
	})
	for _, r := range s.rels {
		s.out[r.SourceID] = append(s.out[r.SourceID], r)
		s.in[r.TargetID] = append(s.in[r.TargetID], r)
	}
	return s
}

func lessKey(a, b entities.RelationshipKey) bool {
	if a.SourceID != b.SourceID {
		return a.SourceID < b.SourceID
	}
	if a.TargetID != b.TargetID {
		return a.TargetID < b.TargetID
	}
	return a.Type < b.Type
}

// Version is the store version the snapshot was taken at.
func (s *Snapshot) Version() uint64 { return s.version }

// EntityCount returns the number of entities.
func (s *Snapshot) EntityCount() int { return len(s.ids) }

// RelationshipCount returns the number of relationships.
func (s *Snapshot) RelationshipCount() int { return len(s.rels) }

// Entity looks up an entity by id.
func (s *Snapshot) Entity(id string) (*entities.Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// Entities returns all entities ordered by id.
func (s *Snapshot) Entities() []*entities.Entity {
	out := make([]*entities.Entity, len(s.ids))
	for i, id := range s.ids {
		out[i] = s.entities[id]
	}
	return out
}

// Relationships returns all relationships ordered by key.
func (s *Snapshot) Relationships() []*entities.Relationship {
	return s.rels
}

// Outgoing returns edges whose source is id.
func (s *Snapshot) Outgoing(id string) []*entities.Relationship {
	return s.out[id]
}

// Incoming returns edges whose target is id.
func (s *Snapshot) Incoming(id string) []*entities.Relationship {
	return s.in[id]
}

// Incident returns every edge touching id, outgoing first.
func (s *Snapshot) Incident(id string) []*entities.Relationship {
	out := make([]*entities.Relationship, 0, len(s.out[id])+len(s.in[id]))
	out = append(out, s.out[id]...)
	return append(out, s.in[id]...)
}

// Degree counts edges touching id in either direction.
func (s *Snapshot) Degree(id string) int {
	return len(s.out[id]) + len(s.in[id])
}

// Connected reports whether any relationship links a and b in either direction.
func (s *Snapshot) Connected(a, b string) bool {
	for _, r := range s.out[a] {
		if r.TargetID == b {
			return true
		}
	}
	for _, r := range s.in[a] {
		if r.SourceID == b {
			return true
		}
	}
	return false
}

// Neighbors returns the distinct ids adjacent to id through edges with
// confidence >= minConfidence, sorted.
func (s *Snapshot) Neighbors(id string, minConfidence float64) []string {
	seen := make(map[string]struct{})
	for _, r := range s.Incident(id) {
		if r.Confidence < minConfidence {
			continue
		}
		seen[r.Other(id)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
