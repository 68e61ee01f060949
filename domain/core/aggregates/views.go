package aggregates

import (
	"sort"

	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

// GraphView is a bounded slice of the graph returned to callers.
type GraphView struct {
	Nodes    []*entities.Entity       `json:"nodes"`
	Edges    []*entities.Relationship `json:"edges"`
	Metadata ViewMetadata             `json:"metadata"`
}

// ViewMetadata describes how a view was cut from the graph.
type ViewMetadata struct {
	NodeCount     int            `json:"node_count"`
	EdgeCount     int            `json:"edge_count"`
	TotalNodes    int            `json:"total_nodes"`
	Truncated     bool           `json:"truncated"`
	StoreVersion  uint64         `json:"store_version"`
	SeedID        string         `json:"seed_id,omitempty"`
	Depth         int            `json:"depth,omitempty"`
	HopDistance   map[string]int `json:"hop_distance,omitempty"`
	Filters       *GraphFilter   `json:"filters,omitempty"`
	MinConfidence float64        `json:"min_confidence"`
}

// GraphFilter narrows a full-graph read.
type GraphFilter struct {
	ContentType      entities.ContentType      `json:"content_type,omitempty"`
	RelationshipType entities.RelationshipType `json:"relationship_type,omitempty"`
	Domain           string                    `json:"domain,omitempty"`
}

func (f GraphFilter) matchEntity(e *entities.Entity) bool {
	if f.ContentType != "" && e.ContentType != f.ContentType {
		return false
	}
	if f.Domain != "" && e.Domain != f.Domain {
		return false
	}
	return true
}

func (f GraphFilter) matchEdge(r *entities.Relationship, minConfidence float64) bool {
	if r.Confidence < minConfidence {
		return false
	}
	return f.RelationshipType == "" || r.Type == f.RelationshipType
}

// Subgraph expands breadth-first from seedID for up to depth hops over edges
// with confidence >= minConfidence in either direction. Nodes are ranked by
// hop distance and then by the confidence of the edge that reached them,
// and the result is cut at limit nodes.
func (s *Snapshot) Subgraph(seedID string, depth, limit int, minConfidence float64) (*GraphView, error) {
	if _, ok := s.entities[seedID]; !ok {
		return nil, apperrors.NewNotFoundError("entity " + seedID)
	}
	if depth < 0 || limit < 1 {
		return nil, apperrors.NewValidationError("depth must be >= 0 and limit >= 1")
	}

	dist := map[string]int{seedID: 0}
	order := []string{seedID}
	frontier := []string{seedID}
	truncated := false

	for hop := 1; hop <= depth && len(frontier) > 0; hop++ {
		best := make(map[string]float64)
		for _, id := range frontier {
			for _, r := range s.Incident(id) {
				if r.Confidence < minConfidence {
					continue
				}
				other := r.Other(id)
				if _, seen := dist[other]; seen {
					continue
				}
				if c, ok := best[other]; !ok || r.Confidence > c {
					best[other] = r.Confidence
				}
			}
		}

		next := make([]string, 0, len(best))
		for id := range best {
			next = append(next, id)
		}
		sort.Slice(next, func(i, j int) bool {
			if best[next[i]] != best[next[j]] {
				return best[next[i]] > best[next[j]]
			}
			return next[i] < next[j]
		})

		for _, id := range next {
			if len(order) >= limit {
				truncated = true
				break
			}
			dist[id] = hop
			order = append(order, id)
		}
		if truncated {
			break
		}
		frontier = next
	}

	view := s.buildView(order, func(r *entities.Relationship) bool { return r.Confidence >= minConfidence })
	view.Metadata.SeedID = seedID
	view.Metadata.Depth = depth
	view.Metadata.HopDistance = dist
	view.Metadata.Truncated = truncated
	view.Metadata.TotalNodes = len(order)
	view.Metadata.MinConfidence = minConfidence
	return view, nil
}

// FullGraph returns up to limit entities matching filter, ranked by
// importance then recency, with the edges among them that pass the
// relationship filter and confidence floor.
func (s *Snapshot) FullGraph(filter GraphFilter, limit int, minConfidence float64) (*GraphView, error) {
	if limit < 1 {
		return nil, apperrors.NewValidationError("limit must be >= 1")
	}

	matched := make([]*entities.Entity, 0, len(s.ids))
	for _, id := range s.ids {
		if e := s.entities[id]; filter.matchEntity(e) {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Importance != b.Importance {
			return a.Importance > b.Importance
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	total := len(matched)
	truncated := total > limit
	if truncated {
		matched = matched[:limit]
	}
	ids := make([]string, len(matched))
	for i, e := range matched {
		ids[i] = e.ID
	}

	view := s.buildView(ids, func(r *entities.Relationship) bool { return filter.matchEdge(r, minConfidence) })
	view.Metadata.TotalNodes = total
	view.Metadata.Truncated = truncated
	view.Metadata.MinConfidence = minConfidence
	f := filter
	view.Metadata.Filters = &f
	return view, nil
}

func (s *Snapshot) buildView(ids []string, keepEdge func(*entities.Relationship) bool) *GraphView {
	included := make(map[string]bool, len(ids))
	nodes := make([]*entities.Entity, 0, len(ids))
	for _, id := range ids {
		included[id] = true
		nodes = append(nodes, s.entities[id])
	}

	edges := make([]*entities.Relationship, 0)
	for _, r := range s.rels {
		if included[r.SourceID] && included[r.TargetID] && keepEdge(r) {
			edges = append(edges, r)
		}
	}

	return &GraphView{
		Nodes: nodes,
		Edges: edges,
		Metadata: ViewMetadata{
			NodeCount:    len(nodes),
			EdgeCount:    len(edges),
			StoreVersion: s.version,
		},
	}
}
