package services

import (
	"container/heap"
	"sort"
	"time"

	"github.com/pranavrajput12/PRSNL-sub011/domain/core/aggregates"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/valueobjects"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

// PathConfig bounds the search and tunes difficulty buckets.
type PathConfig struct {
	MaxNodesExpanded int `yaml:"max_nodes_expanded" json:"max_nodes_expanded"`
	MaxDepthLimit    int `yaml:"max_depth_limit" json:"max_depth_limit"`
	DefaultK         int `yaml:"default_k" json:"default_k"`

	EasyThreshold    float64 `yaml:"easy_threshold" json:"easy_threshold"`
	MediumThreshold  float64 `yaml:"medium_threshold" json:"medium_threshold"`
	LengthPenalty    float64 `yaml:"length_penalty" json:"length_penalty"`
	ComplexEdgeBonus float64 `yaml:"complex_edge_bonus" json:"complex_edge_bonus"`
	DiversityPenalty float64 `yaml:"diversity_penalty" json:"diversity_penalty"`
}

// DefaultPathConfig returns the documented defaults.
func DefaultPathConfig() PathConfig {
	return PathConfig{
		MaxNodesExpanded: 10000,
		MaxDepthLimit:    10,
		DefaultK:         5,
		EasyThreshold:    0.8,
		MediumThreshold:  0.6,
		LengthPenalty:    0.1,
		ComplexEdgeBonus: 0.05,
		DiversityPenalty: 0.1,
	}
}

var complexEdgeTypes = map[entities.RelationshipType]bool{
	entities.RelationshipImplements:   true,
	entities.RelationshipExtends:      true,
	entities.RelationshipApplies:      true,
	entities.RelationshipDemonstrates: true,
}

// PathQuery describes one path discovery request.
type PathQuery struct {
	StartID           string
	EndID             string
	MaxDepth          int
	MinConfidence     float64
	K                 int
	RelationshipTypes []entities.RelationshipType
}

// PathNode is an entity visited by a path.
type PathNode struct {
	EntityID    string               `json:"entity_id"`
	Title       string               `json:"title"`
	ContentType entities.ContentType `json:"content_type"`
}

// PathEdge is one traversed relationship. Reversed edges were walked from
// target to source and carry the inverse type label.
type PathEdge struct {
	SourceID   string                    `json:"source_id"`
	TargetID   string                    `json:"target_id"`
	Type       entities.RelationshipType `json:"relationship_type"`
	Confidence float64                   `json:"confidence"`
	Strength   float64                   `json:"strength"`
	Reversed   bool                      `json:"reversed"`
}

// Path is a ranked route between two entities.
type Path struct {
	Nodes              []PathNode                      `json:"nodes"`
	Edges              []PathEdge                      `json:"edges"`
	PathLength         int                             `json:"path_length"`
	TotalConfidence    float64                         `json:"total_confidence"`
	LearningDifficulty valueobjects.LearningDifficulty `json:"learning_difficulty"`
}

// PathResult holds the ranked paths and search statistics.
type PathResult struct {
	Paths                   []Path `json:"paths"`
	Truncated               bool   `json:"truncated"`
	NodesExpanded           int    `json:"nodes_expanded"`
	RelationshipsConsidered int    `json:"relationships_considered"`
	SearchTimeMs            int64  `json:"search_time_ms"`
}

// PathFinder runs bounded best-first search over a snapshot.
type PathFinder struct {
	config PathConfig
}

// NewPathFinder creates a path finder.
func NewPathFinder(config PathConfig) *PathFinder {
	return &PathFinder{config: config}
}

// pathState is one candidate path on the frontier. States form an immutable
// tree through parent, so the visited set of a path is its chain of nodes
// and sibling candidates never share mutable state.
type pathState struct {
	parent *pathState
	node   string
	edge   *PathEdge
	depth  int
	cost   float64
	conf   float64
	seq    int
}

func (p *pathState) visits(id string) bool {
	for s := p; s != nil; s = s.parent {
		if s.node == id {
			return true
		}
	}
	return false
}

type frontier []*pathState

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].cost != f[j].cost {
		return f[i].cost < f[j].cost
	}
	if f[i].depth != f[j].depth {
		return f[i].depth < f[j].depth
	}
	return f[i].seq < f[j].seq
}
func (f frontier) Swap(i, j int)       { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x interface{}) { *f = append(*f, x.(*pathState)) }
func (f *frontier) Pop() interface{} {
	old := *f
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return item
}

// Discover finds up to K paths from StartID to EndID. Edge cost is
// 1 - confidence; the frontier is ordered by cumulative cost. Edges are
// walked forwards and, with the inverse label, backwards. The search stops
// after K paths, an empty frontier, or MaxNodesExpanded expansions, in which
// case the result is marked truncated.
func (pf *PathFinder) Discover(snap *aggregates.Snapshot, q PathQuery) (*PathResult, error) {
	if _, ok := snap.Entity(q.StartID); !ok {
		return nil, apperrors.NewNotFoundError("entity " + q.StartID)
	}
	if _, ok := snap.Entity(q.EndID); !ok {
		return nil, apperrors.NewNotFoundError("entity " + q.EndID)
	}
	if q.StartID == q.EndID {
		return nil, apperrors.NewValidationError("start and end entity must differ")
	}
	if q.MaxDepth < 1 || q.MaxDepth > pf.config.MaxDepthLimit {
		return nil, apperrors.NewValidationErrorf("max_depth must be between 1 and %d", pf.config.MaxDepthLimit)
	}
	if q.MinConfidence < 0 || q.MinConfidence > 1 {
		return nil, apperrors.NewValidationError("min_confidence must be within [0,1]")
	}
	k := q.K
	if k <= 0 {
		k = pf.config.DefaultK
	}

	allowed := make(map[entities.RelationshipType]bool, len(q.RelationshipTypes))
	for _, t := range q.RelationshipTypes {
		allowed[t] = true
	}

	start := time.Now()
	result := &PathResult{Paths: []Path{}}
	seq := 0
	open := &frontier{{node: q.StartID, conf: 1}}
	heap.Init(open)

	var found []*pathState
	for open.Len() > 0 && len(found) < k {
		cur := heap.Pop(open).(*pathState)
		if cur.node == q.EndID {
			found = append(found, cur)
			continue
		}
		if cur.depth >= q.MaxDepth {
			continue
		}
		if result.NodesExpanded >= pf.config.MaxNodesExpanded {
			result.Truncated = true
			break
		}
		result.NodesExpanded++

		steps := traversals(snap, cur.node)
		result.RelationshipsConsidered += len(steps)
		usable := steps[:0]
		for _, step := range steps {
			if step.Confidence < q.MinConfidence {
				continue
			}
			if len(allowed) > 0 && !allowed[step.originalType] {
				continue
			}
			if cur.visits(step.next) {
				continue
			}
			usable = append(usable, step)
		}
		for _, step := range distinctMoves(usable) {
			seq++
			edge := step.PathEdge
			heap.Push(open, &pathState{
				parent: cur,
				node:   step.next,
				edge:   &edge,
				depth:  cur.depth + 1,
				cost:   cur.cost + (1 - step.Confidence),
				conf:   cur.conf * step.Confidence,
				seq:    seq,
			})
		}
	}

	for _, st := range found {
		result.Paths = append(result.Paths, pf.buildPath(snap, st))
	}
	sort.SliceStable(result.Paths, func(i, j int) bool {
		a, b := result.Paths[i], result.Paths[j]
		if a.TotalConfidence != b.TotalConfidence {
			return a.TotalConfidence > b.TotalConfidence
		}
		return a.PathLength < b.PathLength
	})
	result.SearchTimeMs = time.Since(start).Milliseconds()
	return result, nil
}

type traversal struct {
	PathEdge
	next         string
	originalType entities.RelationshipType
}

func traversals(snap *aggregates.Snapshot, node string) []traversal {
	out := make([]traversal, 0, snap.Degree(node))
	for _, r := range snap.Outgoing(node) {
		out = append(out, traversal{
			PathEdge:     PathEdge{SourceID: r.SourceID, TargetID: r.TargetID, Type: r.Type, Confidence: r.Confidence, Strength: r.Strength},
			next:         r.TargetID,
			originalType: r.Type,
		})
	}
	for _, r := range snap.Incoming(node) {
		out = append(out, traversal{
			PathEdge:     PathEdge{SourceID: r.TargetID, TargetID: r.SourceID, Type: r.Type.Reverse(), Confidence: r.Confidence, Strength: r.Strength, Reversed: true},
			next:         r.SourceID,
			originalType: r.Type,
		})
	}
	return out
}

// distinctMoves keeps one move per (next node, label). A symmetric pair
// stored in both directions, or a forward edge next to a reversed one with
// the same label, would otherwise yield the same path twice. The most
// confident move wins; ties keep the first seen.
func distinctMoves(steps []traversal) []traversal {
	type move struct {
		next string
		typ  entities.RelationshipType
	}
	index := make(map[move]int, len(steps))
	out := make([]traversal, 0, len(steps))
	for _, step := range steps {
		m := move{next: step.next, typ: step.Type}
		if i, ok := index[m]; ok {
			if step.Confidence > out[i].Confidence {
				out[i] = step
			}
			continue
		}
		index[m] = len(out)
		out = append(out, step)
	}
	return out
}

func (pf *PathFinder) buildPath(snap *aggregates.Snapshot, end *pathState) Path {
	var chain []*pathState
	for s := end; s != nil; s = s.parent {
		chain = append(chain, s)
	}

	p := Path{
		Nodes: make([]PathNode, 0, len(chain)),
		Edges: make([]PathEdge, 0, len(chain)-1),
	}
	total := 1.0
	for i := len(chain) - 1; i >= 0; i-- {
		s := chain[i]
		e, _ := snap.Entity(s.node)
		p.Nodes = append(p.Nodes, PathNode{EntityID: e.ID, Title: e.Title, ContentType: e.ContentType})
		if s.edge != nil {
			p.Edges = append(p.Edges, *s.edge)
			total *= s.edge.Confidence
		}
	}
	p.PathLength = len(p.Edges)
	p.TotalConfidence = total
	p.LearningDifficulty = pf.Difficulty(total, p.Edges)
	return p
}

// Difficulty buckets a path: long or type-heterogeneous paths score lower,
// edges that apply a concept score slightly higher.
func (pf *PathFinder) Difficulty(totalConfidence float64, edges []PathEdge) valueobjects.LearningDifficulty {
	score := totalConfidence
	if extra := len(edges) - 2; extra > 0 {
		score -= float64(extra) * pf.config.LengthPenalty
	}

	types := make(map[entities.RelationshipType]bool)
	for _, e := range edges {
		types[e.Type] = true
		if complexEdgeTypes[e.Type] {
			score += pf.config.ComplexEdgeBonus
		}
	}
	if len(types) > 1 {
		score -= float64(len(types)-1) * pf.config.DiversityPenalty
	}

	switch {
	case score >= pf.config.EasyThreshold:
		return valueobjects.DifficultyEasy
	case score >= pf.config.MediumThreshold:
		return valueobjects.DifficultyMedium
	default:
		return valueobjects.DifficultyHard
	}
}
