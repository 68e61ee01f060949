package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/pranavrajput12/PRSNL-sub011/domain/core/aggregates"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/valueobjects"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

// ClusteringConfig holds the clustering floors and hard caps.
type ClusteringConfig struct {
	// CohesionFloor stops agglomeration once the best average linkage is lower.
	CohesionFloor float64 `yaml:"cohesion_floor" json:"cohesion_floor"`
	// MaxEntities caps how many entities one run considers; the most
	// important are kept and the result is marked truncated.
	MaxEntities int `yaml:"max_entities" json:"max_entities"`
	// HybridSemanticWeight is the semantic share of the hybrid affinity.
	HybridSemanticWeight float64 `yaml:"hybrid_semantic_weight" json:"hybrid_semantic_weight"`
	MaxKeywords          int     `yaml:"max_keywords" json:"max_keywords"`
}

// DefaultClusteringConfig returns the documented defaults.
func DefaultClusteringConfig() ClusteringConfig {
	return ClusteringConfig{
		CohesionFloor:        0.4,
		MaxEntities:          500,
		HybridSemanticWeight: 0.5,
		MaxKeywords:          5,
	}
}

// clusterNamespace seeds deterministic cluster ids.
var clusterNamespace = uuid.MustParse("6f1d7c1e-4a8b-4f52-9a0c-2b7d3e9f5a10")

// ClusterQuery describes one clustering run.
type ClusterQuery struct {
	Algorithm      valueobjects.ClusterAlgorithm
	MinClusterSize int
	MaxClusters    int
	MinConfidence  float64
	EntityTypes    []entities.ContentType
}

// Cluster is a derived group of entities.
type Cluster struct {
	ID            string                        `json:"cluster_id"`
	Name          string                        `json:"cluster_name"`
	Type          valueobjects.ClusterAlgorithm `json:"cluster_type"`
	Domain        string                        `json:"domain"`
	CohesionScore float64                       `json:"cohesion_score"`
	Members       []string                      `json:"members"`
	CentralEntity string                        `json:"central_entity"`
	Keywords      []string                      `json:"keywords"`
	Description   string                        `json:"description"`
}

// ClusterMetadata reports how the run went.
type ClusterMetadata struct {
	Algorithm        valueobjects.ClusterAlgorithm `json:"algorithm"`
	EntitiesAnalyzed int                           `json:"entities_analyzed"`
	TotalClustered   int                           `json:"total_entities_clustered"`
	GroupsFormed     int                           `json:"groups_formed"`
	GroupsDissolved  int                           `json:"groups_dissolved"`
	Truncated        bool                          `json:"truncated"`
	StoreVersion     uint64                        `json:"store_version"`
}

// ClusterResult is the output of a clustering run.
type ClusterResult struct {
	Clusters    []Cluster       `json:"clusters"`
	Unclustered []string        `json:"unclustered_entities"`
	Metadata    ClusterMetadata `json:"metadata"`
}

// clusterInput is what every strategy receives. Entities are sorted by id.
type clusterInput struct {
	entities      []*entities.Entity
	index         map[string]int
	features      []Features
	snap          *aggregates.Snapshot
	minConfidence float64
}

// group is a candidate cluster of entity indexes with its cohesion and the
// per-member centrality used to choose the central entity.
type group struct {
	members    []int
	cohesion   float64
	centrality map[int]float64
}

// ClusteringEngine dispatches to the semantic, structural or hybrid strategy.
type ClusteringEngine struct {
	scorer *SimilarityScorer
	config ClusteringConfig
}

// NewClusteringEngine creates a clustering engine.
func NewClusteringEngine(scorer *SimilarityScorer, config ClusteringConfig) *ClusteringEngine {
	return &ClusteringEngine{scorer: scorer, config: config}
}

// Cluster partitions the (filtered) entities of a snapshot. Groups smaller
// than MinClusterSize are dissolved into Unclustered, and at most
// MaxClusters clusters are returned. Output is deterministic.
func (c *ClusteringEngine) Cluster(snap *aggregates.Snapshot, q ClusterQuery) (*ClusterResult, error) {
	if q.MinClusterSize < 1 {
		return nil, apperrors.NewValidationError("min_cluster_size must be >= 1")
	}
	if q.MaxClusters < 1 {
		return nil, apperrors.NewValidationError("max_clusters must be >= 1")
	}

	in, truncated := c.prepare(snap, q)
	result := &ClusterResult{
		Clusters:    []Cluster{},
		Unclustered: []string{},
		Metadata: ClusterMetadata{
			Algorithm:        q.Algorithm,
			EntitiesAnalyzed: len(in.entities),
			Truncated:        truncated,
			StoreVersion:     snap.Version(),
		},
	}
	if len(in.entities) == 0 {
		return result, nil
	}

	var groups []group
	switch q.Algorithm {
	case valueobjects.ClusterSemantic:
		groups = semanticGroups(in, c.scorer, c.config.CohesionFloor)
	case valueobjects.ClusterStructural:
		groups = structuralGroups(in)
	case valueobjects.ClusterHybrid:
		groups = hybridGroups(in, c.scorer, c.config.CohesionFloor, c.config.HybridSemanticWeight)
	default:
		return nil, apperrors.NewValidationErrorf("unknown clustering algorithm %q", q.Algorithm)
	}
	result.Metadata.GroupsFormed = len(groups)

	kept := make([]group, 0, len(groups))
	clustered := make(map[int]bool)
	for _, g := range groups {
		if len(g.members) < q.MinClusterSize {
			result.Metadata.GroupsDissolved++
			continue
		}
		kept = append(kept, g)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if len(kept[i].members) != len(kept[j].members) {
			return len(kept[i].members) > len(kept[j].members)
		}
		if kept[i].cohesion != kept[j].cohesion {
			return kept[i].cohesion > kept[j].cohesion
		}
		return in.entities[kept[i].members[0]].ID < in.entities[kept[j].members[0]].ID
	})
	if len(kept) > q.MaxClusters {
		result.Metadata.GroupsDissolved += len(kept) - q.MaxClusters
		kept = kept[:q.MaxClusters]
		result.Metadata.Truncated = true
	}

	for _, g := range kept {
		for _, m := range g.members {
			clustered[m] = true
		}
		result.Clusters = append(result.Clusters, c.describe(in, g, q.Algorithm))
	}
	for i, e := range in.entities {
		if !clustered[i] {
			result.Unclustered = append(result.Unclustered, e.ID)
		}
	}
	result.Metadata.TotalClustered = len(clustered)
	return result, nil
}

func (c *ClusteringEngine) prepare(snap *aggregates.Snapshot, q ClusterQuery) (clusterInput, bool) {
	allowed := make(map[entities.ContentType]bool, len(q.EntityTypes))
	for _, t := range q.EntityTypes {
		allowed[t] = true
	}

	selected := make([]*entities.Entity, 0, snap.EntityCount())
	for _, e := range snap.Entities() {
		if len(allowed) == 0 || allowed[e.ContentType] {
			selected = append(selected, e)
		}
	}

	truncated := false
	if c.config.MaxEntities > 0 && len(selected) > c.config.MaxEntities {
		sort.SliceStable(selected, func(i, j int) bool {
			if selected[i].Importance != selected[j].Importance {
				return selected[i].Importance > selected[j].Importance
			}
			return selected[i].ID < selected[j].ID
		})
		selected = selected[:c.config.MaxEntities]
		truncated = true
		sort.Slice(selected, func(i, j int) bool { return selected[i].ID < selected[j].ID })
	}

	in := clusterInput{
		entities:      selected,
		index:         make(map[string]int, len(selected)),
		features:      make([]Features, len(selected)),
		snap:          snap,
		minConfidence: q.MinConfidence,
	}
	for i, e := range selected {
		in.index[e.ID] = i
		in.features[i] = c.scorer.Features(e)
	}
	return in, truncated
}

func (c *ClusteringEngine) describe(in clusterInput, g group, algorithm valueobjects.ClusterAlgorithm) Cluster {
	members := make([]string, len(g.members))
	keywordSets := make([]map[string]bool, len(g.members))
	domainCount := make(map[string]int)
	for i, m := range g.members {
		members[i] = in.entities[m].ID
		keywordSets[i] = in.features[m].Keywords
		domainCount[ClassifyDomain(in.entities[m], c.scorer.Analyzer())]++
	}
	sort.Strings(members)

	central := g.members[0]
	for _, m := range g.members {
		cm, cc := g.centrality[m], g.centrality[central]
		if cm > cc || (cm == cc && in.entities[m].ID < in.entities[central].ID) {
			central = m
		}
	}

	domain := dominant(domainCount)
	common := TopTerms(keywordSets, c.config.MaxKeywords, 2)

	name := domain + " Concepts"
	if len(common) >= 2 {
		name = fmt.Sprintf("%s: %s & %s", domain, titleCase(common[0]), titleCase(common[1]))
	} else if len(common) == 1 {
		name = fmt.Sprintf("%s: %s", domain, titleCase(common[0]))
	}

	var description string
	if len(members) <= 3 {
		titles := make([]string, 0, len(g.members))
		for _, m := range g.members {
			titles = append(titles, in.entities[m].Title)
		}
		sort.Strings(titles)
		description = "Small cluster containing: " + strings.Join(titles, ", ")
	} else {
		description = fmt.Sprintf("Cluster of %d entities centred on %s", len(members), in.entities[central].Title)
	}

	return Cluster{
		ID:            uuid.NewSHA1(clusterNamespace, []byte(string(algorithm)+"|"+strings.Join(members, ","))).String(),
		Name:          name,
		Type:          algorithm,
		Domain:        domain,
		CohesionScore: roundScore(g.cohesion),
		Members:       members,
		CentralEntity: in.entities[central].ID,
		Keywords:      append(common, strings.ToLower(domain)),
		Description:   description,
	}
}

func dominant(counts map[string]int) string {
	best, bestCount := "", -1
	for d, n := range counts {
		if n > bestCount || (n == bestCount && d < best) {
			best, bestCount = d, n
		}
	}
	return best
}

func titleCase(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

func roundScore(v float64) float64 {
	return float64(int64(v*1e4+0.5)) / 1e4
}
