package services

import (
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/aggregates"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
)

// GraphStats summarises a snapshot.
type GraphStats struct {
	TotalEntities          int                               `json:"total_entities"`
	TotalRelationships     int                               `json:"total_relationships"`
	AverageConfidence      float64                           `json:"average_confidence"`
	AverageDegree          float64                           `json:"average_degree"`
	IsolatedEntities       int                               `json:"isolated_entities"`
	EntitiesWithEmbeddings int                               `json:"entities_with_embeddings"`
	RelationshipsByType    map[entities.RelationshipType]int `json:"relationships_by_type"`
	RelationshipsByOrigin  map[entities.Origin]int           `json:"relationships_by_origin"`
	EntitiesByContentType  map[entities.ContentType]int      `json:"entities_by_content_type"`
	EntitiesByDomain       map[string]int                    `json:"entities_by_domain"`
	StoreVersion           uint64                            `json:"store_version"`
}

// ComputeStats counts entities and relationships by their main attributes.
// Entities without a domain label are bucketed under the inferred domain.
func ComputeStats(snap *aggregates.Snapshot, analyzer TextAnalyzer) *GraphStats {
	stats := &GraphStats{
		TotalEntities:         snap.EntityCount(),
		TotalRelationships:    snap.RelationshipCount(),
		RelationshipsByType:   make(map[entities.RelationshipType]int),
		RelationshipsByOrigin: make(map[entities.Origin]int),
		EntitiesByContentType: make(map[entities.ContentType]int),
		EntitiesByDomain:      make(map[string]int),
		StoreVersion:          snap.Version(),
	}

	for _, e := range snap.Entities() {
		stats.EntitiesByContentType[e.ContentType]++
		stats.EntitiesByDomain[ClassifyDomain(e, analyzer)]++
		if e.HasEmbedding() {
			stats.EntitiesWithEmbeddings++
		}
		if snap.Degree(e.ID) == 0 {
			stats.IsolatedEntities++
		}
	}

	total := 0.0
	for _, r := range snap.Relationships() {
		stats.RelationshipsByType[r.Type]++
		stats.RelationshipsByOrigin[r.Origin]++
		total += r.Confidence
	}
	if stats.TotalRelationships > 0 {
		stats.AverageConfidence = roundScore(total / float64(stats.TotalRelationships))
	}
	if stats.TotalEntities > 0 {
		stats.AverageDegree = roundScore(2 * float64(stats.TotalRelationships) / float64(stats.TotalEntities))
	}
	return stats
}
