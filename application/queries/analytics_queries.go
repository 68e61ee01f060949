package queries

import (
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/valueobjects"
	"github.com/pranavrajput12/PRSNL-sub011/pkg/utils"
)

// Analytics defaults.
const (
	DefaultSuggestionLimit         = 10
	DefaultSuggestionMinConfidence = 0.6
	DefaultPathMaxDepth            = 5
	DefaultPathMinConfidence       = 0.5
	DefaultPathK                   = 5
	DefaultMinClusterSize          = 3
	DefaultMaxClusters             = 10
	DefaultClusterMinConfidence    = 0.5
)

// SuggestRelationshipsQuery asks for relationship suggestions around one
// entity, or across the graph when EntityID is empty.
type SuggestRelationshipsQuery struct {
	EntityID          string   `json:"entity_id"`
	MinConfidence     float64  `json:"min_confidence" validate:"gte=0,lte=1"`
	Limit             int      `json:"limit" validate:"min=1,max=50"`
	RelationshipTypes []string `json:"relationship_types"`
}

// NewSuggestRelationshipsQuery returns a query with the default limit and floor.
func NewSuggestRelationshipsQuery(entityID string) SuggestRelationshipsQuery {
	return SuggestRelationshipsQuery{
		EntityID:      entityID,
		MinConfidence: DefaultSuggestionMinConfidence,
		Limit:         DefaultSuggestionLimit,
	}
}

// Validate validates the query
func (q SuggestRelationshipsQuery) Validate() error {
	if err := utils.ValidateStruct(q); err != nil {
		return err
	}
	_, err := ParseRelationshipTypes(q.RelationshipTypes)
	return err
}

// DiscoverPathsQuery asks for ranked paths between two entities.
type DiscoverPathsQuery struct {
	StartID           string   `json:"start_entity_id" validate:"required"`
	EndID             string   `json:"end_entity_id" validate:"required"`
	MaxDepth          int      `json:"max_depth" validate:"min=1,max=10"`
	MinConfidence     float64  `json:"min_confidence" validate:"gte=0,lte=1"`
	K                 int      `json:"k" validate:"min=1,max=20"`
	RelationshipTypes []string `json:"relationship_types"`
}

// NewDiscoverPathsQuery returns a query with the default depth, floor and k.
func NewDiscoverPathsQuery(startID, endID string) DiscoverPathsQuery {
	return DiscoverPathsQuery{
		StartID:       startID,
		EndID:         endID,
		MaxDepth:      DefaultPathMaxDepth,
		MinConfidence: DefaultPathMinConfidence,
		K:             DefaultPathK,
	}
}

// Validate validates the query
func (q DiscoverPathsQuery) Validate() error {
	if err := utils.ValidateStruct(q); err != nil {
		return err
	}
	_, err := ParseRelationshipTypes(q.RelationshipTypes)
	return err
}

// ClusterEntitiesQuery asks for a clustering of the graph.
type ClusterEntitiesQuery struct {
	Algorithm      string   `json:"algorithm" validate:"required,oneof=semantic structural hybrid"`
	MinClusterSize int      `json:"min_cluster_size" validate:"min=2,max=20"`
	MaxClusters    int      `json:"max_clusters" validate:"min=3,max=25"`
	MinConfidence  float64  `json:"min_confidence" validate:"gte=0,lte=1"`
	EntityTypes    []string `json:"entity_types" validate:"dive,oneof=article video code recipe bookmark document other"`
}

// NewClusterEntitiesQuery returns a hybrid clustering query with defaults.
func NewClusterEntitiesQuery() ClusterEntitiesQuery {
	return ClusterEntitiesQuery{
		Algorithm:      string(valueobjects.ClusterHybrid),
		MinClusterSize: DefaultMinClusterSize,
		MaxClusters:    DefaultMaxClusters,
		MinConfidence:  DefaultClusterMinConfidence,
	}
}

// Validate validates the query
func (q ClusterEntitiesQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// ContentTypes converts the entity type filter.
func (q ClusterEntitiesQuery) ContentTypes() []entities.ContentType {
	out := make([]entities.ContentType, len(q.EntityTypes))
	for i, t := range q.EntityTypes {
		out[i] = entities.ContentType(t)
	}
	return out
}

// AnalyzeGapsQuery asks for a knowledge gap analysis.
type AnalyzeGapsQuery struct {
	Depth        string   `json:"analysis_depth" validate:"required,oneof=quick standard comprehensive"`
	MinSeverity  string   `json:"min_severity" validate:"required,oneof=low medium high critical"`
	FocusDomains []string `json:"focus_domains" validate:"max=20"`
}

// NewAnalyzeGapsQuery returns a standard-depth query reporting every severity.
func NewAnalyzeGapsQuery() AnalyzeGapsQuery {
	return AnalyzeGapsQuery{
		Depth:       string(valueobjects.DepthStandard),
		MinSeverity: string(valueobjects.SeverityLow),
	}
}

// Validate validates the query
func (q AnalyzeGapsQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// ParseRelationshipTypes validates an optional relationship type filter.
func ParseRelationshipTypes(names []string) ([]entities.RelationshipType, error) {
	out := make([]entities.RelationshipType, 0, len(names))
	for _, n := range names {
		t, err := entities.ParseRelationshipType(n)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
