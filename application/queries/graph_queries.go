package queries

import (
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	"github.com/pranavrajput12/PRSNL-sub011/pkg/utils"
)

// Read defaults.
const (
	DefaultFullGraphLimit         = 100
	DefaultFullGraphMinConfidence = 0.5
	DefaultSubgraphDepth          = 2
	DefaultSubgraphLimit          = 50
)

// GetFullGraphQuery reads a bounded, filtered view of the whole graph.
type GetFullGraphQuery struct {
	ContentType      string  `json:"content_type" validate:"omitempty,oneof=article video code recipe bookmark document other"`
	RelationshipType string  `json:"relationship_type"`
	Domain           string  `json:"domain"`
	Limit            int     `json:"limit" validate:"min=10,max=500"`
	MinConfidence    float64 `json:"min_confidence" validate:"gte=0,lte=1"`
}

// NewGetFullGraphQuery returns a query with the default limit and confidence floor.
func NewGetFullGraphQuery() GetFullGraphQuery {
	return GetFullGraphQuery{Limit: DefaultFullGraphLimit, MinConfidence: DefaultFullGraphMinConfidence}
}

// Validate validates the query
func (q GetFullGraphQuery) Validate() error {
	if err := utils.ValidateStruct(q); err != nil {
		return err
	}
	if q.RelationshipType != "" {
		if _, err := entities.ParseRelationshipType(q.RelationshipType); err != nil {
			return err
		}
	}
	return nil
}

// GetSubgraphQuery reads the neighbourhood of one entity.
type GetSubgraphQuery struct {
	EntityID      string  `json:"entity_id" validate:"required"`
	Depth         int     `json:"depth" validate:"min=1,max=5"`
	Limit         int     `json:"limit" validate:"min=1,max=500"`
	MinConfidence float64 `json:"min_confidence" validate:"gte=0,lte=1"`
}

// NewGetSubgraphQuery returns a query with the default depth and limit.
func NewGetSubgraphQuery(entityID string) GetSubgraphQuery {
	return GetSubgraphQuery{EntityID: entityID, Depth: DefaultSubgraphDepth, Limit: DefaultSubgraphLimit}
}

// Validate validates the query
func (q GetSubgraphQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// GetEntityQuery reads one entity.
type GetEntityQuery struct {
	ID string `json:"id" validate:"required"`
}

// Validate validates the query
func (q GetEntityQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// GetRelationshipQuery reads one relationship by its triple.
type GetRelationshipQuery struct {
	SourceID string `json:"source_id" validate:"required"`
	TargetID string `json:"target_id" validate:"required"`
	Type     string `json:"relationship_type" validate:"required"`
}

// Validate validates the query
func (q GetRelationshipQuery) Validate() error {
	if err := utils.ValidateStruct(q); err != nil {
		return err
	}
	_, err := entities.ParseRelationshipType(q.Type)
	return err
}

// GetGraphStatsQuery reads aggregate counts of the graph.
type GetGraphStatsQuery struct{}

// Validate validates the query
func (q GetGraphStatsQuery) Validate() error {
	return nil
}
