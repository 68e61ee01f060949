package commands

import (
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	"github.com/pranavrajput12/PRSNL-sub011/pkg/utils"
)

// Defaults for manually created relationships.
const (
	DefaultManualConfidence = 0.8
	DefaultStrength         = 1.0
)

// UpsertRelationshipCommand creates an edge or updates an existing triple.
// A nil confidence takes the manual default. A nil strength defaults only on
// creation and keeps the stored strength on update.
type UpsertRelationshipCommand struct {
	SourceID   string   `json:"source_id" validate:"required,nefield=TargetID"`
	TargetID   string   `json:"target_id" validate:"required"`
	Type       string   `json:"relationship_type" validate:"required"`
	Confidence *float64 `json:"confidence,omitempty" validate:"omitempty,gte=0,lte=1"`
	Strength   *float64 `json:"strength,omitempty" validate:"omitempty,gte=0,lte=1"`
	Context    string   `json:"context" validate:"max=2000"`
}

// Validate validates the command
func (c UpsertRelationshipCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	_, err := entities.ParseRelationshipType(c.Type)
	return err
}

// ToRelationship builds the domain relationship described by the command.
func (c UpsertRelationshipCommand) ToRelationship() *entities.Relationship {
	typ, _ := entities.ParseRelationshipType(c.Type)
	r := &entities.Relationship{
		SourceID:   c.SourceID,
		TargetID:   c.TargetID,
		Type:       typ,
		Confidence: DefaultManualConfidence,
		Context:    c.Context,
		Origin:     entities.OriginManual,
	}
	if c.Confidence != nil {
		r.Confidence = *c.Confidence
	}
	if c.Strength != nil {
		r.Strength = *c.Strength
	} else {
		r.WithDefaultStrength(DefaultStrength)
	}
	return r
}

// DeleteRelationshipCommand removes one edge by its triple.
type DeleteRelationshipCommand struct {
	SourceID string `json:"source_id" validate:"required"`
	TargetID string `json:"target_id" validate:"required"`
	Type     string `json:"relationship_type" validate:"required"`
}

// Validate validates the command
func (c DeleteRelationshipCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	_, err := entities.ParseRelationshipType(c.Type)
	return err
}

// Key returns the identity of the relationship to delete.
func (c DeleteRelationshipCommand) Key() entities.RelationshipKey {
	typ, _ := entities.ParseRelationshipType(c.Type)
	return entities.RelationshipKey{SourceID: c.SourceID, TargetID: c.TargetID, Type: typ}
}

// ApplySuggestionCommand accepts a suggested relationship into the graph.
type ApplySuggestionCommand struct {
	SourceID   string  `json:"source_entity_id" validate:"required,nefield=TargetID"`
	TargetID   string  `json:"target_entity_id" validate:"required"`
	Type       string  `json:"relationship_type" validate:"required"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
	Reasoning  string  `json:"reasoning" validate:"max=2000"`
}

// Validate validates the command
func (c ApplySuggestionCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	_, err := entities.ParseRelationshipType(c.Type)
	return err
}

// ToRelationship builds the relationship recorded for an accepted suggestion.
// The suggestion's confidence seeds the strength of a new edge only.
func (c ApplySuggestionCommand) ToRelationship() *entities.Relationship {
	typ, _ := entities.ParseRelationshipType(c.Type)
	r := &entities.Relationship{
		SourceID:   c.SourceID,
		TargetID:   c.TargetID,
		Type:       typ,
		Confidence: c.Confidence,
		Context:    c.Reasoning,
		Origin:     entities.OriginAISuggested,
	}
	return r.WithDefaultStrength(c.Confidence)
}
