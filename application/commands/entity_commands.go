package commands

import (
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	"github.com/pranavrajput12/PRSNL-sub011/pkg/utils"
)

// UpsertEntityCommand creates or updates a captured content item.
type UpsertEntityCommand struct {
	ID          string    `json:"id" validate:"required,max=128"`
	Title       string    `json:"title" validate:"required,max=500"`
	ContentType string    `json:"content_type" validate:"omitempty,oneof=article video code recipe bookmark document other"`
	Summary     string    `json:"summary" validate:"max=10000"`
	Embedding   []float32 `json:"embedding,omitempty"`
	Domain      string    `json:"domain" validate:"max=100"`
	Tags        []string  `json:"tags" validate:"max=50,dive,max=64"`
	Importance  float64   `json:"importance" validate:"gte=0"`
}

// Validate validates the command
func (c UpsertEntityCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// ToEntity builds the domain entity described by the command.
func (c UpsertEntityCommand) ToEntity() *entities.Entity {
	e := entities.NewEntity(c.ID, c.Title, entities.ContentType(c.ContentType))
	e.Summary = c.Summary
	e.Embedding = c.Embedding
	e.Domain = c.Domain
	e.Tags = c.Tags
	if c.Importance > 0 {
		e.Importance = c.Importance
	}
	return e
}

// DeleteEntityCommand removes an entity and every relationship touching it.
type DeleteEntityCommand struct {
	ID string `json:"id" validate:"required"`
}

// Validate validates the command
func (c DeleteEntityCommand) Validate() error {
	return utils.ValidateStruct(c)
}
