package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/commands"
	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
)

// UpsertRelationshipHandler handles manual relationship writes
type UpsertRelationshipHandler struct {
	store  ports.GraphStore
	logger *zap.Logger
}

// NewUpsertRelationshipHandler creates a new upsert relationship handler
func NewUpsertRelationshipHandler(store ports.GraphStore, logger *zap.Logger) *UpsertRelationshipHandler {
	return &UpsertRelationshipHandler{store: store, logger: logger}
}

// Handle executes the upsert relationship command
func (h *UpsertRelationshipHandler) Handle(ctx context.Context, cmd commands.UpsertRelationshipCommand) error {
	return upsertRelationship(ctx, h.store, h.logger, cmd.ToRelationship())
}

// ApplySuggestionHandler records an accepted suggestion as an ai_suggested edge.
// Applying the same suggestion again updates the existing triple.
type ApplySuggestionHandler struct {
	store  ports.GraphStore
	logger *zap.Logger
}

// NewApplySuggestionHandler creates a new apply suggestion handler
func NewApplySuggestionHandler(store ports.GraphStore, logger *zap.Logger) *ApplySuggestionHandler {
	return &ApplySuggestionHandler{store: store, logger: logger}
}

// Handle executes the apply suggestion command
func (h *ApplySuggestionHandler) Handle(ctx context.Context, cmd commands.ApplySuggestionCommand) error {
	return upsertRelationship(ctx, h.store, h.logger, cmd.ToRelationship())
}

func upsertRelationship(ctx context.Context, store ports.GraphStore, logger *zap.Logger, rel *entities.Relationship) error {
	stored, created, err := store.UpsertRelationship(ctx, rel)
	if err != nil {
		return err
	}

	logger.Info("Relationship upserted",
		zap.String("key", stored.Key().String()),
		zap.String("origin", string(stored.Origin)),
		zap.Float64("confidence", stored.Confidence),
		zap.Bool("created", created),
	)
	return nil
}

// DeleteRelationshipHandler handles relationship deletion
type DeleteRelationshipHandler struct {
	store  ports.GraphStore
	logger *zap.Logger
}

// NewDeleteRelationshipHandler creates a new delete relationship handler
func NewDeleteRelationshipHandler(store ports.GraphStore, logger *zap.Logger) *DeleteRelationshipHandler {
	return &DeleteRelationshipHandler{store: store, logger: logger}
}

// Handle executes the delete relationship command
func (h *DeleteRelationshipHandler) Handle(ctx context.Context, cmd commands.DeleteRelationshipCommand) error {
	key := cmd.Key()
	if err := h.store.DeleteRelationship(ctx, key); err != nil {
		return err
	}
	h.logger.Info("Relationship deleted", zap.String("key", key.String()))
	return nil
}
