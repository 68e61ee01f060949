package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/commands"
	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
)

// UpsertEntityHandler handles entity upserts from the capture pipeline
type UpsertEntityHandler struct {
	store    ports.GraphStore
	embedder ports.EmbeddingProvider
	logger   *zap.Logger
}

// NewUpsertEntityHandler creates a new upsert entity handler. embedder may
// be nil, in which case entities keep whatever embedding they arrive with.
func NewUpsertEntityHandler(store ports.GraphStore, embedder ports.EmbeddingProvider, logger *zap.Logger) *UpsertEntityHandler {
	return &UpsertEntityHandler{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

// Handle executes the upsert entity command
func (h *UpsertEntityHandler) Handle(ctx context.Context, cmd commands.UpsertEntityCommand) error {
	entity := cmd.ToEntity()

	if !entity.HasEmbedding() && h.embedder != nil {
		vector, err := h.embedder.Embed(ctx, entity.Text())
		if err != nil {
			// Similarity degrades to co-occurrence for this entity
			h.logger.Warn("Embedding backfill failed",
				zap.String("entityID", entity.ID),
				zap.Error(err),
			)
		} else {
			entity.Embedding = vector
		}
	}

	created, err := h.store.UpsertEntity(ctx, entity)
	if err != nil {
		return err
	}

	h.logger.Info("Entity upserted",
		zap.String("entityID", entity.ID),
		zap.Bool("created", created),
		zap.Bool("hasEmbedding", entity.HasEmbedding()),
	)
	return nil
}

// DeleteEntityHandler handles entity deletion
type DeleteEntityHandler struct {
	store  ports.GraphStore
	logger *zap.Logger
}

// NewDeleteEntityHandler creates a new delete entity handler
func NewDeleteEntityHandler(store ports.GraphStore, logger *zap.Logger) *DeleteEntityHandler {
	return &DeleteEntityHandler{store: store, logger: logger}
}

// Handle removes the entity and cascades to its relationships
func (h *DeleteEntityHandler) Handle(ctx context.Context, cmd commands.DeleteEntityCommand) error {
	removed, err := h.store.DeleteEntity(ctx, cmd.ID)
	if err != nil {
		return err
	}

	h.logger.Info("Entity deleted",
		zap.String("entityID", cmd.ID),
		zap.Int("relationshipsRemoved", len(removed)),
	)
	return nil
}
