package sql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

const metaRowID = 1

// errStaleVersion is returned when the stored version is not older than the write.
var errStaleVersion = errors.New("stale graph version")

type entityRecord struct {
	ID          string    `gorm:"primaryKey;size:191"`
	Title       string    `gorm:"not null"`
	ContentType string    `gorm:"size:32;not null;index"`
	Summary     string    `gorm:"type:text"`
	Embedding   []float32 `gorm:"serializer:json"`
	Domain      string    `gorm:"size:191;index"`
	Tags        []string  `gorm:"serializer:json"`
	Importance  float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (entityRecord) TableName() string { return "graph_entities" }

type relationshipRecord struct {
	SourceID   string `gorm:"primaryKey;size:191"`
	TargetID   string `gorm:"primaryKey;size:191;index"`
	Type       string `gorm:"primaryKey;size:32"`
	Confidence float64
	Strength   float64
	Context    string `gorm:"type:text"`
	Origin     string `gorm:"size:32"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (relationshipRecord) TableName() string { return "graph_relationships" }

type metaRecord struct {
	ID        int `gorm:"primaryKey;autoIncrement:false"`
	Version   uint64
	UpdatedAt time.Time
}

func (metaRecord) TableName() string { return "graph_meta" }

// Open connects to postgres or sqlite and routes gorm's log output through zap.
func Open(driver, dsn string, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	gormLog := gormLogger.New(
		zap.NewStdLog(logger.Named("gorm")),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	return db, nil
}

// GraphRepository stores the graph in three relational tables.
type GraphRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGraphRepository migrates the schema and returns a repository.
func NewGraphRepository(db *gorm.DB, logger *zap.Logger) (*GraphRepository, error) {
	if err := db.AutoMigrate(&entityRecord{}, &relationshipRecord{}, &metaRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate graph schema: %w", err)
	}
	meta := metaRecord{ID: metaRowID, UpdatedAt: time.Now().UTC()}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&meta).Error; err != nil {
		return nil, fmt.Errorf("failed to seed graph version: %w", err)
	}
	return &GraphRepository{db: db, logger: logger}, nil
}

var _ ports.GraphRepository = (*GraphRepository)(nil)

// Load reads all entities and relationships
func (r *GraphRepository) Load(ctx context.Context) (*ports.GraphState, error) {
	var (
		meta metaRecord
		ents []entityRecord
		rels []relationshipRecord
	)
	db := r.db.WithContext(ctx)
	if err := db.First(&meta, metaRowID).Error; err != nil {
		return nil, apperrors.NewDatabaseError("load graph version", err)
	}
	if err := db.Order("id").Find(&ents).Error; err != nil {
		return nil, apperrors.NewDatabaseError("load entities", err)
	}
	if err := db.Order("source_id, target_id, type").Find(&rels).Error; err != nil {
		return nil, apperrors.NewDatabaseError("load relationships", err)
	}

	state := &ports.GraphState{
		Version:       meta.Version,
		Entities:      make([]*entities.Entity, 0, len(ents)),
		Relationships: make([]*entities.Relationship, 0, len(rels)),
	}
	for i := range ents {
		state.Entities = append(state.Entities, ents[i].toDomain())
	}
	for i := range rels {
		state.Relationships = append(state.Relationships, rels[i].toDomain())
	}

	r.logger.Info("Loaded graph from SQL",
		zap.Uint64("version", state.Version),
		zap.Int("entities", len(state.Entities)),
		zap.Int("relationships", len(state.Relationships)),
	)
	return state, nil
}

// SaveEntity upserts an entity
func (r *GraphRepository) SaveEntity(ctx context.Context, e *entities.Entity, version uint64) error {
	rec := newEntityRecord(e)
	return r.transact(ctx, "save entity", version, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title",
				"content_type",
				"summary",
				"embedding",
				"domain",
				"tags",
				"importance",
				"updated_at",
			}),
		}).Create(&rec).Error
	})
}

// SaveRelationship upserts a relationship keyed by its triple
func (r *GraphRepository) SaveRelationship(ctx context.Context, rel *entities.Relationship, version uint64) error {
	rec := newRelationshipRecord(rel)
	return r.transact(ctx, "save relationship", version, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "source_id"}, {Name: "target_id"}, {Name: "type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"confidence",
				"strength",
				"context",
				"origin",
				"updated_at",
			}),
		}).Create(&rec).Error
	})
}

// DeleteEntity removes the entity and the given relationships
func (r *GraphRepository) DeleteEntity(ctx context.Context, id string, removed []entities.RelationshipKey, version uint64) error {
	return r.transact(ctx, "delete entity", version, func(tx *gorm.DB) error {
		for _, key := range removed {
			if err := deleteRelationship(tx, key); err != nil {
				return err
			}
		}
		return tx.Delete(&entityRecord{}, "id = ?", id).Error
	})
}

// DeleteRelationship removes one relationship
func (r *GraphRepository) DeleteRelationship(ctx context.Context, key entities.RelationshipKey, version uint64) error {
	return r.transact(ctx, "delete relationship", version, func(tx *gorm.DB) error {
		return deleteRelationship(tx, key)
	})
}

func deleteRelationship(tx *gorm.DB, key entities.RelationshipKey) error {
	return tx.Delete(&relationshipRecord{},
		"source_id = ? AND target_id = ? AND type = ?",
		key.SourceID, key.TargetID, string(key.Type),
	).Error
}

// transact runs fn and the version bump in one transaction. The bump only
// matches when the stored version is older, so a stale writer rolls back.
func (r *GraphRepository) transact(ctx context.Context, op string, version uint64, fn func(tx *gorm.DB) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(tx); err != nil {
			return err
		}
		res := tx.Model(&metaRecord{}).
			Where("id = ? AND version < ?", metaRowID, version).
			Updates(map[string]interface{}{"version": version, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errStaleVersion
		}
		return nil
	})
	if err == nil {
		return nil
	}

	r.logger.Error("SQL transaction failed",
		zap.String("operation", op),
		zap.Uint64("version", version),
		zap.Error(err),
	)
	if errors.Is(err, errStaleVersion) {
		return apperrors.NewConflictError(fmt.Sprintf("%s: graph changed concurrently", op)).WithCause(err)
	}
	return apperrors.NewDatabaseError(op, err)
}

func newEntityRecord(e *entities.Entity) entityRecord {
	return entityRecord{
		ID:          e.ID,
		Title:       e.Title,
		ContentType: string(e.ContentType),
		Summary:     e.Summary,
		Embedding:   e.Embedding,
		Domain:      e.Domain,
		Tags:        e.Tags,
		Importance:  e.Importance,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (rec *entityRecord) toDomain() *entities.Entity {
	return &entities.Entity{
		ID:          rec.ID,
		Title:       rec.Title,
		ContentType: entities.ContentType(rec.ContentType),
		Summary:     rec.Summary,
		Embedding:   rec.Embedding,
		Domain:      rec.Domain,
		Tags:        rec.Tags,
		Importance:  rec.Importance,
		CreatedAt:   rec.CreatedAt.UTC(),
		UpdatedAt:   rec.UpdatedAt.UTC(),
	}
}

func newRelationshipRecord(r *entities.Relationship) relationshipRecord {
	return relationshipRecord{
		SourceID:   r.SourceID,
		TargetID:   r.TargetID,
		Type:       string(r.Type),
		Confidence: r.Confidence,
		Strength:   r.Strength,
		Context:    r.Context,
		Origin:     string(r.Origin),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (rec *relationshipRecord) toDomain() *entities.Relationship {
	return &entities.Relationship{
		SourceID:   rec.SourceID,
		TargetID:   rec.TargetID,
		Type:       entities.RelationshipType(rec.Type),
		Confidence: rec.Confidence,
		Strength:   rec.Strength,
		Context:    rec.Context,
		Origin:     entities.Origin(rec.Origin),
		CreatedAt:  rec.CreatedAt.UTC(),
		UpdatedAt:  rec.UpdatedAt.UTC(),
	}
}
