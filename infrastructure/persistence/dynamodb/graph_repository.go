package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

const (
	graphPK    = "GRAPH#knowledge"
	metaSK     = "META"
	entityPfx  = "ENTITY#"
	relPfx     = "REL#"
	entityType = "ENTITY"
	relType    = "RELATIONSHIP"

	// DynamoDB rejects transactions with more than 100 actions.
	maxTransactItems = 100
)

// API is the subset of the DynamoDB client the repository uses.
type API interface {
	dynamodb.QueryAPIClient
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// entityItem is the DynamoDB item layout for an entity
type entityItem struct {
	PK          string    `dynamodbav:"PK"`
	SK          string    `dynamodbav:"SK"`
	EntityType  string    `dynamodbav:"EntityType"`
	ID          string    `dynamodbav:"ID"`
	Title       string    `dynamodbav:"Title"`
	ContentType string    `dynamodbav:"ContentType"`
	Summary     string    `dynamodbav:"Summary,omitempty"`
	Embedding   []float32 `dynamodbav:"Embedding,omitempty"`
	Domain      string    `dynamodbav:"Domain,omitempty"`
	Tags        []string  `dynamodbav:"Tags,omitempty"`
	Importance  float64   `dynamodbav:"Importance"`
	CreatedAt   string    `dynamodbav:"CreatedAt"`
	UpdatedAt   string    `dynamodbav:"UpdatedAt"`
}

// relationshipItem is the DynamoDB item layout for a relationship
type relationshipItem struct {
	PK         string  `dynamodbav:"PK"`
	SK         string  `dynamodbav:"SK"`
	EntityType string  `dynamodbav:"EntityType"`
	SourceID   string  `dynamodbav:"SourceID"`
	TargetID   string  `dynamodbav:"TargetID"`
	Type       string  `dynamodbav:"RelationshipType"`
	Confidence float64 `dynamodbav:"Confidence"`
	Strength   float64 `dynamodbav:"Strength"`
	Context    string  `dynamodbav:"Context,omitempty"`
	Origin     string  `dynamodbav:"Origin"`
	CreatedAt  string  `dynamodbav:"CreatedAt"`
	UpdatedAt  string  `dynamodbav:"UpdatedAt"`
}

// GraphRepository persists the knowledge graph in a single DynamoDB
// partition. Every write also advances the META item's version.
type GraphRepository struct {
	client    API
	tableName string
	logger    *zap.Logger
}

// NewGraphRepository creates a new GraphRepository
func NewGraphRepository(client API, tableName string, logger *zap.Logger) *GraphRepository {
	return &GraphRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

var _ ports.GraphRepository = (*GraphRepository)(nil)

func entitySK(id string) string {
	return entityPfx + id
}

func relationshipSK(key entities.RelationshipKey) string {
	return fmt.Sprintf("%s%s#%s#%s", relPfx, key.SourceID, key.Type, key.TargetID)
}

func itemKey(sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: graphPK},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// Load reads every item of the graph partition
func (r *GraphRepository) Load(ctx context.Context) (*ports.GraphState, error) {
	keyExpr := expression.Key("PK").Equal(expression.Value(graphPK))
	expr, err := expression.NewBuilder().WithKeyCondition(keyExpr).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	state := &ports.GraphState{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapError("load graph", err)
		}
		for _, item := range page.Items {
			if err := r.decodeInto(state, item); err != nil {
				r.logger.Warn("Skipping unreadable graph item", zap.Error(err))
			}
		}
	}

	r.logger.Info("Loaded graph from DynamoDB",
		zap.String("table", r.tableName),
		zap.Uint64("version", state.Version),
		zap.Int("entities", len(state.Entities)),
		zap.Int("relationships", len(state.Relationships)),
	)
	return state, nil
}

func (r *GraphRepository) decodeInto(state *ports.GraphState, item map[string]types.AttributeValue) error {
	sk, ok := item["SK"].(*types.AttributeValueMemberS)
	if !ok {
		return errors.New("item without sort key")
	}

	switch {
	case sk.Value == metaSK:
		v, ok := item["Version"].(*types.AttributeValueMemberN)
		if !ok {
			return errors.New("meta item without version")
		}
		version, err := strconv.ParseUint(v.Value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version: %w", err)
		}
		state.Version = version

	case len(sk.Value) > len(entityPfx) && sk.Value[:len(entityPfx)] == entityPfx:
		var it entityItem
		if err := attributevalue.UnmarshalMap(item, &it); err != nil {
			return fmt.Errorf("failed to unmarshal entity: %w", err)
		}
		state.Entities = append(state.Entities, it.toDomain())

	case len(sk.Value) > len(relPfx) && sk.Value[:len(relPfx)] == relPfx:
		var it relationshipItem
		if err := attributevalue.UnmarshalMap(item, &it); err != nil {
			return fmt.Errorf("failed to unmarshal relationship: %w", err)
		}
		state.Relationships = append(state.Relationships, it.toDomain())
	}
	return nil
}

// SaveEntity writes the entity and advances the graph version
func (r *GraphRepository) SaveEntity(ctx context.Context, e *entities.Entity, version uint64) error {
	av, err := attributevalue.MarshalMap(newEntityItem(e))
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}
	put := types.TransactWriteItem{Put: &types.Put{TableName: aws.String(r.tableName), Item: av}}
	return r.commit(ctx, "save entity", []types.TransactWriteItem{put}, version)
}

// SaveRelationship writes the relationship and advances the graph version
func (r *GraphRepository) SaveRelationship(ctx context.Context, rel *entities.Relationship, version uint64) error {
	av, err := attributevalue.MarshalMap(newRelationshipItem(rel))
	if err != nil {
		return fmt.Errorf("failed to marshal relationship: %w", err)
	}
	put := types.TransactWriteItem{Put: &types.Put{TableName: aws.String(r.tableName), Item: av}}
	return r.commit(ctx, "save relationship", []types.TransactWriteItem{put}, version)
}

// DeleteEntity removes the entity item and every relationship item removed with it
func (r *GraphRepository) DeleteEntity(ctx context.Context, id string, removed []entities.RelationshipKey, version uint64) error {
	items := make([]types.TransactWriteItem, 0, len(removed)+1)
	for _, key := range removed {
		items = append(items, r.deleteItem(relationshipSK(key)))
	}
	items = append(items, r.deleteItem(entitySK(id)))
	return r.commit(ctx, "delete entity", items, version)
}

// DeleteRelationship removes one relationship item
func (r *GraphRepository) DeleteRelationship(ctx context.Context, key entities.RelationshipKey, version uint64) error {
	return r.commit(ctx, "delete relationship", []types.TransactWriteItem{r.deleteItem(relationshipSK(key))}, version)
}

func (r *GraphRepository) deleteItem(sk string) types.TransactWriteItem {
	return types.TransactWriteItem{Delete: &types.Delete{TableName: aws.String(r.tableName), Key: itemKey(sk)}}
}

// versionUpdate sets META.Version, refusing to move it backwards so a stale
// writer cannot overwrite a newer graph.
func (r *GraphRepository) versionUpdate(version uint64) (types.TransactWriteItem, error) {
	update := expression.Set(expression.Name("Version"), expression.Value(version)).
		Set(expression.Name("UpdatedAt"), expression.Value(time.Now().UTC().Format(time.RFC3339)))
	cond := expression.AttributeNotExists(expression.Name("Version")).
		Or(expression.Name("Version").LessThan(expression.Value(version)))

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("failed to build expression: %w", err)
	}
	return types.TransactWriteItem{Update: &types.Update{
		TableName:                 aws.String(r.tableName),
		Key:                       itemKey(metaSK),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}}, nil
}

// commit writes items in transactions of at most maxTransactItems actions.
// The version update rides in the last chunk, so the version only advances
// once every item is written.
func (r *GraphRepository) commit(ctx context.Context, op string, items []types.TransactWriteItem, version uint64) error {
	meta, err := r.versionUpdate(version)
	if err != nil {
		return err
	}
	items = append(items, meta)

	for start := 0; start < len(items); start += maxTransactItems {
		end := start + maxTransactItems
		if end > len(items) {
			end = len(items)
		}
		_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: items[start:end],
		})
		if err != nil {
			r.logger.Error("DynamoDB transaction failed",
				zap.String("operation", op),
				zap.Int("items", end-start),
				zap.Uint64("version", version),
				zap.Error(err),
			)
			return mapError(op, err)
		}
	}

	r.logger.Debug("DynamoDB write committed",
		zap.String("operation", op),
		zap.Int("items", len(items)),
		zap.Uint64("version", version),
	)
	return nil
}

// mapError converts AWS API errors into application errors
func mapError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(op).WithCause(err)
	}

	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return apperrors.NewDatabaseError(op, err)
	}

	switch ae.ErrorCode() {
	case "ConditionalCheckFailedException", "TransactionCanceledException":
		return apperrors.NewConflictError(fmt.Sprintf("%s: graph changed concurrently", op)).WithCause(err).WithCode(ae.ErrorCode())
	case "ProvisionedThroughputExceededException", "ThrottlingException", "RequestLimitExceeded":
		return apperrors.NewUnavailableError("dynamodb").WithCause(err).WithCode(ae.ErrorCode())
	case "ResourceNotFoundException":
		return apperrors.NewDatabaseError(op, fmt.Errorf("table not found: %w", err))
	default:
		return apperrors.NewDatabaseError(op, err)
	}
}

func newEntityItem(e *entities.Entity) entityItem {
	return entityItem{
		PK:          graphPK,
		SK:          entitySK(e.ID),
		EntityType:  entityType,
		ID:          e.ID,
		Title:       e.Title,
		ContentType: string(e.ContentType),
		Summary:     e.Summary,
		Embedding:   e.Embedding,
		Domain:      e.Domain,
		Tags:        e.Tags,
		Importance:  e.Importance,
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   e.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (it entityItem) toDomain() *entities.Entity {
	created, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updated, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return &entities.Entity{
		ID:          it.ID,
		Title:       it.Title,
		ContentType: entities.ContentType(it.ContentType),
		Summary:     it.Summary,
		Embedding:   it.Embedding,
		Domain:      it.Domain,
		Tags:        it.Tags,
		Importance:  it.Importance,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
}

func newRelationshipItem(r *entities.Relationship) relationshipItem {
	return relationshipItem{
		PK:         graphPK,
		SK:         relationshipSK(r.Key()),
		EntityType: relType,
		SourceID:   r.SourceID,
		TargetID:   r.TargetID,
		Type:       string(r.Type),
		Confidence: r.Confidence,
		Strength:   r.Strength,
		Context:    r.Context,
		Origin:     string(r.Origin),
		CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (it relationshipItem) toDomain() *entities.Relationship {
	created, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updated, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return &entities.Relationship{
		SourceID:   it.SourceID,
		TargetID:   it.TargetID,
		Type:       entities.RelationshipType(it.Type),
		Confidence: it.Confidence,
		Strength:   it.Strength,
		Context:    it.Context,
		Origin:     entities.Origin(it.Origin),
		CreatedAt:  created,
		UpdatedAt:  updated,
	}
}
