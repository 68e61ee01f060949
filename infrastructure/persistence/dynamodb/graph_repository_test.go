package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	"github.com/pranavrajput12/PRSNL-sub011/internal/testutil"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

// fakeTable applies transaction puts and deletes to an in-memory item set
// and serves them back through Query. Expressions are not evaluated except
// for the META version value.
type fakeTable struct {
	items        map[string]map[string]types.AttributeValue
	transactions [][]types.TransactWriteItem
	failWith     error
}

func newFakeTable() *fakeTable {
	return &fakeTable{items: make(map[string]map[string]types.AttributeValue)}
}

func skOf(key map[string]types.AttributeValue) string {
	return key["SK"].(*types.AttributeValueMemberS).Value
}

func (f *fakeTable) TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.transactions = append(f.transactions, in.TransactItems)
	for _, item := range in.TransactItems {
		switch {
		case item.Put != nil:
			f.items[skOf(item.Put.Item)] = item.Put.Item
		case item.Delete != nil:
			delete(f.items, skOf(item.Delete.Key))
		case item.Update != nil:
			meta := map[string]types.AttributeValue{
				"PK": item.Update.Key["PK"],
				"SK": item.Update.Key["SK"],
			}
			for _, v := range item.Update.ExpressionAttributeValues {
				if n, ok := v.(*types.AttributeValueMemberN); ok {
					meta["Version"] = n
				}
			}
			f.items[metaSK] = meta
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (f *fakeTable) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	keys := make([]string, 0, len(f.items))
	for k := range f.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := &dynamodb.QueryOutput{}
	for _, k := range keys {
		out.Items = append(out.Items, f.items[k])
	}
	return out, nil
}

func TestGraphRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	table := newFakeTable()
	repo := NewGraphRepository(table, "graph", zap.NewNop())

	a := testutil.NewEntityBuilder("a").WithDomain("ml").WithTags("go", "graphs").WithEmbedding(0.1, 0.2).Build()
	b := testutil.NewEntityBuilder("b").Build()
	rel := testutil.NewRelationship("a", "b", entities.RelationshipPrerequisite, 0.9)
	rel.CreatedAt = time.Now().UTC()
	rel.UpdatedAt = rel.CreatedAt

	require.NoError(t, repo.SaveEntity(ctx, a, 1))
	require.NoError(t, repo.SaveEntity(ctx, b, 2))
	require.NoError(t, repo.SaveRelationship(ctx, rel, 3))

	state, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), state.Version)
	require.Len(t, state.Entities, 2)
	require.Len(t, state.Relationships, 1)

	loaded := state.Entities[0]
	assert.Equal(t, "a", loaded.ID)
	assert.Equal(t, "ml", loaded.Domain)
	assert.Equal(t, []string{"go", "graphs"}, loaded.Tags)
	assert.Equal(t, []float32{0.1, 0.2}, loaded.Embedding)
	assert.True(t, a.CreatedAt.Equal(loaded.CreatedAt))

	assert.Equal(t, rel.Key(), state.Relationships[0].Key())
	assert.Equal(t, 0.9, state.Relationships[0].Confidence)
}

func TestGraphRepository_DeleteEntityChunksTransactions(t *testing.T) {
	ctx := context.Background()
	table := newFakeTable()
	repo := NewGraphRepository(table, "graph", zap.NewNop())

	removed := make([]entities.RelationshipKey, 150)
	for i := range removed {
		removed[i] = entities.RelationshipKey{SourceID: "hub", TargetID: "n" + strconv.Itoa(i), Type: entities.RelationshipRelatedTo}
	}

	require.NoError(t, repo.DeleteEntity(ctx, "hub", removed, 9))
	require.Len(t, table.transactions, 2)
	assert.Len(t, table.transactions[0], maxTransactItems)
	// relationships, the entity and the version update
	assert.Len(t, table.transactions[1], 52)

	last := table.transactions[1][51]
	require.NotNil(t, last.Update)
	assert.Equal(t, metaSK, skOf(last.Update.Key))
}

func TestGraphRepository_MapsAPIErrors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{
			name:  "conditional check",
			err:   &smithy.GenericAPIError{Code: "TransactionCanceledException", Message: "cancelled"},
			check: apperrors.IsConflict,
		},
		{
			name:  "throttled",
			err:   &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"},
			check: func(err error) bool { return apperrors.IsType(err, apperrors.ErrorTypeUnavailable) },
		},
		{
			name:  "plain error",
			err:   errors.New("connection reset"),
			check: func(err error) bool { return apperrors.IsType(err, apperrors.ErrorTypeDatabase) },
		},
		{
			name:  "deadline exceeded",
			err:   fmt.Errorf("send request: %w", context.DeadlineExceeded),
			check: func(err error) bool { return apperrors.IsType(err, apperrors.ErrorTypeTimeout) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := newFakeTable()
			table.failWith = tt.err
			repo := NewGraphRepository(table, "graph", zap.NewNop())

			err := repo.DeleteRelationship(context.Background(), entities.RelationshipKey{SourceID: "a", TargetID: "b", Type: entities.RelationshipExtends}, 4)
			require.Error(t, err)
			assert.True(t, tt.check(err))
		})
	}

	t.Run("api error code is kept", func(t *testing.T) {
		table := newFakeTable()
		table.failWith = &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}
		repo := NewGraphRepository(table, "graph", zap.NewNop())

		err := repo.DeleteRelationship(context.Background(), entities.RelationshipKey{SourceID: "a", TargetID: "b", Type: entities.RelationshipExtends}, 4)
		appErr := apperrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, "ThrottlingException", appErr.Code)
	})
}
