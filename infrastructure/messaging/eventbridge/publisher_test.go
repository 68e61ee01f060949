package eventbridge

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/domain/events"
)

type mockPutEvents struct {
	mock.Mock
}

func (m *mockPutEvents) PutEvents(ctx context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eventbridge.PutEventsOutput), args.Error(1)
}

func deletions(n int) []events.DomainEvent {
	out := make([]events.DomainEvent, n)
	for i := range out {
		out[i] = events.NewEntityDeleted("e", nil, uint64(i+1))
	}
	return out
}

func TestPublisher_BatchesOfTen(t *testing.T) {
	client := new(mockPutEvents)
	client.On("PutEvents", mock.Anything, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
		return len(in.Entries) == 10
	})).Return(&eventbridge.PutEventsOutput{}, nil).Twice()
	client.On("PutEvents", mock.Anything, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
		return len(in.Entries) == 3
	})).Return(&eventbridge.PutEventsOutput{}, nil).Once()

	p := NewPublisher(client, "prsnl-events", zap.NewNop())
	require.NoError(t, p.PublishBatch(context.Background(), deletions(23)))
	client.AssertExpectations(t)
}

func TestPublisher_EntryFields(t *testing.T) {
	client := new(mockPutEvents)
	var captured *eventbridge.PutEventsInput
	client.On("PutEvents", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*eventbridge.PutEventsInput) }).
		Return(&eventbridge.PutEventsOutput{}, nil)

	p := NewPublisher(client, "prsnl-events", zap.NewNop())
	require.NoError(t, p.Publish(context.Background(), events.NewEntityDeleted("a", nil, 3)))

	require.Len(t, captured.Entries, 1)
	entry := captured.Entries[0]
	assert.Equal(t, "prsnl-events", aws.ToString(entry.EventBusName))
	assert.Equal(t, events.SourceGraphEngine, aws.ToString(entry.Source))
	assert.Equal(t, events.TypeEntityDeleted, aws.ToString(entry.DetailType))
	assert.Contains(t, aws.ToString(entry.Detail), `"entity_id":"a"`)
}

func TestPublisher_FailedEntries(t *testing.T) {
	client := new(mockPutEvents)
	client.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{
		FailedEntryCount: 1,
		Entries: []types.PutEventsResultEntry{
			{EventId: aws.String("ok")},
			{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("try again")},
		},
	}, nil)

	p := NewPublisher(client, "prsnl-events", zap.NewNop())
	err := p.PublishBatch(context.Background(), deletions(2))
	assert.EqualError(t, err, "1 events failed to publish")
}
