package mediator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/commands"
	commandbus "github.com/pranavrajput12/PRSNL-sub011/application/commands/bus"
	"github.com/pranavrajput12/PRSNL-sub011/application/queries"
	querybus "github.com/pranavrajput12/PRSNL-sub011/application/queries/bus"
	"github.com/pranavrajput12/PRSNL-sub011/internal/testutil/mocks"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

func newTestMediator(t *testing.T, metrics *mocks.MockMetricsRecorder) (*Mediator, *int) {
	calls := 0
	cmdBus := commandbus.NewCommandBus()
	require.NoError(t, cmdBus.Register(commands.DeleteEntityCommand{}, commandbus.CommandHandlerFunc(
		func(ctx context.Context, cmd commandbus.Command) error {
			calls++
			return nil
		})))

	qBus := querybus.NewQueryBus()
	require.NoError(t, qBus.Register(queries.GetEntityQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return nil, apperrors.NewNotFoundError("entity " + q.(queries.GetEntityQuery).ID)
		})))

	logger := zap.NewNop()
	m := NewMediator(cmdBus, qBus, logger)
	m.AddBehavior(NewLoggingBehavior(logger))
	m.AddBehavior(NewValidationBehavior(logger))
	m.AddBehavior(NewMetricsBehavior(metrics))
	m.AddBehavior(NewPerformanceBehavior(logger, time.Second, time.Second))
	return m, &calls
}

func TestMediator_SendRecordsMetrics(t *testing.T) {
	metrics := new(mocks.MockMetricsRecorder)
	metrics.On("RecordCommand", "DeleteEntityCommand", mock.AnythingOfType("time.Duration"), nil).Return()

	m, calls := newTestMediator(t, metrics)
	err := m.Send(context.Background(), commands.DeleteEntityCommand{ID: "e1"})

	require.NoError(t, err)
	assert.Equal(t, 1, *calls)
	metrics.AssertExpectations(t)
}

func TestMediator_ValidationStopsPipeline(t *testing.T) {
	metrics := new(mocks.MockMetricsRecorder)
	m, calls := newTestMediator(t, metrics)

	err := m.Send(context.Background(), commands.DeleteEntityCommand{})

	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 0, *calls)
	metrics.AssertNotCalled(t, "RecordCommand", mock.Anything, mock.Anything, mock.Anything)
}

func TestMediator_QueryErrorIsReturnedUnchanged(t *testing.T) {
	metrics := new(mocks.MockMetricsRecorder)
	metrics.On("RecordQuery", "GetEntityQuery", mock.AnythingOfType("time.Duration"), mock.Anything).Return()
	m, _ := newTestMediator(t, metrics)

	result, err := m.Query(context.Background(), queries.GetEntityQuery{ID: "missing"})

	assert.Nil(t, result)
	assert.True(t, apperrors.IsNotFound(err))
	metrics.AssertExpectations(t)
}

func TestMediator_UnregisteredCommand(t *testing.T) {
	metrics := new(mocks.MockMetricsRecorder)
	metrics.On("RecordCommand", "UpsertEntityCommand", mock.Anything, mock.Anything).Return()
	m, _ := newTestMediator(t, metrics)

	err := m.Send(context.Background(), commands.UpsertEntityCommand{ID: "e1", Title: "Go"})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.GetAppError(err).Type)
}
