package mediator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	commandbus "github.com/pranavrajput12/PRSNL-sub011/application/commands/bus"
	querybus "github.com/pranavrajput12/PRSNL-sub011/application/queries/bus"
)

// IMediator is the single entry point for commands and queries used by
// the HTTP, Lambda and MCP surfaces.
type IMediator interface {
	// Send dispatches a command. Commands never return data.
	Send(ctx context.Context, command commandbus.Command) error

	// Query dispatches a query and returns the result.
	Query(ctx context.Context, query querybus.Query) (interface{}, error)
}

// Mediator implements IMediator on top of the command and query buses
type Mediator struct {
	commandBus *commandbus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
	behaviors  []Behavior
}

// NewMediator creates a new mediator instance
func NewMediator(commandBus *commandbus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *Mediator {
	return &Mediator{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
		behaviors:  []Behavior{},
	}
}

// Send dispatches a command through the pipeline
func (m *Mediator) Send(ctx context.Context, command commandbus.Command) error {
	startTime := time.Now()

	for _, behavior := range m.behaviors {
		if err := behavior.PreProcess(ctx, command); err != nil {
			m.logger.Debug("Command rejected by pipeline",
				zap.String("command", fmt.Sprintf("%T", command)),
				zap.Error(err))
			return err
		}
	}

	err := m.commandBus.Send(ctx, command)
	elapsed := time.Since(startTime)

	for _, behavior := range m.behaviors {
		behavior.PostProcess(ctx, command, elapsed, err)
	}
	return err
}

// Query dispatches a query through the pipeline
func (m *Mediator) Query(ctx context.Context, query querybus.Query) (interface{}, error) {
	startTime := time.Now()

	for _, behavior := range m.behaviors {
		if err := behavior.PreProcessQuery(ctx, query); err != nil {
			m.logger.Debug("Query rejected by pipeline",
				zap.String("query", fmt.Sprintf("%T", query)),
				zap.Error(err))
			return nil, err
		}
	}

	result, err := m.queryBus.Ask(ctx, query)
	elapsed := time.Since(startTime)

	for _, behavior := range m.behaviors {
		behavior.PostProcessQuery(ctx, query, result, elapsed, err)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddBehavior appends a behavior to the pipeline
func (m *Mediator) AddBehavior(behavior Behavior) {
	m.behaviors = append(m.behaviors, behavior)
	m.logger.Debug("Added behavior to mediator pipeline",
		zap.String("behavior", fmt.Sprintf("%T", behavior)))
}

// GetBehaviors returns all registered behaviors
func (m *Mediator) GetBehaviors() []Behavior {
	return m.behaviors
}
