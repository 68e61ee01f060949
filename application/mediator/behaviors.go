package mediator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	commandbus "github.com/pranavrajput12/PRSNL-sub011/application/commands/bus"
	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
	querybus "github.com/pranavrajput12/PRSNL-sub011/application/queries/bus"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

// Behavior is a cross-cutting step of the mediator pipeline. Post hooks
// receive the time spent in the bus.
type Behavior interface {
	PreProcess(ctx context.Context, command commandbus.Command) error
	PostProcess(ctx context.Context, command commandbus.Command, elapsed time.Duration, err error)
	PreProcessQuery(ctx context.Context, query querybus.Query) error
	PostProcessQuery(ctx context.Context, query querybus.Query, result interface{}, elapsed time.Duration, err error)
}

// requestName turns "commands.UpsertEntityCommand" into "UpsertEntityCommand".
func requestName(v interface{}) string {
	name := fmt.Sprintf("%T", v)
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// LoggingBehavior logs all commands and queries
type LoggingBehavior struct {
	logger *zap.Logger
}

// NewLoggingBehavior creates a new logging behavior
func NewLoggingBehavior(logger *zap.Logger) *LoggingBehavior {
	return &LoggingBehavior{logger: logger}
}

func (b *LoggingBehavior) PreProcess(ctx context.Context, command commandbus.Command) error {
	b.logger.Debug("Executing command",
		zap.String("type", requestName(command)),
		zap.Any("command", command))
	return nil
}

func (b *LoggingBehavior) PostProcess(ctx context.Context, command commandbus.Command, elapsed time.Duration, err error) {
	if err != nil {
		b.logFailure("Command failed", requestName(command), elapsed, err)
		return
	}
	b.logger.Info("Command succeeded",
		zap.String("type", requestName(command)),
		zap.Duration("duration", elapsed))
}

func (b *LoggingBehavior) PreProcessQuery(ctx context.Context, query querybus.Query) error {
	b.logger.Debug("Executing query",
		zap.String("type", requestName(query)),
		zap.Any("query", query))
	return nil
}

func (b *LoggingBehavior) PostProcessQuery(ctx context.Context, query querybus.Query, result interface{}, elapsed time.Duration, err error) {
	if err != nil {
		b.logFailure("Query failed", requestName(query), elapsed, err)
		return
	}
	b.logger.Debug("Query succeeded",
		zap.String("type", requestName(query)),
		zap.Duration("duration", elapsed))
}

// Caller mistakes are logged at Warn, everything else at Error.
func (b *LoggingBehavior) logFailure(msg, name string, elapsed time.Duration, err error) {
	fields := []zap.Field{
		zap.String("type", name),
		zap.Duration("duration", elapsed),
		zap.Error(err),
	}
	if apperrors.IsValidation(err) || apperrors.IsNotFound(err) || apperrors.IsConflict(err) {
		b.logger.Warn(msg, fields...)
		return
	}
	b.logger.Error(msg, fields...)
}

// ValidationBehavior validates commands and queries before execution
type ValidationBehavior struct {
	logger *zap.Logger
}

// NewValidationBehavior creates a new validation behavior
func NewValidationBehavior(logger *zap.Logger) *ValidationBehavior {
	return &ValidationBehavior{logger: logger}
}

func (b *ValidationBehavior) PreProcess(ctx context.Context, command commandbus.Command) error {
	if err := command.Validate(); err != nil {
		b.logger.Warn("Command validation failed",
			zap.String("type", requestName(command)),
			zap.Error(err))
		return err
	}
	return nil
}

func (b *ValidationBehavior) PostProcess(ctx context.Context, command commandbus.Command, elapsed time.Duration, err error) {
}

func (b *ValidationBehavior) PreProcessQuery(ctx context.Context, query querybus.Query) error {
	if err := query.Validate(); err != nil {
		b.logger.Warn("Query validation failed",
			zap.String("type", requestName(query)),
			zap.Error(err))
		return err
	}
	return nil
}

func (b *ValidationBehavior) PostProcessQuery(ctx context.Context, query querybus.Query, result interface{}, elapsed time.Duration, err error) {
}

// MetricsBehavior records durations and outcomes through a MetricsRecorder
type MetricsBehavior struct {
	metrics ports.MetricsRecorder
}

// NewMetricsBehavior creates a new metrics behavior
func NewMetricsBehavior(metrics ports.MetricsRecorder) *MetricsBehavior {
	return &MetricsBehavior{metrics: metrics}
}

func (b *MetricsBehavior) PreProcess(ctx context.Context, command commandbus.Command) error {
	return nil
}

func (b *MetricsBehavior) PostProcess(ctx context.Context, command commandbus.Command, elapsed time.Duration, err error) {
	if b.metrics != nil {
		b.metrics.RecordCommand(requestName(command), elapsed, err)
	}
}

func (b *MetricsBehavior) PreProcessQuery(ctx context.Context, query querybus.Query) error {
	return nil
}

func (b *MetricsBehavior) PostProcessQuery(ctx context.Context, query querybus.Query, result interface{}, elapsed time.Duration, err error) {
	if b.metrics != nil {
		b.metrics.RecordQuery(requestName(query), elapsed, err)
	}
}

// PerformanceBehavior logs slow commands and queries
type PerformanceBehavior struct {
	logger           *zap.Logger
	commandThreshold time.Duration
	queryThreshold   time.Duration
}

// NewPerformanceBehavior creates a new performance monitoring behavior
func NewPerformanceBehavior(logger *zap.Logger, commandThreshold, queryThreshold time.Duration) *PerformanceBehavior {
	return &PerformanceBehavior{
		logger:           logger,
		commandThreshold: commandThreshold,
		queryThreshold:   queryThreshold,
	}
}

func (b *PerformanceBehavior) PreProcess(ctx context.Context, command commandbus.Command) error {
	return nil
}

func (b *PerformanceBehavior) PostProcess(ctx context.Context, command commandbus.Command, elapsed time.Duration, err error) {
	if elapsed > b.commandThreshold {
		b.logger.Warn("Slow command detected",
			zap.String("type", requestName(command)),
			zap.Duration("duration", elapsed),
			zap.Duration("threshold", b.commandThreshold))
	}
}

func (b *PerformanceBehavior) PreProcessQuery(ctx context.Context, query querybus.Query) error {
	return nil
}

func (b *PerformanceBehavior) PostProcessQuery(ctx context.Context, query querybus.Query, result interface{}, elapsed time.Duration, err error) {
	if elapsed > b.queryThreshold {
		b.logger.Warn("Slow query detected",
			zap.String("type", requestName(query)),
			zap.Duration("duration", elapsed),
			zap.Duration("threshold", b.queryThreshold))
	}
}
