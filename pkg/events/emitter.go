// Package events emits pipeline lifecycle events. The emitter is optional:
// constructed without a producer it silently drops everything, so the
// pipeline runs fine with no brokers configured.
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/snak3gh0st/projetustgov/pkg/kafka"
	"github.com/snak3gh0st/projetustgov/pkg/tracing"
)

const (
	EventRunCompleted           = "run.completed"
	EventReconciliationMismatch = "reconciliation.mismatch"
	EventVolumeAnomaly          = "volume.anomaly"
)

// Emitter publishes pipeline events when a producer is configured
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{producer: producer, logger: logger}
}

// EmitRunCompleted publishes the outcome of a finished pipeline run.
// Emission failures are logged, never propagated: the run already
// committed.
func (e *Emitter) EmitRunCompleted(ctx context.Context, runID int64, status string, stats any) {
	if e == nil || e.producer == nil {
		return
	}
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRunCompleted")
	defer span.End()

	payload, err := json.Marshal(stats)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to marshal run stats")
		return
	}

	event := &kafka.PipelineEvent{
		EventType: EventRunCompleted,
		RunID:     runID,
		Status:    status,
		Payload:   payload,
	}
	if err := e.producer.Publish(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit run.completed event")
	}
}

// EmitVolumeAnomaly publishes a significant swing in extraction volume
// against the previous run
func (e *Emitter) EmitVolumeAnomaly(ctx context.Context, report any) {
	if e == nil || e.producer == nil {
		return
	}
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitVolumeAnomaly")
	defer span.End()

	payload, err := json.Marshal(report)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to marshal volume report")
		return
	}

	event := &kafka.PipelineEvent{
		EventType: EventVolumeAnomaly,
		Payload:   payload,
	}
	if err := e.producer.Publish(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit volume.anomaly event")
	}
}

// EmitReconciliationMismatch publishes a source/landed count discrepancy
func (e *Emitter) EmitReconciliationMismatch(ctx context.Context, result any) {
	if e == nil || e.producer == nil {
		return
	}
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitReconciliationMismatch")
	defer span.End()

	payload, err := json.Marshal(result)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to marshal reconciliation result")
		return
	}

	event := &kafka.PipelineEvent{
		EventType: EventReconciliationMismatch,
		Payload:   payload,
	}
	if err := e.producer.Publish(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit reconciliation.mismatch event")
	}
}
