package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
)

// SyncMetrics records outcomes of product sync operations and of each remote
// stage they run. A nil *SyncMetrics discards everything.
type SyncMetrics struct {
	stages     *Counter
	operations *Counter
	duration   *Histogram
}

// NewSyncMetrics registers the sync instruments on meter.
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	stages, err := NewCounter(meter,
		"invsync_platform_stage_total",
		"Remote platform stage executions by platform, stage and result",
		"{stage}",
	)
	if err != nil {
		return nil, err
	}
	operations, err := NewCounter(meter,
		"invsync_sync_operations_total",
		"Product sync operations by operation and result",
		"{operation}",
	)
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "invsync_sync_operation_duration_seconds",
		Description: "Wall time of product sync operations including remote fan-out",
		Unit:        "s",
		Boundaries:  SyncDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &SyncMetrics{stages: stages, operations: operations, duration: duration}, nil
}

// RecordStage counts one remote stage execution.
func (m *SyncMetrics) RecordStage(ctx context.Context, platform, stage string, err error) {
	if m == nil {
		return
	}
	m.stages.Inc(ctx,
		AttrPlatform.String(platform),
		AttrStage.String(stage),
		AttrResult.String(resultOf(err)),
	)
}

// RecordSkipped counts a platform that was not attempted.
func (m *SyncMetrics) RecordSkipped(ctx context.Context, platform, stage string) {
	if m == nil {
		return
	}
	m.stages.Inc(ctx,
		AttrPlatform.String(platform),
		AttrStage.String(stage),
		AttrResult.String(ResultSkipped),
	)
}

// RecordOperation counts a finished sync operation and its duration.
func (m *SyncMetrics) RecordOperation(ctx context.Context, operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := resultOf(err)
	m.operations.Inc(ctx, AttrOperation.String(operation), AttrResult.String(result))
	m.duration.RecordDuration(ctx, d, AttrOperation.String(operation), AttrResult.String(result))
}

func resultOf(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
