package metrics

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	projectsCreated   metric.Int64Counter
	projectsDeleted   metric.Int64Counter
	tasksCreated      metric.Int64Counter
	timeLogsRecorded  metric.Int64Counter
	costsRecorded     metric.Int64Counter
	attachmentsStored metric.Int64Counter
	kpiComputed       metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.projectsCreated, err = meter.Int64Counter(
		"ledger_service.projects.created",
		metric.WithDescription("Total number of projects created"),
		metric.WithUnit("{project}"),
	)
	if err != nil {
		return nil, err
	}

	m.projectsDeleted, err = meter.Int64Counter(
		"ledger_service.projects.deleted",
		metric.WithDescription("Total number of projects deleted (cascades)"),
		metric.WithUnit("{project}"),
	)
	if err != nil {
		return nil, err
	}

	m.tasksCreated, err = meter.Int64Counter(
		"ledger_service.tasks.created",
		metric.WithDescription("Total number of tasks created"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, err
	}

	m.timeLogsRecorded, err = meter.Int64Counter(
		"ledger_service.timelogs.recorded",
		metric.WithDescription("Total number of time logs recorded"),
		metric.WithUnit("{timelog}"),
	)
	if err != nil {
		return nil, err
	}

	m.costsRecorded, err = meter.Int64Counter(
		"ledger_service.costs.recorded",
		metric.WithDescription("Total number of costs recorded"),
		metric.WithUnit("{cost}"),
	)
	if err != nil {
		return nil, err
	}

	m.attachmentsStored, err = meter.Int64Counter(
		"ledger_service.attachments.stored",
		metric.WithDescription("Total number of receipt attachments stored"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, err
	}

	m.kpiComputed, err = meter.Int64Counter(
		"ledger_service.kpi.computed",
		metric.WithDescription("Total number of KPI computations served"),
		metric.WithUnit("{computation}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordProjectCreated(ctx context.Context) {
	if m != nil && m.projectsCreated != nil {
		m.projectsCreated.Add(ctx, 1)
	}
}

func (m *Metrics) RecordProjectDeleted(ctx context.Context) {
	if m != nil && m.projectsDeleted != nil {
		m.projectsDeleted.Add(ctx, 1)
	}
}

func (m *Metrics) RecordTaskCreated(ctx context.Context) {
	if m != nil && m.tasksCreated != nil {
		m.tasksCreated.Add(ctx, 1)
	}
}

func (m *Metrics) RecordTimeLogRecorded(ctx context.Context) {
	if m != nil && m.timeLogsRecorded != nil {
		m.timeLogsRecorded.Add(ctx, 1)
	}
}

func (m *Metrics) RecordCostRecorded(ctx context.Context) {
	if m != nil && m.costsRecorded != nil {
		m.costsRecorded.Add(ctx, 1)
	}
}

func (m *Metrics) RecordAttachmentStored(ctx context.Context) {
	if m != nil && m.attachmentsStored != nil {
		m.attachmentsStored.Add(ctx, 1)
	}
}

func (m *Metrics) RecordKPIComputed(ctx context.Context) {
	if m != nil && m.kpiComputed != nil {
		m.kpiComputed.Add(ctx, 1)
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{}
}
