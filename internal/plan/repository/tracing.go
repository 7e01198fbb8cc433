package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/givebridge/distribution/internal/plan/domain"
)

var tracer = otel.Tracer("plan-store")

// TracingStore wraps a domain.Store with OpenTelemetry spans.
type TracingStore struct {
	next domain.Store
}

func NewTracingStore(next domain.Store) *TracingStore {
	return &TracingStore{next: next}
}

func (s *TracingStore) InTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	ctx, span := tracer.Start(ctx, "PlanStore.InTx")
	defer span.End()

	err := s.next.InTx(ctx, fn)
	finish(span, err)
	return err
}

func (s *TracingStore) FindByID(ctx context.Context, id uint) (*domain.DistributionPlan, error) {
	ctx, span := tracer.Start(ctx, "PlanStore.FindByID",
		trace.WithAttributes(attribute.Int("plan.id", int(id))))
	defer span.End()

	plan, err := s.next.FindByID(ctx, id)
	finish(span, err)
	return plan, err
}

func (s *TracingStore) FindByRequestID(ctx context.Context, requestID uint) (*domain.DistributionPlan, error) {
	ctx, span := tracer.Start(ctx, "PlanStore.FindByRequestID",
		trace.WithAttributes(attribute.Int("request.id", int(requestID))))
	defer span.End()

	plan, err := s.next.FindByRequestID(ctx, requestID)
	finish(span, err)
	return plan, err
}

func (s *TracingStore) List(ctx context.Context, filter domain.ListFilter) ([]domain.DistributionPlan, error) {
	ctx, span := tracer.Start(ctx, "PlanStore.List",
		trace.WithAttributes(attribute.String("filter.status", string(filter.Status))))
	defer span.End()

	plans, err := s.next.List(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(plans)))
	}
	finish(span, err)
	return plans, err
}

func (s *TracingStore) Logs(ctx context.Context, filter domain.LogFilter) ([]domain.DistributionLog, error) {
	ctx, span := tracer.Start(ctx, "PlanStore.Logs",
		trace.WithAttributes(
			attribute.Int("filter.plan_id", int(filter.PlanID)),
			attribute.Int("filter.beneficiary_id", int(filter.BeneficiaryID)),
		))
	defer span.End()

	logs, err := s.next.Logs(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(logs)))
	}
	finish(span, err)
	return logs, err
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
