package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/givebridge/distribution/internal/inventory/domain"
)

var tracer = otel.Tracer("inventory-repository")

// TracingRepository decorates an InventoryRepository with OpenTelemetry
// spans per operation.
type TracingRepository struct {
	next domain.InventoryRepository
}

func NewTracingRepository(next domain.InventoryRepository) *TracingRepository {
	return &TracingRepository{next: next}
}

func (r *TracingRepository) span(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *TracingRepository) FindByID(ctx context.Context, id uint) (*domain.InventoryRecord, error) {
	ctx, span := r.span(ctx, "repository.FindByID", attribute.Int("inventory.id", int(id)))
	record, err := r.next.FindByID(ctx, id)
	finish(span, err)
	return record, err
}

func (r *TracingRepository) FindByItem(ctx context.Context, itemName, location string) (*domain.InventoryRecord, error) {
	ctx, span := r.span(ctx, "repository.FindByItem",
		attribute.String("inventory.item_name", itemName),
		attribute.String("inventory.location", location),
	)
	record, err := r.next.FindByItem(ctx, itemName, location)
	finish(span, err)
	return record, err
}

func (r *TracingRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.InventoryRecord, error) {
	ctx, span := r.span(ctx, "repository.FindAll",
		attribute.Int("query.limit", limit),
		attribute.Int("query.offset", offset),
	)
	records, err := r.next.FindAll(ctx, limit, offset)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(records)))
	}
	finish(span, err)
	return records, err
}

func (r *TracingRepository) FindAllocatable(ctx context.Context) ([]domain.InventoryRecord, error) {
	ctx, span := r.span(ctx, "repository.FindAllocatable")
	records, err := r.next.FindAllocatable(ctx)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(records)))
	}
	finish(span, err)
	return records, err
}

func (r *TracingRepository) FindLowStock(ctx context.Context, threshold int) ([]domain.InventoryRecord, error) {
	ctx, span := r.span(ctx, "repository.FindLowStock", attribute.Int("query.threshold", threshold))
	records, err := r.next.FindLowStock(ctx, threshold)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(records)))
	}
	finish(span, err)
	return records, err
}

func (r *TracingRepository) Stats(ctx context.Context) (*domain.InventoryStats, error) {
	ctx, span := r.span(ctx, "repository.Stats")
	stats, err := r.next.Stats(ctx)
	finish(span, err)
	return stats, err
}

func (r *TracingRepository) Credit(ctx context.Context, itemName, category, location string, qty int, value decimal.Decimal, received bool, reference string) (*domain.InventoryRecord, error) {
	ctx, span := r.span(ctx, "repository.Credit",
		attribute.String("inventory.item_name", itemName),
		attribute.Int("ledger.qty", qty),
		attribute.String("ledger.value", value.String()),
		attribute.Bool("ledger.received", received),
		attribute.String("ledger.reference", reference),
	)
	record, err := r.next.Credit(ctx, itemName, category, location, qty, value, received, reference)
	finish(span, err)
	return record, err
}

func (r *TracingRepository) Receive(ctx context.Context, id uint, qty int, reference string) (*domain.InventoryRecord, error) {
	ctx, span := r.span(ctx, "repository.Receive",
		attribute.Int("inventory.id", int(id)),
		attribute.Int("ledger.qty", qty),
	)
	record, err := r.next.Receive(ctx, id, qty, reference)
	finish(span, err)
	return record, err
}

func (r *TracingRepository) Reserve(ctx context.Context, id uint, qty int, reference string) (*domain.InventoryRecord, error) {
	ctx, span := r.span(ctx, "repository.Reserve",
		attribute.Int("inventory.id", int(id)),
		attribute.Int("ledger.qty", qty),
	)
	record, err := r.next.Reserve(ctx, id, qty, reference)
	finish(span, err)
	return record, err
}

func (r *TracingRepository) Release(ctx context.Context, id uint, qty int, reference string) (*domain.InventoryRecord, error) {
	ctx, span := r.span(ctx, "repository.Release",
		attribute.Int("inventory.id", int(id)),
		attribute.Int("ledger.qty", qty),
	)
	record, err := r.next.Release(ctx, id, qty, reference)
	finish(span, err)
	return record, err
}

func (r *TracingRepository) Consume(ctx context.Context, id uint, qty int, reference string) (*domain.InventoryRecord, error) {
	ctx, span := r.span(ctx, "repository.Consume",
		attribute.Int("inventory.id", int(id)),
		attribute.Int("ledger.qty", qty),
	)
	record, err := r.next.Consume(ctx, id, qty, reference)
	finish(span, err)
	return record, err
}

func (r *TracingRepository) UpdateStatus(ctx context.Context, id uint, status domain.ItemStatus) error {
	ctx, span := r.span(ctx, "repository.UpdateStatus",
		attribute.Int("inventory.id", int(id)),
		attribute.String("inventory.status", string(status)),
	)
	err := r.next.UpdateStatus(ctx, id, status)
	finish(span, err)
	return err
}

func (r *TracingRepository) Entries(ctx context.Context, recordID uint, limit, offset int) ([]domain.LedgerEntry, error) {
	ctx, span := r.span(ctx, "repository.Entries", attribute.Int("inventory.id", int(recordID)))
	entries, err := r.next.Entries(ctx, recordID, limit, offset)
	finish(span, err)
	return entries, err
}
