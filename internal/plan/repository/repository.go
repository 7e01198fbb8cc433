package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	inventorydomain "github.com/givebridge/distribution/internal/inventory/domain"
	"github.com/givebridge/distribution/internal/plan/domain"
	requestdomain "github.com/givebridge/distribution/internal/request/domain"
)

// GormPlanStore implements domain.Store with GORM. Every Tx passed to InTx
// wraps one database transaction; ForUpdate reads use SELECT ... FOR UPDATE
// so concurrent transitions on the same plan or inventory row serialize.
type GormPlanStore struct {
	db *gorm.DB
}

func NewGormPlanStore(db *gorm.DB) *GormPlanStore {
	db.AutoMigrate(&domain.DistributionPlan{}, &domain.PlanItem{}, &domain.DistributionLog{})
	return &GormPlanStore{db: db}
}

func (s *GormPlanStore) InTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

func (s *GormPlanStore) FindByID(ctx context.Context, id uint) (*domain.DistributionPlan, error) {
	var plan domain.DistributionPlan
	err := s.db.WithContext(ctx).Preload("Items").First(&plan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (s *GormPlanStore) FindByRequestID(ctx context.Context, requestID uint) (*domain.DistributionPlan, error) {
	var plan domain.DistributionPlan
	err := s.db.WithContext(ctx).Preload("Items").
		Where("request_id = ?", requestID).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (s *GormPlanStore) List(ctx context.Context, filter domain.ListFilter) ([]domain.DistributionPlan, error) {
	query := s.db.WithContext(ctx).Preload("Items").Order("created_at DESC")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedBy != "" {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}
	if filter.From != nil {
		query = query.Where("planned_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("planned_date <= ?", *filter.To)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var plans []domain.DistributionPlan
	if err := query.Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (s *GormPlanStore) Logs(ctx context.Context, filter domain.LogFilter) ([]domain.DistributionLog, error) {
	query := s.db.WithContext(ctx).Order("distribution_date DESC")
	if filter.PlanID != 0 {
		query = query.Where("plan_id = ?", filter.PlanID)
	}
	if filter.BeneficiaryID != 0 {
		query = query.Where("beneficiary_id = ?", filter.BeneficiaryID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var logs []domain.DistributionLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) PlanForUpdate(id uint) (*domain.DistributionPlan, error) {
	var plan domain.DistributionPlan
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&plan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	if err := t.db.Where("plan_id = ?", plan.ID).Find(&plan.Items).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (t *gormTx) PlanByRequestForUpdate(requestID uint) (*domain.DistributionPlan, error) {
	var plan domain.DistributionPlan
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("request_id = ?", requestID).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	if err := t.db.Where("plan_id = ?", plan.ID).Find(&plan.Items).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (t *gormTx) SavePlan(plan *domain.DistributionPlan) error {
	// Items are written through ReplaceItems; saving associations here would
	// double-write them.
	return t.db.Omit("Items").Save(plan).Error
}

func (t *gormTx) ReplaceItems(planID uint, items []domain.PlanItem) error {
	if err := t.db.Where("plan_id = ?", planID).Delete(&domain.PlanItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ID = 0
		items[i].PlanID = planID
	}
	if len(items) == 0 {
		return nil
	}
	return t.db.Create(&items).Error
}

func (t *gormTx) RecordForUpdate(recordID uint) (*inventorydomain.InventoryRecord, error) {
	var record inventorydomain.InventoryRecord
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, recordID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventorydomain.ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (t *gormTx) SaveRecord(record *inventorydomain.InventoryRecord, entry *inventorydomain.LedgerEntry) error {
	if err := t.db.Save(record).Error; err != nil {
		return err
	}
	return t.db.Create(entry).Error
}

func (t *gormTx) AppendLog(log *domain.DistributionLog) error {
	return t.db.Create(log).Error
}

func (t *gormTx) RequestForUpdate(id uint) (*requestdomain.BeneficiaryRequest, error) {
	var req requestdomain.BeneficiaryRequest
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, requestdomain.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (t *gormTx) SaveRequest(req *requestdomain.BeneficiaryRequest) error {
	return t.db.Save(req).Error
}
