package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/givebridge/distribution/internal/request/domain"
)

// GormRequestRepository implements domain.RequestRepository with GORM
type GormRequestRepository struct {
	db *gorm.DB
}

func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	db.AutoMigrate(&domain.BeneficiaryRequest{})
	return &GormRequestRepository{db: db}
}

func (r *GormRequestRepository) Create(ctx context.Context, req *domain.BeneficiaryRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *GormRequestRepository) FindByID(ctx context.Context, id uint) (*domain.BeneficiaryRequest, error) {
	var req domain.BeneficiaryRequest
	err := r.db.WithContext(ctx).First(&req, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *GormRequestRepository) FindApproved(ctx context.Context, limit, offset int) ([]domain.BeneficiaryRequest, error) {
	var requests []domain.BeneficiaryRequest
	query := r.db.WithContext(ctx).
		Where("status = ?", domain.StatusApproved).
		Order("request_date ASC").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *GormRequestRepository) UpdateStatus(ctx context.Context, id uint, status domain.RequestStatus) error {
	result := r.db.WithContext(ctx).
		Model(&domain.BeneficiaryRequest{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}
