package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// RequestStatus is the lifecycle status of a beneficiary request. The status
// itself is owned by the beneficiary workflow; the allocation engine only
// reads Approved requests and later flips them to Fulfilled.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusFulfilled RequestStatus = "fulfilled"
	StatusRejected  RequestStatus = "rejected"
)

// Urgency of a beneficiary request.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// BeneficiaryType scales basket sizes and feeds the scarcity score.
type BeneficiaryType string

const (
	TypeIndividual  BeneficiaryType = "individual"
	TypeFamily      BeneficiaryType = "family"
	TypeCommunity   BeneficiaryType = "community"
	TypeInstitution BeneficiaryType = "institution"
)

// Purpose is the categorized intent of a request, derived once at intake by
// the beneficiary workflow. Legacy rows may carry an empty category; the
// recommender then falls back to keyword matching on the free-text purpose.
type Purpose string

const (
	PurposeFood      Purpose = "food"
	PurposeHygiene   Purpose = "hygiene"
	PurposeClothing  Purpose = "clothing"
	PurposeEducation Purpose = "education"
	PurposeMedical   Purpose = "medical"
	PurposeOther     Purpose = "other"
)

// BeneficiaryRequest is the engine's read model of a request raised by the
// beneficiary workflow.
type BeneficiaryRequest struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	BeneficiaryID   uint            `json:"beneficiary_id" gorm:"not null;index"`
	BeneficiaryType BeneficiaryType `json:"beneficiary_type" gorm:"type:varchar(20);default:'individual'"`
	Purpose         string          `json:"purpose"`
	PurposeCategory Purpose         `json:"purpose_category" gorm:"type:varchar(20);index"`
	Urgency         Urgency         `json:"urgency" gorm:"type:varchar(10);default:'medium'"`
	Status          RequestStatus   `json:"status" gorm:"type:varchar(15);default:'pending';index"`
	RequestDate     time.Time       `json:"request_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (BeneficiaryRequest) TableName() string {
	return "beneficiary_requests"
}

var ErrRequestNotFound = errors.New("beneficiary request not found")

// RequestRepository defines the contract for request data access.
type RequestRepository interface {
	Create(ctx context.Context, req *BeneficiaryRequest) error
	FindByID(ctx context.Context, id uint) (*BeneficiaryRequest, error)
	FindApproved(ctx context.Context, limit, offset int) ([]BeneficiaryRequest, error)
	UpdateStatus(ctx context.Context, id uint, status RequestStatus) error
}
