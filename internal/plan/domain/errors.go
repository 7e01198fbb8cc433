package domain

import (
	"errors"
	"fmt"

	requestdomain "github.com/givebridge/distribution/internal/request/domain"
)

var ErrPlanNotFound = errors.New("distribution plan not found")

// RequestNotApprovedError reports a plan creation against a request that is
// not in Approved status. The caller must fix the upstream state first.
type RequestNotApprovedError struct {
	RequestID uint
	Status    requestdomain.RequestStatus
}

func (e *RequestNotApprovedError) Error() string {
	return fmt.Sprintf("request %d is not approved (status %s)", e.RequestID, e.Status)
}

// InvalidTransitionError reports a plan transition the state machine forbids.
type InvalidTransitionError struct {
	PlanID uint
	From   PlanStatus
	To     PlanStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("plan %d cannot move from %s to %s", e.PlanID, e.From, e.To)
}

// InsufficientInventoryError reports stock that disappeared between plan
// approval and execution. Surfaced with the numbers a human needs to adjust
// the plan; shortages are a business condition and are never retried.
type InsufficientInventoryError struct {
	PlanID    uint
	ItemName  string
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("plan %d: insufficient inventory for %q: requested %d, available %d",
		e.PlanID, e.ItemName, e.Requested, e.Available)
}
