package kafka

import (
	"time"

	"github.com/shopspring/decimal"
)

// DonationItem is one line of a donation event.
type DonationItem struct {
	ItemName      string          `json:"item_name"`
	Category      string          `json:"category"`
	Quantity      int             `json:"quantity"`
	DeclaredValue decimal.Decimal `json:"declared_value"`
}

// DonationApprovedEvent is emitted by the donation workflow when a pledge is
// approved. The engine credits the items into the inbound pool.
type DonationApprovedEvent struct {
	EventID    string         `json:"event_id"`
	EventType  string         `json:"event_type"`
	DonationID uint           `json:"donation_id"`
	DonorID    uint           `json:"donor_id"`
	Location   string         `json:"location"`
	Items      []DonationItem `json:"items"`
	Timestamp  time.Time      `json:"timestamp"`
}

// DonationReceivedEvent is emitted when the donated goods physically arrive.
// The engine moves the matching inbound stock into the available pool.
type DonationReceivedEvent struct {
	EventID    string         `json:"event_id"`
	EventType  string         `json:"event_type"`
	DonationID uint           `json:"donation_id"`
	Location   string         `json:"location"`
	Items      []DonationItem `json:"items"`
	Timestamp  time.Time      `json:"timestamp"`
}

// DistributedItem is one executed line of a completed distribution.
type DistributedItem struct {
	InventoryRecordID uint            `json:"inventory_record_id"`
	ItemName          string          `json:"item_name"`
	Quantity          int             `json:"quantity"`
	Value             decimal.Decimal `json:"value"`
}

// DistributionCompletedEvent is emitted by the engine after a plan executes,
// for the beneficiary workflow and reporting consumers.
type DistributionCompletedEvent struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	PlanID        uint              `json:"plan_id"`
	PlanReference string            `json:"plan_reference"`
	RequestID     uint              `json:"request_id"`
	BeneficiaryID uint              `json:"beneficiary_id"`
	TotalValue    decimal.Decimal   `json:"total_value"`
	Items         []DistributedItem `json:"items"`
	ExecutedBy    string            `json:"executed_by"`
	Timestamp     time.Time         `json:"timestamp"`
}

// Event types
const (
	EventTypeDonationApproved      = "donation.approved"
	EventTypeDonationReceived      = "donation.received"
	EventTypeDistributionCompleted = "distribution.completed"
)

// Kafka topics
const (
	TopicDonationApproved      = "donation-approved"
	TopicDonationReceived      = "donation-received"
	TopicDistributionCompleted = "distribution-completed"
)
