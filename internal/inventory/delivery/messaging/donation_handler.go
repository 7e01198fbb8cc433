// Package messaging wires donation workflow events into ledger mutations.
package messaging

import (
	"context"
	"fmt"

	"github.com/givebridge/distribution/internal/inventory/domain"
	"github.com/givebridge/distribution/internal/inventory/usecase/command"
	"github.com/givebridge/distribution/kafka"
	"github.com/givebridge/distribution/pkg/logger"
)

// DonationEventHandler consumes donation lifecycle events and applies them to
// the inventory ledger.
type DonationEventHandler struct {
	repo    domain.InventoryRepository
	credit  *command.CreditStockHandler
	receive *command.ReceiveStockHandler
}

func NewDonationEventHandler(repo domain.InventoryRepository, credit *command.CreditStockHandler, receive *command.ReceiveStockHandler) *DonationEventHandler {
	return &DonationEventHandler{repo: repo, credit: credit, receive: receive}
}

// Register attaches the handler to a consumer.
func (h *DonationEventHandler) Register(consumer *kafka.Consumer) {
	consumer.OnDonationApproved(h.HandleDonationApproved)
	consumer.OnDonationReceived(h.HandleDonationReceived)
}

// HandleDonationApproved credits each approved item into the inbound pool.
// The stock becomes allocatable only after the matching received event.
func (h *DonationEventHandler) HandleDonationApproved(ctx context.Context, event kafka.DonationApprovedEvent) error {
	reference := fmt.Sprintf("donation-%d", event.DonationID)
	for _, item := range event.Items {
		_, err := h.credit.Handle(ctx, command.CreditStockCommand{
			ItemName:  item.ItemName,
			Category:  item.Category,
			Location:  event.Location,
			Quantity:  item.Quantity,
			Value:     item.DeclaredValue,
			Received:  false,
			Reference: reference,
		})
		if err != nil {
			return fmt.Errorf("credit %q: %w", item.ItemName, err)
		}

		logger.Logger.Info().
			Str("item_name", item.ItemName).
			Int("quantity", item.Quantity).
			Str("reference", reference).
			Msg("Donation credited to inbound pool")
	}
	return nil
}

// HandleDonationReceived moves the matching inbound stock into the available
// pool.
func (h *DonationEventHandler) HandleDonationReceived(ctx context.Context, event kafka.DonationReceivedEvent) error {
	reference := fmt.Sprintf("donation-%d", event.DonationID)
	location := event.Location
	if location == "" {
		location = "main"
	}

	for _, item := range event.Items {
		record, err := h.repo.FindByItem(ctx, item.ItemName, location)
		if err != nil {
			return fmt.Errorf("lookup %q at %q: %w", item.ItemName, location, err)
		}

		_, err = h.receive.Handle(ctx, command.ReceiveStockCommand{
			RecordID:  record.ID,
			Quantity:  item.Quantity,
			Reference: reference,
		})
		if err != nil {
			return fmt.Errorf("receive %q: %w", item.ItemName, err)
		}

		logger.Logger.Info().
			Str("item_name", item.ItemName).
			Int("quantity", item.Quantity).
			Str("reference", reference).
			Msg("Donation received into available pool")
	}
	return nil
}
