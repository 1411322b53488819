package expense

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/couture-bookkeeping/internal/core/events"
)

type EventHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewEventHandler(service *Service, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger,
	}
}

// HandleProcurementApproved books the reviewer's additional costs. Approvals without
// additional costs produce no expense.
func (h *EventHandler) HandleProcurementApproved(ctx context.Context, event events.Event) error {
	approved, ok := event.(*events.ProcurementApprovedEvent)
	if !ok {
		h.logger.Error("invalid event type for procurement approved handler", "event_type", event.EventType())
		return fmt.Errorf("expected ProcurementApprovedEvent, got %T", event)
	}

	if approved.AdditionalCostsINR <= 0 {
		h.logger.Debug("approval carries no additional costs",
			"procurement_id", approved.ProcurementID,
			"event_id", approved.EventID())
		return nil
	}

	e, err := h.service.RecordProcurementCost(ctx, ProcurementCost{
		ProcurementID:      approved.ProcurementID,
		SareeName:          approved.SareeName,
		ReviewerID:         approved.ApprovedByUserID,
		AdditionalCostsINR: approved.AdditionalCostsINR,
		ExchangeRate:       approved.ExchangeRate,
	})
	if err != nil {
		h.logger.Error("failed to record procurement expense",
			"error", err,
			"procurement_id", approved.ProcurementID,
			"event_id", approved.EventID())
		return fmt.Errorf("expense creation failed for procurement %s: %w", approved.ProcurementID, err)
	}

	h.logger.Info("procurement approval booked as expense",
		"procurement_id", approved.ProcurementID,
		"expense_id", e.ID,
		"event_id", approved.EventID())

	return nil
}

// HandleProcurementAudit logs submissions and rejections.
func (h *EventHandler) HandleProcurementAudit(ctx context.Context, event events.Event) error {
	h.logger.InfoContext(ctx, "procurement event",
		"event_type", event.EventType(),
		"event_id", event.EventID(),
		"payload", event.Payload())
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeProcurementApproved, h.HandleProcurementApproved)
	eventBus.Subscribe(events.EventTypeProcurementSubmitted, h.HandleProcurementAudit)
	eventBus.Subscribe(events.EventTypeProcurementRejected, h.HandleProcurementAudit)

	h.logger.Info("expense event handlers registered",
		"handlers", []string{
			events.EventTypeProcurementApproved,
			events.EventTypeProcurementSubmitted,
			events.EventTypeProcurementRejected,
		})
}
