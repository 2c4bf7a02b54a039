package event

import (
	"context"
	"fmt"

	"github.com/wikiboard/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditLogHandler journals domain events to the structured log as JSON.
// It subscribes to every event type the serializer knows about, so a new
// event joins the audit trail by registration alone.
type AuditLogHandler struct {
	serializer *EventSerializer
	logger     *zap.Logger
}

// NewAuditLogHandler creates a new audit log handler
func NewAuditLogHandler(serializer *EventSerializer, logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		serializer: serializer,
		logger:     logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *AuditLogHandler) EventTypes() []string {
	return h.serializer.RegisteredTypes()
}

// Handle serializes the event and writes one audit log entry
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := h.serializer.Serialize(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event %s: %w", event.EventType(), err)
	}

	h.logger.Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.ByteString("payload", payload),
	)
	return nil
}

// Ensure AuditLogHandler implements EventHandler
var _ shared.EventHandler = (*AuditLogHandler)(nil)
