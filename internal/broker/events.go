package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"payout-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishAnalyticsImported publishes AnalyticsImported event. Keyed by
// month so every trigger for one month lands on the same partition.
func (ep *EventPublisher) PublishAnalyticsImported(ctx context.Context, event *models.AnalyticsImportedEvent) error {
	return ep.producer.PublishEvent(ctx, monthKey(event.ReportMonth), event)
}

// PublishSVODPoolSaved publishes SVODPoolSaved event
func (ep *EventPublisher) PublishSVODPoolSaved(ctx context.Context, event *models.SVODPoolSavedEvent) error {
	return ep.producer.PublishEvent(ctx, monthKey(event.ReportMonth), event)
}

// PublishCreatorsChanged publishes CreatorsChanged event
func (ep *EventPublisher) PublishCreatorsChanged(ctx context.Context, event *models.CreatorsChangedEvent) error {
	return ep.producer.PublishEvent(ctx, fmt.Sprintf("creator-%s", event.CreatorID), event)
}

// PublishPayoutsRecalculated publishes PayoutsRecalculated event
func (ep *EventPublisher) PublishPayoutsRecalculated(ctx context.Context, event *models.PayoutsRecalculatedEvent) error {
	return ep.producer.PublishEvent(ctx, monthKey(event.ReportMonth), event)
}

func monthKey(month string) string {
	return fmt.Sprintf("month-%s", month)
}

// EventHandler routes incoming events to registered handlers
type EventHandler struct {
	onAnalyticsImported func(context.Context, *models.AnalyticsImportedEvent) error
	onSVODPoolSaved     func(context.Context, *models.SVODPoolSavedEvent) error
	onCreatorsChanged   func(context.Context, *models.CreatorsChangedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnAnalyticsImported registers a handler for AnalyticsImported events
func (eh *EventHandler) OnAnalyticsImported(handler func(context.Context, *models.AnalyticsImportedEvent) error) {
	eh.onAnalyticsImported = handler
}

// OnSVODPoolSaved registers a handler for SVODPoolSaved events
func (eh *EventHandler) OnSVODPoolSaved(handler func(context.Context, *models.SVODPoolSavedEvent) error) {
	eh.onSVODPoolSaved = handler
}

// OnCreatorsChanged registers a handler for CreatorsChanged events
func (eh *EventHandler) OnCreatorsChanged(handler func(context.Context, *models.CreatorsChangedEvent) error) {
	eh.onCreatorsChanged = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeAnalyticsImported:
		if eh.onAnalyticsImported != nil {
			var event models.AnalyticsImportedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal AnalyticsImported event: %w", err)
			}
			return eh.onAnalyticsImported(ctx, &event)
		}

	case models.EventTypeSVODPoolSaved:
		if eh.onSVODPoolSaved != nil {
			var event models.SVODPoolSavedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal SVODPoolSaved event: %w", err)
			}
			return eh.onSVODPoolSaved(ctx, &event)
		}

	case models.EventTypeCreatorsChanged:
		if eh.onCreatorsChanged != nil {
			var event models.CreatorsChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal CreatorsChanged event: %w", err)
			}
			return eh.onCreatorsChanged(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
