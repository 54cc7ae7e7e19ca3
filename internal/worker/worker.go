package worker

import (
	"context"
	"errors"
	"log"
	"time"

	"payout-service/internal/broker"
	"payout-service/internal/models"
	"payout-service/internal/service"
)

// EventLedger records which event IDs the worker has already acted on,
// so redelivered messages do not trigger duplicate recalculation runs.
type EventLedger interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// RecalcWorker consumes data-change events and drives payout
// recalculation for the affected month
type RecalcWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	orchestrator *service.PayoutOrchestrator
	ledger       EventLedger
}

// NewRecalcWorker creates a new recalculation worker
func NewRecalcWorker(
	consumer *broker.Consumer,
	orchestrator *service.PayoutOrchestrator,
	ledger EventLedger,
) *RecalcWorker {
	w := &RecalcWorker{
		consumer:     consumer,
		orchestrator: orchestrator,
		ledger:       ledger,
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnAnalyticsImported(w.handleAnalyticsImported)
	eventHandler.OnSVODPoolSaved(w.handleSVODPoolSaved)
	eventHandler.OnCreatorsChanged(w.handleCreatorsChanged)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *RecalcWorker) Start(ctx context.Context) error {
	log.Println("Starting recalculation worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *RecalcWorker) Stop() error {
	log.Println("Stopping recalculation worker...")
	return w.consumer.Close()
}

func (w *RecalcWorker) handleAnalyticsImported(ctx context.Context, event *models.AnalyticsImportedEvent) error {
	return w.recalculate(ctx, event.BaseEvent, event.ReportMonth)
}

func (w *RecalcWorker) handleSVODPoolSaved(ctx context.Context, event *models.SVODPoolSavedEvent) error {
	return w.recalculate(ctx, event.BaseEvent, event.ReportMonth)
}

// handleCreatorsChanged recalculates the current month: a share change
// only affects months not yet settled, and the roster event carries no
// month of its own.
func (w *RecalcWorker) handleCreatorsChanged(ctx context.Context, event *models.CreatorsChangedEvent) error {
	month := time.Now().Format("2006-01")
	return w.recalculate(ctx, event.BaseEvent, month)
}

func (w *RecalcWorker) recalculate(ctx context.Context, base models.BaseEvent, month string) error {
	processed, err := w.ledger.IsEventProcessed(ctx, base.EventID)
	if err != nil {
		return err
	}
	if processed {
		log.Printf("Event %s already processed, skipping", base.EventID)
		return nil
	}

	count, err := w.orchestrator.Recalculate(ctx, month)
	if err != nil {
		// a missing pool entry is expected before the admin enters one;
		// the run retriggers once the pool arrives
		if errors.Is(err, service.ErrPoolMissing) {
			log.Printf("No pool entry for %s yet, payouts deferred", month)
			return w.ledger.MarkEventProcessed(ctx, base.EventID, base.EventType)
		}
		return err
	}

	log.Printf("Recalculated %d payouts for %s (trigger: %s)", count, month, base.EventType)
	return w.ledger.MarkEventProcessed(ctx, base.EventID, base.EventType)
}
