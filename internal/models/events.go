package models

import "time"

// Event types
const (
	EventTypeAnalyticsImported   = "ANALYTICS_IMPORTED"
	EventTypeSVODPoolSaved       = "SVOD_POOL_SAVED"
	EventTypeCreatorsChanged     = "CREATORS_CHANGED"
	EventTypePayoutsRecalculated = "PAYOUTS_RECALCULATED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// AnalyticsImportedEvent published after a monthly analytics aggregate is
// committed (CSV merge or manual entry)
type AnalyticsImportedEvent struct {
	BaseEvent
	CreatorID    string `json:"creator_id"`
	ReportMonth  string `json:"report_month"`
	TotalStreams int64  `json:"total_streams"`
	RowCount     int    `json:"row_count"`
	WarningCount int    `json:"warning_count"`
}

// SVODPoolSavedEvent published after an admin saves the month's pool entry
type SVODPoolSavedEvent struct {
	BaseEvent
	ReportMonth          string  `json:"report_month"`
	TotalPool            float64 `json:"total_pool"`
	PlatformTotalStreams int64   `json:"platform_total_streams"`
}

// CreatorsChangedEvent published when the creator roster or a revenue
// share changes. Carries no month; the consumer recomputes the current one.
type CreatorsChangedEvent struct {
	BaseEvent
	CreatorID string `json:"creator_id"`
	Change    string `json:"change"`
}

// PayoutsRecalculatedEvent published after a full recomputation run
type PayoutsRecalculatedEvent struct {
	BaseEvent
	ReportMonth  string `json:"report_month"`
	CreatorCount int    `json:"creator_count"`
}
