package models

import "time"

// Creator represents a creator (or admin) account on the platform
type Creator struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	RevenueShare float64   `db:"revenue_share" json:"revenue_share"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Creator roles
const (
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// MonthlyMetric is the aggregated analytics for one creator in one
// reporting month. One row per (creator_id, report_month), upserted on
// re-import.
type MonthlyMetric struct {
	ID            int64     `db:"id" json:"id"`
	CreatorID     string    `db:"creator_id" json:"creator_id"`
	ReportMonth   string    `db:"report_month" json:"report_month"`
	TotalStreams  int64     `db:"total_streams" json:"total_streams"`
	UniqueViewers int64     `db:"unique_viewers" json:"unique_viewers"`
	WatchHours    float64   `db:"watch_hours" json:"watch_hours"`
	AvgCompletion int       `db:"avg_completion" json:"avg_completion"`
	GrossRevenue  float64   `db:"gross_revenue" json:"gross_revenue"`
	PlatformFee   float64   `db:"platform_fee" json:"platform_fee"`
	CreatorPayout float64   `db:"creator_payout" json:"creator_payout"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// SVODPool is the platform-wide subscription revenue pool for one month.
// Exactly one row per report_month.
type SVODPool struct {
	ID                   int64     `db:"id" json:"id"`
	ReportMonth          string    `db:"report_month" json:"report_month"`
	TotalPool            float64   `db:"total_pool" json:"total_pool"`
	PlatformTotalStreams int64     `db:"platform_total_streams" json:"platform_total_streams"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// PPVTransaction is one pay-per-view sale line. Gross is taken as recorded
// upstream, not recomputed from units*price, so discounted sales carry
// through unchanged.
type PPVTransaction struct {
	ID          int64   `db:"id" json:"id"`
	CreatorID   string  `db:"creator_id" json:"creator_id"`
	TitleID     string  `db:"title_id" json:"title_id"`
	ReportMonth string  `db:"report_month" json:"report_month"`
	UnitsSold   int64   `db:"units_sold" json:"units_sold"`
	Price       float64 `db:"price" json:"price"`
	Gross       float64 `db:"gross" json:"gross"`
}

// Payout is the derived settlement row for one creator in one month.
// Written only by the recalculation orchestrator, always as a full
// overwrite of the (creator_id, report_month) row.
type Payout struct {
	ID          int64     `db:"id" json:"id"`
	CreatorID   string    `db:"creator_id" json:"creator_id"`
	ReportMonth string    `db:"report_month" json:"report_month"`
	GrossSVOD   float64   `db:"gross_svod" json:"gross_svod"`
	GrossPPV    float64   `db:"gross_ppv" json:"gross_ppv"`
	PlatformFee float64   `db:"platform_fee" json:"platform_fee"`
	NetPayout   float64   `db:"net_payout" json:"net_payout"`
	Status      string    `db:"status" json:"status"`
	Reference   string    `db:"reference" json:"reference"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Payout statuses. A row moves to "paid" through an operational action
// outside this service; every recomputation resets it to "pending".
const (
	PayoutStatusPending = "pending"
	PayoutStatusPaid    = "paid"
)

// Title is a content item as shown on creator statements. Title management
// lives in the CMS; rows are read-only here.
type Title struct {
	ID            string  `db:"id" json:"id"`
	CreatorID     string  `db:"creator_id" json:"creator_id"`
	Title         string  `db:"title" json:"title"`
	Status        string  `db:"status" json:"status"`
	Monetisation  string  `db:"monetisation" json:"monetisation"`
	TotalStreams  int64   `db:"total_streams" json:"total_streams"`
	UniqueViewers int64   `db:"unique_viewers" json:"unique_viewers"`
	WatchHours    float64 `db:"watch_hours" json:"watch_hours"`
	AvgCompletion int     `db:"avg_completion" json:"avg_completion"`
}

// ProcessedEvent for consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
