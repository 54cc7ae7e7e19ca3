package store

import (
	"context"
	"database/sql"
	"fmt"

	"payout-service/internal/models"
)

// UpsertMonthlyMetric writes the monthly aggregate for one creator,
// overwriting any prior row for the same (creator_id, report_month).
// Re-importing a month never duplicates or accumulates.
func (s *Store) UpsertMonthlyMetric(ctx context.Context, m *models.MonthlyMetric) error {
	query := `
		INSERT INTO monthly_analytics
			(creator_id, report_month, total_streams, unique_viewers, watch_hours,
			 avg_completion, gross_revenue, platform_fee, creator_payout)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (creator_id, report_month) DO UPDATE SET
			total_streams  = EXCLUDED.total_streams,
			unique_viewers = EXCLUDED.unique_viewers,
			watch_hours    = EXCLUDED.watch_hours,
			avg_completion = EXCLUDED.avg_completion,
			gross_revenue  = EXCLUDED.gross_revenue,
			platform_fee   = EXCLUDED.platform_fee,
			creator_payout = EXCLUDED.creator_payout,
			updated_at     = NOW()
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, m, query,
		m.CreatorID, m.ReportMonth, m.TotalStreams, m.UniqueViewers, m.WatchHours,
		m.AvgCompletion, m.GrossRevenue, m.PlatformFee, m.CreatorPayout)
}

// SumCreatorStreams totals a creator's metric rows for the month. Multiple
// rows per month can exist from separate import batches, so this sums
// rather than assuming a single row.
func (s *Store) SumCreatorStreams(ctx context.Context, creatorID, month string) (int64, error) {
	var total int64
	err := s.db.GetContext(ctx, &total,
		"SELECT COALESCE(SUM(total_streams), 0) FROM monthly_analytics WHERE creator_id = $1 AND report_month = $2",
		creatorID, month)
	return total, err
}

// GetMonthlyMetrics retrieves a creator's metric history, oldest first
func (s *Store) GetMonthlyMetrics(ctx context.Context, creatorID string) ([]models.MonthlyMetric, error) {
	var metrics []models.MonthlyMetric
	err := s.db.SelectContext(ctx, &metrics,
		"SELECT * FROM monthly_analytics WHERE creator_id = $1 ORDER BY report_month", creatorID)
	return metrics, err
}

// UpsertSVODPool writes the month's pool entry, one row per report_month
func (s *Store) UpsertSVODPool(ctx context.Context, pool *models.SVODPool) error {
	query := `
		INSERT INTO svod_revenue_pool (report_month, total_pool, platform_total_streams)
		VALUES ($1, $2, $3)
		ON CONFLICT (report_month) DO UPDATE SET
			total_pool             = EXCLUDED.total_pool,
			platform_total_streams = EXCLUDED.platform_total_streams,
			updated_at             = NOW()
		RETURNING id, updated_at`

	return s.db.GetContext(ctx, pool, query,
		pool.ReportMonth, pool.TotalPool, pool.PlatformTotalStreams)
}

// GetSVODPool retrieves the pool entry for a month, nil when absent
func (s *Store) GetSVODPool(ctx context.Context, month string) (*models.SVODPool, error) {
	var pool models.SVODPool
	err := s.db.GetContext(ctx, &pool,
		"SELECT * FROM svod_revenue_pool WHERE report_month = $1", month)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

// SumPPVGross totals a creator's pay-per-view gross for the month
func (s *Store) SumPPVGross(ctx context.Context, creatorID, month string) (float64, error) {
	var total float64
	err := s.db.GetContext(ctx, &total,
		"SELECT COALESCE(SUM(gross), 0) FROM ppv_transactions WHERE creator_id = $1 AND report_month = $2",
		creatorID, month)
	return total, err
}

// GetPPVTransactions retrieves a creator's PPV lines for the month
func (s *Store) GetPPVTransactions(ctx context.Context, creatorID, month string) ([]models.PPVTransaction, error) {
	var txs []models.PPVTransaction
	err := s.db.SelectContext(ctx, &txs,
		"SELECT * FROM ppv_transactions WHERE creator_id = $1 AND report_month = $2 ORDER BY id",
		creatorID, month)
	return txs, err
}

// UpsertPayout overwrites the payout row for (creator_id, report_month).
// Status is written as given; the orchestrator always passes "pending".
func (s *Store) UpsertPayout(ctx context.Context, p *models.Payout) error {
	query := `
		INSERT INTO payouts
			(creator_id, report_month, gross_svod, gross_ppv, platform_fee,
			 net_payout, status, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (creator_id, report_month) DO UPDATE SET
			gross_svod   = EXCLUDED.gross_svod,
			gross_ppv    = EXCLUDED.gross_ppv,
			platform_fee = EXCLUDED.platform_fee,
			net_payout   = EXCLUDED.net_payout,
			status       = EXCLUDED.status,
			reference    = EXCLUDED.reference,
			updated_at   = NOW()
		RETURNING id, updated_at`

	return s.db.GetContext(ctx, p, query,
		p.CreatorID, p.ReportMonth, p.GrossSVOD, p.GrossPPV, p.PlatformFee,
		p.NetPayout, p.Status, p.Reference)
}

// GetPayouts retrieves every payout row for a month
func (s *Store) GetPayouts(ctx context.Context, month string) ([]models.Payout, error) {
	var payouts []models.Payout
	err := s.db.SelectContext(ctx, &payouts,
		"SELECT * FROM payouts WHERE report_month = $1 ORDER BY creator_id", month)
	return payouts, err
}

// GetPayout retrieves one creator's payout row for a month
func (s *Store) GetPayout(ctx context.Context, creatorID, month string) (*models.Payout, error) {
	var payout models.Payout
	err := s.db.GetContext(ctx, &payout,
		"SELECT * FROM payouts WHERE creator_id = $1 AND report_month = $2", creatorID, month)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payout not found for creator %s in %s", creatorID, month)
	}
	if err != nil {
		return nil, err
	}
	return &payout, nil
}
