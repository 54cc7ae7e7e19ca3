package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"payout-service/internal/models"
	"payout-service/internal/redisclient"
	"payout-service/internal/revenue"
	"payout-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PayoutStore is the slice of the data layer the orchestrator reads and
// writes during a recalculation run
type PayoutStore interface {
	GetSVODPool(ctx context.Context, month string) (*models.SVODPool, error)
	GetCreators(ctx context.Context) ([]models.Creator, error)
	SumCreatorStreams(ctx context.Context, creatorID, month string) (int64, error)
	SumPPVGross(ctx context.Context, creatorID, month string) (float64, error)
	UpsertPayout(ctx context.Context, p *models.Payout) error
}

// SummaryCache caches month-level payout summaries for dashboard reads
type SummaryCache interface {
	SetPayoutSummary(ctx context.Context, summary *redisclient.PayoutSummary, ttl time.Duration) error
	InvalidatePayoutSummary(ctx context.Context, month string) error
}

// RecalcNotifier announces completed recalculation runs
type RecalcNotifier interface {
	PublishPayoutsRecalculated(ctx context.Context, event *models.PayoutsRecalculatedEvent) error
}

// PayoutOrchestrator recomputes and persists one payout row per creator
// for a reporting month. It is the sole writer of the payouts table.
type PayoutOrchestrator struct {
	store    PayoutStore
	cache    SummaryCache
	notifier RecalcNotifier
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewPayoutOrchestrator creates a new orchestrator. Cache and notifier may
// be nil; persistence is the only hard dependency.
func NewPayoutOrchestrator(store PayoutStore, cache SummaryCache, notifier RecalcNotifier, cacheTTL time.Duration) *PayoutOrchestrator {
	return &PayoutOrchestrator{
		store:    store,
		cache:    cache,
		notifier: notifier,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
	}
}

// Recalculate recomputes every creator's payout for the month from the
// latest metrics, pool entry and PPV rows. It requires a pool entry to
// exist and writes nothing without one. Per-creator writes are independent
// upserts: a failure stops the run naming the creator, rows already
// written stay, and a full re-run is always safe.
func (o *PayoutOrchestrator) Recalculate(ctx context.Context, month string) (int, error) {
	ctx, span := util.StartSpan(ctx, "PayoutOrchestrator.Recalculate")
	defer span.End()

	start := time.Now()
	defer func() {
		util.PayoutRunDuration.Observe(time.Since(start).Seconds())
	}()

	if !validMonth(month) {
		util.PayoutRunsTotal.WithLabelValues("invalid_month").Inc()
		return 0, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}

	pool, err := o.store.GetSVODPool(ctx, month)
	if err != nil {
		util.PayoutRunsTotal.WithLabelValues("pool_read_error").Inc()
		return 0, fmt.Errorf("failed to fetch svod pool for %s: %w", month, err)
	}
	if pool == nil {
		util.PayoutRunsTotal.WithLabelValues("pool_missing").Inc()
		return 0, fmt.Errorf("%w: %s", ErrPoolMissing, month)
	}

	if o.cache != nil {
		if err := o.cache.InvalidatePayoutSummary(ctx, month); err != nil {
			o.logger.Warn("Failed to invalidate payout summary cache",
				zap.String("month", month), zap.Error(err))
		}
	}

	creators, err := o.store.GetCreators(ctx)
	if err != nil {
		util.PayoutRunsTotal.WithLabelValues("creators_read_error").Inc()
		return 0, fmt.Errorf("failed to fetch creators for %s: %w", month, err)
	}

	summary := &redisclient.PayoutSummary{ReportMonth: month}
	for _, creator := range creators {
		payout, err := o.recomputeCreator(ctx, &creator, pool)
		if err != nil {
			util.PayoutRunsTotal.WithLabelValues("error").Inc()
			return summary.CreatorCount, err
		}

		util.PayoutsRecomputedTotal.Inc()
		summary.CreatorCount++
		summary.TotalNet += payout.NetPayout
		summary.TotalFees += payout.PlatformFee
	}

	util.PayoutRunsTotal.WithLabelValues("ok").Inc()
	o.logger.Info("Payouts recalculated",
		zap.String("month", month),
		zap.Int("creators", summary.CreatorCount),
		zap.Float64("total_net", summary.TotalNet))

	if o.cache != nil {
		summary.ComputedAt = time.Now().Unix()
		if err := o.cache.SetPayoutSummary(ctx, summary, o.cacheTTL); err != nil {
			o.logger.Warn("Failed to cache payout summary", zap.Error(err))
		}
	}

	if o.notifier != nil {
		event := &models.PayoutsRecalculatedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypePayoutsRecalculated,
				Timestamp: time.Now(),
			},
			ReportMonth:  month,
			CreatorCount: summary.CreatorCount,
		}
		if err := o.notifier.PublishPayoutsRecalculated(ctx, event); err != nil {
			o.logger.Error("Failed to publish PayoutsRecalculated event", zap.Error(err))
		}
	}

	return summary.CreatorCount, nil
}

// recomputeCreator derives and upserts one creator's payout row. Admins
// normally have no analytics rows and settle at zero, which is fine.
func (o *PayoutOrchestrator) recomputeCreator(ctx context.Context, creator *models.Creator, pool *models.SVODPool) (*models.Payout, error) {
	ctx, span := util.StartSpan(ctx, "PayoutOrchestrator.recomputeCreator")
	defer span.End()

	month := pool.ReportMonth

	creatorStreams, err := o.store.SumCreatorStreams(ctx, creator.ID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to sum streams for creator %s (%s) in %s: %w",
			creator.Name, creator.ID, month, err)
	}

	grossPPV, err := o.store.SumPPVGross(ctx, creator.ID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to sum ppv gross for creator %s (%s) in %s: %w",
			creator.Name, creator.ID, month, err)
	}

	ratio := revenue.Attribution(creatorStreams, pool.PlatformTotalStreams)
	if ratio > 1 {
		// Inconsistent upstream data: the creator's count exceeds the
		// platform total. Clamp rather than attribute over 100% of the pool.
		util.AttributionClampedTotal.Inc()
		o.logger.Warn("Creator streams exceed platform total, clamping attribution",
			zap.String("creator_id", creator.ID),
			zap.String("month", month),
			zap.Int64("creator_streams", creatorStreams),
			zap.Int64("platform_streams", pool.PlatformTotalStreams))
		ratio = 1
	}

	grossSVOD := revenue.GrossSVOD(pool.TotalPool, ratio)
	grossTotal := grossSVOD + grossPPV
	share := creator.RevenueShare

	payout := &models.Payout{
		CreatorID:   creator.ID,
		ReportMonth: month,
		GrossSVOD:   round2(grossSVOD),
		GrossPPV:    round2(grossPPV),
		PlatformFee: round2(revenue.PlatformFee(grossTotal, share)),
		NetPayout:   round2(revenue.CreatorPayout(grossTotal, share)),
		Status:      models.PayoutStatusPending,
		Reference:   PayoutReference(creator.ID, month),
	}

	if err := o.store.UpsertPayout(ctx, payout); err != nil {
		return nil, fmt.Errorf("failed to save payout for creator %s (%s) in %s: %w",
			creator.Name, creator.ID, month, err)
	}
	return payout, nil
}

// PayoutReference derives the deterministic reconciliation reference for a
// creator and month, e.g. TAV-3F1C2B7A-202412
func PayoutReference(creatorID, month string) string {
	id := creatorID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("TAV-%s-%s", strings.ToUpper(id), strings.ReplaceAll(month, "-", ""))
}

// round2 rounds to currency precision. Applied exactly once, when a value
// is persisted.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// validMonth reports whether s is a YYYY-MM key
func validMonth(s string) bool {
	_, err := time.Parse("2006-01", s)
	return err == nil
}
