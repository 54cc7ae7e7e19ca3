package service

import (
	"context"
	"fmt"
	"time"

	"payout-service/internal/models"
	"payout-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PoolStore is the slice of the data layer pool entry needs
type PoolStore interface {
	UpsertSVODPool(ctx context.Context, pool *models.SVODPool) error
	GetSVODPool(ctx context.Context, month string) (*models.SVODPool, error)
}

// PoolNotifier announces saved pool entries
type PoolNotifier interface {
	PublishSVODPoolSaved(ctx context.Context, event *models.SVODPoolSavedEvent) error
}

// PoolService manages the platform-wide monthly SVOD revenue pool entry
type PoolService struct {
	store    PoolStore
	notifier PoolNotifier
	logger   *zap.Logger
}

// NewPoolService creates a new pool service
func NewPoolService(store PoolStore, notifier PoolNotifier) *PoolService {
	return &PoolService{
		store:    store,
		notifier: notifier,
		logger:   util.GetLogger(),
	}
}

// SavePool validates and upserts the month's pool entry. Only admins enter
// pool figures, and both values must be positive: a zero pool is entered
// by omission (no entry), never explicitly.
func (ps *PoolService) SavePool(ctx context.Context, session models.Session, month string, totalPool float64, platformStreams int64) (*models.SVODPool, error) {
	ctx, span := util.StartSpan(ctx, "PoolService.SavePool")
	defer span.End()

	if !session.IsAdmin() {
		return nil, ErrForbidden
	}
	if !validMonth(month) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	if totalPool <= 0 {
		return nil, ErrInvalidPool
	}
	if platformStreams <= 0 {
		return nil, ErrInvalidStreams
	}

	pool := &models.SVODPool{
		ReportMonth:          month,
		TotalPool:            round2(totalPool),
		PlatformTotalStreams: platformStreams,
	}
	if err := ps.store.UpsertSVODPool(ctx, pool); err != nil {
		return nil, fmt.Errorf("failed to save svod pool for %s: %w", month, err)
	}

	util.PoolSavesTotal.Inc()
	ps.logger.Info("SVOD pool saved",
		zap.String("month", month),
		zap.Float64("total_pool", pool.TotalPool),
		zap.Int64("platform_streams", platformStreams))

	if ps.notifier != nil {
		event := &models.SVODPoolSavedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeSVODPoolSaved,
				Timestamp: time.Now(),
			},
			ReportMonth:          month,
			TotalPool:            pool.TotalPool,
			PlatformTotalStreams: platformStreams,
		}
		if err := ps.notifier.PublishSVODPoolSaved(ctx, event); err != nil {
			ps.logger.Error("Failed to publish SVODPoolSaved event", zap.Error(err))
		}
	}

	return pool, nil
}

// GetPool returns the month's pool entry, nil when absent
func (ps *PoolService) GetPool(ctx context.Context, month string) (*models.SVODPool, error) {
	if !validMonth(month) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	return ps.store.GetSVODPool(ctx, month)
}
