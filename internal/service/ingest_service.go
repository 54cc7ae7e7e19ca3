package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"payout-service/internal/ingest"
	"payout-service/internal/models"
	"payout-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Import sources, used for metrics and event payloads
const (
	SourceCSV    = "csv"
	SourceSingle = "single_file"
	SourceManual = "manual"
)

// MetricStore is the slice of the data layer the ingestion commit needs
type MetricStore interface {
	GetCreatorByID(ctx context.Context, id string) (*models.Creator, error)
	UpsertMonthlyMetric(ctx context.Context, m *models.MonthlyMetric) error
}

// ImportKeyCache guards against duplicate commits carrying the same
// client-supplied idempotency key
type ImportKeyCache interface {
	SetImportKey(ctx context.Context, key string, ttl time.Duration) (bool, error)
	DeleteImportKey(ctx context.Context, key string) error
}

// ImportNotifier announces committed imports so payouts get recomputed
type ImportNotifier interface {
	PublishAnalyticsImported(ctx context.Context, event *models.AnalyticsImportedEvent) error
}

// ImportResult is returned to the operator after a commit: the merged
// rows as previewed, the reconciliation warning count, and the stored
// aggregate.
type ImportResult struct {
	Rows         []ingest.MergedRow `json:"rows"`
	WarningCount int                `json:"warning_count"`
	Aggregate    ingest.Aggregate   `json:"aggregate"`
}

// IngestService turns normalized rows into the persisted monthly
// aggregate and fires the recomputation trigger
type IngestService struct {
	store    MetricStore
	keys     ImportKeyCache
	notifier ImportNotifier
	logger   *zap.Logger
}

// NewIngestService creates a new ingest service. Key cache and notifier
// may be nil.
func NewIngestService(store MetricStore, keys ImportKeyCache, notifier ImportNotifier) *IngestService {
	return &IngestService{
		store:    store,
		keys:     keys,
		notifier: notifier,
		logger:   util.GetLogger(),
	}
}

// CommitCSVImport parses and reconciles the two engagement exports, then
// commits the merged rows for (creatorID, month)
func (is *IngestService) CommitCSVImport(ctx context.Context, creatorID, month, importKey string, viewsCSV, durationCSV io.Reader) (*ImportResult, error) {
	ctx, span := util.StartSpan(ctx, "IngestService.CommitCSVImport")
	defer span.End()

	views, err := ingest.ParseViewsCSV(viewsCSV)
	if err != nil {
		util.ImportsFailedTotal.WithLabelValues("views_parse_error").Inc()
		return nil, fmt.Errorf("views export for %s: %w", month, err)
	}
	durations, err := ingest.ParseDurationCSV(durationCSV)
	if err != nil {
		util.ImportsFailedTotal.WithLabelValues("duration_parse_error").Inc()
		return nil, fmt.Errorf("duration export for %s: %w", month, err)
	}

	rows := ingest.Merge(views, durations)
	return is.CommitRows(ctx, creatorID, month, importKey, SourceCSV, rows)
}

// CommitSingleFileImport parses a combined export with aliased headers and
// commits it
func (is *IngestService) CommitSingleFileImport(ctx context.Context, creatorID, month, importKey string, csvFile io.Reader) (*ImportResult, error) {
	ctx, span := util.StartSpan(ctx, "IngestService.CommitSingleFileImport")
	defer span.End()

	rows, err := ingest.ParseFlexibleCSV(csvFile)
	if err != nil {
		util.ImportsFailedTotal.WithLabelValues("single_parse_error").Inc()
		return nil, fmt.Errorf("single-file export for %s: %w", month, err)
	}
	return is.CommitRows(ctx, creatorID, month, importKey, SourceSingle, rows)
}

// CommitRows folds canonical rows into the monthly aggregate and upserts
// it. Committing the same (creator, month) twice overwrites the prior
// aggregate. Reconciliation warnings ride along in the result; they never
// block the commit.
func (is *IngestService) CommitRows(ctx context.Context, creatorID, month, importKey, source string, rows []ingest.MergedRow) (*ImportResult, error) {
	ctx, span := util.StartSpan(ctx, "IngestService.CommitRows")
	defer span.End()

	if creatorID == "" {
		return nil, ErrCreatorRequired
	}
	if !validMonth(month) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	if len(rows) == 0 {
		return nil, ErrNoRowsToImport
	}

	creator, err := is.store.GetCreatorByID(ctx, creatorID)
	if err != nil {
		util.ImportsFailedTotal.WithLabelValues("creator_lookup").Inc()
		return nil, fmt.Errorf("import for %s: %w", month, err)
	}

	keyClaimed := false
	if importKey != "" && is.keys != nil {
		fresh, err := is.keys.SetImportKey(ctx, importKey, 24*time.Hour)
		if err != nil {
			// The upsert itself is idempotent; a cache outage only risks a
			// duplicate trigger event, so log and continue.
			is.logger.Warn("Import key check failed", zap.String("key", importKey), zap.Error(err))
		} else if !fresh {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateImport, importKey)
		} else {
			keyClaimed = true
		}
	}

	agg := ingest.Fold(rows)
	warnings := ingest.WarningCount(rows)

	metric := &models.MonthlyMetric{
		CreatorID:     creator.ID,
		ReportMonth:   month,
		TotalStreams:  agg.TotalStreams,
		UniqueViewers: agg.UniqueViewers,
		WatchHours:    round2(agg.WatchHours),
		AvgCompletion: agg.AvgCompletion,
	}
	if err := is.store.UpsertMonthlyMetric(ctx, metric); err != nil {
		util.ImportsFailedTotal.WithLabelValues("db_error").Inc()
		// release the idempotency key: nothing was written, so a retry
		// with the same key must go through
		if keyClaimed {
			if delErr := is.keys.DeleteImportKey(ctx, importKey); delErr != nil {
				is.logger.Warn("Failed to release import key after failed commit",
					zap.String("key", importKey), zap.Error(delErr))
			}
		}
		return nil, fmt.Errorf("failed to save analytics for creator %s (%s) in %s: %w",
			creator.Name, creator.ID, month, err)
	}

	util.ImportsCommittedTotal.WithLabelValues(source).Inc()
	util.ImportRowsMergedTotal.Add(float64(len(rows)))
	util.ReconciliationWarningsTotal.Add(float64(warnings))

	is.logger.Info("Analytics imported",
		zap.String("creator_id", creator.ID),
		zap.String("month", month),
		zap.String("source", source),
		zap.Int("rows", len(rows)),
		zap.Int("warnings", warnings))

	if is.notifier != nil {
		event := &models.AnalyticsImportedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeAnalyticsImported,
				Timestamp: time.Now(),
			},
			CreatorID:    creator.ID,
			ReportMonth:  month,
			TotalStreams: agg.TotalStreams,
			RowCount:     len(rows),
			WarningCount: warnings,
		}
		if err := is.notifier.PublishAnalyticsImported(ctx, event); err != nil {
			is.logger.Error("Failed to publish AnalyticsImported event", zap.Error(err))
		}
	}

	return &ImportResult{Rows: rows, WarningCount: warnings, Aggregate: agg}, nil
}
