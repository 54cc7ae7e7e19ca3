package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"payout-service/internal/ingest"
	"payout-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMetricStore implements MetricStore with upsert-on-natural-key
// semantics
type fakeMetricStore struct {
	creators map[string]*models.Creator
	metrics  map[string]*models.MonthlyMetric
	upserts  int
	failNext bool
}

func newFakeMetricStore() *fakeMetricStore {
	return &fakeMetricStore{
		creators: map[string]*models.Creator{
			aliceID: {ID: aliceID, Name: "Alice Wanjiku", RevenueShare: 0.65, Role: models.RoleCreator},
		},
		metrics: make(map[string]*models.MonthlyMetric),
	}
}

func (f *fakeMetricStore) GetCreatorByID(_ context.Context, id string) (*models.Creator, error) {
	c, ok := f.creators[id]
	if !ok {
		return nil, assert.AnError
	}
	return c, nil
}

func (f *fakeMetricStore) UpsertMonthlyMetric(_ context.Context, m *models.MonthlyMetric) error {
	if f.failNext {
		f.failNext = false
		return assert.AnError
	}
	f.upserts++
	cp := *m
	f.metrics[key(m.CreatorID, m.ReportMonth)] = &cp
	return nil
}

type fakeKeyCache struct {
	seen map[string]bool
}

func (f *fakeKeyCache) SetImportKey(_ context.Context, key string, _ time.Duration) (bool, error) {
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func (f *fakeKeyCache) DeleteImportKey(_ context.Context, key string) error {
	delete(f.seen, key)
	return nil
}

const viewsCSV = `Id,Content Name,Views
vid-1,Lagos After Dark,3000
vid-2,Night Market,1200`

const durationCSV = `Id,Content Name,Watch Duration
vid-1,Lagos After Dark,210.25
vid-3,Harvest Moon,44.4`

func TestCommitCSVImport(t *testing.T) {
	f := newFakeMetricStore()
	is := NewIngestService(f, nil, nil)

	res, err := is.CommitCSVImport(context.Background(), aliceID, month, "",
		strings.NewReader(viewsCSV), strings.NewReader(durationCSV))
	require.NoError(t, err)

	// union of both exports, two identifiers missing from one side
	assert.Len(t, res.Rows, 3)
	assert.Equal(t, 2, res.WarningCount)

	m := f.metrics[key(aliceID, month)]
	require.NotNil(t, m)
	assert.Equal(t, int64(4200), m.TotalStreams)
	assert.Equal(t, int64(4200), m.UniqueViewers)
	assert.Equal(t, 254.65, m.WatchHours)
	assert.Equal(t, 0, m.AvgCompletion)
}

func TestCommitTwiceOverwrites(t *testing.T) {
	f := newFakeMetricStore()
	is := NewIngestService(f, nil, nil)
	ctx := context.Background()

	rows := []ingest.MergedRow{{ContentTitle: "A", TotalStreams: 100, UniqueViewers: 100}}
	_, err := is.CommitRows(ctx, aliceID, month, "", SourceManual, rows)
	require.NoError(t, err)

	rows2 := []ingest.MergedRow{{ContentTitle: "A", TotalStreams: 250, UniqueViewers: 250}}
	_, err = is.CommitRows(ctx, aliceID, month, "", SourceManual, rows2)
	require.NoError(t, err)

	// one row per (creator, month): second import's values, not a sum
	assert.Len(t, f.metrics, 1)
	assert.Equal(t, int64(250), f.metrics[key(aliceID, month)].TotalStreams)
}

func TestCommitValidation(t *testing.T) {
	is := NewIngestService(newFakeMetricStore(), nil, nil)
	ctx := context.Background()
	rows := []ingest.MergedRow{{ContentTitle: "A", TotalStreams: 1}}

	_, err := is.CommitRows(ctx, "", month, "", SourceManual, rows)
	assert.ErrorIs(t, err, ErrCreatorRequired)

	_, err = is.CommitRows(ctx, aliceID, "12/2024", "", SourceManual, rows)
	assert.ErrorIs(t, err, ErrInvalidMonth)

	_, err = is.CommitRows(ctx, aliceID, month, "", SourceManual, nil)
	assert.ErrorIs(t, err, ErrNoRowsToImport)
}

func TestCommitUnknownCreator(t *testing.T) {
	is := NewIngestService(newFakeMetricStore(), nil, nil)
	rows := []ingest.MergedRow{{ContentTitle: "A", TotalStreams: 1}}

	_, err := is.CommitRows(context.Background(), "no-such-id", month, "", SourceManual, rows)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), month)
}

func TestCommitDuplicateImportKey(t *testing.T) {
	f := newFakeMetricStore()
	is := NewIngestService(f, &fakeKeyCache{}, nil)
	ctx := context.Background()
	rows := []ingest.MergedRow{{ContentTitle: "A", TotalStreams: 1}}

	_, err := is.CommitRows(ctx, aliceID, month, "batch-7", SourceManual, rows)
	require.NoError(t, err)

	_, err = is.CommitRows(ctx, aliceID, month, "batch-7", SourceManual, rows)
	assert.ErrorIs(t, err, ErrDuplicateImport)
	assert.Equal(t, 1, f.upserts)
}

func TestCommitRetryAfterFailureReusesKey(t *testing.T) {
	f := newFakeMetricStore()
	f.failNext = true
	is := NewIngestService(f, &fakeKeyCache{}, nil)
	ctx := context.Background()
	rows := []ingest.MergedRow{{ContentTitle: "A", TotalStreams: 1}}

	// first commit claims the key, then fails at persistence
	_, err := is.CommitRows(ctx, aliceID, month, "batch-9", SourceManual, rows)
	require.Error(t, err)
	assert.Empty(t, f.metrics)

	// nothing was written, so the retry with the same key must go through
	_, err = is.CommitRows(ctx, aliceID, month, "batch-9", SourceManual, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, f.upserts)
}

func TestCommitManualRowsCarryCompletion(t *testing.T) {
	f := newFakeMetricStore()
	is := NewIngestService(f, nil, nil)

	rows := []ingest.MergedRow{
		{ContentTitle: "A", TotalStreams: 10, AvgCompletion: 72},
		{ContentTitle: "B", TotalStreams: 20, AvgCompletion: 81},
	}
	_, err := is.CommitRows(context.Background(), aliceID, month, "", SourceManual, rows)
	require.NoError(t, err)

	assert.Equal(t, 77, f.metrics[key(aliceID, month)].AvgCompletion)
}

func TestCommitRoundsWatchHours(t *testing.T) {
	f := newFakeMetricStore()
	is := NewIngestService(f, nil, nil)

	rows := []ingest.MergedRow{
		{ContentTitle: "A", TotalStreams: 1, WatchHours: 1.005},
		{ContentTitle: "B", TotalStreams: 1, WatchHours: 2.0012},
	}
	_, err := is.CommitRows(context.Background(), aliceID, month, "", SourceManual, rows)
	require.NoError(t, err)

	assert.Equal(t, 3.01, f.metrics[key(aliceID, month)].WatchHours)
}
