package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeUnionAndFlags(t *testing.T) {
	views := map[string]ViewsEntry{
		"A": {ID: "A", Name: "Title A", Views: 100},
	}
	durations := map[string]DurationEntry{
		"B": {ID: "B", Name: "Title B", Hours: 5.0},
	}

	rows := Merge(views, durations)
	require.Len(t, rows, 2)

	// sorted by title: Title A before Title B
	a, b := rows[0], rows[1]
	assert.Equal(t, "A", a.ContentID)
	assert.Equal(t, int64(100), a.TotalStreams)
	assert.Equal(t, int64(100), a.UniqueViewers)
	assert.Equal(t, 0.0, a.WatchHours)
	assert.Equal(t, MissingFromDuration, a.MissingFrom)

	assert.Equal(t, "B", b.ContentID)
	assert.Equal(t, int64(0), b.TotalStreams)
	assert.Equal(t, int64(0), b.UniqueViewers)
	assert.Equal(t, 5.0, b.WatchHours)
	assert.Equal(t, MissingFromViews, b.MissingFrom)

	assert.Equal(t, 2, WarningCount(rows))
}

func TestMergeCompleteRowsCarryNoFlag(t *testing.T) {
	views := map[string]ViewsEntry{
		"X": {ID: "X", Name: "Lagos After Dark", Views: 4200},
	}
	durations := map[string]DurationEntry{
		"X": {ID: "X", Name: "Lagos After Dark", Hours: 310.5},
	}

	rows := Merge(views, durations)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].MissingFrom)
	assert.Equal(t, int64(4200), rows[0].TotalStreams)
	assert.Equal(t, 310.5, rows[0].WatchHours)
	assert.Equal(t, 0, WarningCount(rows))
}

func TestMergeRowCountMatchesUnion(t *testing.T) {
	views := map[string]ViewsEntry{
		"1": {ID: "1", Views: 10},
		"2": {ID: "2", Views: 20},
		"3": {ID: "3", Views: 30},
	}
	durations := map[string]DurationEntry{
		"2": {ID: "2", Hours: 1},
		"3": {ID: "3", Hours: 2},
		"4": {ID: "4", Hours: 3},
		"5": {ID: "5", Hours: 4},
	}

	rows := Merge(views, durations)
	assert.Len(t, rows, 5)

	flagged := map[string]string{}
	for _, r := range rows {
		flagged[r.ContentID] = r.MissingFrom
	}
	assert.Equal(t, MissingFromDuration, flagged["1"])
	assert.Empty(t, flagged["2"])
	assert.Empty(t, flagged["3"])
	assert.Equal(t, MissingFromViews, flagged["4"])
	assert.Equal(t, MissingFromViews, flagged["5"])
}

func TestMergeTitlePrefersViewsSource(t *testing.T) {
	views := map[string]ViewsEntry{
		"A": {ID: "A", Name: "Canonical Name", Views: 1},
	}
	durations := map[string]DurationEntry{
		"A": {ID: "A", Name: "Stale Name", Hours: 1},
	}

	rows := Merge(views, durations)
	require.Len(t, rows, 1)
	assert.Equal(t, "Canonical Name", rows[0].ContentTitle)
}

func TestMergeSortsCaseInsensitive(t *testing.T) {
	views := map[string]ViewsEntry{
		"1": {ID: "1", Name: "zebra crossing", Views: 1},
		"2": {ID: "2", Name: "Amadi Rising", Views: 1},
		"3": {ID: "3", Name: "mama's Kitchen", Views: 1},
	}

	rows := Merge(views, nil)
	require.Len(t, rows, 3)
	assert.Equal(t, "Amadi Rising", rows[0].ContentTitle)
	assert.Equal(t, "mama's Kitchen", rows[1].ContentTitle)
	assert.Equal(t, "zebra crossing", rows[2].ContentTitle)
}

func TestFoldSums(t *testing.T) {
	rows := []MergedRow{
		{TotalStreams: 100, UniqueViewers: 100, WatchHours: 5},
		{TotalStreams: 250, UniqueViewers: 250, WatchHours: 12.5},
	}

	agg := Fold(rows)
	assert.Equal(t, int64(350), agg.TotalStreams)
	assert.Equal(t, int64(350), agg.UniqueViewers)
	assert.Equal(t, 17.5, agg.WatchHours)
	assert.Equal(t, 0, agg.AvgCompletion)
}

func TestFoldCompletionMean(t *testing.T) {
	// manual entry rows carry completion; mean is rounded
	rows := []MergedRow{
		{AvgCompletion: 72},
		{AvgCompletion: 81},
	}
	assert.Equal(t, 77, Fold(rows).AvgCompletion) // 76.5 rounds up

	assert.Equal(t, 0, Fold(nil).AvgCompletion)
}

func TestParseDefaults(t *testing.T) {
	assert.Equal(t, int64(0), parseInt(""))
	assert.Equal(t, int64(0), parseInt("n/a"))
	assert.Equal(t, int64(0), parseInt("12.5"))
	assert.Equal(t, int64(42), parseInt(" 42 "))

	assert.Equal(t, 0.0, parseFloat(""))
	assert.Equal(t, 0.0, parseFloat("abc"))
	assert.Equal(t, 3.25, parseFloat("3.25"))
}
