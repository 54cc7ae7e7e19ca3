// Package ingest normalizes heterogeneous analytics exports and manual
// entries into the canonical per-title row shape, then folds them into one
// monthly aggregate per creator.
package ingest

import (
	"sort"
	"strconv"
	"strings"
)

// Sources an identifier can be absent from after reconciliation
const (
	MissingFromViews    = "views"
	MissingFromDuration = "duration"
)

// ViewsEntry is one row of the views export
type ViewsEntry struct {
	ID    string
	Name  string
	Views int64
}

// DurationEntry is one row of the watch-duration export, hour-denominated
type DurationEntry struct {
	ID    string
	Name  string
	Hours float64
}

// MergedRow is the canonical per-title metric row produced by
// reconciliation. MissingFrom is set when the identifier was absent from
// one of the two exports; the absent metric defaults to 0 and the gap is
// surfaced to the operator rather than silently accepted.
type MergedRow struct {
	ContentID     string  `json:"content_id"`
	ContentTitle  string  `json:"content_title"`
	TotalStreams  int64   `json:"total_streams"`
	UniqueViewers int64   `json:"unique_viewers"`
	WatchHours    float64 `json:"watch_hours"`
	AvgCompletion float64 `json:"avg_completion"`
	MissingFrom   string  `json:"missing_from,omitempty"`
}

// Merge reconciles the two exports by content identifier. The output holds
// exactly one row per identifier in the union of both sources, sorted by
// display title (case-insensitive) for deterministic downstream display.
//
// The upstream export reports a single "Views" figure, so the same number
// lands in both TotalStreams and UniqueViewers. Known upstream limitation,
// preserved deliberately.
func Merge(views map[string]ViewsEntry, durations map[string]DurationEntry) []MergedRow {
	ids := make(map[string]struct{}, len(views)+len(durations))
	for id := range views {
		ids[id] = struct{}{}
	}
	for id := range durations {
		ids[id] = struct{}{}
	}

	rows := make([]MergedRow, 0, len(ids))
	for id := range ids {
		v, hasViews := views[id]
		d, hasDuration := durations[id]

		row := MergedRow{ContentID: id}
		if hasViews {
			row.ContentTitle = v.Name
			row.TotalStreams = v.Views
			row.UniqueViewers = v.Views
		}
		if hasDuration {
			if row.ContentTitle == "" {
				row.ContentTitle = d.Name
			}
			row.WatchHours = d.Hours
		}
		switch {
		case !hasViews:
			row.MissingFrom = MissingFromViews
		case !hasDuration:
			row.MissingFrom = MissingFromDuration
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := strings.ToLower(rows[i].ContentTitle), strings.ToLower(rows[j].ContentTitle)
		if a == b {
			return rows[i].ContentID < rows[j].ContentID
		}
		return a < b
	})
	return rows
}

// WarningCount returns how many merged rows carry a reconciliation gap
func WarningCount(rows []MergedRow) int {
	n := 0
	for _, r := range rows {
		if r.MissingFrom != "" {
			n++
		}
	}
	return n
}

// Aggregate folds merged rows into the monthly totals for one creator.
// Completion defaults to 0 unless rows carry it (manual entry path), in
// which case it is the rounded mean across all rows.
type Aggregate struct {
	TotalStreams  int64
	UniqueViewers int64
	WatchHours    float64
	AvgCompletion int
}

// Fold sums the merged rows into one Aggregate
func Fold(rows []MergedRow) Aggregate {
	var agg Aggregate
	var completionSum float64
	var hasCompletion bool
	for _, r := range rows {
		agg.TotalStreams += r.TotalStreams
		agg.UniqueViewers += r.UniqueViewers
		agg.WatchHours += r.WatchHours
		completionSum += r.AvgCompletion
		if r.AvgCompletion > 0 {
			hasCompletion = true
		}
	}
	if hasCompletion && len(rows) > 0 {
		agg.AvgCompletion = int(completionSum/float64(len(rows)) + 0.5)
	}
	return agg
}

// parseInt parses a base-10 integer field. Malformed or empty text is an
// operator-facing warning handled by the surrounding workflow, never an
// error here: it reads as 0.
func parseInt(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseFloat behaves like parseInt for real-valued fields
func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
