package ingest

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Validation errors for the manual entry path
var (
	ErrTitleRequired   = errors.New("content title is required")
	ErrNoMetricEntered = errors.New("at least one metric is required")
)

// EntryInput is one manually keyed title row, fields as typed by the
// operator. Numeric fields arrive as raw text and parse leniently.
type EntryInput struct {
	ContentTitle  string `json:"content_title"`
	ContentID     string `json:"content_id"`
	TotalStreams  string `json:"total_streams"`
	UniqueViewers string `json:"unique_viewers"`
	WatchHours    string `json:"watch_hours"`
	AvgCompletion string `json:"avg_completion"`
}

// StagedRow is an accepted manual entry awaiting commit. ID is generated
// server-side so the operator can remove individual rows before commit.
type StagedRow struct {
	ID  string    `json:"id"`
	Row MergedRow `json:"row"`
}

// Staging accumulates manual entry rows for one import session. Safe for
// concurrent handlers.
type Staging struct {
	mu   sync.Mutex
	rows []StagedRow
}

// NewStaging creates an empty staging list
func NewStaging() *Staging {
	return &Staging{}
}

// Add validates and stages one entry. Title is required and at least one
// of streams/viewers/hours must be non-empty; beyond that, malformed
// numbers read as 0 like every other ingestion path.
func (s *Staging) Add(in EntryInput) (StagedRow, error) {
	title := strings.TrimSpace(in.ContentTitle)
	if title == "" {
		return StagedRow{}, ErrTitleRequired
	}
	if strings.TrimSpace(in.TotalStreams) == "" &&
		strings.TrimSpace(in.UniqueViewers) == "" &&
		strings.TrimSpace(in.WatchHours) == "" {
		return StagedRow{}, ErrNoMetricEntered
	}

	staged := StagedRow{
		ID: uuid.New().String(),
		Row: MergedRow{
			ContentID:     strings.TrimSpace(in.ContentID),
			ContentTitle:  title,
			TotalStreams:  parseInt(in.TotalStreams),
			UniqueViewers: parseInt(in.UniqueViewers),
			WatchHours:    parseFloat(in.WatchHours),
			AvgCompletion: parseFloat(in.AvgCompletion),
		},
	}

	s.mu.Lock()
	s.rows = append(s.rows, staged)
	s.mu.Unlock()
	return staged, nil
}

// Remove drops a staged row by its identifier. Removing an unknown id is a
// no-op.
func (s *Staging) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rows {
		if r.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return
		}
	}
}

// Rows returns a snapshot of the staged rows in entry order
func (s *Staging) Rows() []StagedRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StagedRow, len(s.rows))
	copy(out, s.rows)
	return out
}

// Drain empties the staging list and returns the canonical rows it held
func (s *Staging) Drain() []MergedRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MergedRow, len(s.rows))
	for i, r := range s.rows {
		out[i] = r.Row
	}
	s.rows = nil
	return out
}

// Len reports the number of staged rows
func (s *Staging) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
