package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// secondsPerHour converts the single-file export's watch duration, which
// the CMS emits in seconds, to the hour-denominated canonical metric.
const secondsPerHour = 3600.0

// Header aliases accepted in single-file exports. Muvi and the older
// engagement report disagree on column names, so matching is by
// normalized (lowercased, trimmed) header.
var (
	titleAliases    = []string{"content name", "content title", "title", "name"}
	idAliases       = []string{"id", "content id"}
	streamsAliases  = []string{"views", "streams", "total streams", "plays"}
	viewersAliases  = []string{"unique viewers", "unique views", "viewers"}
	durationAliases = []string{"watch duration (sec)", "watch duration seconds", "duration (sec)", "duration", "watch time"}
)

// ParseViewsCSV reads the views export (columns Id, Content Name, Views)
// keyed by trimmed identifier. Rows with an empty identifier are dropped.
func ParseViewsCSV(r io.Reader) (map[string]ViewsEntry, error) {
	records, header, err := readAll(r)
	if err != nil {
		return nil, err
	}

	idCol := findColumn(header, idAliases)
	nameCol := findColumn(header, titleAliases)
	viewsCol := findColumn(header, streamsAliases)
	if idCol < 0 || viewsCol < 0 {
		return nil, fmt.Errorf("views export missing Id or Views column")
	}

	out := make(map[string]ViewsEntry, len(records))
	for _, rec := range records {
		id := strings.TrimSpace(field(rec, idCol))
		if id == "" {
			continue
		}
		out[id] = ViewsEntry{
			ID:    id,
			Name:  strings.TrimSpace(field(rec, nameCol)),
			Views: parseInt(field(rec, viewsCol)),
		}
	}
	return out, nil
}

// ParseDurationCSV reads the watch-duration export (columns Id, Content
// Name, Watch Duration). Duration is already hour-denominated in this
// export.
func ParseDurationCSV(r io.Reader) (map[string]DurationEntry, error) {
	records, header, err := readAll(r)
	if err != nil {
		return nil, err
	}

	idCol := findColumn(header, idAliases)
	nameCol := findColumn(header, titleAliases)
	durCol := findColumn(header, []string{"watch duration", "duration", "watch hours"})
	if idCol < 0 || durCol < 0 {
		return nil, fmt.Errorf("duration export missing Id or Watch Duration column")
	}

	out := make(map[string]DurationEntry, len(records))
	for _, rec := range records {
		id := strings.TrimSpace(field(rec, idCol))
		if id == "" {
			continue
		}
		out[id] = DurationEntry{
			ID:    id,
			Name:  strings.TrimSpace(field(rec, nameCol)),
			Hours: parseFloat(field(rec, durCol)),
		}
	}
	return out, nil
}

// ParseFlexibleCSV reads a single combined export with aliased headers.
// Watch duration arrives in seconds and is converted to hours. The export
// has no per-title completion figure, so AvgCompletion stays 0.
func ParseFlexibleCSV(r io.Reader) ([]MergedRow, error) {
	records, header, err := readAll(r)
	if err != nil {
		return nil, err
	}

	titleCol := findColumn(header, titleAliases)
	idCol := findColumn(header, idAliases)
	streamsCol := findColumn(header, streamsAliases)
	viewersCol := findColumn(header, viewersAliases)
	durCol := findColumn(header, durationAliases)
	if titleCol < 0 {
		return nil, fmt.Errorf("export has no recognizable title column")
	}

	rows := make([]MergedRow, 0, len(records))
	for _, rec := range records {
		title := strings.TrimSpace(field(rec, titleCol))
		id := strings.TrimSpace(field(rec, idCol))
		if title == "" && id == "" {
			continue
		}

		streams := parseInt(field(rec, streamsCol))
		viewers := streams
		if viewersCol >= 0 {
			viewers = parseInt(field(rec, viewersCol))
		}

		rows = append(rows, MergedRow{
			ContentID:     id,
			ContentTitle:  title,
			TotalStreams:  streams,
			UniqueViewers: viewers,
			WatchHours:    parseFloat(field(rec, durCol)) / secondsPerHour,
		})
	}
	return rows, nil
}

// readAll reads the whole CSV, returning data records and the normalized
// header row separately
func readAll(r io.Reader) ([][]string, []string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	all, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("csv is empty")
	}

	header := make([]string, len(all[0]))
	for i, h := range all[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return all[1:], header, nil
}

func findColumn(header []string, aliases []string) int {
	for _, alias := range aliases {
		for i, h := range header {
			if h == alias {
				return i
			}
		}
	}
	return -1
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}
