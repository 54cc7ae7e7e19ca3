package report

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"

	"payout-service/internal/models"
	"payout-service/internal/revenue"
	"payout-service/internal/service"
)

// StatementData is everything the renderer needs for one creator's
// monthly statement. SVODPool and PPVItems may be empty; the statement
// then shows the corresponding sections as zero.
type StatementData struct {
	Creator  *models.Creator
	Titles   []models.Title
	Metrics  []models.MonthlyMetric
	SVODPool *models.SVODPool
	PPVItems []models.PPVTransaction
	Month    string
}

type statementView struct {
	CreatorName   string
	Month         string
	MonthLabel    string
	GeneratedAt   string
	Reference     string
	TotalStreams  int64
	UniqueViewers int64
	WatchHours    string
	AvgCompletion int
	Titles        []titleRow
	GrossSVOD     string
	GrossPPV      string
	GrossTotal    string
	PlatformFee   string
	NetPayout     string
	SharePercent  string
	PPVItems      []ppvRow
}

type titleRow struct {
	Title        string
	Status       string
	Monetisation string
	Streams      int64
	WatchHours   string
	Completion   int
}

type ppvRow struct {
	TitleID   string
	UnitsSold int64
	Price     string
	Gross     string
}

// Render produces a static, print-ready HTML statement for one creator
// and month. KPIs derive from the creator's published titles, falling
// back to the monthly metric row when no titles are supplied. The
// revenue breakdown is recomputed rather than read back from the
// payouts table, so the statement is viewable before the first
// recalculation run.
func Render(data StatementData) ([]byte, error) {
	if data.Creator == nil {
		return nil, fmt.Errorf("statement requires a creator")
	}

	view := statementView{
		CreatorName:  data.Creator.Name,
		Month:        data.Month,
		MonthLabel:   monthLabel(data.Month),
		GeneratedAt:  time.Now().Format("2 January 2006"),
		Reference:    service.PayoutReference(data.Creator.ID, data.Month),
		SharePercent: fmt.Sprintf("%.0f%%", data.Creator.RevenueShare*100),
	}

	published := publishedTitles(data.Titles)
	if len(published) > 0 {
		// KPIs derive from the published titles; completion is the mean
		// over titles that carry a nonzero figure
		var watchHours float64
		var completionSum, completionCount int
		for _, t := range published {
			view.TotalStreams += t.TotalStreams
			view.UniqueViewers += t.UniqueViewers
			watchHours += t.WatchHours
			if t.AvgCompletion > 0 {
				completionSum += t.AvgCompletion
				completionCount++
			}
		}
		view.WatchHours = formatAmount(watchHours)
		if completionCount > 0 {
			view.AvgCompletion = (completionSum + completionCount/2) / completionCount
		}
	} else if m := latestMetric(data.Metrics, data.Month); m != nil {
		view.TotalStreams = m.TotalStreams
		view.UniqueViewers = m.UniqueViewers
		view.WatchHours = formatAmount(m.WatchHours)
		view.AvgCompletion = m.AvgCompletion
	}
	if view.WatchHours == "" {
		view.WatchHours = formatAmount(0)
	}

	for _, t := range published {
		view.Titles = append(view.Titles, titleRow{
			Title:        t.Title,
			Status:       t.Status,
			Monetisation: t.Monetisation,
			Streams:      t.TotalStreams,
			WatchHours:   formatAmount(t.WatchHours),
			Completion:   t.AvgCompletion,
		})
	}

	var grossPPV float64
	for _, item := range data.PPVItems {
		grossPPV += item.Gross
		view.PPVItems = append(view.PPVItems, ppvRow{
			TitleID:   item.TitleID,
			UnitsSold: item.UnitsSold,
			Price:     formatKES(item.Price),
			Gross:     formatKES(item.Gross),
		})
	}

	var grossSVOD float64
	if data.SVODPool != nil {
		ratio := revenue.Attribution(view.TotalStreams, data.SVODPool.PlatformTotalStreams)
		if ratio > 1 {
			ratio = 1
		}
		grossSVOD = revenue.GrossSVOD(data.SVODPool.TotalPool, ratio)
	}

	grossTotal := grossSVOD + grossPPV
	view.GrossSVOD = formatKES(grossSVOD)
	view.GrossPPV = formatKES(grossPPV)
	view.GrossTotal = formatKES(grossTotal)
	view.NetPayout = formatKES(revenue.CreatorPayout(grossTotal, data.Creator.RevenueShare))
	view.PlatformFee = formatKES(revenue.PlatformFee(grossTotal, data.Creator.RevenueShare))

	var buf bytes.Buffer
	if err := statementTmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render statement for %s: %w", data.Creator.Name, err)
	}
	return buf.Bytes(), nil
}

// publishedTitles keeps only titles visible on statements
func publishedTitles(titles []models.Title) []models.Title {
	out := make([]models.Title, 0, len(titles))
	for _, t := range titles {
		if t.Status == "published" {
			out = append(out, t)
		}
	}
	return out
}

// latestMetric picks the row for the statement month, falling back to
// the most recent month on record.
func latestMetric(metrics []models.MonthlyMetric, month string) *models.MonthlyMetric {
	var latest *models.MonthlyMetric
	for i := range metrics {
		m := &metrics[i]
		if m.ReportMonth == month {
			return m
		}
		if latest == nil || m.ReportMonth > latest.ReportMonth {
			latest = m
		}
	}
	return latest
}

func monthLabel(month string) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return t.Format("January 2006")
}

// formatKES renders an amount as Kenyan shillings with thousands
// separators, e.g. "KES 97,500.00".
func formatKES(v float64) string {
	return "KES " + formatAmount(math.Round(v*100)/100)
}

func formatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	dot := strings.IndexByte(s, '.')
	whole, frac := s[:dot], s[dot:]

	neg := false
	if strings.HasPrefix(whole, "-") {
		neg = true
		whole = whole[1:]
	}

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

var statementTmpl = template.Must(template.New("statement").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Creator Statement - {{.CreatorName}} - {{.MonthLabel}}</title>
<style>
  body { font-family: Georgia, serif; color: #1a1a1a; margin: 40px auto; max-width: 720px; }
  h1 { font-size: 22px; margin-bottom: 0; }
  .muted { color: #666; font-size: 13px; }
  table { width: 100%; border-collapse: collapse; margin: 16px 0; }
  th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #ddd; font-size: 14px; }
  th { border-bottom: 2px solid #1a1a1a; }
  td.num, th.num { text-align: right; }
  .kpis { display: flex; gap: 24px; margin: 20px 0; }
  .kpi { flex: 1; border: 1px solid #ddd; padding: 12px; }
  .kpi .value { font-size: 20px; font-weight: bold; }
  .total td { font-weight: bold; border-top: 2px solid #1a1a1a; }
  footer { margin-top: 32px; font-size: 12px; color: #666; }
  @media print { body { margin: 0; } }
</style>
</head>
<body>
<h1>Creator Revenue Statement</h1>
<p class="muted">{{.CreatorName}} &middot; {{.MonthLabel}} &middot; generated {{.GeneratedAt}}</p>

<div class="kpis">
  <div class="kpi"><div class="muted">Total streams</div><div class="value">{{.TotalStreams}}</div></div>
  <div class="kpi"><div class="muted">Unique viewers</div><div class="value">{{.UniqueViewers}}</div></div>
  <div class="kpi"><div class="muted">Watch hours</div><div class="value">{{.WatchHours}}</div></div>
  <div class="kpi"><div class="muted">Avg completion</div><div class="value">{{.AvgCompletion}}%</div></div>
</div>

{{if .Titles}}
<h2>Published Titles</h2>
<table>
  <tr><th>Title</th><th>Status</th><th>Monetisation</th><th class="num">Streams</th><th class="num">Watch hours</th><th class="num">Completion</th></tr>
  {{range .Titles}}
  <tr><td>{{.Title}}</td><td>{{.Status}}</td><td>{{.Monetisation}}</td><td class="num">{{.Streams}}</td><td class="num">{{.WatchHours}}</td><td class="num">{{.Completion}}%</td></tr>
  {{end}}
</table>
{{end}}

{{if .PPVItems}}
<h2>Pay-Per-View Sales</h2>
<table>
  <tr><th>Title</th><th class="num">Units</th><th class="num">Price</th><th class="num">Gross</th></tr>
  {{range .PPVItems}}
  <tr><td>{{.TitleID}}</td><td class="num">{{.UnitsSold}}</td><td class="num">{{.Price}}</td><td class="num">{{.Gross}}</td></tr>
  {{end}}
</table>
{{end}}

<h2>Revenue Breakdown</h2>
<table>
  <tr><td>Subscription (SVOD) revenue</td><td class="num">{{.GrossSVOD}}</td></tr>
  <tr><td>Pay-per-view revenue</td><td class="num">{{.GrossPPV}}</td></tr>
  <tr><td>Gross revenue</td><td class="num">{{.GrossTotal}}</td></tr>
  <tr><td>Platform fee</td><td class="num">{{.PlatformFee}}</td></tr>
  <tr class="total"><td>Net payout ({{.SharePercent}} share)</td><td class="num">{{.NetPayout}}</td></tr>
</table>

<footer>Statement reference {{.Reference}}. Figures are provisional until the payout is marked paid.</footer>
</body>
</html>
`))
