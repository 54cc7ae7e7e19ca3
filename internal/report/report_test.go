package report

import (
	"testing"

	"payout-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testData() StatementData {
	return StatementData{
		Creator: &models.Creator{
			ID:           "3f1c2b7a-4f21-4f6e-9d7a-2f0a11112222",
			Name:         "Alice Wanjiku",
			RevenueShare: 0.65,
		},
		Metrics: []models.MonthlyMetric{
			{ReportMonth: "2024-12", TotalStreams: 3000, UniqueViewers: 3000, WatchHours: 254.65, AvgCompletion: 77},
		},
		SVODPool: &models.SVODPool{ReportMonth: "2024-12", TotalPool: 600000, PlatformTotalStreams: 12000},
		Titles: []models.Title{
			{Title: "Lagos After Dark", Status: "published", Monetisation: "svod", TotalStreams: 3000},
		},
		Month: "2024-12",
	}
}

func TestRenderStatement(t *testing.T) {
	out, err := Render(testData())
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "Alice Wanjiku")
	assert.Contains(t, html, "December 2024")
	assert.Contains(t, html, "Lagos After Dark")

	// 25% of a 600,000 pool at a 65% share
	assert.Contains(t, html, "KES 150,000.00")
	assert.Contains(t, html, "KES 97,500.00")
	assert.Contains(t, html, "KES 52,500.00")
	assert.Contains(t, html, "TAV-3F1C2B7A-202412")
}

func TestRenderFiltersUnpublishedTitles(t *testing.T) {
	data := testData()
	data.Titles = append(data.Titles,
		models.Title{Title: "Unreleased Cut", Status: "draft", TotalStreams: 9000})

	out, err := Render(data)
	require.NoError(t, err)
	html := string(out)

	assert.NotContains(t, html, "Unreleased Cut")
	// draft streams stay out of the attribution: still 3000/12000 of the pool
	assert.Contains(t, html, "KES 150,000.00")
}

func TestRenderCompletionMeanSkipsZero(t *testing.T) {
	data := testData()
	data.Titles = []models.Title{
		{Title: "A", Status: "published", AvgCompletion: 72},
		{Title: "B", Status: "published", AvgCompletion: 0},
		{Title: "C", Status: "published", AvgCompletion: 81},
	}

	out, err := Render(data)
	require.NoError(t, err)

	// mean over the titles with a nonzero figure: (72+81)/2 rounds to 77
	assert.Contains(t, string(out), ">77%<")
}

func TestRenderFallsBackToMetrics(t *testing.T) {
	data := testData()
	data.Titles = nil

	out, err := Render(data)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "254.65")
	assert.Contains(t, html, "KES 150,000.00")
}

func TestRenderWithoutPool(t *testing.T) {
	data := testData()
	data.SVODPool = nil

	out, err := Render(data)
	require.NoError(t, err)

	assert.Contains(t, string(out), "KES 0.00")
}

func TestRenderEscapesTitles(t *testing.T) {
	data := testData()
	data.Titles = []models.Title{{Title: "<script>alert(1)</script>", Status: "published"}}

	out, err := Render(data)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script>alert(1)</script>")
}

func TestRenderRequiresCreator(t *testing.T) {
	_, err := Render(StatementData{Month: "2024-12"})
	assert.Error(t, err)
}

func TestFormatKES(t *testing.T) {
	assert.Equal(t, "KES 97,500.00", formatKES(97500))
	assert.Equal(t, "KES 1,234,567.89", formatKES(1234567.891))
	assert.Equal(t, "KES 0.00", formatKES(0))
	assert.Equal(t, "KES -2,500.00", formatKES(-2500))
}
