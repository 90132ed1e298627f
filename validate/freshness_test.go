package validate

import (
	"testing"
	"time"

	"github.com/rasnes/marketdash-etl/records"
	"github.com/rasnes/marketdash-etl/utils"
	"github.com/stretchr/testify/assert"
)

func freshnessValidator(now time.Time) *Validator {
	return NewValidator(testQualityConfig(), utils.FixedTimeProvider{Fixed: now})
}

func TestFreshness_InstantColumnStale(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	v := freshnessValidator(now)

	batch := records.Batch{
		{"symbol": "SPY", "fetched_at": now.Add(-30 * time.Hour)},
		{"symbol": "QQQ", "fetched_at": now.Add(-48 * time.Hour)},
	}

	report := v.Freshness(batch, 24*time.Hour)

	assert.True(t, report.Valid, "staleness never fails a batch")
	assert.Equal(t, []string{"latest data is 30.0 hours old"}, report.Warnings)
	assert.Equal(t, now.Add(-30*time.Hour).Format(time.RFC3339), report.Stats["latest_timestamp"])
	assert.Equal(t, now.Add(-48*time.Hour).Format(time.RFC3339), report.Stats["earliest_timestamp"])
}

func TestFreshness_InstantColumnFresh(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	v := freshnessValidator(now)

	batch := records.Batch{
		{"symbol": "SPY", "fetched_at": now.Add(-2 * time.Hour)},
	}

	report := v.Freshness(batch, 24*time.Hour)

	assert.Empty(t, report.Warnings)
}

func TestFreshness_DateColumnComparedInDays(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	v := freshnessValidator(now)

	batch := records.Batch{
		{"keyword": "recession", "date": "2024-06-01"},
	}

	report := v.Freshness(batch, 24*time.Hour)

	assert.Equal(t, []string{"latest data is 9 days old"}, report.Warnings)
}

func TestFreshness_DateColumnWithinWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	v := freshnessValidator(now)

	// Same calendar day: 18 hours old but 0 whole days, within a 1-day window.
	batch := records.Batch{
		{"keyword": "recession", "date": "2024-06-01"},
	}

	report := v.Freshness(batch, 24*time.Hour)

	assert.Empty(t, report.Warnings)
}

func TestFreshness_PrefersFetchedAtOverDate(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	v := freshnessValidator(now)

	// date is ancient but fetched_at is fresh; fetched_at must win.
	batch := records.Batch{
		{"symbol": "SPY", "date": "2020-01-01", "fetched_at": now.Add(-time.Hour)},
	}

	report := v.Freshness(batch, 24*time.Hour)

	assert.Empty(t, report.Warnings)
}

func TestFreshness_NoTimestampColumn(t *testing.T) {
	v := freshnessValidator(time.Now())

	report := v.Freshness(records.Batch{{"symbol": "SPY"}}, 24*time.Hour)

	assert.True(t, report.Valid)
	assert.Equal(t, []string{"no timestamp column found"}, report.Warnings)
}
