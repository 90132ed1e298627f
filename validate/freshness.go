package validate

import (
	"fmt"
	"time"

	"github.com/rasnes/marketdash-etl/records"
)

// timestampColumns is the preference order when locating a timestamp-bearing
// column: instant-typed columns first, calendar dates as fallback.
var timestampColumns = []string{"fetched_at", "created_at", "date"}

// Freshness warns (never fails) when the most recent record in a batch is
// older than maxAge. Instant columns are compared in hours; the calendar
// "date" column is compared in whole days, rounding the threshold up.
func (v *Validator) Freshness(batch records.Batch, maxAge time.Duration) Report {
	r := newReport()

	var tsCol string
	for _, col := range timestampColumns {
		if batch.HasColumn(col) {
			tsCol = col
			break
		}
	}
	if tsCol == "" {
		r.Warnings = append(r.Warnings, "no timestamp column found")
		return r
	}

	var earliest, latest time.Time
	for _, row := range batch {
		t, ok := row.Time(tsCol)
		if !ok {
			continue
		}
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
		if latest.IsZero() || t.After(latest) {
			latest = t
		}
	}
	if latest.IsZero() {
		r.Warnings = append(r.Warnings, fmt.Sprintf("no parseable timestamps in column %s", tsCol))
		return r
	}

	now := v.timeProvider.Now()
	if tsCol == "date" {
		// Calendar dates carry no intra-day resolution.
		maxDays := int(maxAge.Hours() / 24)
		if maxDays < 1 {
			maxDays = 1
		}
		daysOld := int(now.Sub(latest).Hours() / 24)
		if daysOld > maxDays {
			r.Warnings = append(r.Warnings, fmt.Sprintf("latest data is %d days old", daysOld))
		}
	} else {
		hoursOld := now.Sub(latest).Hours()
		if hoursOld > maxAge.Hours() {
			r.Warnings = append(r.Warnings, fmt.Sprintf("latest data is %.1f hours old", hoursOld))
		}
	}

	r.Stats["latest_timestamp"] = latest.Format(time.RFC3339)
	r.Stats["earliest_timestamp"] = earliest.Format(time.RFC3339)

	return r
}
