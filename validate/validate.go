// Package validate runs per-domain quality checks over normalized record
// batches. Malformed data is a finding, not an error: validators never
// return an error and never mutate their input.
package validate

import (
	"fmt"
	"strings"

	"github.com/rasnes/marketdash-etl/config"
	"github.com/rasnes/marketdash-etl/records"
	"github.com/rasnes/marketdash-etl/utils"
)

// Report is the outcome of validating one batch. It is a value type: once
// returned it is never mutated by the validator.
type Report struct {
	Valid    bool
	Issues   []string
	Warnings []string
	Stats    map[string]any
}

type Validator struct {
	cfg          *config.QualityConfig
	timeProvider utils.TimeProvider
}

func NewValidator(cfg *config.QualityConfig, timeProvider utils.TimeProvider) *Validator {
	if timeProvider == nil {
		timeProvider = utils.RealTimeProvider{}
	}
	return &Validator{cfg: cfg, timeProvider: timeProvider}
}

// Prices validates a batch of daily price records.
func (v *Validator) Prices(batch records.Batch) Report {
	r := newReport()

	if stop := v.commonChecks(&r, batch, records.Prices, v.cfg.Price.MaxNullPercentage); stop {
		return r
	}

	// Hard price bounds on close: breaches indicate feed corruption and
	// invalidate the batch, unlike the soft ranges of the other domains.
	closes := columnFloats(batch, "close")
	if len(closes) > 0 {
		minClose, maxClose := minMax(closes)
		if minClose < v.cfg.Price.MinPrice {
			r.Valid = false
			r.Issues = append(r.Issues, fmt.Sprintf("minimum close price %v below threshold %v", minClose, v.cfg.Price.MinPrice))
		}
		if maxClose > v.cfg.Price.MaxPrice {
			r.Valid = false
			r.Issues = append(r.Issues, fmt.Sprintf("maximum close price %v above threshold %v", maxClose, v.cfg.Price.MaxPrice))
		}
		r.Stats["price_range"] = map[string]any{"min": minClose, "max": maxClose}
	}

	checkDuplicates(&r, batch, records.Prices)

	if ohlcIssues := countOHLCViolations(batch); ohlcIssues > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("found %d OHLC consistency issues", ohlcIssues))
	}

	dateRangeStats(&r, batch, "date")
	r.Stats["total_rows"] = len(batch)
	r.Stats["unique_symbols"] = distinctValues(batch, "symbol")

	return r
}

// Macro validates a batch of macroeconomic indicator records.
func (v *Validator) Macro(batch records.Batch) Report {
	r := newReport()

	if stop := v.commonChecks(&r, batch, records.Macro, v.cfg.Macro.MaxNullPercentage); stop {
		return r
	}

	// Per-indicator expected ranges are soft: unusual values are possible
	// and only warrant a warning. Viper lowercases map keys, so the lookup
	// goes through a lowercased copy while warnings keep the id as it
	// appears in the data.
	if batch.HasColumn("indicator_id") && batch.HasColumn("value") {
		perIndicator := make(map[string][]float64)
		displayID := make(map[string]string)
		for _, row := range batch {
			id, ok := row.String("indicator_id")
			if !ok {
				continue
			}
			key := strings.ToLower(id)
			if _, seen := displayID[key]; !seen {
				displayID[key] = id
			}
			if val, ok := row.Float("value"); ok {
				perIndicator[key] = append(perIndicator[key], val)
			}
		}
		for indicator, bounds := range v.cfg.Macro.ValueRanges {
			if len(bounds) != 2 {
				continue
			}
			key := strings.ToLower(indicator)
			values := perIndicator[key]
			if len(values) == 0 {
				continue
			}
			lo, hi := minMax(values)
			if lo < bounds[0] || hi > bounds[1] {
				r.Warnings = append(r.Warnings, fmt.Sprintf(
					"indicator %s values outside expected range [%v, %v]", displayID[key], bounds[0], bounds[1]))
			}
		}
	}

	checkDuplicates(&r, batch, records.Macro)

	if values := columnFloats(batch, "value"); len(values) > 0 {
		lo, hi := minMax(values)
		r.Stats["value_range"] = map[string]any{"min": lo, "max": hi}
	}
	dateRangeStats(&r, batch, "date")
	r.Stats["total_rows"] = len(batch)
	r.Stats["unique_indicators"] = distinctValues(batch, "indicator_id")

	return r
}

// Trends validates a batch of search-trend records.
func (v *Validator) Trends(batch records.Batch) Report {
	r := newReport()

	if stop := v.commonChecks(&r, batch, records.Trends, v.cfg.Trends.MaxNullPercentage); stop {
		return r
	}

	if scores := columnFloats(batch, "score"); len(scores) > 0 {
		lo, hi := minMax(scores)
		if lo < v.cfg.Trends.MinScore || hi > v.cfg.Trends.MaxScore {
			r.Warnings = append(r.Warnings, fmt.Sprintf(
				"score values outside expected range [%v, %v]: [%v, %v]",
				v.cfg.Trends.MinScore, v.cfg.Trends.MaxScore, lo, hi))
		}
		r.Stats["score_range"] = map[string]any{"min": lo, "max": hi}
	}

	checkDuplicates(&r, batch, records.Trends)

	dateRangeStats(&r, batch, "date")
	r.Stats["total_rows"] = len(batch)
	r.Stats["unique_keywords"] = distinctValues(batch, "keyword")

	return r
}

// News validates a batch of news-sentiment records.
func (v *Validator) News(batch records.Batch) Report {
	r := newReport()

	if stop := v.commonChecks(&r, batch, records.NewsSentiment, v.cfg.News.MaxNullPercentage); stop {
		return r
	}

	if sentiments := columnFloats(batch, "vader_compound"); len(sentiments) > 0 {
		lo, hi := minMax(sentiments)
		if lo < v.cfg.News.MinCompound || hi > v.cfg.News.MaxCompound {
			r.Warnings = append(r.Warnings, fmt.Sprintf(
				"sentiment values outside expected range [%v, %v]: [%v, %v]",
				v.cfg.News.MinCompound, v.cfg.News.MaxCompound, lo, hi))
		}
		r.Stats["sentiment_range"] = map[string]any{"min": lo, "max": hi}
		r.Stats["avg_sentiment"] = mean(sentiments)
	}

	checkDuplicates(&r, batch, records.NewsSentiment)

	r.Stats["total_rows"] = len(batch)
	r.Stats["unique_symbols"] = distinctValues(batch, "symbol")

	return r
}

func newReport() Report {
	return Report{Valid: true, Stats: make(map[string]any)}
}

// commonChecks runs the checks shared by every domain, in order: required
// columns, empty batch, per-column null percentages. It returns true when
// the batch is empty and validation should short-circuit.
func (v *Validator) commonChecks(r *Report, batch records.Batch, table records.Table, maxNullPct float64) bool {
	if len(batch) == 0 {
		r.Valid = false
		r.Issues = append(r.Issues, "batch is empty")
		return true
	}

	var missing []string
	for _, col := range table.Required {
		if !batch.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		// All missing columns are reported together in a single issue.
		r.Valid = false
		r.Issues = append(r.Issues, fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}

	v.checkNulls(r, batch, table, maxNullPct)
	return false
}

// checkNulls computes the null fraction per column in a single pass over the
// batch. Strictly above the threshold is a hard issue; anything in
// (0, threshold] is a warning.
func (v *Validator) checkNulls(r *Report, batch records.Batch, table records.Table, maxNullPct float64) {
	columns := batch.Columns(table)
	nullCounts := make(map[string]int, len(columns))
	for _, row := range batch {
		for _, col := range columns {
			if records.IsNull(row[col]) {
				nullCounts[col]++
			}
		}
	}

	total := float64(len(batch))
	for _, col := range columns {
		pct := float64(nullCounts[col]) / total * 100
		switch {
		case pct > maxNullPct:
			r.Valid = false
			r.Issues = append(r.Issues, fmt.Sprintf("column %s has %.1f%% null values", col, pct))
		case pct > 0:
			r.Warnings = append(r.Warnings, fmt.Sprintf("column %s has %.1f%% null values", col, pct))
		}
	}
}

// checkDuplicates counts exact duplicate rows. Duplicates never invalidate
// a batch; the upsert loader collapses them by natural key anyway.
func checkDuplicates(r *Report, batch records.Batch, table records.Table) {
	columns := batch.Columns(table)
	seen := make(map[string]bool, len(batch))
	duplicates := 0
	for _, row := range batch {
		var sb strings.Builder
		for _, col := range columns {
			fmt.Fprintf(&sb, "%v\x00", row[col])
		}
		key := sb.String()
		if seen[key] {
			duplicates++
		}
		seen[key] = true
	}
	if duplicates > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("found %d duplicate rows", duplicates))
	}
}

// countOHLCViolations counts rows where open or close falls outside the
// [low, high] band. Rows with any null among the four are skipped.
func countOHLCViolations(batch records.Batch) int {
	violations := 0
	for _, row := range batch {
		open, okO := row.Float("open")
		high, okH := row.Float("high")
		low, okL := row.Float("low")
		closePrice, okC := row.Float("close")
		if !okO || !okH || !okL || !okC {
			continue
		}
		if !(low <= open && open <= high && low <= closePrice && closePrice <= high) {
			violations++
		}
	}
	return violations
}

func columnFloats(batch records.Batch, col string) []float64 {
	values := make([]float64, 0, len(batch))
	for _, row := range batch {
		if v, ok := row.Float(col); ok {
			values = append(values, v)
		}
	}
	return values
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func distinctValues(batch records.Batch, col string) int {
	if !batch.HasColumn(col) {
		return 0
	}
	seen := make(map[any]bool, len(batch))
	for _, row := range batch {
		if !records.IsNull(row[col]) {
			seen[row[col]] = true
		}
	}
	return len(seen)
}

func dateRangeStats(r *Report, batch records.Batch, col string) {
	if !batch.HasColumn(col) {
		return
	}
	var earliest, latest string
	for _, row := range batch {
		t, ok := row.Time(col)
		if !ok {
			continue
		}
		day := t.Format("2006-01-02")
		if earliest == "" || day < earliest {
			earliest = day
		}
		if latest == "" || day > latest {
			latest = day
		}
	}
	if earliest != "" {
		r.Stats["date_range"] = map[string]any{"start": earliest, "end": latest}
	}
}
