package records

import (
	"math"
	"slices"
	"time"
)

// Row is one normalized record: column name -> value. A nil value (or a
// missing key) is a null. Batches are homogeneous in shape: every row in a
// batch carries the same columns.
type Row map[string]any

// Batch is an ordered collection of rows for a single domain.
type Batch []Row

// Table describes one fact table in the warehouse.
type Table struct {
	// Name is the warehouse table name.
	Name string
	// Columns is the full insert column set, natural key columns first.
	Columns []string
	// Key is the natural key; empty for append-only tables.
	Key []string
	// Required is the column set the validator demands.
	Required []string
	// DateColumn is the primary date/timestamp column used for stats,
	// freshness fallbacks and retention sweeps.
	DateColumn string
}

var (
	Prices = Table{
		Name: "f_price_daily",
		Columns: []string{
			"symbol", "date", "open", "high", "low", "close",
			"adj_close", "volume", "dividends", "stock_splits",
		},
		Key:        []string{"symbol", "date"},
		Required:   []string{"symbol", "date", "open", "high", "low", "close", "adj_close", "volume"},
		DateColumn: "date",
	}

	Macro = Table{
		Name:       "f_macro",
		Columns:    []string{"indicator_id", "date", "value"},
		Key:        []string{"indicator_id", "date"},
		Required:   []string{"indicator_id", "date", "value"},
		DateColumn: "date",
	}

	Trends = Table{
		Name:       "f_trends",
		Columns:    []string{"keyword", "date", "geo", "score"},
		Key:        []string{"keyword", "date", "geo"},
		Required:   []string{"keyword", "date", "score", "geo"},
		DateColumn: "date",
	}

	NewsSentiment = Table{
		Name: "f_news_sentiment",
		Columns: []string{
			"symbol", "fetched_at", "published_at", "source", "title", "url",
			"vader_compound", "vader_positive", "vader_negative", "vader_neutral",
		},
		Key:        nil,
		Required:   []string{"symbol", "fetched_at", "title", "vader_compound"},
		DateColumn: "fetched_at",
	}
)

// IsNull reports whether a value counts as null: nil or a float NaN.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	if f, ok := v.(float64); ok {
		return math.IsNaN(f)
	}
	return false
}

// Float returns the value of a column coerced to float64. ok is false when
// the value is null or not numeric.
func (r Row) Float(col string) (float64, bool) {
	v, exists := r[col]
	if !exists || IsNull(v) {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// String returns the value of a column as a string; ok is false when the
// value is null or not a string.
func (r Row) String(col string) (string, bool) {
	v, exists := r[col]
	if !exists || IsNull(v) {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Time returns the value of a column as a time.Time. It accepts time.Time
// values directly and strings in RFC3339 or YYYY-MM-DD form.
func (r Row) Time(col string) (time.Time, bool) {
	v, exists := r[col]
	if !exists || IsNull(v) {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, true
		}
		if parsed, err := time.Parse("2006-01-02", t); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// HasColumn reports whether the batch carries the given column. Shape is
// homogeneous within a batch, so the first row decides.
func (b Batch) HasColumn(col string) bool {
	if len(b) == 0 {
		return false
	}
	_, ok := b[0][col]
	return ok
}

// Columns returns the batch's column set in Table order plus, for
// deterministic reporting, any extra batch columns sorted alphabetically.
func (b Batch) Columns(table Table) []string {
	if len(b) == 0 {
		return nil
	}
	cols := make([]string, 0, len(b[0]))
	seen := make(map[string]bool, len(b[0]))
	for _, col := range table.Columns {
		if _, ok := b[0][col]; ok {
			cols = append(cols, col)
			seen[col] = true
		}
	}
	extras := make([]string, 0)
	for col := range b[0] {
		if !seen[col] {
			extras = append(extras, col)
		}
	}
	slices.Sort(extras)
	return append(cols, extras...)
}
