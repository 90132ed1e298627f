package records

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsNull(t *testing.T) {
	assert.True(t, IsNull(nil))
	assert.True(t, IsNull(math.NaN()))
	assert.False(t, IsNull(0.0))
	assert.False(t, IsNull(""))
	assert.False(t, IsNull("NaN"))
}

func TestRowFloat(t *testing.T) {
	row := Row{
		"f64":  473.1,
		"f32":  float32(1.5),
		"i":    42,
		"i64":  int64(7),
		"str":  "not a number",
		"null": nil,
	}

	tests := []struct {
		col    string
		want   float64
		wantOk bool
	}{
		{"f64", 473.1, true},
		{"f32", 1.5, true},
		{"i", 42, true},
		{"i64", 7, true},
		{"str", 0, false},
		{"null", 0, false},
		{"missing", 0, false},
	}

	for _, tt := range tests {
		got, ok := row.Float(tt.col)
		assert.Equal(t, tt.wantOk, ok, tt.col)
		assert.Equal(t, tt.want, got, tt.col)
	}
}

func TestRowString(t *testing.T) {
	row := Row{"symbol": "SPY", "close": 473.1, "null": nil}

	s, ok := row.String("symbol")
	assert.True(t, ok)
	assert.Equal(t, "SPY", s)

	_, ok = row.String("close")
	assert.False(t, ok)
	_, ok = row.String("null")
	assert.False(t, ok)
	_, ok = row.String("missing")
	assert.False(t, ok)
}

func TestRowTime(t *testing.T) {
	instant, _ := time.Parse(time.RFC3339, "2024-06-01T12:00:00Z")
	row := Row{
		"native":  instant,
		"rfc3339": "2024-06-01T12:00:00Z",
		"date":    "2024-06-01",
		"junk":    "yesterday-ish",
		"null":    nil,
	}

	got, ok := row.Time("native")
	assert.True(t, ok)
	assert.Equal(t, instant, got)

	got, ok = row.Time("rfc3339")
	assert.True(t, ok)
	assert.Equal(t, instant, got.UTC())

	got, ok = row.Time("date")
	assert.True(t, ok)
	assert.Equal(t, "2024-06-01", got.Format("2006-01-02"))

	_, ok = row.Time("junk")
	assert.False(t, ok)
	_, ok = row.Time("null")
	assert.False(t, ok)
}

func TestBatchHasColumn(t *testing.T) {
	batch := Batch{{"symbol": "SPY", "date": "2024-06-01"}}

	assert.True(t, batch.HasColumn("symbol"))
	assert.False(t, batch.HasColumn("close"))
	assert.False(t, Batch{}.HasColumn("symbol"))
}

func TestBatchColumns(t *testing.T) {
	batch := Batch{{
		"date":         "2024-06-01",
		"value":        3.9,
		"indicator_id": "UNRATE",
		"zeta":         1,
		"alpha":        2,
	}}

	// Table order first, extras sorted after.
	assert.Equal(t, []string{"indicator_id", "date", "value", "alpha", "zeta"}, batch.Columns(Macro))
	assert.Nil(t, Batch{}.Columns(Macro))
}
