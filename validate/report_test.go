package validate

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/rasnes/marketdash-etl/records"
	"github.com/stretchr/testify/assert"
)

func TestRenderReport_FixedSectionOrder(t *testing.T) {
	reports := map[string]Report{
		"price_data": {
			Valid:    false,
			Issues:   []string{"batch is empty"},
			Warnings: []string{"found 2 duplicate rows"},
			Stats:    map[string]any{"total_rows": 0},
		},
		"macro_data": {
			Valid: true,
			Stats: map[string]any{
				"total_rows":  3,
				"value_range": map[string]any{"min": 3.8, "max": 5.33},
			},
		},
	}

	rendered := RenderReport([]string{"price_data", "macro_data"}, reports)

	expected := `==================================================
DATA QUALITY REPORT
==================================================

PRICE_DATA:
--------------------
Status: INVALID

Issues:
  - batch is empty

Warnings:
  - found 2 duplicate rows

Statistics:
  - total_rows: 0

MACRO_DATA:
--------------------
Status: VALID

Statistics:
  - total_rows: 3
  - value_range: {max=5.33 min=3.8}

==================================================`

	assert.Equal(t, expected, rendered)
}

func TestRenderReport_CallerSuppliedDomainOrder(t *testing.T) {
	reports := map[string]Report{
		"a": {Valid: true},
		"b": {Valid: true},
	}

	forward := RenderReport([]string{"a", "b"}, reports)
	reverse := RenderReport([]string{"b", "a"}, reports)

	assert.NotEqual(t, forward, reverse)
	assert.Less(t, indexOf(forward, "A:"), indexOf(forward, "B:"))
	assert.Less(t, indexOf(reverse, "B:"), indexOf(reverse, "A:"))
}

func TestRenderReport_SkipsUnknownDomains(t *testing.T) {
	rendered := RenderReport([]string{"missing"}, map[string]Report{})
	assert.NotContains(t, rendered, "MISSING")
}

func indexOf(s, sub string) int {
	return bytes.Index([]byte(s), []byte(sub))
}

func TestValidatorRun(t *testing.T) {
	v := testValidator()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	reports := v.Run(logger, []DomainBatch{
		{Domain: "price_data", Batch: records.Batch{priceRow("SPY", "2024-05-31", 470, 474, 468, 473)}, Validate: v.Prices},
		{Domain: "news_data", Batch: nil, Validate: v.News}, // nil batches are skipped
	})

	assert.Len(t, reports, 1)
	assert.True(t, reports["price_data"].Valid)
	assert.Contains(t, buf.String(), "DATA QUALITY REPORT")
}
