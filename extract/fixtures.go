package extract

import (
	"fmt"
	"time"

	"github.com/rasnes/marketdash-etl/config"
	"github.com/rasnes/marketdash-etl/records"
	"github.com/rasnes/marketdash-etl/utils"
)

// FixtureSource returns a deterministic batch without touching the network.
// Used for local development and smoke tests of the full pipeline.
type FixtureSource struct {
	domain string
	batch  records.Batch
}

func (s *FixtureSource) Domain() string {
	return s.domain
}

func (s *FixtureSource) Fetch() (records.Batch, error) {
	return s.batch, nil
}

// NewFixtureSources builds fixture data for every domain, anchored at the
// provider's current time so freshness checks pass.
func NewFixtureSources(cfg *config.Config, timeProvider utils.TimeProvider) *Sources {
	if timeProvider == nil {
		timeProvider = utils.RealTimeProvider{}
	}
	now := timeProvider.Now()
	today := now.Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")

	prices := records.Batch{
		{"symbol": "SPY", "date": yesterday, "open": 470.0, "high": 474.5, "low": 468.2, "close": 473.1, "adj_close": 473.1, "volume": int64(71_250_000), "dividends": 0.0, "stock_splits": 1.0},
		{"symbol": "SPY", "date": today, "open": 473.4, "high": 476.0, "low": 471.9, "close": 475.2, "adj_close": 475.2, "volume": int64(68_400_000), "dividends": 0.0, "stock_splits": 1.0},
		{"symbol": "QQQ", "date": yesterday, "open": 398.7, "high": 402.3, "low": 396.1, "close": 401.8, "adj_close": 401.8, "volume": int64(42_100_000), "dividends": 0.0, "stock_splits": 1.0},
		{"symbol": "QQQ", "date": today, "open": 401.5, "high": 405.9, "low": 400.2, "close": 404.6, "adj_close": 404.6, "volume": int64(39_800_000), "dividends": 0.0, "stock_splits": 1.0},
	}

	macro := records.Batch{
		{"indicator_id": "UNRATE", "date": yesterday, "value": 3.9},
		{"indicator_id": "FEDFUNDS", "date": yesterday, "value": 5.33},
		{"indicator_id": "CPIAUCSL", "date": yesterday, "value": 310.3},
	}

	trends := records.Batch{
		{"keyword": "recession", "date": yesterday, "score": 42.0, "geo": cfg.Extract.Trends.Geo},
		{"keyword": "recession", "date": today, "score": 45.0, "geo": cfg.Extract.Trends.Geo},
		{"keyword": "inflation", "date": yesterday, "score": 61.0, "geo": cfg.Extract.Trends.Geo},
		{"keyword": "inflation", "date": today, "score": 58.0, "geo": cfg.Extract.Trends.Geo},
	}

	var news records.Batch
	for i, symbol := range []string{"SPY", "QQQ"} {
		news = append(news, records.Row{
			"symbol":         symbol,
			"fetched_at":     now,
			"published_at":   now.Add(-2 * time.Hour),
			"source":         "Fixture Wire",
			"title":          fmt.Sprintf("%s shows strong performance in latest trading session", symbol),
			"url":            fmt.Sprintf("https://example.com/news/%s-%d", symbol, i+1),
			"vader_compound": 0.6124,
			"vader_positive": 0.4,
			"vader_negative": 0.0,
			"vader_neutral":  0.6,
		})
	}

	return &Sources{
		Prices: &FixtureSource{domain: DomainPrices, batch: prices},
		Macro:  &FixtureSource{domain: DomainMacro, batch: macro},
		Trends: &FixtureSource{domain: DomainTrends, batch: trends},
		News:   &FixtureSource{domain: DomainNews, batch: news},
	}
}
