package extract

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rasnes/marketdash-etl/config"
	"github.com/rasnes/marketdash-etl/records"
)

// TrendsClient fetches search-interest indices from the trends proxy
// service (Google Trends has no official API, so interest-over-time data is
// served by a proxy configured via base_url).
type TrendsClient struct {
	HTTPClient *retryablehttp.Client
	Logger     *slog.Logger
	Config     *config.TrendsConfig
}

func NewTrendsClient(cfg *config.Config, logger *slog.Logger) *TrendsClient {
	return &TrendsClient{
		HTTPClient: newHTTPClient(cfg, logger),
		Logger:     logger,
		Config:     &cfg.Extract.Trends,
	}
}

type trendPoint struct {
	Date  string   `json:"date"`
	Score *float64 `json:"score"`
}

// GetInterest fetches the interest-over-time series for one keyword in the
// configured geo and timeframe.
func (c *TrendsClient) GetInterest(keyword string) (records.Batch, error) {
	endpoint, err := url.Parse(c.Config.BaseURL + "/interest")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	query := endpoint.Query()
	query.Set("keyword", keyword)
	query.Set("geo", c.Config.Geo)
	query.Set("timeframe", c.Config.Timeframe)
	endpoint.RawQuery = query.Encode()

	var points []trendPoint
	if err := fetchJSON(c.HTTPClient, endpoint.String(), fmt.Sprintf("trends for %q", keyword), &points); err != nil {
		return nil, err
	}

	batch := make(records.Batch, 0, len(points))
	for _, p := range points {
		batch = append(batch, records.Row{
			"keyword": keyword,
			"date":    p.Date,
			"score":   floatOrNil(p.Score),
			"geo":     c.Config.Geo,
		})
	}
	return batch, nil
}
