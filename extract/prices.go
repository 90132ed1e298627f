package extract

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rasnes/marketdash-etl/config"
	"github.com/rasnes/marketdash-etl/records"
)

// PriceClient fetches daily end-of-day prices from a Tiingo-style API.
type PriceClient struct {
	HTTPClient *retryablehttp.Client
	Logger     *slog.Logger
	Config     *config.PricesConfig
	token      string
}

func NewPriceClient(cfg *config.Config, logger *slog.Logger) (*PriceClient, error) {
	token := os.Getenv("TIINGO_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TIINGO_TOKEN env variable is not set")
	}

	return &PriceClient{
		HTTPClient: newHTTPClient(cfg, logger),
		Logger:     logger,
		Config:     &cfg.Extract.Prices,
		token:      token,
	}, nil
}

type eodPrice struct {
	Date        string   `json:"date"`
	Open        *float64 `json:"open"`
	High        *float64 `json:"high"`
	Low         *float64 `json:"low"`
	Close       *float64 `json:"close"`
	AdjClose    *float64 `json:"adjClose"`
	Volume      *int64   `json:"volume"`
	DivCash     *float64 `json:"divCash"`
	SplitFactor *float64 `json:"splitFactor"`
}

// GetDaily fetches the daily price history for one symbol, from the
// configured start date to the present, normalized to canonical price rows.
func (c *PriceClient) GetDaily(symbol string) (records.Batch, error) {
	endpoint, err := url.Parse(fmt.Sprintf("%s/tiingo/daily/%s/prices", c.Config.BaseURL, url.PathEscape(symbol)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	query := endpoint.Query()
	query.Set("token", c.token)
	query.Set("format", "json")
	if c.Config.StartDate != "" {
		query.Set("startDate", c.Config.StartDate)
	}
	endpoint.RawQuery = query.Encode()

	var prices []eodPrice
	if err := fetchJSON(c.HTTPClient, endpoint.String(), fmt.Sprintf("daily prices for %s", symbol), &prices); err != nil {
		return nil, err
	}

	batch := make(records.Batch, 0, len(prices))
	for _, p := range prices {
		batch = append(batch, records.Row{
			"symbol":       symbol,
			"date":         isoDate(p.Date),
			"open":         floatOrNil(p.Open),
			"high":         floatOrNil(p.High),
			"low":          floatOrNil(p.Low),
			"close":        floatOrNil(p.Close),
			"adj_close":    floatOrNil(p.AdjClose),
			"volume":       intOrNil(p.Volume),
			"dividends":    floatOrNil(p.DivCash),
			"stock_splits": floatOrNil(p.SplitFactor),
		})
	}
	return batch, nil
}

// isoDate trims Tiingo's timestamp form ("2024-01-02T00:00:00.000Z") down
// to a calendar date.
func isoDate(s string) any {
	if len(s) >= 10 {
		return s[:10]
	}
	if s == "" {
		return nil
	}
	return s
}

func floatOrNil(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func intOrNil(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}
