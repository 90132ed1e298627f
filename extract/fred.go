package extract

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rasnes/marketdash-etl/config"
	"github.com/rasnes/marketdash-etl/records"
	"github.com/rasnes/marketdash-etl/utils"
)

// FredClient fetches macroeconomic indicator observations from the FRED API.
type FredClient struct {
	HTTPClient   *retryablehttp.Client
	Logger       *slog.Logger
	Config       *config.FredConfig
	apiKey       string
	timeProvider utils.TimeProvider
}

func NewFredClient(cfg *config.Config, logger *slog.Logger, timeProvider utils.TimeProvider) (*FredClient, error) {
	apiKey := os.Getenv("FRED_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("FRED_API_KEY env variable is not set")
	}
	if timeProvider == nil {
		timeProvider = utils.RealTimeProvider{}
	}

	return &FredClient{
		HTTPClient:   newHTTPClient(cfg, logger),
		Logger:       logger,
		Config:       &cfg.Extract.Fred,
		apiKey:       apiKey,
		timeProvider: timeProvider,
	}, nil
}

type fredResponse struct {
	Observations []fredObservation `json:"observations"`
}

type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// GetSeries fetches observations for one indicator over the configured
// lookback window. FRED encodes missing observations as the string "."; they
// become null values.
func (c *FredClient) GetSeries(indicatorID string) (records.Batch, error) {
	start := c.timeProvider.Now().AddDate(0, 0, -c.Config.LookbackDays).Format("2006-01-02")

	endpoint, err := url.Parse(c.Config.BaseURL + "/fred/series/observations")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	query := endpoint.Query()
	query.Set("series_id", indicatorID)
	query.Set("api_key", c.apiKey)
	query.Set("file_type", "json")
	query.Set("observation_start", start)
	endpoint.RawQuery = query.Encode()

	var resp fredResponse
	if err := fetchJSON(c.HTTPClient, endpoint.String(), fmt.Sprintf("observations for %s", indicatorID), &resp); err != nil {
		return nil, err
	}

	batch := make(records.Batch, 0, len(resp.Observations))
	for _, obs := range resp.Observations {
		var value any
		if obs.Value != "" && obs.Value != "." {
			parsed, err := strconv.ParseFloat(obs.Value, 64)
			if err != nil {
				c.Logger.Warn("Skipping unparseable observation value",
					"indicator", indicatorID, "date", obs.Date, "value", obs.Value)
				continue
			}
			value = parsed
		}
		batch = append(batch, records.Row{
			"indicator_id": indicatorID,
			"date":         obs.Date,
			"value":        value,
		})
	}
	return batch, nil
}
