package extract

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/jonreiter/govader"
	"github.com/rasnes/marketdash-etl/config"
	"github.com/rasnes/marketdash-etl/records"
	"github.com/rasnes/marketdash-etl/utils"
)

// NewsClient fetches headlines for tracked symbols and scores them with a
// VADER sentiment analyzer. The analyzer is constructed here and owned by
// the client; there is no process-wide shared instance.
type NewsClient struct {
	HTTPClient   *retryablehttp.Client
	Logger       *slog.Logger
	Config       *config.NewsConfig
	apiKey       string
	analyzer     *govader.SentimentIntensityAnalyzer
	timeProvider utils.TimeProvider
}

func NewNewsClient(cfg *config.Config, logger *slog.Logger, timeProvider utils.TimeProvider) (*NewsClient, error) {
	apiKey := os.Getenv("NEWS_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("NEWS_API_KEY env variable is not set")
	}
	if timeProvider == nil {
		timeProvider = utils.RealTimeProvider{}
	}

	return &NewsClient{
		HTTPClient:   newHTTPClient(cfg, logger),
		Logger:       logger,
		Config:       &cfg.Extract.News,
		apiKey:       apiKey,
		analyzer:     govader.NewSentimentIntensityAnalyzer(),
		timeProvider: timeProvider,
	}, nil
}

type newsResponse struct {
	Articles []newsArticle `json:"articles"`
}

type newsArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// GetHeadlines fetches recent headlines for one symbol and returns scored
// sentiment rows.
func (c *NewsClient) GetHeadlines(symbol string) (records.Batch, error) {
	now := c.timeProvider.Now()
	from := now.Add(-time.Duration(c.Config.LookbackHours) * time.Hour).UTC().Format(time.RFC3339)

	endpoint, err := url.Parse(c.Config.BaseURL + "/v2/everything")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	query := endpoint.Query()
	query.Set("q", symbol)
	query.Set("apiKey", c.apiKey)
	query.Set("language", "en")
	query.Set("sortBy", "publishedAt")
	query.Set("from", from)
	query.Set("pageSize", fmt.Sprintf("%d", c.Config.MaxArticles))
	endpoint.RawQuery = query.Encode()

	var resp newsResponse
	if err := fetchJSON(c.HTTPClient, endpoint.String(), fmt.Sprintf("news for %s", symbol), &resp); err != nil {
		return nil, err
	}

	batch := make(records.Batch, 0, len(resp.Articles))
	for _, article := range resp.Articles {
		scores := c.analyzer.PolarityScores(article.Title)

		var publishedAt any
		if parsed, err := time.Parse(time.RFC3339, article.PublishedAt); err == nil {
			publishedAt = parsed
		}

		batch = append(batch, records.Row{
			"symbol":         symbol,
			"fetched_at":     now,
			"published_at":   publishedAt,
			"source":         article.Source.Name,
			"title":          article.Title,
			"url":            article.URL,
			"vader_compound": scores.Compound,
			"vader_positive": scores.Positive,
			"vader_negative": scores.Negative,
			"vader_neutral":  scores.Neutral,
		})
	}
	return batch, nil
}
