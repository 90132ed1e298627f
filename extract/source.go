package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rasnes/marketdash-etl/config"
	"github.com/rasnes/marketdash-etl/records"
	"github.com/rasnes/marketdash-etl/utils"
)

// Domain names, as they appear in validation reports and run summaries.
const (
	DomainPrices = "price_data"
	DomainMacro  = "macro_data"
	DomainTrends = "trends_data"
	DomainNews   = "news_data"
)

// Source produces one normalized batch for one domain. Live sources call
// the upstream APIs; fixture sources return deterministic data. The choice
// is made by configuration (extract.use_fixtures), never by whether an API
// key happens to be set.
type Source interface {
	Domain() string
	Fetch() (records.Batch, error)
}

// Sources holds one source per domain, in pipeline processing order.
type Sources struct {
	Prices Source
	Macro  Source
	Trends Source
	News   Source
}

// NewSources builds the per-domain sources from configuration.
func NewSources(cfg *config.Config, logger *slog.Logger, timeProvider utils.TimeProvider) (*Sources, error) {
	if cfg.Extract.UseFixtures {
		return NewFixtureSources(cfg, timeProvider), nil
	}

	priceClient, err := NewPriceClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating price client: %w", err)
	}
	fredClient, err := NewFredClient(cfg, logger, timeProvider)
	if err != nil {
		return nil, fmt.Errorf("error creating FRED client: %w", err)
	}
	newsClient, err := NewNewsClient(cfg, logger, timeProvider)
	if err != nil {
		return nil, fmt.Errorf("error creating news client: %w", err)
	}

	pace := cfg.Extract.RateLimitDelay
	return &Sources{
		Prices: &LiveSource{
			domain: DomainPrices,
			items:  cfg.Extract.Prices.Symbols,
			fetch:  priceClient.GetDaily,
			pace:   pace,
			logger: logger,
		},
		Macro: &LiveSource{
			domain: DomainMacro,
			items:  cfg.Extract.Fred.Indicators,
			fetch:  fredClient.GetSeries,
			pace:   pace,
			logger: logger,
		},
		Trends: &LiveSource{
			domain: DomainTrends,
			items:  cfg.Extract.Trends.Keywords,
			fetch:  NewTrendsClient(cfg, logger).GetInterest,
			pace:   pace,
			logger: logger,
		},
		News: &LiveSource{
			domain: DomainNews,
			items:  cfg.Extract.News.Symbols,
			fetch:  newsClient.GetHeadlines,
			pace:   pace,
			logger: logger,
		},
	}, nil
}

// LiveSource fetches one batch per configured item (symbol, indicator or
// keyword) sequentially, with a blocking pacing delay between calls to
// respect upstream rate limits.
type LiveSource struct {
	domain string
	items  []string
	fetch  func(item string) (records.Batch, error)
	pace   time.Duration
	logger *slog.Logger
}

func (s *LiveSource) Domain() string {
	return s.domain
}

func (s *LiveSource) Fetch() (records.Batch, error) {
	var batch records.Batch
	var errorList []error

	for i, item := range s.items {
		if i > 0 && s.pace > 0 {
			time.Sleep(s.pace)
		}

		rows, err := s.fetch(item)
		if err != nil {
			errorList = append(errorList, fmt.Errorf("error fetching %s for %s: %w", s.domain, item, err))
			continue
		}
		if len(rows) == 0 {
			s.logger.Warn("No data returned", "domain", s.domain, "item", item)
			continue
		}
		batch = append(batch, rows...)
	}

	// Per-item failures are tolerated as long as something was fetched;
	// an entirely failed fetch is a domain-level failure.
	if len(errorList) > 0 {
		if len(batch) == 0 {
			return nil, errors.Join(errorList...)
		}
		s.logger.Warn(fmt.Sprintf("Fetched %s with %d failed items", s.domain, len(errorList)),
			"errors", errors.Join(errorList...).Error())
	}

	return batch, nil
}
