// Package pipeline sequences fetch, validate and load for every data
// domain. Domains run one at a time; a failure in one never aborts the
// others, and the end-of-run summary makes partial failures explicit.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rasnes/marketdash-etl/config"
	"github.com/rasnes/marketdash-etl/extract"
	"github.com/rasnes/marketdash-etl/load"
	"github.com/rasnes/marketdash-etl/records"
	"github.com/rasnes/marketdash-etl/template"
	"github.com/rasnes/marketdash-etl/utils"
	"github.com/rasnes/marketdash-etl/validate"
)

type Pipeline struct {
	DuckDB       *load.DuckDB
	Loader       *load.Loader
	Validator    *validate.Validator
	Sources      *extract.Sources
	Logger       *slog.Logger
	cfg          *config.Config
	sqlDir       string
	timeProvider utils.TimeProvider
}

func NewPipeline(cfg *config.Config, logger *slog.Logger, timeProvider utils.TimeProvider) (*Pipeline, error) {
	if timeProvider == nil {
		timeProvider = utils.RealTimeProvider{}
	}

	db, err := load.NewDuckDB(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating DB database: %v", err)
	}

	sources, err := extract.NewSources(cfg, logger, timeProvider)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating data sources: %v", err)
	}

	// Determine SQL directory based on working directory
	sqlDir := "sql"
	if _, err := os.Stat(sqlDir); os.IsNotExist(err) {
		// If sql/ doesn't exist in current directory, try parent
		sqlDir = filepath.Join("..", "sql")
		if _, err := os.Stat(sqlDir); os.IsNotExist(err) {
			db.Close()
			return nil, fmt.Errorf("cannot find SQL directory in either current or parent directory")
		}
	}

	return &Pipeline{
		DuckDB:       db,
		Loader:       load.NewLoader(db, cfg.Load.ChunkSize, logger),
		Validator:    validate.NewValidator(&cfg.Quality, timeProvider),
		Sources:      sources,
		Logger:       logger,
		cfg:          cfg,
		sqlDir:       sqlDir,
		timeProvider: timeProvider,
	}, nil
}

func (p *Pipeline) Close() {
	p.DuckDB.Close()
}

// InitSchema creates the warehouse tables and seeds the dimension tables.
func (p *Pipeline) InitSchema() error {
	if err := p.DuckDB.RunQueryFile(p.getSQLPath("init__schema.sql")); err != nil {
		return fmt.Errorf("error initializing schema: %w", err)
	}
	if err := p.DuckDB.RunQueryFile(p.getSQLPath("init__dims.sql")); err != nil {
		return fmt.Errorf("error seeding dimension tables: %w", err)
	}
	p.Logger.Info("Warehouse schema initialized")
	return nil
}

// DomainResult is the per-domain outcome reported in the run summary.
type DomainResult struct {
	Domain   string
	Success  bool
	Rows     int
	Duration time.Duration
	Err      error
}

type domainJob struct {
	domain string
	source extract.Source
	check  func(records.Batch) validate.Report
	store  func(records.Batch) (int, error)
}

func (p *Pipeline) domainJobs(policy load.SentimentPolicy) []domainJob {
	return []domainJob{
		{
			domain: extract.DomainPrices,
			source: p.Sources.Prices,
			check:  p.Validator.Prices,
			store:  func(b records.Batch) (int, error) { return p.Loader.Upsert(records.Prices, b) },
		},
		{
			domain: extract.DomainMacro,
			source: p.Sources.Macro,
			check:  p.Validator.Macro,
			store:  func(b records.Batch) (int, error) { return p.Loader.Upsert(records.Macro, b) },
		},
		{
			domain: extract.DomainTrends,
			source: p.Sources.Trends,
			check:  p.Validator.Trends,
			store:  func(b records.Batch) (int, error) { return p.Loader.Upsert(records.Trends, b) },
		},
		{
			domain: extract.DomainNews,
			source: p.Sources.News,
			check:  p.Validator.News,
			store:  func(b records.Batch) (int, error) { return p.Loader.LoadSentiment(b, policy) },
		},
	}
}

// Run executes fetch, validate and load for every domain in order and logs
// an end-of-run summary. It returns the per-domain results plus a joined
// error when any domain failed, so a partial run is never mistaken for a
// clean one.
func (p *Pipeline) Run(policy load.SentimentPolicy) ([]DomainResult, error) {
	start := p.timeProvider.Now()

	var results []DomainResult
	var errorList []error
	for _, job := range p.domainJobs(policy) {
		res := p.runDomain(job)
		results = append(results, res)
		if res.Err != nil {
			errorList = append(errorList, fmt.Errorf("%s: %w", res.Domain, res.Err))
		}
	}

	p.logSummary(results, p.timeProvider.Now().Sub(start))

	if len(errorList) > 0 {
		return results, errors.Join(errorList...)
	}
	return results, nil
}

// RunDomain executes a single domain by name. Used by the per-domain CLI
// commands.
func (p *Pipeline) RunDomain(domain string, policy load.SentimentPolicy) (DomainResult, error) {
	for _, job := range p.domainJobs(policy) {
		if job.domain != domain {
			continue
		}
		res := p.runDomain(job)
		p.logSummary([]DomainResult{res}, res.Duration)
		return res, res.Err
	}
	return DomainResult{}, fmt.Errorf("unknown domain %q", domain)
}

func (p *Pipeline) runDomain(job domainJob) DomainResult {
	start := p.timeProvider.Now()
	res := DomainResult{Domain: job.domain}

	batch, err := job.source.Fetch()
	if err != nil {
		res.Err = fmt.Errorf("fetch failed: %w", err)
		res.Duration = p.timeProvider.Now().Sub(start)
		return res
	}

	report := job.check(batch)
	p.Logger.Info("Validation completed", "domain", job.domain, "valid", report.Valid,
		"issues", len(report.Issues), "warnings", len(report.Warnings))
	p.Logger.Info(validate.RenderReport([]string{job.domain}, map[string]validate.Report{job.domain: report}))

	maxAge := time.Duration(p.cfg.Freshness.MaxAgeHours) * time.Hour
	if maxAge > 0 && len(batch) > 0 {
		for _, warning := range p.Validator.Freshness(batch, maxAge).Warnings {
			p.Logger.Warn("Freshness check", "domain", job.domain, "warning", warning)
		}
	}

	// Go/no-go: invalid batches are never loaded.
	if !report.Valid {
		res.Err = fmt.Errorf("validation failed: %v", report.Issues)
		res.Duration = p.timeProvider.Now().Sub(start)
		return res
	}

	rows, err := job.store(batch)
	res.Rows = rows
	if err != nil {
		var loadErr *load.LoadError
		if errors.As(err, &loadErr) {
			p.Logger.Error("Load failed with partial commit",
				"domain", job.domain, "rows_committed", loadErr.RowsCommitted)
		}
		res.Err = fmt.Errorf("load failed: %w", err)
		res.Duration = p.timeProvider.Now().Sub(start)
		return res
	}

	res.Success = true
	res.Duration = p.timeProvider.Now().Sub(start)
	return res
}

func (p *Pipeline) logSummary(results []DomainResult, total time.Duration) {
	succeeded := 0
	for _, res := range results {
		if res.Success {
			succeeded++
			p.Logger.Info("Domain completed", "domain", res.Domain,
				"rows", res.Rows, "duration", res.Duration.Round(time.Millisecond).String())
		} else {
			p.Logger.Error("Domain failed", "domain", res.Domain,
				"duration", res.Duration.Round(time.Millisecond).String(), "error", res.Err)
		}
	}

	p.Logger.Info("ETL run summary",
		"succeeded", succeeded,
		"failed", len(results)-succeeded,
		"total_duration", total.Round(time.Millisecond).String())
}

// Prune deletes rows older than each table's configured retention window.
func (p *Pipeline) Prune() error {
	tables := map[string]records.Table{
		records.Prices.Name:        records.Prices,
		records.Macro.Name:         records.Macro,
		records.Trends.Name:        records.Trends,
		records.NewsSentiment.Name: records.NewsSentiment,
	}

	var errorList []error
	for name, days := range p.cfg.Retention {
		table, ok := tables[name]
		if !ok {
			errorList = append(errorList, fmt.Errorf("retention configured for unknown table %s", name))
			continue
		}
		query, err := template.ExecuteSqlTemplate(p.getSQLPath("delete__retention.sql"), map[string]any{
			"Table":      table.Name,
			"DateColumn": table.DateColumn,
			"Days":       days,
		})
		if err != nil {
			errorList = append(errorList, fmt.Errorf("error templating retention query for %s: %w", name, err))
			continue
		}
		if err := p.DuckDB.RunQuery(query); err != nil {
			errorList = append(errorList, fmt.Errorf("error pruning %s: %w", name, err))
			continue
		}
		p.Logger.Info("Pruned table", "table", name, "retention_days", days)
	}

	return errors.Join(errorList...)
}

func (p *Pipeline) getSQLPath(filename string) string {
	return filepath.Join(p.sqlDir, filename)
}
