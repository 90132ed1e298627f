package validate

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/rasnes/marketdash-etl/records"
)

const reportDivider = "=================================================="

// RenderReport turns reports into a deterministic, human-readable text
// block. Domains are rendered in the caller-supplied order; within a domain
// the order is fixed: name, status, issues, warnings, stats.
func RenderReport(domains []string, reports map[string]Report) string {
	var b strings.Builder
	b.WriteString(reportDivider + "\n")
	b.WriteString("DATA QUALITY REPORT\n")
	b.WriteString(reportDivider + "\n")

	for _, domain := range domains {
		report, ok := reports[domain]
		if !ok {
			continue
		}

		fmt.Fprintf(&b, "\n%s:\n", strings.ToUpper(domain))
		b.WriteString("--------------------\n")

		if report.Valid {
			b.WriteString("Status: VALID\n")
		} else {
			b.WriteString("Status: INVALID\n")
		}

		if len(report.Issues) > 0 {
			b.WriteString("\nIssues:\n")
			for _, issue := range report.Issues {
				fmt.Fprintf(&b, "  - %s\n", issue)
			}
		}

		if len(report.Warnings) > 0 {
			b.WriteString("\nWarnings:\n")
			for _, warning := range report.Warnings {
				fmt.Fprintf(&b, "  - %s\n", warning)
			}
		}

		if len(report.Stats) > 0 {
			b.WriteString("\nStatistics:\n")
			keys := make([]string, 0, len(report.Stats))
			for k := range report.Stats {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&b, "  - %s: %s\n", k, formatStat(report.Stats[k]))
			}
		}
	}

	b.WriteString("\n" + reportDivider)
	return b.String()
}

// formatStat renders nested stat maps with sorted keys so the report is
// byte-for-byte reproducible.
func formatStat(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Run validates each non-nil batch in the order given, logs the rendered
// report and returns the per-domain reports.
func (v *Validator) Run(logger *slog.Logger, batches []DomainBatch) map[string]Report {
	reports := make(map[string]Report, len(batches))
	domains := make([]string, 0, len(batches))

	for _, db := range batches {
		if db.Batch == nil {
			continue
		}
		logger.Info("Validating batch", "domain", db.Domain, "rows", len(db.Batch))
		reports[db.Domain] = db.Validate(db.Batch)
		domains = append(domains, db.Domain)
	}

	logger.Info("Data quality checks completed", "report", RenderReport(domains, reports))
	return reports
}

// DomainBatch pairs a batch with the domain validator that applies to it.
type DomainBatch struct {
	Domain   string
	Batch    records.Batch
	Validate func(records.Batch) Report
}
