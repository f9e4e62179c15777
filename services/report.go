package services

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"avito-parser/models"
)

// ReportPrinter renders the run summary for the console.
type ReportPrinter struct {
	out io.Writer
	// TopMissing limits the missing combinations listed.
	TopMissing int
}

func NewReportPrinter(out io.Writer) *ReportPrinter {
	return &ReportPrinter{out: out, TopMissing: 10}
}

func (p *ReportPrinter) Print(stats *models.EnrichmentStats, r *models.CoverageReport, missing []*models.MissingCoverageRow) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)
	w := p.out

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 CATALOG COVERAGE REPORT\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	if stats != nil {
		fmt.Fprintf(w, "\033[1;33m  Enrichment\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  Titles sent      : \033[1m%d\033[0m\n", stats.TotalSent)
		fmt.Fprintf(w, "  Classified       : \033[1m%d\033[0m\n", stats.TotalSuccess)
		fmt.Fprintf(w, "  Failed           : \033[1m%d\033[0m\n", stats.TotalFailed)
		fmt.Fprintf(w, "  Success rate     : \033[1;32m%.1f%%\033[0m\n", stats.SuccessRate())
		fmt.Fprintf(w, "  Rate limit hits  : %d | timeouts: %d | other errors: %d | retries: %d\n",
			stats.RateLimitHits, stats.TimeoutErrors, stats.OtherErrors, stats.RetryCount)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;33m  Coverage\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Total combinations   : \033[1m%d\033[0m\n", r.TotalCombinations)
	fmt.Fprintf(w, "  Covered combinations : \033[1m%d\033[0m\n", r.CoveredCombinations)
	fmt.Fprintf(w, "  Missing combinations : \033[1m%d\033[0m\n", r.MissingCombinations)
	fmt.Fprintf(w, "  Coverage             : \033[1;32m%.2f%%\033[0m\n", r.CoveragePercentage)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Most Frequent Missing Combinations\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(missing) == 0 {
		fmt.Fprintf(w, "  All catalog combinations are covered\n")
	} else {
		limit := min(len(missing), p.TopMissing)
		for i, m := range missing[:limit] {
			path := truncate(strings.Join([]string{m.Group0, m.Group1, m.Group2}, " › "), 40)
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %s (%d) %s\n", i+1, path, m.Frequency, truncate(m.Marka+" "+m.Model, 20))
		}
		if len(missing) > limit {
			fmt.Fprintf(w, "  ... and %d more\n", len(missing)-limit)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

// truncate shortens s to max runes.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}
