package detect

import (
	"time"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/scan"
)

// EcosystemReport holds one ecosystem's scan outcome. ComponentScans
// carries only components that produced matches; Stats counts every
// component's files either way.
type EcosystemReport struct {
	Ecosystem      string                   `json:"ecosystem"`
	ComponentScans map[string][]scan.Result `json:"component_scans"`
	TotalIssues    int                      `json:"total_issues"`
	Stats          scan.Stats               `json:"stats"`
}

// ScanReport is the terminal artifact of one orchestrated run.
type ScanReport struct {
	EcosystemReports map[string]EcosystemReport `json:"ecosystem_reports"`
	TotalIssues      int                        `json:"total_issues"`
	Stats            scan.Stats                 `json:"stats"`
	Timestamp        time.Time                  `json:"timestamp"`
}

// Aggregator scans detected components with type-appropriate pattern
// sets and rolls the outcomes into one report.
type Aggregator struct {
	selector *scan.Selector
}

// NewAggregator creates an aggregator over a scanner selector.
func NewAggregator(selector *scan.Selector) *Aggregator {
	return &Aggregator{selector: selector}
}

// ScanDetected scans every component of every detection result. A
// component whose scan errors is logged and skipped; it fails neither
// its ecosystem nor the run. Components with zero matches are left out
// of the report, ecosystems stay in with their totals at zero.
func (a *Aggregator) ScanDetected(results map[string]DetectionResult) *ScanReport {
	report := &ScanReport{
		EcosystemReports: make(map[string]EcosystemReport),
		Timestamp:        time.Now().UTC(),
	}

	for eco, res := range results {
		er := EcosystemReport{
			Ecosystem:      eco,
			ComponentScans: make(map[string][]scan.Result),
		}

		for key, comp := range res.Components {
			scanner := a.selector.Select(comp.Type, comp.Path)
			sum, err := scanner.ScanDirectoryWithSummary(comp.Path)
			if err != nil {
				log.Warn("Skipping component %s/%s: %v", eco, key, err)
				continue
			}

			er.Stats.Add(sum.Stats)
			if len(sum.Results) == 0 {
				continue
			}

			er.ComponentScans[key] = sum.Results
			er.TotalIssues += sum.TotalMatches()
		}

		report.EcosystemReports[eco] = er
		report.TotalIssues += er.TotalIssues
		report.Stats.Add(er.Stats)
	}

	scan.GetMetrics().Runs.Add(1)
	log.Info("Scanned %d ecosystems, %d issues found", len(report.EcosystemReports), report.TotalIssues)
	return report
}
