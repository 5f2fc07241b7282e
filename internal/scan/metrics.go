package scan

import (
	"sync/atomic"
)

// ScanMetrics tracks cumulative scan activity for the process.
type ScanMetrics struct {
	Runs             atomic.Int64 // orchestrated detect-and-scan runs
	DirectoryScans   atomic.Int64
	FilesScanned     atomic.Int64
	FilesSkipped     atomic.Int64
	MatchesFound     atomic.Int64
	DetectorFailures atomic.Int64
}

var globalMetrics = &ScanMetrics{}

// GetMetrics returns the global scan metrics.
func GetMetrics() *ScanMetrics {
	return globalMetrics
}

// GetStats returns a copy of current metrics.
func (m *ScanMetrics) GetStats() map[string]int64 {
	return map[string]int64{
		"runs":              m.Runs.Load(),
		"directory_scans":   m.DirectoryScans.Load(),
		"files_scanned":     m.FilesScanned.Load(),
		"files_skipped":     m.FilesSkipped.Load(),
		"matches_found":     m.MatchesFound.Load(),
		"detector_failures": m.DetectorFailures.Load(),
	}
}

// SkipRate returns the percentage of candidate files skipped by the
// safety gates.
func (m *ScanMetrics) SkipRate() float64 {
	scanned := m.FilesScanned.Load()
	skipped := m.FilesSkipped.Load()
	total := scanned + skipped
	if total == 0 {
		return 0
	}
	return float64(skipped) / float64(total) * 100
}

// Reset clears all metrics (for testing).
func (m *ScanMetrics) Reset() {
	m.Runs.Store(0)
	m.DirectoryScans.Store(0)
	m.FilesScanned.Store(0)
	m.FilesSkipped.Store(0)
	m.MatchesFound.Store(0)
	m.DetectorFailures.Store(0)
}
