package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/forage/config"
)

// MetricsFile is the CSV file written into each run directory.
const MetricsFile = "metrics.csv"

// RunID returns a run identifier from the start time, to the millisecond,
// and the seed.
func RunID(now time.Time, seed int64) string {
	return fmt.Sprintf("run-%s-seed%d", now.Format("20060102-150405.000"), seed)
}

// OutputManager handles a run directory: metrics CSV, config snapshot and screenshots.
type OutputManager struct {
	dir           string
	metricsFile   *os.File
	headerWritten bool
}

// NewOutputManager creates the output directory and opens metrics.csv inside it.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, MetricsFile))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", MetricsFile, err)
	}

	return &OutputManager{dir: dir, metricsFile: f}, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteMetrics appends a record to metrics.csv.
func (om *OutputManager) WriteMetrics(rec MetricsRecord) error {
	if om == nil {
		return nil
	}

	records := []MetricsRecord{rec}

	if !om.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.metricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		om.headerWritten = true
	} else {
		// Subsequent writes skip headers
		if err := gocsv.MarshalWithoutHeaders(records, om.metricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Path returns the path of name inside the output directory.
func (om *OutputManager) Path(name string) string {
	return filepath.Join(om.Dir(), name)
}

// Close flushes and closes the metrics file.
// A run that never emitted still gets a header-only CSV.
func (om *OutputManager) Close() error {
	if om == nil || om.metricsFile == nil {
		return nil
	}

	var firstErr error
	if !om.headerWritten {
		if err := gocsv.Marshal([]MetricsRecord{}, om.metricsFile); err != nil {
			firstErr = fmt.Errorf("writing metrics header: %w", err)
		}
		om.headerWritten = true
	}
	if err := om.metricsFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	om.metricsFile = nil
	return firstErr
}
