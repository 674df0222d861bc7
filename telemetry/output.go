package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/effects"
)

// Output file names inside the output directory.
const (
	StatsFile       = "stats.csv"
	SpeciesFile     = "species.csv"
	PopulationsFile = "populations.csv"
	PerfFile        = "perf.csv"
	BookmarksFile   = "bookmarks.csv"
	ConfigFile      = "config.yaml"
	JournalFile     = "effects.jsonl.zst"
	IndexFile       = "stats.sqlite"
)

// csvFile writes a header on the first append only.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func createCSV(dir, name string) (*csvFile, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvFile{f: f}, nil
}

func (c *csvFile) append(records any) error {
	if !c.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

func (c *csvFile) close() error {
	if c == nil || c.f == nil {
		return nil
	}
	return c.f.Close()
}

// OutputOptions selects the optional sinks.
type OutputOptions struct {
	Journal bool // effects.jsonl.zst
	SQLite  bool // stats.sqlite
	Seed    uint64
}

// OutputManager handles structured experiment output. Every row it writes
// carries the run id.
type OutputManager struct {
	dir   string
	runID string

	stats       *csvFile
	species     *csvFile
	populations *csvFile
	perf        *csvFile
	bookmarks   *csvFile

	journal *Journal
	index   *Index
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string, opts OutputOptions) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir, runID: uuid.NewString()}

	var err error
	for _, target := range []struct {
		name string
		dst  **csvFile
	}{
		{StatsFile, &om.stats},
		{SpeciesFile, &om.species},
		{PopulationsFile, &om.populations},
		{PerfFile, &om.perf},
		{BookmarksFile, &om.bookmarks},
	} {
		if *target.dst, err = createCSV(dir, target.name); err != nil {
			om.Close()
			return nil, err
		}
	}

	if opts.Journal {
		if om.journal, err = OpenJournal(filepath.Join(dir, JournalFile)); err != nil {
			om.Close()
			return nil, err
		}
	}

	if opts.SQLite {
		if om.index, err = OpenIndex(filepath.Join(dir, IndexFile)); err != nil {
			om.Close()
			return nil, err
		}
		if err := om.index.AddRun(om.runID, opts.Seed, time.Now().UTC().Format(time.RFC3339)); err != nil {
			om.Close()
			return nil, fmt.Errorf("recording run: %w", err)
		}
	}

	return om, nil
}

// RunID returns the id stamped into this run's output, or "" when output is
// disabled.
func (om *OutputManager) RunID() string {
	if om == nil {
		return ""
	}
	return om.runID
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, ConfigFile))
}

// WriteStats writes a window to stats.csv and species.csv, and to the
// SQLite index when enabled.
func (om *OutputManager) WriteStats(stats WindowStats) error {
	if om == nil {
		return nil
	}

	stats.RunID = om.runID
	for i := range stats.Species {
		stats.Species[i].RunID = om.runID
	}

	if err := om.stats.append([]WindowStats{stats}); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	if len(stats.Species) > 0 {
		if err := om.species.append(stats.Species); err != nil {
			return fmt.Errorf("writing species: %w", err)
		}
	}
	if om.index != nil {
		if err := om.index.AddWindow(stats); err != nil {
			return fmt.Errorf("indexing stats: %w", err)
		}
	}
	return nil
}

// WritePopulations writes one row per population to populations.csv.
func (om *OutputManager) WritePopulations(rows []PopulationRow) error {
	if om == nil || len(rows) == 0 {
		return nil
	}
	stamped := make([]PopulationRow, len(rows))
	for i, r := range rows {
		r.RunID = om.runID
		stamped[i] = r
	}
	if err := om.populations.append(stamped); err != nil {
		return fmt.Errorf("writing populations: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int) error {
	if om == nil {
		return nil
	}
	rec := stats.ToCSV(windowEnd)
	rec.RunID = om.runID
	if err := om.perf.append([]PerfStatsCSV{rec}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	b.RunID = om.runID
	if err := om.bookmarks.append([]Bookmark{b}); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// WriteEffects appends a tick's effects to the journal when enabled.
func (om *OutputManager) WriteEffects(tick int, now float64, list []effects.Effect) error {
	if om == nil || om.journal == nil {
		return nil
	}
	if err := om.journal.Write(NewTickEvents(om.runID, tick, now, list)); err != nil {
		return fmt.Errorf("writing journal: %w", err)
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

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{om.stats, om.species, om.populations, om.perf, om.bookmarks} {
		if err := c.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := om.journal.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := om.index.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
